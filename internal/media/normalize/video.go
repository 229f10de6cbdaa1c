package normalize

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/socialhub/mediaup/internal/media/models"
)

// Thumbnailer extracts a still-frame preview from a video.
type Thumbnailer interface {
	// Thumbnail writes a preview image under dstDir and returns its path.
	Thumbnail(ctx context.Context, f models.FileRef, dstDir string) (string, error)
}

// FFmpegThumbnailer shells out to ffprobe/ffmpeg: probe the duration,
// seek to min(1s, duration/2), grab one frame scaled so neither
// dimension exceeds MaxDim, and write it as JPEG.
type FFmpegThumbnailer struct {
	FFmpeg  string
	FFprobe string
	// MaxDim caps the longer thumbnail dimension. Zero means 400.
	MaxDim int
}

func (t *FFmpegThumbnailer) ffmpeg() string {
	if t.FFmpeg != "" {
		return t.FFmpeg
	}
	return "ffmpeg"
}

func (t *FFmpegThumbnailer) ffprobe() string {
	if t.FFprobe != "" {
		return t.FFprobe
	}
	return "ffprobe"
}

func (t *FFmpegThumbnailer) maxDim() int {
	if t.MaxDim > 0 {
		return t.MaxDim
	}
	return 400
}

func (t *FFmpegThumbnailer) Thumbnail(ctx context.Context, f models.FileRef, dstDir string) (string, error) {
	src, cleanup, err := materialize(f)
	if err != nil {
		return "", err
	}
	defer cleanup()

	dur, err := t.probeDuration(ctx, src)
	if err != nil {
		return "", err
	}

	seek := 1.0
	if dur/2 < seek {
		seek = dur / 2
	}

	if dstDir == "" {
		dstDir = os.TempDir()
	}
	dst := filepath.Join(dstDir, uuid.New().String()+".jpg")

	dim := strconv.Itoa(t.maxDim())
	scale := fmt.Sprintf("scale='min(%s,iw)':'min(%s,ih)':force_original_aspect_ratio=decrease", dim, dim)

	cmd := exec.CommandContext(ctx, t.ffmpeg(),
		"-y",
		"-ss", strconv.FormatFloat(seek, 'f', 3, 64),
		"-i", src,
		"-frames:v", "1",
		"-vf", scale,
		"-q:v", "5",
		dst,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return dst, nil
}

func (t *FFmpegThumbnailer) probeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, t.ffprobe(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return dur, nil
}

// materialize makes the blob addressable on disk. Path-backed blobs are
// used in place; anything else is spooled to a temp file.
func materialize(f models.FileRef) (path string, cleanup func(), err error) {
	if p, ok := f.Blob.(models.PathBlob); ok {
		return string(p), func() {}, nil
	}

	rc, err := f.Blob.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "mediaup-*"+filepath.Ext(f.Name))
	if err != nil {
		return "", nil, fmt.Errorf("temp file: %w", err)
	}
	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("spool %s: %w", f.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, err
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}
