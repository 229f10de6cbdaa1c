// Package normalize prepares files for display and transfer: image
// previews, conversion of encodings without broad rendering support,
// and video thumbnails.
package normalize

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/socialhub/mediaup/internal/logging"
	"github.com/socialhub/mediaup/internal/media/models"
)

// placeholderPNG is a 1x1 grey pixel shown while a real preview is
// being produced.
const placeholderPNG = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNsaGj4DwAFhAJ/l5DyXwAAAABJRU5ErkJggg=="

// Normalizer owns preview generation and upload-time format fixes.
type Normalizer struct {
	converter   Converter
	thumbnailer Thumbnailer
	previewDir  string
	nativeHEIC  bool
	log         logging.Logger
}

// Options configures a Normalizer. Zero-value fields fall back to the
// imaging converter, the ffmpeg thumbnailer and a nop logger.
type Options struct {
	Converter   Converter
	Thumbnailer Thumbnailer
	PreviewDir  string
	NativeHEIC  bool
	Logger      logging.Logger
}

func New(opts Options) *Normalizer {
	n := &Normalizer{
		converter:   opts.Converter,
		thumbnailer: opts.Thumbnailer,
		previewDir:  opts.PreviewDir,
		nativeHEIC:  opts.NativeHEIC,
		log:         opts.Logger,
	}
	if n.converter == nil {
		n.converter = &ImagingConverter{}
	}
	if n.thumbnailer == nil {
		n.thumbnailer = &FFmpegThumbnailer{}
	}
	if n.log == nil {
		n.log = logging.NewNopLogger()
	}
	return n
}

// IsHEIC reports whether the file is in the camera-native HEIC/HEIF
// encoding class, which most runtimes cannot render natively.
func IsHEIC(f models.FileRef) bool {
	switch strings.ToLower(f.MIME) {
	case "image/heic", "image/heif", "image/heic-sequence", "image/heif-sequence":
		return true
	}
	switch strings.ToLower(filepath.Ext(f.Name)) {
	case ".heic", ".heif":
		return true
	}
	return false
}

// needsConversion is true when the encoding lacks broad rendering
// support and the runtime does not render it natively.
func (n *Normalizer) needsConversion(f models.FileRef) bool {
	return IsHEIC(f) && !n.nativeHEIC
}

// QuickPreview returns a preview usable immediately after intake. For
// standard images that is the raw bytes as a data URL; for HEIC without
// native support and for video it is a placeholder, and deferred=true
// tells the caller to schedule RenderPreview.
func (n *Normalizer) QuickPreview(ctx context.Context, f models.FileRef, kind models.Kind) (url string, deferred bool) {
	if kind == models.KindVideo {
		return placeholderPNG, true
	}
	if n.needsConversion(f) {
		return placeholderPNG, true
	}
	u, err := blobDataURL(f)
	if err != nil {
		n.log.Warn(ctx, "preview read failed, keeping placeholder", "name", f.Name, "error", err)
		return placeholderPNG, false
	}
	return u, false
}

// RenderPreview produces the real preview for entries that got a
// placeholder from QuickPreview. It returns the preview URL plus the
// locally owned artifact path, if one was written to disk. Failures
// degrade rather than fail: HEIC keeps the placeholder, video falls
// back to the raw bytes as a data URL.
func (n *Normalizer) RenderPreview(ctx context.Context, f models.FileRef, kind models.Kind) (url string, localPath string, err error) {
	if kind == models.KindVideo {
		path, terr := n.thumbnailer.Thumbnail(ctx, f, n.previewDir)
		if terr == nil {
			return path, path, nil
		}
		n.log.Warn(ctx, "video thumbnail failed, falling back to raw preview", "name", f.Name, "error", terr)
		u, derr := blobDataURL(f)
		if derr != nil {
			return "", "", fmt.Errorf("thumbnail fallback: %w", derr)
		}
		return u, "", nil
	}

	converted, cerr := n.converter.ConvertImage(ctx, f)
	if cerr != nil {
		return "", "", fmt.Errorf("convert %s: %w", f.Name, cerr)
	}
	u, derr := blobDataURL(converted)
	if derr != nil {
		return "", "", fmt.Errorf("converted preview: %w", derr)
	}
	return u, "", nil
}

// ForUpload returns the file that should actually be transferred.
// HEIC without native support is converted and substituted, keeping
// the original base name with the extension corrected. Unlike preview
// conversion, a failure here fails the transfer.
func (n *Normalizer) ForUpload(ctx context.Context, f models.FileRef) (models.FileRef, error) {
	if !n.needsConversion(f) {
		return f, nil
	}
	converted, err := n.converter.ConvertImage(ctx, f)
	if err != nil {
		return models.FileRef{}, fmt.Errorf("normalize %s: %w", f.Name, err)
	}
	return converted, nil
}

// SniffMIME fills in a missing declared MIME type by sniffing content.
func SniffMIME(f models.FileRef) (string, error) {
	if f.MIME != "" {
		return f.MIME, nil
	}
	rc, err := f.Blob.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", fmt.Errorf("detect mime: %w", err)
	}
	return mt.String(), nil
}

func blobDataURL(f models.FileRef) (string, error) {
	rc, err := f.Blob.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return DataURL(f.MIME, b), nil
}

// DataURL encodes bytes as a base64 data URL.
func DataURL(mime string, b []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}
