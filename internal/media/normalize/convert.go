package normalize

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/socialhub/mediaup/internal/media/models"
)

// Converter turns an image into a broadly renderable encoding.
type Converter interface {
	ConvertImage(ctx context.Context, f models.FileRef) (models.FileRef, error)
}

// ImagingConverter decodes with whatever codecs are registered and
// re-encodes as JPEG. Decoding HEIC requires a registered decoder;
// without one the conversion fails and callers degrade per policy.
type ImagingConverter struct {
	// Quality is the JPEG quality, 1-100. Zero means 85.
	Quality int
}

func (c *ImagingConverter) ConvertImage(ctx context.Context, f models.FileRef) (models.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return models.FileRef{}, err
	}

	rc, err := f.Blob.Open()
	if err != nil {
		return models.FileRef{}, err
	}
	defer rc.Close()

	img, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return models.FileRef{}, fmt.Errorf("decode: %w", err)
	}

	q := c.Quality
	if q == 0 {
		q = 85
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(q)); err != nil {
		return models.FileRef{}, fmt.Errorf("encode: %w", err)
	}

	return models.NewFileRef(replaceExt(f.Name, ".jpg"), "image/jpeg", buf.Bytes()), nil
}

func replaceExt(name, ext string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i] + ext
	}
	return name + ext
}
