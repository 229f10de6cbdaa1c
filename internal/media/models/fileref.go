package models

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Blob is a re-openable source of file content. Strategies may read it
// more than once (retry), so Open must return a fresh reader each time.
type Blob interface {
	Open() (io.ReadCloser, error)
}

// FileRef describes one file handed to the pipeline: declared metadata
// plus its content source. The content is owned exclusively by the
// entry holding the ref until that entry is discarded.
type FileRef struct {
	Name string
	Size int64
	MIME string
	Blob Blob
}

// BytesBlob serves content from memory.
type BytesBlob []byte

func (b BytesBlob) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// PathBlob serves content from a file on disk.
type PathBlob string

func (p PathBlob) Open() (io.ReadCloser, error) {
	f, err := os.Open(string(p))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", string(p), err)
	}
	return f, nil
}

// PlaceholderBlob stands in for content that no longer exists locally,
// e.g. after rehydrating a persisted entry. It reports the recorded
// size through the FileRef but yields no bytes, which is what makes
// rehydrated entries display-only: there is nothing to re-upload.
type PlaceholderBlob struct{}

func (PlaceholderBlob) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

// NewFileRef builds a FileRef over in-memory content.
func NewFileRef(name, mime string, content []byte) FileRef {
	return FileRef{Name: name, Size: int64(len(content)), MIME: mime, Blob: BytesBlob(content)}
}

// NewPathFileRef builds a FileRef over a file on disk.
func NewPathFileRef(name, mime string, size int64, path string) FileRef {
	return FileRef{Name: name, Size: size, MIME: mime, Blob: PathBlob(path)}
}

// NewPlaceholderFileRef builds a display-only FileRef with the recorded
// metadata and empty content.
func NewPlaceholderFileRef(name, mime string, size int64) FileRef {
	return FileRef{Name: name, Size: size, MIME: mime, Blob: PlaceholderBlob{}}
}
