// Package models defines the upload entry types and their fields.
package models

import (
	"strings"
)

// Kind classifies an accepted file.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// KindForMIME derives the media kind from a MIME type. The empty Kind
// means the type belongs to neither allowed family.
func KindForMIME(mime string) Kind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	default:
		return ""
	}
}

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
	StatusRemoving  Status = "removing"
)

// Entry is one accepted file and its tracked lifecycle. Entries held by
// the manager are treated as immutable: every mutation clones the entry
// and swaps it into a fresh collection snapshot.
type Entry struct {
	ID   string
	File FileRef
	Kind Kind

	Status   Status
	Progress int

	// PreviewURL is whatever the UI should currently render: a data URL,
	// a local thumbnail path, or the remote object URL after success.
	PreviewURL string

	// LocalPreview is the locally owned preview artifact, if one was
	// written to disk. Released exactly once, on removal.
	LocalPreview string

	// RemoteURL is set once the transfer succeeds. Kept separately from
	// PreviewURL so removal knows what to delete remotely.
	RemoteURL string

	ErrorMessage string
}

// Clone returns a copy safe to hand out or mutate.
func (e *Entry) Clone() *Entry {
	c := *e
	return &c
}

// Uploaded reports whether the entry reached the remote store.
func (e *Entry) Uploaded() bool {
	return e.RemoteURL != ""
}
