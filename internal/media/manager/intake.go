package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/socialhub/mediaup/internal/common"
	"github.com/socialhub/mediaup/internal/media/models"
	"github.com/socialhub/mediaup/internal/media/normalize"
)

// Rejection records one file excluded at intake and why.
type Rejection struct {
	Name   string
	Reason error
}

// IntakeReport is the outcome of one AddFiles batch. Validation
// failures are per-file conditions, not call errors: the accepted
// prefix is always scheduled.
type IntakeReport struct {
	Added    []*models.Entry
	Rejected []Rejection
}

// TooMany reports whether the batch hit the capacity limit.
func (r *IntakeReport) TooMany() bool {
	for _, rej := range r.Rejected {
		if errors.Is(rej.Reason, common.ErrTooManyFiles) {
			return true
		}
	}
	return false
}

// AddFiles validates the batch, creates entries for the survivors with
// an immediate preview, and schedules each one's upload. Files beyond
// capacity, with a MIME type outside the allow-lists, or over the
// per-kind size cap are rejected without touching already-accepted
// entries.
func (m *Manager) AddFiles(ctx context.Context, files []models.FileRef) (*IntakeReport, error) {
	report := &IntakeReport{}
	var accepted []*models.Entry
	var deferred []*models.Entry

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, common.ErrManagerClosed
	}
	m.hydrated = true // intake means the user is editing; never rehydrate over it
	room := m.cfg.MaxFiles - len(m.entries)

	for _, f := range files {
		if len(accepted) >= room {
			report.Rejected = append(report.Rejected, Rejection{Name: f.Name, Reason: common.ErrTooManyFiles})
			continue
		}

		entry, err := m.validate(ctx, f)
		if err != nil {
			report.Rejected = append(report.Rejected, Rejection{Name: f.Name, Reason: err})
			continue
		}

		url, needsRender := m.deps.Normalizer.QuickPreview(ctx, entry.File, entry.Kind)
		entry.PreviewURL = url
		if needsRender {
			deferred = append(deferred, entry)
		}

		accepted = append(accepted, entry)
	}

	var snapshot []*models.Entry
	var seq uint64
	if len(accepted) > 0 {
		next := slices.Clone(m.entries)
		m.entries = append(next, accepted...)
		snapshot, seq = m.changedLocked()
	}
	m.mu.Unlock()

	if snapshot != nil {
		m.afterChange(snapshot, seq)
	}

	for _, e := range deferred {
		m.startPreviewRender(e.ID, e.File, e.Kind)
	}
	for _, e := range accepted {
		m.startUpload(e.ID, e.File)
	}

	report.Added = accepted
	return report, nil
}

func (m *Manager) validate(ctx context.Context, f models.FileRef) (*models.Entry, error) {
	mime, err := normalize.SniffMIME(f)
	if err != nil {
		m.log.Warn(ctx, "mime sniff failed", "name", f.Name, "error", err)
		return nil, common.ErrUnsupportedType
	}
	f.MIME = mime

	kind := models.KindForMIME(mime)
	switch {
	case kind == models.KindImage && slices.Contains(m.cfg.AllowedImageTypes, mime):
		if f.Size > m.cfg.MaxImageBytes {
			return nil, fmt.Errorf("%s: %w", f.Name, common.ErrFileTooLarge)
		}
	case kind == models.KindVideo && slices.Contains(m.cfg.AllowedVideoTypes, mime):
		if f.Size > m.cfg.MaxVideoBytes {
			return nil, fmt.Errorf("%s: %w", f.Name, common.ErrFileTooLarge)
		}
	default:
		return nil, fmt.Errorf("%s (%s): %w", f.Name, mime, common.ErrUnsupportedType)
	}

	return &models.Entry{
		ID:     uuid.New().String(),
		File:   f,
		Kind:   kind,
		Status: models.StatusPending,
	}, nil
}
