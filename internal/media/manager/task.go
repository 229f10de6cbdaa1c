package manager

import (
	"github.com/socialhub/mediaup/internal/filex"
	"github.com/socialhub/mediaup/internal/media/models"
)

// startUpload launches the transfer task for one entry. The task runs
// the state machine pending/error -> uploading -> success|error; every
// async effect funnels through update, so an entry removed mid-flight
// simply stops absorbing events.
func (m *Manager) startUpload(id string, f models.FileRef) {
	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		m.runUpload(id, f)
	}()
}

func (m *Manager) runUpload(id string, f models.FileRef) {
	ctx := m.ctx

	if !m.update(id, func(e *models.Entry) {
		e.Status = models.StatusUploading
		e.Progress = 0
		e.ErrorMessage = ""
	}) {
		return
	}

	prepared, err := m.deps.Normalizer.ForUpload(ctx, f)
	if err != nil {
		m.failUpload(id, err)
		return
	}

	strategy := m.deps.Selector.For(prepared.Size)
	url, err := strategy.Upload(ctx, prepared, func(percent int) {
		m.update(id, func(e *models.Entry) {
			// Monotonic while uploading; late ticks after a terminal
			// transition are dropped.
			if e.Status == models.StatusUploading && percent > e.Progress {
				e.Progress = percent
			}
		})
	})
	if err != nil {
		m.failUpload(id, err)
		return
	}

	if m.update(id, func(e *models.Entry) {
		e.Status = models.StatusSuccess
		e.Progress = 100
		e.PreviewURL = url
		e.RemoteURL = url
	}) {
		m.log.Info(ctx, "upload finished", "id", id, "url", url)
	} else {
		// The entry was removed while the transfer was in flight; the
		// object just written is orphaned, reclaim it best-effort.
		m.log.Info(ctx, "upload finished for removed entry, deleting object", "id", id, "url", url)
		m.deps.Cleaner.Release(ctx, &models.Entry{ID: id, RemoteURL: url})
	}
}

func (m *Manager) failUpload(id string, err error) {
	m.log.Warn(m.ctx, "upload failed", "id", id, "error", err)
	m.update(id, func(e *models.Entry) {
		e.Status = models.StatusError
		e.ErrorMessage = err.Error()
		// Progress stays at its last value.
	})
}

// startPreviewRender launches the deferred preview task (HEIC software
// conversion, video thumbnail). Preview production is independent of
// transfer status: it patches only the preview fields.
func (m *Manager) startPreviewRender(id string, f models.FileRef, kind models.Kind) {
	m.tasks.Add(1)
	go func() {
		defer m.tasks.Done()
		ctx := m.ctx

		url, local, err := m.deps.Normalizer.RenderPreview(ctx, f, kind)
		if err != nil {
			// Non-fatal: the placeholder preview stays in place.
			m.log.Warn(ctx, "preview render failed", "id", id, "error", err)
			return
		}

		applied := m.update(id, func(e *models.Entry) {
			e.LocalPreview = local
			// A finished upload already swapped in the remote URL; the
			// local artifact is kept only for cleanup then.
			if e.Status != models.StatusSuccess {
				e.PreviewURL = url
			}
		})
		if !applied && local != "" {
			// Entry removed before the preview landed: nothing owns the
			// artifact anymore.
			if _, rerr := filex.RemoveQuiet(local); rerr != nil {
				m.log.Warn(ctx, "failed to remove orphaned preview", "id", id, "error", rerr)
			}
		}
	}()
}
