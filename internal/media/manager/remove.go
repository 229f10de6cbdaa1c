package manager

import (
	"context"
	"slices"

	"github.com/socialhub/mediaup/internal/common"
	"github.com/socialhub/mediaup/internal/media/models"
)

// RemoveOne detaches the entry from the collection, releases its local
// preview and, if it had been uploaded, issues a best-effort remote
// delete. The entry is gone from the collection when this returns,
// whatever the remote outcome was. An in-flight transfer for the entry
// is not aborted; its late completion is dropped by the update funnel.
func (m *Manager) RemoveOne(ctx context.Context, id string) error {
	m.mu.Lock()
	idx := -1
	for i, e := range m.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return common.ErrEntryNotFound
	}

	removed := m.entries[idx].Clone()
	removed.Status = models.StatusRemoving
	m.entries = slices.Delete(slices.Clone(m.entries), idx, idx+1)
	snapshot, seq := m.changedLocked()
	m.mu.Unlock()

	m.deps.Cleaner.Release(ctx, removed)
	m.afterChange(snapshot, seq)
	return nil
}

// RemoveAll empties the collection. Every applicable remote delete is
// attempted concurrently and allowed to settle; failures are logged,
// and both the collection and the persisted placeholder set end up
// empty regardless.
func (m *Manager) RemoveAll(ctx context.Context) error {
	m.mu.Lock()
	removed := make([]*models.Entry, len(m.entries))
	for i, e := range m.entries {
		c := e.Clone()
		c.Status = models.StatusRemoving
		removed[i] = c
	}
	m.entries = nil
	snapshot, seq := m.changedLocked()
	m.mu.Unlock()

	m.deps.Cleaner.ReleaseAll(ctx, removed)

	m.clearPersisted(ctx, seq)
	m.notify(snapshot, seq)
	return nil
}

func (m *Manager) clearPersisted(ctx context.Context, seq uint64) {
	if m.deps.Store == nil {
		return
	}
	m.sideMu.Lock()
	defer m.sideMu.Unlock()
	if seq > m.persistedSeq {
		m.persistedSeq = seq
	}
	m.lastPersisted = nil
	if err := m.deps.Store.Clear(ctx); err != nil {
		m.log.Error(ctx, "failed to clear persisted placeholders", "error", err)
	}
}
