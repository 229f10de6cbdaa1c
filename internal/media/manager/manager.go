// Package manager orchestrates the upload pipeline: intake validation,
// per-file upload tasks, progress tracking, persistence of completed
// uploads and cleanup on removal.
package manager

import (
	"context"
	"slices"
	"sync"

	"github.com/socialhub/mediaup/internal/common"
	"github.com/socialhub/mediaup/internal/logging"
	"github.com/socialhub/mediaup/internal/media/cleanup"
	"github.com/socialhub/mediaup/internal/media/models"
	"github.com/socialhub/mediaup/internal/media/persist"
	"github.com/socialhub/mediaup/internal/media/transfer"
)

// DefaultImageTypes and DefaultVideoTypes are the MIME allow-lists used
// when the config does not override them.
var (
	DefaultImageTypes = []string{
		"image/jpeg", "image/png", "image/gif", "image/webp",
		"image/heic", "image/heif",
	}
	DefaultVideoTypes = []string{
		"video/mp4", "video/quicktime", "video/webm",
	}
)

const (
	DefaultMaxFiles      = 10
	DefaultMaxImageBytes = 10 << 20
	DefaultMaxVideoBytes = 100 << 20
)

// Config bounds intake.
type Config struct {
	MaxFiles      int
	MaxImageBytes int64
	MaxVideoBytes int64

	AllowedImageTypes []string
	AllowedVideoTypes []string
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxFiles <= 0 {
		out.MaxFiles = DefaultMaxFiles
	}
	if out.MaxImageBytes <= 0 {
		out.MaxImageBytes = DefaultMaxImageBytes
	}
	if out.MaxVideoBytes <= 0 {
		out.MaxVideoBytes = DefaultMaxVideoBytes
	}
	if out.AllowedImageTypes == nil {
		out.AllowedImageTypes = DefaultImageTypes
	}
	if out.AllowedVideoTypes == nil {
		out.AllowedVideoTypes = DefaultVideoTypes
	}
	return out
}

// StrategySelector picks a transfer strategy by file size.
type StrategySelector interface {
	For(size int64) transfer.Strategy
}

// Normalizer prepares previews and upload-ready content.
type Normalizer interface {
	QuickPreview(ctx context.Context, f models.FileRef, kind models.Kind) (url string, deferred bool)
	RenderPreview(ctx context.Context, f models.FileRef, kind models.Kind) (url string, localPath string, err error)
	ForUpload(ctx context.Context, f models.FileRef) (models.FileRef, error)
}

// Deps are the collaborators a Manager is constructed with. There is no
// process-wide registry: whoever embeds the pipeline builds a Manager
// and owns its lifecycle.
type Deps struct {
	Selector   StrategySelector
	Normalizer Normalizer
	Store      persist.Store
	Cleaner    *cleanup.Coordinator
	Logger     logging.Logger
}

// Manager owns the ordered collection of upload entries. The collection
// is copy-on-write: every mutation clones the affected entry into a
// fresh snapshot, so concurrent tasks for different entries never
// corrupt each other and readers never observe partial writes.
type Manager struct {
	cfg  Config
	deps Deps
	log  logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	entries  []*models.Entry
	seq      uint64
	hydrated bool
	closed   bool

	tasks sync.WaitGroup

	onChange func([]*models.Entry)

	// sideMu serializes persistence and change delivery; the seq taken
	// under mu lets stale snapshots be dropped instead of racing newer
	// ones out of order.
	sideMu        sync.Mutex
	persistedSeq  uint64
	deliveredSeq  uint64
	lastPersisted []models.StorablePlaceholder
}

func New(cfg Config, deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if deps.Cleaner == nil {
		deps.Cleaner = cleanup.NewCoordinator(nil, deps.Logger)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:    cfg.withDefaults(),
		deps:   deps,
		log:    deps.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Hydrate restores persisted placeholders into an empty collection.
// It runs at most once per manager lifetime so a late call can never
// clobber in-progress edits.
func (m *Manager) Hydrate(ctx context.Context) error {
	if m.deps.Store == nil {
		return nil
	}

	m.mu.Lock()
	if m.hydrated || len(m.entries) > 0 {
		m.hydrated = true
		m.mu.Unlock()
		return nil
	}
	m.hydrated = true
	m.mu.Unlock()

	placeholders, err := m.deps.Store.Load(ctx)
	if err != nil {
		return err
	}
	if len(placeholders) == 0 {
		return nil
	}

	entries := make([]*models.Entry, len(placeholders))
	for i, p := range placeholders {
		entries[i] = p.ToEntry()
	}

	m.mu.Lock()
	if len(m.entries) > 0 {
		m.mu.Unlock()
		return nil
	}
	m.entries = entries
	snapshot, seq := m.changedLocked()
	m.mu.Unlock()

	m.sideMu.Lock()
	m.persistedSeq = seq
	m.lastPersisted = placeholders
	m.sideMu.Unlock()

	m.notify(snapshot, seq)
	return nil
}

// Entries returns the collection in insertion order. The returned
// entries are clones; mutating them has no effect on the manager.
func (m *Manager) Entries() []*models.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// AcceptedURLs returns the preview URL of every successful entry, in
// collection order. This is the list downstream composers attach.
func (m *Manager) AcceptedURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var urls []string
	for _, e := range m.entries {
		if e.Status == models.StatusSuccess {
			urls = append(urls, e.PreviewURL)
		}
	}
	return urls
}

// SetOnChange registers a callback invoked with a fresh snapshot after
// every collection change.
func (m *Manager) SetOnChange(fn func([]*models.Entry)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Retry re-runs the transfer for an entry currently in the error state.
func (m *Manager) Retry(id string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return common.ErrManagerClosed
	}
	var target *models.Entry
	for _, e := range m.entries {
		if e.ID == id {
			target = e
			break
		}
	}
	m.mu.Unlock()

	if target == nil {
		return common.ErrEntryNotFound
	}
	if target.Status != models.StatusError {
		return common.ErrNotRetryable
	}

	m.startUpload(target.ID, target.File)
	return nil
}

// Wait blocks until every in-flight task (transfers and deferred
// previews) has settled.
func (m *Manager) Wait() {
	m.tasks.Wait()
}

// Close stops accepting work, cancels in-flight task contexts and waits
// for them to settle.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cancel()
	m.tasks.Wait()
}

// snapshotLocked clones the collection. Callers hold m.mu.
func (m *Manager) snapshotLocked() []*models.Entry {
	out := make([]*models.Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Clone()
	}
	return out
}

// update is the single write path for async entry mutations. It applies
// fn to a clone of the entry with the given id inside a fresh snapshot.
// An unknown id is a silent no-op: a transfer or conversion finishing
// after its entry was removed must have no observable effect.
func (m *Manager) update(id string, fn func(e *models.Entry)) bool {
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
		return false
	}

	next := slices.Clone(m.entries)
	e := next[idx].Clone()
	fn(e)
	next[idx] = e
	m.entries = next
	snapshot, seq := m.changedLocked()
	m.mu.Unlock()

	m.afterChange(snapshot, seq)
	return true
}

// changedLocked clones the collection and stamps the change with the
// next sequence number. Callers hold m.mu.
func (m *Manager) changedLocked() ([]*models.Entry, uint64) {
	m.seq++
	return m.snapshotLocked(), m.seq
}

// afterChange persists the success projection when it changed and fires
// the change callback. Snapshots older than one already handled are
// dropped so concurrent task completions cannot publish stale state.
func (m *Manager) afterChange(snapshot []*models.Entry, seq uint64) {
	m.persistSnapshot(snapshot, seq)
	m.notify(snapshot, seq)
}

func (m *Manager) persistSnapshot(snapshot []*models.Entry, seq uint64) {
	if m.deps.Store == nil {
		return
	}

	var projection []models.StorablePlaceholder
	for i, e := range snapshot {
		if e.Status == models.StatusSuccess && e.PreviewURL != "" {
			projection = append(projection, e.ToPlaceholder(i))
		}
	}

	m.sideMu.Lock()
	defer m.sideMu.Unlock()
	if seq <= m.persistedSeq {
		return
	}
	m.persistedSeq = seq
	if slices.Equal(m.lastPersisted, projection) {
		return
	}
	m.lastPersisted = projection

	if err := m.deps.Store.Replace(m.ctx, projection); err != nil {
		m.log.Error(m.ctx, "failed to persist placeholders", "error", err)
	}
}

func (m *Manager) notify(snapshot []*models.Entry, seq uint64) {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn == nil {
		return
	}

	m.sideMu.Lock()
	defer m.sideMu.Unlock()
	if seq <= m.deliveredSeq {
		return
	}
	m.deliveredSeq = seq
	fn(snapshot)
}
