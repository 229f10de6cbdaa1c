package manager

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialhub/mediaup/internal/common"
	"github.com/socialhub/mediaup/internal/media/cleanup"
	"github.com/socialhub/mediaup/internal/media/models"
	"github.com/socialhub/mediaup/internal/media/transfer"
)

// fakeUploader scripts per-file transfer behavior. By default every
// upload succeeds instantly with a URL derived from the file name.
type fakeUploader struct {
	mu      sync.Mutex
	fn      func(f models.FileRef, onProgress transfer.ProgressFunc) (string, error)
	uploads []string
}

func (u *fakeUploader) Upload(ctx context.Context, f models.FileRef, onProgress transfer.ProgressFunc) (string, error) {
	u.mu.Lock()
	u.uploads = append(u.uploads, f.Name)
	fn := u.fn
	u.mu.Unlock()
	if fn != nil {
		return fn(f, onProgress)
	}
	return "https://cdn.test/" + f.Name, nil
}

func (u *fakeUploader) For(size int64) transfer.Strategy { return u }

// fakeNormalizer defers previews for the names listed in deferNames and
// otherwise returns a quick data URL.
type fakeNormalizer struct {
	mu         sync.Mutex
	deferNames map[string]bool
	renderGate chan struct{}
	renderErr  error
	localPath  string
	uploadErr  error
}

func (n *fakeNormalizer) QuickPreview(ctx context.Context, f models.FileRef, kind models.Kind) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deferNames[f.Name] {
		return "data:placeholder", true
	}
	return "data:quick/" + f.Name, false
}

func (n *fakeNormalizer) RenderPreview(ctx context.Context, f models.FileRef, kind models.Kind) (string, string, error) {
	n.mu.Lock()
	gate := n.renderGate
	err := n.renderErr
	local := n.localPath
	n.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", "", err
	}
	return "data:rendered/" + f.Name, local, nil
}

func (n *fakeNormalizer) ForUpload(ctx context.Context, f models.FileRef) (models.FileRef, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.uploadErr != nil {
		return models.FileRef{}, n.uploadErr
	}
	return f, nil
}

// fakeRemote records remote delete attempts.
type fakeRemote struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (r *fakeRemote) Delete(ctx context.Context, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, url)
	return r.err
}

func (r *fakeRemote) deletedURLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

// memStore is an in-memory persist.Store.
type memStore struct {
	mu  sync.Mutex
	set []models.StorablePlaceholder
}

func (s *memStore) Replace(ctx context.Context, p []models.StorablePlaceholder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = append([]models.StorablePlaceholder(nil), p...)
	return nil
}

func (s *memStore) Load(ctx context.Context) ([]models.StorablePlaceholder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.StorablePlaceholder(nil), s.set...), nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set = nil
	return nil
}

func (s *memStore) snapshot() []models.StorablePlaceholder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.StorablePlaceholder(nil), s.set...)
}

type testEnv struct {
	mgr      *Manager
	uploader *fakeUploader
	norm     *fakeNormalizer
	remote   *fakeRemote
	store    *memStore
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	env := &testEnv{
		uploader: &fakeUploader{},
		norm:     &fakeNormalizer{deferNames: map[string]bool{}},
		remote:   &fakeRemote{},
		store:    &memStore{},
	}
	env.mgr = New(cfg, Deps{
		Selector:   env.uploader,
		Normalizer: env.norm,
		Store:      env.store,
		Cleaner:    cleanup.NewCoordinator(env.remote, nil),
	})
	t.Cleanup(env.mgr.Close)
	return env
}

func imageRef(name string, size int64) models.FileRef {
	return models.FileRef{Name: name, Size: size, MIME: "image/jpeg", Blob: models.BytesBlob("x")}
}

func videoRef(name string, size int64) models.FileRef {
	return models.FileRef{Name: name, Size: size, MIME: "video/mp4", Blob: models.BytesBlob("x")}
}

func entryByID(m *Manager, id string) *models.Entry {
	for _, e := range m.Entries() {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func TestAddFiles_AcceptsPrefixUpToCapacity(t *testing.T) {
	env := newTestEnv(t, Config{MaxFiles: 10})

	files := make([]models.FileRef, 11)
	for i := range files {
		files[i] = imageRef(fmt.Sprintf("img-%02d.jpg", i), 100)
	}

	report, err := env.mgr.AddFiles(context.Background(), files)
	require.NoError(t, err)

	assert.Len(t, report.Added, 10)
	assert.Len(t, report.Rejected, 1)
	assert.True(t, report.TooMany())
	assert.Equal(t, "img-10.jpg", report.Rejected[0].Name)
	assert.Len(t, env.mgr.Entries(), 10)
}

func TestAddFiles_ExistingEntriesAreNeverEvicted(t *testing.T) {
	env := newTestEnv(t, Config{MaxFiles: 3})

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("a.jpg", 1), imageRef("b.jpg", 1),
	})
	require.NoError(t, err)
	env.mgr.Wait()

	report, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("c.jpg", 1), imageRef("d.jpg", 1),
	})
	require.NoError(t, err)

	assert.Len(t, report.Added, 1)
	assert.True(t, report.TooMany())

	names := []string{}
	for _, e := range env.mgr.Entries() {
		names = append(names, e.File.Name)
	}
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, names)
}

func TestAddFiles_RejectsInvalidFiles(t *testing.T) {
	tests := []struct {
		name string
		file models.FileRef
		want error
	}{
		{"unsupported type", models.FileRef{Name: "doc.pdf", Size: 10, MIME: "application/pdf", Blob: models.BytesBlob("x")}, common.ErrUnsupportedType},
		{"mime outside allow-list", models.FileRef{Name: "x.tiff", Size: 10, MIME: "image/tiff", Blob: models.BytesBlob("x")}, common.ErrUnsupportedType},
		{"oversized image", imageRef("big.jpg", 10<<20+1), common.ErrFileTooLarge},
		{"oversized video", videoRef("big.mp4", 100<<20+1), common.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Config{})
			report, err := env.mgr.AddFiles(context.Background(), []models.FileRef{tt.file})
			require.NoError(t, err)
			assert.Empty(t, report.Added)
			require.Len(t, report.Rejected, 1)
			assert.ErrorIs(t, report.Rejected[0].Reason, tt.want)
			assert.Empty(t, env.mgr.Entries())
		})
	}
}

func TestAddFiles_RejectionDoesNotAffectSiblings(t *testing.T) {
	env := newTestEnv(t, Config{})

	report, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("ok.jpg", 100),
		{Name: "doc.pdf", Size: 10, MIME: "application/pdf", Blob: models.BytesBlob("x")},
		videoRef("ok.mp4", 100),
	})
	require.NoError(t, err)
	env.mgr.Wait()

	assert.Len(t, report.Added, 2)
	assert.Len(t, report.Rejected, 1)
	assert.Equal(t, []string{"https://cdn.test/ok.jpg", "https://cdn.test/ok.mp4"}, env.mgr.AcceptedURLs())
}

func TestAcceptedURLs_OnlySuccessInOrder(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.uploader.fn = func(f models.FileRef, _ transfer.ProgressFunc) (string, error) {
		if f.Name == "bad.jpg" {
			return "", fmt.Errorf("network down")
		}
		return "https://cdn.test/" + f.Name, nil
	}

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("a.jpg", 1), imageRef("bad.jpg", 1), imageRef("b.jpg", 1),
	})
	require.NoError(t, err)
	env.mgr.Wait()

	assert.Equal(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, env.mgr.AcceptedURLs())

	bad := env.mgr.Entries()[1]
	assert.Equal(t, models.StatusError, bad.Status)
	assert.Contains(t, bad.ErrorMessage, "network down")
}

func TestUpload_ProgressIsPerEntryAndMonotonic(t *testing.T) {
	env := newTestEnv(t, Config{})

	gates := map[string]chan int{
		"a.jpg": make(chan int),
		"b.mp4": make(chan int),
	}
	env.uploader.fn = func(f models.FileRef, onProgress transfer.ProgressFunc) (string, error) {
		for p := range gates[f.Name] {
			onProgress(p)
		}
		return "https://cdn.test/" + f.Name, nil
	}

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("a.jpg", 5<<20), videoRef("b.mp4", 50<<20),
	})
	require.NoError(t, err)

	entries := env.mgr.Entries()
	require.Len(t, entries, 2)
	aID, bID := entries[0].ID, entries[1].ID

	require.Eventually(t, func() bool {
		return entryByID(env.mgr, aID).Status == models.StatusUploading &&
			entryByID(env.mgr, bID).Status == models.StatusUploading
	}, time.Second, time.Millisecond)

	gates["a.jpg"] <- 40
	require.Eventually(t, func() bool {
		return entryByID(env.mgr, aID).Progress == 40
	}, time.Second, time.Millisecond)

	// Feeding A's progress must not alter B.
	assert.Equal(t, 0, entryByID(env.mgr, bID).Progress)

	gates["b.mp4"] <- 70
	require.Eventually(t, func() bool {
		return entryByID(env.mgr, bID).Progress == 70
	}, time.Second, time.Millisecond)
	assert.Equal(t, 40, entryByID(env.mgr, aID).Progress)

	// A regressing progress event is dropped.
	gates["b.mp4"] <- 30
	close(gates["a.jpg"])
	close(gates["b.mp4"])
	env.mgr.Wait()

	assert.Equal(t, 100, entryByID(env.mgr, aID).Progress)
	assert.Equal(t, models.StatusSuccess, entryByID(env.mgr, bID).Status)
}

func TestRetry_ErrorEntryUploadsAgain(t *testing.T) {
	env := newTestEnv(t, Config{})

	var fail = true
	var mu sync.Mutex
	env.uploader.fn = func(f models.FileRef, _ transfer.ProgressFunc) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return "", fmt.Errorf("server unavailable")
		}
		return "https://cdn.test/" + f.Name, nil
	}

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{imageRef("a.jpg", 1)})
	require.NoError(t, err)
	env.mgr.Wait()

	entry := env.mgr.Entries()[0]
	require.Equal(t, models.StatusError, entry.Status)

	mu.Lock()
	fail = false
	mu.Unlock()

	require.NoError(t, env.mgr.Retry(entry.ID))
	env.mgr.Wait()

	entry = env.mgr.Entries()[0]
	assert.Equal(t, models.StatusSuccess, entry.Status)
	assert.Equal(t, "https://cdn.test/a.jpg", entry.PreviewURL)
	assert.Equal(t, 100, entry.Progress)
}

func TestRetry_Preconditions(t *testing.T) {
	env := newTestEnv(t, Config{})

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{imageRef("a.jpg", 1)})
	require.NoError(t, err)
	env.mgr.Wait()

	entry := env.mgr.Entries()[0]
	require.Equal(t, models.StatusSuccess, entry.Status)

	assert.ErrorIs(t, env.mgr.Retry(entry.ID), common.ErrNotRetryable)
	assert.ErrorIs(t, env.mgr.Retry("no-such-id"), common.ErrEntryNotFound)
}

func TestRemoveOne_RemovedEvenWhenRemoteDeleteFails(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.remote.err = fmt.Errorf("remote says no")

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{imageRef("a.jpg", 1)})
	require.NoError(t, err)
	env.mgr.Wait()

	entry := env.mgr.Entries()[0]
	require.NoError(t, env.mgr.RemoveOne(context.Background(), entry.ID))

	assert.Empty(t, env.mgr.Entries())
	assert.Empty(t, env.mgr.AcceptedURLs())
	assert.Equal(t, []string{"https://cdn.test/a.jpg"}, env.remote.deletedURLs())
	assert.Empty(t, env.store.snapshot())

	assert.ErrorIs(t, env.mgr.RemoveOne(context.Background(), entry.ID), common.ErrEntryNotFound)
}

func TestRemoveOne_PendingEntryNeedsNoRemoteCall(t *testing.T) {
	env := newTestEnv(t, Config{})
	gate := make(chan int)
	env.uploader.fn = func(f models.FileRef, _ transfer.ProgressFunc) (string, error) {
		<-gate
		return "", fmt.Errorf("aborted")
	}

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{imageRef("a.jpg", 1)})
	require.NoError(t, err)

	entry := env.mgr.Entries()[0]
	require.NoError(t, env.mgr.RemoveOne(context.Background(), entry.ID))
	close(gate)
	env.mgr.Wait()

	assert.Empty(t, env.mgr.Entries())
	assert.Empty(t, env.remote.deletedURLs())
}

func TestRemoveAll_AttemptsEveryDeleteAndClearsEverything(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.remote.err = fmt.Errorf("delete endpoint down")

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("a.jpg", 1), imageRef("b.jpg", 1), imageRef("c.jpg", 1),
	})
	require.NoError(t, err)
	env.mgr.Wait()
	require.Len(t, env.mgr.AcceptedURLs(), 3)
	require.Len(t, env.store.snapshot(), 3)

	require.NoError(t, env.mgr.RemoveAll(context.Background()))

	assert.Len(t, env.remote.deletedURLs(), 3)
	assert.Empty(t, env.mgr.Entries())
	assert.Empty(t, env.store.snapshot())
}

func TestDeferredPreview_ReplacesPlaceholderIndependentOfTransfer(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.norm.deferNames["photo.heic"] = true
	env.norm.renderGate = make(chan struct{})

	uploadGate := make(chan int)
	env.uploader.fn = func(f models.FileRef, _ transfer.ProgressFunc) (string, error) {
		<-uploadGate
		return "https://cdn.test/" + f.Name, nil
	}

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		{Name: "photo.heic", Size: 100, MIME: "image/heic", Blob: models.BytesBlob("x")},
	})
	require.NoError(t, err)

	entry := env.mgr.Entries()[0]
	assert.Equal(t, "data:placeholder", entry.PreviewURL)

	close(env.norm.renderGate)
	require.Eventually(t, func() bool {
		return entryByID(env.mgr, entry.ID).PreviewURL == "data:rendered/photo.heic"
	}, time.Second, time.Millisecond)

	// Conversion landed while the transfer is still running.
	st := entryByID(env.mgr, entry.ID).Status
	assert.Contains(t, []models.Status{models.StatusPending, models.StatusUploading}, st)

	close(uploadGate)
	env.mgr.Wait()
	assert.Equal(t, models.StatusSuccess, entryByID(env.mgr, entry.ID).Status)
}

func TestDeferredPreview_FailureKeepsPlaceholder(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.norm.deferNames["photo.heic"] = true
	env.norm.renderErr = fmt.Errorf("no codec")

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		{Name: "photo.heic", Size: 100, MIME: "image/heic", Blob: models.BytesBlob("x")},
	})
	require.NoError(t, err)
	env.mgr.Wait()

	entry := env.mgr.Entries()[0]
	// Upload still succeeded; the preview became the remote URL.
	assert.Equal(t, models.StatusSuccess, entry.Status)
}

func TestNormalizationFailure_FailsTransfer(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.norm.uploadErr = fmt.Errorf("conversion blew up")

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{imageRef("a.jpg", 1)})
	require.NoError(t, err)
	env.mgr.Wait()

	entry := env.mgr.Entries()[0]
	assert.Equal(t, models.StatusError, entry.Status)
	assert.Contains(t, entry.ErrorMessage, "conversion blew up")
	assert.Empty(t, env.uploader.uploads)
}

func TestLateCompletionAfterRemovalIsDropped(t *testing.T) {
	env := newTestEnv(t, Config{})
	gate := make(chan int)
	env.uploader.fn = func(f models.FileRef, _ transfer.ProgressFunc) (string, error) {
		<-gate
		return "https://cdn.test/" + f.Name, nil
	}

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{imageRef("a.jpg", 1)})
	require.NoError(t, err)

	id := env.mgr.Entries()[0].ID
	require.Eventually(t, func() bool {
		return entryByID(env.mgr, id).Status == models.StatusUploading
	}, time.Second, time.Millisecond)

	require.NoError(t, env.mgr.RemoveOne(context.Background(), id))
	close(gate)
	env.mgr.Wait()

	assert.Empty(t, env.mgr.Entries())
	assert.Empty(t, env.mgr.AcceptedURLs())
	assert.Empty(t, env.store.snapshot())
	// The object written by the late completion is reclaimed.
	assert.Equal(t, []string{"https://cdn.test/a.jpg"}, env.remote.deletedURLs())
}

func TestStateTransitions_OnlyLegalOnesObservable(t *testing.T) {
	env := newTestEnv(t, Config{})

	// Change delivery may coalesce rapid updates, so what is observable
	// is any pair reachable through the legal single steps
	// pending->uploading, uploading->success|error, error->uploading.
	// Pairs like success->uploading or success->error must never appear.
	reachable := map[string]bool{
		"pending->pending":     true,
		"pending->uploading":   true,
		"pending->success":     true,
		"pending->error":       true,
		"uploading->uploading": true,
		"uploading->success":   true,
		"uploading->error":     true,
		"error->uploading":     true,
		"error->success":       true,
		"error->error":         true,
		// A settled entry keeps appearing in snapshots triggered by its
		// siblings' changes.
		"success->success": true,
	}

	var mu sync.Mutex
	last := map[string]models.Status{}
	env.mgr.SetOnChange(func(snapshot []*models.Entry) {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range snapshot {
			prev, seen := last[e.ID]
			if seen {
				key := string(prev) + "->" + string(e.Status)
				assert.True(t, reachable[key], "unreachable transition %s", key)
			}
			last[e.ID] = e.Status
		}
	})

	failFirst := true
	var fmu sync.Mutex
	env.uploader.fn = func(f models.FileRef, _ transfer.ProgressFunc) (string, error) {
		fmu.Lock()
		defer fmu.Unlock()
		if f.Name == "flaky.jpg" && failFirst {
			failFirst = false
			return "", fmt.Errorf("try again")
		}
		return "https://cdn.test/" + f.Name, nil
	}

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("ok.jpg", 1), imageRef("flaky.jpg", 1),
	})
	require.NoError(t, err)
	env.mgr.Wait()

	flaky := env.mgr.Entries()[1]
	require.Equal(t, models.StatusError, flaky.Status)
	require.NoError(t, env.mgr.Retry(flaky.ID))
	env.mgr.Wait()

	require.NoError(t, env.mgr.RemoveAll(context.Background()))
}

func TestPersistence_OnlySuccessEntriesPersisted(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.uploader.fn = func(f models.FileRef, _ transfer.ProgressFunc) (string, error) {
		if strings.HasPrefix(f.Name, "bad") {
			return "", fmt.Errorf("boom")
		}
		return "https://cdn.test/" + f.Name, nil
	}

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("a.jpg", 1), imageRef("bad.jpg", 1), imageRef("b.jpg", 1),
	})
	require.NoError(t, err)
	env.mgr.Wait()

	persisted := env.store.snapshot()
	require.Len(t, persisted, 2)
	assert.Equal(t, "a.jpg", persisted[0].Name)
	assert.Equal(t, "b.jpg", persisted[1].Name)
}

func TestHydrate_RestoresSuccessesOnly(t *testing.T) {
	seed := newTestEnv(t, Config{})
	seed.uploader.fn = func(f models.FileRef, _ transfer.ProgressFunc) (string, error) {
		if f.Name == "stuck.jpg" {
			return "", fmt.Errorf("never made it")
		}
		return "https://cdn.test/" + f.Name, nil
	}
	_, err := seed.mgr.AddFiles(context.Background(), []models.FileRef{
		imageRef("a.jpg", 123), imageRef("b.jpg", 456), imageRef("stuck.jpg", 789),
	})
	require.NoError(t, err)
	seed.mgr.Wait()

	// Fresh manager over the same store, as after a reload.
	fresh := New(Config{}, Deps{
		Selector:   &fakeUploader{},
		Normalizer: &fakeNormalizer{},
		Store:      seed.store,
		Cleaner:    cleanup.NewCoordinator(&fakeRemote{}, nil),
	})
	t.Cleanup(fresh.Close)

	require.NoError(t, fresh.Hydrate(context.Background()))

	entries := fresh.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, []string{"https://cdn.test/a.jpg", "https://cdn.test/b.jpg"}, fresh.AcceptedURLs())
	for _, e := range entries {
		assert.Equal(t, models.StatusSuccess, e.Status)
		assert.Equal(t, 100, e.Progress)
	}

	// Recorded size survives, content does not.
	assert.Equal(t, int64(123), entries[0].File.Size)
	rc, err := entries[0].File.Blob.Open()
	require.NoError(t, err)
	defer rc.Close()
	buf := make([]byte, 8)
	n, _ := rc.Read(buf)
	assert.Zero(t, n)
}

func TestHydrate_RunsAtMostOnceAndNeverClobbers(t *testing.T) {
	env := newTestEnv(t, Config{})
	require.NoError(t, env.store.Replace(context.Background(), []models.StorablePlaceholder{
		{ID: "old", Name: "old.jpg", Size: 1, MIME: "image/jpeg", Kind: models.KindImage, PreviewURL: "https://cdn.test/old.jpg"},
	}))

	// User started editing before hydration was attempted.
	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{imageRef("new.jpg", 1)})
	require.NoError(t, err)
	env.mgr.Wait()

	require.NoError(t, env.mgr.Hydrate(context.Background()))

	entries := env.mgr.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "new.jpg", entries[0].File.Name)
}

func TestClosedManagerRejectsWork(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.mgr.Close()

	_, err := env.mgr.AddFiles(context.Background(), []models.FileRef{imageRef("a.jpg", 1)})
	assert.ErrorIs(t, err, common.ErrManagerClosed)
}
