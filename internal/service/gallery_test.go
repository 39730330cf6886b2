package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/photo-gallery/internal/domain"
	"github.com/msomdec/photo-gallery/internal/service"
)

type webGallery struct {
	svc     *service.GalleryService
	files   *memFiles
	prefs   *memPrefs
	fetcher *stubFetcher
}

func newWebGallery(t *testing.T) *webGallery {
	t.Helper()
	files := newMemFiles()
	prefs := newMemPrefs()
	fetcher := &stubFetcher{blobs: map[string]*domain.Blob{}}
	p := service.NewWebPersistence(files, fetcher).WithClock(tickingClock(fixedNow))
	return &webGallery{
		svc:     service.NewGalleryService(p, prefs),
		files:   files,
		prefs:   prefs,
		fetcher: fetcher,
	}
}

func (g *webGallery) camera(url string, data []byte) *stubCamera {
	g.fetcher.blobs[url] = &domain.Blob{ContentType: "image/jpeg", Data: data}
	return &stubCamera{capture: &domain.TransientCapture{WebPath: url, Format: domain.PhotoContentType}}
}

func mustAdd(t *testing.T, svc *service.GalleryService, cam domain.Camera) domain.Photo {
	t.Helper()
	ctx := context.Background()
	photo, w, err := svc.AddNewToGallery(ctx, cam)
	require.NoError(t, err)
	require.NoError(t, w.Wait(ctx))
	return photo
}

func TestAddNewToGallery_WebScenario(t *testing.T) {
	g := newWebGallery(t)
	cam := g.camera("blob://abc", []byte{0, 0, 0})

	photo := mustAdd(t, g.svc, cam)

	assert.Equal(t, domain.DefaultCameraOptions(), cam.opts)
	assert.Equal(t, "1670000000001.jpeg", photo.Filepath)
	assert.Equal(t, "blob://abc", photo.WebviewPath)

	photos, _ := g.svc.Photos()
	assert.Equal(t, []domain.Photo{photo}, photos)

	want, err := json.Marshal([]domain.Photo{photo})
	require.NoError(t, err)
	got, ok := g.prefs.value(service.PhotoStorageKey)
	require.True(t, ok)
	assert.Equal(t, string(want), got)
	assert.Equal(t, `[{"filepath":"1670000000001.jpeg","webviewPath":"blob://abc"}]`, got)
}

func TestAddNewToGallery_NewestFirst(t *testing.T) {
	g := newWebGallery(t)

	const n = 5
	var added []domain.Photo
	for i := 0; i < n; i++ {
		added = append(added, mustAdd(t, g.svc, g.camera(fmt.Sprintf("blob://%d", i), []byte{byte(i)})))
	}

	photos, _ := g.svc.Photos()
	require.Len(t, photos, n)
	for i := range photos {
		assert.Equal(t, added[n-1-i], photos[i])
	}
}

func TestAddNewToGallery_FailedCaptureLeavesStateUnchanged(t *testing.T) {
	g := newWebGallery(t)
	mustAdd(t, g.svc, g.camera("blob://first", []byte("a")))

	before, beforeVersion := g.svc.Photos()
	beforeIndex, _ := g.prefs.value(service.PhotoStorageKey)
	beforeFiles := g.files.count()

	failures := []domain.Camera{
		&stubCamera{err: domain.ErrCaptureDenied},
		&stubCamera{err: domain.ErrCaptureCancelled},
		&stubCamera{capture: &domain.TransientCapture{WebPath: "blob://missing"}},
	}
	for _, cam := range failures {
		_, w, err := g.svc.AddNewToGallery(context.Background(), cam)
		require.Error(t, err)
		assert.Nil(t, w)
	}

	g.files.writeErr = errBoom
	_, _, err := g.svc.AddNewToGallery(context.Background(), g.camera("blob://x", []byte("x")))
	require.ErrorIs(t, err, domain.ErrPersistenceWriteFailed)

	after, afterVersion := g.svc.Photos()
	afterIndex, _ := g.prefs.value(service.PhotoStorageKey)
	assert.Equal(t, before, after)
	assert.Equal(t, beforeVersion, afterVersion)
	assert.Equal(t, beforeIndex, afterIndex)
	assert.Equal(t, beforeFiles, g.files.count())
}

func TestAddNewToGallery_IndexWriteFailureIsNotReturned(t *testing.T) {
	g := newWebGallery(t)
	g.prefs.setErr = errBoom

	photo, w, err := g.svc.AddNewToGallery(context.Background(), g.camera("blob://abc", []byte("a")))
	require.NoError(t, err)

	// The collection is updated regardless.
	photos, _ := g.svc.Photos()
	assert.Equal(t, []domain.Photo{photo}, photos)

	// Only a caller that waits sees the failure.
	err = w.Wait(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistenceWriteFailed)
	assert.ErrorIs(t, err, errBoom)
}

func TestIndexWrite_WaitHonorsContext(t *testing.T) {
	g := newWebGallery(t)
	_, w, err := g.svc.AddNewToGallery(context.Background(), g.camera("blob://abc", []byte("a")))
	require.NoError(t, err)

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("index write did not finish")
	}
	assert.Equal(t, uint64(1), w.Version())

	// A finished write reports its result even with a dead context.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, w.Wait(ctx))
}

func TestFlush_WaitsForPendingWrites(t *testing.T) {
	g := newWebGallery(t)
	for i := 0; i < 3; i++ {
		_, _, err := g.svc.AddNewToGallery(context.Background(), g.camera(fmt.Sprintf("blob://%d", i), []byte{byte(i)}))
		require.NoError(t, err)
	}
	require.NoError(t, g.svc.Flush(context.Background()))

	got, ok := g.prefs.value(service.PhotoStorageKey)
	require.True(t, ok)
	var stored []domain.Photo
	require.NoError(t, json.Unmarshal([]byte(got), &stored))
	photos, _ := g.svc.Photos()
	assert.Equal(t, photos, stored)
}

func TestLoadSaved_EmptyIndex(t *testing.T) {
	g := newWebGallery(t)

	report, err := g.svc.LoadSaved(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Loaded)
	assert.Empty(t, report.Failed)

	photos, _ := g.svc.Photos()
	assert.Equal(t, []domain.Photo{}, photos)
	assert.Empty(t, g.files.reads)
}

func TestLoadSaved_UnparseableIndexLoadsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", "null", `{"filepath":"x"}`} {
		g := newWebGallery(t)
		g.prefs.values[service.PhotoStorageKey] = raw

		report, err := g.svc.LoadSaved(context.Background())
		require.NoError(t, err, raw)
		assert.Zero(t, report.Loaded, raw)
		photos, _ := g.svc.Photos()
		assert.Empty(t, photos, raw)
	}
}

func TestLoadSaved_PreferencesErrorPropagates(t *testing.T) {
	g := newWebGallery(t)
	g.prefs.getErr = errBoom

	_, err := g.svc.LoadSaved(context.Background())
	require.ErrorIs(t, err, errBoom)
}

func TestLoadSaved_WebRoundTrip(t *testing.T) {
	g := newWebGallery(t)
	first := mustAdd(t, g.svc, g.camera("blob://1", []byte{1, 2, 3}))
	second := mustAdd(t, g.svc, g.camera("blob://2", []byte{4, 5, 6}))

	// A fresh process over the same storage.
	p := service.NewWebPersistence(g.files, &stubFetcher{})
	restarted := service.NewGalleryService(p, g.prefs)

	report, err := restarted.LoadSaved(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Empty(t, report.Failed)

	photos, _ := restarted.Photos()
	require.Len(t, photos, 2)
	assert.Equal(t, second.Filepath, photos[0].Filepath)
	assert.Equal(t, first.Filepath, photos[1].Filepath)
	assert.Equal(t, "data:image/jpeg;base64,BAUG", photos[0].WebviewPath)
	assert.Equal(t, "data:image/jpeg;base64,AQID", photos[1].WebviewPath)
}

func TestLoadSaved_Idempotent(t *testing.T) {
	g := newWebGallery(t)
	mustAdd(t, g.svc, g.camera("blob://1", []byte{1}))
	mustAdd(t, g.svc, g.camera("blob://2", []byte{2}))

	_, err := g.svc.LoadSaved(context.Background())
	require.NoError(t, err)
	once, _ := g.svc.Photos()

	_, err = g.svc.LoadSaved(context.Background())
	require.NoError(t, err)
	twice, _ := g.svc.Photos()

	assert.Equal(t, once, twice)
}

func TestLoadSaved_IsolatesPerRecordFailures(t *testing.T) {
	g := newWebGallery(t)
	g.files.files["2.jpeg"] = "AAAA"
	g.prefs.values[service.PhotoStorageKey] = `[` +
		`{"filepath":"1.jpeg","webviewPath":"blob://one"},` +
		`{"filepath":"2.jpeg","webviewPath":"blob://two"}]`
	g.files.readErr["1.jpeg"] = errBoom

	report, err := g.svc.LoadSaved(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, []string{"1.jpeg"}, report.Failed)

	photos, _ := g.svc.Photos()
	assert.Equal(t, []domain.Photo{
		{Filepath: "1.jpeg", WebviewPath: "blob://one"},
		{Filepath: "2.jpeg", WebviewPath: "data:image/jpeg;base64,AAAA"},
	}, photos)
}

func TestLoadSaved_HybridRoundTripSkipsReads(t *testing.T) {
	files := newMemFiles()
	files.uriPrefix = "file:///data/"
	files.files["/tmp/cam1.jpg"] = "/9j/"
	prefs := newMemPrefs()
	conv := prefixConverter("capacitor://localhost/_app_file_")

	svc := service.NewGalleryService(
		service.NewHybridPersistence(files, conv).WithClock(tickingClock(fixedNow)), prefs)
	photo := mustAdd(t, svc, &stubCamera{capture: &domain.TransientCapture{Path: "/tmp/cam1.jpg"}})
	assert.Equal(t, "file:///data/1670000000001.jpeg", photo.Filepath)

	files.reads = nil
	restarted := service.NewGalleryService(service.NewHybridPersistence(files, conv), prefs)
	_, err := restarted.LoadSaved(context.Background())
	require.NoError(t, err)

	photos, _ := restarted.Photos()
	assert.Equal(t, []domain.Photo{photo}, photos)
	assert.Empty(t, files.reads)
}
