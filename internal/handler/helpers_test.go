package handler_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/msomdec/photo-gallery/internal/capture"
	"github.com/msomdec/photo-gallery/internal/domain"
	"github.com/msomdec/photo-gallery/internal/handler"
	"github.com/msomdec/photo-gallery/internal/platform"
	"github.com/msomdec/photo-gallery/internal/repository/localfs"
	"github.com/msomdec/photo-gallery/internal/repository/sqlite"
	"github.com/msomdec/photo-gallery/internal/service"
)

type testApp struct {
	srv     *httptest.Server
	gallery *service.GalleryService
	db      *sqlite.DB
	files   *localfs.FS
	blobs   *capture.Blobs
}

func newTestApp(t *testing.T, p platform.Platform) *testApp {
	t.Helper()
	dir := t.TempDir()

	db, err := sqlite.New(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	files, err := localfs.New(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("localfs: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	blobs := capture.NewBlobs("http://gallery.test", time.Minute)
	conv := platform.FileSrcConverter{Scheme: "http", Host: "gallery.test"}

	var cameras *capture.Adapter
	if p == platform.Hybrid {
		cameras, err = capture.NewNative(filepath.Join(dir, "cache"), conv)
		if err != nil {
			t.Fatalf("NewNative: %v", err)
		}
	} else {
		cameras = capture.NewWeb(blobs)
	}

	// Captures in a test run can land in the same millisecond, so every
	// save gets its own tick.
	var persistence domain.PhotoPersistence
	if p == platform.Hybrid {
		persistence = service.NewHybridPersistence(files, conv).WithClock(tickingClock())
	} else {
		persistence = service.NewWebPersistence(db.Files(), blobs.Fetcher(service.NewHTTPFetcher(nil))).WithClock(tickingClock())
	}
	gallery := service.NewGalleryService(persistence, db.Preferences())
	t.Cleanup(func() { gallery.Flush(context.Background()) })

	var appFiles *localfs.FS
	if p == platform.Hybrid {
		appFiles = files
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, p,
		handler.NewGalleryHandler(gallery, cameras),
		handler.NewFileHandler(blobs, appFiles),
		service.NewTokenBucket(ctx, 100, 100),
	)
	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)

	return &testApp{srv: srv, gallery: gallery, db: db, files: files, blobs: blobs}
}

func uploadBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "shot.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func (a *testApp) upload(t *testing.T, path string, data []byte) *http.Response {
	t.Helper()
	body, contentType := uploadBody(t, "image", data)
	resp, err := http.Post(a.srv.URL+path, contentType, body)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.UnixMilli(1670000000000)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}
