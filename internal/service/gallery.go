package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/msomdec/photo-gallery/internal/domain"
)

// PhotoStorageKey is the preferences key holding the photo index.
const PhotoStorageKey = "photos"

// IndexWrite is the handle for an index write started after a mutation.
// Callers may wait on it or drop it.
type IndexWrite struct {
	version uint64
	done    chan struct{}
	err     error
}

// Version is the collection version the write persists.
func (w *IndexWrite) Version() uint64 { return w.version }

// Done is closed when the write has finished.
func (w *IndexWrite) Done() <-chan struct{} { return w.done }

// Wait blocks until the write finishes or ctx ends.
func (w *IndexWrite) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return w.err
	default:
	}
	select {
	case <-w.done:
		return w.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HydrationReport summarizes a LoadSaved run.
type HydrationReport struct {
	Loaded  int
	Failed  []string // Filepaths whose stored bytes could not be read
	Version uint64
}

// GalleryService captures photos into the collection and keeps the
// durable index in step with it.
type GalleryService struct {
	photos      *Collection
	persistence domain.PhotoPersistence
	prefs       domain.Preferences

	writeMu sync.Mutex
	written uint64
	pending sync.WaitGroup
}

// NewGalleryService creates a GalleryService over an empty collection.
func NewGalleryService(persistence domain.PhotoPersistence, prefs domain.Preferences) *GalleryService {
	return &GalleryService{
		photos:      NewCollection(),
		persistence: persistence,
		prefs:       prefs,
	}
}

// AddNewToGallery captures a photo with cam, saves it and puts it at the
// front of the collection. The index write is started but not awaited;
// its failure is only logged unless the caller waits on the handle.
// A failed capture or save leaves the collection and index unchanged.
func (s *GalleryService) AddNewToGallery(ctx context.Context, cam domain.Camera) (domain.Photo, *IndexWrite, error) {
	shot, err := cam.GetPhoto(ctx, domain.DefaultCameraOptions())
	if err != nil {
		return domain.Photo{}, nil, fmt.Errorf("capture photo: %w", err)
	}

	photo, err := s.persistence.Save(ctx, shot)
	if err != nil {
		return domain.Photo{}, nil, fmt.Errorf("save photo: %w", err)
	}

	snapshot, version := s.photos.Prepend(photo)
	slog.Info("photo added", "filepath", photo.Filepath, "count", len(snapshot), "version", version)

	return photo, s.writeIndex(context.WithoutCancel(ctx), snapshot, version), nil
}

// writeIndex persists snapshot in the background. Writes for an older
// version than one already persisted are skipped.
func (s *GalleryService) writeIndex(ctx context.Context, snapshot []domain.Photo, version uint64) *IndexWrite {
	w := &IndexWrite{version: version, done: make(chan struct{})}

	value, err := json.Marshal(snapshot)
	if err != nil {
		w.err = fmt.Errorf("encode index: %w", err)
		close(w.done)
		slog.Error("photo index write failed", "version", version, "error", w.err)
		return w
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer close(w.done)

		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		if version <= s.written {
			return
		}
		if err := s.prefs.Set(ctx, PhotoStorageKey, string(value)); err != nil {
			w.err = fmt.Errorf("%w: index: %w", domain.ErrPersistenceWriteFailed, err)
			slog.Error("photo index write failed", "version", version, "error", err)
			return
		}
		s.written = version
	}()
	return w
}

// Flush waits for every index write started so far.
func (s *GalleryService) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LoadSaved replaces the collection with the stored index. A missing or
// unparseable index loads as empty. Records whose bytes cannot be re-read
// keep their stored WebviewPath and are listed in the report.
func (s *GalleryService) LoadSaved(ctx context.Context) (*HydrationReport, error) {
	value, err := s.prefs.Get(ctx, PhotoStorageKey)
	if err != nil {
		return nil, fmt.Errorf("read photo index: %w", err)
	}

	photos, err := parseIndex(value)
	if err != nil {
		slog.Warn("photo index unreadable, starting empty", "error", err)
	}

	report := &HydrationReport{Loaded: len(photos)}
	for i := range photos {
		restored, err := s.persistence.Restore(ctx, photos[i])
		if err != nil {
			report.Failed = append(report.Failed, photos[i].Filepath)
			slog.Warn("photo restore failed", "filepath", photos[i].Filepath, "error", err)
			continue
		}
		photos[i] = restored
	}

	report.Version = s.photos.Load(photos)
	return report, nil
}

// Photos returns the current collection and its version.
func (s *GalleryService) Photos() ([]domain.Photo, uint64) {
	return s.photos.Snapshot()
}

func parseIndex(value *string) ([]domain.Photo, error) {
	if value == nil {
		return []domain.Photo{}, nil
	}
	var photos []domain.Photo
	if err := json.Unmarshal([]byte(*value), &photos); err != nil {
		return []domain.Photo{}, errors.Join(domain.ErrIndexParseFailed, err)
	}
	if photos == nil {
		photos = []domain.Photo{}
	}
	return photos, nil
}
