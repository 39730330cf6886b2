package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/msomdec/photo-gallery/internal/dataurl"
	"github.com/msomdec/photo-gallery/internal/domain"
	"github.com/msomdec/photo-gallery/internal/platform"
)

// photoFilename names a saved photo after the capture time in milliseconds.
// Two saves in the same millisecond get the same name and the later one
// overwrites the earlier file.
func photoFilename(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10) + domain.PhotoExtension
}

// HybridPersistence saves photos on the native filesystem.
type HybridPersistence struct {
	files     domain.Filesystem
	converter domain.PathConverter
	now       func() time.Time
}

// NewHybridPersistence creates a HybridPersistence.
func NewHybridPersistence(files domain.Filesystem, converter domain.PathConverter) *HybridPersistence {
	return &HybridPersistence{files: files, converter: converter, now: time.Now}
}

// Save copies the captured file into the data directory. The record keeps
// the written file's URI and a display-safe form of it.
func (p *HybridPersistence) Save(ctx context.Context, capture *domain.TransientCapture) (domain.Photo, error) {
	if capture == nil || capture.Path == "" {
		return domain.Photo{}, fmt.Errorf("%w: capture has no native path", domain.ErrInvalidInput)
	}

	// The reference is local, so no fetch is needed.
	src, err := p.files.ReadFile(ctx, domain.ReadFileOptions{Path: capture.Path})
	if err != nil {
		return domain.Photo{}, fmt.Errorf("%w: read capture: %w", domain.ErrDurableReadFailed, err)
	}

	written, err := p.files.WriteFile(ctx, domain.WriteFileOptions{
		Path:      photoFilename(p.now()),
		Data:      src.Data,
		Directory: domain.DirectoryData,
	})
	if err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %w", domain.ErrPersistenceWriteFailed, err)
	}

	return domain.Photo{
		Filepath:    written.URI,
		WebviewPath: p.converter.ConvertFileSrc(written.URI),
	}, nil
}

// Restore leaves hybrid records untouched; their WebviewPath is already
// loadable.
func (p *HybridPersistence) Restore(_ context.Context, photo domain.Photo) (domain.Photo, error) {
	return photo, nil
}

// WebPersistence saves photos where no native filesystem exists. The write
// is best effort and keeps the save path identical to the hybrid one.
type WebPersistence struct {
	files   domain.Filesystem
	fetcher domain.Fetcher
	now     func() time.Time
}

// NewWebPersistence creates a WebPersistence.
func NewWebPersistence(files domain.Filesystem, fetcher domain.Fetcher) *WebPersistence {
	return &WebPersistence{files: files, fetcher: fetcher, now: time.Now}
}

// Save fetches the temporary URL, stores it as a data URI and records the
// filename. WebviewPath keeps the temporary URL, which may later expire.
func (p *WebPersistence) Save(ctx context.Context, capture *domain.TransientCapture) (domain.Photo, error) {
	if capture == nil || capture.WebPath == "" {
		return domain.Photo{}, fmt.Errorf("%w: capture has no web path", domain.ErrInvalidInput)
	}

	blob, err := p.fetcher.Fetch(ctx, capture.WebPath)
	if err != nil {
		if errors.Is(err, domain.ErrFetchFailed) {
			return domain.Photo{}, err
		}
		return domain.Photo{}, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	if blob.ContentType == "" {
		blob.ContentType = capture.Format
	}

	encoded, err := dataurl.FromBlob(ctx, blob)
	if err != nil {
		return domain.Photo{}, fmt.Errorf("encode blob: %w", err)
	}

	filename := photoFilename(p.now())
	if _, err := p.files.WriteFile(ctx, domain.WriteFileOptions{
		Path:      filename,
		Data:      encoded,
		Directory: domain.DirectoryData,
	}); err != nil {
		return domain.Photo{}, fmt.Errorf("%w: %w", domain.ErrPersistenceWriteFailed, err)
	}

	return domain.Photo{Filepath: filename, WebviewPath: capture.WebPath}, nil
}

// Restore reads the stored bytes back and points WebviewPath at a JPEG
// data URI built from them.
func (p *WebPersistence) Restore(ctx context.Context, photo domain.Photo) (domain.Photo, error) {
	file, err := p.files.ReadFile(ctx, domain.ReadFileOptions{
		Path:      photo.Filepath,
		Directory: domain.DirectoryData,
	})
	if err != nil {
		return photo, fmt.Errorf("%w: %s: %w", domain.ErrDurableReadFailed, photo.Filepath, err)
	}
	photo.WebviewPath = dataurl.Photo(file.Data)
	return photo, nil
}

// PersistenceDeps are the collaborators either persistence variant may need.
type PersistenceDeps struct {
	NativeFiles domain.Filesystem
	WebFiles    domain.Filesystem
	Converter   domain.PathConverter
	Fetcher     domain.Fetcher
}

// NewPersistence picks the variant for the detected context. It is called
// once at startup and the result injected.
func NewPersistence(detector platform.Detector, deps PersistenceDeps) domain.PhotoPersistence {
	if detector.IsHybrid() {
		return NewHybridPersistence(deps.NativeFiles, deps.Converter)
	}
	return NewWebPersistence(deps.WebFiles, deps.Fetcher)
}

// WithClock replaces the time source used to name files.
func (p *HybridPersistence) WithClock(now func() time.Time) *HybridPersistence {
	p.now = now
	return p
}

// WithClock replaces the time source used to name files.
func (p *WebPersistence) WithClock(now func() time.Time) *WebPersistence {
	p.now = now
	return p
}
