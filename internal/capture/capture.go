// Package capture implements the camera capability for both runtime
// contexts. A native camera leaves the shot in a cache directory and
// returns its path; a web camera parks it behind a temporary blob URL.
package capture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/msomdec/photo-gallery/internal/domain"
)

// Source produces the raw bytes of one shot.
type Source interface {
	Shoot(ctx context.Context) ([]byte, error)
}

// Shot is a Source that yields fixed bytes. An empty shot means the user
// dismissed the camera.
type Shot []byte

func (s Shot) Shoot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, domain.ErrCaptureCancelled
	}
	return s, nil
}

// Unavailable is a Source for a runtime with no camera.
type Unavailable struct{}

func (Unavailable) Shoot(context.Context) ([]byte, error) {
	return nil, fmt.Errorf("%w: no camera available", domain.ErrCaptureDenied)
}

// Adapter builds a Camera for a Source in the process's context.
type Adapter struct {
	hybrid    bool
	cacheDir  string
	blobs     *Blobs
	converter domain.PathConverter
}

// NewNative returns an Adapter whose cameras write shots under cacheDir.
func NewNative(cacheDir string, converter domain.PathConverter) (*Adapter, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Adapter{hybrid: true, cacheDir: cacheDir, converter: converter}, nil
}

// NewWeb returns an Adapter whose cameras park shots in blobs.
func NewWeb(blobs *Blobs) *Adapter {
	return &Adapter{blobs: blobs}
}

// Camera returns a Camera that captures from src.
func (a *Adapter) Camera(src Source) domain.Camera {
	if a.hybrid {
		return &nativeCamera{dir: a.cacheDir, src: src, converter: a.converter}
	}
	return &webCamera{blobs: a.blobs, src: src}
}

type nativeCamera struct {
	dir       string
	src       Source
	converter domain.PathConverter
}

func (c *nativeCamera) GetPhoto(ctx context.Context, opts domain.CameraOptions) (*domain.TransientCapture, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	data, err := c.src.Shoot(ctx)
	if err != nil {
		return nil, err
	}

	p := filepath.Join(c.dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write shot: %v", domain.ErrCaptureDenied, err)
	}

	shot := &domain.TransientCapture{Path: p, WebPath: p, Format: domain.PhotoContentType}
	if c.converter != nil {
		shot.WebPath = c.converter.ConvertFileSrc(p)
	}
	return shot, nil
}

type webCamera struct {
	blobs *Blobs
	src   Source
}

func (c *webCamera) GetPhoto(ctx context.Context, opts domain.CameraOptions) (*domain.TransientCapture, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	data, err := c.src.Shoot(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.TransientCapture{
		WebPath: c.blobs.Put(domain.PhotoContentType, data),
		Format:  domain.PhotoContentType,
	}, nil
}

func validate(opts domain.CameraOptions) error {
	if opts.ResultType != domain.ResultURI {
		return fmt.Errorf("%w: result type %q not supported", domain.ErrInvalidInput, opts.ResultType)
	}
	if opts.Quality < 1 || opts.Quality > 100 {
		return fmt.Errorf("%w: quality %d out of range", domain.ErrInvalidInput, opts.Quality)
	}
	switch opts.Source {
	case domain.SourceCamera, domain.SourcePrompt, domain.SourcePhotos:
		return nil
	}
	return fmt.Errorf("%w: unknown camera source %q", domain.ErrInvalidInput, opts.Source)
}
