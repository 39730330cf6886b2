package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/msomdec/photo-gallery/internal/dataurl"
	"github.com/msomdec/photo-gallery/internal/domain"
)

var errBoom = errors.New("boom")

// memFiles is an in-memory domain.Filesystem.
type memFiles struct {
	mu        sync.Mutex
	files     map[string]string
	writeErr  error
	readErr   map[string]error
	reads     []string
	uriPrefix string
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string]string{}, readErr: map[string]error{}}
}

func (m *memFiles) WriteFile(_ context.Context, opts domain.WriteFileOptions) (*domain.WriteFileResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	m.files[opts.Path] = dataurl.Payload(opts.Data)
	return &domain.WriteFileResult{URI: m.uriPrefix + opts.Path}, nil
}

func (m *memFiles) ReadFile(_ context.Context, opts domain.ReadFileOptions) (*domain.ReadFileResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, opts.Path)
	if err := m.readErr[opts.Path]; err != nil {
		return nil, err
	}
	data, ok := m.files[opts.Path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.ReadFileResult{Data: data}, nil
}

func (m *memFiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// memPrefs is an in-memory domain.Preferences.
type memPrefs struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
	getErr error
	sets   int
}

func newMemPrefs() *memPrefs {
	return &memPrefs{values: map[string]string{}}
}

func (m *memPrefs) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	m.sets++
	return nil
}

func (m *memPrefs) Get(_ context.Context, key string) (*string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (m *memPrefs) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// stubCamera returns fixed captures or an error.
type stubCamera struct {
	capture *domain.TransientCapture
	err     error
	opts    domain.CameraOptions
}

func (c *stubCamera) GetPhoto(_ context.Context, opts domain.CameraOptions) (*domain.TransientCapture, error) {
	c.opts = opts
	if c.err != nil {
		return nil, c.err
	}
	shot := *c.capture
	return &shot, nil
}

// stubFetcher serves blobs by URL.
type stubFetcher struct {
	blobs map[string]*domain.Blob
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*domain.Blob, error) {
	b, ok := f.blobs[url]
	if !ok {
		return nil, domain.ErrFetchFailed
	}
	cp := *b
	return &cp, nil
}

// prefixConverter mimics a file-src conversion.
type prefixConverter string

func (p prefixConverter) ConvertFileSrc(uri string) string { return string(p) + uri }

// tickingClock returns a clock advancing one millisecond per call.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Millisecond)
		return now
	}
}
