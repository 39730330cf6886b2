package service

import (
	"sync"

	"github.com/msomdec/photo-gallery/internal/domain"
)

// Collection owns the in-memory photo list, newest first. Every change
// bumps the version so readers can tell snapshots apart.
type Collection struct {
	mu      sync.RWMutex
	photos  []domain.Photo
	version uint64
}

// NewCollection returns an empty collection at version 0.
func NewCollection() *Collection {
	return &Collection{photos: []domain.Photo{}}
}

// Load replaces the whole list.
func (c *Collection) Load(photos []domain.Photo) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.photos = append(make([]domain.Photo, 0, len(photos)), photos...)
	c.version++
	return c.version
}

// Mutate applies fn to the list under the write lock and stores its result.
// fn receives a copy; fn's return value becomes the new list.
func (c *Collection) Mutate(fn func([]domain.Photo) []domain.Photo) ([]domain.Photo, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := fn(append(make([]domain.Photo, 0, len(c.photos)+1), c.photos...))
	if next == nil {
		next = []domain.Photo{}
	}
	c.photos = next
	c.version++
	return append(make([]domain.Photo, 0, len(c.photos)), c.photos...), c.version
}

// Prepend inserts photo at the front and returns the resulting snapshot.
func (c *Collection) Prepend(photo domain.Photo) ([]domain.Photo, uint64) {
	return c.Mutate(func(photos []domain.Photo) []domain.Photo {
		return append([]domain.Photo{photo}, photos...)
	})
}

// Snapshot returns a copy of the list and its version.
func (c *Collection) Snapshot() ([]domain.Photo, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append(make([]domain.Photo, 0, len(c.photos)), c.photos...), c.version
}

// Len returns the number of photos.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.photos)
}
