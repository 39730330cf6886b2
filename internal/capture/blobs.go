package capture

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msomdec/photo-gallery/internal/domain"
)

// BlobPrefix is the path under which temporary blob URLs are served.
const BlobPrefix = "/blobs/"

// Blobs holds captured images behind temporary URLs. Entries expire after
// the TTL, after which their URLs stop resolving.
type Blobs struct {
	mu      sync.Mutex
	items   map[string]blobEntry
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

type blobEntry struct {
	blob    domain.Blob
	expires time.Time
}

// NewBlobs creates a registry whose URLs start with baseURL.
func NewBlobs(baseURL string, ttl time.Duration) *Blobs {
	return &Blobs{
		items:   make(map[string]blobEntry),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the time source.
func (b *Blobs) SetClock(now func() time.Time) {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

// Put stores a copy of data and returns its temporary URL.
func (b *Blobs) Put(contentType string, data []byte) string {
	id := uuid.NewString()
	b.mu.Lock()
	b.items[id] = blobEntry{
		blob:    domain.Blob{ContentType: contentType, Data: append([]byte(nil), data...)},
		expires: b.now().Add(b.ttl),
	}
	b.mu.Unlock()
	return b.baseURL + BlobPrefix + id
}

// Get returns the blob for id, or ErrNotFound if unknown or expired.
func (b *Blobs) Get(id string) (*domain.Blob, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !b.now().Before(e.expires) {
		delete(b.items, id)
		return nil, domain.ErrNotFound
	}
	blob := e.blob
	return &blob, nil
}

// Sweep drops expired entries and reports how many were removed.
func (b *Blobs) Sweep() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	n := 0
	for id, e := range b.items {
		if !now.Before(e.expires) {
			delete(b.items, id)
			n++
		}
	}
	return n
}

// Len reports the number of live or not yet swept entries.
func (b *Blobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Fetcher resolves this registry's own URLs in process and hands every
// other URL to next.
func (b *Blobs) Fetcher(next domain.Fetcher) domain.Fetcher {
	return &blobFetcher{blobs: b, next: next}
}

type blobFetcher struct {
	blobs *Blobs
	next  domain.Fetcher
}

func (f *blobFetcher) Fetch(ctx context.Context, url string) (*domain.Blob, error) {
	if id, ok := strings.CutPrefix(url, f.blobs.baseURL+BlobPrefix); ok && id != "" {
		blob, err := f.blobs.Get(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, url, err)
		}
		return blob, nil
	}
	if f.next == nil {
		return nil, fmt.Errorf("%w: %s is not a local blob", domain.ErrFetchFailed, url)
	}
	return f.next.Fetch(ctx, url)
}
