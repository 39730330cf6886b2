package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/msomdec/photo-gallery/internal/domain"
)

const maxFetchSize = 25 * 1024 * 1024 // 25MB

// HTTPFetcher fetches URLs over HTTP. Every fetch is attempted once.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client gets a default with a
// 30 second timeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*domain.Blob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrFetchFailed, url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrFetchFailed, err)
	}
	if len(data) > maxFetchSize {
		return nil, fmt.Errorf("%w: %s exceeds 25MB", domain.ErrFetchFailed, url)
	}

	return &domain.Blob{ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}
