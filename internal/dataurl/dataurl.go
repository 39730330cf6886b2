// Package dataurl converts binary blobs to and from base64 data URIs.
package dataurl

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/msomdec/photo-gallery/internal/domain"
)

const defaultContentType = "application/octet-stream"

// FromReader reads r to the end and returns a data URI embedding its
// content. A read error is returned as is; there is no retry.
func FromReader(ctx context.Context, contentType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read blob: %w", err)
	}
	return Encode(contentType, data), nil
}

// FromBlob returns a data URI embedding b.
func FromBlob(ctx context.Context, b *domain.Blob) (string, error) {
	if b == nil {
		return "", fmt.Errorf("%w: nil blob", domain.ErrInvalidInput)
	}
	return FromReader(ctx, b.ContentType, bytes.NewReader(b.Data))
}

// Encode builds "data:<type>;base64,<payload>".
func Encode(contentType string, data []byte) string {
	if contentType == "" {
		contentType = defaultContentType
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Payload strips a data URI header, returning the base64 payload. Strings
// without a header are returned unchanged.
func Payload(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Decode returns the content type and bytes of a base64 data URI.
func Decode(s string) (string, []byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, fmt.Errorf("%w: not a data URI", domain.ErrInvalidInput)
	}
	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: data URI has no payload", domain.ErrInvalidInput)
	}
	contentType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: data URI is not base64", domain.ErrInvalidInput)
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return contentType, data, nil
}

// Photo wraps a base64 payload read back from storage as a displayable
// JPEG data URI.
func Photo(payload string) string {
	return "data:" + domain.PhotoContentType + ";base64," + Payload(payload)
}
