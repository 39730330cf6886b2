package domain

import "context"

// Directory names a durable storage root. The empty directory means the
// path is a native absolute path or URI.
type Directory string

const (
	DirectoryNone Directory = ""
	DirectoryData Directory = "DATA"
)

type WriteFileOptions struct {
	Path      string
	Data      string // base64, optionally wrapped in a data URI
	Directory Directory
}

type WriteFileResult struct {
	URI string
}

type ReadFileOptions struct {
	Path      string
	Directory Directory
}

type ReadFileResult struct {
	Data string // base64
}

// Filesystem is durable file storage. Missing files return ErrNotFound.
type Filesystem interface {
	WriteFile(ctx context.Context, opts WriteFileOptions) (*WriteFileResult, error)
	ReadFile(ctx context.Context, opts ReadFileOptions) (*ReadFileResult, error)
}

// Preferences is string key-value persistence.
type Preferences interface {
	Set(ctx context.Context, key, value string) error
	// Get returns nil when the key has never been set.
	Get(ctx context.Context, key string) (*string, error)
}

// Fetcher retrieves a URL as a blob.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Blob, error)
}

// PathConverter maps a native storage URI to one the display surface can load.
type PathConverter interface {
	ConvertFileSrc(uri string) string
}
