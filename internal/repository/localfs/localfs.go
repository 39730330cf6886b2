// Package localfs implements domain.Filesystem on the native filesystem.
package localfs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/msomdec/photo-gallery/internal/dataurl"
	"github.com/msomdec/photo-gallery/internal/domain"
)

// FS stores files under DataDir. Paths with no directory are read as
// native absolute paths or file URIs.
type FS struct {
	DataDir string
}

// New creates the data directory if needed.
func New(dataDir string) (*FS, error) {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FS{DataDir: abs}, nil
}

func (f *FS) WriteFile(ctx context.Context, opts domain.WriteFileOptions) (*domain.WriteFileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(dataurl.Payload(opts.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: data is not base64: %v", domain.ErrInvalidInput, err)
	}
	p, err := f.resolve(opts.Path, opts.Directory)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return nil, fmt.Errorf("write file: %w", err)
	}
	return &domain.WriteFileResult{URI: FileURI(p)}, nil
}

func (f *FS) ReadFile(ctx context.Context, opts domain.ReadFileOptions) (*domain.ReadFileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := f.resolve(opts.Path, opts.Directory)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	return &domain.ReadFileResult{Data: base64.StdEncoding.EncodeToString(data)}, nil
}

// Open returns a reader for a path relative to DataDir. It backs the
// handler that serves converted file URIs.
func (f *FS) Open(name string) (*os.File, error) {
	p, err := f.resolve(name, domain.DirectoryData)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return file, nil
}

func (f *FS) resolve(p string, dir domain.Directory) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	switch dir {
	case domain.DirectoryNone:
		if strings.HasPrefix(p, "file://") {
			u, err := url.Parse(p)
			if err != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			p = u.Path
		}
		if !filepath.IsAbs(p) {
			return "", fmt.Errorf("%w: native path %q is not absolute", domain.ErrInvalidInput, p)
		}
		return filepath.Clean(p), nil
	case domain.DirectoryData:
		// Data-relative paths may also arrive as the URI WriteFile returned.
		if strings.HasPrefix(p, "file://") {
			u, err := url.Parse(p)
			if err != nil {
				return "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
			}
			p = u.Path
		}
		full := filepath.Clean(p)
		if !strings.HasPrefix(full, f.DataDir+string(filepath.Separator)) {
			full = filepath.Join(f.DataDir, filepath.FromSlash(p))
		}
		if !strings.HasPrefix(full, f.DataDir+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %q escapes the data directory", domain.ErrInvalidInput, p)
		}
		return full, nil
	}
	return "", fmt.Errorf("%w: unknown directory %q", domain.ErrInvalidInput, dir)
}

// FileURI renders an absolute path as a file URI.
func FileURI(p string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String()
}
