package sqlite

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/photo-gallery/internal/dataurl"
	"github.com/msomdec/photo-gallery/internal/domain"
)

// fileStore implements domain.Filesystem using SQLite rows. Data is kept
// as base64 text, the same encoding callers read and write.
type fileStore struct {
	db *sql.DB
}

func (s *fileStore) WriteFile(ctx context.Context, opts domain.WriteFileOptions) (*domain.WriteFileResult, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("%w: empty path", domain.ErrInvalidInput)
	}
	payload := dataurl.Payload(opts.Data)
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return nil, fmt.Errorf("%w: data is not base64: %v", domain.ErrInvalidInput, err)
	}

	// Same path overwrites, like a filesystem.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO files (directory, path, data, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(directory, path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(opts.Directory), opts.Path, payload, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("write file %s: %w", opts.Path, err)
	}
	return &domain.WriteFileResult{URI: uri(opts.Directory, opts.Path)}, nil
}

func (s *fileStore) ReadFile(ctx context.Context, opts domain.ReadFileOptions) (*domain.ReadFileResult, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM files WHERE directory = ? AND path = ?",
		string(opts.Directory), opts.Path,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read file %s: %w", opts.Path, err)
	}
	return &domain.ReadFileResult{Data: data}, nil
}

func uri(dir domain.Directory, path string) string {
	if dir == domain.DirectoryNone {
		return "/" + path
	}
	return "/" + string(dir) + "/" + path
}
