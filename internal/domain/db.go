package domain

import "context"

// Database defines lifecycle operations for the store that backs
// preferences and, in the web context, the emulated filesystem.
// Implementations own their migration files.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
