package storage

import (
	"context"
	"errors"
)

// Record names used by the application.
const (
	RecordEntries = "entries"
	RecordProfile = "profile"
)

// ErrNotFound is returned by Read when no record with that name was ever written.
var ErrNotFound = errors.New("storage: record not found")

// Records abstracts persistence of whole named records.
// Write must replace the record atomically: readers observe either the old
// or the new bytes, never a partial write. Implementations must be safe for
// concurrent use; concurrent writers are last-write-wins.
type Records interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
}
