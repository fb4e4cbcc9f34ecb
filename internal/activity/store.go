package activity

import (
	"context"
	"time"
)

// Store persists activity entries. Append-only: entries are never mutated or
// deleted individually, only bulk-aged out through Prune.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	// List returns entries newest first. Fine-grained narrowing happens in
	// memory through the reporting predicates.
	List(ctx context.Context) ([]Entry, error)
	// Prune removes entries created before cutoff, returning how many went.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
