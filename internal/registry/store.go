package registry

import "context"

// DocumentStore holds a single JSON document.
//
// Implementation requirements:
//   - Load and Replace must be safe under concurrent use.
//   - Replace must be atomic from a reader's perspective: a concurrent
//     Load returns either the old or the new document, never a partial
//     write.
//   - A store with no document yet loads as an empty JSON object.
type DocumentStore interface {
	// Load returns the current document.
	Load(ctx context.Context) ([]byte, error)

	// Replace atomically publishes a new document.
	Replace(ctx context.Context, doc []byte) error

	// Close releases store resources.
	Close() error
}

// emptyDocument is what a store without a persisted document loads as.
var emptyDocument = []byte("{}")
