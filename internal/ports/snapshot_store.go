package ports

import "context"

// Contract for persisting the complete, ordered set of encoded package records.
type SnapshotStore interface {
	// Return the stored record lines in order. A snapshot that was never
	// written yields no lines and no error.
	Load(ctx context.Context) ([]string, error)
	// Replace the stored snapshot with lines. Readers must never observe a
	// partially written snapshot.
	Replace(ctx context.Context, lines []string) error
}
