package state

import "context"

// Repository persists receive-group status.
type Repository interface {
	// Load returns the last saved status, or an empty one if none exists.
	Load(ctx context.Context) (Status, error)

	// Save persists status atomically.
	Save(ctx context.Context, status Status) error
}
