package storage

import (
	"context"

	"github.com/poiesic/teamup/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

// ProfileStore is the read side of the external profile source.
// It is what the change pipeline consults when a profile changes.
type ProfileStore interface {
	// GetProfile returns the current profile for userID.
	// Returns ErrNotFound if the user no longer exists.
	GetProfile(ctx context.Context, userID string) (*core.Profile, error)
}

// ProfileRepository persists indexed profiles.
type ProfileRepository interface {
	Repository
	ProfileStore

	// PutProfiles inserts or replaces profiles keyed by UserID.
	// All profiles are written in a single transaction.
	PutProfiles(ctx context.Context, profiles ...*core.Profile) error

	// DeleteProfiles removes profiles by user ID.
	// Missing profiles are ignored.
	DeleteProfiles(ctx context.Context, userIDs ...string) error

	// GetProfiles retrieves multiple profiles by user ID.
	// Returns only the profiles that exist (no error for missing profiles).
	GetProfiles(ctx context.Context, userIDs ...string) ([]*core.Profile, error)

	// ForEachProfile visits all profiles with UserID > after in ascending
	// UserID order, in batches of up to batchSize. Iteration stops at the
	// first error returned by fn.
	ForEachProfile(ctx context.Context, after string, batchSize int, fn func([]*core.Profile) error) error

	// CountProfiles returns the number of stored profiles.
	CountProfiles(ctx context.Context) (int, error)
}

// CheckpointRepository persists batch processor progress.
type CheckpointRepository interface {
	// SaveCheckpoint stores the checkpoint for its processor type.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint returns the checkpoint for a processor type.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)

	// ClearCheckpoint removes the checkpoint for a processor type.
	ClearCheckpoint(ctx context.Context, processorType string) error
}
