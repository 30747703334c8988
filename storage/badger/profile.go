package badger

import (
	"bytes"
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/teamup/core"
	"github.com/poiesic/teamup/storage"
)

const defaultScanBatchSize = 256

// ProfileRepository implements storage.ProfileRepository for BadgerDB.
type ProfileRepository struct {
	backend *Backend
}

var _ storage.ProfileRepository = (*ProfileRepository)(nil)

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(backend *Backend) *ProfileRepository {
	return &ProfileRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend is closed by its owner.
func (r *ProfileRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ProfileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutProfiles inserts or replaces profiles keyed by UserID.
func (r *ProfileRepository) PutProfiles(ctx context.Context, profiles ...*core.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, profile := range profiles {
			if profile == nil || profile.UserID == "" {
				return core.ErrInvalidProfile
			}
			if err := tx.Set(makeProfileKey(profile.UserID), storage.MarshalProfile(profile)); err != nil {
				return err
			}
		}
		return commit(tx)
	}, true)
}

// DeleteProfiles removes profiles by user ID. Missing profiles are ignored.
func (r *ProfileRepository) DeleteProfiles(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, userID := range userIDs {
			if err := tx.Delete(makeProfileKey(userID)); err != nil {
				return err
			}
		}
		return commit(tx)
	}, true)
}

// GetProfile retrieves a single profile by user ID.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*core.Profile, error) {
	var result *core.Profile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readProfile(tx, makeProfileKey(userID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetProfiles retrieves multiple profiles by user ID.
func (r *ProfileRepository) GetProfiles(ctx context.Context, userIDs ...string) ([]*core.Profile, error) {
	var result []*core.Profile
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, userID := range userIDs {
			profile, err := readProfile(tx, makeProfileKey(userID))
			if err != nil {
				return err
			}
			if profile != nil {
				result = append(result, profile)
			}
		}
		return nil
	}, false)
	return result, err
}

// ForEachProfile visits profiles with UserID > after in key order.
func (r *ProfileRepository) ForEachProfile(ctx context.Context, after string, batchSize int, fn func([]*core.Profile) error) error {
	if batchSize <= 0 {
		batchSize = defaultScanBatchSize
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(profilePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := makeProfileKey(after)
		batch := make([]*core.Profile, 0, batchSize)

		for iter.Seek(start); iter.Valid(); iter.Next() {
			item := iter.Item()
			if after != "" && bytes.Equal(item.Key(), start) {
				continue
			}

			var profile *core.Profile
			if err := item.Value(func(val []byte) error {
				var err error
				profile, err = storage.UnmarshalProfile(val)
				return err
			}); err != nil {
				return err
			}
			batch = append(batch, profile)

			if len(batch) == batchSize {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := fn(batch); err != nil {
					return err
				}
				batch = make([]*core.Profile, 0, batchSize)
			}
		}

		if len(batch) > 0 {
			return fn(batch)
		}
		return nil
	}, false)
}

// CountProfiles returns the number of stored profiles.
func (r *ProfileRepository) CountProfiles(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(profilePrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readProfile reads a profile within a transaction.
// Returns nil, nil if the key doesn't exist.
func readProfile(tx *badger.Txn, key []byte) (*core.Profile, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var profile *core.Profile
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		profile, unmarshalErr = storage.UnmarshalProfile(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	if profile.UserID == "" {
		profile.UserID = userIDFromKey(key)
	}
	return profile, nil
}
