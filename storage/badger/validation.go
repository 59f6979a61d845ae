package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
)

// ValidationResultRepository implements storage.ValidationResultRepository
// for BadgerDB. Results are append-only; nothing here updates or deletes.
type ValidationResultRepository struct {
	backend *Backend
}

var _ storage.ValidationResultRepository = (*ValidationResultRepository)(nil)

// NewValidationResultRepository creates a new ValidationResultRepository.
func NewValidationResultRepository(backend *Backend) *ValidationResultRepository {
	return &ValidationResultRepository{
		backend: backend,
	}
}

// Close implements storage.Repository. The backend is shared and closed by
// its owner.
func (r *ValidationResultRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ValidationResultRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddValidationResult appends a result, assigning ID and CreatedAt if unset.
func (r *ValidationResultRepository) AddValidationResult(ctx context.Context, result *core.ValidationResult) (*core.ValidationResult, error) {
	if err := core.ValidateScore(result.Score); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if result.ID == uuid.Nil {
			result.ID = uuid.New()
		}
		if result.CreatedAt.IsZero() {
			result.CreatedAt = time.Now().UTC()
		}

		if err := tx.Set(makeValidationKey(result.ID), storage.MarshalValidationResult(result)); err != nil {
			return err
		}
		indexKey := makeValidationByVerKey(result.VersionID, result.CreatedAt, result.ID)
		if err := tx.Set(indexKey, storage.MarshalUUID(result.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return result, err
}

// GetValidationResults retrieves every result for a version in creation order.
func (r *ValidationResultRepository) GetValidationResults(ctx context.Context, versionID uuid.UUID) ([]*core.ValidationResult, error) {
	var results []*core.ValidationResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var ids []uuid.UUID

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialValidationByVerKey(versionID)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalUUID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		for _, id := range ids {
			item, err := tx.Get(makeValidationKey(id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				result, err := storage.UnmarshalValidationResult(val)
				if err != nil {
					return err
				}
				results = append(results, result)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return results, err
}

// LatestValidationResult retrieves the most recent result for a version.
func (r *ValidationResultRepository) LatestValidationResult(ctx context.Context, versionID uuid.UUID) (*core.ValidationResult, error) {
	results, err := r.GetValidationResults(ctx, versionID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, storage.ErrNotFound
	}
	return results[len(results)-1], nil
}
