package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) *CatalogRepository {
	return &CatalogRepository{
		backend: backend,
	}
}

// Close implements storage.Repository. The backend is shared and closed by
// its owner.
func (r *CatalogRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *CatalogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// PutDocument inserts or replaces a document entry.
func (r *CatalogRepository) PutDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if doc.ID == uuid.Nil {
			doc.ID = uuid.New()
		}

		now := time.Now().UTC()
		existing, err := r.readDocument(tx, makeDocumentKey(doc.ID))
		if err != nil {
			return err
		}
		if existing != nil {
			doc.CreatedAt = existing.CreatedAt
		} else {
			doc.CreatedAt = now
		}
		doc.UpdatedAt = now

		if err := tx.Set(makeDocumentKey(doc.ID), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return doc, err
}

// GetDocument retrieves a document by ID.
func (r *CatalogRepository) GetDocument(ctx context.Context, id uuid.UUID) (*core.Document, error) {
	var doc *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return doc, err
}

// ListDocuments retrieves all documents.
func (r *CatalogRepository) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var docs []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				doc, err := storage.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return docs, err
}

// DeleteDocument removes a document and all of its version entries.
func (r *CatalogRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := tx.Delete(makeDocumentKey(id)); err != nil {
			return err
		}

		// Collect version index entries first; deleting while iterating
		// invalidates the iterator.
		type versionEntry struct {
			indexKey  []byte
			versionID uuid.UUID
		}
		var entries []versionEntry

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVersionByDocKey(id)
		iter := tx.NewIterator(opts)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			key := item.KeyCopy(nil)
			err := item.Value(func(val []byte) error {
				versionID, err := storage.UnmarshalUUID(val)
				if err != nil {
					return err
				}
				entries = append(entries, versionEntry{indexKey: key, versionID: versionID})
				return nil
			})
			if err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		for _, entry := range entries {
			if err := tx.Delete(entry.indexKey); err != nil {
				return err
			}
			if err := tx.Delete(makeVersionKey(entry.versionID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// SetState records the document's last reached ingestion state.
func (r *CatalogRepository) SetState(ctx context.Context, id uuid.UUID, state string) error {
	return r.updateDocument(id, func(doc *core.Document) {
		doc.State = state
	})
}

// SetIndexed flips the document's indexed flag.
func (r *CatalogRepository) SetIndexed(ctx context.Context, id uuid.UUID, indexed bool) error {
	return r.updateDocument(id, func(doc *core.Document) {
		doc.Indexed = indexed
	})
}

// PutVersion inserts or replaces a version entry.
func (r *CatalogRepository) PutVersion(ctx context.Context, version *core.DocumentVersion) error {
	if err := core.ValidateDocumentVersion(version); err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVersionKey(version.ID), storage.MarshalDocumentVersion(version)); err != nil {
			return err
		}
		indexKey := makeVersionByDocKey(version.DocumentID, version.VersionNumber)
		if err := tx.Set(indexKey, storage.MarshalUUID(version.ID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetVersion retrieves a version by ID.
func (r *CatalogRepository) GetVersion(ctx context.Context, id uuid.UUID) (*core.DocumentVersion, error) {
	var version *core.DocumentVersion
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVersionKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			version, err = storage.UnmarshalDocumentVersion(val)
			return err
		})
	}, false)
	return version, err
}

// ListVersions retrieves a document's versions ordered by version number.
func (r *CatalogRepository) ListVersions(ctx context.Context, documentID uuid.UUID) ([]*core.DocumentVersion, error) {
	var versions []*core.DocumentVersion
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var ids []uuid.UUID

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVersionByDocKey(documentID)
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
			item, err := tx.Get(makeVersionKey(id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			err = item.Value(func(val []byte) error {
				version, err := storage.UnmarshalDocumentVersion(val)
				if err != nil {
					return err
				}
				versions = append(versions, version)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return versions, err
}

// LatestVersion retrieves the version with the highest version number.
func (r *CatalogRepository) LatestVersion(ctx context.Context, documentID uuid.UUID) (*core.DocumentVersion, error) {
	versions, err := r.ListVersions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, storage.ErrNotFound
	}
	return versions[len(versions)-1], nil
}

// updateDocument applies a mutation to a stored document.
func (r *CatalogRepository) updateDocument(id uuid.UUID, mutate func(*core.Document)) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		mutate(doc)
		doc.UpdatedAt = time.Now().UTC()

		if err := tx.Set(makeDocumentKey(id), storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readDocument reads a document by key. Returns nil, nil if absent.
func (r *CatalogRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		doc, err = storage.UnmarshalDocument(val)
		return err
	})
	return doc, err
}
