package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CatalogRepository provides bookkeeping for documents and their versions:
// which versions exist, which blob holds each one, and whether the search
// index currently reflects the newest version.
type CatalogRepository interface {
	Repository

	// PutDocument inserts or replaces a document entry. Sets CreatedAt on
	// first insert and UpdatedAt on every call.
	PutDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id uuid.UUID) (*core.Document, error)

	// ListDocuments retrieves all documents, ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document and all of its version entries.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id uuid.UUID) error

	// SetState records the document's last reached ingestion state.
	// Returns ErrNotFound if the document doesn't exist.
	SetState(ctx context.Context, id uuid.UUID, state string) error

	// SetIndexed flips the document's indexed flag.
	// Returns ErrNotFound if the document doesn't exist.
	SetIndexed(ctx context.Context, id uuid.UUID, indexed bool) error

	// PutVersion inserts or replaces a version entry.
	PutVersion(ctx context.Context, version *core.DocumentVersion) error

	// GetVersion retrieves a version by ID.
	// Returns ErrNotFound if the version doesn't exist.
	GetVersion(ctx context.Context, id uuid.UUID) (*core.DocumentVersion, error)

	// ListVersions retrieves a document's versions ordered by version
	// number ascending. A document with no versions yields an empty slice.
	ListVersions(ctx context.Context, documentID uuid.UUID) ([]*core.DocumentVersion, error)

	// LatestVersion retrieves the version with the highest version number.
	// Returns ErrNotFound if the document has no versions.
	LatestVersion(ctx context.Context, documentID uuid.UUID) (*core.DocumentVersion, error)
}

// ValidationResultRepository stores case-study validation outcomes.
// Results are append-only: every validation run adds a new row and the
// latest per version wins for display.
type ValidationResultRepository interface {
	Repository

	// AddValidationResult appends a result, assigning its ID and CreatedAt
	// if unset. Returns the stored result.
	AddValidationResult(ctx context.Context, result *core.ValidationResult) (*core.ValidationResult, error)

	// GetValidationResults retrieves every result for a version, ordered
	// by CreatedAt ascending. A version with no results yields an empty
	// slice.
	GetValidationResults(ctx context.Context, versionID uuid.UUID) ([]*core.ValidationResult, error)

	// LatestValidationResult retrieves the most recent result for a
	// version. Returns ErrNotFound if the version has none.
	LatestValidationResult(ctx context.Context, versionID uuid.UUID) (*core.ValidationResult, error)
}
