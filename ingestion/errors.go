package ingestion

import (
	"errors"
	"fmt"
)

var (
	// ErrBlobStoreRequired is returned when a blob store is not provided.
	ErrBlobStoreRequired = errors.New("blob store required")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("text extractor required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrIndexRequired is returned when an index manager is not provided.
	ErrIndexRequired = errors.New("index manager required")

	// ErrCatalogRequired is returned when a catalog repository is not provided.
	ErrCatalogRequired = errors.New("catalog repository required")

	// ErrEmptyText is returned when chunking receives zero-length input.
	ErrEmptyText = errors.New("empty text")

	// ErrInvalidChunkConfig is returned for a non-positive chunk size or an
	// overlap that is negative or not smaller than the size.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrEmbeddingCountMismatch is returned when the embedding service
	// returns a different number of vectors than texts submitted.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrEmbeddingDimensionMismatch is returned when a returned vector has
	// an unexpected dimension.
	ErrEmbeddingDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)

// Stage names the pipeline step a failure originated from.
type Stage string

const (
	StageExtraction  Stage = "extraction"
	StageChunking    Stage = "chunking"
	StageEmbedding   Stage = "embedding"
	StageIndexSchema Stage = "index-schema"
	StageIndexWrite  Stage = "index-write"
	StagePurge       Stage = "purge"
)

// StageError wraps a stage failure with the stage it originated from.
// The pipeline fails fast: the first stage error aborts the run and is
// reported to the caller unmasked.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage extracts the originating stage from an error chain.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}
	return "", false
}

func stageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
