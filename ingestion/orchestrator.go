// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/blob"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/index"
	"github.com/poiesic/docpipe/storage"
)

// Orchestrator drives a document version through the indexing pipeline:
// extract, chunk, embed, and index, with an optional summarization step.
// Index mutations are serialized per document; different documents run
// concurrently. Every run is safe to repeat from the beginning: records are
// replaced, never appended.
type Orchestrator struct {
	blobs      blob.Store
	extractor  ai.TextExtractor
	summarizer ai.Summarizer
	chunker    *Chunker
	batcher    *Batcher
	index      index.Manager
	catalog    storage.CatalogRepository
	locks      *keyedMutex
	status     StatusFunc
	summarize  bool
	ownBatcher bool
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithChunker replaces the default chunker.
func WithChunker(chunker *Chunker) Option {
	return func(o *Orchestrator) error {
		if chunker == nil {
			return ErrInvalidChunkConfig
		}
		o.chunker = chunker
		return nil
	}
}

// WithBatcher replaces the default embedding batcher. The caller owns the
// batcher's lifecycle.
func WithBatcher(batcher *Batcher) Option {
	return func(o *Orchestrator) error {
		if batcher == nil {
			return ErrAIProviderRequired
		}
		if o.ownBatcher {
			o.batcher.Release()
			o.ownBatcher = false
		}
		o.batcher = batcher
		return nil
	}
}

// WithSummarization enables or disables the summary step.
// Default is enabled.
func WithSummarization(enabled bool) Option {
	return func(o *Orchestrator) error {
		o.summarize = enabled
		return nil
	}
}

// WithStatus sets a callback receiving state transitions.
func WithStatus(status StatusFunc) Option {
	return func(o *Orchestrator) error {
		o.status = status
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an ingestion orchestrator.
func NewOrchestrator(
	blobs blob.Store,
	extractor ai.TextExtractor,
	provider ai.AIProvider,
	indexManager index.Manager,
	catalog storage.CatalogRepository,
	opts ...Option,
) (*Orchestrator, error) {
	if blobs == nil {
		return nil, ErrBlobStoreRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if indexManager == nil {
		return nil, ErrIndexRequired
	}
	if catalog == nil {
		return nil, ErrCatalogRequired
	}

	chunker, err := NewChunker()
	if err != nil {
		return nil, err
	}
	batcher, err := NewBatcher(provider.Embedder())
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		blobs:      blobs,
		extractor:  extractor,
		summarizer: provider.Summarizer(),
		chunker:    chunker,
		batcher:    batcher,
		index:      indexManager,
		catalog:    catalog,
		locks:      newKeyedMutex(),
		summarize:  true,
		ownBatcher: true,
		logger:     slog.Default().With("component", "ingestion-orchestrator"),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.Release()
			return nil, optErr
		}
	}

	return o, nil
}

// Result reports a completed pipeline run.
type Result struct {
	DocumentID uuid.UUID
	VersionID  uuid.UUID
	ChunkCount int
	Summary    string
	State      State
}

// Index runs the full pipeline for a document version. Re-running for a
// version that is already indexed replaces its record set; a failed run
// leaves the previously committed records untouched and the catalog state
// at the last successfully completed stage.
func (o *Orchestrator) Index(ctx context.Context, version core.DocumentVersion, title string, facets core.Facets) (*Result, error) {
	if err := core.ValidateDocumentVersion(&version); err != nil {
		return nil, err
	}

	o.locks.lock(version.DocumentID)
	defer o.locks.unlock(version.DocumentID)

	logger := o.logger.With("documentID", version.DocumentID, "versionID", version.ID)
	o.setState(ctx, version.DocumentID, StatePending)

	// Extraction
	o.setState(ctx, version.DocumentID, StateExtracting)
	text, err := o.extract(ctx, version)
	if err != nil {
		o.reportFailure(logger, err)
		return nil, err
	}

	// Chunking
	o.setState(ctx, version.DocumentID, StateChunking)
	chunks, err := o.chunker.Chunk(version.ID, text)
	if err != nil {
		err = stageError(StageChunking, err)
		o.reportFailure(logger, err)
		return nil, err
	}

	// Embedding
	o.setState(ctx, version.DocumentID, StateEmbedding)
	vectors, err := o.batcher.EmbedChunks(ctx, chunks)
	if err != nil {
		o.reportFailure(logger, err)
		return nil, err
	}

	// Summarization failures do not abort the run; the index does not
	// depend on the summary.
	var summary string
	if o.summarize && o.summarizer != nil {
		summary, err = o.summarizer.Summarize(ctx, title, text)
		if err != nil {
			logger.Warn("summarization failed", "err", err)
			summary = ""
		}
	}

	// Indexing: replace the document's record set atomically with respect
	// to other pipeline runs (the per-document lock is held).
	o.setState(ctx, version.DocumentID, StateIndexing)
	if err := o.index.EnsureSchema(ctx); err != nil {
		err = stageError(StageIndexSchema, err)
		o.reportFailure(logger, err)
		return nil, err
	}

	records := make([]core.SearchRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = core.SearchRecord{
			ID:            core.NewRecordID(version.ID, chunk.Ordinal),
			DocumentID:    version.DocumentID,
			VersionID:     version.ID,
			ChunkOrdinal:  chunk.Ordinal,
			Title:         title,
			Content:       chunk.Text,
			ContentVector: vectors[i],
			Facets:        facets,
		}
	}

	if err := o.index.DeleteByDocument(ctx, version.DocumentID); err != nil {
		err = stageError(StageIndexWrite, err)
		o.reportFailure(logger, err)
		return nil, err
	}
	if err := o.index.Upsert(ctx, records); err != nil {
		err = stageError(StageIndexWrite, err)
		o.reportFailure(logger, err)
		return nil, err
	}

	o.setState(ctx, version.DocumentID, StateIndexed)
	if err := o.catalog.SetIndexed(ctx, version.DocumentID, true); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("failed to flip indexed flag", "err", err)
	}

	logger.Info("version indexed", "chunks", len(records))
	return &Result{
		DocumentID: version.DocumentID,
		VersionID:  version.ID,
		ChunkCount: len(records),
		Summary:    summary,
		State:      StateIndexed,
	}, nil
}

// Purge removes every search record for a document, deletes its stored
// blobs, and clears the indexed flag. Purging a document with no records is
// a successful no-op.
func (o *Orchestrator) Purge(ctx context.Context, documentID uuid.UUID) error {
	o.locks.lock(documentID)
	defer o.locks.unlock(documentID)

	logger := o.logger.With("documentID", documentID)
	o.setState(ctx, documentID, StatePurging)

	if err := o.index.DeleteByDocument(ctx, documentID); err != nil {
		err = stageError(StagePurge, err)
		o.reportFailure(logger, err)
		return err
	}

	versions, err := o.catalog.ListVersions(ctx, documentID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		err = stageError(StagePurge, err)
		o.reportFailure(logger, err)
		return err
	}
	for _, version := range versions {
		if err := o.blobs.Delete(ctx, version.BlobPath); err != nil {
			logger.Warn("failed to delete version blob", "versionID", version.ID, "err", err)
		}
	}

	if err := o.catalog.SetIndexed(ctx, documentID, false); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("failed to clear indexed flag", "err", err)
	}

	logger.Info("document purged", "versions", len(versions))
	return nil
}

// Release releases resources owned by the orchestrator.
func (o *Orchestrator) Release() {
	if o.ownBatcher && o.batcher != nil {
		o.batcher.Release()
	}
}

// extract pulls the version's bytes from blob storage and derives text.
func (o *Orchestrator) extract(ctx context.Context, version core.DocumentVersion) (string, error) {
	reader, err := o.blobs.Get(ctx, version.BlobPath)
	if err != nil {
		return "", stageError(StageExtraction, err)
	}
	defer reader.Close()

	text, err := o.extractor.ExtractText(ctx, reader, version.ContentType)
	if err != nil {
		return "", stageError(StageExtraction, err)
	}
	return text, nil
}

// setState records the stage in the catalog and notifies the status
// callback. Catalog misses are tolerated so the pipeline can index versions
// the catalog has not seen yet.
func (o *Orchestrator) setState(ctx context.Context, documentID uuid.UUID, state State) {
	if err := o.catalog.SetState(ctx, documentID, string(state)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		o.logger.Warn("failed to record state", "documentID", documentID, "state", state, "err", err)
	}
	if o.status != nil {
		o.status(state)
	}
}

// reportFailure logs the failed stage. The catalog keeps the last
// successfully completed stage so a retry can resume from a known point.
func (o *Orchestrator) reportFailure(logger *slog.Logger, err error) {
	stage, _ := FailedStage(err)
	logger.Error("pipeline run failed", "stage", stage, "err", err)
	if o.status != nil {
		o.status(StateFailed)
	}
}
