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
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/ai/mock"
	"github.com/poiesic/docpipe/blob"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/index"
	"github.com/poiesic/docpipe/index/memory"
	"github.com/poiesic/docpipe/storage"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

type pipelineEnv struct {
	orchestrator *Orchestrator
	blobs        blob.Store
	index        *memory.Index
	catalog      storage.CatalogRepository
	extractor    *mock.MockTextExtractor
}

// newPipelineEnv wires an orchestrator against an in-memory index, an
// in-memory catalog and a temp-dir blob store. The chunker is shrunk so short
// fixtures still produce multiple chunks.
func newPipelineEnv(t *testing.T, provider ai.AIProvider, opts ...Option) *pipelineEnv {
	t.Helper()

	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	idx, err := memory.New(index.DefaultSchema("documents-test", mock.DefaultDimension))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	catalog, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	if provider == nil {
		provider = mock.NewMockProvider()
	}

	chunker, err := NewChunker(WithChunkSize(50), WithChunkOverlap(10))
	require.NoError(t, err)
	batcher, err := NewBatcher(provider.Embedder(),
		WithDimension(mock.DefaultDimension),
		WithBatcherRetry(1, time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(batcher.Release)

	extractor := mock.NewMockTextExtractor()
	opts = append([]Option{WithChunker(chunker), WithBatcher(batcher)}, opts...)
	orchestrator, err := NewOrchestrator(blobs, extractor, provider, idx, catalog, opts...)
	require.NoError(t, err)
	t.Cleanup(orchestrator.Release)

	return &pipelineEnv{
		orchestrator: orchestrator,
		blobs:        blobs,
		index:        idx,
		catalog:      catalog,
		extractor:    extractor,
	}
}

// registerDocument creates a catalog entry plus one stored version whose blob
// holds the given text.
func (e *pipelineEnv) registerDocument(t *testing.T, title, text string) (*core.Document, core.DocumentVersion) {
	t.Helper()
	ctx := context.Background()

	doc, err := e.catalog.PutDocument(ctx, &core.Document{
		Title:        title,
		DocumentType: "CASE_STUDY",
	})
	require.NoError(t, err)

	version := e.addVersion(t, doc.ID, 1, text)
	return doc, version
}

// addVersion stores the text as a blob and records the version entry.
func (e *pipelineEnv) addVersion(t *testing.T, documentID uuid.UUID, number int, text string) core.DocumentVersion {
	t.Helper()
	ctx := context.Background()

	version := core.DocumentVersion{
		ID:            uuid.New(),
		DocumentID:    documentID,
		VersionNumber: number,
		BlobPath:      fmt.Sprintf("docs/%s/v%d.txt", documentID, number),
		FileName:      fmt.Sprintf("v%d.txt", number),
		ContentType:   "text/plain",
		ByteSize:      int64(len(text)),
		CreatedAt:     time.Now().UTC(),
	}
	_, err := e.blobs.Put(ctx, version.BlobPath, strings.NewReader(text), version.ContentType)
	require.NoError(t, err)
	require.NoError(t, e.catalog.PutVersion(ctx, &version))
	return version
}

func TestOrchestrator_IndexSuccess(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	text := strings.Repeat("migration of the billing platform to kubernetes. ", 5)
	doc, version := env.registerDocument(t, "Billing Migration", text)

	facets := core.Facets{
		Domain:       "cloud",
		Industry:     "finance",
		Technologies: []string{"kubernetes"},
		CreatedDate:  time.Now().UTC(),
	}
	result, err := env.orchestrator.Index(ctx, version, doc.Title, facets)
	require.NoError(t, err)

	assert.Equal(t, doc.ID, result.DocumentID)
	assert.Equal(t, version.ID, result.VersionID)
	assert.Equal(t, StateIndexed, result.State)
	assert.Equal(t, "Summary of Billing Migration", result.Summary)
	assert.Greater(t, result.ChunkCount, 1, "fixture should span multiple chunks")
	assert.Equal(t, result.ChunkCount, env.index.Count())

	stored, err := env.catalog.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, string(StateIndexed), stored.State)
	assert.True(t, stored.Indexed)

	hits, err := env.index.HybridSearch(ctx, index.Query{
		Text:   "billing platform kubernetes",
		Vector: mock.DeterministicVector(text[:50], mock.DefaultDimension),
		TopK:   3,
		Filter: index.And(index.Eq(index.FieldDomain, "cloud")),
	})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, doc.ID, hits[0].Record.DocumentID)
	assert.Equal(t, "Billing Migration", hits[0].Record.Title)
}

func TestOrchestrator_ReindexReplacesRecords(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	doc, v1 := env.registerDocument(t, "Handbook", strings.Repeat("first revision text block. ", 10))
	_, err := env.orchestrator.Index(ctx, v1, doc.Title, core.Facets{})
	require.NoError(t, err)
	firstCount := env.index.Count()
	require.Greater(t, firstCount, 1)

	// The replacement is shorter, so stale records from v1 would be visible
	// as a count above the new chunk count.
	v2 := env.addVersion(t, doc.ID, 2, "second revision, much shorter")
	result, err := env.orchestrator.Index(ctx, v2, doc.Title, core.Facets{})
	require.NoError(t, err)

	assert.Equal(t, result.ChunkCount, env.index.Count())
	assert.Less(t, env.index.Count(), firstCount)
	assert.Zero(t, env.index.CountByVersion(v1.ID), "old version records must be gone")
	assert.Equal(t, result.ChunkCount, env.index.CountByVersion(v2.ID))
}

func TestOrchestrator_RerunSameVersionIsIdempotent(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	doc, version := env.registerDocument(t, "Stable", strings.Repeat("identical content. ", 8))

	first, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.NoError(t, err)
	second, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.NoError(t, err)

	assert.Equal(t, first.ChunkCount, second.ChunkCount)
	assert.Equal(t, first.ChunkCount, env.index.Count(), "rerun must not append")
}

func TestOrchestrator_ExtractionFailureLeavesIndexIntact(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	doc, v1 := env.registerDocument(t, "Resilient", strings.Repeat("good content here. ", 6))
	_, err := env.orchestrator.Index(ctx, v1, doc.Title, core.Facets{})
	require.NoError(t, err)
	committed := env.index.Count()

	env.extractor.ExtractFunc = func(ctx context.Context, document io.Reader, contentType string) (string, error) {
		return "", errors.New("parser crashed")
	}

	v2 := env.addVersion(t, doc.ID, 2, "never reaches the index")
	_, err = env.orchestrator.Index(ctx, v2, doc.Title, core.Facets{})
	require.Error(t, err)

	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageExtraction, stage)
	assert.Equal(t, committed, env.index.Count(), "failed run must not touch committed records")
}

func TestOrchestrator_MissingBlobFailsExtraction(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	version := core.DocumentVersion{
		ID:            uuid.New(),
		DocumentID:    uuid.New(),
		VersionNumber: 1,
		BlobPath:      "docs/missing/v1.txt",
		ContentType:   "text/plain",
	}

	_, err := env.orchestrator.Index(ctx, version, "Ghost", core.Facets{})
	require.Error(t, err)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageExtraction, stage)
}

func TestOrchestrator_EmptyDocumentFailsChunking(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	doc, version := env.registerDocument(t, "Blank", "   \n\t  ")
	_, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyText)

	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageChunking, stage)
	assert.Zero(t, env.index.Count())
}

func TestOrchestrator_SummarizationFailureIsNonFatal(t *testing.T) {
	summarizer := mock.NewMockSummarizer()
	summarizer.SummarizeFunc = func(ctx context.Context, title, text string) (string, error) {
		return "", errors.New("model overloaded")
	}
	provider := mock.NewMockProviderWithServices(mock.NewMockEmbedder(), mock.NewMockChatModel(), summarizer)

	env := newPipelineEnv(t, provider)
	ctx := context.Background()

	doc, version := env.registerDocument(t, "No Summary", strings.Repeat("content survives. ", 5))
	result, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.NoError(t, err)

	assert.Empty(t, result.Summary)
	assert.Equal(t, StateIndexed, result.State)
	assert.Equal(t, result.ChunkCount, env.index.Count())
}

func TestOrchestrator_SummarizationDisabled(t *testing.T) {
	provider := mock.NewMockProvider()
	env := newPipelineEnv(t, provider, WithSummarization(false))
	ctx := context.Background()

	doc, version := env.registerDocument(t, "Quiet", "short body of text to index")
	result, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.NoError(t, err)

	assert.Empty(t, result.Summary)
	mockProvider := provider.(*mock.MockProvider)
	assert.Zero(t, mockProvider.GetMockSummarizer().CallCount())
}

func TestOrchestrator_StatusSequence(t *testing.T) {
	var seen []State
	env := newPipelineEnv(t, nil, WithStatus(func(state State) {
		seen = append(seen, state)
	}))
	ctx := context.Background()

	doc, version := env.registerDocument(t, "Tracked", strings.Repeat("observable progress. ", 6))
	_, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.NoError(t, err)

	require.Equal(t, []State{
		StatePending,
		StateExtracting,
		StateChunking,
		StateEmbedding,
		StateIndexing,
		StateIndexed,
	}, seen)
	for i := 1; i < len(seen); i++ {
		assert.True(t, CanTransition(seen[i-1], seen[i]), "%s -> %s", seen[i-1], seen[i])
	}
}

func TestOrchestrator_FailureReportsFailedStatus(t *testing.T) {
	var seen []State
	env := newPipelineEnv(t, nil, WithStatus(func(state State) {
		seen = append(seen, state)
	}))
	ctx := context.Background()

	doc, version := env.registerDocument(t, "Doomed", "")
	_, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.Error(t, err)

	require.NotEmpty(t, seen)
	assert.Equal(t, StateFailed, seen[len(seen)-1])
}

func TestOrchestrator_Purge(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	doc, version := env.registerDocument(t, "Ephemeral", strings.Repeat("purge me later. ", 6))
	_, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.NoError(t, err)
	require.Greater(t, env.index.Count(), 0)

	require.NoError(t, env.orchestrator.Purge(ctx, doc.ID))

	assert.Zero(t, env.index.Count())

	exists, err := env.blobs.Exists(ctx, version.BlobPath)
	require.NoError(t, err)
	assert.False(t, exists, "purge must delete the stored blob")

	stored, err := env.catalog.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, stored.Indexed)
	assert.Equal(t, string(StatePurging), stored.State)
}

func TestOrchestrator_PurgeIsIdempotent(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	doc, version := env.registerDocument(t, "Twice", "some indexed content")
	_, err := env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
	require.NoError(t, err)

	require.NoError(t, env.orchestrator.Purge(ctx, doc.ID))
	require.NoError(t, env.orchestrator.Purge(ctx, doc.ID))

	// Purging a document the pipeline has never seen is also fine.
	require.NoError(t, env.orchestrator.Purge(ctx, uuid.New()))
}

func TestOrchestrator_ConcurrentRunsSameDocumentSerialize(t *testing.T) {
	env := newPipelineEnv(t, nil)
	ctx := context.Background()

	doc, v1 := env.registerDocument(t, "Contended", strings.Repeat("long first version text. ", 10))
	v2 := env.addVersion(t, doc.ID, 2, "tiny second version")

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	errs := make([]error, 2)
	for i, version := range []core.DocumentVersion{v1, v2} {
		wg.Add(1)
		go func(slot int, version core.DocumentVersion) {
			defer wg.Done()
			results[slot], errs[slot] = env.orchestrator.Index(ctx, version, doc.Title, core.Facets{})
		}(i, version)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// The per-document lock forces delete-then-upsert to run whole; the
	// surviving record set must belong entirely to one version.
	total := env.index.Count()
	byV1 := env.index.CountByVersion(v1.ID)
	byV2 := env.index.CountByVersion(v2.ID)
	assert.True(t,
		(byV1 == total && byV2 == 0) || (byV2 == total && byV1 == 0),
		"records interleaved across versions: total=%d v1=%d v2=%d", total, byV1, byV2)
}

func TestNewOrchestrator_RequiresDependencies(t *testing.T) {
	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)
	idx, err := memory.New(index.DefaultSchema("documents-test", mock.DefaultDimension))
	require.NoError(t, err)
	catalog, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	provider := mock.NewMockProvider()
	extractor := mock.NewMockTextExtractor()

	tests := []struct {
		name string
		fn   func() (*Orchestrator, error)
		want error
	}{
		{"nil blob store", func() (*Orchestrator, error) {
			return NewOrchestrator(nil, extractor, provider, idx, catalog)
		}, ErrBlobStoreRequired},
		{"nil extractor", func() (*Orchestrator, error) {
			return NewOrchestrator(blobs, nil, provider, idx, catalog)
		}, ErrExtractorRequired},
		{"nil provider", func() (*Orchestrator, error) {
			return NewOrchestrator(blobs, extractor, nil, idx, catalog)
		}, ErrAIProviderRequired},
		{"nil index", func() (*Orchestrator, error) {
			return NewOrchestrator(blobs, extractor, provider, nil, catalog)
		}, ErrIndexRequired},
		{"nil catalog", func() (*Orchestrator, error) {
			return NewOrchestrator(blobs, extractor, provider, idx, nil)
		}, ErrCatalogRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
