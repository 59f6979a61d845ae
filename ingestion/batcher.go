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
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/core"
)

const (
	// DefaultBatchSize is the number of chunks sent per embedding call.
	DefaultBatchSize = 16
)

// Batcher generates embeddings for chunk sets in order-preserving batches.
// Batch calls run on a bounded worker pool: exceeding the bound queues the
// batch rather than failing. A count or dimension mismatch from the
// embedding service fails the whole chunk set.
type Batcher struct {
	embedder       ai.Embedder
	pool           *ants.Pool
	batchSize      int
	dimension      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// BatcherOption configures a Batcher.
type BatcherOption func(*Batcher) error

// WithBatchSize sets the number of chunks per embedding call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) BatcherOption {
	return func(b *Batcher) error {
		if size < 1 {
			size = 1
		}
		b.batchSize = size
		return nil
	}
}

// WithConcurrency sets the maximum number of in-flight embedding calls.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithConcurrency(size int) BatcherOption {
	return func(b *Batcher) error {
		if size < 1 {
			size = 1
		}

		if b.pool != nil {
			b.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithDimension sets the expected embedding dimension.
// Default is ai.DefaultEmbeddingDimension.
func WithDimension(dimension int) BatcherOption {
	return func(b *Batcher) error {
		b.dimension = dimension
		return nil
	}
}

// WithBatcherRetry sets the retry policy for failed embedding calls.
// Default is 3 attempts with a 1s base delay.
func WithBatcherRetry(maxAttempts int, baseDelay time.Duration) BatcherOption {
	return func(b *Batcher) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxRetries = maxAttempts
		b.retryBaseDelay = baseDelay
		return nil
	}
}

// WithBatcherLogger sets a custom logger.
// Default is slog.Default().
func WithBatcherLogger(logger *slog.Logger) BatcherOption {
	return func(b *Batcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBatcher creates an embedding batcher.
func NewBatcher(embedder ai.Embedder, opts ...BatcherOption) (*Batcher, error) {
	if embedder == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Batcher{
		embedder:       embedder,
		pool:           pool,
		batchSize:      DefaultBatchSize,
		dimension:      ai.DefaultEmbeddingDimension,
		maxRetries:     3,
		retryBaseDelay: time.Second,
		logger:         slog.Default().With("component", "embedding-batcher"),
	}
	for _, opt := range opts {
		if optErr := opt(b); optErr != nil {
			b.Release()
			return nil, optErr
		}
	}
	return b, nil
}

// EmbedChunks embeds the chunk texts and returns vectors in chunk order.
// The returned slice always has exactly one vector per chunk; any batch
// failure fails the whole call.
func (b *Batcher) EmbedChunks(ctx context.Context, chunks []core.Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return [][]float32{}, nil
	}

	vectors := make([][]float32, len(chunks))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(chunks); start += b.batchSize {
		end := start + b.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		offset := start
		batch := chunks[start:end]

		wg.Add(1)
		submitErr := b.pool.Submit(func() {
			defer wg.Done()
			if err := b.embedBatch(ctx, batch, vectors[offset:offset+len(batch)]); err != nil {
				setErr(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			setErr(submitErr)
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, stageError(StageEmbedding, firstErr)
	}
	return vectors, nil
}

// embedBatch embeds one batch and writes the vectors into out, which aliases
// the caller's result slice at the batch's offset.
func (b *Batcher) embedBatch(ctx context.Context, batch []core.Chunk, out [][]float32) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = b.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, b.maxRetries, b.retryBaseDelay)
	if err != nil {
		return err
	}

	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingCountMismatch, len(texts), len(embeddings))
	}
	for i, embedding := range embeddings {
		if len(embedding) != b.dimension {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				ErrEmbeddingDimensionMismatch, batch[i].Ordinal, len(embedding), b.dimension)
		}
	}

	copy(out, embeddings)
	return nil
}

// Release releases the worker pool.
// The batcher should not be used after calling Release.
func (b *Batcher) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}
