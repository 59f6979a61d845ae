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


package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/index"
)

// Index is an in-process implementation of index.Manager. Records live in a
// map keyed by record id; searches brute-force cosine similarity over the
// record set. It serves tests and single-node deployments where running a
// vector database is not worth the operational cost.
type Index struct {
	schema  index.Schema
	logger  *slog.Logger
	mu      sync.RWMutex
	records map[core.RecordID]core.SearchRecord
	ensured bool
}

// Option configures an Index.
type Option func(*Index)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Index) {
		if logger == nil {
			logger = slog.Default()
		}
		idx.logger = logger
	}
}

// New creates an in-memory index for the given schema.
func New(schema index.Schema, opts ...Option) (*Index, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	idx := &Index{
		schema:  schema,
		logger:  slog.Default().With("component", "memory-index"),
		records: make(map[core.RecordID]core.SearchRecord),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// EnsureSchema marks the index ready. Repeated calls are no-ops.
func (idx *Index) EnsureSchema(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.ensured = true
	return nil
}

// Upsert writes the records, replacing any with the same id.
func (idx *Index) Upsert(ctx context.Context, records []core.SearchRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, record := range records {
		if err := core.ValidateSearchRecord(&record); err != nil {
			return err
		}
		if len(record.ContentVector) != idx.schema.VectorDimension {
			return fmt.Errorf("%w: record %d has dimension %d, schema requires %d",
				index.ErrDimensionMismatch, record.ID, len(record.ContentVector), idx.schema.VectorDimension)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.ensured {
		return index.ErrSchemaNotEnsured
	}
	for _, record := range records {
		idx.records[record.ID] = record
	}
	idx.logger.Debug("records upserted", "count", len(records), "total", len(idx.records))
	return nil
}

// DeleteByDocument removes every record for the document. Missing documents
// are a successful no-op.
func (idx *Index) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	deleted := 0
	for id, record := range idx.records {
		if record.DocumentID == documentID {
			delete(idx.records, id)
			deleted++
		}
	}
	idx.logger.Debug("document records deleted", "documentID", documentID, "count", deleted)
	return nil
}

// HybridSearch scores every matching record by cosine similarity plus a
// keyword boost when all significant query words appear in the content or
// title, and returns the top results.
func (idx *Index) HybridSearch(ctx context.Context, query index.Query) ([]index.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := index.ValidateQuery(query, idx.schema); err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	hits := make([]index.Hit, 0, len(idx.records))
	for _, record := range idx.records {
		if query.Filter != nil && !query.Filter.Matches(record) {
			continue
		}

		score := index.CosineSimilarity(query.Vector, record.ContentVector)
		if query.Text != "" {
			if index.MatchesAllQueryWords(record.Content, query.Text) ||
				index.MatchesAllQueryWords(record.Title, query.Text) {
				score += index.KeywordBoost
			}
		}

		hits = append(hits, index.Hit{Record: record, Score: score})
	}

	// Ties break on id so repeated queries return stable orderings.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})
	if len(hits) > query.TopK {
		hits = hits[:query.TopK]
	}
	return hits, nil
}

// Count returns the number of stored records.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records)
}

// CountByVersion returns the number of stored records for a version.
func (idx *Index) CountByVersion(versionID uuid.UUID) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	count := 0
	for _, record := range idx.records {
		if record.VersionID == versionID {
			count++
		}
	}
	return count
}

// Close releases the record set.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.records = make(map[core.RecordID]core.SearchRecord)
	idx.ensured = false
	return nil
}
