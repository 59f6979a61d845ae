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


package index

import (
	"context"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/core"
)

// Query is a hybrid search request. Text drives keyword relevance, Vector
// drives nearest-neighbor similarity; both signals are consulted. Filter is
// optional and constrains results by facet values.
type Query struct {
	Text   string
	Vector []float32
	TopK   int
	Filter *Filter
}

// Hit is one ranked search result.
type Hit struct {
	Record core.SearchRecord
	Score  float32
}

// Manager owns the search index: its schema, the record set, and hybrid
// query execution. Implementations must be safe for concurrent use across
// different document identifiers; callers serialize mutations per document.
type Manager interface {
	// EnsureSchema creates the index schema if it does not exist and
	// converges to the same schema on repeated calls. It never fails
	// because the schema already exists.
	EnsureSchema(ctx context.Context) error

	// Upsert writes the records, replacing any existing records with the
	// same ids. All records must pass core.ValidateSearchRecord and carry
	// vectors of the schema dimension.
	Upsert(ctx context.Context, records []core.SearchRecord) error

	// DeleteByDocument removes every record belonging to the document.
	// Deleting a document with no records is a successful no-op.
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error

	// HybridSearch runs the query and returns at most TopK results ranked
	// by combined keyword and vector relevance.
	HybridSearch(ctx context.Context, query Query) ([]Hit, error)

	// Close releases backend resources.
	Close() error
}

// ValidateQuery checks a query against the schema before execution.
func ValidateQuery(query Query, schema Schema) error {
	if query.TopK <= 0 {
		return ErrInvalidTopK
	}
	if len(query.Vector) != schema.VectorDimension {
		return ErrDimensionMismatch
	}
	if query.Filter != nil {
		if err := query.Filter.Validate(schema); err != nil {
			return err
		}
	}
	return nil
}
