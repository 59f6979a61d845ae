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


package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/index"
)

// Index implements index.Manager on a Qdrant collection over gRPC.
// The collection name and vector dimension come from the schema; facet
// fields are stored as point payload and filtered server-side.
type Index struct {
	schema      index.Schema
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient
	logger      *slog.Logger
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

// New connects to a Qdrant server at addr (host:port of the gRPC endpoint)
// and returns an index over the schema's collection.
func New(addr string, schema index.Schema, opts ...Option) (*Index, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s: %w", addr, err)
	}

	idx := &Index{
		schema:      schema,
		conn:        conn,
		collections: qdrantclient.NewCollectionsClient(conn),
		points:      qdrantclient.NewPointsClient(conn),
		logger:      slog.Default().With("component", "qdrant-index"),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx, nil
}

// EnsureSchema creates the collection if it does not exist. Calling it when
// the collection already exists is a no-op.
func (idx *Index) EnsureSchema(ctx context.Context) error {
	collections, err := idx.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, col := range collections.GetCollections() {
		if col.GetName() == idx.schema.Name {
			return nil
		}
	}

	_, err = idx.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: idx.schema.Name,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     uint64(idx.schema.VectorDimension),
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", idx.schema.Name, err)
	}

	idx.logger.Info("collection created", "collection", idx.schema.Name, "dimension", idx.schema.VectorDimension)
	return nil
}

// Upsert writes the records as points keyed by deterministic record id.
// Existing points with the same ids are replaced.
func (idx *Index) Upsert(ctx context.Context, records []core.SearchRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*qdrantclient.PointStruct, 0, len(records))
	for _, record := range records {
		if err := core.ValidateSearchRecord(&record); err != nil {
			return err
		}
		if len(record.ContentVector) != idx.schema.VectorDimension {
			return fmt.Errorf("%w: record %d has dimension %d, schema requires %d",
				index.ErrDimensionMismatch, record.ID, len(record.ContentVector), idx.schema.VectorDimension)
		}

		points = append(points, &qdrantclient.PointStruct{
			Id: &qdrantclient.PointId{
				PointIdOptions: &qdrantclient.PointId_Num{
					Num: uint64(record.ID),
				},
			},
			Vectors: &qdrantclient.Vectors{
				VectorsOptions: &qdrantclient.Vectors_Vector{
					Vector: &qdrantclient.Vector{
						Data: record.ContentVector,
					},
				},
			},
			Payload: recordPayload(record),
		})
	}

	wait := true
	_, err := idx.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: idx.schema.Name,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	idx.logger.Debug("points upserted", "collection", idx.schema.Name, "count", len(points))
	return nil
}

// DeleteByDocument removes every point whose documentId payload matches.
// Deleting a document with no points succeeds.
func (idx *Index) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	wait := true
	_, err := idx.points.Delete(ctx, &qdrantclient.DeletePoints{
		CollectionName: idx.schema.Name,
		Wait:           &wait,
		Points: &qdrantclient.PointsSelector{
			PointsSelectorOneOf: &qdrantclient.PointsSelector_Filter{
				Filter: &qdrantclient.Filter{
					Must: []*qdrantclient.Condition{
						keywordCondition(index.FieldDocumentID, documentID.String()),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete points for document %s: %w", documentID, err)
	}

	idx.logger.Debug("document points deleted", "collection", idx.schema.Name, "documentID", documentID)
	return nil
}

// HybridSearch runs a filtered nearest-neighbor query, applies the keyword
// boost client-side, and returns the top results.
func (idx *Index) HybridSearch(ctx context.Context, query index.Query) ([]index.Hit, error) {
	if err := index.ValidateQuery(query, idx.schema); err != nil {
		return nil, err
	}

	filter, err := toQdrantFilter(query.Filter)
	if err != nil {
		return nil, err
	}

	// Oversample so the keyword boost can promote hits sitting just past
	// the vector cutoff.
	limit := uint64(query.TopK * 2)

	resp, err := idx.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: idx.schema.Name,
		Vector:         query.Vector,
		Limit:          limit,
		Filter:         filter,
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{
				Enable: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search in qdrant: %w", err)
	}

	hits := make([]index.Hit, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		record, err := recordFromPoint(point)
		if err != nil {
			idx.logger.Warn("skipping malformed point", "err", err)
			continue
		}

		score := point.GetScore()
		if query.Text != "" {
			if index.MatchesAllQueryWords(record.Content, query.Text) ||
				index.MatchesAllQueryWords(record.Title, query.Text) {
				score += index.KeywordBoost
			}
		}
		hits = append(hits, index.Hit{Record: record, Score: score})
	}

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

// Close closes the gRPC connection.
func (idx *Index) Close() error {
	return idx.conn.Close()
}

// recordPayload maps a search record's non-vector fields onto point payload.
func recordPayload(record core.SearchRecord) map[string]*qdrantclient.Value {
	payload := map[string]*qdrantclient.Value{
		index.FieldDocumentID:   stringValue(record.DocumentID.String()),
		index.FieldVersionID:    stringValue(record.VersionID.String()),
		index.FieldChunkIndex:   integerValue(int64(record.ChunkOrdinal)),
		index.FieldTitle:        stringValue(record.Title),
		index.FieldContent:      stringValue(record.Content),
		index.FieldDomain:       stringValue(record.Facets.Domain),
		index.FieldIndustry:     stringValue(record.Facets.Industry),
		index.FieldCustomerName: stringValue(record.Facets.CustomerName),
		index.FieldBusinessUnit: stringValue(record.Facets.BusinessUnit),
		index.FieldSBU:          stringValue(record.Facets.SBU),
		index.FieldDocumentType: stringValue(record.Facets.DocumentType),
		index.FieldTechnologies: stringListValue(record.Facets.Technologies),
	}
	if !record.Facets.CreatedDate.IsZero() {
		payload[index.FieldCreatedDate] = stringValue(record.Facets.CreatedDate.UTC().Format(time.RFC3339))
	}
	return payload
}

// recordFromPoint rebuilds a search record from a scored point. The content
// vector is not round-tripped; hits carry identifiers, text, and facets.
func recordFromPoint(point *qdrantclient.ScoredPoint) (core.SearchRecord, error) {
	payload := point.GetPayload()

	documentID, err := uuid.Parse(payloadString(payload, index.FieldDocumentID))
	if err != nil {
		return core.SearchRecord{}, fmt.Errorf("bad documentId payload: %w", err)
	}
	versionID, err := uuid.Parse(payloadString(payload, index.FieldVersionID))
	if err != nil {
		return core.SearchRecord{}, fmt.Errorf("bad versionId payload: %w", err)
	}

	record := core.SearchRecord{
		ID:           core.RecordID(point.GetId().GetNum()),
		DocumentID:   documentID,
		VersionID:    versionID,
		ChunkOrdinal: int(payloadInteger(payload, index.FieldChunkIndex)),
		Title:        payloadString(payload, index.FieldTitle),
		Content:      payloadString(payload, index.FieldContent),
		Facets: core.Facets{
			Domain:       payloadString(payload, index.FieldDomain),
			Industry:     payloadString(payload, index.FieldIndustry),
			BusinessUnit: payloadString(payload, index.FieldBusinessUnit),
			SBU:          payloadString(payload, index.FieldSBU),
			Technologies: payloadStrings(payload, index.FieldTechnologies),
			CustomerName: payloadString(payload, index.FieldCustomerName),
			DocumentType: payloadString(payload, index.FieldDocumentType),
		},
	}
	if raw := payloadString(payload, index.FieldCreatedDate); raw != "" {
		if created, err := time.Parse(time.RFC3339, raw); err == nil {
			record.Facets.CreatedDate = created
		}
	}
	return record, nil
}

// toQdrantFilter converts a facet filter into a qdrant must-clause filter.
func toQdrantFilter(filter *index.Filter) (*qdrantclient.Filter, error) {
	if filter == nil || len(filter.Clauses) == 0 {
		return nil, nil
	}

	must := make([]*qdrantclient.Condition, 0, len(filter.Clauses))
	for _, clause := range filter.Clauses {
		switch {
		case clause.Field == index.FieldChunkIndex:
			n, err := strconv.ParseInt(clause.Values[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: chunkIndex value %q is not an integer", index.ErrInvalidFilter, clause.Values[0])
			}
			must = append(must, integerCondition(clause.Field, n))
		case clause.Op == index.OpEquals:
			must = append(must, keywordCondition(clause.Field, clause.Values[0]))
		case clause.Op == index.OpAnyOf:
			must = append(must, keywordsCondition(clause.Field, clause.Values))
		default:
			return nil, fmt.Errorf("%w: unknown operator %q", index.ErrInvalidFilter, clause.Op)
		}
	}
	return &qdrantclient.Filter{Must: must}, nil
}

func keywordCondition(field, value string) *qdrantclient.Condition {
	return &qdrantclient.Condition{
		ConditionOneOf: &qdrantclient.Condition_Field{
			Field: &qdrantclient.FieldCondition{
				Key: field,
				Match: &qdrantclient.Match{
					MatchValue: &qdrantclient.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}

func keywordsCondition(field string, values []string) *qdrantclient.Condition {
	return &qdrantclient.Condition{
		ConditionOneOf: &qdrantclient.Condition_Field{
			Field: &qdrantclient.FieldCondition{
				Key: field,
				Match: &qdrantclient.Match{
					MatchValue: &qdrantclient.Match_Keywords{
						Keywords: &qdrantclient.RepeatedStrings{Strings: values},
					},
				},
			},
		},
	}
}

func integerCondition(field string, value int64) *qdrantclient.Condition {
	return &qdrantclient.Condition{
		ConditionOneOf: &qdrantclient.Condition_Field{
			Field: &qdrantclient.FieldCondition{
				Key: field,
				Match: &qdrantclient.Match{
					MatchValue: &qdrantclient.Match_Integer{Integer: value},
				},
			},
		},
	}
}

func stringValue(s string) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_StringValue{StringValue: s}}
}

func integerValue(n int64) *qdrantclient.Value {
	return &qdrantclient.Value{Kind: &qdrantclient.Value_IntegerValue{IntegerValue: n}}
}

func stringListValue(items []string) *qdrantclient.Value {
	values := make([]*qdrantclient.Value, 0, len(items))
	for _, item := range items {
		values = append(values, stringValue(item))
	}
	return &qdrantclient.Value{
		Kind: &qdrantclient.Value_ListValue{
			ListValue: &qdrantclient.ListValue{Values: values},
		},
	}
}

func payloadString(payload map[string]*qdrantclient.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadInteger(payload map[string]*qdrantclient.Value, key string) int64 {
	if v, ok := payload[key]; ok {
		return v.GetIntegerValue()
	}
	return 0
}

func payloadStrings(payload map[string]*qdrantclient.Value, key string) []string {
	v, ok := payload[key]
	if !ok {
		return nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil
	}
	items := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		if s := item.GetStringValue(); s != "" {
			items = append(items, s)
		}
	}
	return items
}
