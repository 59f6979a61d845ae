// Package index defines the search index contract: a declarative idempotent
// schema, upsert by deterministic record id, delete-by-document, and hybrid
// (keyword + vector) queries with optional facet filters.
//
// Two implementations exist: package memory provides an in-process index for
// tests and single-node deployments, and package qdrant backs the index with
// a Qdrant collection over gRPC.
//
// # Schema
//
// DefaultSchema declares the document chunk index: a deterministic key field,
// keyword-searchable title and content, filterable facet fields (domain,
// industry, business unit, SBU, technologies, customer name, document type,
// created date), and a fixed-dimension vector field attached to a cosine ANN
// profile.
//
// # Hybrid Ranking
//
// HybridSearch consults both signals: cosine similarity on the query vector
// provides the base score, and a bounded keyword boost is added when all
// significant query words appear verbatim in a record's content or title.
// Results are capped at TopK and never include records excluded by the
// filter expression.
package index
