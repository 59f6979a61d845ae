// Package storage defines the persistence contracts for the document
// catalog and validation results, plus the serialization helpers shared by
// backends.
//
// CatalogRepository tracks documents and their immutable versions: blob
// paths, version numbers, the last reached ingestion state, and the indexed
// flag. ValidationResultRepository stores case-study validation outcomes
// append-only, with a latest-per-version lookup.
//
// The badger subpackage provides the BadgerDB-backed implementation.
// Serialization uses the MUS binary format via the serializers in package
// core.
package storage
