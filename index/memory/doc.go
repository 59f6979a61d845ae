// Package memory provides an in-process implementation of index.Manager.
//
// Records are held in a map keyed by deterministic record id; hybrid search
// brute-forces cosine similarity over the full record set and applies a
// keyword boost for verbatim matches. Intended for tests and small
// single-node deployments.
package memory
