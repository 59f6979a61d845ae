// Package ingestion implements the document indexing pipeline.
//
// The Orchestrator takes a stored document version through text extraction,
// chunking, embedding, optional summarization, and index replacement,
// tracking the state machine
//
//	PENDING -> EXTRACTING -> CHUNKING -> EMBEDDING -> INDEXING -> INDEXED
//
// with FAILED reachable from any non-terminal state and PURGING handling
// document deletion. Re-running the pipeline for an indexed version is
// idempotent: the version's record set is replaced, never appended to.
//
// Index mutations are serialized per document identifier, so a purge can
// never race a re-index for the same document. Embedding batches run on a
// bounded worker pool; exceeding the bound queues rather than fails.
package ingestion
