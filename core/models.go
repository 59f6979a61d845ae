package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// RecordID is the deterministic identifier of a search record. It is a
// function of the owning version and chunk ordinal, so re-indexing the same
// version always produces the same ids and upserts replace instead of append.
type RecordID uint64

// NewRecordID derives the search record id for a chunk of a document version
// using BLAKE2b hashing. Identical (version, ordinal) pairs always produce
// identical ids.
func NewRecordID(versionID uuid.UUID, ordinal int) RecordID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(versionID.String()))
	h.Write([]byte(fmt.Sprintf(":%d", ordinal)))
	sum := h.Sum(nil)
	return RecordID(binary.LittleEndian.Uint64(sum))
}

// Document is the catalog entry for an uploaded document. It tracks the
// latest ingestion state and whether the search index currently reflects the
// newest version.
type Document struct {
	ID           uuid.UUID
	Title        string
	DocumentType string
	State        string
	Indexed      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DocumentVersion is one immutable uploaded revision of a document.
// Versions are never mutated; a new upload supersedes the previous one with a
// higher VersionNumber.
type DocumentVersion struct {
	ID            uuid.UUID
	DocumentID    uuid.UUID
	VersionNumber int
	BlobPath      string
	FileName      string
	ContentType   string
	ByteSize      int64
	CreatedAt     time.Time
}

// Chunk is a bounded contiguous span of a version's extracted text.
// Ordinals start at 0 and are contiguous for a given version.
type Chunk struct {
	VersionID uuid.UUID
	Ordinal   int
	Text      string
}

// Length returns the chunk size in characters.
func (c Chunk) Length() int {
	return len(c.Text)
}

// Facets are the filterable fields attached to every search record.
type Facets struct {
	Domain       string
	Industry     string
	BusinessUnit string
	SBU          string
	Technologies []string
	CustomerName string
	DocumentType string
	CreatedDate  time.Time
}

// SearchRecord is the unit stored in the search index: one chunk of one
// document version plus its embedding and facet fields. Records are replaced
// wholesale by id, never mutated field by field.
type SearchRecord struct {
	ID            RecordID
	DocumentID    uuid.UUID
	VersionID     uuid.UUID
	ChunkOrdinal  int
	Title         string
	Content       string
	ContentVector []float32
	Facets        Facets
}

// ExtractedText is the plain text derived from a stored version. It is
// transient, produced per pipeline run and never persisted.
type ExtractedText struct {
	VersionID   uuid.UUID
	Text        string
	ExtractedAt time.Time
}
