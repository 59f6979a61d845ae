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


package core

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidateDocumentVersion validates a DocumentVersion according to domain rules.
//
// Validation rules:
//   - ID and DocumentID must be set
//   - VersionNumber must be >= 1
//   - BlobPath must not be empty
//
// NOT validated:
//   - ByteSize (0 is valid for empty uploads; extraction rejects them later)
//   - CreatedAt (populated by the catalog on insert)
func ValidateDocumentVersion(v *DocumentVersion) error {
	if v == nil {
		return fmt.Errorf("%w: version is nil", ErrInvalidDocumentVersion)
	}
	if v.ID == uuid.Nil || v.DocumentID == uuid.Nil {
		return fmt.Errorf("%w: missing identifier", ErrInvalidDocumentVersion)
	}
	if v.VersionNumber < 1 {
		return fmt.Errorf("%w: version number %d", ErrInvalidDocumentVersion, v.VersionNumber)
	}
	if v.BlobPath == "" {
		return fmt.Errorf("%w: blob path cannot be empty", ErrInvalidDocumentVersion)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
func ValidateChunk(c *Chunk) error {
	if c == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}
	if c.VersionID == uuid.Nil {
		return fmt.Errorf("%w: missing version id", ErrInvalidChunk)
	}
	if c.Ordinal < 0 {
		return fmt.Errorf("%w: negative ordinal %d", ErrInvalidChunk, c.Ordinal)
	}
	if c.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}
	return nil
}

// ValidateSearchRecord validates a SearchRecord before it is handed to an
// index backend.
//
// Validation rules:
//   - ID must match NewRecordID(VersionID, ChunkOrdinal)
//   - Content must not be empty
//   - ContentVector must be non-empty (dimension is enforced by the index)
func ValidateSearchRecord(r *SearchRecord) error {
	if r == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidSearchRecord)
	}
	if r.ID != NewRecordID(r.VersionID, r.ChunkOrdinal) {
		return fmt.Errorf("%w: id does not derive from version and ordinal", ErrInvalidSearchRecord)
	}
	if r.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSearchRecord, ErrEmptyContent)
	}
	if len(r.ContentVector) == 0 {
		return fmt.Errorf("%w: missing content vector", ErrInvalidSearchRecord)
	}
	return nil
}

// ValidateScore checks that a validation score lies within [0.0, 1.0].
func ValidateScore(score float64) error {
	if score < 0.0 || score > 1.0 {
		return fmt.Errorf("%w: %v", ErrScoreOutOfRange, score)
	}
	return nil
}
