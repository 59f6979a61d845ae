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


package storage

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/core"
)

// MarshalUUID serializes a UUID to bytes.
func MarshalUUID(id uuid.UUID) []byte {
	buf := make([]byte, core.UUIDMUS.Size(id))
	core.UUIDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalUUID deserializes a UUID from bytes.
func UnmarshalUUID(data []byte) (uuid.UUID, error) {
	id, _, err := core.UUIDMUS.Unmarshal(data)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalDocumentVersion serializes a DocumentVersion to bytes.
func MarshalDocumentVersion(version *core.DocumentVersion) []byte {
	buf := make([]byte, core.DocumentVersionMUS.Size(*version))
	core.DocumentVersionMUS.Marshal(*version, buf)
	return buf
}

// UnmarshalDocumentVersion deserializes a DocumentVersion from bytes.
func UnmarshalDocumentVersion(data []byte) (*core.DocumentVersion, error) {
	version, _, err := core.DocumentVersionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &version, nil
}

// MarshalValidationResult serializes a ValidationResult to bytes.
func MarshalValidationResult(result *core.ValidationResult) []byte {
	buf := make([]byte, core.ValidationResultMUS.Size(*result))
	core.ValidationResultMUS.Marshal(*result, buf)
	return buf
}

// UnmarshalValidationResult deserializes a ValidationResult from bytes.
func UnmarshalValidationResult(data []byte) (*core.ValidationResult, error) {
	result, _, err := core.ValidationResultMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &result, nil
}
