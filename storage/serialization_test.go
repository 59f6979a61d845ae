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
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/core"
)

func TestDocumentRoundTrip(t *testing.T) {
	doc := &core.Document{
		ID:           uuid.New(),
		Title:        "Payments Platform Case Study",
		DocumentType: "case-study",
		State:        "INDEXED",
		Indexed:      true,
		CreatedAt:    time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2025, 2, 1, 14, 0, 0, 0, time.UTC),
	}

	got, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestDocumentVersionRoundTrip(t *testing.T) {
	version := &core.DocumentVersion{
		ID:            uuid.New(),
		DocumentID:    uuid.New(),
		VersionNumber: 3,
		BlobPath:      "documents/abc/3/deck.pptx",
		FileName:      "deck.pptx",
		ContentType:   "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		ByteSize:      204800,
		CreatedAt:     time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	got, err := UnmarshalDocumentVersion(MarshalDocumentVersion(version))
	require.NoError(t, err)
	assert.Equal(t, version, got)
}

func TestValidationResultRoundTrip(t *testing.T) {
	result := &core.ValidationResult{
		ID:        uuid.New(),
		VersionID: uuid.New(),
		Issues: []core.ValidationIssue{
			{Section: "challenge", Severity: core.SeverityError, Message: "required section is missing"},
			{Section: "results", Severity: core.SeverityWarning, Message: "exceeds 3 bullets"},
		},
		Score:     0.65,
		Valid:     false,
		CreatedAt: time.Date(2025, 4, 2, 8, 45, 0, 0, time.UTC),
	}

	got, err := UnmarshalValidationResult(MarshalValidationResult(result))
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestValidationResultRoundTripNoIssues(t *testing.T) {
	result := &core.ValidationResult{
		ID:        uuid.New(),
		VersionID: uuid.New(),
		Score:     1.0,
		Valid:     true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	got, err := UnmarshalValidationResult(MarshalValidationResult(result))
	require.NoError(t, err)
	assert.Equal(t, result, got)
}

func TestUnmarshalTruncatedData(t *testing.T) {
	data := MarshalDocument(&core.Document{ID: uuid.New(), Title: "truncate me"})

	_, err := UnmarshalDocument(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
