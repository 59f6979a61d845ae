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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/poiesic/docpipe/core"
)

func testRecord() core.SearchRecord {
	versionID := uuid.New()
	return core.SearchRecord{
		ID:           core.NewRecordID(versionID, 0),
		DocumentID:   uuid.New(),
		VersionID:    versionID,
		ChunkOrdinal: 0,
		Content:      "content",
		Facets: core.Facets{
			Domain:       "cloud",
			Industry:     "finance",
			BusinessUnit: "emea",
			Technologies: []string{"kubernetes", "kafka"},
			DocumentType: "case-study",
		},
	}
}

func TestFilterMatches(t *testing.T) {
	record := testRecord()

	tests := []struct {
		name   string
		filter *Filter
		want   bool
	}{
		{"empty filter matches", And(), true},
		{"equality hit", And(Eq(FieldDomain, "cloud")), true},
		{"equality miss", And(Eq(FieldDomain, "data")), false},
		{"list membership hit", And(AnyOf(FieldTechnologies, "kafka", "spark")), true},
		{"list membership miss", And(AnyOf(FieldTechnologies, "spark")), false},
		{"any-of scalar field", And(AnyOf(FieldIndustry, "retail", "finance")), true},
		{"conjunction all hold", And(Eq(FieldDomain, "cloud"), Eq(FieldIndustry, "finance")), true},
		{"conjunction one fails", And(Eq(FieldDomain, "cloud"), Eq(FieldIndustry, "retail")), false},
		{"document id", And(Eq(FieldDocumentID, record.DocumentID.String())), true},
		{"unknown field never matches", And(Eq("bogus", "x")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(record))
		})
	}
}

func TestFilterValidate(t *testing.T) {
	schema := DefaultSchema("documents", 4)

	assert.NoError(t, And(Eq(FieldDomain, "cloud")).Validate(schema))
	assert.ErrorIs(t, And(Eq("bogus", "x")).Validate(schema), ErrUnknownFilterField)
	assert.ErrorIs(t, And(Clause{Field: FieldDomain, Op: OpEquals}).Validate(schema), ErrInvalidFilter)
	assert.ErrorIs(t, And(Clause{Field: FieldDomain, Op: OpEquals, Values: []string{"a", "b"}}).Validate(schema), ErrInvalidFilter)
	assert.ErrorIs(t, And(Clause{Field: FieldDomain, Op: "between", Values: []string{"a"}}).Validate(schema), ErrInvalidFilter)
}
