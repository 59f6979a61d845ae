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

import "fmt"

// FieldType classifies an index field.
type FieldType string

const (
	FieldTypeString     FieldType = "string"
	FieldTypeStringList FieldType = "string-list"
	FieldTypeInt        FieldType = "int"
	FieldTypeDate       FieldType = "date"
	FieldTypeVector     FieldType = "vector"
)

// Canonical field names of the document index.
const (
	FieldID           = "id"
	FieldDocumentID   = "documentId"
	FieldVersionID    = "versionId"
	FieldChunkIndex   = "chunkIndex"
	FieldTitle        = "title"
	FieldContent      = "content"
	FieldVector       = "contentVector"
	FieldDomain       = "domain"
	FieldIndustry     = "industry"
	FieldTechnologies = "technologies"
	FieldCustomerName = "customerName"
	FieldBusinessUnit = "businessUnit"
	FieldSBU          = "sbu"
	FieldDocumentType = "documentType"
	FieldCreatedDate  = "createdDate"
)

// Field is one declared index field.
type Field struct {
	Name       string
	Type       FieldType
	Key        bool
	Searchable bool
	Filterable bool
	Facetable  bool
}

// Schema is the declarative description of the search index. Applying it is
// idempotent: repeated EnsureSchema calls converge to the same index.
type Schema struct {
	// Name is the index (or collection) name.
	Name string

	// VectorDimension is the fixed length of every content vector.
	VectorDimension int

	Fields []Field
}

// DefaultSchema returns the document chunk index schema: keyword-searchable
// title and content, filterable facet fields, and an ANN vector profile of
// the given dimension.
func DefaultSchema(name string, dimension int) Schema {
	return Schema{
		Name:            name,
		VectorDimension: dimension,
		Fields: []Field{
			{Name: FieldID, Type: FieldTypeString, Key: true},
			{Name: FieldDocumentID, Type: FieldTypeString, Filterable: true},
			{Name: FieldVersionID, Type: FieldTypeString, Filterable: true},
			{Name: FieldChunkIndex, Type: FieldTypeInt, Filterable: true},
			{Name: FieldTitle, Type: FieldTypeString, Searchable: true},
			{Name: FieldContent, Type: FieldTypeString, Searchable: true},
			{Name: FieldVector, Type: FieldTypeVector},
			{Name: FieldDomain, Type: FieldTypeString, Filterable: true, Facetable: true},
			{Name: FieldIndustry, Type: FieldTypeString, Filterable: true, Facetable: true},
			{Name: FieldTechnologies, Type: FieldTypeStringList, Filterable: true, Facetable: true},
			{Name: FieldCustomerName, Type: FieldTypeString, Filterable: true, Facetable: true},
			{Name: FieldBusinessUnit, Type: FieldTypeString, Filterable: true, Facetable: true},
			{Name: FieldSBU, Type: FieldTypeString, Filterable: true, Facetable: true},
			{Name: FieldDocumentType, Type: FieldTypeString, Filterable: true, Facetable: true},
			{Name: FieldCreatedDate, Type: FieldTypeDate, Filterable: true},
		},
	}
}

// Validate checks the schema for structural soundness.
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty index name", ErrInvalidSchema)
	}
	if s.VectorDimension <= 0 {
		return fmt.Errorf("%w: vector dimension must be positive", ErrInvalidSchema)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidSchema)
	}

	keys := 0
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field with empty name", ErrInvalidSchema)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true
		if f.Key {
			keys++
		}
	}
	if keys != 1 {
		return fmt.Errorf("%w: exactly one key field required, got %d", ErrInvalidSchema, keys)
	}
	return nil
}

// FilterableField returns the named field if it is declared filterable.
func (s Schema) FilterableField(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name && f.Filterable {
			return f, true
		}
	}
	return Field{}, false
}
