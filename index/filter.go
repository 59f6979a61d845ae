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
	"fmt"
	"strconv"
	"time"

	"github.com/poiesic/docpipe/core"
)

// Op is a filter clause operator.
type Op string

const (
	// OpEquals matches records whose field equals the single clause value.
	OpEquals Op = "eq"

	// OpAnyOf matches records whose field equals, or whose list field
	// contains, at least one of the clause values.
	OpAnyOf Op = "any"
)

// Clause constrains a single filterable field.
type Clause struct {
	Field  string
	Op     Op
	Values []string
}

// Filter is a conjunction of clauses over facet fields. A record matches
// when every clause matches.
type Filter struct {
	Clauses []Clause
}

// Eq builds an equality clause.
func Eq(field, value string) Clause {
	return Clause{Field: field, Op: OpEquals, Values: []string{value}}
}

// AnyOf builds a membership clause.
func AnyOf(field string, values ...string) Clause {
	return Clause{Field: field, Op: OpAnyOf, Values: values}
}

// And combines clauses into a filter.
func And(clauses ...Clause) *Filter {
	return &Filter{Clauses: clauses}
}

// Validate checks every clause against the schema's filterable fields.
func (f *Filter) Validate(schema Schema) error {
	for _, c := range f.Clauses {
		if _, ok := schema.FilterableField(c.Field); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFilterField, c.Field)
		}
		if len(c.Values) == 0 {
			return fmt.Errorf("%w: clause on %q has no values", ErrInvalidFilter, c.Field)
		}
		switch c.Op {
		case OpEquals:
			if len(c.Values) != 1 {
				return fmt.Errorf("%w: equality clause on %q needs exactly one value", ErrInvalidFilter, c.Field)
			}
		case OpAnyOf:
		default:
			return fmt.Errorf("%w: unknown operator %q", ErrInvalidFilter, c.Op)
		}
	}
	return nil
}

// Matches reports whether the record satisfies every clause.
func (f *Filter) Matches(record core.SearchRecord) bool {
	for _, c := range f.Clauses {
		if !clauseMatches(c, record) {
			return false
		}
	}
	return true
}

func clauseMatches(c Clause, record core.SearchRecord) bool {
	values := fieldValues(c.Field, record)
	for _, want := range c.Values {
		for _, have := range values {
			if have == want {
				return true
			}
		}
		if c.Op == OpEquals {
			return false
		}
	}
	return false
}

// fieldValues extracts the comparable string values of a filterable field.
// List fields contribute every element; absent fields contribute nothing.
func fieldValues(field string, record core.SearchRecord) []string {
	switch field {
	case FieldDocumentID:
		return []string{record.DocumentID.String()}
	case FieldVersionID:
		return []string{record.VersionID.String()}
	case FieldChunkIndex:
		return []string{strconv.Itoa(record.ChunkOrdinal)}
	case FieldDomain:
		return []string{record.Facets.Domain}
	case FieldIndustry:
		return []string{record.Facets.Industry}
	case FieldTechnologies:
		return record.Facets.Technologies
	case FieldCustomerName:
		return []string{record.Facets.CustomerName}
	case FieldBusinessUnit:
		return []string{record.Facets.BusinessUnit}
	case FieldSBU:
		return []string{record.Facets.SBU}
	case FieldDocumentType:
		return []string{record.Facets.DocumentType}
	case FieldCreatedDate:
		if record.Facets.CreatedDate.IsZero() {
			return nil
		}
		return []string{record.Facets.CreatedDate.UTC().Format(time.RFC3339)}
	default:
		return nil
	}
}
