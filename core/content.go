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
	"time"

	"github.com/google/uuid"
)

// SectionValueKind discriminates the shape of a section value.
type SectionValueKind int

const (
	// SectionValueAbsent marks a section that was not found in the source.
	// Absent sections are carried explicitly, never dropped from the map.
	SectionValueAbsent SectionValueKind = iota
	// SectionValueText is a single text paragraph.
	SectionValueText
	// SectionValueList is an ordered sequence of strings (bullets or tags).
	SectionValueList
)

// SectionValue is the content of one template section: a text paragraph, an
// ordered list of strings, or an explicit absent marker.
type SectionValue struct {
	Kind  SectionValueKind
	Text  string
	Items []string
}

// AbsentValue returns the explicit marker for a missing section.
func AbsentValue() SectionValue {
	return SectionValue{Kind: SectionValueAbsent}
}

// TextValue builds a text section value.
func TextValue(text string) SectionValue {
	return SectionValue{Kind: SectionValueText, Text: text}
}

// ListValue builds a list section value.
func ListValue(items ...string) SectionValue {
	return SectionValue{Kind: SectionValueList, Items: items}
}

// IsAbsent reports whether the value is the explicit absent marker.
func (v SectionValue) IsAbsent() bool {
	return v.Kind == SectionValueAbsent
}

// ExtractedContent maps template section keys to values extracted from a
// case-study document. Every requested key is present; sections not found in
// the source map to the absent marker.
type ExtractedContent map[string]SectionValue

// Keys returns the section keys present in the content map.
func (c ExtractedContent) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationIssue is one finding against a template section.
type ValidationIssue struct {
	Section  string
	Severity Severity
	Message  string
}

// ValidationResult is the outcome of validating extracted case-study content
// against a template's rules. Results are append-only: re-running validation
// creates a new result, the latest per version wins for display.
type ValidationResult struct {
	ID        uuid.UUID
	VersionID uuid.UUID
	Issues    []ValidationIssue
	Score     float64
	Valid     bool
	CreatedAt time.Time
}
