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


package ai

import (
	"context"
	"io"
	"strings"
)

// ExtractorMux routes ExtractText calls by the base MIME type, falling back
// to a default extractor when no route matches. Safe for concurrent use once
// routes are registered.
type ExtractorMux struct {
	routes   map[string]TextExtractor
	fallback TextExtractor
}

var _ TextExtractor = (*ExtractorMux)(nil)

// NewExtractorMux creates a mux with the given fallback extractor.
func NewExtractorMux(fallback TextExtractor) *ExtractorMux {
	return &ExtractorMux{
		routes:   make(map[string]TextExtractor),
		fallback: fallback,
	}
}

// Handle registers an extractor for a base MIME type, replacing any previous
// registration.
func (m *ExtractorMux) Handle(baseType string, extractor TextExtractor) {
	m.routes[strings.ToLower(baseType)] = extractor
}

// ExtractText dispatches to the extractor registered for the content type.
func (m *ExtractorMux) ExtractText(ctx context.Context, document io.Reader, contentType string) (string, error) {
	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(strings.ToLower(base))

	if extractor, ok := m.routes[base]; ok {
		return extractor.ExtractText(ctx, document, contentType)
	}
	return m.fallback.ExtractText(ctx, document, contentType)
}
