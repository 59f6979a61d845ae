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


// Package plaintext provides an ai.TextExtractor for plain-text content
// types. Binary formats (PDF, Office documents) belong to a hosted document
// intelligence service; this extractor handles the uploads that are already
// text.
package plaintext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/docpipe/ai"
)

// ErrUnsupportedContentType indicates the extractor cannot handle the format.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// ErrInvalidEncoding indicates the document is not valid UTF-8.
var ErrInvalidEncoding = errors.New("document is not valid UTF-8")

var supportedTypes = map[string]bool{
	"text/plain":       true,
	"text/markdown":    true,
	"text/csv":         true,
	"application/json": true,
}

// Extractor implements ai.TextExtractor for plain-text content types.
type Extractor struct{}

// NewExtractor creates a plain-text extractor.
//
// Returns ai.TextExtractor interface to enforce abstraction.
func NewExtractor() ai.TextExtractor {
	return &Extractor{}
}

// ExtractText reads the document and returns its text with control
// characters scrubbed. Content types outside the supported set and invalid
// UTF-8 input are rejected.
func (e *Extractor) ExtractText(ctx context.Context, document io.Reader, contentType string) (string, error) {
	// Parameters like charset are irrelevant here
	base := contentType
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(strings.ToLower(base))

	if !supportedTypes[base] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}

	data, err := io.ReadAll(document)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}

	return scrubControls(string(data)), nil
}

// scrubControls drops control characters other than newline and tab.
func scrubControls(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
