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


package ingestion

import (
	"strings"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/core"
)

const (
	// DefaultChunkSize is the chunk window in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is how many trailing characters of a chunk are
	// repeated at the start of the next one.
	DefaultChunkOverlap = 100
)

// Chunker splits extracted text into fixed-size overlapping windows.
// Chunking is deterministic: the same text always yields the same chunk
// sequence with the same ordinals.
type Chunker struct {
	size    int
	overlap int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithChunkSize sets the chunk window in characters.
// Default is DefaultChunkSize.
func WithChunkSize(size int) ChunkerOption {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithChunkOverlap sets the overlap between consecutive chunks.
// Default is DefaultChunkOverlap.
func WithChunkOverlap(overlap int) ChunkerOption {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// NewChunker creates a chunker. The overlap must be non-negative and
// smaller than the size.
func NewChunker(opts ...ChunkerOption) (*Chunker, error) {
	c := &Chunker{
		size:    DefaultChunkSize,
		overlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 || c.overlap < 0 || c.overlap >= c.size {
		return nil, ErrInvalidChunkConfig
	}
	return c, nil
}

// Chunk splits text into windows with contiguous ordinals starting at 0.
// Windows are measured in runes so multi-byte characters never split.
// Zero-length input (after trimming whitespace) is an error, not an empty
// chunk set.
func (c *Chunker) Chunk(versionID uuid.UUID, text string) ([]core.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	runes := []rune(text)
	step := c.size - c.overlap

	var chunks []core.Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, core.Chunk{
			VersionID: versionID,
			Ordinal:   len(chunks),
			Text:      string(runes[start:end]),
		})

		if end == len(runes) {
			break
		}
	}
	return chunks, nil
}
