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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_Defaults(t *testing.T) {
	chunker, err := NewChunker()
	require.NoError(t, err)

	versionID := uuid.New()
	text := strings.Repeat("a", 2500)

	chunks, err := chunker.Chunk(versionID, text)
	require.NoError(t, err)

	// Windows of 1000 stepping by 900: [0,1000) [900,1900) [1800,2500)
	require.Len(t, chunks, 3)
	assert.Equal(t, 1000, chunks[0].Length())
	assert.Equal(t, 1000, chunks[1].Length())
	assert.Equal(t, 700, chunks[2].Length())
}

func TestChunker_OrdinalsAreContiguous(t *testing.T) {
	chunker, err := NewChunker(WithChunkSize(10), WithChunkOverlap(2))
	require.NoError(t, err)

	versionID := uuid.New()
	chunks, err := chunker.Chunk(versionID, strings.Repeat("x", 50))
	require.NoError(t, err)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, versionID, chunk.VersionID)
	}
}

func TestChunker_Deterministic(t *testing.T) {
	chunker, err := NewChunker(WithChunkSize(20), WithChunkOverlap(5))
	require.NoError(t, err)

	versionID := uuid.New()
	text := "The quick brown fox jumps over the lazy dog, repeatedly and with enthusiasm."

	first, err := chunker.Chunk(versionID, text)
	require.NoError(t, err)
	second, err := chunker.Chunk(versionID, text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestChunker_OverlapRepeatsTail(t *testing.T) {
	chunker, err := NewChunker(WithChunkSize(10), WithChunkOverlap(4))
	require.NoError(t, err)

	chunks, err := chunker.Chunk(uuid.New(), "abcdefghijklmnop")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "ghijklmnop", chunks[1].Text)
}

func TestChunker_ShortTextSingleChunk(t *testing.T) {
	chunker, err := NewChunker()
	require.NoError(t, err)

	chunks, err := chunker.Chunk(uuid.New(), "short")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0].Text)
}

func TestChunker_MultiByteSafe(t *testing.T) {
	chunker, err := NewChunker(WithChunkSize(4), WithChunkOverlap(1))
	require.NoError(t, err)

	chunks, err := chunker.Chunk(uuid.New(), "héllö wörld")
	require.NoError(t, err)

	for _, chunk := range chunks {
		assert.True(t, strings.ToValidUTF8(chunk.Text, "") == chunk.Text, "chunk split a multi-byte rune")
	}
}

func TestChunker_EmptyTextFails(t *testing.T) {
	chunker, err := NewChunker()
	require.NoError(t, err)

	_, err = chunker.Chunk(uuid.New(), "")
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = chunker.Chunk(uuid.New(), "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNewChunker_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []ChunkerOption
	}{
		{"zero size", []ChunkerOption{WithChunkSize(0)}},
		{"negative overlap", []ChunkerOption{WithChunkOverlap(-1)}},
		{"overlap equals size", []ChunkerOption{WithChunkSize(100), WithChunkOverlap(100)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.opts...)
			assert.ErrorIs(t, err, ErrInvalidChunkConfig)
		})
	}
}
