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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"pending to extracting", StatePending, StateExtracting, true},
		{"extracting to chunking", StateExtracting, StateChunking, true},
		{"chunking to embedding", StateChunking, StateEmbedding, true},
		{"embedding to indexing", StateEmbedding, StateIndexing, true},
		{"indexing to indexed", StateIndexing, StateIndexed, true},

		{"no stage skipping", StatePending, StateChunking, false},
		{"no backwards move", StateEmbedding, StateChunking, false},
		{"pending cannot jump to indexed", StatePending, StateIndexed, false},

		{"failed from pending", StatePending, StateFailed, true},
		{"failed from indexing", StateIndexing, StateFailed, true},
		{"failed from indexed", StateIndexed, StateFailed, true},
		{"failed is terminal", StateFailed, StateExtracting, false},
		{"failed cannot re-fail", StateFailed, StateFailed, false},

		{"purge from indexed", StateIndexed, StatePurging, true},
		{"purge from mid-pipeline", StateEmbedding, StatePurging, true},
		{"purge from failed", StateFailed, StatePurging, true},
		{"purge from purging", StatePurging, StatePurging, true},

		{"reindex restarts from indexed", StateIndexed, StatePending, true},
		{"reindex may skip pending", StateIndexed, StateExtracting, true},
		{"purged document restarts", StatePurging, StatePending, true},
		{"purging cannot resume mid-pipeline", StatePurging, StateEmbedding, false},
		{"indexed cannot resume mid-pipeline", StateIndexed, StateChunking, false},

		{"unknown state goes nowhere", State("UNKNOWN"), StateExtracting, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateTerminal(t *testing.T) {
	assert.True(t, StateFailed.Terminal())

	for _, s := range []State{
		StatePending, StateExtracting, StateChunking,
		StateEmbedding, StateIndexing, StateIndexed, StatePurging,
	} {
		assert.False(t, s.Terminal(), "%s must not be terminal", s)
	}
}

func TestFailedStage(t *testing.T) {
	err := stageError(StageEmbedding, ErrEmbeddingCountMismatch)
	stage, ok := FailedStage(err)
	assert.True(t, ok)
	assert.Equal(t, StageEmbedding, stage)

	_, ok = FailedStage(ErrEmptyText)
	assert.False(t, ok)
}
