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

// State is the position of a document version in the indexing pipeline.
type State string

const (
	StatePending    State = "PENDING"
	StateExtracting State = "EXTRACTING"
	StateChunking   State = "CHUNKING"
	StateEmbedding  State = "EMBEDDING"
	StateIndexing   State = "INDEXING"
	StateIndexed    State = "INDEXED"
	StateFailed     State = "FAILED"
	StatePurging    State = "PURGING"
)

// pipelineOrder is the strict stage sequence; no transition skips a state.
var pipelineOrder = []State{
	StatePending,
	StateExtracting,
	StateChunking,
	StateEmbedding,
	StateIndexing,
	StateIndexed,
}

// Terminal reports whether no further pipeline transition leaves the state.
func (s State) Terminal() bool {
	return s == StateFailed
}

// CanTransition reports whether the pipeline may move from one state to the
// next. Forward moves go one stage at a time; FAILED is reachable from any
// non-terminal state; PURGING is reachable from anywhere, including FAILED,
// since purge must always be able to run.
func CanTransition(from, to State) bool {
	if to == StatePurging {
		return true
	}
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	if from == StatePurging || from == StateIndexed {
		// A purge or re-index restarts the pipeline from the top.
		return to == StatePending || to == StateExtracting
	}
	for i, s := range pipelineOrder {
		if s == from {
			return i+1 < len(pipelineOrder) && pipelineOrder[i+1] == to
		}
	}
	return false
}

// StatusFunc receives state transitions as the pipeline runs. Callbacks are
// invoked synchronously from the pipeline goroutine.
type StatusFunc func(state State)
