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


package mock

import "context"

// MockChatModel is a test double for ai.ChatModel.
// Responses can be queued or computed via InferFunc.
type MockChatModel struct {
	// InferFunc is called by Infer if set. Takes precedence over Responses.
	InferFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Responses are returned in order for successive Infer calls.
	// After the queue is drained, the last response repeats.
	Responses []string

	callCount int
}

// NewMockChatModel creates a mock chat model.
// Note: Returns concrete type to allow test assertions.
func NewMockChatModel(responses ...string) *MockChatModel {
	return &MockChatModel{Responses: responses}
}

// Infer returns the next queued response or delegates to InferFunc.
// With no queue and no function, it returns an empty JSON object.
func (m *MockChatModel) Infer(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	idx := m.callCount
	m.callCount++

	if m.InferFunc != nil {
		return m.InferFunc(ctx, systemPrompt, userPrompt)
	}
	if len(m.Responses) == 0 {
		return "{}", nil
	}
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return m.Responses[idx], nil
}

// CallCount returns the number of Infer calls made.
func (m *MockChatModel) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.callCount = 0
	m.InferFunc = nil
	m.Responses = nil
}

// MockSummarizer is a test double for ai.Summarizer.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	SummarizeFunc func(ctx context.Context, title, text string) (string, error)

	callCount int
}

// NewMockSummarizer creates a mock summarizer.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns a fixed abstract unless SummarizeFunc is set.
func (m *MockSummarizer) Summarize(ctx context.Context, title, text string) (string, error) {
	m.callCount++
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, title, text)
	}
	return "Summary of " + title, nil
}

// CallCount returns the number of Summarize calls made.
func (m *MockSummarizer) CallCount() int {
	return m.callCount
}
