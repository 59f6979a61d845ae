package mock

import (
	"context"
	"io"
)

// MockTextExtractor is a test double for ai.TextExtractor.
type MockTextExtractor struct {
	// ExtractFunc is called by ExtractText if set.
	// If nil, the document bytes are returned as text unchanged.
	ExtractFunc func(ctx context.Context, document io.Reader, contentType string) (string, error)

	callCount int
}

// NewMockTextExtractor creates a mock extractor with pass-through behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockTextExtractor() *MockTextExtractor {
	return &MockTextExtractor{}
}

// ExtractText returns the document bytes as text, or delegates to ExtractFunc.
func (m *MockTextExtractor) ExtractText(ctx context.Context, document io.Reader, contentType string) (string, error) {
	m.callCount++

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, document, contentType)
	}

	data, err := io.ReadAll(document)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CallCount returns the number of ExtractText calls made.
func (m *MockTextExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockTextExtractor) Reset() {
	m.callCount = 0
	m.ExtractFunc = nil
}
