// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// ai.Summarizer, ai.TextExtractor, and ai.AIProvider for use in unit tests.
// The mocks allow tests to run without external AI services and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	vectors, err := provider.Embedder().EmbedTexts(ctx, texts)
//
//	// Queued chat responses
//	chat := mock.NewMockChatModel(`{"title": "X"}`)
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("service down")
//	}
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockChatModel: Replays queued responses in order
//   - MockSummarizer: Returns a fixed abstract naming the title
//   - MockTextExtractor: Passes document bytes through as text
package mock
