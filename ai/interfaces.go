package ai

import (
	"context"
	"io"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TextExtractor derives plain text from a stored document.
// Implementations must be thread-safe for concurrent use.
type TextExtractor interface {
	// ExtractText reads the document and returns its plain text.
	// Returns an error for unsupported content types or corrupt input.
	ExtractText(ctx context.Context, document io.Reader, contentType string) (string, error)
}

// ChatModel performs a single structured-inference round trip: one system
// prompt, one user prompt, one text response.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Infer sends the prompt pair to the model and returns the raw response
	// text. Callers own parsing and schema validation of the response.
	Infer(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Summarizer produces a concise abstract of a document's extracted text.
type Summarizer interface {
	// Summarize returns a summary of the text for the titled document.
	Summarize(ctx context.Context, title, text string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages the embedding and
// inference services, ensuring they share configuration and resources.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ChatModel returns the structured-inference service.
	// The returned ChatModel is safe for concurrent use.
	ChatModel() ChatModel

	// Summarizer returns the document summarization service.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
