package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docpipe/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxSummaryInputChars caps the text sent for summarization. Longer documents
// are truncated with an explicit notice appended to the prompt.
const maxSummaryInputChars = 100_000

const summarySystemPrompt = "You are an AI assistant that creates concise, professional summaries " +
	"of business documents. Focus on key points, technologies used, client industry, " +
	"challenges, solutions, and outcomes."

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client llms.Model
	logger *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client: client,
		logger: slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize returns a summary of the text for the titled document.
func (s *Summarizer) Summarize(ctx context.Context, title, text string) (string, error) {
	s.logger.Debug("summarizing document", "title", title, "length", len(text))

	if len(text) > maxSummaryInputChars {
		s.logger.Warn("truncating summary input", "title", title,
			"length", len(text), "max", maxSummaryInputChars)
		text = text[:maxSummaryInputChars] +
			fmt.Sprintf("\n\n[Note: Document was truncated due to length. Summary is based on the first %d characters.]",
				maxSummaryInputChars)
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(summarySystemPrompt)},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(fmt.Sprintf("Summarize the following document titled '%s':\n\n%s", title, text)),
			},
		},
	}

	response, err := s.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.3), llms.WithMaxTokens(1000))
	if err != nil {
		s.logger.Error("failed to summarize document", "title", title, "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		return "", ErrNoChoices
	}

	return response.Choices[0].Content, nil
}
