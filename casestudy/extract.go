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


package casestudy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/core"
)

// Prompt contract version carried by all three stages. Bump when a prompt
// changes shape, so stored validation results can be traced to the prompt
// that produced them.
const PromptVersion = "v1"

const extractSystemPrompt = "You are an expert at analyzing case study presentations and extracting structured content. " +
	"Extract the content into sections and return valid JSON with the section keys provided. " +
	"For bullet list sections, return an array of strings. For text sections, return a single string. " +
	"If a section is not found in the text, use null for its value."

// Extractor turns raw case-study text into a structured content map through
// a single inference round trip.
type Extractor struct {
	chat   ai.ChatModel
	logger *slog.Logger
}

// NewExtractor creates a content extractor backed by the chat model.
func NewExtractor(chat ai.ChatModel) (*Extractor, error) {
	if chat == nil {
		return nil, ErrChatModelRequired
	}
	return &Extractor{
		chat:   chat,
		logger: slog.Default().With("component", "casestudy-extractor"),
	}, nil
}

// Extract asks the model to structure the text into the given section keys.
// The response must be strict JSON over exactly that key set; sections the
// model could not find come back as explicit absent markers.
func (e *Extractor) Extract(ctx context.Context, text string, keys []string) (core.ExtractedContent, error) {
	if len(keys) == 0 {
		return nil, stageError(StageExtract, ErrTemplateRequired)
	}

	userPrompt := fmt.Sprintf(
		"Extract structured content from this case study text into the following sections: %s\n\nText:\n%s",
		strings.Join(keys, ", "), text)

	response, err := e.chat.Infer(ctx, extractSystemPrompt, userPrompt)
	if err != nil {
		return nil, stageError(StageExtract, err)
	}

	content, err := parseContent(response, keys)
	if err != nil {
		e.logger.Warn("extraction response rejected", "err", err)
		return nil, stageError(StageExtract, err)
	}

	e.logger.Debug("content extracted", "sections", len(content))
	return content, nil
}
