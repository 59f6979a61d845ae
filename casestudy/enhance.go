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

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/core"
)

const enhanceSystemPrompt = "You are a professional B2B copywriter specializing in technology case studies. " +
	"Enhance the provided case study content to be more professional, concise, and impactful. " +
	"Preserve all factual information. Return the enhanced content as a JSON object with the same section keys."

// Enhancer rewrites content section by section for tone and impact. Factual
// preservation is an inference-quality concern; the enhancer only enforces
// that the rewritten map covers exactly the input key set.
type Enhancer struct {
	chat   ai.ChatModel
	logger *slog.Logger
}

// NewEnhancer creates a content enhancer backed by the chat model.
func NewEnhancer(chat ai.ChatModel) (*Enhancer, error) {
	if chat == nil {
		return nil, ErrChatModelRequired
	}
	return &Enhancer{
		chat:   chat,
		logger: slog.Default().With("component", "casestudy-enhancer"),
	}, nil
}

// Enhance rewrites the content map. Responses that drop or add sections are
// rejected with ErrKeySetMismatch.
func (e *Enhancer) Enhance(ctx context.Context, content core.ExtractedContent) (core.ExtractedContent, error) {
	contentJSON, err := marshalContent(content)
	if err != nil {
		return nil, stageError(StageEnhance, err)
	}

	userPrompt := "Enhance this case study content while preserving factual accuracy:\n" + contentJSON

	response, err := e.chat.Infer(ctx, enhanceSystemPrompt, userPrompt)
	if err != nil {
		return nil, stageError(StageEnhance, err)
	}

	enhanced, err := parseContent(response, content.Keys())
	if err != nil {
		return nil, stageError(StageEnhance, err)
	}
	// Added sections are rejected by the parser; dropped sections surface as
	// absent markers where the input had content.
	for key, value := range content {
		if !value.IsAbsent() && enhanced[key].IsAbsent() {
			return nil, stageError(StageEnhance, fmt.Errorf("%w: section %q dropped", ErrKeySetMismatch, key))
		}
	}

	e.logger.Debug("content enhanced", "sections", len(enhanced))
	return enhanced, nil
}
