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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/core"
)

const validateSystemPrompt = "You are a document quality validator for business case study presentations. " +
	"Analyze the extracted content against the template rules and return a JSON object with: " +
	"'issues' (array of objects with 'section', 'severity' (ERROR/WARNING), 'message'), " +
	"and 'overallScore' (0.0 to 1.0 where 1.0 is perfect)."

// Validator scores extracted content against a template's content rules.
// Scoring comes from the model; the validator only enforces the response
// contract: score in [0, 1] and issues referencing known section keys.
type Validator struct {
	chat   ai.ChatModel
	logger *slog.Logger
}

// NewValidator creates a content validator backed by the chat model.
func NewValidator(chat ai.ChatModel) (*Validator, error) {
	if chat == nil {
		return nil, ErrChatModelRequired
	}
	return &Validator{
		chat:   chat,
		logger: slog.Default().With("component", "casestudy-validator"),
	}, nil
}

// validationResponse is the wire shape of the model's validation verdict.
type validationResponse struct {
	Issues []struct {
		Section  string `json:"section"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
	} `json:"issues"`
	OverallScore float64 `json:"overallScore"`
}

// Validate submits the content and serialized section rules and returns the
// model's issues and overall score.
func (v *Validator) Validate(ctx context.Context, content core.ExtractedContent, sections []core.SectionConfig) ([]core.ValidationIssue, float64, error) {
	if len(sections) == 0 {
		return nil, 0, stageError(StageValidate, ErrTemplateRequired)
	}

	contentJSON, err := marshalContent(content)
	if err != nil {
		return nil, 0, stageError(StageValidate, err)
	}
	rulesJSON, err := json.Marshal(sections)
	if err != nil {
		return nil, 0, stageError(StageValidate, fmt.Errorf("%w: %w", ErrContentParse, err))
	}

	userPrompt := fmt.Sprintf(
		"Validate this case study content against the template rules.\n\nContent:\n%s\n\nRules:\n%s",
		contentJSON, rulesJSON)

	response, err := v.chat.Infer(ctx, validateSystemPrompt, userPrompt)
	if err != nil {
		return nil, 0, stageError(StageValidate, err)
	}

	var parsed validationResponse
	if err := json.Unmarshal([]byte(cleanResponse(response)), &parsed); err != nil {
		return nil, 0, stageError(StageValidate, fmt.Errorf("%w: %w", ErrContentParse, err))
	}

	if err := core.ValidateScore(parsed.OverallScore); err != nil {
		return nil, 0, stageError(StageValidate, fmt.Errorf("%w: %w", ErrContentParse, err))
	}

	known := make(map[string]bool, len(sections))
	for _, s := range sections {
		known[s.Key] = true
	}

	issues := make([]core.ValidationIssue, 0, len(parsed.Issues))
	for _, issue := range parsed.Issues {
		if !known[issue.Section] {
			return nil, 0, stageError(StageValidate,
				fmt.Errorf("%w: %w: %q", ErrContentParse, core.ErrUnknownSection, issue.Section))
		}
		severity, err := parseSeverity(issue.Severity)
		if err != nil {
			return nil, 0, stageError(StageValidate, err)
		}
		issues = append(issues, core.ValidationIssue{
			Section:  issue.Section,
			Severity: severity,
			Message:  issue.Message,
		})
	}

	v.logger.Debug("content validated", "score", parsed.OverallScore, "issues", len(issues))
	return issues, parsed.OverallScore, nil
}

// parseSeverity maps the model's ERROR/WARNING labels to domain severities.
func parseSeverity(s string) (core.Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return core.SeverityError, nil
	case "warning":
		return core.SeverityWarning, nil
	}
	return "", fmt.Errorf("%w: unknown severity %q", ErrContentParse, s)
}
