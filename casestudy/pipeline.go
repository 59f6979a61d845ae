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
	"log/slog"

	"github.com/google/uuid"

	"github.com/poiesic/docpipe/ai"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
)

// DefaultAcceptanceThreshold is the minimum validation score at which
// content is accepted without enhancement.
const DefaultAcceptanceThreshold = 0.7

// Pipeline chains the three content stages: extract the section map from raw
// text, score it against the template rules, and rewrite it when the score
// falls below the acceptance threshold. Every validation run appends a new
// result row; the latest per version wins for display.
type Pipeline struct {
	extractor *Extractor
	validator *Validator
	enhancer  *Enhancer
	results   storage.ValidationResultRepository
	threshold float64
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithAcceptanceThreshold sets the score below which content is enhanced.
// Default is DefaultAcceptanceThreshold.
func WithAcceptanceThreshold(threshold float64) PipelineOption {
	return func(p *Pipeline) error {
		if threshold < 0.0 || threshold > 1.0 {
			return ErrInvalidThreshold
		}
		p.threshold = threshold
		return nil
	}
}

// WithPipelineLogger sets a custom logger.
// Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a content pipeline over one chat model and a result
// repository for audit persistence.
func NewPipeline(chat ai.ChatModel, results storage.ValidationResultRepository, opts ...PipelineOption) (*Pipeline, error) {
	if chat == nil {
		return nil, ErrChatModelRequired
	}
	if results == nil {
		return nil, ErrResultStoreRequired
	}

	extractor, err := NewExtractor(chat)
	if err != nil {
		return nil, err
	}
	validator, err := NewValidator(chat)
	if err != nil {
		return nil, err
	}
	enhancer, err := NewEnhancer(chat)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		extractor: extractor,
		validator: validator,
		enhancer:  enhancer,
		results:   results,
		threshold: DefaultAcceptanceThreshold,
		logger:    slog.Default().With("component", "casestudy-pipeline"),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			return nil, optErr
		}
	}

	return p, nil
}

// Report is the outcome of one pipeline run.
type Report struct {
	// Content is the section map extracted from the source text.
	Content core.ExtractedContent
	// Enhanced is the rewritten map, nil when the score met the threshold.
	Enhanced core.ExtractedContent
	// Result is the persisted validation verdict.
	Result *core.ValidationResult
}

// Run executes extract, validate, and conditionally enhance for the text of
// one document version. The validation verdict is persisted before the
// enhancement decision, so a failed enhancement still leaves an audit row.
func (p *Pipeline) Run(ctx context.Context, versionID uuid.UUID, text string, template *core.TemplateConfig) (*Report, error) {
	if template == nil || len(template.Sections) == 0 {
		return nil, ErrTemplateRequired
	}

	logger := p.logger.With("versionID", versionID)
	sections := template.SectionsInOrder()

	content, err := p.extractor.Extract(ctx, text, template.SectionKeys())
	if err != nil {
		return nil, err
	}

	issues, score, err := p.validator.Validate(ctx, content, sections)
	if err != nil {
		return nil, err
	}

	result := &core.ValidationResult{
		VersionID: versionID,
		Issues:    issues,
		Score:     score,
		Valid:     score >= p.threshold,
	}
	result, err = p.results.AddValidationResult(ctx, result)
	if err != nil {
		return nil, stageError(StageValidate, err)
	}
	logger.Info("validation recorded", "score", score, "valid", result.Valid, "issues", len(issues))

	report := &Report{Content: content, Result: result}
	if result.Valid {
		return report, nil
	}

	logger.Info("score below threshold, enhancing", "threshold", p.threshold)
	enhanced, err := p.enhancer.Enhance(ctx, content)
	if err != nil {
		return nil, err
	}
	report.Enhanced = enhanced
	return report, nil
}

// EnhanceContent rewrites a content map on explicit request, outside the
// threshold trigger.
func (p *Pipeline) EnhanceContent(ctx context.Context, content core.ExtractedContent) (core.ExtractedContent, error) {
	return p.enhancer.Enhance(ctx, content)
}

// LatestResult returns the most recent persisted verdict for a version.
func (p *Pipeline) LatestResult(ctx context.Context, versionID uuid.UUID) (*core.ValidationResult, error) {
	return p.results.LatestValidationResult(ctx, versionID)
}
