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


package rendition

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/docpipe/core"
)

// TruncationMarker is appended wherever content was cut to fit a section's
// rules. Truncation is always visible, never silent.
const TruncationMarker = "…"

// Branding fallbacks applied when the template leaves a field empty.
const (
	defaultFontFamily      = "Calibri"
	defaultPrimaryColor    = "1F4E79"
	defaultSecondaryColor  = "404040"
	defaultHeadingFontSize = 20
	defaultBodyFontSize    = 12
)

// Builder renders a template config plus a content map into a .pptx
// artifact. It is a pure function of its inputs: identical inputs produce
// identical bytes.
type Builder struct {
	allowPartial bool
	logger       *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithAllowPartial renders absent required sections as gaps instead of
// aborting. The completeness check is still logged per section.
func WithAllowPartial(allow bool) Option {
	return func(b *Builder) {
		b.allowPartial = allow
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// NewBuilder creates a rendition builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		logger: slog.Default().With("component", "rendition-builder"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MissingSections returns the keys of required sections the content map
// leaves absent, in section order.
func MissingSections(cfg *core.TemplateConfig, content core.ExtractedContent) []string {
	var missing []string
	for _, section := range cfg.SectionsInOrder() {
		if !section.Required {
			continue
		}
		value, ok := content[section.Key]
		if !ok || value.IsAbsent() || isEmptyValue(value) {
			missing = append(missing, section.Key)
		}
	}
	return missing
}

// Build produces the slide deck bytes. Required sections without content
// abort the build with a CompletenessError naming every gap, unless the
// builder allows partial output.
func (b *Builder) Build(cfg *core.TemplateConfig, content core.ExtractedContent) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil template config", ErrRenditionFailed)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenditionFailed, err)
	}

	if missing := MissingSections(cfg, content); len(missing) > 0 {
		if !b.allowPartial {
			return nil, &CompletenessError{Sections: missing}
		}
		b.logger.Warn("rendering partial deck", "missingSections", missing)
	}

	shapes := make([]shape, 0, len(cfg.Sections))
	for _, section := range cfg.SectionsInOrder() {
		value, ok := content[section.Key]
		if !ok || value.IsAbsent() {
			continue
		}
		shapes = append(shapes, shapeForSection(section, value, cfg.Branding))
	}

	deck, err := writeDeck(cfg, shapes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRenditionFailed, err)
	}

	b.logger.Debug("deck rendered", "sections", len(shapes), "bytes", len(deck))
	return deck, nil
}

// shapeForSection applies the section's content rules and produces the
// positioned shape for the slide.
func shapeForSection(section core.SectionConfig, value core.SectionValue, branding core.BrandingConfig) shape {
	s := shape{
		key:      section.Key,
		label:    section.Label,
		position: section.Position,
		branding: branding,
	}

	switch section.Type {
	case core.SectionTypeText:
		s.paragraphs = []paragraph{{text: truncateText(coerceText(value), section.Rules.MaxCharacters)}}
	case core.SectionTypeBulletList:
		for _, item := range truncateList(coerceList(value), section.Rules.MaxBullets) {
			s.paragraphs = append(s.paragraphs, paragraph{
				text:   truncateText(item, section.Rules.MaxBulletChars),
				bullet: true,
			})
		}
	case core.SectionTypeTagList:
		s.paragraphs = []paragraph{{text: joinTags(truncateList(coerceList(value), section.Rules.MaxItems))}}
	case core.SectionTypeImage:
		// Media embedding is out of scope for the deck writer; the image
		// reference is rendered as a visible placeholder.
		s.paragraphs = []paragraph{{text: "[image: " + coerceText(value) + "]"}}
	}
	return s
}

// coerceText flattens a value to a single string.
func coerceText(value core.SectionValue) string {
	if value.Kind == core.SectionValueList {
		text := ""
		for i, item := range value.Items {
			if i > 0 {
				text += "\n"
			}
			text += item
		}
		return text
	}
	return value.Text
}

// coerceList lifts a text value to a single-item list.
func coerceList(value core.SectionValue) []string {
	if value.Kind == core.SectionValueText {
		if value.Text == "" {
			return nil
		}
		return []string{value.Text}
	}
	return value.Items
}

// truncateText cuts the text to the rune bound and appends the marker.
// A zero bound means unbounded.
func truncateText(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars]) + TruncationMarker
}

// truncateList caps the list and marks the last kept item so the cut is
// visible. A zero bound means unbounded.
func truncateList(items []string, maxItems int) []string {
	if maxItems <= 0 || len(items) <= maxItems {
		return items
	}
	kept := make([]string, maxItems)
	copy(kept, items[:maxItems])
	kept[maxItems-1] += " " + TruncationMarker
	return kept
}

func joinTags(tags []string) string {
	joined := ""
	for i, tag := range tags {
		if i > 0 {
			joined += "   "
		}
		joined += tag
	}
	return joined
}

func isEmptyValue(value core.SectionValue) bool {
	switch value.Kind {
	case core.SectionValueText:
		return value.Text == ""
	case core.SectionValueList:
		return len(value.Items) == 0
	}
	return true
}
