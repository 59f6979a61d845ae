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


package core

import (
	"encoding/json"
	"fmt"
	"slices"
)

// SectionType identifies how a template section is rendered.
type SectionType string

const (
	SectionTypeText       SectionType = "text"
	SectionTypeBulletList SectionType = "bullet-list"
	SectionTypeTagList    SectionType = "tag-list"
	SectionTypeImage      SectionType = "image"
)

// ValidSectionType reports whether t is one of the known section types.
func ValidSectionType(t SectionType) bool {
	switch t {
	case SectionTypeText, SectionTypeBulletList, SectionTypeTagList, SectionTypeImage:
		return true
	}
	return false
}

// PositionConfig is the rectangle a section occupies on the slide, in the
// template's slide units (inches).
type PositionConfig struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ContentRules bounds the content of one section. Zero means unbounded.
type ContentRules struct {
	MaxCharacters  int `json:"maxCharacters,omitempty"`
	MinBullets     int `json:"minBullets,omitempty"`
	MaxBullets     int `json:"maxBullets,omitempty"`
	MaxBulletChars int `json:"maxBulletChars,omitempty"`
	MinItems       int `json:"minItems,omitempty"`
	MaxItems       int `json:"maxItems,omitempty"`
}

// SectionConfig describes one section of the target presentation.
type SectionConfig struct {
	Key      string         `json:"key"`
	Label    string         `json:"label"`
	Required bool           `json:"required"`
	Order    int            `json:"order"`
	Type     SectionType    `json:"type"`
	Position PositionConfig `json:"position"`
	Rules    ContentRules   `json:"contentRules"`
}

// BrandingConfig carries the colors, fonts and sizes applied across sections.
type BrandingConfig struct {
	LogoURL           string `json:"logoUrl,omitempty"`
	PrimaryColor      string `json:"primaryColor,omitempty"`
	SecondaryColor    string `json:"secondaryColor,omitempty"`
	AccentColor       string `json:"accentColor,omitempty"`
	FontFamily        string `json:"fontFamily,omitempty"`
	HeadingFontFamily string `json:"headingFontFamily,omitempty"`
	HeadingFontSize   int    `json:"headingFontSize,omitempty"`
	BodyFontSize      int    `json:"bodyFontSize,omitempty"`
	BulletFontSize    int    `json:"bulletFontSize,omitempty"`
}

// TemplateConfig describes a target presentation. It is loaded externally,
// validated once, and consumed read-only by the case-study pipeline and the
// rendition builder.
type TemplateConfig struct {
	Version         string          `json:"version"`
	AspectRatio     string          `json:"aspectRatio,omitempty"`
	SlideWidth      float64         `json:"slideWidth"`
	SlideHeight     float64         `json:"slideHeight"`
	Branding        BrandingConfig  `json:"branding"`
	Sections        []SectionConfig `json:"sections"`
	BackgroundImage string          `json:"backgroundImage,omitempty"`
	FooterText      string          `json:"footerText,omitempty"`
}

// ParseTemplateConfig decodes and validates a template configuration from
// JSON. The returned config is ready for rendering; invalid configs are
// rejected here rather than at render time.
func ParseTemplateConfig(data []byte) (*TemplateConfig, error) {
	var cfg TemplateConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplateConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the template configuration against domain rules.
//
// Validation rules:
//   - SlideWidth and SlideHeight must be positive
//   - at least one section must be defined
//   - section keys must be non-empty and unique
//   - section types must be known
//   - position rectangles must have positive width and height
func (c *TemplateConfig) Validate() error {
	if c.SlideWidth <= 0 || c.SlideHeight <= 0 {
		return fmt.Errorf("%w: slide size must be positive", ErrInvalidTemplateConfig)
	}
	if len(c.Sections) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidTemplateConfig, ErrNoSections)
	}
	seen := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if s.Key == "" {
			return fmt.Errorf("%w: section key cannot be empty", ErrInvalidTemplateConfig)
		}
		if seen[s.Key] {
			return fmt.Errorf("%w: duplicate section key %q", ErrInvalidTemplateConfig, s.Key)
		}
		seen[s.Key] = true
		if !ValidSectionType(s.Type) {
			return fmt.Errorf("%w: section %q has unknown type %q", ErrInvalidTemplateConfig, s.Key, s.Type)
		}
		if s.Position.Width <= 0 || s.Position.Height <= 0 {
			return fmt.Errorf("%w: section %q has empty position rectangle", ErrInvalidTemplateConfig, s.Key)
		}
	}
	return nil
}

// SectionsInOrder returns the sections sorted by ascending Order.
func (c *TemplateConfig) SectionsInOrder() []SectionConfig {
	sections := slices.Clone(c.Sections)
	slices.SortStableFunc(sections, func(a, b SectionConfig) int {
		return a.Order - b.Order
	})
	return sections
}

// SectionKeys returns the section keys in ascending section order.
func (c *TemplateConfig) SectionKeys() []string {
	sections := c.SectionsInOrder()
	keys := make([]string, len(sections))
	for i, s := range sections {
		keys[i] = s.Key
	}
	return keys
}

// Section returns the section with the given key, if present.
func (c *TemplateConfig) Section(key string) (SectionConfig, bool) {
	for _, s := range c.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return SectionConfig{}, false
}
