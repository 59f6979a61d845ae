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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/ai/mock"
	"github.com/poiesic/docpipe/core"
)

func testSections() []core.SectionConfig {
	pos := core.PositionConfig{X: 0.5, Y: 0.5, Width: 4, Height: 2}
	return []core.SectionConfig{
		{Key: "title", Label: "Title", Required: true, Order: 1, Type: core.SectionTypeText, Position: pos},
		{Key: "challenge", Label: "Challenge", Order: 2, Type: core.SectionTypeBulletList, Position: pos},
		{Key: "solution", Label: "Solution", Order: 3, Type: core.SectionTypeText, Position: pos},
	}
}

func TestExtractor_Extract(t *testing.T) {
	keys := []string{"title", "challenge", "solution"}

	t.Run("structured response", func(t *testing.T) {
		chat := mock.NewMockChatModel(`{"title":"Acme","challenge":["legacy stack"],"solution":null}`)
		extractor, err := NewExtractor(chat)
		require.NoError(t, err)

		content, err := extractor.Extract(context.Background(), "source text", keys)
		require.NoError(t, err)
		assert.Equal(t, "Acme", content["title"].Text)
		assert.Equal(t, []string{"legacy stack"}, content["challenge"].Items)
		assert.True(t, content["solution"].IsAbsent())
	})

	t.Run("prompt carries keys and text", func(t *testing.T) {
		chat := mock.NewMockChatModel()
		chat.InferFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			assert.Contains(t, userPrompt, "title, challenge, solution")
			assert.Contains(t, userPrompt, "the source document")
			return `{}`, nil
		}
		extractor, err := NewExtractor(chat)
		require.NoError(t, err)

		_, err = extractor.Extract(context.Background(), "the source document", keys)
		require.NoError(t, err)
	})

	t.Run("stray key is a parse failure", func(t *testing.T) {
		chat := mock.NewMockChatModel(`{"title":"Acme","conclusion":"made up"}`)
		extractor, err := NewExtractor(chat)
		require.NoError(t, err)

		_, err = extractor.Extract(context.Background(), "text", keys)
		assert.ErrorIs(t, err, ErrContentParse)
		stage, ok := FailedStage(err)
		require.True(t, ok)
		assert.Equal(t, StageExtract, stage)
	})

	t.Run("inference error carries stage", func(t *testing.T) {
		serviceErr := errors.New("model unavailable")
		chat := mock.NewMockChatModel()
		chat.InferFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
			return "", serviceErr
		}
		extractor, err := NewExtractor(chat)
		require.NoError(t, err)

		_, err = extractor.Extract(context.Background(), "text", keys)
		assert.ErrorIs(t, err, serviceErr)
		stage, _ := FailedStage(err)
		assert.Equal(t, StageExtract, stage)
	})
}

func TestValidator_Validate(t *testing.T) {
	content := core.ExtractedContent{
		"title":     core.TextValue("Acme"),
		"challenge": core.ListValue("legacy stack"),
		"solution":  core.AbsentValue(),
	}

	t.Run("issues and score parsed", func(t *testing.T) {
		chat := mock.NewMockChatModel(
			`{"issues":[{"section":"solution","severity":"ERROR","message":"missing"},` +
				`{"section":"challenge","severity":"WARNING","message":"thin"}],"overallScore":0.45}`)
		validator, err := NewValidator(chat)
		require.NoError(t, err)

		issues, score, err := validator.Validate(context.Background(), content, testSections())
		require.NoError(t, err)
		assert.InDelta(t, 0.45, score, 1e-9)
		require.Len(t, issues, 2)
		assert.Equal(t, core.SeverityError, issues[0].Severity)
		assert.Equal(t, "solution", issues[0].Section)
		assert.Equal(t, core.SeverityWarning, issues[1].Severity)
	})

	t.Run("score above one rejected as parse failure", func(t *testing.T) {
		chat := mock.NewMockChatModel(`{"issues":[],"overallScore":1.4}`)
		validator, err := NewValidator(chat)
		require.NoError(t, err)

		_, _, err = validator.Validate(context.Background(), content, testSections())
		assert.ErrorIs(t, err, ErrContentParse)
		assert.ErrorIs(t, err, core.ErrScoreOutOfRange)
	})

	t.Run("issue against unknown section rejected", func(t *testing.T) {
		chat := mock.NewMockChatModel(
			`{"issues":[{"section":"budget","severity":"ERROR","message":"x"}],"overallScore":0.9}`)
		validator, err := NewValidator(chat)
		require.NoError(t, err)

		_, _, err = validator.Validate(context.Background(), content, testSections())
		assert.ErrorIs(t, err, core.ErrUnknownSection)
	})

	t.Run("unknown severity rejected", func(t *testing.T) {
		chat := mock.NewMockChatModel(
			`{"issues":[{"section":"title","severity":"FATAL","message":"x"}],"overallScore":0.9}`)
		validator, err := NewValidator(chat)
		require.NoError(t, err)

		_, _, err = validator.Validate(context.Background(), content, testSections())
		assert.ErrorIs(t, err, ErrContentParse)
		stage, _ := FailedStage(err)
		assert.Equal(t, StageValidate, stage)
	})
}

func TestEnhancer_Enhance(t *testing.T) {
	content := core.ExtractedContent{
		"title":   core.TextValue("X"),
		"results": core.ListValue("a", "b"),
	}

	t.Run("same key set accepted", func(t *testing.T) {
		chat := mock.NewMockChatModel(`{"title":"X, improved","results":["a, sharper","b, crisper"]}`)
		enhancer, err := NewEnhancer(chat)
		require.NoError(t, err)

		enhanced, err := enhancer.Enhance(context.Background(), content)
		require.NoError(t, err)
		require.Len(t, enhanced, 2)
		assert.Equal(t, "X, improved", enhanced["title"].Text)
		assert.Equal(t, []string{"a, sharper", "b, crisper"}, enhanced["results"].Items)
	})

	t.Run("dropped section rejected", func(t *testing.T) {
		chat := mock.NewMockChatModel(`{"title":"X, improved"}`)
		enhancer, err := NewEnhancer(chat)
		require.NoError(t, err)

		_, err = enhancer.Enhance(context.Background(), content)
		assert.ErrorIs(t, err, ErrKeySetMismatch)
		stage, _ := FailedStage(err)
		assert.Equal(t, StageEnhance, stage)
	})

	t.Run("added section rejected", func(t *testing.T) {
		chat := mock.NewMockChatModel(`{"title":"X","results":["a","b"],"verdict":"great"}`)
		enhancer, err := NewEnhancer(chat)
		require.NoError(t, err)

		_, err = enhancer.Enhance(context.Background(), content)
		assert.ErrorIs(t, err, ErrContentParse)
	})
}
