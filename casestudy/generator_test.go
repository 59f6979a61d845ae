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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/ai/mock"
	"github.com/poiesic/docpipe/blob"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/rendition"
	"github.com/poiesic/docpipe/storage"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

func wizardTemplate() *core.TemplateConfig {
	pos := core.PositionConfig{X: 0.5, Y: 0.5, Width: 6, Height: 1.5}
	return &core.TemplateConfig{
		Version:     "v1",
		SlideWidth:  13.33,
		SlideHeight: 7.5,
		Sections: []core.SectionConfig{
			{Key: "title", Label: "Title", Required: true, Order: 1, Type: core.SectionTypeText, Position: pos},
			{Key: "customerOverview", Label: "Customer", Order: 2, Type: core.SectionTypeText, Position: pos},
			{Key: "challenges", Label: "Challenges", Required: true, Order: 3, Type: core.SectionTypeBulletList, Position: pos},
			{Key: "solution", Label: "Solution", Required: true, Order: 4, Type: core.SectionTypeText, Position: pos},
			{Key: "technologies", Label: "Technologies", Order: 5, Type: core.SectionTypeTagList, Position: pos},
			{Key: "results", Label: "Results", Required: true, Order: 6, Type: core.SectionTypeBulletList, Position: pos},
		},
	}
}

func wizardRequest() WizardRequest {
	return WizardRequest{
		Title:            "Acme Platform Modernization",
		CustomerName:     "Acme Corp",
		CustomerOverview: "Mid-size retailer",
		Challenges:       []string{"legacy monolith", "slow releases"},
		Solution:         "Replatformed onto managed Kubernetes",
		Technologies:     []string{"kubernetes", "go"},
		Results:          []string{"weekly releases", "30% cost reduction"},
	}
}

func newGeneratorEnv(t *testing.T, chat *mock.MockChatModel) (*Generator, blob.Store, storage.CatalogRepository) {
	t.Helper()

	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	catalog, _, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	generator, err := NewGenerator(chat, rendition.NewBuilder(), blobs, catalog)
	require.NoError(t, err)
	return generator, blobs, catalog
}

func TestGenerator_Generate(t *testing.T) {
	generator, blobs, catalog := newGeneratorEnv(t, mock.NewMockChatModel())
	ctx := context.Background()

	result, err := generator.Generate(ctx, wizardRequest(), wizardTemplate())
	require.NoError(t, err)

	assert.False(t, result.Enhanced)
	assert.Equal(t, "acme_platform_modernization.pptx", result.FileName)
	assert.Greater(t, result.ByteSize, int64(0))

	reader, err := blobs.Get(ctx, result.BlobPath)
	require.NoError(t, err)
	defer reader.Close()
	deck, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Greater(t, len(deck), 4)
	assert.Equal(t, []byte("PK"), deck[:2], "artifact must be a zip archive")
	assert.Equal(t, result.ByteSize, int64(len(deck)))

	doc, err := catalog.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Platform Modernization", doc.Title)
	assert.Equal(t, CaseStudyDocumentType, doc.DocumentType)

	version, err := catalog.GetVersion(ctx, result.VersionID)
	require.NoError(t, err)
	assert.Equal(t, 1, version.VersionNumber)
	assert.Equal(t, PptxContentType, version.ContentType)
	assert.Equal(t, result.BlobPath, version.BlobPath)
}

func TestGenerator_Generate_WithEnhancement(t *testing.T) {
	chat := mock.NewMockChatModel(
		`{"title":"Acme Platform Modernization","customerOverview":"A mid-size retailer",` +
			`"challenges":["an aging monolith","slow release cadence"],` +
			`"solution":"Replatformed onto managed Kubernetes","technologies":["kubernetes","go"],` +
			`"results":["weekly releases","30% lower run cost"]}`)
	generator, _, _ := newGeneratorEnv(t, chat)

	req := wizardRequest()
	req.EnhanceWithAI = true
	result, err := generator.Generate(context.Background(), req, wizardTemplate())
	require.NoError(t, err)

	assert.True(t, result.Enhanced)
	assert.Equal(t, 1, chat.CallCount())
}

func TestGenerator_Generate_EnhancementFailureFallsBack(t *testing.T) {
	chat := mock.NewMockChatModel()
	chat.InferFunc = func(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
		return "", errors.New("model down")
	}
	generator, _, catalog := newGeneratorEnv(t, chat)

	req := wizardRequest()
	req.EnhanceWithAI = true
	result, err := generator.Generate(context.Background(), req, wizardTemplate())
	require.NoError(t, err, "enhancement failure must not abort generation")
	assert.False(t, result.Enhanced)

	_, err = catalog.GetDocument(context.Background(), result.DocumentID)
	assert.NoError(t, err)
}

func TestGenerator_Generate_Validation(t *testing.T) {
	generator, _, _ := newGeneratorEnv(t, mock.NewMockChatModel())
	ctx := context.Background()

	_, err := generator.Generate(ctx, WizardRequest{}, wizardTemplate())
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = generator.Generate(ctx, wizardRequest(), nil)
	assert.ErrorIs(t, err, ErrTemplateRequired)

	// A required section the wizard left empty fails the rendition.
	req := wizardRequest()
	req.Results = nil
	_, err = generator.Generate(ctx, req, wizardTemplate())
	assert.ErrorIs(t, err, rendition.ErrIncompleteContent)
}
