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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/ai/mock"
	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
	badgerstore "github.com/poiesic/docpipe/storage/badger"
)

func testTemplate() *core.TemplateConfig {
	return &core.TemplateConfig{
		Version:     "v1",
		SlideWidth:  13.33,
		SlideHeight: 7.5,
		Sections:    testSections(),
	}
}

func newResultStore(t *testing.T) storage.ValidationResultRepository {
	t.Helper()
	_, results, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return results
}

func TestPipeline_Run_AcceptedAboveThreshold(t *testing.T) {
	chat := mock.NewMockChatModel(
		`{"title":"Acme Cloud Migration","challenge":["legacy stack"],"solution":"moved to managed services"}`,
		`{"issues":[],"overallScore":0.92}`,
	)
	pipeline, err := NewPipeline(chat, newResultStore(t))
	require.NoError(t, err)

	versionID := uuid.New()
	report, err := pipeline.Run(context.Background(), versionID, "source deck text", testTemplate())
	require.NoError(t, err)

	assert.Nil(t, report.Enhanced, "no enhancement above threshold")
	assert.True(t, report.Result.Valid)
	assert.InDelta(t, 0.92, report.Result.Score, 1e-9)
	assert.Equal(t, versionID, report.Result.VersionID)
	assert.NotEqual(t, uuid.Nil, report.Result.ID, "persisted result gets an id")
	assert.Equal(t, 2, chat.CallCount(), "extract and validate only")

	latest, err := pipeline.LatestResult(context.Background(), versionID)
	require.NoError(t, err)
	assert.Equal(t, report.Result.ID, latest.ID)
}

func TestPipeline_Run_EnhancesBelowThreshold(t *testing.T) {
	chat := mock.NewMockChatModel(
		`{"title":"Acme","challenge":["thin"],"solution":"brief"}`,
		`{"issues":[{"section":"solution","severity":"WARNING","message":"too brief"}],"overallScore":0.4}`,
		`{"title":"Acme, Modernized","challenge":["thin, but framed"],"solution":"brief yet complete"}`,
	)
	pipeline, err := NewPipeline(chat, newResultStore(t))
	require.NoError(t, err)

	report, err := pipeline.Run(context.Background(), uuid.New(), "text", testTemplate())
	require.NoError(t, err)

	assert.False(t, report.Result.Valid)
	require.NotNil(t, report.Enhanced)
	assert.Equal(t, "Acme, Modernized", report.Enhanced["title"].Text)
	assert.Equal(t, 3, chat.CallCount())
}

func TestPipeline_Run_ThresholdConfigurable(t *testing.T) {
	chat := mock.NewMockChatModel(
		`{"title":"Acme","challenge":null,"solution":null}`,
		`{"issues":[],"overallScore":0.75}`,
	)
	pipeline, err := NewPipeline(chat, newResultStore(t), WithAcceptanceThreshold(0.9))
	require.NoError(t, err)

	// 0.75 clears the default threshold but not the configured one; the
	// enhance call then fails on the repeated validate-shaped response.
	_, err = pipeline.Run(context.Background(), uuid.New(), "text", testTemplate())
	require.Error(t, err)
	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageEnhance, stage)
}

func TestPipeline_Run_RerunAppendsResults(t *testing.T) {
	results := newResultStore(t)
	chat := mock.NewMockChatModel(
		`{"title":"Acme","challenge":null,"solution":null}`,
		`{"issues":[],"overallScore":0.8}`,
	)
	pipeline, err := NewPipeline(chat, results)
	require.NoError(t, err)

	versionID := uuid.New()
	first, err := pipeline.Run(context.Background(), versionID, "text", testTemplate())
	require.NoError(t, err)

	chat.Reset()
	chat.Responses = []string{
		`{"title":"Acme","challenge":["now found"],"solution":"now found"}`,
		`{"issues":[],"overallScore":0.95}`,
	}
	second, err := pipeline.Run(context.Background(), versionID, "text", testTemplate())
	require.NoError(t, err)

	assert.NotEqual(t, first.Result.ID, second.Result.ID)
	stored, err := results.GetValidationResults(context.Background(), versionID)
	require.NoError(t, err)
	assert.Len(t, stored, 2, "re-running validation appends, never overwrites")
}

func TestPipeline_Run_ExtractFailureSurfacesStage(t *testing.T) {
	chat := mock.NewMockChatModel(`not json at all`)
	pipeline, err := NewPipeline(chat, newResultStore(t))
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), uuid.New(), "text", testTemplate())
	require.Error(t, err)
	stage, ok := FailedStage(err)
	require.True(t, ok)
	assert.Equal(t, StageExtract, stage)
}

func TestPipeline_Run_RequiresTemplate(t *testing.T) {
	pipeline, err := NewPipeline(mock.NewMockChatModel(), newResultStore(t))
	require.NoError(t, err)

	_, err = pipeline.Run(context.Background(), uuid.New(), "text", nil)
	assert.ErrorIs(t, err, ErrTemplateRequired)

	_, err = pipeline.Run(context.Background(), uuid.New(), "text", &core.TemplateConfig{})
	assert.ErrorIs(t, err, ErrTemplateRequired)
}

func TestNewPipeline_Validation(t *testing.T) {
	results := newResultStore(t)

	_, err := NewPipeline(nil, results)
	assert.ErrorIs(t, err, ErrChatModelRequired)

	_, err = NewPipeline(mock.NewMockChatModel(), nil)
	assert.ErrorIs(t, err, ErrResultStoreRequired)

	_, err = NewPipeline(mock.NewMockChatModel(), results, WithAcceptanceThreshold(1.5))
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}
