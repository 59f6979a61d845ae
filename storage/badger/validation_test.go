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


package badger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docpipe/core"
	"github.com/poiesic/docpipe/storage"
)

func setupValidation(t *testing.T) storage.ValidationResultRepository {
	t.Helper()
	_, validationRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return validationRepo
}

func TestValidationResultRepository_AddAssignsIdentity(t *testing.T) {
	repo := setupValidation(t)

	result, err := repo.AddValidationResult(context.Background(), &core.ValidationResult{
		VersionID: uuid.New(),
		Score:     0.85,
		Valid:     true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.False(t, result.CreatedAt.IsZero())
}

func TestValidationResultRepository_AddRejectsBadScore(t *testing.T) {
	repo := setupValidation(t)

	_, err := repo.AddValidationResult(context.Background(), &core.ValidationResult{
		VersionID: uuid.New(),
		Score:     1.4,
	})
	assert.ErrorIs(t, err, core.ErrScoreOutOfRange)
}

func TestValidationResultRepository_AppendOnlyLatestWins(t *testing.T) {
	repo := setupValidation(t)
	ctx := context.Background()
	versionID := uuid.New()

	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	scores := []float64{0.4, 0.6, 0.9}
	for i, score := range scores {
		_, err := repo.AddValidationResult(ctx, &core.ValidationResult{
			VersionID: versionID,
			Score:     score,
			Valid:     score >= 0.7,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	results, err := repo.GetValidationResults(ctx, versionID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 0.4, results[0].Score)
	assert.Equal(t, 0.9, results[2].Score)

	latest, err := repo.LatestValidationResult(ctx, versionID)
	require.NoError(t, err)
	assert.Equal(t, 0.9, latest.Score)
	assert.True(t, latest.Valid)
}

func TestValidationResultRepository_IssuesSurvive(t *testing.T) {
	repo := setupValidation(t)
	ctx := context.Background()
	versionID := uuid.New()

	_, err := repo.AddValidationResult(ctx, &core.ValidationResult{
		VersionID: versionID,
		Issues: []core.ValidationIssue{
			{Section: "challenge", Severity: core.SeverityError, Message: "required section is missing"},
		},
		Score: 0.3,
	})
	require.NoError(t, err)

	latest, err := repo.LatestValidationResult(ctx, versionID)
	require.NoError(t, err)
	require.Len(t, latest.Issues, 1)
	assert.Equal(t, "challenge", latest.Issues[0].Section)
	assert.Equal(t, core.SeverityError, latest.Issues[0].Severity)
}

func TestValidationResultRepository_LatestEmpty(t *testing.T) {
	repo := setupValidation(t)

	_, err := repo.LatestValidationResult(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	results, err := repo.GetValidationResults(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestValidationResultRepository_IsolatedPerVersion(t *testing.T) {
	repo := setupValidation(t)
	ctx := context.Background()

	versionA := uuid.New()
	versionB := uuid.New()

	_, err := repo.AddValidationResult(ctx, &core.ValidationResult{VersionID: versionA, Score: 0.5})
	require.NoError(t, err)
	_, err = repo.AddValidationResult(ctx, &core.ValidationResult{VersionID: versionB, Score: 0.8})
	require.NoError(t, err)

	results, err := repo.GetValidationResults(ctx, versionA)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.5, results[0].Score)
}
