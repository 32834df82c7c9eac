package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/jewisonj/nestworker/internal/infrastructure/storage/models"
)

func createTestJob(t *testing.T, ctx context.Context, db *bun.DB) *models.NestJobModel {
	t.Helper()
	job := &models.NestJobModel{
		ProjectID:     "proj-1",
		Material:      "aluminum",
		ThicknessIn:   0.125,
		SheetWidthIn:  48,
		SheetHeightIn: 96,
		SpacingIn:     0.125,
		MarginIn:      0.5,
	}
	_, err := db.NewInsert().Model(job).Exec(ctx)
	require.NoError(t, err)
	return job
}

func TestNestJobFindByIDNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewNestJobRepository(db)
	job, err := repo.FindByID(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Nil(t, job)
}

func TestNestJobMarkProcessingThenCompleted(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	job := createTestJob(t, ctx, db)
	repo := NewNestJobRepository(db)

	require.NoError(t, repo.MarkProcessing(ctx, job.ID))
	loaded, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, loaded.Status)

	manifest := models.JSONBMap{"job_id": job.ID.String()}
	require.NoError(t, repo.MarkCompleted(ctx, job.ID, 2, 5, 0.8123, manifest))

	loaded, err = repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, loaded.Status)
	assert.Equal(t, 2, loaded.SheetsUsed)
	assert.Equal(t, 5, loaded.TotalPartsPlaced)
	assert.InDelta(t, 0.8123, loaded.AvgUtilization, 1e-9)
	assert.NotNil(t, loaded.CompletedAt)
	assert.Equal(t, job.ID.String(), loaded.Manifest["job_id"])
}

func TestNestJobMarkFailedTruncatesMessage(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	job := createTestJob(t, ctx, db)
	repo := NewNestJobRepository(db)

	longMessage := make([]byte, 2500)
	for i := range longMessage {
		longMessage[i] = 'e'
	}
	require.NoError(t, repo.MarkFailed(ctx, job.ID, string(longMessage)))

	loaded, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, loaded.Status)
	require.NotNil(t, loaded.ErrorMessage)
	assert.Len(t, *loaded.ErrorMessage, 2000)
}
