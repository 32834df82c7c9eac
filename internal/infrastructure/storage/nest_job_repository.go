package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jewisonj/nestworker/internal/infrastructure/storage/models"
	"github.com/uptrace/bun"
)

// NestJobRepository handles CRUD access to nest_jobs rows.
type NestJobRepository struct {
	db *bun.DB
}

// NewNestJobRepository creates a new NestJobRepository.
func NewNestJobRepository(db *bun.DB) *NestJobRepository {
	return &NestJobRepository{db: db}
}

// FindByID loads a nest job by id.
func (r *NestJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.NestJobModel, error) {
	job := &models.NestJobModel{}
	err := r.db.NewSelect().Model(job).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("nest job not found: %s", id)
		}
		return nil, fmt.Errorf("failed to find nest job: %w", err)
	}
	return job, nil
}

// MarkProcessing transitions a job to processing.
func (r *NestJobRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*models.NestJobModel)(nil)).
		Set("status = ?", models.JobStatusProcessing).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark nest job processing: %w", err)
	}
	return nil
}

// MarkCompleted records the final outcome of a successfully nested job.
func (r *NestJobRepository) MarkCompleted(ctx context.Context, id uuid.UUID, sheetsUsed, totalPartsPlaced int, avgUtilization float64, manifest models.JSONBMap) error {
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*models.NestJobModel)(nil)).
		Set("status = ?", models.JobStatusCompleted).
		Set("sheets_used = ?", sheetsUsed).
		Set("total_parts_placed = ?", totalPartsPlaced).
		Set("avg_utilization = ?", avgUtilization).
		Set("manifest = ?", manifest).
		Set("completed_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark nest job completed: %w", err)
	}
	return nil
}

// MarkFailed records a failure, truncating the message to 2000 characters.
func (r *NestJobRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	if len(message) > 2000 {
		message = message[:2000]
	}
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*models.NestJobModel)(nil)).
		Set("status = ?", models.JobStatusFailed).
		Set("error_message = ?", message).
		Set("completed_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark nest job failed: %w", err)
	}
	return nil
}
