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

// WorkQueueRepository handles durable work-queue operations, notably the
// atomic claim that lets multiple worker instances share one queue safely.
type WorkQueueRepository struct {
	db *bun.DB
}

// NewWorkQueueRepository creates a new WorkQueueRepository.
func NewWorkQueueRepository(db *bun.DB) *WorkQueueRepository {
	return &WorkQueueRepository{db: db}
}

// ClaimNext atomically claims the oldest pending NEST_PARTS task, returning
// (nil, false, nil) if none is available and (nil, false, err) on a
// transient store failure. The claim itself is a conditional update: a
// competing worker racing for the same row will see RowsAffected() == 0
// and the claim fails harmlessly rather than double-processing the task.
func (r *WorkQueueRepository) ClaimNext(ctx context.Context) (*models.WorkQueueTaskModel, bool, error) {
	task := &models.WorkQueueTaskModel{}
	err := r.db.NewSelect().
		Model(task).
		Where("status = ? AND task_type = ?", models.QueueStatusPending, models.TaskTypeNestParts).
		Order("created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to poll work queue: %w", err)
	}

	now := time.Now()
	result, err := r.db.NewUpdate().
		Model((*models.WorkQueueTaskModel)(nil)).
		Set("status = ?", models.QueueStatusProcessing).
		Set("started_at = ?", now).
		Where("id = ? AND status = ?", task.ID, models.QueueStatusPending).
		Exec(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim work queue task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read claim result: %w", err)
	}
	if rows != 1 {
		return nil, false, nil
	}

	task.Status = models.QueueStatusProcessing
	task.StartedAt = &now
	return task, true, nil
}

// Complete marks a claimed task completed.
func (r *WorkQueueRepository) Complete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*models.WorkQueueTaskModel)(nil)).
		Set("status = ?", models.QueueStatusCompleted).
		Set("completed_at = ?", now).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete work queue task: %w", err)
	}
	return nil
}

// Fail marks a claimed task failed, truncating the message to 2000
// characters to match the job-row error message contract.
func (r *WorkQueueRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	if len(message) > 2000 {
		message = message[:2000]
	}
	now := time.Now()
	_, err := r.db.NewUpdate().
		Model((*models.WorkQueueTaskModel)(nil)).
		Set("status = ?", models.QueueStatusFailed).
		Set("completed_at = ?", now).
		Set("error_message = ?", message).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to fail work queue task: %w", err)
	}
	return nil
}
