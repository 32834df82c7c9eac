package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jewisonj/nestworker/internal/infrastructure/storage/models"
	"github.com/uptrace/bun"
)

// NestJobItemRepository handles CRUD access to nest_job_items rows.
type NestJobItemRepository struct {
	db *bun.DB
}

// NewNestJobItemRepository creates a new NestJobItemRepository.
func NewNestJobItemRepository(db *bun.DB) *NestJobItemRepository {
	return &NestJobItemRepository{db: db}
}

// FindByJobID loads every item belonging to a nest job, ordered by
// item_number ascending, which also determines deterministic processing order.
func (r *NestJobItemRepository) FindByJobID(ctx context.Context, jobID uuid.UUID) ([]models.NestJobItemModel, error) {
	var items []models.NestJobItemModel
	err := r.db.NewSelect().
		Model(&items).
		Where("nest_job_id = ?", jobID).
		OrderExpr("item_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list nest job items: %w", err)
	}
	return items, nil
}

// UpdateGeometry persists the worker-discovered bounding box and area for a
// single item after its DXF source has been parsed.
func (r *NestJobItemRepository) UpdateGeometry(ctx context.Context, item *models.NestJobItemModel) error {
	_, err := r.db.NewUpdate().
		Model(item).
		Column("bounding_box_w", "bounding_box_h", "area_sq_in").
		Where("id = ?", item.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update nest job item geometry: %w", err)
	}
	return nil
}
