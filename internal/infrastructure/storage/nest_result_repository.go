package storage

import (
	"context"
	"fmt"

	"github.com/jewisonj/nestworker/internal/infrastructure/storage/models"
	"github.com/uptrace/bun"
)

// NestResultRepository handles CRUD access to nest_results rows.
type NestResultRepository struct {
	db *bun.DB
}

// NewNestResultRepository creates a new NestResultRepository.
func NewNestResultRepository(db *bun.DB) *NestResultRepository {
	return &NestResultRepository{db: db}
}

// CreateBatch inserts one row per sheet produced for a job. Callers build
// the full slice up front since a job's results are always written together
// after nesting completes.
func (r *NestResultRepository) CreateBatch(ctx context.Context, results []*models.NestResultModel) error {
	if len(results) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().Model(&results).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert nest results: %w", err)
	}
	return nil
}
