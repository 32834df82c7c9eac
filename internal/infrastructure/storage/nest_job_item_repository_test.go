package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jewisonj/nestworker/internal/infrastructure/storage/models"
)

func TestNestJobItemFindByJobIDOrdersByItemNumber(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	job := createTestJob(t, ctx, db)

	second := &models.NestJobItemModel{
		NestJobID: job.ID, ItemID: "part-b", ItemNumber: "002",
		Quantity: 1, DXFFilePath: "parts/part-b.dxf",
	}
	first := &models.NestJobItemModel{
		NestJobID: job.ID, ItemID: "part-a", ItemNumber: "001",
		Quantity: 3, DXFFilePath: "parts/part-a.dxf",
	}
	require.NoError(t, db.NewInsert().Model(second).Exec(ctx))
	require.NoError(t, db.NewInsert().Model(first).Exec(ctx))

	repo := NewNestJobItemRepository(db)
	items, err := repo.FindByJobID(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "001", items[0].ItemNumber)
	assert.Equal(t, "002", items[1].ItemNumber)
}

func TestNestJobItemUpdateGeometryPersistsOnlyGeometryColumns(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	job := createTestJob(t, ctx, db)
	item := &models.NestJobItemModel{
		NestJobID: job.ID, ItemID: "part-a", ItemNumber: "001",
		Quantity: 2, DXFFilePath: "parts/part-a.dxf",
	}
	require.NoError(t, db.NewInsert().Model(item).Exec(ctx))

	item.SetGeometry(12.3456789, 4.0001, 49.1234567)
	repo := NewNestJobItemRepository(db)
	require.NoError(t, repo.UpdateGeometry(ctx, item))

	items, err := repo.FindByJobID(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].BoundingBoxW)
	assert.InDelta(t, 12.3457, *items[0].BoundingBoxW, 1e-9)
	require.NotNil(t, items[0].AreaSqIn)
	assert.InDelta(t, 49.1235, *items[0].AreaSqIn, 1e-9)
	// quantity is untouched by UpdateGeometry
	assert.Equal(t, 2, items[0].Quantity)
}
