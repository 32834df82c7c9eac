package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PlacementRecord is one entry in a NestResultModel's Placements array,
// mirroring the manifest JSON's per-placement shape exactly.
type PlacementRecord struct {
	PartID   string  `json:"part_id"`
	Instance int     `json:"instance"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation int     `json:"rotation"`
}

// NestResultModel is one row per output sheet, written once at successful
// completion and deleted only when the parent job is deleted.
type NestResultModel struct {
	bun.BaseModel `bun:"table:nest_results,alias:nr"`

	ID           uuid.UUID         `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	NestJobID    uuid.UUID         `bun:"nest_job_id,notnull,type:uuid" json:"nest_job_id" validate:"required"`
	SheetIndex   int               `bun:"sheet_index,notnull" json:"sheet_index" validate:"gte=1"`
	DXFPath      string            `bun:"dxf_path,notnull" json:"dxf_path" validate:"required"`
	SVGPath      string            `bun:"svg_path,notnull" json:"svg_path" validate:"required"`
	Utilization  float64           `bun:"utilization,notnull" json:"utilization" validate:"gt=0,lte=1"`
	PartsOnSheet int               `bun:"parts_on_sheet,notnull" json:"parts_on_sheet" validate:"gte=1"`
	Placements   []PlacementRecord `bun:"placements,type:jsonb" json:"placements"`

	Job *NestJobModel `bun:"rel:belongs-to,join:nest_job_id=id" json:"-"`
}

func (NestResultModel) TableName() string { return "nest_results" }

func (r *NestResultModel) BeforeInsert(ctx interface{}) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
