package models

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NestJobItemModel is one row per source part referenced by a job. It is
// created alongside the job and is read-only once the worker fills in the
// geometry metadata it discovers while parsing the source DXF.
type NestJobItemModel struct {
	bun.BaseModel `bun:"table:nest_job_items,alias:nji"`

	ID            uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	NestJobID     uuid.UUID `bun:"nest_job_id,notnull,type:uuid" json:"nest_job_id" validate:"required"`
	ItemID        string    `bun:"item_id,notnull" json:"item_id" validate:"required"`
	ItemNumber    string    `bun:"item_number,notnull" json:"item_number" validate:"required"`
	Quantity      int       `bun:"quantity,notnull" json:"quantity" validate:"gte=1"`
	DXFFilePath   string    `bun:"dxf_file_path,notnull" json:"dxf_file_path" validate:"required"`
	BoundingBoxW  *float64  `bun:"bounding_box_w" json:"bounding_box_w,omitempty"`
	BoundingBoxH  *float64  `bun:"bounding_box_h" json:"bounding_box_h,omitempty"`
	AreaSqIn      *float64  `bun:"area_sq_in" json:"area_sq_in,omitempty"`

	Job *NestJobModel `bun:"rel:belongs-to,join:nest_job_id=id" json:"-"`
}

func (NestJobItemModel) TableName() string { return "nest_job_items" }

func (i *NestJobItemModel) BeforeInsert(ctx interface{}) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// round4 rounds a value to 4 decimal places (half away from zero), matching the precision the
// worker persists for every geometry measurement it writes back.
func round4(v float64) float64 {
	return float64(int64(v*10000+sign(v)*0.5)) / 10000
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// SetGeometry records the worker-discovered bounding box and area,
// rounding to 4 decimal places as the persisted contract requires.
func (i *NestJobItemModel) SetGeometry(width, height, area float64) {
	w, h, a := round4(width), round4(height), round4(area)
	i.BoundingBoxW = &w
	i.BoundingBoxH = &h
	i.AreaSqIn = &a
}
