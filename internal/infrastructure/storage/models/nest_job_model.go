package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Nest job status values.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// NestJobModel is the durable record for one user-initiated nesting
// request: created by the API in pending, transitioned to processing by
// the worker that claims its queue task, finalized completed or failed.
type NestJobModel struct {
	bun.BaseModel `bun:"table:nest_jobs,alias:nj"`

	ID               uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	ProjectID        string    `bun:"project_id,notnull" json:"project_id" validate:"required"`
	Material         string    `bun:"material,notnull" json:"material" validate:"required"`
	ThicknessIn      float64   `bun:"thickness_in,notnull" json:"thickness_in" validate:"gt=0"`
	SheetWidthIn     float64   `bun:"sheet_width_in,notnull" json:"sheet_width_in" validate:"gt=0"`
	SheetHeightIn    float64   `bun:"sheet_height_in,notnull" json:"sheet_height_in" validate:"gt=0"`
	SheetLabel       *string   `bun:"sheet_label" json:"sheet_label,omitempty"`
	SpacingIn        float64   `bun:"spacing_in,notnull,default:0.125" json:"spacing_in"`
	MarginIn         float64   `bun:"margin_in,notnull,default:0.5" json:"margin_in"`
	RotationStepDeg  int       `bun:"rotation_step_deg,notnull,default:5" json:"rotation_step_deg"`
	OutputPrefix     string    `bun:"output_prefix,notnull,default:''" json:"output_prefix"`
	Status           string    `bun:"status,notnull,default:'pending'" json:"status"`
	SheetsUsed       int       `bun:"sheets_used,notnull,default:0" json:"sheets_used"`
	TotalPartsPlaced int       `bun:"total_parts_placed,notnull,default:0" json:"total_parts_placed"`
	AvgUtilization   float64   `bun:"avg_utilization,notnull,default:0" json:"avg_utilization"`
	Manifest         JSONBMap  `bun:"manifest,type:jsonb,default:'{}'" json:"manifest,omitempty"`
	ErrorMessage     *string   `bun:"error_message" json:"error_message,omitempty"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	CompletedAt      *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
}

func (NestJobModel) TableName() string { return "nest_jobs" }

// BeforeInsert assigns an id and default status. Spacing, margin, and
// rotation step default values belong to job creation (outside this
// worker's scope per the system's API layer), not here: 0 is a legal
// explicit value for all three, so the hook must not mistake "unset" for
// "zero".
func (j *NestJobModel) BeforeInsert(ctx interface{}) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Status == "" {
		j.Status = JobStatusPending
	}
	if j.Manifest == nil {
		j.Manifest = make(JSONBMap)
	}
	return nil
}
