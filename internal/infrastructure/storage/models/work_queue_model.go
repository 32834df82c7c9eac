package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Work queue status values.
const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"
)

// TaskTypeNestParts is the only task type the worker currently claims.
const TaskTypeNestParts = "NEST_PARTS"

// WorkQueueTaskModel is a durable, atomically-claimable unit of work. The
// worker claims a row with a conditional UPDATE (status='pending' ->
// 'processing') rather than row-level locking, so RowsAffected() == 1 is
// the only signal of a successful claim.
type WorkQueueTaskModel struct {
	bun.BaseModel `bun:"table:work_queue,alias:wq"`

	ID           uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	TaskType     string     `bun:"task_type,notnull" json:"task_type" validate:"required"`
	Status       string     `bun:"status,notnull,default:'pending'" json:"status"`
	Payload      JSONBMap   `bun:"payload,type:jsonb,default:'{}'" json:"payload"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	StartedAt    *time.Time `bun:"started_at" json:"started_at,omitempty"`
	CompletedAt  *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
	ErrorMessage *string    `bun:"error_message" json:"error_message,omitempty"`
}

func (WorkQueueTaskModel) TableName() string { return "work_queue" }

func (t *WorkQueueTaskModel) BeforeInsert(ctx interface{}) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = QueueStatusPending
	}
	if t.Payload == nil {
		t.Payload = make(JSONBMap)
	}
	return nil
}

// NestJobID extracts the job id this task refers to from its payload.
func (t *WorkQueueTaskModel) NestJobID() (uuid.UUID, bool) {
	raw, ok := t.Payload["nest_job_id"]
	if !ok {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
