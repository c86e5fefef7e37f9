package interviews

import (
	"time"

	"github.com/google/uuid"
)

// Interview status values.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Interview is a scheduled conversation with a candidate.
type Interview struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"project_id"`
	ResumeID      uuid.UUID `json:"resume_id"`
	InterviewerID int64     `json:"interviewer_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	Status        string    `json:"status"`
	Feedback      string    `json:"feedback"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInterviewRequest carries the fields accepted on creation.
type CreateInterviewRequest struct {
	ResumeID      uuid.UUID `json:"resume_id" validate:"required"`
	InterviewerID int64     `json:"interviewer_id" validate:"required,gt=0"`
	ScheduledAt   time.Time `json:"scheduled_at" validate:"required"`
}

// UpdateInterviewRequest carries the fields accepted on update.
type UpdateInterviewRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
	Status      *string    `json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	Feedback    *string    `json:"feedback" validate:"omitempty,max=10000"`
}
