package resumes

import (
	"time"

	"github.com/google/uuid"
)

// Resume pipeline status values.
const (
	StatusReceived    = "received"
	StatusScreening   = "screening"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected"
	StatusHired       = "hired"
)

// Resume is a candidate submission against a position. The document itself
// is stored elsewhere; FileURL is an opaque reference.
type Resume struct {
	ID            uuid.UUID `json:"id"`
	ProjectID     uuid.UUID `json:"project_id"`
	PositionID    uuid.UUID `json:"position_id"`
	CandidateName string    `json:"candidate_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	FileURL       string    `json:"file_url"`
	Status        string    `json:"status"`
	Notes         string    `json:"notes"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateResumeRequest carries the fields accepted on creation.
type CreateResumeRequest struct {
	PositionID    uuid.UUID `json:"position_id" validate:"required"`
	CandidateName string    `json:"candidate_name" validate:"required,min=2,max=200"`
	Email         string    `json:"email" validate:"required,email"`
	Phone         string    `json:"phone" validate:"max=50"`
	FileURL       string    `json:"file_url" validate:"omitempty,url"`
	Notes         string    `json:"notes" validate:"max=5000"`
}

// UpdateResumeRequest carries the fields accepted on update.
type UpdateResumeRequest struct {
	Status *string `json:"status" validate:"omitempty,oneof=received screening shortlisted rejected hired"`
	Notes  *string `json:"notes" validate:"omitempty,max=5000"`
}
