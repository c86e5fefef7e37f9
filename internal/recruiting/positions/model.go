package positions

import (
	"time"

	"github.com/google/uuid"
)

// Position status values.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Position is an open role inside a recruiting project.
type Position struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Title     string    `json:"title"`
	Seniority string    `json:"seniority"`
	Headcount int       `json:"headcount"`
	Status    string    `json:"status"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreatePositionRequest carries the fields accepted on creation.
type CreatePositionRequest struct {
	Title     string `json:"title" validate:"required,min=2,max=200"`
	Seniority string `json:"seniority" validate:"max=50"`
	Headcount int    `json:"headcount" validate:"gte=1,lte=500"`
}

// UpdatePositionRequest carries the fields accepted on update.
type UpdatePositionRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=2,max=200"`
	Seniority *string `json:"seniority" validate:"omitempty,max=50"`
	Headcount *int    `json:"headcount" validate:"omitempty,gte=1,lte=500"`
	Status    *string `json:"status" validate:"omitempty,oneof=open closed"`
}
