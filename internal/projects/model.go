package projects

import (
	"time"

	"github.com/google/uuid"
)

// Project is a recruiting project owned by a company. Its ownership chain is
// exactly one level deep: project → company.
type Project struct {
	ID          uuid.UUID `json:"id"`
	CompanyID   uuid.UUID `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
