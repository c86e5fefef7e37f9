package companies

import (
	"time"

	"github.com/google/uuid"
)

// Company is a tenant organization. Projects hang off a company; ownership
// assignments reference it by id with entity type "company".
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	Website   string    `json:"website"`
	IsActive  bool      `json:"is_active"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
