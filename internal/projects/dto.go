package projects

import "github.com/google/uuid"

// CreateProjectRequest carries the fields accepted on creation. The owning
// company comes from the route, not the body.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateProjectRequest carries the fields accepted on update.
type UpdateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ListFilters narrows and pages project listings.
type ListFilters struct {
	CompanyID *uuid.UUID
	Search    string
	IsActive  *bool
	Page      int
	PerPage   int
}
