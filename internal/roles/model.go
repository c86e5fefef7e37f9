package roles

import "time"

// Role groups a set of resource/action permissions.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Permission is one resource/action pair granted to a role.
type Permission struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// CreateRoleRequest carries the fields accepted on creation.
type CreateRoleRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateRoleRequest carries the fields accepted on update.
type UpdateRoleRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// SetPermissionsRequest replaces a role's permission set.
type SetPermissionsRequest struct {
	Permissions []Permission `json:"permissions" validate:"required,dive"`
}
