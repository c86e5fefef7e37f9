// Package managers implements the polymorphic owner/manager assignment
// model: one table serving companies and projects, tagged by entity type.
package managers

import (
	"time"

	"github.com/google/uuid"

	"github.com/crewbase/crewbase/internal/authz"
)

// Assignment grants a user owner or manager standing on one entity instance,
// independently of the user's global role.
type Assignment struct {
	ID         uuid.UUID           `json:"id"`
	EntityType authz.ResourceType  `json:"entity_type"`
	EntityID   uuid.UUID           `json:"entity_id"`
	UserID     int64               `json:"user_id"`
	Type       authz.AssignmentType `json:"type"`
	CreatedBy  int64               `json:"created_by"`
	CreatedAt  time.Time           `json:"created_at"`
}

// AssignableEntity reports whether assignments may exist for this entity
// kind. Only companies and projects carry ownership.
func AssignableEntity(rt authz.ResourceType) bool {
	return rt == authz.ResourceCompany || rt == authz.ResourceProject
}
