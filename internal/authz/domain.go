// Package authz implements the layered authorization pipeline: the
// role/permission gate, the resource scope loader, and the ownership
// evaluator. Stages compose as chi middleware and each stage either passes
// the request on or halts it with a terminal decision.
package authz

// ResourceType enumerates the resource kinds permissions can reference.
type ResourceType string

const (
	ResourceCompany    ResourceType = "company"
	ResourceProject    ResourceType = "project"
	ResourcePosition   ResourceType = "position"
	ResourceResume     ResourceType = "resume"
	ResourceInterview  ResourceType = "interview"
	ResourceManager    ResourceType = "manager"
	ResourcePermission ResourceType = "permission"
	ResourceRole       ResourceType = "role"
	ResourceUser       ResourceType = "user"
)

// ResourceTypes lists every valid resource type in stable order.
func ResourceTypes() []ResourceType {
	return []ResourceType{
		ResourceCompany,
		ResourceProject,
		ResourcePosition,
		ResourceResume,
		ResourceInterview,
		ResourceManager,
		ResourcePermission,
		ResourceRole,
		ResourceUser,
	}
}

// Valid reports whether rt is a known resource type.
func (rt ResourceType) Valid() bool {
	switch rt {
	case ResourceCompany, ResourceProject, ResourcePosition, ResourceResume,
		ResourceInterview, ResourceManager, ResourcePermission, ResourceRole,
		ResourceUser:
		return true
	}
	return false
}

// Action enumerates the operations a permission can grant.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionManage is the wildcard: holding it implies all of the above.
	ActionManage Action = "manage"
)

// Actions lists every valid action in stable order.
func Actions() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage}
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage:
		return true
	}
	return false
}

// Strength is the minimum assignment type a scoped action requires.
type Strength int

const (
	// StrengthOwnerOrManager accepts either assignment type.
	StrengthOwnerOrManager Strength = iota + 1
	// StrengthOwner requires an owner assignment on the target itself.
	StrengthOwner
)

func (s Strength) String() string {
	switch s {
	case StrengthOwnerOrManager:
		return "owner_or_manager"
	case StrengthOwner:
		return "owner"
	}
	return "unknown"
}

// AssignmentType tags a manager assignment as owner or manager.
type AssignmentType string

const (
	AssignmentOwner   AssignmentType = "owner"
	AssignmentManager AssignmentType = "manager"
)

// Valid reports whether t is a known assignment type.
func (t AssignmentType) Valid() bool {
	return t == AssignmentOwner || t == AssignmentManager
}

// Satisfies reports whether an assignment of type t meets the required
// strength when found on the target resource itself.
func (t AssignmentType) Satisfies(s Strength) bool {
	if t == AssignmentOwner {
		return true
	}
	return s == StrengthOwnerOrManager
}

// Principal is the authenticated actor, resolved per request from a
// verified credential. Immutable once placed in context.
type Principal struct {
	UserID int64
	RoleID int64
}

// Decision is the ephemeral outcome of the pipeline for one request.
type Decision struct {
	Allowed          bool
	Reason           string
	RequiredStrength Strength
}

// Reason codes exposed on the wire. Denials never carry more detail.
const (
	ReasonRolePermissionDenied  = "role_permission_denied"
	ReasonInvalidIdentifier     = "invalid_identifier"
	ReasonResourceNotFound      = "resource_not_found"
	ReasonParentNotFound        = "parent_resource_not_found"
	ReasonNotAManager           = "not_a_manager"
	ReasonInsufficientStrength  = "insufficient_assignment_strength"
	ReasonAlreadyManager        = "already_a_manager"
	ReasonCannotRemoveLastOwner = "cannot_remove_last_owner"
	ReasonUpstreamTimeout       = "upstream_timeout"
	ReasonInvalidToken          = "invalid_token"
	ReasonMissingToken          = "missing_token"
)
