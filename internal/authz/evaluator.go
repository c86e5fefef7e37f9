package authz

import (
	"context"

	"github.com/google/uuid"
)

// Assignment is the slice of a manager assignment the evaluator needs.
type Assignment struct {
	EntityType ResourceType
	EntityID   uuid.UUID
	UserID     int64
	Type       AssignmentType
}

// AssignmentFinder looks up a principal's assignment on one entity.
// Implementations return (nil, nil) when no assignment exists.
type AssignmentFinder interface {
	FindAssignment(ctx context.Context, entityType ResourceType, entityID uuid.UUID, userID int64) (*Assignment, error)
}

// Evaluator decides whether a principal's owner/manager assignments satisfy
// the strength an action requires on the loaded scope chain.
type Evaluator struct {
	assignments AssignmentFinder
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(assignments AssignmentFinder) *Evaluator {
	return &Evaluator{assignments: assignments}
}

// Evaluate walks the scope chain from most specific to least specific. The
// first level holding an assignment for the principal determines the
// decision:
//
//   - on the target itself, owner satisfies any strength and manager
//     satisfies owner_or_manager;
//   - on the parent company, only an owner assignment counts, and it
//     satisfies owner_or_manager strength only — company ownership subsumes
//     project oversight but never project-level owner strength.
//
// wildcard is true when the principal's role holds manage for the target
// resource type; it bypasses the ownership walk entirely so platform
// administrators are never blocked by a weaker incidental assignment.
func (e *Evaluator) Evaluate(ctx context.Context, p Principal, chain ScopeChain, required Strength, wildcard bool) (Decision, error) {
	decision := Decision{RequiredStrength: required}

	if wildcard {
		decision.Allowed = true
		return decision, nil
	}

	for level, resource := range chain {
		assignment, err := e.assignments.FindAssignment(ctx, resource.Type, resource.ID, p.UserID)
		if err != nil {
			return decision, err
		}
		if assignment == nil {
			continue
		}
		if level == 0 {
			if assignment.Type.Satisfies(required) {
				decision.Allowed = true
				return decision, nil
			}
			decision.Reason = ReasonInsufficientStrength
			return decision, nil
		}
		// Ancestor level: manager assignments do not descend, and owner
		// assignments descend only at owner_or_manager strength.
		if assignment.Type == AssignmentOwner && required == StrengthOwnerOrManager {
			decision.Allowed = true
			return decision, nil
		}
		decision.Reason = ReasonInsufficientStrength
		return decision, nil
	}

	decision.Reason = ReasonNotAManager
	return decision, nil
}
