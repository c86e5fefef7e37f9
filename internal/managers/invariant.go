package managers

import (
	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// checkRemoval decides whether the assignment held by userID may be removed
// from the given set without leaving the entity ownerless. The caller must
// hold the entity's assignment rows locked so the set reflects committed
// state at decision time.
func checkRemoval(assignments []Assignment, userID int64) error {
	var target *Assignment
	owners := 0
	for i := range assignments {
		if assignments[i].Type == authz.AssignmentOwner {
			owners++
		}
		if assignments[i].UserID == userID {
			target = &assignments[i]
		}
	}
	if target == nil {
		return httpx.Fail(httpx.ErrNotFound, authz.ReasonNotAManager)
	}
	if target.Type == authz.AssignmentOwner && owners <= 1 {
		return httpx.Fail(httpx.ErrBadRequest, authz.ReasonCannotRemoveLastOwner)
	}
	return nil
}
