package managers

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

func assignment(userID int64, atype authz.AssignmentType) Assignment {
	return Assignment{ID: uuid.New(), UserID: userID, Type: atype}
}

func TestCheckRemovalSoleOwner(t *testing.T) {
	err := checkRemoval([]Assignment{assignment(1, authz.AssignmentOwner)}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrBadRequest))
	assert.Equal(t, authz.ReasonCannotRemoveLastOwner, httpx.Reason(err))
}

func TestCheckRemovalSoleOwnerAmongManagers(t *testing.T) {
	set := []Assignment{
		assignment(1, authz.AssignmentOwner),
		assignment(2, authz.AssignmentManager),
		assignment(3, authz.AssignmentManager),
	}
	err := checkRemoval(set, 1)
	require.Error(t, err)
	assert.Equal(t, authz.ReasonCannotRemoveLastOwner, httpx.Reason(err))
}

func TestCheckRemovalOwnerWithCoOwner(t *testing.T) {
	set := []Assignment{
		assignment(1, authz.AssignmentOwner),
		assignment(2, authz.AssignmentOwner),
	}
	assert.NoError(t, checkRemoval(set, 1))
}

func TestCheckRemovalManagerAlwaysAllowed(t *testing.T) {
	set := []Assignment{
		assignment(1, authz.AssignmentOwner),
		assignment(2, authz.AssignmentManager),
	}
	assert.NoError(t, checkRemoval(set, 2))
}

func TestCheckRemovalUnknownUser(t *testing.T) {
	set := []Assignment{assignment(1, authz.AssignmentOwner)}
	err := checkRemoval(set, 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrNotFound))
	assert.Equal(t, authz.ReasonNotAManager, httpx.Reason(err))
}
