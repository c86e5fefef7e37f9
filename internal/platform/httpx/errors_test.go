package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		kind   error
		status int
	}{
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrForbidden, http.StatusForbidden},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, Fail(tc.kind, "some_reason"))
		assert.Equal(t, tc.status, rec.Code, tc.kind.Error())

		var problem ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, "some_reason", problem.Reason)
		assert.Equal(t, tc.status, problem.Status)
	}
}

func TestRespondErrorUnknownErrorIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("disk on fire"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestFailWrapsKind(t *testing.T) {
	err := Fail(ErrForbidden, "role_permission_denied")
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "role_permission_denied", Reason(err))
}

func TestFailfDetailNeverReachesResponse(t *testing.T) {
	err := Failf(ErrForbidden, "not_a_manager", "user 7 holds no assignment on project X")
	rec := httptest.NewRecorder()
	RespondError(rec, err)
	assert.NotContains(t, rec.Body.String(), "user 7")
	assert.Contains(t, rec.Body.String(), "not_a_manager")
}

func TestReasonSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("loading scope: %w", Fail(ErrNotFound, "resource_not_found"))
	assert.Equal(t, "resource_not_found", Reason(err))
	assert.True(t, errors.Is(err, ErrNotFound))
}
