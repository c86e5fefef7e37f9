package auth

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
	"github.com/crewbase/crewbase/internal/users"
)

type mockAccounts struct {
	byEmail map[string]users.User
	hashes  map[string]string
}

func (m *mockAccounts) FindByEmail(ctx context.Context, email string) (users.User, string, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return users.User{}, "", httpx.Fail(httpx.ErrNotFound, authz.ReasonResourceNotFound)
	}
	return u, m.hashes[email], nil
}

func newLoginFixture(t *testing.T) *Service {
	t.Helper()
	// MinCost keeps the fixture fast; the service only compares.
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	accounts := &mockAccounts{
		byEmail: map[string]users.User{
			"ana@example.com":    {ID: 7, Email: "ana@example.com", RoleID: 3, IsActive: true},
			"former@example.com": {ID: 8, Email: "former@example.com", RoleID: 3, IsActive: false},
		},
		hashes: map[string]string{
			"ana@example.com":    string(hash),
			"former@example.com": string(hash),
		},
	}
	tokens, _ := newTokenFixture(t)
	return NewService(accounts, tokens)
}

func TestLoginIssuesResolvableToken(t *testing.T) {
	svc := newLoginFixture(t)

	token, err := svc.Login(context.Background(), "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token.Value)

	principal, err := svc.tokens.Resolve(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(7), principal.UserID)
	assert.Equal(t, int64(3), principal.RoleID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newLoginFixture(t)

	cases := map[string]struct {
		email    string
		password string
	}{
		"unknown email":    {"nobody@example.com", "hunter2hunter2"},
		"wrong password":   {"ana@example.com", "wrong-password"},
		"inactive account": {"former@example.com", "hunter2hunter2"},
	}
	for name, tc := range cases {
		_, err := svc.Login(context.Background(), tc.email, tc.password)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, httpx.ErrUnauthenticated, name)
		assert.Equal(t, reasonInvalidCredentials, httpx.Reason(err), name)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := newLoginFixture(t)

	token, err := svc.Login(context.Background(), "ana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), token.Value))

	_, err = svc.tokens.Resolve(context.Background(), token.Value)
	assert.Equal(t, authz.ReasonInvalidToken, httpx.Reason(err))
}
