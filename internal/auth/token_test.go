package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
	_ "github.com/crewbase/crewbase/internal/testing/guard"
)

func newTokenFixture(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client, time.Hour), mr
}

func TestIssueResolveRoundTrip(t *testing.T) {
	store, _ := newTokenFixture(t)

	token, err := store.Issue(context.Background(), authz.Principal{UserID: 7, RoleID: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Value)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	principal, err := store.Resolve(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(7), principal.UserID)
	assert.Equal(t, int64(3), principal.RoleID)
}

func TestResolveUnknownToken(t *testing.T) {
	store, _ := newTokenFixture(t)

	_, err := store.Resolve(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrUnauthenticated))
	assert.Equal(t, authz.ReasonInvalidToken, httpx.Reason(err))
}

func TestResolveExpiredToken(t *testing.T) {
	store, mr := newTokenFixture(t)

	token, err := store.Issue(context.Background(), authz.Principal{UserID: 7, RoleID: 3})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Resolve(context.Background(), token.Value)
	require.Error(t, err)
	assert.Equal(t, authz.ReasonInvalidToken, httpx.Reason(err))
}

func TestRevokeIsIdempotent(t *testing.T) {
	store, _ := newTokenFixture(t)

	token, err := store.Issue(context.Background(), authz.Principal{UserID: 7, RoleID: 3})
	require.NoError(t, err)

	require.NoError(t, store.Revoke(context.Background(), token.Value))
	require.NoError(t, store.Revoke(context.Background(), token.Value))

	_, err = store.Resolve(context.Background(), token.Value)
	assert.Error(t, err)
}
