package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
)

// Token is an opaque bearer credential with its expiry.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type tokenRecord struct {
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}

// TokenStore keeps bearer tokens in Redis so any instance can resolve a
// token issued by another.
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore constructs a TokenStore.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	return &TokenStore{client: client, ttl: ttl}
}

// Issue mints a fresh token for the principal.
func (s *TokenStore) Issue(ctx context.Context, principal authz.Principal) (Token, error) {
	payload, err := json.Marshal(tokenRecord{UserID: principal.UserID, RoleID: principal.RoleID})
	if err != nil {
		return Token{}, err
	}
	value := uuid.NewString()
	if err := s.client.Set(ctx, tokenKey(value), payload, s.ttl).Err(); err != nil {
		return Token{}, err
	}
	return Token{Value: value, ExpiresAt: time.Now().UTC().Add(s.ttl)}, nil
}

// Resolve maps a presented token back to its principal. Unknown or expired
// tokens fail with invalid_token.
func (s *TokenStore) Resolve(ctx context.Context, value string) (authz.Principal, error) {
	payload, err := s.client.Get(ctx, tokenKey(value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return authz.Principal{}, httpx.Fail(httpx.ErrUnauthenticated, authz.ReasonInvalidToken)
		}
		return authz.Principal{}, err
	}
	var rec tokenRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return authz.Principal{}, httpx.Fail(httpx.ErrUnauthenticated, authz.ReasonInvalidToken)
	}
	return authz.Principal{UserID: rec.UserID, RoleID: rec.RoleID}, nil
}

// Revoke deletes the token. Revoking an unknown token is a no-op.
func (s *TokenStore) Revoke(ctx context.Context, value string) error {
	return s.client.Del(ctx, tokenKey(value)).Err()
}

func tokenKey(value string) string {
	return "token:" + value
}
