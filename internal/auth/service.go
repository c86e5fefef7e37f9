package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/crewbase/crewbase/internal/authz"
	"github.com/crewbase/crewbase/internal/platform/httpx"
	"github.com/crewbase/crewbase/internal/users"
)

const reasonInvalidCredentials = "invalid_credentials"

// Accounts is the slice of the user repository authentication needs.
type Accounts interface {
	FindByEmail(ctx context.Context, email string) (users.User, string, error)
}

// Service wraps authentication business rules.
type Service struct {
	accounts Accounts
	tokens   *TokenStore
}

// NewService constructs a new Service.
func NewService(accounts Accounts, tokens *TokenStore) *Service {
	return &Service{accounts: accounts, tokens: tokens}
}

// Login validates credentials and issues a bearer token. Every failure mode
// maps to the same invalid_credentials reason so callers cannot probe which
// emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	user, hash, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return Token{}, httpx.Fail(httpx.ErrUnauthenticated, reasonInvalidCredentials)
	}
	if !user.IsActive {
		return Token{}, httpx.Fail(httpx.ErrUnauthenticated, reasonInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return Token{}, httpx.Fail(httpx.ErrUnauthenticated, reasonInvalidCredentials)
	}
	return s.tokens.Issue(ctx, authz.Principal{UserID: user.ID, RoleID: user.RoleID})
}

// Logout revokes the presented token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
