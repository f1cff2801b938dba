package ports

import (
	"context"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
)

// AuthResult bundles the persisted user with the token issued for it.
type AuthResult struct {
	User  *domain.User
	Token string
}

// AuthService defines registration, login and token verification.
type AuthService interface {
	Register(ctx context.Context, username, password string, isAdmin bool) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	// Verify checks signature and expiry and returns the subject user id.
	// It deliberately does not consult the store; the auth middleware
	// re-resolves the user so stale tokens never survive a deleted account.
	Verify(token string) (string, error)
}
