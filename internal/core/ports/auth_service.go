package ports

import (
	"context"
	"time"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// SignUpInput is the DTO passed from the transport layer to AuthService.SignUp.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
}

// IssuedToken is a freshly signed access token.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// VerifiedToken is the decoded content of an access token that passed
// signature, expiry and revocation checks.
type VerifiedToken struct {
	Identity  domain.Identity
	Email     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier turns a raw bearer credential into an identity.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*VerifiedToken, error)
}

type AuthService interface {
	TokenVerifier
	SignUp(ctx context.Context, in SignUpInput) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (*IssuedToken, *domain.User, error)
	SignOut(ctx context.Context, token *VerifiedToken) error
}
