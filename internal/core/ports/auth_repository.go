package ports

import (
	"context"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// CredentialRepository reads and writes the credential side of a user row.
type CredentialRepository interface {
	// Create inserts a new user. It returns domain.ErrEmailTaken when the
	// email is already registered.
	Create(ctx context.Context, creds *domain.Credentials) (*domain.User, error)
	// FindCredentials returns domain.ErrUserNotFound for an unknown email.
	FindCredentials(ctx context.Context, email string) (*domain.Credentials, error)
}
