package ports

import (
	"context"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// UserRepository is the only writer of the users table.
type UserRepository interface {
	ListAll(ctx context.Context) ([]domain.User, error)
	// GetByID returns domain.ErrUserNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// Update applies only the supplied fields and refreshes updated_at.
	// It returns domain.ErrUserNotFound or domain.ErrEmailTaken.
	Update(ctx context.Context, id int64, changes domain.UserChanges) (*domain.User, error)
	Delete(ctx context.Context, id int64) (*domain.UserSummary, error)
	CountAdmins(ctx context.Context) (int, error)
}
