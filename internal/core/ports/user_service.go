package ports

import (
	"context"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// UserService defines the user use-cases. Every call is made on behalf of an
// authenticated actor and is subject to the user policy.
type UserService interface {
	ListAll(ctx context.Context, actor domain.Identity) ([]domain.User, error)
	GetByID(ctx context.Context, actor domain.Identity, id int64) (*domain.User, error)
	Update(ctx context.Context, actor domain.Identity, id int64, changes domain.UserChanges) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Identity, id int64) (*domain.UserSummary, error)
}
