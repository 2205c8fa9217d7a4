package repositories

import (
	"context"

	"github.com/google/uuid"
	"plumise.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEthereumAddress(ctx context.Context, address string) (*entities.User, error)
	Count(ctx context.Context) (int64, error)
}
