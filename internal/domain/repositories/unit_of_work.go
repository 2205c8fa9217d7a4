package repositories

import (
	"context"
)

// UnitOfWork executes repository operations within one transaction scope.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
