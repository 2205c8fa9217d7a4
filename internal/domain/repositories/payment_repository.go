package repositories

import (
	"context"

	"github.com/google/uuid"
	"plumise.backend/internal/domain/entities"
)

// PlanPaymentRepository defines plan payment data operations. Create must
// surface a duplicate tx_hash as domainerrors.ErrAlreadyExists so that the
// pipeline can report a replay instead of a server fault.
type PlanPaymentRepository interface {
	Create(ctx context.Context, payment *entities.PlanPayment) error
	GetByTxHash(ctx context.Context, txHash string) (*entities.PlanPayment, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.PlanPayment, int, error)
}
