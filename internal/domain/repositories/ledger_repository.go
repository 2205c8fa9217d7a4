package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"plumise.backend/internal/domain/entities"
)

// BalanceRepository defines token credit balance operations
type BalanceRepository interface {
	// GetCredits returns the user's current credit balance, 0 if no row exists.
	GetCredits(ctx context.Context, userID uuid.UUID) (float64, error)
	// AddCredits atomically adds delta to the user's balance, creating the row
	// if needed, and returns the new balance.
	AddCredits(ctx context.Context, userID uuid.UUID, delta float64) (float64, error)
}

// LedgerTransactionRepository defines append-only ledger operations
type LedgerTransactionRepository interface {
	Create(ctx context.Context, tx *entities.LedgerTransaction) error
	GetByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*entities.LedgerTransaction, error)
}
