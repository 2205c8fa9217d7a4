package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"plumise.backend/internal/domain/entities"
	"plumise.backend/internal/infrastructure/models"
	"plumise.backend/pkg/utils"
)

// BalanceRepository implements token credit balance operations
type BalanceRepository struct {
	db *gorm.DB
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// GetCredits returns the user's credit balance, 0 when no row exists yet
func (r *BalanceRepository) GetCredits(ctx context.Context, userID uuid.UUID) (float64, error) {
	var m models.Balance
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return m.TokenCredits, nil
}

// AddCredits applies delta to the user's balance with an upsert and returns
// the resulting balance. The conflict target is the unique user_id index, so
// concurrent callers serialize on the row instead of double-creating it.
func (r *BalanceRepository) AddCredits(ctx context.Context, userID uuid.UUID, delta float64) (float64, error) {
	db := GetDB(ctx, r.db)

	row := models.Balance{
		ID:           utils.GenerateUUIDv7(),
		UserID:       userID,
		TokenCredits: delta,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"token_credits": gorm.Expr("token_credits + ?", delta),
			"updated_at":    time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}

	var m models.Balance
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return 0, err
	}
	return m.TokenCredits, nil
}

// LedgerTransactionRepository implements append-only ledger operations
type LedgerTransactionRepository struct {
	db *gorm.DB
}

// NewLedgerTransactionRepository creates a new ledger transaction repository
func NewLedgerTransactionRepository(db *gorm.DB) *LedgerTransactionRepository {
	return &LedgerTransactionRepository{db: db}
}

// Create appends a ledger entry
func (r *LedgerTransactionRepository) Create(ctx context.Context, tx *entities.LedgerTransaction) error {
	m := &models.LedgerTransaction{
		ID:         tx.ID,
		UserID:     tx.UserID,
		TokenType:  string(tx.TokenType),
		RawAmount:  tx.RawAmount,
		TokenValue: tx.TokenValue,
		Model:      tx.Model,
		Context:    tx.Context,
		CreatedAt:  tx.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	tx.ID = m.ID
	tx.CreatedAt = m.CreatedAt
	return nil
}

// GetByUserInRange returns a user's ledger entries between from and to
// inclusive, oldest first
func (r *LedgerTransactionRepository) GetByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*entities.LedgerTransaction, error) {
	var ms []models.LedgerTransaction
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, from, to).
		Order("created_at ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	txs := make([]*entities.LedgerTransaction, 0, len(ms))
	for i := range ms {
		m := &ms[i]
		txs = append(txs, &entities.LedgerTransaction{
			ID:         m.ID,
			UserID:     m.UserID,
			TokenType:  entities.TokenType(m.TokenType),
			RawAmount:  m.RawAmount,
			TokenValue: m.TokenValue,
			Model:      m.Model,
			Context:    m.Context,
			CreatedAt:  m.CreatedAt,
		})
	}
	return txs, nil
}
