package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"plumise.backend/internal/domain/entities"
	domainerrors "plumise.backend/internal/domain/errors"
	"plumise.backend/internal/infrastructure/models"
)

// PlanPaymentRepository implements plan payment data operations
type PlanPaymentRepository struct {
	db *gorm.DB
}

// NewPlanPaymentRepository creates a new plan payment repository
func NewPlanPaymentRepository(db *gorm.DB) *PlanPaymentRepository {
	return &PlanPaymentRepository{db: db}
}

// Create inserts a payment record. A tx_hash collision, including one lost to
// a concurrent insert, is reported as ErrAlreadyExists.
func (r *PlanPaymentRepository) Create(ctx context.Context, payment *entities.PlanPayment) error {
	m := &models.PlanPayment{
		ID:             payment.ID,
		UserID:         payment.UserID,
		WalletAddress:  payment.WalletAddress,
		TxHash:         payment.TxHash,
		PlanID:         payment.PlanID,
		PlanLabel:      payment.PlanLabel,
		PaidAmount:     payment.PaidAmount,
		PaidWei:        payment.PaidWei,
		CreditsGranted: payment.CreditsGranted,
		Status:         string(payment.Status),
	}
	if payment.ChainID.Valid {
		v := payment.ChainID.Int64
		m.ChainID = &v
	}
	if payment.BlockNumber.Valid {
		v := payment.BlockNumber.Int64
		m.BlockNumber = &v
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	payment.ID = m.ID
	payment.CreatedAt = m.CreatedAt
	payment.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByTxHash gets a payment by its normalized transaction hash
func (r *PlanPaymentRepository) GetByTxHash(ctx context.Context, txHash string) (*entities.PlanPayment, error) {
	var m models.PlanPayment
	db := GetDB(ctx, r.db)
	if err := db.WithContext(ctx).Where("tx_hash = ?", txHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toPlanPaymentEntity(&m), nil
}

// GetByUserID gets payments for a user with pagination, newest first
func (r *PlanPaymentRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.PlanPayment, int, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.WithContext(ctx).Model(&models.PlanPayment{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.PlanPayment
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	payments := make([]*entities.PlanPayment, 0, len(ms))
	for i := range ms {
		payments = append(payments, toPlanPaymentEntity(&ms[i]))
	}
	return payments, int(total), nil
}

func toPlanPaymentEntity(m *models.PlanPayment) *entities.PlanPayment {
	return &entities.PlanPayment{
		ID:             m.ID,
		UserID:         m.UserID,
		WalletAddress:  m.WalletAddress,
		TxHash:         m.TxHash,
		ChainID:        null.Int64FromPtr(m.ChainID),
		PlanID:         m.PlanID,
		PlanLabel:      m.PlanLabel,
		PaidAmount:     m.PaidAmount,
		PaidWei:        m.PaidWei,
		CreditsGranted: m.CreditsGranted,
		BlockNumber:    null.Int64FromPtr(m.BlockNumber),
		Status:         entities.PlanPaymentStatus(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// isUniqueViolation recognizes unique constraint errors across the drivers we
// run against (postgres in production, sqlite in tests).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
