package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanPayment rows are written once per verified payment and never deleted.
// The unique index on tx_hash is the final arbiter against double-crediting;
// the pipeline's pre-check query is only an optimization.
type PlanPayment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	WalletAddress  string    `gorm:"type:varchar(64);not null;index"`
	TxHash         string    `gorm:"type:varchar(80);not null;uniqueIndex"`
	ChainID        *int64
	PlanID         string `gorm:"type:varchar(100);not null;index"`
	PlanLabel      string `gorm:"type:varchar(255);not null"`
	PaidAmount     string `gorm:"type:varchar(100);not null"`
	PaidWei        string `gorm:"type:varchar(100);not null"` // BigInt
	CreditsGranted int64  `gorm:"not null"`
	BlockNumber    *int64
	Status         string `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
