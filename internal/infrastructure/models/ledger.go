package models

import (
	"time"

	"github.com/google/uuid"
)

type Balance struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	TokenCredits float64   `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LedgerTransaction is append-only; rows are never updated or deleted.
type LedgerTransaction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenType  string    `gorm:"type:varchar(20);not null"`
	RawAmount  int64     `gorm:"not null;default:0"`
	TokenValue float64   `gorm:"not null;default:0"`
	Model      string    `gorm:"type:varchar(255)"`
	Context    string    `gorm:"type:varchar(255)"`
	CreatedAt  time.Time `gorm:"index"`
}
