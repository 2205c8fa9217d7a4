package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email           string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username        string    `gorm:"type:varchar(100)"`
	Name            string    `gorm:"type:varchar(100)"`
	Role            string    `gorm:"type:varchar(50);not null;default:'USER'"`
	Provider        string    `gorm:"type:varchar(50);not null;default:'siwe'"`
	EthereumAddress *string   `gorm:"type:varchar(64);uniqueIndex"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}
