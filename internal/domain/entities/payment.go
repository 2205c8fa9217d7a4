package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// PlanPaymentStatus represents the lifecycle state of a verified payment
type PlanPaymentStatus string

const (
	PlanPaymentStatusPending   PlanPaymentStatus = "pending"
	PlanPaymentStatusConfirmed PlanPaymentStatus = "confirmed"
	PlanPaymentStatusFailed    PlanPaymentStatus = "failed"
)

// PlanPayment represents one verified on-chain plan payment. TxHash is stored
// lowercase and is globally unique; the row is written once and never deleted.
type PlanPayment struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"userId"`
	WalletAddress  string            `json:"walletAddress"`
	TxHash         string            `json:"txHash"`
	ChainID        null.Int64        `json:"chainId,omitempty"`
	PlanID         string            `json:"planId"`
	PlanLabel      string            `json:"planLabel"`
	PaidAmount     string            `json:"paidPlm"`
	PaidWei        string            `json:"paidWei"`
	CreditsGranted int64             `json:"creditsGranted"`
	BlockNumber    null.Int64        `json:"blockNumber,omitempty"`
	Status         PlanPaymentStatus `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
