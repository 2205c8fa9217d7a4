package entities

import (
	"time"

	"github.com/google/uuid"
)

// TokenType classifies a ledger transaction
type TokenType string

const (
	TokenTypePrompt     TokenType = "prompt"
	TokenTypeCompletion TokenType = "completion"
	TokenTypeCredits    TokenType = "credits"
)

// LedgerTransaction is one append-only entry in the credit ledger. TokenValue
// is the signed credits delta; RawAmount is the token count for usage entries.
type LedgerTransaction struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	TokenType  TokenType `json:"tokenType"`
	RawAmount  int64     `json:"rawAmount"`
	TokenValue float64   `json:"tokenValue"`
	Model      string    `json:"model,omitempty"`
	Context    string    `json:"context,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UsageSummary aggregates ledger transactions over a period
type UsageSummary struct {
	PromptTokens     int64   `json:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	TotalTokens      int64   `json:"totalTokens"`
	SpentCredits     float64 `json:"spentCredits"`
	AddedCredits     float64 `json:"addedCredits"`
	WaivedCredits    float64 `json:"waivedCredits"`
	NetCredits       float64 `json:"netCredits"`
}

// ModelUsage is the per-model breakdown of a usage report
type ModelUsage struct {
	Model            string  `json:"model"`
	PromptTokens     int64   `json:"promptTokens"`
	CompletionTokens int64   `json:"completionTokens"`
	TotalTokens      int64   `json:"totalTokens"`
	SpentCredits     float64 `json:"spentCredits"`
	WaivedCredits    float64 `json:"waivedCredits"`
}

// UsagePeriod is the resolved date range of a usage report
type UsagePeriod struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// UsageReport is the full response of the usage endpoint
type UsageReport struct {
	Period           UsagePeriod  `json:"period"`
	BillingMode      BillingMode  `json:"billingMode"`
	IsAgentFree      bool         `json:"isAgentFree"`
	WalletAddress    string       `json:"walletAddress"`
	Summary          UsageSummary `json:"summary"`
	ByModel          []ModelUsage `json:"byModel"`
	Balance          float64      `json:"balance"`
	TransactionCount int          `json:"transactionCount"`
}
