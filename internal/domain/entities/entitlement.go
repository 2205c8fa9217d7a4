package entities

// BillingMode represents how a wallet is billed
type BillingMode string

const (
	BillingModeAgentFree BillingMode = "agent-free"
	BillingModePaid      BillingMode = "paid"
)

// WalletEntitlement is derived per request from the allowlist configuration;
// it is never persisted.
type WalletEntitlement struct {
	WalletAddress string      `json:"walletAddress"`
	IsAgentFree   bool        `json:"isAgentFree"`
	BillingMode   BillingMode `json:"billingMode"`
}

// AccountState is the authenticated billing overview: entitlement, balance,
// and the current catalog with the public payment parameters.
type AccountState struct {
	WalletAddress string         `json:"walletAddress"`
	BillingMode   BillingMode    `json:"billingMode"`
	IsAgentFree   bool           `json:"isAgentFree"`
	Balance       float64        `json:"balance"`
	Plans         []*Plan        `json:"plans"`
	Payment       *PaymentParams `json:"payment"`
}

// PlanList is the public catalog response.
type PlanList struct {
	Plans   []*Plan        `json:"plans"`
	Payment *PaymentParams `json:"payment"`
}
