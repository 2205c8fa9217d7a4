package entities

// Plan represents a purchasable credit plan. Amount is the PLM amount in major
// units as configured; AmountWei is the same amount scaled to 18 decimals.
type Plan struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	Amount         string `json:"plmAmount"`
	AmountWei      string `json:"plmAmountWei"`
	CreditsGranted int64  `json:"creditsGranted"`
}

// VerifyPaymentInput represents input for payment verification
type VerifyPaymentInput struct {
	PlanID string `json:"planId"`
	TxHash string `json:"txHash"`
}

// VerifyPaymentResponse represents a successful payment verification
type VerifyPaymentResponse struct {
	Plan    *Plan   `json:"plan"`
	TxHash  string  `json:"txHash"`
	Balance float64 `json:"balance"`
}

// PaymentParams is the public, secret-free view of the payment configuration
// returned alongside the plan catalog.
type PaymentParams struct {
	ChainID          *int64 `json:"chainId,omitempty"`
	TreasuryAddress  string `json:"treasuryAddress"`
	MinConfirmations int    `json:"minConfirmations"`
}
