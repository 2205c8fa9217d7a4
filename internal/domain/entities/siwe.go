package entities

// SiweChallenge is the parsed form of a signed SIWE message. Transient only.
type SiweChallenge struct {
	Address  string
	Nonce    string
	ChainID  *int64
	URI      string
	IssuedAt string
}

// SiweVerifyInput represents input for SIWE login
type SiweVerifyInput struct {
	Message   string `json:"message" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// SiweResult is the outcome of a successful signature verification
type SiweResult struct {
	Address string
	ChainID *int64
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}
