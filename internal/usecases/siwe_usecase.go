package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"plumise.backend/internal/domain/entities"
	domainerrors "plumise.backend/internal/domain/errors"
	"plumise.backend/internal/domain/repositories"
	"plumise.backend/internal/metrics"
	"plumise.backend/pkg/jwt"
	"plumise.backend/pkg/logger"
	"plumise.backend/pkg/nonce"
)

// issuedAtMaxAge bounds how old a signed message may be. Independent of the
// nonce TTL so a slow signer with a fresh nonce still gets a tolerant window.
const issuedAtMaxAge = 10 * time.Minute

// pseudoEmailDomain hosts the synthetic addresses assigned to wallet-only
// accounts.
const pseudoEmailDomain = "wallet.plumise.com"

// SiweUsecase handles wallet-based login: nonce issuance, signed message
// verification, and account provisioning.
type SiweUsecase struct {
	nonces     nonce.Store
	userRepo   repositories.UserRepository
	jwtService *jwt.JWTService
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewSiweUsecase creates a new SIWE usecase
func NewSiweUsecase(nonces nonce.Store, userRepo repositories.UserRepository, jwtService *jwt.JWTService, m *metrics.Metrics) *SiweUsecase {
	return &SiweUsecase{
		nonces:     nonces,
		userRepo:   userRepo,
		jwtService: jwtService,
		metrics:    m,
		now:        time.Now,
	}
}

// IssueNonce returns a fresh one-time login nonce.
func (u *SiweUsecase) IssueNonce(ctx context.Context) (string, error) {
	token, err := u.nonces.Issue(ctx)
	if err != nil {
		logger.Error(ctx, "failed to issue login nonce", zap.Error(err))
		return "", domainerrors.InternalError(err)
	}
	if u.metrics != nil {
		u.metrics.SiweNoncesIssuedTotal.Inc()
	}
	return token, nil
}

// Login verifies a signed message and returns a token pair for the wallet's
// account, creating the account on first login.
func (u *SiweUsecase) Login(ctx context.Context, input *entities.SiweVerifyInput) (*entities.AuthResponse, error) {
	result, err := u.VerifySignature(ctx, input.Message, input.Signature)
	if err != nil {
		u.countLogin("rejected")
		return nil, err
	}

	user, err := u.findOrCreateUser(ctx, result.Address)
	if err != nil {
		u.countLogin("error")
		return nil, err
	}

	pair, err := u.jwtService.GenerateTokenPair(user.ID, user.EthereumAddress, string(user.Role))
	if err != nil {
		logger.Error(ctx, "failed to generate token pair", zap.Error(err))
		u.countLogin("error")
		return nil, domainerrors.InternalError(err)
	}

	u.countLogin("success")
	return &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
	}, nil
}

// VerifySignature checks the signature and challenge structure of a SIWE
// message. The nonce is consumed as soon as it is checked, so a message that
// fails a later gate cannot be replayed.
func (u *SiweUsecase) VerifySignature(ctx context.Context, message, signature string) (*entities.SiweResult, error) {
	recovered, err := recoverSigner(message, signature)
	if err != nil {
		return nil, domainerrors.VerificationError("could not recover signer from signature")
	}

	challenge := parseSiweMessage(message)
	if challenge.Address == "" {
		return nil, domainerrors.VerificationError("could not parse address from message")
	}
	if challenge.Nonce == "" {
		return nil, domainerrors.VerificationError("could not parse nonce from message")
	}

	if !strings.EqualFold(recovered, challenge.Address) {
		return nil, domainerrors.VerificationError("recovered address does not match claimed address")
	}

	if !u.nonces.Consume(ctx, challenge.Nonce) {
		return nil, domainerrors.VerificationError("invalid or expired nonce")
	}

	if challenge.IssuedAt != "" {
		issuedAt, err := time.Parse(time.RFC3339, challenge.IssuedAt)
		if err != nil {
			return nil, domainerrors.VerificationError("could not parse Issued At timestamp")
		}
		if u.now().Sub(issuedAt) > issuedAtMaxAge {
			return nil, domainerrors.VerificationError("message too old")
		}
	}

	return &entities.SiweResult{
		Address: NormalizeAddress(recovered),
		ChainID: challenge.ChainID,
	}, nil
}

// findOrCreateUser looks up the wallet's account, provisioning one with a
// pseudo-email on first login. The very first account becomes the admin.
func (u *SiweUsecase) findOrCreateUser(ctx context.Context, address string) (*entities.User, error) {
	user, err := u.userRepo.GetByEthereumAddress(ctx, address)
	if err == nil {
		return user, nil
	}
	if err != domainerrors.ErrNotFound {
		logger.Error(ctx, "failed to look up wallet account", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	total, err := u.userRepo.Count(ctx)
	if err != nil {
		logger.Error(ctx, "failed to count users", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	role := entities.UserRoleUser
	if total == 0 {
		role = entities.UserRoleAdmin
	}

	display := shortAddress(address)
	user = &entities.User{
		Email:           fmt.Sprintf("%s@%s", strings.ToLower(address[2:8]), pseudoEmailDomain),
		Username:        display,
		Name:            display,
		Role:            role,
		Provider:        entities.AuthProviderSiwe,
		EthereumAddress: address,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		logger.Error(ctx, "failed to create wallet account", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "new wallet account created", zap.String("address", address))
	return user, nil
}

func (u *SiweUsecase) countLogin(outcome string) {
	if u.metrics != nil {
		u.metrics.SiweLoginsTotal.WithLabelValues(outcome).Inc()
	}
}

// recoverSigner recovers the address that personal-signed the message.
func recoverSigner(message, signature string) (string, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return "", err
	}
	if len(sig) != crypto.SignatureLength {
		return "", fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}

	// Wallets produce V as 27/28; SigToPub expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return "", err
	}
	return crypto.PubkeyToAddress(*pub).Hex(), nil
}

// parseSiweMessage extracts the challenge fields from a SIWE message. Line
// two carries the claimed address; the remaining fields are "Key: value"
// lines anywhere in the body.
func parseSiweMessage(message string) *entities.SiweChallenge {
	challenge := &entities.SiweChallenge{}

	lines := strings.Split(message, "\n")
	if len(lines) >= 2 {
		challenge.Address = strings.TrimSpace(lines[1])
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "Nonce: "):
			challenge.Nonce = strings.TrimSpace(line[len("Nonce: "):])
		case strings.HasPrefix(line, "Chain ID: "):
			if id, err := strconv.ParseInt(strings.TrimSpace(line[len("Chain ID: "):]), 10, 64); err == nil {
				challenge.ChainID = &id
			}
		case strings.HasPrefix(line, "URI: "):
			challenge.URI = strings.TrimSpace(line[len("URI: "):])
		case strings.HasPrefix(line, "Issued At: "):
			challenge.IssuedAt = strings.TrimSpace(line[len("Issued At: "):])
		}
	}
	return challenge
}

// shortAddress renders a checksummed address as "0x1234...abcd".
func shortAddress(address string) string {
	if len(address) < 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
