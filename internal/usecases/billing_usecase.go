package usecases

import (
	"context"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"plumise.backend/internal/config"
	"plumise.backend/internal/domain/entities"
	domainerrors "plumise.backend/internal/domain/errors"
	"plumise.backend/internal/domain/repositories"
	"plumise.backend/internal/metrics"
	"plumise.backend/pkg/logger"
	"plumise.backend/pkg/utils"
)

// creditContextPrefix tags ledger entries created by plan purchases.
const creditContextPrefix = "plum-plan:"

// ChainOracle is the read-only view of the chain the pipeline verifies
// against. Lookups return (nil, nil) for hashes the chain does not know.
type ChainOracle interface {
	GetTransaction(ctx context.Context, txHash string) (*entities.ChainTransaction, error)
	GetTransactionReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// BillingUsecase handles plan payments: the catalog, account state, the
// verification pipeline, and payment history.
type BillingUsecase struct {
	catalog       *PlanCatalog
	entitlements  *EntitlementResolver
	userRepo      repositories.UserRepository
	paymentRepo   repositories.PlanPaymentRepository
	balanceRepo   repositories.BalanceRepository
	ledgerRepo    repositories.LedgerTransactionRepository
	uow           repositories.UnitOfWork
	metrics       *metrics.Metrics
	paymentConfig func() config.PaymentConfig
	oracleFor     func(rpcURL string) (ChainOracle, error)
}

// NewBillingUsecase creates a new billing usecase. paymentConfig and
// oracleFor default to the environment loader and a live RPC client factory;
// tests inject their own.
func NewBillingUsecase(
	catalog *PlanCatalog,
	entitlements *EntitlementResolver,
	userRepo repositories.UserRepository,
	paymentRepo repositories.PlanPaymentRepository,
	balanceRepo repositories.BalanceRepository,
	ledgerRepo repositories.LedgerTransactionRepository,
	uow repositories.UnitOfWork,
	m *metrics.Metrics,
	paymentConfig func() config.PaymentConfig,
	oracleFor func(rpcURL string) (ChainOracle, error),
) *BillingUsecase {
	if paymentConfig == nil {
		paymentConfig = config.LoadPayment
	}
	return &BillingUsecase{
		catalog:       catalog,
		entitlements:  entitlements,
		userRepo:      userRepo,
		paymentRepo:   paymentRepo,
		balanceRepo:   balanceRepo,
		ledgerRepo:    ledgerRepo,
		uow:           uow,
		metrics:       m,
		paymentConfig: paymentConfig,
		oracleFor:     oracleFor,
	}
}

// Plans returns the public catalog with the secret-free payment parameters.
func (u *BillingUsecase) Plans(ctx context.Context) *entities.PlanList {
	return &entities.PlanList{
		Plans:   u.catalog.List(),
		Payment: u.publicPaymentParams(),
	}
}

// Me returns the authenticated user's billing state.
func (u *BillingUsecase) Me(ctx context.Context, userID uuid.UUID) (*entities.AccountState, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.NotFound("user not found")
		}
		logger.Error(ctx, "failed to load user", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	balance, err := u.balanceRepo.GetCredits(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to load balance", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	entitlement := u.entitlements.Resolve(user.EthereumAddress)
	return &entities.AccountState{
		WalletAddress: entitlement.WalletAddress,
		BillingMode:   entitlement.BillingMode,
		IsAgentFree:   entitlement.IsAgentFree,
		Balance:       balance,
		Plans:         u.catalog.List(),
		Payment:       u.publicPaymentParams(),
	}, nil
}

// Payments returns the user's payment history, newest first.
func (u *BillingUsecase) Payments(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]*entities.PlanPayment, utils.PaginationMeta, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	payments, total, err := u.paymentRepo.GetByUserID(ctx, userID, limit, params.CalculateOffset())
	if err != nil {
		logger.Error(ctx, "failed to load payment history", zap.Error(err))
		return nil, utils.PaginationMeta{}, domainerrors.InternalError(err)
	}
	return payments, utils.CalculateMeta(int64(total), params.Page, limit), nil
}

// VerifyPayment runs the full verification pipeline for a claimed
// transaction hash. Gates short-circuit in order; the unique index on
// tx_hash is the final arbiter should two submissions race past the
// duplicate pre-check.
func (u *BillingUsecase) VerifyPayment(ctx context.Context, userID uuid.UUID, input *entities.VerifyPaymentInput) (*entities.VerifyPaymentResponse, error) {
	started := time.Now()
	resp, err := u.verifyPayment(ctx, userID, input)
	u.observeVerification(input.PlanID, started, err)
	return resp, err
}

func (u *BillingUsecase) verifyPayment(ctx context.Context, userID uuid.UUID, input *entities.VerifyPaymentInput) (*entities.VerifyPaymentResponse, error) {
	if input == nil || input.PlanID == "" || input.TxHash == "" {
		return nil, domainerrors.BadRequest("planId and txHash are required")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.BadRequest("wallet account is required for plan payments")
		}
		logger.Error(ctx, "failed to load user", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}
	wallet := NormalizeAddress(user.EthereumAddress)
	if wallet == "" {
		return nil, domainerrors.BadRequest("wallet account is required for plan payments")
	}

	plan := u.catalog.Get(input.PlanID)
	if plan == nil {
		return nil, domainerrors.NotFound("unknown plan: " + input.PlanID)
	}

	cfg := u.paymentConfig()
	if !cfg.Configured() {
		return nil, domainerrors.NewAppError(
			http.StatusServiceUnavailable,
			domainerrors.CodeUnavailable,
			"payment verification is not configured: missing RPC URL or treasury wallet",
			domainerrors.ErrPaymentNotConfigured,
		)
	}

	txHash := strings.ToLower(strings.TrimSpace(input.TxHash))
	if _, err := u.paymentRepo.GetByTxHash(ctx, txHash); err == nil {
		return nil, domainerrors.Conflict("this transaction hash was already claimed")
	} else if err != domainerrors.ErrNotFound {
		logger.Error(ctx, "failed to check for existing payment", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	oracle, err := u.oracleFor(cfg.RPCURL)
	if err != nil {
		logger.Error(ctx, "failed to reach chain RPC", zap.Error(err))
		return nil, domainerrors.Unavailable("chain RPC endpoint is unreachable")
	}

	rpcStarted := time.Now()
	tx, err := oracle.GetTransaction(ctx, txHash)
	u.observeRPC("getTransaction", rpcStarted)
	if err != nil {
		logger.Error(ctx, "transaction lookup failed", zap.Error(err), zap.String("txHash", txHash))
		return nil, domainerrors.Unavailable("chain RPC endpoint is unreachable")
	}
	rpcStarted = time.Now()
	receipt, err := oracle.GetTransactionReceipt(ctx, txHash)
	u.observeRPC("getTransactionReceipt", rpcStarted)
	if err != nil {
		logger.Error(ctx, "receipt lookup failed", zap.Error(err), zap.String("txHash", txHash))
		return nil, domainerrors.Unavailable("chain RPC endpoint is unreachable")
	}
	if tx == nil || receipt == nil {
		return nil, domainerrors.NotFound("transaction not found or not mined yet")
	}

	if !receipt.Succeeded {
		return nil, domainerrors.InvalidPayment("transaction failed on-chain")
	}

	txFrom := NormalizeAddress(tx.From)
	if txFrom == "" || txFrom != wallet {
		return nil, domainerrors.Forbidden("transaction sender does not match the authenticated wallet")
	}

	txTo := NormalizeAddress(tx.To)
	if txTo == "" || txTo != cfg.TreasuryAddress {
		return nil, domainerrors.InvalidPayment("transaction receiver does not match the configured treasury wallet")
	}

	// Best effort: only enforced when both sides are known.
	if cfg.ChainID != nil && tx.ChainID != nil && tx.ChainID.Int64() != *cfg.ChainID {
		return nil, domainerrors.InvalidPayment("transaction chain mismatch")
	}

	minimumWei, ok := new(big.Int).SetString(plan.AmountWei, 10)
	if !ok {
		logger.Error(ctx, "plan has unparseable wei amount", zap.String("plan", plan.ID), zap.String("wei", plan.AmountWei))
		return nil, domainerrors.InternalError(domainerrors.ErrInvalidInput)
	}
	if tx.Value == nil || tx.Value.Cmp(minimumWei) < 0 {
		return nil, domainerrors.InvalidPayment("insufficient payment value, required at least " + plan.Amount + " PLM")
	}

	rpcStarted = time.Now()
	latest, err := oracle.LatestBlockNumber(ctx)
	u.observeRPC("getBlockNumber", rpcStarted)
	if err != nil {
		logger.Error(ctx, "latest block lookup failed", zap.Error(err))
		return nil, domainerrors.Unavailable("chain RPC endpoint is unreachable")
	}
	confirmations := int64(latest) - int64(receipt.BlockNumber) + 1
	if confirmations < int64(cfg.MinConfirmations) {
		return nil, domainerrors.InvalidPayment("not enough confirmations")
	}

	record := &entities.PlanPayment{
		ID:             utils.GenerateUUIDv7(),
		UserID:         userID,
		WalletAddress:  wallet,
		TxHash:         txHash,
		PlanID:         plan.ID,
		PlanLabel:      plan.Label,
		PaidAmount:     plan.Amount,
		PaidWei:        tx.Value.String(),
		CreditsGranted: plan.CreditsGranted,
		BlockNumber:    null.Int64From(int64(receipt.BlockNumber)),
		Status:         entities.PlanPaymentStatusConfirmed,
	}
	if tx.ChainID != nil {
		record.ChainID = null.Int64From(tx.ChainID.Int64())
	} else if cfg.ChainID != nil {
		record.ChainID = null.Int64From(*cfg.ChainID)
	}

	if err := u.paymentRepo.Create(ctx, record); err != nil {
		if err == domainerrors.ErrAlreadyExists {
			return nil, domainerrors.Conflict("this transaction hash was already claimed")
		}
		logger.Error(ctx, "failed to persist payment record", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	// Credit strictly after the record is durable: a crash here leaves a
	// confirmed record without a ledger entry, which reconciliation can
	// repair. The ledger write and the balance bump commit together.
	var balance float64
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.ledgerRepo.Create(txCtx, &entities.LedgerTransaction{
			ID:         utils.GenerateUUIDv7(),
			UserID:     userID,
			TokenType:  entities.TokenTypeCredits,
			RawAmount:  plan.CreditsGranted,
			TokenValue: float64(plan.CreditsGranted),
			Context:    creditContextPrefix + plan.ID,
			CreatedAt:  time.Now(),
		}); err != nil {
			return err
		}
		var creditErr error
		balance, creditErr = u.balanceRepo.AddCredits(txCtx, userID, float64(plan.CreditsGranted))
		return creditErr
	})
	if err != nil {
		logger.Error(ctx, "failed to credit balance after payment", zap.Error(err),
			zap.String("txHash", txHash), zap.String("plan", plan.ID))
		return nil, domainerrors.InternalError(err)
	}

	if u.metrics != nil {
		u.metrics.CreditsGrantedTotal.WithLabelValues(plan.ID).Add(float64(plan.CreditsGranted))
	}
	logger.Info(ctx, "payment verified and credits added",
		zap.String("txHash", txHash), zap.String("plan", plan.ID),
		zap.String("wallet", wallet), zap.Int64("credits", plan.CreditsGranted))

	return &entities.VerifyPaymentResponse{
		Plan:    plan,
		TxHash:  txHash,
		Balance: balance,
	}, nil
}

func (u *BillingUsecase) publicPaymentParams() *entities.PaymentParams {
	cfg := u.paymentConfig()
	return &entities.PaymentParams{
		ChainID:          cfg.ChainID,
		TreasuryAddress:  cfg.TreasuryAddress,
		MinConfirmations: cfg.MinConfirmations,
	}
}

// observeRPC records the latency of a single oracle call.
func (u *BillingUsecase) observeRPC(method string, started time.Time) {
	if u.metrics == nil {
		return
	}
	u.metrics.RPCCallDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())
}

func (u *BillingUsecase) observeVerification(planID string, started time.Time, err error) {
	if u.metrics == nil {
		return
	}
	outcome := "verified"
	if err != nil {
		outcome = "error"
		if appErr, ok := err.(*domainerrors.AppError); ok {
			outcome = strings.ToLower(appErr.Code)
		}
	}
	if planID == "" {
		planID = "unknown"
	}
	u.metrics.PaymentVerificationsTotal.WithLabelValues(planID, outcome).Inc()
	u.metrics.VerificationDuration.Observe(time.Since(started).Seconds())
}
