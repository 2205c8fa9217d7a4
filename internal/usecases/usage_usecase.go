package usecases

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"plumise.backend/internal/domain/entities"
	domainerrors "plumise.backend/internal/domain/errors"
	"plumise.backend/internal/domain/repositories"
	"plumise.backend/pkg/logger"
)

// agentFreeContextMarker tags ledger spends that were waived for allowlisted
// wallets.
const agentFreeContextMarker = ":agent-free"

// defaultUsageWindow is the report range when the caller gives no bounds.
const defaultUsageWindow = 7 * 24 * time.Hour

// UsageUsecase aggregates ledger transactions into a usage report.
type UsageUsecase struct {
	userRepo     repositories.UserRepository
	balanceRepo  repositories.BalanceRepository
	ledgerRepo   repositories.LedgerTransactionRepository
	entitlements *EntitlementResolver
	now          func() time.Time
}

// NewUsageUsecase creates a new usage usecase
func NewUsageUsecase(
	userRepo repositories.UserRepository,
	balanceRepo repositories.BalanceRepository,
	ledgerRepo repositories.LedgerTransactionRepository,
	entitlements *EntitlementResolver,
) *UsageUsecase {
	return &UsageUsecase{
		userRepo:     userRepo,
		balanceRepo:  balanceRepo,
		ledgerRepo:   ledgerRepo,
		entitlements: entitlements,
		now:          time.Now,
	}
}

// Report builds the usage report for a date range. Zero bounds default to
// the last seven days ending now.
func (u *UsageUsecase) Report(ctx context.Context, userID uuid.UUID, from, to time.Time) (*entities.UsageReport, error) {
	now := u.now()
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.Add(-defaultUsageWindow)
	}
	if from.After(to) {
		return nil, domainerrors.BadRequest("`from` must be earlier than `to`")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == domainerrors.ErrNotFound {
			return nil, domainerrors.NotFound("user not found")
		}
		logger.Error(ctx, "failed to load user", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	transactions, err := u.ledgerRepo.GetByUserInRange(ctx, userID, from, to)
	if err != nil {
		logger.Error(ctx, "failed to load ledger transactions", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	balance, err := u.balanceRepo.GetCredits(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to load balance", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	summary, byModel := summarizeUsage(transactions)
	entitlement := u.entitlements.Resolve(user.EthereumAddress)

	return &entities.UsageReport{
		Period:           entities.UsagePeriod{From: from, To: to},
		BillingMode:      entitlement.BillingMode,
		IsAgentFree:      entitlement.IsAgentFree,
		WalletAddress:    entitlement.WalletAddress,
		Summary:          summary,
		ByModel:          byModel,
		Balance:          balance,
		TransactionCount: len(transactions),
	}, nil
}

// summarizeUsage folds ledger entries into totals and a per-model breakdown
// sorted by total tokens descending.
func summarizeUsage(transactions []*entities.LedgerTransaction) (entities.UsageSummary, []entities.ModelUsage) {
	var summary entities.UsageSummary
	byModel := make(map[string]*entities.ModelUsage)

	for _, tx := range transactions {
		rawAmount := math.Abs(float64(tx.RawAmount))
		modelKey := tx.Model
		if modelKey == "" {
			modelKey = "unknown"
		}
		isAgentFree := strings.Contains(tx.Context, agentFreeContextMarker)

		stats, ok := byModel[modelKey]
		if !ok {
			stats = &entities.ModelUsage{Model: modelKey}
			byModel[modelKey] = stats
		}

		switch tx.TokenType {
		case entities.TokenTypePrompt:
			summary.PromptTokens += int64(rawAmount)
			stats.PromptTokens += int64(rawAmount)
		case entities.TokenTypeCompletion:
			summary.CompletionTokens += int64(rawAmount)
			stats.CompletionTokens += int64(rawAmount)
		}

		if tx.TokenValue < 0 {
			spent := -tx.TokenValue
			summary.SpentCredits += spent
			stats.SpentCredits += spent
			if isAgentFree {
				summary.WaivedCredits += spent
				stats.WaivedCredits += spent
			}
		} else if tx.TokenValue > 0 {
			summary.AddedCredits += tx.TokenValue
		}
	}

	summary.TotalTokens = summary.PromptTokens + summary.CompletionTokens
	summary.NetCredits = summary.AddedCredits - summary.SpentCredits

	models := make([]entities.ModelUsage, 0, len(byModel))
	for _, stats := range byModel {
		stats.TotalTokens = stats.PromptTokens + stats.CompletionTokens
		models = append(models, *stats)
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].TotalTokens != models[j].TotalTokens {
			return models[i].TotalTokens > models[j].TotalTokens
		}
		return models[i].Model < models[j].Model
	})

	return summary, models
}
