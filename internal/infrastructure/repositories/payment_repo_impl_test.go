package repositories

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"plumise.backend/internal/domain/entities"
	domainerrors "plumise.backend/internal/domain/errors"
	"plumise.backend/pkg/utils"
)

func newTestPayment(userID, txHash string) *entities.PlanPayment {
	return &entities.PlanPayment{
		ID:             utils.GenerateUUIDv7(),
		UserID:         mustUUID(userID),
		WalletAddress:  "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		TxHash:         txHash,
		ChainID:        null.Int64From(97),
		PlanID:         "starter",
		PlanLabel:      "Starter",
		PaidAmount:     "10",
		PaidWei:        "10000000000000000000",
		CreditsGranted: 2000000,
		BlockNumber:    null.Int64From(123456),
		Status:         entities.PlanPaymentStatusConfirmed,
	}
}

func TestPlanPaymentRepository_CreateAndGetByTxHash(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlanPaymentRepository(db)
	ctx := context.Background()

	p := newTestPayment("11111111-1111-7111-8111-111111111111", "0xaaa111")
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByTxHash(ctx, "0xaaa111")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.UserID, got.UserID)
	assert.Equal(t, "starter", got.PlanID)
	assert.Equal(t, int64(2000000), got.CreditsGranted)
	assert.Equal(t, int64(97), got.ChainID.Int64)
	assert.Equal(t, int64(123456), got.BlockNumber.Int64)
	assert.Equal(t, entities.PlanPaymentStatusConfirmed, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestPlanPaymentRepository_GetByTxHashNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlanPaymentRepository(db)

	_, err := repo.GetByTxHash(context.Background(), "0xmissing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPlanPaymentRepository_DuplicateTxHash(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlanPaymentRepository(db)
	ctx := context.Background()

	first := newTestPayment("11111111-1111-7111-8111-111111111111", "0xdupe")
	require.NoError(t, repo.Create(ctx, first))

	// Same hash from a different user still collides on the unique index.
	second := newTestPayment("22222222-2222-7222-8222-222222222222", "0xdupe")
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestPlanPaymentRepository_GetByUserIDPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlanPaymentRepository(db)
	ctx := context.Background()

	userID := mustUUID("11111111-1111-7111-8111-111111111111")
	for i := 0; i < 5; i++ {
		p := newTestPayment(userID.String(), fmt.Sprintf("0xhash%d", i))
		require.NoError(t, repo.Create(ctx, p))
	}
	other := newTestPayment("22222222-2222-7222-8222-222222222222", "0xother")
	require.NoError(t, repo.Create(ctx, other))

	page, total, err := repo.GetByUserID(ctx, userID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, page, 2)
	for _, p := range page {
		assert.Equal(t, userID, p.UserID)
	}

	rest, total, err := repo.GetByUserID(ctx, userID, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Len(t, rest, 1)
}

func TestPlanPaymentRepository_NullableFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlanPaymentRepository(db)
	ctx := context.Background()

	p := newTestPayment("11111111-1111-7111-8111-111111111111", "0xnochain")
	p.ChainID = null.Int64{}
	p.BlockNumber = null.Int64{}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByTxHash(ctx, "0xnochain")
	require.NoError(t, err)
	assert.False(t, got.ChainID.Valid)
	assert.False(t, got.BlockNumber.Valid)
}
