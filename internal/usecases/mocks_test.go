package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"plumise.backend/internal/domain/entities"
	"plumise.backend/pkg/utils"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEthereumAddress(ctx context.Context, address string) (*entities.User, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPlanPaymentRepository is a mock implementation of PlanPaymentRepository
type MockPlanPaymentRepository struct {
	mock.Mock
}

func (m *MockPlanPaymentRepository) Create(ctx context.Context, payment *entities.PlanPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPlanPaymentRepository) GetByTxHash(ctx context.Context, txHash string) (*entities.PlanPayment, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PlanPayment), args.Error(1)
}

func (m *MockPlanPaymentRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.PlanPayment, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*entities.PlanPayment), args.Int(1), args.Error(2)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetCredits(ctx context.Context, userID uuid.UUID) (float64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockBalanceRepository) AddCredits(ctx context.Context, userID uuid.UUID, delta float64) (float64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(float64), args.Error(1)
}

// MockLedgerTransactionRepository is a mock implementation of LedgerTransactionRepository
type MockLedgerTransactionRepository struct {
	mock.Mock
}

func (m *MockLedgerTransactionRepository) Create(ctx context.Context, tx *entities.LedgerTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerTransactionRepository) GetByUserInRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*entities.LedgerTransaction, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerTransaction), args.Error(1)
}

// MockChainOracle is a mock implementation of ChainOracle
type MockChainOracle struct {
	mock.Mock
}

func (m *MockChainOracle) GetTransaction(ctx context.Context, txHash string) (*entities.ChainTransaction, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChainTransaction), args.Error(1)
}

func (m *MockChainOracle) GetTransactionReceipt(ctx context.Context, txHash string) (*entities.ChainReceipt, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChainReceipt), args.Error(1)
}

func (m *MockChainOracle) LatestBlockNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

// fakeUnitOfWork runs the function without a real transaction.
type fakeUnitOfWork struct{}

func (f *fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeNonceStore is a deterministic nonce store for SIWE tests.
type fakeNonceStore struct {
	issued   []string
	next     string
	issueErr error
	consumed []string
	valid    map[string]bool
}

func newFakeNonceStore() *fakeNonceStore {
	return &fakeNonceStore{valid: make(map[string]bool)}
}

func (f *fakeNonceStore) Issue(_ context.Context) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	token := f.next
	if token == "" {
		token = "nonce-" + utils.GenerateUUIDv7().String()
	}
	f.issued = append(f.issued, token)
	f.valid[token] = true
	return token, nil
}

func (f *fakeNonceStore) Consume(_ context.Context, token string) bool {
	f.consumed = append(f.consumed, token)
	ok := f.valid[token]
	delete(f.valid, token)
	return ok
}
