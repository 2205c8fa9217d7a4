package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"plumise.backend/internal/domain/entities"
	domainerrors "plumise.backend/internal/domain/errors"
	"plumise.backend/internal/interfaces/http/middleware"
	"plumise.backend/pkg/utils"
)

// MockBillingService is a mock implementation of BillingService
type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) Plans(ctx context.Context) *entities.PlanList {
	args := m.Called(ctx)
	return args.Get(0).(*entities.PlanList)
}

func (m *MockBillingService) Me(ctx context.Context, userID uuid.UUID) (*entities.AccountState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccountState), args.Error(1)
}

func (m *MockBillingService) VerifyPayment(ctx context.Context, userID uuid.UUID, input *entities.VerifyPaymentInput) (*entities.VerifyPaymentResponse, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.VerifyPaymentResponse), args.Error(1)
}

func (m *MockBillingService) Payments(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]*entities.PlanPayment, utils.PaginationMeta, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, utils.PaginationMeta{}, args.Error(2)
	}
	return args.Get(0).([]*entities.PlanPayment), args.Get(1).(utils.PaginationMeta), args.Error(2)
}

// MockUsageService is a mock implementation of UsageService
type MockUsageService struct {
	mock.Mock
}

func (m *MockUsageService) Report(ctx context.Context, userID uuid.UUID, from, to time.Time) (*entities.UsageReport, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UsageReport), args.Error(1)
}

var billingTestUserID = uuid.MustParse("0198a1b2-0000-7000-8000-000000000001")

// newBillingRouter wires the handler behind a stub auth middleware so tests
// can exercise both authenticated and anonymous requests.
func newBillingRouter(billing *MockBillingService, usage *MockUsageService, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBillingHandler(billing, usage)
	r := gin.New()
	if authenticated {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.UserIDKey, billingTestUserID)
			c.Next()
		})
	}
	r.GET("/api/v1/billing/plans", h.GetPlans)
	r.GET("/api/v1/billing/me", h.GetMe)
	r.GET("/api/v1/billing/usage", h.GetUsage)
	r.POST("/api/v1/billing/payments/verify", h.VerifyPayment)
	r.GET("/api/v1/billing/payments", h.GetPayments)
	return r
}

func TestGetPlans(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)
	billing.On("Plans", mock.Anything).Return(&entities.PlanList{
		Plans: []*entities.Plan{{ID: "starter", Label: "Starter", Amount: "10", AmountWei: "10000000000000000000", CreditsGranted: 2000000}},
		Payment: &entities.PaymentParams{
			TreasuryAddress:  "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
			MinConfirmations: 3,
		},
	})

	w := httptest.NewRecorder()
	newBillingRouter(billing, usage, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/billing/plans", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "starter")
	assert.Contains(t, w.Body.String(), "10000000000000000000")
}

func TestGetMe(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)
	billing.On("Me", mock.Anything, billingTestUserID).Return(&entities.AccountState{
		WalletAddress: "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		BillingMode:   entities.BillingModePaid,
		IsAgentFree:   false,
		Balance:       1200,
	}, nil)

	w := httptest.NewRecorder()
	newBillingRouter(billing, usage, true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/billing/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"billingMode":"paid"`)
}

func TestGetMe_Unauthenticated(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)

	w := httptest.NewRecorder()
	newBillingRouter(billing, usage, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/billing/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	billing.AssertNotCalled(t, "Me", mock.Anything, mock.Anything)
}

func TestGetUsage_DefaultWindow(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)
	usage.On("Report", mock.Anything, billingTestUserID, time.Time{}, time.Time{}).
		Return(&entities.UsageReport{}, nil)

	w := httptest.NewRecorder()
	newBillingRouter(billing, usage, true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/billing/usage", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	usage.AssertExpectations(t)
}

func TestGetUsage_ExplicitRange(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	usage.On("Report", mock.Anything, billingTestUserID, from, to).
		Return(&entities.UsageReport{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/usage?from=2026-08-01&to=2026-08-15T00:00:00Z", nil)
	newBillingRouter(billing, usage, true).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	usage.AssertExpectations(t)
}

func TestGetUsage_InvalidDate(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/usage?from=not-a-date", nil)
	newBillingRouter(billing, usage, true).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	usage.AssertNotCalled(t, "Report", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_Success(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)
	billing.On("VerifyPayment", mock.Anything, billingTestUserID, mock.MatchedBy(func(input *entities.VerifyPaymentInput) bool {
		return input.PlanID == "pro" && input.TxHash == "0xabc"
	})).Return(&entities.VerifyPaymentResponse{
		Plan:    &entities.Plan{ID: "pro", Label: "Pro"},
		TxHash:  "0xabc",
		Balance: 12000000,
	}, nil)

	body, _ := json.Marshal(gin.H{"planId": "pro", "txHash": "0xabc"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/payments/verify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newBillingRouter(billing, usage, true).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Payment verified and credits added.", resp["message"])
	assert.Equal(t, "0xabc", resp["txHash"])
	assert.Equal(t, float64(12000000), resp["balance"])
}

func TestVerifyPayment_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown plan", domainerrors.NotFound("Unknown plan"), http.StatusNotFound, domainerrors.CodeNotFound},
		{"already processed", domainerrors.Conflict("This transaction has already been processed."), http.StatusConflict, domainerrors.CodeConflict},
		{"wrong sender", domainerrors.Forbidden("Transaction sender does not match your wallet."), http.StatusForbidden, domainerrors.CodeForbidden},
		{"insufficient value", domainerrors.InvalidPayment("Insufficient payment amount."), http.StatusBadRequest, domainerrors.CodeInvalidPayment},
		{"rpc down", domainerrors.Unavailable("Payment verification is not available right now."), http.StatusServiceUnavailable, domainerrors.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			billing := new(MockBillingService)
			usage := new(MockUsageService)
			billing.On("VerifyPayment", mock.Anything, billingTestUserID, mock.Anything).Return(nil, tt.err)

			body, _ := json.Marshal(gin.H{"planId": "pro", "txHash": "0xabc"})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/billing/payments/verify", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			newBillingRouter(billing, usage, true).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp["code"])
		})
	}
}

func TestGetPayments_Pagination(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)
	billing.On("Payments", mock.Anything, billingTestUserID, utils.PaginationParams{Page: 2, Limit: 5}).
		Return([]*entities.PlanPayment{{PlanID: "pro", TxHash: "0xabc"}}, utils.CalculateMeta(6, 2, 5), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/billing/payments?page=2&limit=5", nil)
	newBillingRouter(billing, usage, true).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "0xabc")
	assert.Contains(t, w.Body.String(), "pagination")
	billing.AssertExpectations(t)
}

func TestGetPayments_Defaults(t *testing.T) {
	billing := new(MockBillingService)
	usage := new(MockUsageService)
	billing.On("Payments", mock.Anything, billingTestUserID, utils.PaginationParams{Page: 1, Limit: 20}).
		Return([]*entities.PlanPayment{}, utils.CalculateMeta(0, 1, 20), nil)

	w := httptest.NewRecorder()
	newBillingRouter(billing, usage, true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/billing/payments", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	billing.AssertExpectations(t)
}
