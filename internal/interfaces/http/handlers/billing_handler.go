package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"plumise.backend/internal/domain/entities"
	domainerrors "plumise.backend/internal/domain/errors"
	"plumise.backend/internal/interfaces/http/middleware"
	"plumise.backend/internal/interfaces/http/response"
	"plumise.backend/pkg/utils"
)

type BillingService interface {
	Plans(ctx context.Context) *entities.PlanList
	Me(ctx context.Context, userID uuid.UUID) (*entities.AccountState, error)
	VerifyPayment(ctx context.Context, userID uuid.UUID, input *entities.VerifyPaymentInput) (*entities.VerifyPaymentResponse, error)
	Payments(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]*entities.PlanPayment, utils.PaginationMeta, error)
}

type UsageService interface {
	Report(ctx context.Context, userID uuid.UUID, from, to time.Time) (*entities.UsageReport, error)
}

// BillingHandler handles billing endpoints
type BillingHandler struct {
	billingUsecase BillingService
	usageUsecase   UsageService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingUsecase BillingService, usageUsecase UsageService) *BillingHandler {
	return &BillingHandler{
		billingUsecase: billingUsecase,
		usageUsecase:   usageUsecase,
	}
}

// GetPlans returns the public plan catalog
// GET /api/v1/billing/plans
func (h *BillingHandler) GetPlans(c *gin.Context) {
	response.Success(c, http.StatusOK, h.billingUsecase.Plans(c.Request.Context()))
}

// GetMe returns the authenticated user's billing state
// GET /api/v1/billing/me
func (h *BillingHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	state, err := h.billingUsecase.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, state)
}

// GetUsage returns aggregated token and credit usage for a date range
// GET /api/v1/billing/usage?from=...&to=...
func (h *BillingHandler) GetUsage(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	from, ok := parseRangeDate(c.Query("from"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid `from` date. Use an ISO date string."))
		return
	}
	to, ok := parseRangeDate(c.Query("to"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid `to` date. Use an ISO date string."))
		return
	}

	report, err := h.usageUsecase.Report(c.Request.Context(), userID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// VerifyPayment runs the payment verification pipeline
// POST /api/v1/billing/payments/verify
func (h *BillingHandler) VerifyPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	var input entities.VerifyPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("planId and txHash are required"))
		return
	}

	result, err := h.billingUsecase.VerifyPayment(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Payment verified and credits added.",
		"plan":    result.Plan,
		"txHash":  result.TxHash,
		"balance": result.Balance,
	})
}

// GetPayments returns the user's payment history
// GET /api/v1/billing/payments?page=1&limit=20
func (h *BillingHandler) GetPayments(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	params := utils.GetPaginationParams(page, limit)

	payments, meta, err := h.billingUsecase.Payments(c.Request.Context(), userID, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"payments":   payments,
		"pagination": meta,
	})
}

// parseRangeDate parses an optional query date. An empty value is valid and
// yields the zero time so the usecase applies its default window.
func parseRangeDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
