package errors_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	domainerrors "plumise.backend/internal/domain/errors"
)

func TestAppErrorMessage(t *testing.T) {
	err := domainerrors.NotFound("plan not found")
	assert.Equal(t, "plan not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, domainerrors.CodeNotFound, err.Code)
}

func TestAppErrorFallsBackToWrapped(t *testing.T) {
	wrapped := errors.New("boom")
	err := domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeInternal, "", wrapped)
	assert.Equal(t, "boom", err.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	err := domainerrors.Conflict("transaction hash already claimed")
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestConstructorStatuses(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, domainerrors.BadRequest("x").Status)
	assert.Equal(t, http.StatusBadRequest, domainerrors.InvalidPayment("x").Status)
	assert.Equal(t, http.StatusForbidden, domainerrors.Forbidden("x").Status)
	assert.Equal(t, http.StatusConflict, domainerrors.Conflict("x").Status)
	assert.Equal(t, http.StatusServiceUnavailable, domainerrors.Unavailable("x").Status)
	assert.Equal(t, http.StatusUnauthorized, domainerrors.VerificationError("x").Status)
}

func TestInvalidPaymentDistinctCode(t *testing.T) {
	assert.NotEqual(t, domainerrors.BadRequest("x").Code, domainerrors.InvalidPayment("x").Code)
}

func TestVerificationErrorCarriesReason(t *testing.T) {
	err := domainerrors.VerificationError("invalid or expired nonce")
	assert.Equal(t, "invalid or expired nonce", err.Error())
	assert.ErrorIs(t, err, domainerrors.ErrVerificationFailed)
}
