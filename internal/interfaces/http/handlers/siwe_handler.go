package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"plumise.backend/internal/domain/entities"
	domainerrors "plumise.backend/internal/domain/errors"
	"plumise.backend/internal/interfaces/http/response"
)

type SiweService interface {
	IssueNonce(ctx context.Context) (string, error)
	Login(ctx context.Context, input *entities.SiweVerifyInput) (*entities.AuthResponse, error)
}

// SiweHandler handles wallet login endpoints
type SiweHandler struct {
	siweUsecase SiweService
}

// NewSiweHandler creates a new SIWE handler
func NewSiweHandler(siweUsecase SiweService) *SiweHandler {
	return &SiweHandler{siweUsecase: siweUsecase}
}

// GetNonce issues a fresh login nonce
// GET /api/v1/auth/siwe/nonce
func (h *SiweHandler) GetNonce(c *gin.Context) {
	nonce, err := h.siweUsecase.IssueNonce(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"nonce": nonce})
}

// Verify checks a signed message and issues a session
// POST /api/v1/auth/siwe/verify
func (h *SiweHandler) Verify(c *gin.Context) {
	var input entities.SiweVerifyInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("message and signature are required"))
		return
	}

	authResponse, err := h.siweUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, authResponse)
}
