package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/whatsoo/backend/internal/cache"
	"github.com/whatsoo/backend/internal/model"
	"github.com/whatsoo/backend/internal/service"
	"github.com/whatsoo/backend/internal/token"
)

// Stable machine-readable error codes. Client-fault codes carry safe
// messages; server-fault responses stay generic and the detail goes to
// the log only.
const (
	codeValidation       = "VALIDATION_ERROR"
	codeChallengeFailed  = "AUTH_CHALLENGE_FAILED"
	codeCredentialBad    = "CREDENTIAL_MISMATCH"
	codeMissingToken     = "MISSING_TOKEN"
	codeInvalidToken     = "INVALID_TOKEN"
	codeConflict         = "CONFLICT"
	codeCacheUnavailable = "CACHE_UNAVAILABLE"
	codeStoreUnavailable = "STORE_UNAVAILABLE"
	codeTokenError       = "TOKEN_ERROR"
	codeServerError      = "SERVER_ERROR"
)

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Code:    codeValidation,
			Message: "invalid input",
		})
	case errors.Is(err, service.ErrChallengeFailed):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Code:    codeChallengeFailed,
			Message: "verification failed",
		})
	case errors.Is(err, service.ErrCredentialMismatch):
		// Same body for wrong password and unknown email.
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{
			Code:    codeCredentialBad,
			Message: "invalid email or password",
		})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Code:    codeConflict,
			Message: "already exists",
		})
	case errors.Is(err, cache.ErrUnavailable):
		slog.Error("code cache unavailable", "err", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    codeCacheUnavailable,
			Message: "service temporarily unavailable",
		})
	case errors.Is(err, service.ErrStoreUnavailable):
		slog.Error("user store unavailable", "err", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    codeStoreUnavailable,
			Message: "service temporarily unavailable",
		})
	case errors.Is(err, token.ErrSigning):
		slog.Error("token signing failed", "err", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    codeTokenError,
			Message: "internal error",
		})
	default:
		slog.Error("unhandled error", "err", err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Code:    codeServerError,
			Message: "internal error",
		})
	}
}
