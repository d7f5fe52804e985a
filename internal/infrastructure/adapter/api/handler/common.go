package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/api/dto"
)

// httpStatus maps a domain error to its HTTP status code
func httpStatus(err error) int {
	switch {
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case domainerr.IsInsufficientFundsError(err):
		return http.StatusPaymentRequired
	case domainerr.IsAlreadyUnlockedError(err):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrSoldOut):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, domainerr.ErrExpired):
		return http.StatusGone
	case errors.Is(err, domainerr.ErrNotPurchasable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainerr.ErrInvalidOperation),
		errors.Is(err, domainerr.ErrInvalidAccountID),
		errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs a failed request and writes the matching error DTO
func respondError(c *gin.Context, logger coreport.Logger, err error, fields map[string]any) {
	status := httpStatus(err)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["error"] = err.Error()
	fields["path"] = c.Request.URL.Path

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", fields)
	} else {
		logger.Warn("Request rejected", fields)
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "Internal server error"
	}

	c.JSON(status, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: message,
	})
}

// bindError writes a 400 for malformed request bodies
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
		Message: "Invalid request format: " + err.Error(),
	})
}
