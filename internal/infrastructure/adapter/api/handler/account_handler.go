package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	accountUseCase "github.com/creatorhub/token-ledger/internal/domain/usecase/account"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/api/dto"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *accountUseCase.Service
	logger         coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(accountService *accountUseCase.Service, logger coreport.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// GetBalance handles the GET /account/{accountId}/balance endpoint
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID := c.Param("accountId")

	snapshot, err := h.accountService.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"account_id": accountID})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID:      snapshot.AccountID,
		Balance:        snapshot.Balance,
		TotalEarned:    snapshot.TotalEarned,
		TotalSpent:     snapshot.TotalSpent,
		TotalPurchased: snapshot.TotalPurchased,
	})
}

// EnsureAccount handles the POST /account/{accountId}/ensure endpoint
func (h *AccountHandler) EnsureAccount(c *gin.Context) {
	accountID := c.Param("accountId")

	if err := h.accountService.EnsureAccount(c.Request.Context(), accountID); err != nil {
		respondError(c, h.logger, err, map[string]any{"account_id": accountID})
		return
	}

	c.JSON(http.StatusOK, dto.EnsureAccountResponse{AccountID: accountID})
}

// Credit handles the POST /account/{accountId}/credit endpoint. Credits
// tokens bought with real money, or returns tokens as a refund.
func (h *AccountHandler) Credit(c *gin.Context) {
	accountID := c.Param("accountId")

	var req dto.CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var snapshot *accountUseCase.BalanceSnapshot
	var err error
	if req.Refund {
		snapshot, err = h.accountService.Refund(c.Request.Context(), accountID, req.Amount, req.ReferenceID)
	} else {
		snapshot, err = h.accountService.CreditPurchase(c.Request.Context(), accountID, req.Amount, req.ReferenceID)
	}
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"account_id": accountID,
			"amount":     req.Amount,
			"refund":     req.Refund,
		})
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID:      snapshot.AccountID,
		Balance:        snapshot.Balance,
		TotalEarned:    snapshot.TotalEarned,
		TotalSpent:     snapshot.TotalSpent,
		TotalPurchased: snapshot.TotalPurchased,
	})
}

// GetStatement handles the GET /account/{accountId}/statement endpoint
func (h *AccountHandler) GetStatement(c *gin.Context) {
	accountID := c.Param("accountId")

	limit := 0
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err == nil {
			limit = parsed
		}
	}

	entries, err := h.accountService.GetStatement(c.Request.Context(), accountID, limit)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"account_id": accountID})
		return
	}

	response := dto.StatementResponse{
		AccountID: accountID,
		Entries:   make([]dto.StatementEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		response.Entries = append(response.Entries, dto.StatementEntry{
			EntryID:     entry.ID,
			Amount:      entry.Amount,
			Kind:        string(entry.Kind),
			ReferenceID: entry.ReferenceID,
			CreatedAt:   entry.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, response)
}

// Reconcile handles the GET /account/{accountId}/reconcile endpoint
func (h *AccountHandler) Reconcile(c *gin.Context) {
	accountID := c.Param("accountId")

	report, err := h.accountService.Reconcile(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"account_id": accountID})
		return
	}

	c.JSON(http.StatusOK, dto.ReconciliationResponse{
		AccountID: report.AccountID,
		Balance:   report.Balance,
		EntrySum:  report.EntrySum,
		Balanced:  report.Reconciled,
	})
}
