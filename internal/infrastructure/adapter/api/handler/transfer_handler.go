package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	ledgerUseCase "github.com/creatorhub/token-ledger/internal/domain/usecase/ledger"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/api/dto"
)

// TransferHandler handles direct transfer HTTP requests
type TransferHandler struct {
	transferService *ledgerUseCase.Service
	feeBps          int
	logger          coreport.Logger
}

// NewTransferHandler creates a new transfer handler instance. feeBps is the
// platform commission applied to every transfer through this surface.
func NewTransferHandler(transferService *ledgerUseCase.Service, feeBps int, logger coreport.Logger) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
		feeBps:          feeBps,
		logger:          logger,
	}
}

// Transfer handles the POST /transfer endpoint
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.transferService.Transfer(c.Request.Context(), ledgerUseCase.TransferRequest{
		PayerID:     req.PayerID,
		PayeeID:     req.PayeeID,
		Amount:      req.Amount,
		Kind:        ledgerUseCase.TransferKind(req.Kind),
		ReferenceID: req.ReferenceID,
		FeeBps:      h.feeBps,
	})
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"payer_id": req.PayerID,
			"payee_id": req.PayeeID,
			"amount":   req.Amount,
			"kind":     req.Kind,
		})
		return
	}

	c.JSON(http.StatusOK, dto.TransferResponse{
		PayerID:      req.PayerID,
		PayeeID:      req.PayeeID,
		Amount:       req.Amount,
		Fee:          result.Fee,
		PayerBalance: result.PayerBalance,
		PayeeBalance: result.PayeeBalance,
		EntryIDs:     result.EntryIDs,
		CompletedAt:  result.CompletedAt,
	})
}
