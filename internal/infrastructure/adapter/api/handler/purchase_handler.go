package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	purchaseUseCase "github.com/creatorhub/token-ledger/internal/domain/usecase/purchase"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/api/dto"
)

// PurchaseHandler handles purchase and item lifecycle HTTP requests
type PurchaseHandler struct {
	purchaseService *purchaseUseCase.Service
	logger          coreport.Logger
}

// NewPurchaseHandler creates a new purchase handler instance
func NewPurchaseHandler(purchaseService *purchaseUseCase.Service, logger coreport.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		logger:          logger,
	}
}

// Purchase handles the POST /purchase endpoint
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.purchaseService.Purchase(c.Request.Context(), req.BuyerAccountID, req.ItemID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"buyer_account_id": req.BuyerAccountID,
			"item_id":          req.ItemID,
		})
		return
	}

	c.JSON(http.StatusOK, dto.PurchaseResponse{
		UnlockID:    result.UnlockID,
		ContentRef:  result.ContentRef,
		TokensSpent: result.TokensSpent,
		Free:        result.Free,
	})
}

// CreateItem handles the POST /item endpoint
func (h *PurchaseHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.purchaseService.CreateItem(c.Request.Context(), purchaseUseCase.CreateItemRequest{
		ItemID:            req.ItemID,
		OwnerAccountID:    req.OwnerAccountID,
		Kind:              entity.ItemKind(req.Kind),
		Price:             req.Price,
		EarlyBirdPrice:    req.EarlyBirdPrice,
		EarlyBirdDeadline: req.EarlyBirdDeadline,
		MaxQuantity:       req.MaxQuantity,
		ExpiresAt:         req.ExpiresAt,
		ContentRef:        req.ContentRef,
	})
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"item_id":  req.ItemID,
			"owner_id": req.OwnerAccountID,
		})
		return
	}

	c.JSON(http.StatusCreated, itemToResponse(item))
}

// GetItem handles the GET /item/{itemId} endpoint
func (h *PurchaseHandler) GetItem(c *gin.Context) {
	itemID := c.Param("itemId")

	item, err := h.purchaseService.GetItem(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, h.logger, err, map[string]any{"item_id": itemID})
		return
	}

	c.JSON(http.StatusOK, itemToResponse(item))
}

// ChangeStatus handles the POST /item/{itemId}/status endpoint
func (h *PurchaseHandler) ChangeStatus(c *gin.Context) {
	itemID := c.Param("itemId")

	var req dto.ChangeItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	err := h.purchaseService.ChangeItemStatus(c.Request.Context(), req.CallerAccountID, itemID, entity.ItemStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err, map[string]any{
			"item_id": itemID,
			"status":  req.Status,
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// MarkViewed handles the POST /unlock/viewed endpoint
func (h *PurchaseHandler) MarkViewed(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.purchaseService.MarkViewed(c.Request.Context(), req.BuyerAccountID, req.ItemID); err != nil {
		respondError(c, h.logger, err, map[string]any{
			"buyer_account_id": req.BuyerAccountID,
			"item_id":          req.ItemID,
		})
		return
	}

	c.Status(http.StatusNoContent)
}

func itemToResponse(item *entity.PurchasableItem) dto.ItemResponse {
	return dto.ItemResponse{
		ItemID:            item.ID,
		OwnerAccountID:    item.OwnerAccountID,
		Kind:              string(item.Kind),
		Price:             item.Price,
		EarlyBirdPrice:    item.EarlyBirdPrice,
		EarlyBirdDeadline: item.EarlyBirdDeadline,
		MaxQuantity:       item.MaxQuantity,
		ExpiresAt:         item.ExpiresAt,
		Status:            string(item.Status),
		SoldCount:         item.SoldCount,
		Revenue:           item.Revenue,
		CreatedAt:         item.CreatedAt,
	}
}
