package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

// Pinger reports storage liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness checks
type HealthHandler struct {
	storage Pinger
	logger  coreport.Logger
}

// NewHealthHandler creates a new health handler. storage may be nil when the
// service runs on the in-memory adapter.
func NewHealthHandler(storage Pinger, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		logger:  logger,
	}
}

// Check handles the GET /health endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	status := "ok"
	storageStatus := "ok"
	code := http.StatusOK

	if h.storage != nil {
		if err := h.storage.Ping(c.Request.Context()); err != nil {
			h.logger.Error("Health check storage ping failed", map[string]any{
				"error": err.Error(),
			})
			status = "degraded"
			storageStatus = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":  status,
		"storage": storageStatus,
	})
}
