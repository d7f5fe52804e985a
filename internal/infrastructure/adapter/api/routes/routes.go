package routes

import (
	"github.com/gin-gonic/gin"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/api/middleware"
)

// SetupRoutes configures all the routes for the API
func SetupRoutes(
	router *gin.Engine,
	accountHandler *handler.AccountHandler,
	transferHandler *handler.TransferHandler,
	purchaseHandler *handler.PurchaseHandler,
	healthHandler *handler.HealthHandler,
) {
	router.GET("/health", healthHandler.Check)

	// Account routes
	accountRoutes := router.Group("/account")
	{
		accountRoutes.GET("/:accountId/balance", accountHandler.GetBalance)
		accountRoutes.GET("/:accountId/statement", accountHandler.GetStatement)
		accountRoutes.GET("/:accountId/reconcile", accountHandler.Reconcile)
		accountRoutes.POST("/:accountId/ensure", accountHandler.EnsureAccount)
		accountRoutes.POST("/:accountId/credit", accountHandler.Credit)
	}

	// Transfer route (tips and direct payments)
	router.POST("/transfer", transferHandler.Transfer)

	// Purchase routes (PPV unlocks and show tickets)
	router.POST("/purchase", purchaseHandler.Purchase)
	router.POST("/unlock/viewed", purchaseHandler.MarkViewed)

	// Item lifecycle routes
	itemRoutes := router.Group("/item")
	{
		itemRoutes.POST("", purchaseHandler.CreateItem)
		itemRoutes.GET("/:itemId", purchaseHandler.GetItem)
		itemRoutes.POST("/:itemId/status", purchaseHandler.ChangeStatus)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
}
