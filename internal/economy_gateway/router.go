package economy_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/convoy-settlement-engine/internal/economy_gateway/handler"
	"github.com/convoy-settlement-engine/internal/economy_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	actorHandler *handler.ActorHandler,
	ledgerHandler *handler.LedgerHandler,
	jobHandler *handler.JobHandler,
	subsidyHandler *handler.SubsidyHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Actor operations
		actors := v1.Group("/actors")
		{
			actors.GET("/:id", actorHandler.GetByID)
			actors.GET("/:id/accounts", actorHandler.GetAccounts)
			actors.GET("/:id/history", actorHandler.GetHistory)
		}

		// Ledger operations
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:id/statement", ledgerHandler.GetStatement)
		}
		v1.GET("/treasury", ledgerHandler.GetTreasuryBalance)

		// Delivery-job operations
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", jobHandler.List)
			jobs.GET("/:id", jobHandler.GetByID)
			jobs.GET("/:id/deliveries", jobHandler.GetDeliveries)
		}

		// Subsidy rule and zone operations
		subsidies := v1.Group("/subsidies")
		{
			subsidies.GET("/rules", subsidyHandler.ListRules)
			subsidies.GET("/zones", subsidyHandler.ListZones)
			subsidies.GET("/zones/:id", subsidyHandler.GetZoneByID)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
