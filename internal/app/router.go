package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"farebroker/internal/handler"
	"farebroker/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler   *handler.RideHandler
	WalletHandler *handler.WalletHandler
	PolicyHandler *handler.PolicyHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/assign", deps.RideHandler.AssignDriver)
			rides.POST("/:id/advance", deps.RideHandler.AdvanceRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/refund", deps.RideHandler.RetryRefund)
		}

		// Wallet routes.
		wallets := v1.Group("/wallets")
		{
			wallets.GET("/:userId", deps.WalletHandler.GetWallet)
			wallets.POST("/:userId/topup", deps.WalletHandler.Topup)
			wallets.POST("/:userId/withdraw", deps.WalletHandler.Withdraw)
		}

		// Policy routes.
		policies := v1.Group("/policies")
		{
			policies.GET("/active", deps.PolicyHandler.GetActivePolicy)
			policies.POST("", deps.PolicyHandler.SavePolicy)
		}
	}

	return router
}
