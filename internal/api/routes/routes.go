package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/paydail/paydail-service/internal/api/handlers"
	"github.com/paydail/paydail-service/internal/api/middleware"
	"github.com/paydail/paydail-service/internal/infrastructure/config"
	"github.com/paydail/paydail-service/pkg/logger"
	"github.com/paydail/paydail-service/pkg/tracing"
)

// Handlers bundles everything SetupRoutes wires into the router.
type Handlers struct {
	Health  *handlers.HealthHandlers
	Webhook *handlers.WebhookHandlers
	Wallet  *handlers.WalletHandlers
	Market  *handlers.MarketHandlers
}

// SetupRoutes configures all application routes
func SetupRoutes(cfg *config.Config, log *logger.Logger, h Handlers) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware, order matters
	router.Use(tracing.HTTPMiddleware())
	router.Use(middleware.RequestID())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimit())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(cfg.Server.RateLimitPerMin))

	// Health checks and metrics (no auth required)
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)
	router.GET("/live", h.Health.Live)
	router.GET("/metrics", h.Health.Metrics)

	v1 := router.Group("/api/v1")

	// Provider webhooks authenticate with a shared secret, not a JWT
	v1.POST("/webhooks/bitgo", h.Webhook.HandleTransfer)
	v1.GET("/webhooks/bitgo", h.Webhook.Ping)

	authed := v1.Group("")
	authed.Use(middleware.Authentication(cfg, log))
	authed.POST("/wallet/address", h.Wallet.DepositAddress)
	authed.GET("/markets", h.Market.Overview)

	return router
}
