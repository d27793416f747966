package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paydail/paydail-service/internal/infrastructure/cache"
	"github.com/paydail/paydail-service/internal/infrastructure/database"
	"github.com/paydail/paydail-service/pkg/logger"
)

// HealthHandlers serves liveness, readiness and metrics endpoints.
type HealthHandlers struct {
	db    *sqlx.DB
	redis cache.RedisClient
	log   *logger.Logger
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(db *sqlx.DB, redis cache.RedisClient, log *logger.Logger) *HealthHandlers {
	return &HealthHandlers{db: db, redis: redis, log: log}
}

// Health reports the status of all dependencies
func (h *HealthHandlers) Health(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := database.HealthCheck(h.db); err != nil {
		checks["database"] = "unhealthy"
		healthy = false
	} else {
		checks["database"] = "healthy"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()); err != nil {
			checks["redis"] = "unhealthy"
			healthy = false
		} else {
			checks["redis"] = "healthy"
		}
	}

	status := http.StatusOK
	overall := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready reports whether the service can take traffic
func (h *HealthHandlers) Ready(c *gin.Context) {
	if err := database.HealthCheck(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Live reports process liveness
func (h *HealthHandlers) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Metrics serves Prometheus metrics
func (h *HealthHandlers) Metrics(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}
