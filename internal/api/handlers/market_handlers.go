package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paydail/paydail-service/internal/domain/services/market"
	"github.com/paydail/paydail-service/pkg/logger"
)

// MarketHandlers serves market data for the supported assets.
type MarketHandlers struct {
	markets *market.Service
	log     *logger.Logger
}

// NewMarketHandlers creates market handlers
func NewMarketHandlers(markets *market.Service, log *logger.Logger) *MarketHandlers {
	return &MarketHandlers{markets: markets, log: log}
}

// Overview returns current prices and naira valuations
func (h *MarketHandlers) Overview(c *gin.Context) {
	overview, err := h.markets.Overview(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load markets overview", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Market data unavailable", "request_id": getRequestID(c)})
		return
	}

	c.JSON(http.StatusOK, overview)
}
