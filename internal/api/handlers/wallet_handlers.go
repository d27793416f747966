package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/internal/domain/services/wallet"
	"github.com/paydail/paydail-service/pkg/logger"
)

// WalletHandlers serves deposit address provisioning.
type WalletHandlers struct {
	wallets *wallet.Service
	log     *logger.Logger
}

// NewWalletHandlers creates wallet handlers
func NewWalletHandlers(wallets *wallet.Service, log *logger.Logger) *WalletHandlers {
	return &WalletHandlers{wallets: wallets, log: log}
}

type depositAddressRequest struct {
	Asset string `json:"asset" binding:"required"`
}

// DepositAddress returns the caller's deposit address for an asset,
// generating one on first use.
func (h *WalletHandlers) DepositAddress(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "request_id": getRequestID(c)})
		return
	}

	var req depositAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "asset is required", "request_id": getRequestID(c)})
		return
	}

	asset := entities.Asset(strings.ToUpper(strings.TrimSpace(req.Asset)))
	if !asset.IsSupported() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported asset", "request_id": getRequestID(c)})
		return
	}

	provisioned, err := h.wallets.DepositAddress(c.Request.Context(), userID, asset)
	if err != nil {
		h.log.Error("Failed to provision deposit address",
			"user_id", userID.String(), "asset", string(asset), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to provision deposit address", "request_id": getRequestID(c)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset":   asset,
		"network": provisioned.Network,
		"address": provisioned.Address,
		"saved":   provisioned.Saved,
		"reused":  provisioned.Reused,
	})
}
