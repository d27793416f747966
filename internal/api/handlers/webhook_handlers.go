package handlers

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paydail/paydail-service/internal/domain/services/deposit"
	"github.com/paydail/paydail-service/pkg/logger"
	"github.com/paydail/paydail-service/pkg/metrics"
)

// WebhookHandlers receives transfer notifications from the wallet provider.
type WebhookHandlers struct {
	engine *deposit.Engine
	secret string
	log    *logger.Logger
}

// NewWebhookHandlers creates webhook handlers
func NewWebhookHandlers(engine *deposit.Engine, secret string, log *logger.Logger) *WebhookHandlers {
	return &WebhookHandlers{
		engine: engine,
		secret: secret,
		log:    log,
	}
}

// Ping answers provider connectivity checks
func (h *WebhookHandlers) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "route": c.FullPath()})
}

// HandleTransfer processes a transfer webhook. Per-entry failures are
// acknowledged with 200 so the provider does not redeliver an event we have
// already partially applied.
func (h *WebhookHandlers) HandleTransfer(c *gin.Context) {
	metrics.WebhookEventsTotal.WithLabelValues("received").Inc()

	if h.secret == "" {
		h.log.Error("Webhook received but no webhook secret is configured")
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "webhook not configured"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("bad_payload").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable body"})
		return
	}

	event, err := deposit.ParseTransferEvent(body)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("bad_payload").Inc()
		h.log.Warn("Rejected webhook with invalid payload",
			"request_id", getRequestID(c), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid payload"})
		return
	}

	if !h.authorized(c, event) {
		metrics.WebhookEventsTotal.WithLabelValues("unauthorized").Inc()
		h.log.Warn("Rejected webhook with invalid secret",
			"request_id", getRequestID(c), "client_ip", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid secret"})
		return
	}

	outcome, err := h.engine.Process(c.Request.Context(), event)
	if err != nil {
		// Acknowledge anyway: redelivery would hit the same failure.
		metrics.WebhookEventsTotal.WithLabelValues("ignored").Inc()
		h.log.Error("Webhook event unprocessable",
			"request_id", getRequestID(c), "error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": true})
		return
	}

	if outcome.Ignored {
		metrics.WebhookEventsTotal.WithLabelValues("ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"ok": true, "ignored": true, "reason": outcome.Reason})
		return
	}

	metrics.WebhookEventsTotal.WithLabelValues("processed").Inc()
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"processed": outcome.Processed,
		"skipped":   outcome.Skipped,
		"errors":    outcome.Errors,
	})
}

// authorized checks the shared secret, preferring the header, then the query
// string, then the body.
func (h *WebhookHandlers) authorized(c *gin.Context, event *deposit.TransferEvent) bool {
	provided := c.GetHeader("x-bitgo-webhook-secret")
	if provided == "" {
		provided = c.Query("secret")
	}
	if provided == "" {
		provided = event.BodySecret
	}
	if provided == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) == 1
}
