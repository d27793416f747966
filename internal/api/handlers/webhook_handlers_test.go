package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/internal/domain/services/deposit"
	"github.com/paydail/paydail-service/pkg/logger"
)

type stubUserStore struct {
	user    *entities.UserAccount
	address string
	credits []decimal.Decimal
}

func (s *stubUserStore) GetByDepositAddress(ctx context.Context, address string) (*entities.UserAccount, entities.Network, error) {
	if s.user != nil && address == s.address {
		return s.user, entities.NetworkBTC, nil
	}
	return nil, "", nil
}

func (s *stubUserStore) AddToBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	s.credits = append(s.credits, delta)
	return nil
}

type stubDepositStore struct {
	byHash map[string]*entities.Deposit
}

func (s *stubDepositStore) GetByTxHash(ctx context.Context, txHash string) (*entities.Deposit, error) {
	return s.byHash[txHash], nil
}

func (s *stubDepositStore) Create(ctx context.Context, dep *entities.Deposit) error {
	s.byHash[dep.TxHash] = dep
	return nil
}

func (s *stubDepositStore) Update(ctx context.Context, dep *entities.Deposit) error {
	s.byHash[dep.TxHash] = dep
	return nil
}

type stubNotificationStore struct{}

func (s *stubNotificationStore) Create(ctx context.Context, n *entities.Notification) error {
	return nil
}

type stubPriceFetcher struct{}

func (s *stubPriceFetcher) SimplePrice(ctx context.Context, coinIDs []string) (map[string]float64, error) {
	return map[string]float64{"bitcoin": 60000}, nil
}

type stubRateSource struct{}

func (s *stubRateSource) Current(ctx context.Context) (*entities.AdminRate, error) {
	return nil, nil
}

func newWebhookRouter(t *testing.T, secret string, users *stubUserStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	prices := deposit.NewPriceCache(&stubPriceFetcher{}, 5*time.Minute, log)
	converter := deposit.NewConverter(prices, &stubRateSource{}, decimal.NewFromFloat(0.01), log)
	engine := deposit.NewEngine(users,
		&stubDepositStore{byHash: make(map[string]*entities.Deposit)},
		&stubNotificationStore{}, converter, deposit.NewAssetResolver(nil), nil, nil, log)

	h := NewWebhookHandlers(engine, secret, log)

	router := gin.New()
	router.POST("/api/v1/webhooks/bitgo", h.HandleTransfer)
	router.GET("/api/v1/webhooks/bitgo", h.Ping)
	return router
}

func postWebhook(router *gin.Engine, body string, header func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/bitgo", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != nil {
		header(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhook_MissingConfiguredSecret(t *testing.T) {
	router := newWebhookRouter(t, "", &stubUserStore{})

	w := postWebhook(router, `{"type": "transfer"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["ok"])
}

func TestWebhook_InvalidSecret(t *testing.T) {
	router := newWebhookRouter(t, "topsecret", &stubUserStore{})

	w := postWebhook(router, `{"type": "transfer"}`, func(r *http.Request) {
		r.Header.Set("x-bitgo-webhook-secret", "wrong")
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = postWebhook(router, `{"type": "transfer"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_InvalidJSON(t *testing.T) {
	router := newWebhookRouter(t, "topsecret", &stubUserStore{})

	w := postWebhook(router, `not json at all`, func(r *http.Request) {
		r.Header.Set("x-bitgo-webhook-secret", "topsecret")
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_SecretSources(t *testing.T) {
	body := `{"type": "transfer", "coin": "doge"}`

	// Header.
	router := newWebhookRouter(t, "topsecret", &stubUserStore{})
	w := postWebhook(router, body, func(r *http.Request) {
		r.Header.Set("x-bitgo-webhook-secret", "topsecret")
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Query string.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/bitgo?secret=topsecret", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Body.
	w = postWebhook(router, `{"type": "transfer", "coin": "doge", "secret": "topsecret"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhook_UnsupportedEventIsAcknowledgedAsIgnored(t *testing.T) {
	router := newWebhookRouter(t, "topsecret", &stubUserStore{})

	w := postWebhook(router, `{"type": "transfer", "coin": "doge"}`, func(r *http.Request) {
		r.Header.Set("x-bitgo-webhook-secret", "topsecret")
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, true, resp["ignored"])
}

func TestWebhook_ConfirmedDepositProcessed(t *testing.T) {
	users := &stubUserStore{
		user:    &entities.UserAccount{ID: uuid.New(), NotifyTransactions: false},
		address: "addr-1",
	}
	router := newWebhookRouter(t, "topsecret", users)

	body := `{
		"coin": "tbtc4",
		"transfer": "tr-1",
		"txid": "hash-1",
		"state": "confirmed",
		"entries": [{"address": "addr-1", "value": 100000000}]
	}`

	w := postWebhook(router, body, func(r *http.Request) {
		r.Header.Set("x-bitgo-webhook-secret", "topsecret")
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, float64(1), resp["processed"])

	require.Len(t, users.credits, 1)
	assert.True(t, users.credits[0].Equal(decimal.RequireFromString("97416000.00")),
		"credit %s", users.credits[0])
}

func TestWebhook_Ping(t *testing.T) {
	router := newWebhookRouter(t, "topsecret", &stubUserStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/webhooks/bitgo", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
