package market

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paydail/paydail-service/internal/adapters/coingecko"
	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/internal/infrastructure/cache"
	"github.com/paydail/paydail-service/pkg/logger"
)

const overviewCacheKey = "markets:overview"

// MarketsProvider returns market data for CoinGecko coin IDs.
type MarketsProvider interface {
	Markets(ctx context.Context, coinIDs []string) ([]coingecko.MarketCoin, error)
}

// RateSource provides the operator-configured USD to naira rates.
type RateSource interface {
	Current(ctx context.Context) (*entities.AdminRate, error)
}

// MarketEntry is one supported asset's market snapshot.
type MarketEntry struct {
	Asset            entities.Asset  `json:"asset"`
	Name             string          `json:"name"`
	Symbol           string          `json:"symbol"`
	Image            string          `json:"image"`
	PriceUSD         decimal.Decimal `json:"price_usd"`
	PriceNaira       decimal.Decimal `json:"price_naira"`
	ChangePercent24h decimal.Decimal `json:"change_percent_24h"`
}

// Overview is the markets snapshot served to clients. Rates carries the
// operator-configured naira rate per asset symbol.
type Overview struct {
	Coins     []MarketEntry              `json:"coins"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Service serves a markets overview for the supported assets, cached in
// Redis to keep CoinGecko traffic bounded.
type Service struct {
	provider MarketsProvider
	rates    RateSource
	cache    cache.RedisClient
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewService creates a market service
func NewService(provider MarketsProvider, rates RateSource, redis cache.RedisClient, cacheTTL time.Duration, log *logger.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{
		provider: provider,
		rates:    rates,
		cache:    redis,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Overview returns the markets snapshot, serving from cache when fresh
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	if s.cache != nil {
		var cached Overview
		if err := s.cache.Get(ctx, overviewCacheKey, &cached); err == nil && len(cached.Coins) > 0 {
			return &cached, nil
		}
	}

	ids := make([]string, 0, len(entities.SupportedAssets))
	idToAsset := make(map[string]entities.Asset)
	for _, asset := range entities.SupportedAssets {
		id := entities.CoinGeckoID[asset]
		ids = append(ids, id)
		idToAsset[id] = asset
	}

	coins, err := s.provider.Markets(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch markets: %w", err)
	}

	rates, err := s.rates.Current(ctx)
	if err != nil {
		s.log.Warn("Failed to load admin rates for markets, using defaults", "error", err)
		rates = nil
	}
	if rates == nil {
		rates = entities.DefaultAdminRate()
	}

	overview := &Overview{
		Rates:     make(map[string]decimal.Decimal, len(entities.SupportedAssets)),
		FetchedAt: time.Now(),
	}
	for _, asset := range entities.SupportedAssets {
		overview.Rates[string(asset)] = rates.RateFor(asset)
	}
	for _, coin := range coins {
		asset, ok := idToAsset[coin.ID]
		if !ok {
			continue
		}

		priceUSD := decimal.NewFromFloat(coin.CurrentPrice)
		overview.Coins = append(overview.Coins, MarketEntry{
			Asset:            asset,
			Name:             coin.Name,
			Symbol:           coin.Symbol,
			Image:            coin.Image,
			PriceUSD:         priceUSD,
			PriceNaira:       priceUSD.Mul(rates.RateFor(asset)).Round(2),
			ChangePercent24h: decimal.NewFromFloat(coin.PriceChangePercentage24h),
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, overviewCacheKey, overview, s.cacheTTL); err != nil {
			s.log.Warn("Failed to cache markets overview", "error", err)
		}
	}

	return overview, nil
}
