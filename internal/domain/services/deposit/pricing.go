package deposit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/pkg/logger"
	"github.com/paydail/paydail-service/pkg/metrics"
)

// PriceFetcher provides USD spot prices keyed by CoinGecko coin ID.
type PriceFetcher interface {
	SimplePrice(ctx context.Context, coinIDs []string) (map[string]float64, error)
}

type cachedPrice struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// PriceCache serves USD spot prices with a freshness window. When the
// upstream fetch fails, a stale price is better than none, so expired
// entries are kept as a fallback. USDT is pegged at 1.0 and never fetched.
type PriceCache struct {
	fetcher PriceFetcher
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger

	mu     sync.Mutex
	prices map[entities.Asset]cachedPrice
}

// NewPriceCache creates a price cache over the given fetcher
func NewPriceCache(fetcher PriceFetcher, ttl time.Duration, log *logger.Logger) *PriceCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PriceCache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		log:     log,
		prices:  make(map[entities.Asset]cachedPrice),
	}
}

// WithClock replaces the cache's clock
func (c *PriceCache) WithClock(now func() time.Time) *PriceCache {
	c.now = now
	return c
}

// SpotUSD returns the USD spot price for an asset
func (c *PriceCache) SpotUSD(ctx context.Context, asset entities.Asset) (decimal.Decimal, error) {
	if asset == entities.AssetUSDT {
		return decimal.NewFromInt(1), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.prices[asset]; ok && c.now().Sub(cached.fetchedAt) < c.ttl {
		metrics.SpotPriceFetchesTotal.WithLabelValues("cache").Inc()
		return cached.price, nil
	}

	if err := c.refreshLocked(ctx); err != nil {
		if cached, ok := c.prices[asset]; ok {
			c.log.Warn("Spot price fetch failed, serving stale price",
				"asset", string(asset), "error", err)
			metrics.SpotPriceFetchesTotal.WithLabelValues("stale").Inc()
			return cached.price, nil
		}
		metrics.SpotPriceFetchesTotal.WithLabelValues("error").Inc()
		return decimal.Zero, fmt.Errorf("failed to fetch spot price for %s: %w", asset, err)
	}

	cached, ok := c.prices[asset]
	if !ok {
		metrics.SpotPriceFetchesTotal.WithLabelValues("error").Inc()
		return decimal.Zero, fmt.Errorf("no spot price available for %s", asset)
	}

	metrics.SpotPriceFetchesTotal.WithLabelValues("fetch").Inc()
	return cached.price, nil
}

// Refresh forces a fetch of all asset prices, warming the cache
func (c *PriceCache) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *PriceCache) refreshLocked(ctx context.Context) error {
	ids := make([]string, 0, len(entities.SupportedAssets))
	idToAsset := make(map[string]entities.Asset)
	for _, asset := range entities.SupportedAssets {
		if asset == entities.AssetUSDT {
			continue
		}
		id := entities.CoinGeckoID[asset]
		ids = append(ids, id)
		idToAsset[id] = asset
	}

	prices, err := c.fetcher.SimplePrice(ctx, ids)
	if err != nil {
		return err
	}

	fetchedAt := c.now()
	for id, usd := range prices {
		asset, ok := idToAsset[id]
		if !ok {
			continue
		}
		c.prices[asset] = cachedPrice{
			price:     decimal.NewFromFloat(usd),
			fetchedAt: fetchedAt,
		}
	}

	return nil
}

// RateSource provides the operator-configured USD to naira rates.
type RateSource interface {
	Current(ctx context.Context) (*entities.AdminRate, error)
}

// Conversion is the naira valuation of a crypto amount.
type Conversion struct {
	SpotUSD    decimal.Decimal
	RateUsed   decimal.Decimal
	GrossNaira decimal.Decimal
	FeeNaira   decimal.Decimal
	NetNaira   decimal.Decimal
}

// Converter turns crypto amounts into naira using the spot USD price and the
// per-asset admin rate, net of the deposit fee.
type Converter struct {
	prices  *PriceCache
	rates   RateSource
	feeRate decimal.Decimal
	log     *logger.Logger
}

// NewConverter creates a converter with the given fee rate in [0, 1)
func NewConverter(prices *PriceCache, rates RateSource, feeRate decimal.Decimal, log *logger.Logger) *Converter {
	return &Converter{
		prices:  prices,
		rates:   rates,
		feeRate: feeRate,
		log:     log,
	}
}

// Convert values a crypto amount in naira. Valuation never blocks
// reconciliation: a failed price lookup yields a zero conversion so the
// deposit is still recorded and can be revalued on the next event.
func (c *Converter) Convert(ctx context.Context, asset entities.Asset, amount decimal.Decimal) Conversion {
	spot, err := c.prices.SpotUSD(ctx, asset)
	if err != nil {
		c.log.Warn("Valuing deposit at zero, no spot price available",
			"asset", string(asset), "error", err)
		return Conversion{}
	}

	rate := c.adminRate(ctx, asset)

	gross := amount.Mul(spot).Mul(rate).Round(2)
	fee := gross.Mul(c.feeRate).Round(2)
	net := gross.Sub(fee)

	return Conversion{
		SpotUSD:    spot,
		RateUsed:   rate,
		GrossNaira: gross,
		FeeNaira:   fee,
		NetNaira:   net,
	}
}

func (c *Converter) adminRate(ctx context.Context, asset entities.Asset) decimal.Decimal {
	rates, err := c.rates.Current(ctx)
	if err != nil {
		c.log.Warn("Failed to load admin rates, using defaults", "error", err)
		rates = nil
	}
	if rates == nil {
		rates = entities.DefaultAdminRate()
	}
	return rates.RateFor(asset)
}
