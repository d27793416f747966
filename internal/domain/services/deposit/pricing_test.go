package deposit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/pkg/logger"
)

type fakePriceFetcher struct {
	prices map[string]float64
	err    error
	calls  int
}

func (f *fakePriceFetcher) SimplePrice(ctx context.Context, coinIDs []string) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

type fakeRateSource struct {
	rate *entities.AdminRate
	err  error
}

func (f *fakeRateSource) Current(ctx context.Context) (*entities.AdminRate, error) {
	return f.rate, f.err
}

func newTestPriceCache(fetcher *fakePriceFetcher, at *time.Time) *PriceCache {
	return NewPriceCache(fetcher, 5*time.Minute, logger.NewNop()).
		WithClock(func() time.Time { return *at })
}

func TestPriceCache_USDTIsPegged(t *testing.T) {
	fetcher := &fakePriceFetcher{err: errors.New("should not be called")}
	now := time.Now()
	cache := newTestPriceCache(fetcher, &now)

	price, err := cache.SpotUSD(context.Background(), entities.AssetUSDT)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(1)))
	assert.Zero(t, fetcher.calls)
}

func TestPriceCache_ServesFromCacheWithinTTL(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: map[string]float64{
		"bitcoin": 60000, "ethereum": 3000, "binancecoin": 500,
	}}
	now := time.Now()
	cache := newTestPriceCache(fetcher, &now)

	first, err := cache.SpotUSD(context.Background(), entities.AssetBTC)
	require.NoError(t, err)
	assert.True(t, first.Equal(decimal.NewFromInt(60000)))
	assert.Equal(t, 1, fetcher.calls)

	now = now.Add(4 * time.Minute)
	second, err := cache.SpotUSD(context.Background(), entities.AssetBTC)
	require.NoError(t, err)
	assert.True(t, second.Equal(first))
	assert.Equal(t, 1, fetcher.calls)

	// One fetch fills every asset.
	eth, err := cache.SpotUSD(context.Background(), entities.AssetETH)
	require.NoError(t, err)
	assert.True(t, eth.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, 1, fetcher.calls)
}

func TestPriceCache_RefetchesAfterTTL(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: map[string]float64{"bitcoin": 60000}}
	now := time.Now()
	cache := newTestPriceCache(fetcher, &now)

	_, err := cache.SpotUSD(context.Background(), entities.AssetBTC)
	require.NoError(t, err)

	fetcher.prices["bitcoin"] = 61000
	now = now.Add(6 * time.Minute)

	price, err := cache.SpotUSD(context.Background(), entities.AssetBTC)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(61000)))
	assert.Equal(t, 2, fetcher.calls)
}

func TestPriceCache_StaleFallbackOnFetchFailure(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: map[string]float64{"bitcoin": 60000}}
	now := time.Now()
	cache := newTestPriceCache(fetcher, &now)

	_, err := cache.SpotUSD(context.Background(), entities.AssetBTC)
	require.NoError(t, err)

	fetcher.err = errors.New("upstream down")
	now = now.Add(time.Hour)

	price, err := cache.SpotUSD(context.Background(), entities.AssetBTC)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.NewFromInt(60000)))
}

func TestPriceCache_ErrorWithoutCache(t *testing.T) {
	fetcher := &fakePriceFetcher{err: errors.New("upstream down")}
	now := time.Now()
	cache := newTestPriceCache(fetcher, &now)

	_, err := cache.SpotUSD(context.Background(), entities.AssetBTC)
	assert.Error(t, err)
}

func TestConverter_Convert(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: map[string]float64{"bitcoin": 60000}}
	now := time.Now()
	cache := newTestPriceCache(fetcher, &now)

	converter := NewConverter(cache, &fakeRateSource{}, decimal.NewFromFloat(0.01), logger.NewNop())

	conv := converter.Convert(context.Background(), entities.AssetBTC, decimal.NewFromInt(1))

	// 1 BTC * $60,000 * 1640 naira/USD, net of the 1% fee.
	assert.True(t, conv.GrossNaira.Equal(decimal.RequireFromString("98400000.00")), "gross %s", conv.GrossNaira)
	assert.True(t, conv.FeeNaira.Equal(decimal.RequireFromString("984000.00")), "fee %s", conv.FeeNaira)
	assert.True(t, conv.NetNaira.Equal(decimal.RequireFromString("97416000.00")), "net %s", conv.NetNaira)
	assert.True(t, conv.RateUsed.Equal(decimal.NewFromInt(1640)))
}

func TestConverter_UsesConfiguredRates(t *testing.T) {
	fetcher := &fakePriceFetcher{prices: map[string]float64{}}
	now := time.Now()
	cache := newTestPriceCache(fetcher, &now)

	rates := &fakeRateSource{rate: &entities.AdminRate{
		USDTRate: decimal.NewFromInt(1700),
		BTCRate:  decimal.NewFromInt(1700),
		ETHRate:  decimal.NewFromInt(1700),
		BNBRate:  decimal.NewFromInt(1700),
	}}
	converter := NewConverter(cache, rates, decimal.Zero, logger.NewNop())

	conv := converter.Convert(context.Background(), entities.AssetUSDT, decimal.NewFromInt(100))

	assert.True(t, conv.NetNaira.Equal(decimal.RequireFromString("170000.00")), "net %s", conv.NetNaira)
	assert.True(t, conv.FeeNaira.IsZero())
}

func TestConverter_FailsOpenToZero(t *testing.T) {
	fetcher := &fakePriceFetcher{err: errors.New("upstream down")}
	now := time.Now()
	cache := newTestPriceCache(fetcher, &now)

	converter := NewConverter(cache, &fakeRateSource{}, decimal.NewFromFloat(0.01), logger.NewNop())

	conv := converter.Convert(context.Background(), entities.AssetBTC, decimal.NewFromInt(1))
	assert.True(t, conv.NetNaira.IsZero())
	assert.True(t, conv.RateUsed.IsZero())
}
