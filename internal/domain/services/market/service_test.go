package market

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paydail/paydail-service/internal/adapters/coingecko"
	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/pkg/logger"
)

type fakeMarketsProvider struct {
	coins []coingecko.MarketCoin
	err   error
}

func (f *fakeMarketsProvider) Markets(ctx context.Context, coinIDs []string) ([]coingecko.MarketCoin, error) {
	return f.coins, f.err
}

type fakeRateSource struct{}

func (f *fakeRateSource) Current(ctx context.Context) (*entities.AdminRate, error) {
	return nil, nil
}

func TestOverview_ValuesCoinsInNaira(t *testing.T) {
	provider := &fakeMarketsProvider{coins: []coingecko.MarketCoin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 60000, PriceChangePercentage24h: 1.5},
		{ID: "tether", Symbol: "usdt", Name: "Tether", CurrentPrice: 1},
		{ID: "dogecoin", Symbol: "doge", Name: "Dogecoin", CurrentPrice: 0.1},
	}}

	svc := NewService(provider, &fakeRateSource{}, nil, 0, logger.NewNop())

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	// Unsupported coins are dropped.
	require.Len(t, overview.Coins, 2)

	byAsset := make(map[entities.Asset]MarketEntry)
	for _, entry := range overview.Coins {
		byAsset[entry.Asset] = entry
	}

	btc := byAsset[entities.AssetBTC]
	assert.True(t, btc.PriceNaira.Equal(decimal.RequireFromString("98400000.00")), "btc naira %s", btc.PriceNaira)

	usdt := byAsset[entities.AssetUSDT]
	assert.True(t, usdt.PriceNaira.Equal(decimal.RequireFromString("1650.00")), "usdt naira %s", usdt.PriceNaira)

	require.Len(t, overview.Rates, 4)
	assert.True(t, overview.Rates["BTC"].Equal(decimal.NewFromInt(1640)))
	assert.True(t, overview.Rates["USDT"].Equal(decimal.NewFromInt(1650)))
	assert.True(t, overview.Rates["BNB"].Equal(decimal.NewFromInt(1610)))
}

func TestOverview_ProviderError(t *testing.T) {
	provider := &fakeMarketsProvider{err: assert.AnError}
	svc := NewService(provider, &fakeRateSource{}, nil, 0, logger.NewNop())

	_, err := svc.Overview(context.Background())
	assert.Error(t, err)
}
