package deposit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/paydail/paydail-service/internal/domain/entities"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		asset entities.Asset
		raw   string
		want  string
	}{
		{entities.AssetBTC, "100000000", "1"},
		{entities.AssetBTC, "12345678", "0.12345678"},
		{entities.AssetETH, "1000000000000000000", "1"},
		{entities.AssetETH, "1500000000000000000", "1.5"},
		{entities.AssetBNB, "2000000000000000000", "2"},
		{entities.AssetUSDT, "150.25", "150.25"},
	}

	for _, tt := range tests {
		raw := decimal.RequireFromString(tt.raw)
		want := decimal.RequireFromString(tt.want)
		got := NormalizeAmount(tt.asset, raw)
		assert.True(t, got.Equal(want), "asset %s: got %s, want %s", tt.asset, got, want)
	}
}
