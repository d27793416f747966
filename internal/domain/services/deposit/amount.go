package deposit

import (
	"github.com/shopspring/decimal"

	"github.com/paydail/paydail-service/internal/domain/entities"
)

// Base unit exponents per asset. USDT amounts arrive already denominated in
// token units, so no shift applies.
var baseUnitExponent = map[entities.Asset]int32{
	entities.AssetBTC: 8,  // satoshi
	entities.AssetETH: 18, // wei
	entities.AssetBNB: 18, // wei
}

// NormalizeAmount converts a raw on-chain amount in base units to the
// asset's display denomination.
func NormalizeAmount(asset entities.Asset, raw decimal.Decimal) decimal.Decimal {
	exp, ok := baseUnitExponent[asset]
	if !ok {
		return raw
	}
	return raw.Shift(-exp)
}
