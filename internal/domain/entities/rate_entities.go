package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminRate is a row in admin_rates: the USD to naira rate applied per asset
// when converting deposit values. The oldest row is authoritative.
type AdminRate struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	USDTRate  decimal.Decimal `db:"usdt_rate" json:"usdt_rate"`
	BTCRate   decimal.Decimal `db:"btc_rate" json:"btc_rate"`
	ETHRate   decimal.Decimal `db:"eth_rate" json:"eth_rate"`
	BNBRate   decimal.Decimal `db:"bnb_rate" json:"bnb_rate"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// DefaultAdminRate is used when no admin_rates row exists yet.
func DefaultAdminRate() *AdminRate {
	return &AdminRate{
		USDTRate: decimal.NewFromInt(1650),
		BTCRate:  decimal.NewFromInt(1640),
		ETHRate:  decimal.NewFromInt(1640),
		BNBRate:  decimal.NewFromInt(1610),
	}
}

// RateFor returns the naira per USD rate for the given asset.
func (r *AdminRate) RateFor(asset Asset) decimal.Decimal {
	switch asset {
	case AssetUSDT:
		return r.USDTRate
	case AssetBTC:
		return r.BTCRate
	case AssetETH:
		return r.ETHRate
	case AssetBNB:
		return r.BNBRate
	}
	return decimal.Zero
}
