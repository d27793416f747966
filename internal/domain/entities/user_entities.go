package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserAccount is a row in users_info. Each user carries at most one deposit
// address per network, provisioned lazily on first request.
type UserAccount struct {
	ID                 uuid.UUID       `db:"id" json:"id"`
	Email              string          `db:"email" json:"email"`
	FullName           string          `db:"full_name" json:"full_name"`
	NairaBalance       decimal.Decimal `db:"naira_balance" json:"naira_balance"`
	NotifyTransactions bool            `db:"notify_transactions" json:"notify_transactions"`

	USDTDepositAddressTRC20 *string `db:"usdt_deposit_address_trc20" json:"usdt_deposit_address_trc20,omitempty"`
	BTCDepositAddress       *string `db:"btc_deposit_address" json:"btc_deposit_address,omitempty"`
	ETHDepositAddress       *string `db:"eth_deposit_address" json:"eth_deposit_address,omitempty"`
	BNBDepositAddressBEP20  *string `db:"bnb_deposit_address_bep20" json:"bnb_deposit_address_bep20,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DepositAddressFor returns the stored address for the given network, or nil.
func (u *UserAccount) DepositAddressFor(network Network) *string {
	switch network {
	case NetworkTRC20:
		return u.USDTDepositAddressTRC20
	case NetworkBTC:
		return u.BTCDepositAddress
	case NetworkETH:
		return u.ETHDepositAddress
	case NetworkBEP20:
		return u.BNBDepositAddressBEP20
	}
	return nil
}
