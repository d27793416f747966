package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deposit statuses. Incoming provider statuses are normalized onto this set
// before anything is persisted.
const (
	DepositStatusPending   = "pending"
	DepositStatusConfirmed = "confirmed"
	DepositStatusCompleted = "completed"
	DepositStatusFailed    = "failed"
	// DepositStatusSuccess never originates from normalization but legacy
	// rows may carry it, so it still counts as creditable.
	DepositStatusSuccess = "success"
)

// Deposit is a row in deposits, keyed for idempotency by tx_hash.
type Deposit struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	Reference       string          `db:"reference" json:"reference"`
	Coin            string          `db:"coin" json:"coin"`
	NetworkChain    string          `db:"network_chain" json:"network_chain"`
	CryptoAmount    decimal.Decimal `db:"crypto_amount" json:"crypto_amount"`
	EquivalentNaira decimal.Decimal `db:"equivalent_naira" json:"equivalent_naira"`
	FeeNaira        decimal.Decimal `db:"fee_naira" json:"fee_naira"`
	RateUsed        decimal.Decimal `db:"rate_used" json:"rate_used"`
	WalletAddress   string          `db:"wallet_address" json:"wallet_address"`
	TxHash          string          `db:"tx_hash" json:"tx_hash"`
	Status          string          `db:"status" json:"status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// IsCreditableStatus reports whether a deposit in this status counts toward
// the user's naira balance.
func IsCreditableStatus(status string) bool {
	switch status {
	case DepositStatusConfirmed, DepositStatusCompleted, DepositStatusSuccess:
		return true
	}
	return false
}
