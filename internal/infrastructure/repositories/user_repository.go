package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/paydail/paydail-service/internal/domain/entities"
)

const userColumns = `
	id, email, full_name, naira_balance, notify_transactions,
	usdt_deposit_address_trc20, btc_deposit_address,
	eth_deposit_address, bnb_deposit_address_bep20,
	created_at, updated_at
`

// UserRepository implements user account persistence over users_info.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.UserAccount, error) {
	query := `SELECT ` + userColumns + ` FROM users_info WHERE id = $1`

	var user entities.UserAccount
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// GetByDepositAddress looks up the owner of a deposit address across all four
// address columns and reports which network the address belongs to. Returns
// (nil, "", nil) when no user owns the address.
func (r *UserRepository) GetByDepositAddress(ctx context.Context, address string) (*entities.UserAccount, entities.Network, error) {
	query := `SELECT ` + userColumns + `
		FROM users_info
		WHERE usdt_deposit_address_trc20 = $1
		   OR btc_deposit_address = $1
		   OR eth_deposit_address = $1
		   OR bnb_deposit_address_bep20 = $1
		LIMIT 1`

	var user entities.UserAccount
	err := r.db.GetContext(ctx, &user, query, address)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("failed to look up deposit address: %w", err)
	}

	switch {
	case user.USDTDepositAddressTRC20 != nil && *user.USDTDepositAddressTRC20 == address:
		return &user, entities.NetworkTRC20, nil
	case user.BTCDepositAddress != nil && *user.BTCDepositAddress == address:
		return &user, entities.NetworkBTC, nil
	case user.ETHDepositAddress != nil && *user.ETHDepositAddress == address:
		return &user, entities.NetworkETH, nil
	case user.BNBDepositAddressBEP20 != nil && *user.BNBDepositAddressBEP20 == address:
		return &user, entities.NetworkBEP20, nil
	}

	return &user, "", nil
}

// AddToBalance applies a signed naira delta to the user's balance in a single
// statement so concurrent credits never lose updates.
func (r *UserRepository) AddToBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE users_info
		SET naira_balance = naira_balance + $2,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, userID, delta)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check balance update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// SaveDepositAddress stores a freshly generated deposit address on the column
// for its network.
func (r *UserRepository) SaveDepositAddress(ctx context.Context, userID uuid.UUID, network entities.Network, address string) error {
	var column string
	switch network {
	case entities.NetworkTRC20:
		column = "usdt_deposit_address_trc20"
	case entities.NetworkBTC:
		column = "btc_deposit_address"
	case entities.NetworkETH:
		column = "eth_deposit_address"
	case entities.NetworkBEP20:
		column = "bnb_deposit_address_bep20"
	default:
		return fmt.Errorf("unsupported network: %s", network)
	}

	query := fmt.Sprintf(`
		UPDATE users_info
		SET %s = $2,
			updated_at = NOW()
		WHERE id = $1
	`, column)

	result, err := r.db.ExecContext(ctx, query, userID, address)
	if err != nil {
		return fmt.Errorf("failed to save deposit address: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check address update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
