package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/paydail/paydail-service/internal/domain/entities"
)

const depositColumns = `
	id, user_id, reference, coin, network_chain,
	crypto_amount, equivalent_naira, fee_naira, rate_used,
	wallet_address, tx_hash, status, created_at, updated_at
`

// DepositRepository implements deposit persistence over deposits.
type DepositRepository struct {
	db *sqlx.DB
}

// NewDepositRepository creates a new deposit repository
func NewDepositRepository(db *sqlx.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

// GetByTxHash retrieves the deposit recorded for a transaction hash. Returns
// (nil, nil) when no deposit exists, so callers can branch on first sight of
// a hash without treating it as an error.
func (r *DepositRepository) GetByTxHash(ctx context.Context, txHash string) (*entities.Deposit, error) {
	query := `SELECT ` + depositColumns + ` FROM deposits WHERE tx_hash = $1`

	var deposit entities.Deposit
	err := r.db.GetContext(ctx, &deposit, query, txHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deposit by tx hash: %w", err)
	}

	return &deposit, nil
}

// Create inserts a new deposit row
func (r *DepositRepository) Create(ctx context.Context, deposit *entities.Deposit) error {
	query := `
		INSERT INTO deposits (
			id, user_id, reference, coin, network_chain,
			crypto_amount, equivalent_naira, fee_naira, rate_used,
			wallet_address, tx_hash, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
	`

	_, err := r.db.ExecContext(ctx, query,
		deposit.ID,
		deposit.UserID,
		deposit.Reference,
		deposit.Coin,
		deposit.NetworkChain,
		deposit.CryptoAmount,
		deposit.EquivalentNaira,
		deposit.FeeNaira,
		deposit.RateUsed,
		deposit.WalletAddress,
		deposit.TxHash,
		deposit.Status,
		deposit.CreatedAt,
		deposit.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}

	return nil
}

// Update rewrites the mutable fields of an existing deposit
func (r *DepositRepository) Update(ctx context.Context, deposit *entities.Deposit) error {
	query := `
		UPDATE deposits
		SET status = $2,
			crypto_amount = $3,
			equivalent_naira = $4,
			fee_naira = $5,
			rate_used = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		deposit.ID,
		deposit.Status,
		deposit.CryptoAmount,
		deposit.EquivalentNaira,
		deposit.FeeNaira,
		deposit.RateUsed,
	)

	if err != nil {
		return fmt.Errorf("failed to update deposit: %w", err)
	}

	return nil
}

// ListByUserID retrieves deposits for a user, newest first, with pagination
func (r *DepositRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Deposit, error) {
	query := `SELECT ` + depositColumns + `
		FROM deposits
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var deposits []*entities.Deposit
	err := r.db.SelectContext(ctx, &deposits, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}

	return deposits, nil
}
