package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/paydail/paydail-service/internal/domain/entities"
)

// RateRepository reads the operator-configured USD to naira rates.
type RateRepository struct {
	db *sqlx.DB
}

// NewRateRepository creates a new rate repository
func NewRateRepository(db *sqlx.DB) *RateRepository {
	return &RateRepository{db: db}
}

// Current returns the authoritative admin rates row. The oldest row wins so
// rate changes are made by editing it in place. Returns (nil, nil) when the
// table is empty.
func (r *RateRepository) Current(ctx context.Context) (*entities.AdminRate, error) {
	query := `
		SELECT id, usdt_rate, btc_rate, eth_rate, bnb_rate, created_at
		FROM admin_rates
		ORDER BY created_at ASC
		LIMIT 1
	`

	var rate entities.AdminRate
	err := r.db.GetContext(ctx, &rate, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin rates: %w", err)
	}

	return &rate, nil
}
