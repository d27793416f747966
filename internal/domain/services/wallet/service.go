package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/paydail/paydail-service/internal/adapters/bitgo"
	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/internal/infrastructure/config"
	"github.com/paydail/paydail-service/pkg/logger"
)

// AddressStore is the user persistence address provisioning needs.
type AddressStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.UserAccount, error)
	SaveDepositAddress(ctx context.Context, userID uuid.UUID, network entities.Network, address string) error
}

// AddressCreator generates receive addresses on the custodial wallet.
type AddressCreator interface {
	CreateAddress(ctx context.Context, coin, walletID, label string) (*bitgo.Address, error)
}

// Service provisions per-user deposit addresses. Each user gets at most one
// address per network; repeat requests return the stored address.
type Service struct {
	users    AddressStore
	provider AddressCreator
	cfg      config.BitGoConfig
	log      *logger.Logger
}

// NewService creates a wallet service
func NewService(users AddressStore, provider AddressCreator, cfg config.BitGoConfig, log *logger.Logger) *Service {
	return &Service{
		users:    users,
		provider: provider,
		cfg:      cfg,
		log:      log,
	}
}

// ProvisionedAddress is the result of a deposit address request. Reused is
// true when the user's stored address was returned, Saved when a freshly
// generated address was persisted.
type ProvisionedAddress struct {
	Address string
	Network entities.Network
	Saved   bool
	Reused  bool
}

// DepositAddress returns the user's deposit address for an asset, generating
// and persisting one on first use.
func (s *Service) DepositAddress(ctx context.Context, userID uuid.UUID, asset entities.Asset) (*ProvisionedAddress, error) {
	if !asset.IsSupported() {
		return nil, fmt.Errorf("unsupported asset: %s", asset)
	}
	network := entities.DepositNetwork[asset]

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if existing := user.DepositAddressFor(network); existing != nil && *existing != "" {
		return &ProvisionedAddress{Address: *existing, Network: network, Reused: true}, nil
	}

	coin, walletID := s.walletFor(asset)
	if walletID == "" {
		return nil, fmt.Errorf("address generation not configured for %s", asset)
	}

	created, err := s.provider.CreateAddress(ctx, coin, walletID, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate deposit address: %w", err)
	}

	if err := s.users.SaveDepositAddress(ctx, userID, network, created.Address); err != nil {
		return nil, fmt.Errorf("failed to save deposit address: %w", err)
	}

	s.log.Info("Generated deposit address",
		"user_id", userID.String(), "asset", string(asset), "network", string(network))

	return &ProvisionedAddress{Address: created.Address, Network: network, Saved: true}, nil
}

func (s *Service) walletFor(asset entities.Asset) (coin, walletID string) {
	switch asset {
	case entities.AssetBTC:
		return s.cfg.CoinBTC, s.cfg.WalletIDBTC
	case entities.AssetETH:
		return s.cfg.CoinETH, s.cfg.WalletIDETH
	case entities.AssetUSDT:
		return s.cfg.CoinUSDT, s.cfg.WalletIDUSDT
	case entities.AssetBNB:
		return s.cfg.CoinBNB, s.cfg.WalletIDBNB
	}
	return "", ""
}
