package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paydail/paydail-service/internal/adapters/bitgo"
	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/internal/infrastructure/config"
	"github.com/paydail/paydail-service/pkg/logger"
)

type fakeAddressStore struct {
	user  *entities.UserAccount
	saved map[entities.Network]string
}

func (f *fakeAddressStore) GetByID(ctx context.Context, id uuid.UUID) (*entities.UserAccount, error) {
	return f.user, nil
}

func (f *fakeAddressStore) SaveDepositAddress(ctx context.Context, userID uuid.UUID, network entities.Network, address string) error {
	if f.saved == nil {
		f.saved = make(map[entities.Network]string)
	}
	f.saved[network] = address
	return nil
}

type fakeAddressCreator struct {
	address string
	calls   int
}

func (f *fakeAddressCreator) CreateAddress(ctx context.Context, coin, walletID, label string) (*bitgo.Address, error) {
	f.calls++
	return &bitgo.Address{Address: f.address, Coin: coin, Wallet: walletID}, nil
}

func testBitGoConfig() config.BitGoConfig {
	return config.BitGoConfig{
		CoinBTC:     "tbtc4",
		CoinETH:     "hteth",
		CoinUSDT:    "ttrx:usdt",
		CoinBNB:     "tbsc:bnb",
		WalletIDBTC: "wallet-btc",
		WalletIDETH: "wallet-eth",
	}
}

func TestDepositAddress_ReturnsStoredAddress(t *testing.T) {
	existing := "bc1-existing"
	store := &fakeAddressStore{user: &entities.UserAccount{
		ID:                uuid.New(),
		BTCDepositAddress: &existing,
	}}
	creator := &fakeAddressCreator{address: "bc1-new"}

	svc := NewService(store, creator, testBitGoConfig(), logger.NewNop())

	provisioned, err := svc.DepositAddress(context.Background(), store.user.ID, entities.AssetBTC)
	require.NoError(t, err)
	assert.Equal(t, existing, provisioned.Address)
	assert.Equal(t, entities.NetworkBTC, provisioned.Network)
	assert.True(t, provisioned.Reused)
	assert.False(t, provisioned.Saved)
	assert.Zero(t, creator.calls)
}

func TestDepositAddress_GeneratesAndSaves(t *testing.T) {
	store := &fakeAddressStore{user: &entities.UserAccount{ID: uuid.New()}}
	creator := &fakeAddressCreator{address: "bc1-new"}

	svc := NewService(store, creator, testBitGoConfig(), logger.NewNop())

	provisioned, err := svc.DepositAddress(context.Background(), store.user.ID, entities.AssetBTC)
	require.NoError(t, err)
	assert.Equal(t, "bc1-new", provisioned.Address)
	assert.Equal(t, entities.NetworkBTC, provisioned.Network)
	assert.True(t, provisioned.Saved)
	assert.False(t, provisioned.Reused)
	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, "bc1-new", store.saved[entities.NetworkBTC])
}

func TestDepositAddress_UnsupportedAsset(t *testing.T) {
	svc := NewService(&fakeAddressStore{}, &fakeAddressCreator{}, testBitGoConfig(), logger.NewNop())

	_, err := svc.DepositAddress(context.Background(), uuid.New(), entities.Asset("DOGE"))
	assert.Error(t, err)
}

func TestDepositAddress_UnconfiguredWallet(t *testing.T) {
	store := &fakeAddressStore{user: &entities.UserAccount{ID: uuid.New()}}
	creator := &fakeAddressCreator{address: "addr"}

	// No USDT wallet in config.
	svc := NewService(store, creator, testBitGoConfig(), logger.NewNop())

	_, err := svc.DepositAddress(context.Background(), store.user.ID, entities.AssetUSDT)
	assert.Error(t, err)
	assert.Zero(t, creator.calls)
}
