package entities

// Asset is a supported deposit asset.
type Asset string

const (
	AssetBTC  Asset = "BTC"
	AssetETH  Asset = "ETH"
	AssetUSDT Asset = "USDT"
	AssetBNB  Asset = "BNB"
)

// Network is the chain a deposit address lives on.
type Network string

const (
	NetworkTRC20 Network = "TRC20"
	NetworkBTC   Network = "BTC"
	NetworkETH   Network = "ETH"
	NetworkBEP20 Network = "BEP20"
)

// DepositNetwork maps each asset to the network its deposit addresses use.
var DepositNetwork = map[Asset]Network{
	AssetBTC:  NetworkBTC,
	AssetETH:  NetworkETH,
	AssetUSDT: NetworkTRC20,
	AssetBNB:  NetworkBEP20,
}

// NetworkAsset is the inverse of DepositNetwork.
var NetworkAsset = map[Network]Asset{
	NetworkBTC:   AssetBTC,
	NetworkETH:   AssetETH,
	NetworkTRC20: AssetUSDT,
	NetworkBEP20: AssetBNB,
}

// CoinGeckoID maps each asset to its CoinGecko coin identifier.
var CoinGeckoID = map[Asset]string{
	AssetBTC:  "bitcoin",
	AssetETH:  "ethereum",
	AssetUSDT: "tether",
	AssetBNB:  "binancecoin",
}

// SupportedAssets lists every asset deposits are accepted for.
var SupportedAssets = []Asset{AssetBTC, AssetETH, AssetUSDT, AssetBNB}

// IsSupported reports whether the asset is one we accept deposits for.
func (a Asset) IsSupported() bool {
	switch a {
	case AssetBTC, AssetETH, AssetUSDT, AssetBNB:
		return true
	}
	return false
}
