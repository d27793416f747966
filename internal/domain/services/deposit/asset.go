package deposit

import (
	"strings"

	"github.com/paydail/paydail-service/internal/domain/entities"
)

type assetRule struct {
	substrings []string
	asset      entities.Asset
}

// Rule order matters: "tether" contains "eth", so the USDT rule must run
// before the ETH rule.
var assetRules = []assetRule{
	{[]string{"btc"}, entities.AssetBTC},
	{[]string{"usdt", "tether"}, entities.AssetUSDT},
	{[]string{"eth"}, entities.AssetETH},
	{[]string{"bsc", "bnb"}, entities.AssetBNB},
}

// AssetResolver maps provider coin codes onto supported assets. Exact
// configured codes win over the substring heuristics, which cover testnet
// and token-on-chain variants like "tbtc4" or "ttrx:usdt".
type AssetResolver struct {
	overrides map[string]entities.Asset
}

// NewAssetResolver builds a resolver with exact-match overrides keyed by
// lowercase coin code.
func NewAssetResolver(overrides map[string]entities.Asset) *AssetResolver {
	normalized := make(map[string]entities.Asset, len(overrides))
	for code, asset := range overrides {
		if code == "" {
			continue
		}
		normalized[strings.ToLower(code)] = asset
	}
	return &AssetResolver{overrides: normalized}
}

// Resolve returns the asset for a provider coin code, or false when the coin
// is not supported.
func (r *AssetResolver) Resolve(coin string) (entities.Asset, bool) {
	code := strings.ToLower(strings.TrimSpace(coin))
	if code == "" {
		return "", false
	}

	if asset, ok := r.overrides[code]; ok {
		return asset, true
	}

	for _, rule := range assetRules {
		for _, sub := range rule.substrings {
			if strings.Contains(code, sub) {
				return rule.asset, true
			}
		}
	}

	return "", false
}
