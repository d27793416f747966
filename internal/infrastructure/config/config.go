package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string         `mapstructure:"environment"`
	LogLevel    string         `mapstructure:"log_level"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	JWT         JWTConfig      `mapstructure:"jwt"`
	BitGo       BitGoConfig    `mapstructure:"bitgo"`
	Pricing     PricingConfig  `mapstructure:"pricing"`
	Tracing     TracingConfig  `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	AccessTTL int    `mapstructure:"access_token_ttl"`
	Issuer    string `mapstructure:"issuer"`
}

// BitGoConfig contains the custodial wallet provider configuration. The
// per-asset coin codes double as resolver overrides for webhook payloads,
// and the per-asset wallet IDs select the wallet for address generation and
// transfer-detail lookups.
type BitGoConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	AccessToken   string `mapstructure:"access_token"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Timeout       int    `mapstructure:"timeout"` // seconds

	CoinBTC  string `mapstructure:"coin_btc"`
	CoinETH  string `mapstructure:"coin_eth"`
	CoinUSDT string `mapstructure:"coin_usdt"`
	CoinBNB  string `mapstructure:"coin_bnb"`

	WalletIDBTC  string `mapstructure:"wallet_id_btc"`
	WalletIDETH  string `mapstructure:"wallet_id_eth"`
	WalletIDUSDT string `mapstructure:"wallet_id_usdt"`
	WalletIDBNB  string `mapstructure:"wallet_id_bnb"`
}

// PricingConfig controls the spot price source and fiat conversion.
type PricingConfig struct {
	CoinGeckoBaseURL string  `mapstructure:"coingecko_base_url"`
	CoinGeckoAPIKey  string  `mapstructure:"coingecko_api_key"`
	RequestTimeout   int     `mapstructure:"request_timeout"`   // seconds
	CacheTTLMinutes  int     `mapstructure:"cache_ttl_minutes"` // spot price freshness window
	MarketsCacheTTL  int     `mapstructure:"markets_cache_ttl"` // seconds, markets overview in Redis
	DepositFeeRate   float64 `mapstructure:"deposit_fee_rate"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	CollectorURL string  `mapstructure:"collector_url"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	Insecure     bool    `mapstructure:"insecure"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build database URL if not provided
	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.rate_limit_per_min", 100)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "paydail")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.pool_size", 10)

	// JWT defaults
	viper.SetDefault("jwt.access_token_ttl", 604800) // 7 days
	viper.SetDefault("jwt.issuer", "paydail_service")

	// BitGo defaults
	viper.SetDefault("bitgo.base_url", "https://app.bitgo-test.com")
	viper.SetDefault("bitgo.timeout", 15)

	// Pricing defaults
	viper.SetDefault("pricing.coingecko_base_url", "https://api.coingecko.com")
	viper.SetDefault("pricing.request_timeout", 10)
	viper.SetDefault("pricing.cache_ttl_minutes", 5)
	viper.SetDefault("pricing.markets_cache_ttl", 60)
	viper.SetDefault("pricing.deposit_fee_rate", 0.01)

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.collector_url", "localhost:4317")
	viper.SetDefault("tracing.sample_rate", 1.0)
	viper.SetDefault("tracing.insecure", true)
}

func overrideFromEnv() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("server.port", p)
		}
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		viper.Set("jwt.secret", jwtSecret)
	}

	// BitGo
	if baseURL := os.Getenv("BITGO_COIN_BASE_URL"); baseURL != "" {
		viper.Set("bitgo.base_url", baseURL)
	}
	if token := os.Getenv("BITGO_SECRET_KEY"); token != "" {
		viper.Set("bitgo.access_token", token)
	}
	if secret := os.Getenv("BITGO_WEBHOOK_SECRET"); secret != "" {
		viper.Set("bitgo.webhook_secret", secret)
	}
	if coin := os.Getenv("BITGO_COIN_BTC"); coin != "" {
		viper.Set("bitgo.coin_btc", coin)
	}
	if coin := os.Getenv("BITGO_COIN_ETH"); coin != "" {
		viper.Set("bitgo.coin_eth", coin)
	}
	if coin := os.Getenv("BITGO_COIN_USDT"); coin != "" {
		viper.Set("bitgo.coin_usdt", coin)
	}
	if coin := os.Getenv("BITGO_COIN_BNB"); coin != "" {
		viper.Set("bitgo.coin_bnb", coin)
	}
	if walletID := os.Getenv("BITGO_WALLET_ID_BTC"); walletID != "" {
		viper.Set("bitgo.wallet_id_btc", walletID)
	}
	if walletID := os.Getenv("BITGO_WALLET_ID_ETH"); walletID != "" {
		viper.Set("bitgo.wallet_id_eth", walletID)
	}
	if walletID := os.Getenv("BITGO_WALLET_ID_USDT"); walletID != "" {
		viper.Set("bitgo.wallet_id_usdt", walletID)
	}
	if walletID := os.Getenv("BITGO_WALLET_ID_BNB"); walletID != "" {
		viper.Set("bitgo.wallet_id_bnb", walletID)
	}

	// CoinGecko
	if apiKey := os.Getenv("COINGECKO_API_KEY"); apiKey != "" {
		viper.Set("pricing.coingecko_api_key", apiKey)
	}
}

func validate(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.Database.URL == "" && (config.Database.Host == "" || config.Database.Name == "") {
		return fmt.Errorf("database configuration is incomplete")
	}

	if config.Pricing.DepositFeeRate < 0 || config.Pricing.DepositFeeRate >= 1 {
		return fmt.Errorf("deposit fee rate must be in [0, 1)")
	}

	// The webhook secret is intentionally not required at boot: the webhook
	// handler answers 500 until it is configured.
	return nil
}
