package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/paydail/paydail-service/internal/adapters/bitgo"
	"github.com/paydail/paydail-service/internal/adapters/coingecko"
	"github.com/paydail/paydail-service/internal/api/handlers"
	"github.com/paydail/paydail-service/internal/api/routes"
	"github.com/paydail/paydail-service/internal/domain/entities"
	"github.com/paydail/paydail-service/internal/domain/services/deposit"
	"github.com/paydail/paydail-service/internal/domain/services/market"
	"github.com/paydail/paydail-service/internal/domain/services/wallet"
	"github.com/paydail/paydail-service/internal/infrastructure/cache"
	"github.com/paydail/paydail-service/internal/infrastructure/config"
	"github.com/paydail/paydail-service/internal/infrastructure/database"
	"github.com/paydail/paydail-service/internal/infrastructure/repositories"
	"github.com/paydail/paydail-service/pkg/logger"
	"github.com/paydail/paydail-service/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracer(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		CollectorURL: cfg.Tracing.CollectorURL,
		Environment:  cfg.Environment,
		SampleRate:   cfg.Tracing.SampleRate,
		Insecure:     cfg.Tracing.Insecure,
	}, log.Zap())
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}
	defer shutdownTracing(context.Background())

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	log.Info("Database migrations applied")

	redisClient, err := cache.NewRedisClient(&cfg.Redis, log.Zap())
	if err != nil {
		// Redis only backs response caching, so boot without it.
		log.Warn("Redis unavailable, continuing without cache", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	userRepo := repositories.NewUserRepository(db)
	depositRepo := repositories.NewDepositRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	rateRepo := repositories.NewRateRepository(db)

	bitgoClient := bitgo.NewClient(bitgo.Config{
		BaseURL:     cfg.BitGo.BaseURL,
		AccessToken: cfg.BitGo.AccessToken,
		Timeout:     time.Duration(cfg.BitGo.Timeout) * time.Second,
	}, log)

	geckoClient := coingecko.NewClient(coingecko.Config{
		BaseURL: cfg.Pricing.CoinGeckoBaseURL,
		APIKey:  cfg.Pricing.CoinGeckoAPIKey,
		Timeout: time.Duration(cfg.Pricing.RequestTimeout) * time.Second,
	}, log)

	priceCache := deposit.NewPriceCache(geckoClient,
		time.Duration(cfg.Pricing.CacheTTLMinutes)*time.Minute, log)
	converter := deposit.NewConverter(priceCache, rateRepo,
		decimal.NewFromFloat(cfg.Pricing.DepositFeeRate), log)

	resolver := deposit.NewAssetResolver(map[string]entities.Asset{
		cfg.BitGo.CoinBTC:  entities.AssetBTC,
		cfg.BitGo.CoinETH:  entities.AssetETH,
		cfg.BitGo.CoinUSDT: entities.AssetUSDT,
		cfg.BitGo.CoinBNB:  entities.AssetBNB,
	})

	engine := deposit.NewEngine(userRepo, depositRepo, notificationRepo,
		converter, resolver, bitgoClient, map[entities.Asset]string{
			entities.AssetBTC:  cfg.BitGo.WalletIDBTC,
			entities.AssetETH:  cfg.BitGo.WalletIDETH,
			entities.AssetUSDT: cfg.BitGo.WalletIDUSDT,
			entities.AssetBNB:  cfg.BitGo.WalletIDBNB,
		}, log)

	walletService := wallet.NewService(userRepo, bitgoClient, cfg.BitGo, log)
	marketService := market.NewService(geckoClient, rateRepo, redisClient,
		time.Duration(cfg.Pricing.MarketsCacheTTL)*time.Second, log)

	router := routes.SetupRoutes(cfg, log, routes.Handlers{
		Health:  handlers.NewHealthHandlers(db, redisClient, log),
		Webhook: handlers.NewWebhookHandlers(engine, cfg.BitGo.WebhookSecret, log),
		Wallet:  handlers.NewWalletHandlers(walletService, log),
		Market:  handlers.NewMarketHandlers(marketService, log),
	})

	// Keep the spot price cache warm so deposits are valued with fresh
	// prices even between webhook deliveries.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() {
		refreshCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := priceCache.Refresh(refreshCtx); err != nil {
			log.Warn("Scheduled price refresh failed", "error", err)
		}
	}); err != nil {
		log.Fatal("Failed to schedule price refresh", "error", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", "addr", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}

	log.Info("Server stopped")
}
