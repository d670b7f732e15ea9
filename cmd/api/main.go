package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remit-ledger/config"
	"remit-ledger/internal/adapter/gateway"
	httpHandler "remit-ledger/internal/adapter/http/handler"
	pgStorage "remit-ledger/internal/adapter/storage/postgres"
	redisStorage "remit-ledger/internal/adapter/storage/redis"
	"remit-ledger/internal/core/ports"
	"remit-ledger/internal/service"
	"remit-ledger/internal/worker"
	"remit-ledger/pkg/logger"

	"github.com/shopspring/decimal"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Remit Ledger")

	// Business parameters are decimal strings in config; a typo here must
	// stop the process, not silently move money at the wrong rate.
	feeRate, err := decimal.NewFromString(cfg.Ledger.TransferFeeRate)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid transfer fee rate")
	}
	spread, err := decimal.NewFromString(cfg.Ledger.SwapSpread)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid swap spread")
	}
	withdrawMin, err := decimal.NewFromString(cfg.Withdrawal.MinAmount)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid withdrawal minimum")
	}
	withdrawMax, err := decimal.NewFromString(cfg.Withdrawal.MaxAmount)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid withdrawal maximum")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	balanceRepo := pgStorage.NewBalanceRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	transferRepo := pgStorage.NewTransferRepo(pool)
	swapRepo := pgStorage.NewSwapRepo(pool)
	withdrawalRepo := pgStorage.NewWithdrawalRepo(pool)
	depositRepo := pgStorage.NewDepositRepo(pool)
	jobRepo := pgStorage.NewJobRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	rateCache := redisStorage.NewRateCache(rdb)
	depositCache := redisStorage.NewDepositCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize gateways
	ratesGw := gateway.NewRateGateway(
		cfg.Rates.URL,
		&http.Client{Timeout: cfg.Rates.Timeout},
		rateCache,
		cfg.Rates.CacheTTL,
		log,
	)
	payoutGw := gateway.NewPayoutGateway(
		cfg.Payout.URL,
		&http.Client{Timeout: cfg.Payout.Timeout},
		log,
	)

	// Initialize core services
	sigSvc := service.NewHMACSignatureService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	notifier := service.NewLogNotifier(log)

	// Initialize business services
	transferSvc := service.NewTransferService(
		accountRepo, balanceRepo, ledgerRepo, transferRepo,
		transactor, notifier, feeRate, log,
	)
	swapSvc := service.NewSwapService(
		accountRepo, balanceRepo, ledgerRepo, swapRepo,
		ratesGw, transactor, spread, log,
	)
	withdrawalSvc := service.NewWithdrawalService(
		accountRepo, balanceRepo, ledgerRepo, withdrawalRepo, jobRepo,
		payoutGw, transactor, notifier,
		service.WithdrawalConfig{
			MinAmount:   withdrawMin,
			MaxAmount:   withdrawMax,
			MaxAttempts: cfg.Worker.MaxAttempts,
			BackoffBase: cfg.Worker.BackoffBase,
		},
		log,
	)
	depositSvc := service.NewDepositService(
		accountRepo, balanceRepo, ledgerRepo, depositRepo,
		depositCache, transactor, notifier, log,
	)
	reportingSvc := service.NewReportingService(balanceRepo, ledgerRepo)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Start the withdrawal job worker
	runner := worker.New(jobRepo, withdrawalSvc, cfg.Worker.PollInterval, log)
	workerCtx, workerCancel := context.WithCancel(ctx)
	runner.Start(workerCtx)
	log.Info().Dur("poll_interval", cfg.Worker.PollInterval).Msg("Job worker started")

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TransferSvc:    transferSvc,
		SwapSvc:        swapSvc,
		WithdrawalSvc:  withdrawalSvc,
		DepositSvc:     depositSvc,
		ReportingSvc:   reportingSvc,
		SignatureSvc:   sigSvc,
		TokenSvc:       tokenSvc,
		WebhookSecret:  cfg.Deposit.WebhookSecret,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop the worker after the HTTP server so no new jobs arrive while
	// the in-flight one drains.
	workerCancel()
	runner.Stop()
	log.Info().Msg("Job worker stopped")

	log.Info().Msg("Server exited")
}
