package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"current-account-ledger/config"
	httpHandler "current-account-ledger/internal/adapter/http/handler"
	kafkaMsg "current-account-ledger/internal/adapter/messaging/kafka"
	pgStorage "current-account-ledger/internal/adapter/storage/postgres"
	redisStorage "current-account-ledger/internal/adapter/storage/redis"
	"current-account-ledger/internal/core/ports"
	"current-account-ledger/internal/service"
	"current-account-ledger/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	issueToken := flag.String("issue-token", "", "print an operator JWT for the given subject and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	if *issueToken != "" {
		token, expiresAt, err := tokenSvc.Generate(*issueToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "token expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
		fmt.Println(token)
		return
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("batch_enabled", cfg.Batch.Enabled).
		Msg("Starting current account ledger")

	ctx := context.Background()

	if cfg.Database.MigrateOnStart {
		if err := pgStorage.RunMigrations(cfg.Database.DSN(), logger.Component(log, "migrate")); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

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

	// Journal stream
	var journalPub ports.JournalPublisher = kafkaMsg.NopPublisher{}
	if cfg.Kafka.Enabled {
		kp := kafkaMsg.NewJournalPublisher(kafkaMsg.NewWriter(cfg.Kafka, logger.Component(log, "kafka")))
		defer kp.Close()
		journalPub = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.JournalTopic).Msg("Kafka journal stream enabled")
	}

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	ledger := pgStorage.NewTransactionRepo(pool)
	balanceCPs := pgStorage.NewBalanceCheckpointRepo(pool)
	accountingCPs := pgStorage.NewAccountingCheckpointRepo(pool)
	journalRepo := pgStorage.NewJournalRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize services
	balancePub := redisStorage.NewBalancePublisher(rdb)
	balanceSvc := service.NewBalanceService(accountRepo, ledger, balanceCPs, balancePub, logger.Component(log, "balance"))
	txnSvc := service.NewTransactionService(accountRepo, ledger, balanceCPs, balanceSvc, balancePub, transactor, logger.Component(log, "transactions"))
	poster := service.NewJournalPoster(accountRepo, ledger, accountingCPs, journalRepo, journalPub, transactor, logger.Component(log, "poster"))

	// Batch jobs. Both are always registered so they can be triggered over
	// HTTP; the tickers only run when batch.enabled is set.
	schedLog := logger.Component(log, "scheduler")
	scheduler := service.NewScheduler(redisStorage.NewJobLock(rdb), cfg.Batch.LockTTL, schedLog)
	balanceInterval, postingInterval := cfg.Batch.BalanceInterval, cfg.Batch.PostingInterval
	if !cfg.Batch.Enabled {
		balanceInterval, postingInterval = 0, 0
	}
	scheduler.Register(service.NewBalanceScanner(balanceCPs, balanceSvc, cfg.Batch, schedLog), balanceInterval)
	scheduler.Register(service.NewAccountingScanner(accountingCPs, poster, cfg.Batch, schedLog), postingInterval)

	schedCtx, stopScheduler := context.WithCancel(ctx)
	scheduler.Start(schedCtx)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		BalanceSvc:     balanceSvc,
		TransactionSvc: txnSvc,
		Poster:         poster,
		JournalRepo:    journalRepo,
		Jobs:           scheduler,
		TokenSvc:       tokenSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		Idempotency:    redisStorage.NewIdempotencyCache(rdb),
		HealthCheckers: []ports.HealthChecker{pgStorage.NewHealthCheck(pool), redisStorage.NewHealthCheck(rdb)},
		PostingDelay:   cfg.Batch.PostingDelay,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
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
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	stopScheduler()
	scheduler.Wait()

	log.Info().Msg("Server exited")
}
