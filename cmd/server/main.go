package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	applending "github.com/library/backend/internal/application/lending"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/infrastructure/config"
	"github.com/library/backend/internal/infrastructure/event"
	"github.com/library/backend/internal/infrastructure/logger"
	"github.com/library/backend/internal/infrastructure/notification"
	"github.com/library/backend/internal/infrastructure/persistence"
	"github.com/library/backend/internal/infrastructure/scheduler"
	"github.com/library/backend/internal/infrastructure/settings"
	"github.com/library/backend/internal/infrastructure/telemetry"
	"github.com/library/backend/internal/interfaces/http/handler"
	"github.com/library/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	log.Info("Starting library fine service",
		zap.String("version", version),
		zap.String("env", cfg.App.Env),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, gormlogger.Warn)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("Database close failed", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable query tracing", zap.Error(err))
		}
	}

	// Redis settings cache, optional
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unavailable, settings will be read from the database", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()
	}

	// Repositories
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	txnRepo := persistence.NewGormFineTransactionRepository(db.DB)
	operatorRepo := persistence.NewGormOperatorRepository(db.DB)
	ledger := persistence.NewGormLedgerStore(db.DB)

	// Settings
	settingsProvider := settings.NewDBSettingsProvider(db.DB, redisClient, cfg.Lending.SettingsCacheTTL, log)
	if err := settingsProvider.Seed(ctx, cfg.Lending); err != nil {
		log.Fatal("Failed to seed fine settings", zap.Error(err))
	}

	// Event bus and notifications
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eventBus.Stop(stopCtx)
	}()

	notifier := notification.NewLogNotifier(log)
	notificationHandler := notification.NewHandler(notifier, memberRepo, loanRepo, txnRepo, log)
	eventBus.Subscribe(notificationHandler, notificationHandler.EventTypes()...)

	// Application services
	clock := lending.NewSystemClock()
	banService := applending.NewBanService(loanRepo, memberRepo, clock, eventBus, log)
	accrualService := applending.NewFineAccrualService(
		loanRepo, memberRepo, ledger, settingsProvider, clock, banService, eventBus, log)
	paymentService := applending.NewPaymentService(
		loanRepo, memberRepo, txnRepo, operatorRepo, ledger, clock, eventBus, log)
	queryService := applending.NewQueryService(loanRepo, memberRepo, txnRepo)

	// Nightly jobs
	var cronTrigger *scheduler.LendingCronTrigger
	if cfg.Scheduler.Enabled {
		schedConfig := scheduler.DefaultConfig()
		schedConfig.MaxConcurrentJobs = cfg.Scheduler.MaxConcurrentJobs
		schedConfig.JobTimeout = cfg.Scheduler.JobTimeout

		executor := scheduler.NewLendingJobExecutor(accrualService, banService, log)
		jobScheduler := scheduler.NewScheduler(schedConfig, executor, log)
		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = jobScheduler.Stop(stopCtx)
		}()

		triggerConfig, err := scheduler.NewCronTriggerConfig(
			cfg.Scheduler.AccrualCronSchedule, cfg.Scheduler.SweepCronSchedule)
		if err != nil {
			log.Fatal("Invalid cron schedule", zap.Error(err))
		}
		cronTrigger = scheduler.NewLendingCronTrigger(triggerConfig, jobScheduler, log)
		if err := cronTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = cronTrigger.Stop(stopCtx)
		}()
	}

	// HTTP layer
	handlers := router.Handlers{
		Lending: handler.NewLendingHandler(paymentService, queryService, log),
		Admin:   newAdminHandler(accrualService, banService, cronTrigger, log),
		System:  handler.NewSystemHandler(db.DB, redisClient, version, log),
	}

	engine := router.New(cfg, log, handlers, router.Options{
		TracingEnabled: cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		RateLimit:      300,
		RateWindow:     time.Minute,
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("Server stopped")
}

// newAdminHandler keeps the nil-interface conversion in one place: a nil
// *LendingCronTrigger must become a nil SchedulerStatusAPI, not a non-nil
// interface wrapping nil.
func newAdminHandler(
	accrual handler.AccrualAPI,
	bans handler.BanSweepAPI,
	trigger *scheduler.LendingCronTrigger,
	log *zap.Logger,
) *handler.AdminHandler {
	var status handler.SchedulerStatusAPI
	if trigger != nil {
		status = trigger
	}
	return handler.NewAdminHandler(accrual, bans, status, log)
}
