package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/andes-erp/andes-erp/internal/accounting/accounts"
	"github.com/andes-erp/andes-erp/internal/accounting/journals"
	"github.com/andes-erp/andes-erp/internal/accounting/mappings"
	"github.com/andes-erp/andes-erp/internal/accounting/periods"
	"github.com/andes-erp/andes-erp/internal/analytics"
	analytichttp "github.com/andes-erp/andes-erp/internal/analytics/http"
	"github.com/andes-erp/andes-erp/internal/app"
	"github.com/andes-erp/andes-erp/internal/autopost"
	"github.com/andes-erp/andes-erp/internal/shared"
	"github.com/andes-erp/andes-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	audit := shared.NewAuditLogger(dbpool)
	reportCache := analytics.NewCache(redisClient, cfg.ReportCacheTTL)

	accountsRepo := accounts.NewRepository(dbpool)
	accountsService := accounts.NewService(accountsRepo, audit)

	journalsRepo := journals.NewRepository(dbpool)
	journalsService := journals.NewService(journalsRepo, audit)
	journalsService.WithCache(reportCache)

	mappingsRepo := mappings.NewRepository(dbpool)
	mappingsService := mappings.NewService(mappingsRepo, accountsRepo)

	generator := autopost.NewGenerator(mappingsService, journalsService, autopost.NewBalanceSource(dbpool), logger)
	generator.WithAlerts(jobs.NewAlertEnqueuer(jobClient, logger))

	periodsRepo := periods.NewRepository(dbpool)
	periodsService := periods.NewService(periodsRepo, audit)
	periodsService.WithSweeper(generator)

	analyticsService := analytics.NewService(analytics.NewRepository(dbpool), reportCache, logger)

	jobsHandler := jobs.NewHandler(asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr}), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		AccountsHandler: accounts.NewHandler(logger, accountsService),
		PeriodsHandler:  periods.NewHandler(logger, periodsService),
		JournalsHandler: journals.NewHandler(logger, journalsService),
		ConfigHandler:   mappings.NewHandler(logger, mappingsService),
		ReportsHandler:  analytichttp.NewHandler(logger, analyticsService),
		JobsHandler:     jobsHandler,
		Pool:            dbpool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
