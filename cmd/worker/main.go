package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forgeline/forgeline/internal/app"
	"github.com/forgeline/forgeline/internal/auth"
	"github.com/forgeline/forgeline/internal/claims"
	"github.com/forgeline/forgeline/internal/platform/cache"
	"github.com/forgeline/forgeline/internal/platform/db"
	"github.com/forgeline/forgeline/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	claimsStore := claims.NewPGStore(dbpool)
	claimsCache := claims.NewRedisCache(redisClient)
	mutator := claims.NewMutator(claimsStore, claimsCache, logger)
	authRepo := auth.NewRepository(dbpool)
	metrics := jobs.NewMetrics(prometheus.DefaultRegisterer)

	purgeTask, err := jobs.NewSessionsPurgeTask(24)
	if err != nil {
		logger.Error("build purge task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskClaimsUpdate, Handler: jobs.NewClaimsUpdateHandler(mutator, metrics, logger)},
			{Type: jobs.TaskSessionsPurge, Handler: jobs.NewSessionsPurgeHandler(authRepo, metrics, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 3 * * *", Task: purgeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("configure worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		logger.Info("serving metrics", slog.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting worker", slog.String("queue", jobs.QueueDefault))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shut down")
}
