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

	"github.com/forgeline/forgeline/internal/app"
	"github.com/forgeline/forgeline/internal/auth"
	"github.com/forgeline/forgeline/internal/authz"
	"github.com/forgeline/forgeline/internal/claims"
	"github.com/forgeline/forgeline/internal/inventory"
	"github.com/forgeline/forgeline/internal/platform/cache"
	"github.com/forgeline/forgeline/internal/platform/db"
	"github.com/forgeline/forgeline/internal/procurement"
	"github.com/forgeline/forgeline/internal/production"
	"github.com/forgeline/forgeline/internal/quality"
	"github.com/forgeline/forgeline/internal/sales"
	"github.com/forgeline/forgeline/internal/shared"
	"github.com/forgeline/forgeline/internal/users"
	"github.com/forgeline/forgeline/jobs"
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

	sessionManager := shared.NewSessionManager(redisClient, "forgeline_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	claimsStore := claims.NewPGStore(dbpool)
	claimsCache := claims.NewRedisCache(redisClient)
	gate := authz.NewGate(sessionManager, claimsStore, claimsCache, logger)
	guard := authz.Middleware{Gate: gate, Logger: logger, DeniedPath: cfg.AccessDeniedPath}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, jobClient, guard)

	salesRepo := sales.NewRepository(dbpool)
	salesService := sales.NewService(salesRepo)
	salesHandler := sales.NewHandler(logger, salesService, guard)

	inventoryRepo := inventory.NewRepository(dbpool)
	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, guard)

	procurementRepo := procurement.NewRepository(dbpool)
	procurementService := procurement.NewService(procurementRepo, inventoryService)
	procurementHandler := procurement.NewHandler(logger, procurementService, guard)

	qualityRepo := quality.NewRepository(dbpool)
	qualityService := quality.NewService(qualityRepo)
	qualityHandler := quality.NewHandler(logger, qualityService, guard)

	productionRepo := production.NewRepository(dbpool)
	productionService := production.NewService(productionRepo, inventoryService)
	productionHandler := production.NewHandler(logger, productionService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		SalesHandler:       salesHandler,
		ProcurementHandler: procurementHandler,
		InventoryHandler:   inventoryHandler,
		QualityHandler:     qualityHandler,
		ProductionHandler:  productionHandler,
		JobsHandler:        jobsHandler,
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
