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

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/admin"
	"github.com/brightmark-io/brightmark/internal/app"
	"github.com/brightmark-io/brightmark/internal/auth"
	"github.com/brightmark-io/brightmark/internal/modules"
	"github.com/brightmark-io/brightmark/internal/observability"
	"github.com/brightmark-io/brightmark/internal/orgs"
	"github.com/brightmark-io/brightmark/internal/platform/cache"
	"github.com/brightmark-io/brightmark/internal/platform/db"
	"github.com/brightmark-io/brightmark/internal/prompts"
	"github.com/brightmark-io/brightmark/internal/reports"
	"github.com/brightmark-io/brightmark/internal/shared"
	"github.com/brightmark-io/brightmark/internal/sysconfig"
	"github.com/brightmark-io/brightmark/internal/users"
	"github.com/brightmark-io/brightmark/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "brightmark_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	guard := access.NewGuard(logger)

	reportsRepo := reports.NewRepository(pool)
	reportsService := reports.NewService(reportsRepo)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, reportsService)

	mw := access.Middleware{Guard: guard, Source: usersService, Logger: logger, Metrics: metrics}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	permissionsHandler := access.NewHandler(guard, mw)
	usersHandler := users.NewHandler(logger, usersService, guard, mw)
	orgsHandler := orgs.NewHandler(logger, orgs.NewService(orgs.NewRepository(pool)), mw)
	reportsHandler := reports.NewHandler(logger, reportsService, guard, mw)
	modulesHandler := modules.NewHandler(logger, guard, mw)
	promptsHandler := prompts.NewHandler(logger, prompts.NewRepository(pool), mw)
	sysconfigHandler := sysconfig.NewHandler(logger, sysconfig.NewRepository(pool), mw)
	adminHandler := admin.NewHandler(logger, admin.NewService(pool), mw)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		AuthHandler:        authHandler,
		PermissionsHandler: permissionsHandler,
		UsersHandler:       usersHandler,
		OrgsHandler:        orgsHandler,
		ReportsHandler:     reportsHandler,
		ModulesHandler:     modulesHandler,
		PromptsHandler:     promptsHandler,
		SysConfigHandler:   sysconfigHandler,
		AdminHandler:       adminHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
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
