package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/brightmark-io/brightmark/internal/app"
	"github.com/brightmark-io/brightmark/internal/auth"
	jobmetrics "github.com/brightmark-io/brightmark/internal/jobs"
	"github.com/brightmark-io/brightmark/internal/platform/db"
	"github.com/brightmark-io/brightmark/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)
	authRepo := auth.NewRepository(pool)

	demoUsageHandler := jobs.NewDemoUsageReconcileHandler(pool, logger, metrics)
	sessionSweepHandler := jobs.NewSessionSweepHandler(authRepo, logger, metrics)

	demoUsageTask, err := jobs.NewDemoUsageReconcileTask(time.Now())
	if err != nil {
		logger.Error("build demo usage task", slog.Any("error", err))
		os.Exit(1)
	}
	sessionSweepTask, err := jobs.NewSessionSweepTask(time.Now())
	if err != nil {
		logger.Error("build session sweep task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDemoUsageReconcile, Handler: demoUsageHandler},
			{Type: jobs.TaskSessionSweep, Handler: sessionSweepHandler},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 2 * * *", Task: demoUsageTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "45 2 * * *", Task: sessionSweepTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
