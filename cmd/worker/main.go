package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumedesk/internal/config"
	"resumedesk/internal/database"
	"resumedesk/internal/metrics"
	"resumedesk/internal/observability"
	"resumedesk/internal/pdf"
	"resumedesk/internal/resume"
	"resumedesk/internal/storage"
	"resumedesk/internal/tasks"
	"resumedesk/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := observability.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if !cfg.Archive.Enabled {
		log.Fatal("pdf archive is disabled (ARCHIVE_ENABLED=false); nothing to do")
	}

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, logger)
	if err != nil {
		log.Fatalf("init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("shutdown tracing failed", slog.Any("error", err))
		}
	}()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	logger.Info("database connection ready for worker")

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Warn("close redis probe failed", slog.Any("error", err))
	}

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
	})

	renderer := pdf.NewRenderer(pdf.NewRodConverter(cfg.PDF.ChromeBin, cfg.PDF.RenderTimeout, logger), logger)
	pdfHandler := worker.NewPDFTaskHandler(resume.NewService(db, logger), renderer, storageClient, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypePDFArchive, pdfHandler)

	logger.Info("worker service started",
		slog.String("redis_addr", redisAddr),
		slog.Int("concurrency", cfg.Worker.Concurrency),
	)
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}
