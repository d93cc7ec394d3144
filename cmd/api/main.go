package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumedesk/internal/api"
	"resumedesk/internal/auth"
	"resumedesk/internal/config"
	"resumedesk/internal/database"
	"resumedesk/internal/observability"
	"resumedesk/internal/pdf"
	"resumedesk/internal/resume"
	"resumedesk/internal/session"
	"resumedesk/internal/storage"
	"resumedesk/internal/tasks"
)

func main() {
	cfg := config.MustLoad()

	logger := observability.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	logger.Info("database connection ready",
		slog.String("host", cfg.Database.Host),
		slog.Int("port", cfg.Database.Port),
		slog.String("db", cfg.Database.Name),
	)

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(ctx, db); err != nil {
			log.Fatalf("run migrations: %v", err)
		}
		logger.Info("database migrated")
	}

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}
	}

	var store session.Store
	if strings.EqualFold(cfg.Session.Store, "redis") {
		store = session.NewRedisStore(redisClient)
	} else {
		logger.Warn("using in-memory session store; sessions are lost on restart")
		store = session.NewMemoryStore()
	}
	sessions, err := session.NewManager(store, session.Options{
		CookieName: cfg.Session.CookieName,
		Secret:     []byte(cfg.Session.Secret),
		TTL:        cfg.Session.TTL,
		Domain:     cfg.API.CookieDomain,
		Secure:     cfg.Session.Secure,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("init session manager: %v", err)
	}

	converter := pdf.NewRodConverter(cfg.PDF.ChromeBin, cfg.PDF.RenderTimeout, logger)
	deps := api.Deps{
		Logger:      logger,
		ServiceName: cfg.Tracing.ServiceName,
		Tracing:     cfg.Tracing.Enabled,
		Sessions:    sessions,
		Auth:        auth.NewService(db, logger),
		Resumes:     resume.NewService(db, logger),
		Renderer:    pdf.NewRenderer(converter, logger),
	}
	if redisClient != nil {
		deps.Limiter = api.NewRedisLoginLimiter(redisClient, cfg.API.LoginRateLimitPerHour)
	}

	if cfg.Archive.Enabled {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := asynqClient.Close(); err != nil {
				logger.Error("close asynq client failed", slog.Any("error", err))
			}
		}()
		storageClient, err := storage.NewClient(ctx, cfg.MinIO)
		if err != nil {
			log.Fatalf("init storage client: %v", err)
		}
		deps.Archive = tasks.NewClient(asynqClient, cfg.Archive.MaxRetry)
		deps.Storage = storageClient
		logger.Info("pdf archive enabled", slog.String("bucket", cfg.MinIO.Bucket))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start api server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
}
