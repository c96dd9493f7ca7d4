package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storyloom/internal/config"
	"storyloom/internal/database"
	handlers "storyloom/internal/handler"
	"storyloom/internal/mailer"
	"storyloom/internal/middleware"
	"storyloom/internal/repository"
	"storyloom/internal/service"
	"storyloom/internal/storage"
)

type App struct {
	DB      *database.DB
	Redis   *redis.Client
	Handler http.Handler
}

// New connects every backing service and builds the HTTP handler.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	// connection DB
	db, err := database.ConnectDB(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := newStorage(ctx, cfg, log)
	if err != nil {
		_ = db.CloseDB()
		return nil, err
	}

	rdb := connectRedis(ctx, cfg.RateLimit, log)

	// an untyped nil keeps the limiter disabled
	var limiterBackend redis.Cmdable
	if rdb != nil {
		limiterBackend = rdb
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)
	mail := mailer.New(cfg.Email, cfg.FrontendURL, log)
	services := service.NewService(repo, cfg, store, mail, db, log)

	limiter := middleware.NewRateLimiter(limiterBackend, cfg.RateLimit.Window, cfg.RateLimit.MaxRequests, log)
	metrics := middleware.NewMetrics()

	h := handlers.NewHandlers(services, store, cfg, log)

	return &App{
		DB:      db,
		Redis:   rdb,
		Handler: handlers.NewRouter(h, limiter, metrics),
	}, nil
}

func (a *App) Close() error {
	var errList []error
	if a.Redis != nil {
		errList = append(errList, a.Redis.Close())
	}
	errList = append(errList, a.DB.CloseDB())
	return errors.Join(errList...)
}

func newStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Storage, error) {
	if cfg.StorageBackend == config.StorageMinIO {
		log.Info("Using MinIO storage", zap.String("endpoint", cfg.MinIO.Endpoint), zap.String("bucket", cfg.MinIO.BucketName))
		client, err := storage.NewMinIOClient(ctx, cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("init minio: %w", err)
		}
		return client, nil
	}

	log.Info("Using local storage", zap.String("dir", cfg.UploadDir))
	local, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init upload dir: %w", err)
	}
	return local, nil
}

// connectRedis returns nil when no URL is configured or the server is unreachable.
func connectRedis(ctx context.Context, cfg config.RateLimit, log *zap.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, rate limiting disabled")
		return nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn("Invalid REDIS_URL, rate limiting disabled", zap.Error(err))
		return nil
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, rate limiting disabled", zap.Error(err))
		_ = rdb.Close()
		return nil
	}

	log.Info("Rate limiting enabled",
		zap.Duration("window", cfg.Window),
		zap.Int("max_requests", cfg.MaxRequests),
	)
	return rdb
}
