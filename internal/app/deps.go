package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/storage"
)

const rateLimitKeyPrefix = "vidtube:ratelimit:"

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned cleanup drains background workers.
func buildDependencies(ctx context.Context, stores storeSet, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, func(context.Context) error, error) {
	objectStore, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, fmt.Errorf("configure object storage: %w", err)
	}

	uploader := media.NewUploader(objectStore, cfg.Media)
	reaper := media.NewReaper(objectStore, cfg.Reaper, logger)
	sessions := auth.NewManager(cfg.Tokens.AccessSecret, cfg.Tokens.RefreshSecret, cfg.Tokens.AccessTTL, cfg.Tokens.RefreshTTL, stores.users)

	limiter, closeLimiter := buildRateLimiter(cfg.RateLimit)

	deps := handlers.Dependencies{
		Users:          stores.users,
		Videos:         stores.videos,
		Comments:       stores.comments,
		Subscriptions:  stores.subscriptions,
		Likes:          stores.likes,
		Sessions:       sessions,
		Tokens:         sessions,
		Media:          uploader,
		Reaper:         reaper,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		AuthLimiter:    limiter,
		Cookies:        handlers.CookiePolicy{Secure: cfg.CookieSecure},
		HealthCheck:    stores.ping,
	}

	cleanup := func(ctx context.Context) error {
		return errors.Join(reaper.Shutdown(ctx), closeLimiter())
	}

	return deps, cleanup, nil
}

// buildRateLimiter prefers a Redis counter shared between instances and falls
// back to an in-process token bucket.
func buildRateLimiter(cfg config.RateLimitConfig) (middleware.RateLimiter, func() error) {
	if cfg.RedisAddr == "" {
		return middleware.NewMemoryRateLimiter(cfg.Requests, cfg.Window), func() error { return nil }
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return middleware.NewRedisRateLimiter(client, rateLimitKeyPrefix, cfg.Requests, cfg.Window), client.Close
}
