// Package bootstrap connects the runtime dependencies shared by the
// server and the command line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/mediastore"
	"socialhub/internal/middleware"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	ApplySchema bool
}

// Runtime holds the connected dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Media mediastore.Store
}

// InitRuntime connects to the database and Redis and builds the media store.
// Redis is optional; a nil client disables caching, revocation and pub/sub.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)

	store, err := NewMediaStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Runtime{DB: db, Redis: cache.GetClient(), Media: store}, nil
}

// NewMediaStore selects the media backend and wraps it with the shared
// throttle and instrumentation.
func NewMediaStore(ctx context.Context, cfg *config.Config) (mediastore.Store, error) {
	var store mediastore.Store
	switch backend := strings.ToLower(strings.TrimSpace(cfg.MediaBackend)); backend {
	case "", "memory":
		if database.IsProdLikeEnv(cfg.Env) {
			return nil, fmt.Errorf("MEDIA_BACKEND=memory is not allowed when APP_ENV=%s", cfg.Env)
		}
		store = mediastore.NewMemoryStore(fmt.Sprintf("http://localhost:%s/media", cfg.Port))
		middleware.Logger.Warn("using in-memory media store; uploads are lost on restart")
	case "s3":
		s3Store, err := mediastore.NewS3Store(ctx, mediastore.S3Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
			UsePathStyle:  cfg.S3UsePathStyle,
			KeyPrefix:     "media",
		})
		if err != nil {
			return nil, fmt.Errorf("media store: %w", err)
		}
		store = s3Store
		middleware.Logger.Info("S3 media store configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
	default:
		return nil, fmt.Errorf("unsupported MEDIA_BACKEND %q", backend)
	}

	burst := int(cfg.MediaRatePerSecond)
	if burst < cfg.MediaMaxFiles {
		burst = cfg.MediaMaxFiles
	}
	return mediastore.NewInstrumented(store, cfg.MediaRatePerSecond, burst), nil
}
