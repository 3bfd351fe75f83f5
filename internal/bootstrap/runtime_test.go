package bootstrap

import (
	"context"
	"testing"

	"socialhub/internal/config"
	"socialhub/internal/mediastore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMediaStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory by default", func(t *testing.T) {
		store, err := NewMediaStore(ctx, &config.Config{Env: "development", Port: "8375", MediaMaxFiles: 10})
		require.NoError(t, err)
		assert.IsType(t, &mediastore.Instrumented{}, store)
		assert.IsType(t, &mediastore.MemoryStore{}, mediastore.Unwrap(store))
		assert.Equal(t, "http://localhost:8375/media/x.png", store.URL("x.png"))
	})

	t.Run("memory refused in production", func(t *testing.T) {
		_, err := NewMediaStore(ctx, &config.Config{Env: "production", MediaBackend: "memory"})
		assert.Error(t, err)
	})

	t.Run("s3 needs a bucket", func(t *testing.T) {
		_, err := NewMediaStore(ctx, &config.Config{MediaBackend: "s3", S3Region: "us-east-1"})
		assert.Error(t, err)
	})

	t.Run("s3 with static credentials", func(t *testing.T) {
		store, err := NewMediaStore(ctx, &config.Config{
			MediaBackend:    "s3",
			S3Bucket:        "socialhub-media",
			S3Region:        "us-east-1",
			S3AccessKey:     "AKIATEST",
			S3SecretKey:     "secret",
			S3PublicBaseURL: "https://cdn.example.com",
		})
		require.NoError(t, err)
		assert.IsType(t, &mediastore.S3Store{}, mediastore.Unwrap(store))
		assert.Equal(t, "https://cdn.example.com/media/a.png", store.URL("media/a.png"))
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewMediaStore(ctx, &config.Config{MediaBackend: "ftp"})
		assert.Error(t, err)
	})
}
