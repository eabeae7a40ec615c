package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, 300*time.Second, cfg.Cache.ProductPageTTL)
	assert.Equal(t, 300*time.Second, cfg.Cache.LikeCountTTL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
	assert.Contains(t, cfg.GetDSN(), "dbname=product_catalog")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "MEMORY")
	t.Setenv("CACHE_TTL_PRODUCT_PAGE", "45s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 45*time.Second, cfg.Cache.ProductPageTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("cache driver", func(t *testing.T) {
		t.Setenv("CACHE_DRIVER", "memcached")
		_, err := Load()
		assert.ErrorContains(t, err, "CACHE_DRIVER")
	})

	t.Run("duration", func(t *testing.T) {
		t.Setenv("CACHE_TTL_LIKE_COUNT", "five minutes")
		_, err := Load()
		assert.ErrorContains(t, err, "CACHE_TTL_LIKE_COUNT")
	})
}
