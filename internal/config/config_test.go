package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "DB_DRIVER", "JWT_SECRET", "JWT_ALGORITHM", "ACCESS_TOKEN_TTL_MINUTES",
		"REFRESH_TOKEN_TTL_DAYS", "CACHE_TTL_SECONDS", "UPLOAD_DIR", "CORS_ORIGINS", "REDIS_ADDR", "IS_PROD"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, DefaultAppPort, cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "HS256", cfg.JWTAlgorithm)
	assert.Equal(t, 2*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 10*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, DefaultUploadDir, cfg.UploadDir)
	assert.Equal(t, []string{DefaultCORSOrigin}, cfg.CORSOrigins)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.IsProd)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("JWT_ALGORITHM", "hs512")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "not-a-number")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IS_PROD", "true")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "HS512", cfg.JWTAlgorithm)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 10*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.IsProd)
}

func TestValidateRejectsDevelopmentSecretInProduction(t *testing.T) {
	cfg := &Config{JWTSecret: DefaultJWTSecret}
	assert.NoError(t, cfg.Validate(), "development may use the default secret")

	cfg.IsProd = true
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "a-real-secret"
	assert.NoError(t, cfg.Validate())
}
