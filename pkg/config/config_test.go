package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{Password: "secret"},
		JWT: JWTConfig{
			SecretKey:       "0123456789abcdef0123456789abcdef",
			Issuer:          "FUTAMedicalAPI",
			Audience:        "FUTAMedicalClient",
			AccessTokenTTL:  86400,
			RefreshTokenTTL: 604800,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		assert.NoError(t, validate(validConfig()))
	})

	t.Run("short secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.SecretKey = "too-short"
		assert.Error(t, validate(cfg))
	})

	t.Run("missing audience", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.Audience = ""
		assert.Error(t, validate(cfg))
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWT.RefreshTokenTTL = 0
		assert.Error(t, validate(cfg))
	})

	t.Run("url satisfies database requirement", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Password = ""
		cfg.Database.URL = "postgres://u:p@localhost:5432/db?sslmode=disable"
		assert.NoError(t, validate(cfg))
	})

	t.Run("no database credentials", func(t *testing.T) {
		cfg := validConfig()
		cfg.Database.Password = ""
		assert.Error(t, validate(cfg))
	})

	t.Run("invalid port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Port = 70000
		assert.Error(t, validate(cfg))
	})
}

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/db?sslmode=disable")
	t.Setenv("PORT", "9090")
	t.Setenv("CLINIC_SEED_SAMPLE_ACCOUNTS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@localhost:5432/db?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL())
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL())
	assert.Equal(t, "FUTAMedicalAPI", cfg.JWT.Issuer)
	assert.True(t, cfg.Seed.SampleAccounts)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
}
