package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://localhost/tidemark")
	t.Setenv("APP_ENV", "")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.IsLocal())
	assert.Equal(t, ":8080", cfg.Server.RunAddress)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL)
	assert.NotEmpty(t, cfg.Auth.JWTSecret)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATABASE_URI", "postgres://db/x")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RUN_ADDRESS", ":9090")
	t.Setenv("TOKEN_TTL", "1h")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, ":9090", cfg.Server.RunAddress)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing database", env: map[string]string{"DATABASE_URI": ""}},
		{name: "prod without secret", env: map[string]string{"DATABASE_URI": "x", "APP_ENV": "prod", "JWT_SECRET": ""}},
		{name: "unknown env", env: map[string]string{"DATABASE_URI": "x", "APP_ENV": "staging"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(viper.New())
			assert.Error(t, err)
		})
	}
}
