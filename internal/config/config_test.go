package config_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/cyphera/cyphera-wallet-policy/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envSecrets resolves secrets from the fallback variable only.
type envSecrets map[string]string

func (e envSecrets) GetSecretString(_ context.Context, arnEnvVar, fallbackEnvVar string) (string, error) {
	if v := e[fallbackEnvVar]; v != "" {
		return v, nil
	}
	return "", fmt.Errorf("secret not found using ARN env var '%s' or direct env var '%s'", arnEnvVar, fallbackEnvVar)
}

func load(vars map[string]string) (*config.Config, error) {
	return config.Load(context.Background(), func(k string) string { return vars[k] }, envSecrets(vars))
}

func TestLoad_LocalDefaults(t *testing.T) {
	cfg, err := load(map[string]string{"BUNDLER_URL": "http://localhost:4337"})
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Stage)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, uint64(84532), cfg.ChainID)
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.AuthDisabled)
	assert.Equal(t, 20, cfg.RateLimitPerSecond)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Production(t *testing.T) {
	cfg, err := load(map[string]string{
		"STAGE":                  "prod",
		"BUNDLER_URL":            "https://bundler.example.com/rpc",
		"CHAIN_ID":               "8453",
		"DATABASE_URL":           "postgres://policy@db/wallet",
		"WEB3AUTH_JWKS_ENDPOINT": "https://api-auth.web3auth.io/jwks",
		"RESEND_API_KEY":         "re_123",
		"EMAIL_FROM_ADDRESS":     "wallet@example.com",
		"CORS_ALLOWED_ORIGINS":   "https://app.example.com, https://admin.example.com",
	})
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, uint64(8453), cfg.ChainID)
	assert.Equal(t, "postgres://policy@db/wallet", cfg.DatabaseURL)
	assert.False(t, cfg.AuthDisabled)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "re_123", cfg.ResendAPIKey)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{name: "unknown stage", vars: map[string]string{"STAGE": "staging", "BUNDLER_URL": "http://x"}},
		{name: "missing bundler", vars: map[string]string{}},
		{name: "bad chain id", vars: map[string]string{"BUNDLER_URL": "http://x", "CHAIN_ID": "base"}},
		{name: "negative workers", vars: map[string]string{"BUNDLER_URL": "http://x", "DISPATCH_WORKERS": "-1"}},
		{name: "prod without database", vars: map[string]string{"STAGE": "prod", "BUNDLER_URL": "http://x", "JWT_SECRET": "s"}},
		{name: "dev without auth", vars: map[string]string{"STAGE": "dev", "BUNDLER_URL": "http://x", "DATABASE_URL": "postgres://db"}},
		{name: "resend without sender", vars: map[string]string{"BUNDLER_URL": "http://x", "RESEND_API_KEY": "re_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(tt.vars)
			assert.Error(t, err)
		})
	}
}
