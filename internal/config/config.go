// Package config assembles the service configuration from the environment
// and AWS Secrets Manager.
package config

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cyphera/cyphera-wallet-policy/internal/constants"
	"github.com/cyphera/cyphera-wallet-policy/internal/helpers"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// SecretResolver reads a secret by ARN variable with an env fallback.
type SecretResolver interface {
	GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error)
}

// Config is the complete runtime configuration.
type Config struct {
	Stage string
	Port  string

	// DatabaseURL is empty on local stages that run on in-memory stores.
	DatabaseURL string
	DBMaxConns  int32
	DBTxRetries int

	JWKSURL      string
	JWTIssuer    string
	JWTAudience  string
	JWTSecret    string
	AuthDisabled bool

	BundlerURL  string
	BundlerPath string
	ChainID     uint64

	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	AppURL        string

	AuditQueueURL string

	CORSAllowedOrigins []string
	RateLimitPerSecond int
	RateLimitBurst     int
	DispatchWorkers    int
}

// LoadDotEnv reads a .env file when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}
}

// Load builds the Config. getenv reads plain settings; secrets resolves
// DATABASE_URL, JWT_SECRET and RESEND_API_KEY.
func Load(ctx context.Context, getenv func(string) string, secrets SecretResolver) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Stage:         env("STAGE", helpers.StageLocal),
		Port:          env("API_PORT", constants.DefaultAPIPort),
		JWKSURL:       env("WEB3AUTH_JWKS_ENDPOINT", ""),
		JWTIssuer:     env("WEB3AUTH_ISSUER", ""),
		JWTAudience:   env("WEB3AUTH_AUDIENCE", ""),
		BundlerURL:    env("BUNDLER_URL", ""),
		BundlerPath:   env("BUNDLER_RPC_PATH", "/"),
		EmailFrom:     env("EMAIL_FROM_ADDRESS", ""),
		EmailFromName: env("EMAIL_FROM_NAME", "Wallet Policy"),
		AppURL:        env("APP_URL", "http://localhost:3000"),
		AuditQueueURL: env("AUDIT_QUEUE_URL", ""),
	}

	if !helpers.IsValidStage(cfg.Stage) {
		return nil, fmt.Errorf("invalid STAGE %q", cfg.Stage)
	}
	local := cfg.Stage == helpers.StageLocal

	var err error
	if cfg.ChainID, err = strconv.ParseUint(env("CHAIN_ID", "84532"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid CHAIN_ID: %w", err)
	}
	maxConns, err := parseInt(env("DB_MAX_CONNS", "20"), "DB_MAX_CONNS")
	if err != nil {
		return nil, err
	}
	cfg.DBMaxConns = int32(maxConns)
	if cfg.DBTxRetries, err = parseInt(env("DB_TX_RETRIES", "3"), "DB_TX_RETRIES"); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerSecond, err = parseInt(env("RATE_LIMIT_PER_SECOND", strconv.Itoa(constants.DefaultRateLimitPerSecond)), "RATE_LIMIT_PER_SECOND"); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = parseInt(env("RATE_LIMIT_BURST", strconv.Itoa(constants.DefaultRateLimitBurst)), "RATE_LIMIT_BURST"); err != nil {
		return nil, err
	}
	if cfg.DispatchWorkers, err = parseInt(env("DISPATCH_WORKERS", "4"), "DISPATCH_WORKERS"); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(env("CORS_ALLOWED_ORIGINS", cfg.AppURL), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if cfg.BundlerURL == "" {
		return nil, fmt.Errorf("BUNDLER_URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.BundlerURL); err != nil {
		return nil, fmt.Errorf("invalid BUNDLER_URL: %w", err)
	}

	if cfg.DatabaseURL, err = secrets.GetSecretString(ctx, "DATABASE_URL_ARN", "DATABASE_URL"); err != nil && !local {
		return nil, fmt.Errorf("database url: %w", err)
	}

	if cfg.JWKSURL == "" {
		if cfg.JWTSecret, err = secrets.GetSecretString(ctx, "JWT_SECRET_ARN", "JWT_SECRET"); err != nil {
			if !local {
				return nil, fmt.Errorf("one of WEB3AUTH_JWKS_ENDPOINT or JWT_SECRET is required: %w", err)
			}
			cfg.AuthDisabled = true
		}
	}

	// Notifications are optional on every stage.
	if cfg.ResendAPIKey, err = secrets.GetSecretString(ctx, "RESEND_API_KEY_ARN", "RESEND_API_KEY"); err != nil {
		cfg.ResendAPIKey = ""
	}
	if cfg.ResendAPIKey != "" && cfg.EmailFrom == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when RESEND_API_KEY is set")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in prod.
func (c *Config) IsProduction() bool {
	return c.Stage == helpers.StageProd
}

func parseInt(value, key string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, value)
	}
	return n, nil
}
