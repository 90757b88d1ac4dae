package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"go.uber.org/zap"
)

// SecretsAPI is the Secrets Manager call the client makes.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerClient resolves secrets from AWS Secrets Manager with an
// environment variable fallback.
type SecretsManagerClient struct {
	svc    SecretsAPI
	getenv func(string) string
	logger *zap.Logger
}

// NewSecretsManagerClient creates a client from an AWS config loaded with
// the default credential chain.
func NewSecretsManagerClient(cfg aws.Config) *SecretsManagerClient {
	return NewSecretsManagerClientWithAPI(secretsmanager.NewFromConfig(cfg), os.Getenv)
}

// NewSecretsManagerClientWithAPI creates a client over svc. getenv reads
// the ARN and fallback variables.
func NewSecretsManagerClientWithAPI(svc SecretsAPI, getenv func(string) string) *SecretsManagerClient {
	return &SecretsManagerClient{
		svc:    svc,
		getenv: getenv,
		logger: logger.ForComponent(logger.ComponentServer),
	}
}

// GetSecretString fetches the secret whose ARN is in secretArnEnvVar. If
// the ARN is unset or the fetch fails, it reads fallbackEnvVar directly.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error) {
	if secretArn := c.getenv(secretArnEnvVar); secretArn != "" {
		value, err := c.fetch(ctx, secretArn)
		if err == nil {
			c.logger.Info("Fetched secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
			return value, nil
		}
		c.logger.Warn("Failed to retrieve secret from Secrets Manager, falling back to env var",
			zap.String("arnEnvVar", secretArnEnvVar),
			zap.String("fallbackEnvVar", fallbackEnvVar),
			zap.Error(err))
	}

	if value := c.getenv(fallbackEnvVar); value != "" {
		c.logger.Debug("Using secret value from environment", zap.String("envVar", fallbackEnvVar))
		return value, nil
	}
	return "", fmt.Errorf("secret not found using ARN env var '%s' or direct env var '%s'", secretArnEnvVar, fallbackEnvVar)
}

// GetSecretJSON fetches a JSON secret and unmarshals it into target. There
// is no environment fallback because the fallback variables hold plain
// values, not JSON.
func (c *SecretsManagerClient) GetSecretJSON(ctx context.Context, secretArnEnvVar string, target interface{}) error {
	secretArn := c.getenv(secretArnEnvVar)
	if secretArn == "" {
		return fmt.Errorf("%s is not set", secretArnEnvVar)
	}
	value, err := c.fetch(ctx, secretArn)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("secret %s is not valid JSON: %w", secretArnEnvVar, err)
	}
	return nil
}

func (c *SecretsManagerClient) fetch(ctx context.Context, secretArn string) (string, error) {
	result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretArn),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret value: %w", err)
	}
	if result.SecretString == nil || *result.SecretString == "" {
		return "", fmt.Errorf("secret %s has no string value", secretArn)
	}
	return *result.SecretString, nil
}
