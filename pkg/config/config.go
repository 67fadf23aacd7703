// Package config loads the gateway configuration from the environment once
// at startup. Nothing else in the module reads the environment.
package config

import (
	"fmt"
	"time"

	"github.com/Abraxas-365/cpfauth/pkg/errx"
)

// Identity provider names accepted by IDENTITY_PROVIDER.
const (
	ProviderCognito = "cognito"
	ProviderMemory  = "memory"
)

// Config is the full process configuration.
type Config struct {
	Server   ServerConfig
	Identity IdentityConfig
	Ledger   LedgerConfig
	Metrics  MetricsConfig
	Security SecurityConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string
	AppName         string
	Version         string
	BodyLimit       int
	ShutdownTimeout time.Duration
}

// IdentityConfig selects and addresses the identity provider.
type IdentityConfig struct {
	Provider   string
	UserPoolID string
	ClientID   string
	Region     string
}

// LedgerConfig configures the Redis record of partially provisioned accounts.
type LedgerConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// Address returns host:port for the Redis client.
func (c LedgerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool
	Path      string
	Namespace string
}

// SecurityConfig holds the process secrets.
type SecurityConfig struct {
	// FingerprintKey keys the CPF fingerprints written to logs, metrics and
	// the ledger. When empty a random key is used and fingerprints change on
	// every restart.
	FingerprintKey string

	// OpsToken is the bearer token for the operator endpoints. The endpoints
	// are not mounted when it is empty.
	OpsToken string
}

var configErrors = errx.NewRegistry("CONFIG")

var (
	ErrMissingPoolID   = configErrors.Register("MISSING_POOL_ID", errx.TypeValidation, 400, "COGNITO_USER_POOL_ID (or USER_POOL_ID) is required")
	ErrMissingClientID = configErrors.Register("MISSING_CLIENT_ID", errx.TypeValidation, 400, "COGNITO_CLIENT_ID (or CLIENT_ID) is required")
	ErrUnknownProvider = configErrors.Register("UNKNOWN_PROVIDER", errx.TypeValidation, 400, "Unknown IDENTITY_PROVIDER")
)

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			AppName:         getEnv("APP_NAME", "CPF Auth Gateway"),
			Version:         getEnv("APP_VERSION", "1.0.0"),
			BodyLimit:       getEnvInt("BODY_LIMIT", 1024*1024),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Identity: IdentityConfig{
			Provider:   getEnv("IDENTITY_PROVIDER", ProviderCognito),
			UserPoolID: getEnv("COGNITO_USER_POOL_ID", getEnv("USER_POOL_ID", "")),
			ClientID:   getEnv("COGNITO_CLIENT_ID", getEnv("CLIENT_ID", "")),
			Region:     getEnv("AWS_REGION", "us-east-1"),
		},
		Ledger: LedgerConfig{
			Enabled:  getEnvBool("LEDGER_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("LEDGER_TTL", 30*24*time.Hour),
		},
		Metrics: MetricsConfig{
			Enabled:   getEnvBool("METRICS_ENABLED", true),
			Path:      getEnv("METRICS_PATH", "/metrics"),
			Namespace: getEnv("METRICS_NAMESPACE", "cpfauth"),
		},
		Security: SecurityConfig{
			FingerprintKey: getEnv("CPF_FINGERPRINT_KEY", ""),
			OpsToken:       getEnv("OPS_TOKEN", ""),
		},
	}
}

// Validate checks that the selected provider has what it needs.
func (c *Config) Validate() error {
	switch c.Identity.Provider {
	case ProviderCognito:
		if c.Identity.UserPoolID == "" {
			return configErrors.New(ErrMissingPoolID)
		}
		if c.Identity.ClientID == "" {
			return configErrors.New(ErrMissingClientID)
		}
	case ProviderMemory:
	default:
		return configErrors.New(ErrUnknownProvider).WithDetail("provider", c.Identity.Provider)
	}
	return nil
}
