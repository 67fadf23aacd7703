// cmd/container.go
//
// Composition root. Builds the identity provider, the partial-failure ledger,
// metrics and the authenticator from config and hands them to the server.
package main

import (
	"context"

	"github.com/Abraxas-365/cpfauth/pkg/config"
	"github.com/Abraxas-365/cpfauth/pkg/cpfauth"
	"github.com/Abraxas-365/cpfauth/pkg/cpfauth/cpfauthapi"
	"github.com/Abraxas-365/cpfauth/pkg/cpfauth/cpfauthinfra"
	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/Abraxas-365/cpfauth/pkg/identity/identitycognito"
	"github.com/Abraxas-365/cpfauth/pkg/identity/identitymemory"
	"github.com/Abraxas-365/cpfauth/pkg/logx"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/redis/go-redis/v9"
)

// Container holds infrastructure and the wired authentication module.
type Container struct {
	Config *config.Config

	// Infrastructure
	Redis    *redis.Client
	Identity identity.Provider
	Ledger   cpfauth.PartialFailureLedger
	Metrics  *cpfauthinfra.PrometheusMetrics

	// PartialFailures is set only when the Redis ledger is enabled.
	PartialFailures *cpfauthinfra.RedisPartialFailureLedger

	// Module
	Authenticator *cpfauth.Authenticator
	AuthHandlers  *cpfauthapi.Handlers
}

func NewContainer(cfg *config.Config) *Container {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	c.initInfrastructure()
	c.initModules()

	logx.Info("✅ Application container initialized")
	return c
}

// ---------------------------------------------------------------------------
// Infrastructure — identity provider, ledger, metrics
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() {
	logx.Info("🏗️ Initializing infrastructure...")

	c.initIdentityProvider()
	c.initLedger()

	if c.Config.Metrics.Enabled {
		c.Metrics = cpfauthinfra.NewPrometheusMetrics(c.Config.Metrics.Namespace)
		logx.Infof("  ✅ Prometheus metrics enabled (namespace: %s)", c.Config.Metrics.Namespace)
	}

	logx.Info("✅ Infrastructure initialized")
}

func (c *Container) initIdentityProvider() {
	idCfg := c.Config.Identity

	switch idCfg.Provider {
	case config.ProviderCognito:
		awsCfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(idCfg.Region))
		if err != nil {
			logx.Fatalf("Unable to load AWS SDK config: %v", err)
		}
		c.Identity = identitycognito.NewProviderFromConfig(awsCfg)
		logx.Infof("  ✅ Cognito identity provider configured (pool: %s, region: %s)", idCfg.UserPoolID, idCfg.Region)

	case config.ProviderMemory:
		c.Identity = identitymemory.NewProvider()
		logx.Warn("  ⚠️  Using in-memory identity provider (accounts are lost on restart)")

	default:
		logx.Fatalf("Unknown IDENTITY_PROVIDER: %s (use 'cognito' or 'memory')", idCfg.Provider)
	}
}

func (c *Container) initLedger() {
	if !c.Config.Ledger.Enabled {
		c.Ledger = cpfauthinfra.NewLogxPartialFailureLedger()
		logx.Info("  ✅ Partial provisioning ledger: log only")
		return
	}

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Ledger.Address(),
		Password: c.Config.Ledger.Password,
		DB:       c.Config.Ledger.DB,
	})
	if _, err := c.Redis.Ping(context.Background()).Result(); err != nil {
		logx.Fatalf("Failed to connect to Redis: %v (LEDGER_ENABLED=true requires Redis)", err)
	}
	c.PartialFailures = cpfauthinfra.NewRedisPartialFailureLedger(c.Redis, c.Config.Ledger.TTL)
	c.Ledger = c.PartialFailures
	logx.Infof("  ✅ Partial provisioning ledger: redis (%s)", c.Config.Ledger.Address())
}

// ---------------------------------------------------------------------------
// Module composition
// ---------------------------------------------------------------------------

func (c *Container) initModules() {
	logx.Info("📦 Initializing modules...")

	opts := []cpfauth.Option{
		cpfauth.WithLedger(c.Ledger),
		cpfauth.WithAudit(cpfauthinfra.NewLogxAuditService()),
	}
	if c.Metrics != nil {
		opts = append(opts, cpfauth.WithMetrics(c.Metrics))
	}

	fpKey := []byte(c.Config.Security.FingerprintKey)
	if len(fpKey) == 0 {
		fpKey = cpfauth.NewFingerprintKey()
		logx.Warn("  ⚠️  CPF_FINGERPRINT_KEY not set; using a random key (fingerprints change on restart)")
	}

	c.Authenticator = cpfauth.NewAuthenticator(
		c.Identity,
		cpfauth.Config{
			Pool: identity.Pool{
				UserPoolID: c.Config.Identity.UserPoolID,
				ClientID:   c.Config.Identity.ClientID,
			},
			FingerprintKey: fpKey,
		},
		opts...,
	)
	c.AuthHandlers = cpfauthapi.NewHandlers(c.Authenticator)

	logx.Info("  ✅ CPF authentication module ready")
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
