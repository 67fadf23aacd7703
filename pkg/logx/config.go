package logx

import (
	"io"
	"os"
	"strings"
	"time"
)

// Format selects the output encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	// FormatCloudWatch is JSON with the level/msg/time keys CloudWatch Logs
	// Insights picks up without a parse step
	FormatCloudWatch Format = "cloudwatch"
)

// Redacted replaces the value of every field listed in Config.RedactKeys.
const Redacted = "[REDACTED]"

// Config holds the logger configuration
type Config struct {
	Level           Level
	Format          Format
	EnableColors    bool
	EnableCaller    bool
	EnableTimestamp bool

	// TimeFormat is a Go layout, or "unix" / "unixmilli"
	TimeFormat string

	// RedactKeys lists field keys whose values are never written.
	// Matching is case-insensitive.
	RedactKeys []string

	// Output defaults to os.Stdout
	Output io.Writer
}

// DefaultConfig returns console output at INFO with the standard redactions.
func DefaultConfig() *Config {
	return &Config{
		Level:           LevelInfo,
		Format:          FormatConsole,
		EnableColors:    true,
		EnableTimestamp: true,
		TimeFormat:      time.RFC3339,
		RedactKeys:      []string{"cpf", "password", "authorization", "id_token", "access_token", "refresh_token"},
		Output:          os.Stdout,
	}
}

// LoadFromEnv applies LOG_LEVEL, LOG_FORMAT, LOG_COLOR, LOG_CALLER,
// LOG_TIME_FORMAT and LOG_REDACT_KEYS on top of DefaultConfig.
func LoadFromEnv() *Config {
	cfg := DefaultConfig()

	if v, ok := lookup("LOG_LEVEL"); ok {
		cfg.Level = ParseLevel(v)
	}
	if v, ok := lookup("LOG_FORMAT"); ok {
		switch f := Format(strings.ToLower(v)); f {
		case FormatConsole, FormatJSON, FormatCloudWatch:
			cfg.Format = f
		}
	}
	if v, ok := lookup("LOG_COLOR"); ok {
		cfg.EnableColors = truthy(v)
	}
	if v, ok := lookup("LOG_CALLER"); ok {
		cfg.EnableCaller = truthy(v)
	}
	if v, ok := lookup("LOG_TIME_FORMAT"); ok {
		cfg.TimeFormat = parseTimeFormat(v)
	}
	if v, ok := lookup("LOG_REDACT_KEYS"); ok {
		cfg.RedactKeys = append(cfg.RedactKeys, strings.Split(v, ",")...)
	}

	return cfg
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func truthy(v string) bool {
	v = strings.ToLower(v)
	return v == "true" || v == "1"
}

func parseTimeFormat(v string) string {
	switch strings.ToUpper(v) {
	case "RFC3339":
		return time.RFC3339
	case "RFC3339NANO":
		return time.RFC3339Nano
	case "UNIX":
		return "unix"
	case "UNIXMILLI":
		return "unixmilli"
	default:
		return v
	}
}
