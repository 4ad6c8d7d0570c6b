// Package config loads and validates the label checker configuration from the
// environment (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Environment is the deployment environment named by ENV
type Environment string

const (
	EnvDevelopment Environment = "dev"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
)

// Config holds all application configuration
type Config struct {
	Port              string      `env:"PORT" envDefault:"8000"`
	Address           string      `env:"ADDRESS" envDefault:"127.0.0.1"`
	Env               Environment `env:"ENV" envDefault:"dev"`
	LogLevel          string      `env:"LOG_LEVEL"` // empty: derived from ENV
	LogDir            string      `env:"LOG_DIR" envDefault:"logs"`
	LogRetentionWeeks int         `env:"LOG_RETENTION_WEEKS" envDefault:"4"`
	MaxLogFileSize    int64       `env:"MAX_LOG_FILE_SIZE" envDefault:"104857600"` // 100MB
	MaxRequestBody    int64       `env:"MAX_REQUEST_BODY" envDefault:"1048576"`    // 1MB
	MaxHeaderSize     int64       `env:"MAX_HEADER_SIZE" envDefault:"1048576"`     // 1MB
	TrustProxy        bool        `env:"TRUST_PROXY" envDefault:"false"`

	OpenFDA  OpenFDAConfig
	Upstream UpstreamConfig
}

// OpenFDAConfig configures the drug label client
type OpenFDAConfig struct {
	BaseURL    string        `env:"OPENFDA_BASE_URL" envDefault:"https://api.fda.gov/drug/label.json"`
	Timeout    time.Duration `env:"OPENFDA_TIMEOUT" envDefault:"20s"`
	RetryCount int           `env:"OPENFDA_RETRY_COUNT" envDefault:"0"`
	RetryWait  time.Duration `env:"OPENFDA_RETRY_WAIT" envDefault:"500ms"`
}

// UpstreamConfig configures the periodic openFDA reachability probe
type UpstreamConfig struct {
	ProbeInterval time.Duration `env:"UPSTREAM_PROBE_INTERVAL" envDefault:"15m"`
	ProbeDrug     string        `env:"UPSTREAM_PROBE_DRUG" envDefault:"aspirin"`
}

// LoadDotEnv reads .env into the process environment. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load parses and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Env = Environment(strings.ToLower(string(cfg.Env)))

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateOpenFDA(cfg.OpenFDA); err != nil {
		return err
	}

	if err := validateUpstream(cfg.Upstream); err != nil {
		return err
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress accepts loopback names and loopback or private IPs
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

func validateEnv(e Environment) error {
	switch e {
	case EnvDevelopment, EnvStaging, EnvProduction, EnvTest:
		return nil
	case "":
		return fmt.Errorf("ENV cannot be empty")
	}
	return fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", e)
}

func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return nil
	}

	switch strings.ToLower(logLevel) {
	case "debug", "info", "warn", "error":
		return nil
	}

	return fmt.Errorf("LOG_LEVEL must be one of: [debug info warn error], got: %s", logLevel)
}

// validateSizeLimit validates request size limits
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 {
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 {
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize enforces 1MB..1GB
func validateMaxLogFileSize(size int64) error {
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

func validateOpenFDA(c OpenFDAConfig) error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid OPENFDA_BASE_URL: must be an absolute http(s) URL, got: %q", c.BaseURL)
	}

	if c.Timeout < time.Second || c.Timeout > 2*time.Minute {
		return fmt.Errorf("invalid OPENFDA_TIMEOUT: must be between 1s and 2m, got: %s", c.Timeout)
	}

	if c.RetryCount < 0 || c.RetryCount > 5 {
		return fmt.Errorf("invalid OPENFDA_RETRY_COUNT: must be between 0 and 5, got: %d", c.RetryCount)
	}

	if c.RetryWait < 0 {
		return fmt.Errorf("invalid OPENFDA_RETRY_WAIT: must not be negative, got: %s", c.RetryWait)
	}

	return nil
}

// validateUpstream allows 0 (probe disabled) or at least one minute
func validateUpstream(c UpstreamConfig) error {
	if c.ProbeInterval != 0 && c.ProbeInterval < time.Minute {
		return fmt.Errorf("invalid UPSTREAM_PROBE_INTERVAL: must be 0 or at least 1m, got: %s", c.ProbeInterval)
	}

	if c.ProbeInterval > 0 && strings.TrimSpace(c.ProbeDrug) == "" {
		return fmt.Errorf("invalid UPSTREAM_PROBE_DRUG: cannot be empty while the probe is enabled")
	}

	return nil
}

// GetEnvVars returns a list of all recognized environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"TRUST_PROXY",
		"OPENFDA_BASE_URL",
		"OPENFDA_TIMEOUT",
		"OPENFDA_RETRY_COUNT",
		"OPENFDA_RETRY_WAIT",
		"UPSTREAM_PROBE_INTERVAL",
		"UPSTREAM_PROBE_DRUG",
	}
}
