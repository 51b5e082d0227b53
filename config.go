// Package qscache holds the top-level configuration surface for the
// response-cache server: the config file model, its loader, and its
// validation.
package qscache

import (
	"fmt"

	"github.com/amitzarchi/quality-score-eviction/internal/cache"
)

// Config holds the configuration for the cache server.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`
	// Cache configures the initial eviction policy.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// Upstream configures the responder consulted on /query misses.
	Upstream UpstreamConfig `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	// AccessLog configures the persistent operation log (optional).
	AccessLog AccessLogConfig `json:"access_log,omitempty" yaml:"access_log,omitempty"`
	// Logging configures the structured logger.
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// CacheConfig selects the initial eviction policy. Omitted fields take the
// engine defaults. The learning rate and weights only apply to the
// quality_score policy.
type CacheConfig struct {
	Policy          string   `json:"policy,omitempty" yaml:"policy,omitempty"`
	MaxSize         int      `json:"maxsize,omitempty" yaml:"maxsize,omitempty"`
	CleanSize       int      `json:"clean_size,omitempty" yaml:"clean_size,omitempty"`
	LearningRate    *float64 `json:"learning_rate,omitempty" yaml:"learning_rate,omitempty"`
	QualityWeight   *float64 `json:"quality_weight,omitempty" yaml:"quality_weight,omitempty"`
	RecencyWeight   *float64 `json:"recency_weight,omitempty" yaml:"recency_weight,omitempty"`
	FrequencyWeight *float64 `json:"frequency_weight,omitempty" yaml:"frequency_weight,omitempty"`
}

// Upstream provider names.
const (
	UpstreamMock   = "mock"
	UpstreamOpenAI = "openai"
)

// UpstreamConfig configures the responder consulted on cache misses.
// APIKeyEnv names the environment variable holding the API key, so keys
// never live in config files.
type UpstreamConfig struct {
	Provider  string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	APIKeyEnv string `json:"api_key_env,omitempty" yaml:"api_key_env,omitempty"`
}

// Access log backends.
const (
	BackendNone     = "none"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// AccessLogConfig configures the persistent operation log.
type AccessLogConfig struct {
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	DSN     string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// DefaultConfig returns the configuration used when no file is provided:
// LRU with the engine defaults, mock upstream, no access log.
func DefaultConfig() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Cache:    CacheConfig{Policy: string(cache.KindLRU)},
		Upstream: UpstreamConfig{Provider: UpstreamMock},
	}
}

// PolicyConfig translates the cache section into an engine policy
// configuration, applying defaults for omitted fields.
func (c CacheConfig) PolicyConfig() (cache.PolicyConfig, error) {
	name := c.Policy
	if name == "" {
		name = string(cache.KindLRU)
	}
	kind, err := cache.ParseKind(name)
	if err != nil {
		return cache.PolicyConfig{}, err
	}

	cfg := cache.DefaultPolicyConfig(kind)
	if c.MaxSize != 0 {
		cfg.MaxSize = c.MaxSize
	}
	if c.CleanSize != 0 {
		cfg.CleanSize = c.CleanSize
	}
	if c.LearningRate != nil {
		cfg.LearningRate = *c.LearningRate
	}
	if c.QualityWeight != nil {
		cfg.QualityWeight = *c.QualityWeight
	}
	if c.RecencyWeight != nil {
		cfg.RecencyWeight = *c.RecencyWeight
	}
	if c.FrequencyWeight != nil {
		cfg.FrequencyWeight = *c.FrequencyWeight
	}
	return cfg, nil
}

// ValidateConfig validates a Config for correctness.
func ValidateConfig(cfg Config) error {
	policyCfg, err := cfg.Cache.PolicyConfig()
	if err != nil {
		return err
	}
	if err := policyCfg.Validate(); err != nil {
		return err
	}

	switch cfg.Upstream.Provider {
	case "", UpstreamMock:
	case UpstreamOpenAI:
		if cfg.Upstream.APIKeyEnv == "" {
			return fmt.Errorf("upstream provider %q requires api_key_env", UpstreamOpenAI)
		}
	default:
		return fmt.Errorf("unknown upstream provider: %q", cfg.Upstream.Provider)
	}

	switch cfg.AccessLog.Backend {
	case "", BackendNone, BackendSQLite:
	case BackendPostgres:
		if cfg.AccessLog.DSN == "" {
			return fmt.Errorf("access log backend %q requires a dsn", BackendPostgres)
		}
	default:
		return fmt.Errorf("unknown access log backend: %q", cfg.AccessLog.Backend)
	}

	return nil
}
