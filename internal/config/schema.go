package config

import (
	"time"

	"github.com/promptvault/promptvault/internal/pricing"
)

// Config holds promptvault configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Server    ServerCfg                           `mapstructure:"server" yaml:"server"`
	Auth      AuthCfg                             `mapstructure:"auth" yaml:"auth"`
	Providers map[string]ProviderCfg              `mapstructure:"providers" yaml:"providers"`
	Pricing   map[string]map[string]pricing.Rates `mapstructure:"pricing" yaml:"pricing"`
	Defaults  DefaultsCfg                         `mapstructure:"defaults" yaml:"defaults"`
}

// ServerCfg configures the HTTP server.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// AuthCfg configures session tokens.
type AuthCfg struct {
	// JWTSecret signs session tokens (supports ${ENV_VAR} syntax).
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	// SessionTTL is how long issued tokens stay valid.
	SessionTTL time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
}

// ProviderCfg configures one generation provider.
type ProviderCfg struct {
	Type      string `mapstructure:"type" yaml:"type"`           // "openai-compatible" or "mock"
	Model     string `mapstructure:"model" yaml:"model"`         // Default model
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`     // Supports ${ENV_VAR} syntax
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`   // Endpoint override
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per minute
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections.
type DefaultsCfg struct {
	Provider    string `mapstructure:"provider" yaml:"provider"`         // Default provider name
	DaysInMonth int    `mapstructure:"days_in_month" yaml:"days_in_month"` // Month length for projections
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Auth: AuthCfg{
			JWTSecret:  "${PROMPTVAULT_JWT_SECRET}",
			SessionTTL: 24 * time.Hour,
		},
		Providers: map[string]ProviderCfg{
			"openai": {
				Type:      "openai-compatible",
				Model:     "gpt-4o-mini",
				APIKey:    "${OPENAI_API_KEY}",
				RateLimit: 60,
				Enabled:   true,
			},
			"anthropic": {
				Type:      "openai-compatible",
				Model:     "claude-3-5-sonnet-20241022",
				APIKey:    "${ANTHROPIC_API_KEY}",
				BaseURL:   "https://api.anthropic.com/v1/",
				RateLimit: 60,
				Enabled:   false,
			},
		},
		Pricing:  pricing.DefaultRates(),
		Defaults: DefaultsCfg{
			Provider:    "openai",
			DaysInMonth: 30,
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// EnabledProviders returns all enabled providers.
func (c *Config) EnabledProviders() map[string]ProviderCfg {
	result := make(map[string]ProviderCfg)
	for name, cfg := range c.Providers {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// PricingTable builds the immutable pricing table from config. An empty
// pricing section falls back to the built-in rates.
func (c *Config) PricingTable() *pricing.Table {
	if len(c.Pricing) == 0 {
		return pricing.Default()
	}
	return pricing.NewTable(c.Pricing)
}
