package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("expected 24h session TTL, got %s", cfg.Auth.SessionTTL)
	}
	if cfg.Defaults.DaysInMonth != 30 {
		t.Errorf("expected 30 days in month, got %d", cfg.Defaults.DaysInMonth)
	}
	if _, ok := cfg.Providers["openai"]; !ok {
		t.Error("expected openai provider in defaults")
	}
	if len(cfg.Pricing) == 0 {
		t.Error("expected default pricing rates")
	}
}

func TestEnabledProviders(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderCfg{
			"a": {Type: "mock", Enabled: true},
			"b": {Type: "mock", Enabled: false},
			"c": {Type: "openai-compatible", Enabled: true},
		},
	}

	enabled := cfg.EnabledProviders()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled providers, got %d", len(enabled))
	}
	if _, ok := enabled["b"]; ok {
		t.Error("disabled provider should not be returned")
	}
}

func TestPricingTableFallback(t *testing.T) {
	cfg := &Config{}
	table := cfg.PricingTable()
	if _, ok := table.Lookup("openai", "gpt-4o-mini"); !ok {
		t.Error("expected built-in rates when pricing section is empty")
	}
}

func TestResolveEnvVars(t *testing.T) {
	os.Setenv("PROMPTVAULT_TEST_SECRET", "s3cret")
	defer os.Unsetenv("PROMPTVAULT_TEST_SECRET")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "${PROMPTVAULT_TEST_SECRET}", "s3cret"},
		{"embedded", "Bearer ${PROMPTVAULT_TEST_SECRET}!", "Bearer s3cret!"},
		{"unset variable", "${PROMPTVAULT_TEST_UNSET}", ""},
		{"no variables", "plain value", "plain value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnvVars(tt.input); got != tt.want {
				t.Errorf("ResolveEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	if !strings.Contains(string(data), "promptvault configuration") {
		t.Error("expected header comment in written config")
	}
	if !strings.Contains(string(data), "server:") {
		t.Error("expected server section in written config")
	}

	// Second write must refuse to overwrite.
	if err := WriteDefault(path); err == nil {
		t.Error("expected error writing over existing config")
	}
}
