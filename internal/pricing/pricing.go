// Package pricing holds the per-model token pricing table consulted by the
// cost engine.
//
// The table is immutable once built: it is loaded from configuration at
// startup and replaced wholesale on config reload, never mutated in place.
// Lookups always succeed - an unknown provider or model resolves to
// DefaultPricing so a missing table entry degrades to conservative rates
// instead of blocking a request.
package pricing

import "strings"

// ModelPricing is the cost per 1000 tokens for one model, in USD.
type ModelPricing struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	InputPer1K  float64 `json:"input_per_1k"`
	OutputPer1K float64 `json:"output_per_1k"`
}

// DefaultPricing is returned when no exact table entry exists. The rates are
// deliberately conservative so an unpriced model is never shown as free.
var DefaultPricing = ModelPricing{
	Provider:    "unknown",
	Model:       "unknown",
	InputPer1K:  1.0,
	OutputPer1K: 3.0,
}

// Table maps (provider, model) to pricing. Provider keys are matched
// case-insensitively; model keys are exact.
type Table struct {
	entries map[string]map[string]ModelPricing
}

// Rates is the configuration shape for one model's pricing.
type Rates struct {
	InputPer1K  float64 `mapstructure:"input_per_1k" yaml:"input_per_1k" json:"input_per_1k"`
	OutputPer1K float64 `mapstructure:"output_per_1k" yaml:"output_per_1k" json:"output_per_1k"`
}

// NewTable builds a table from provider -> model -> rates configuration.
// An empty or nil configuration yields a table where every lookup misses.
func NewTable(cfg map[string]map[string]Rates) *Table {
	entries := make(map[string]map[string]ModelPricing, len(cfg))
	for provider, models := range cfg {
		key := strings.ToLower(provider)
		entries[key] = make(map[string]ModelPricing, len(models))
		for model, rates := range models {
			entries[key][model] = ModelPricing{
				Provider:    provider,
				Model:       model,
				InputPer1K:  rates.InputPer1K,
				OutputPer1K: rates.OutputPer1K,
			}
		}
	}
	return &Table{entries: entries}
}

// Default returns a table with built-in rates for the commonly used
// providers. Config-supplied pricing replaces this wholesale.
func Default() *Table {
	return NewTable(DefaultRates())
}

// DefaultRates returns the built-in pricing configuration. Rates are USD per
// 1000 tokens, current as of mid-2026.
func DefaultRates() map[string]map[string]Rates {
	return map[string]map[string]Rates{
		"anthropic": {
			"claude-3-5-sonnet-20241022": {InputPer1K: 0.003, OutputPer1K: 0.015},
			"claude-3-5-haiku-20241022":  {InputPer1K: 0.0008, OutputPer1K: 0.004},
			"claude-sonnet-4-20250514":   {InputPer1K: 0.003, OutputPer1K: 0.015},
			"claude-opus-4-20250514":     {InputPer1K: 0.015, OutputPer1K: 0.075},
		},
		"openai": {
			"gpt-4o":      {InputPer1K: 0.0025, OutputPer1K: 0.01},
			"gpt-4o-mini": {InputPer1K: 0.00015, OutputPer1K: 0.0006},
			"gpt-4.1":     {InputPer1K: 0.002, OutputPer1K: 0.008},
			"o3-mini":     {InputPer1K: 0.0011, OutputPer1K: 0.0044},
		},
		"google": {
			"gemini-2.0-flash": {InputPer1K: 0.0001, OutputPer1K: 0.0004},
			"gemini-1.5-pro":   {InputPer1K: 0.00125, OutputPer1K: 0.005},
		},
	}
}

// Lookup resolves pricing for a provider/model pair. The second return is
// false when no exact entry exists and DefaultPricing was substituted;
// callers surface that as a warning, never an error.
func (t *Table) Lookup(provider, model string) (ModelPricing, bool) {
	if t != nil && t.entries != nil {
		if models, ok := t.entries[strings.ToLower(provider)]; ok {
			if p, ok := models[model]; ok {
				return p, true
			}
		}
	}
	return DefaultPricing, false
}

// Providers returns the provider names present in the table.
func (t *Table) Providers() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	return names
}

// All returns every entry in the table, for display.
func (t *Table) All() []ModelPricing {
	var all []ModelPricing
	for _, models := range t.entries {
		for _, p := range models {
			all = append(all, p)
		}
	}
	return all
}
