package pricing

import "testing"

func TestLookupExactMatch(t *testing.T) {
	table := Default()

	p, ok := table.Lookup("anthropic", "claude-3-5-sonnet-20241022")
	if !ok {
		t.Fatal("expected exact match")
	}
	if p.InputPer1K != 0.003 || p.OutputPer1K != 0.015 {
		t.Errorf("unexpected rates: %+v", p)
	}
	if p.Provider != "anthropic" || p.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("unexpected identity: %+v", p)
	}
}

func TestLookupProviderCaseInsensitive(t *testing.T) {
	table := Default()

	for _, provider := range []string{"Anthropic", "ANTHROPIC", "anthropic"} {
		if _, ok := table.Lookup(provider, "claude-3-5-sonnet-20241022"); !ok {
			t.Errorf("lookup with provider %q missed", provider)
		}
	}
}

func TestLookupMissReturnsDefault(t *testing.T) {
	table := Default()

	tests := []struct {
		name     string
		provider string
		model    string
	}{
		{"unknown provider", "nobody", "claude-3-5-sonnet-20241022"},
		{"known provider unknown model", "anthropic", "claude-nonexistent"},
		{"both unknown", "nobody", "nothing"},
		{"empty keys", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := table.Lookup(tt.provider, tt.model)
			if ok {
				t.Fatal("expected miss")
			}
			if p != DefaultPricing {
				t.Errorf("miss returned %+v, want DefaultPricing %+v", p, DefaultPricing)
			}
		})
	}
}

func TestNewTableFromConfig(t *testing.T) {
	table := NewTable(map[string]map[string]Rates{
		"Acme": {
			"acme-large": {InputPer1K: 2.5, OutputPer1K: 7.5},
		},
	})

	p, ok := table.Lookup("acme", "acme-large")
	if !ok {
		t.Fatal("expected match on lowercased provider key")
	}
	if p.Provider != "Acme" {
		t.Errorf("provider = %q, want config spelling preserved", p.Provider)
	}
	if p.InputPer1K != 2.5 || p.OutputPer1K != 7.5 {
		t.Errorf("unexpected rates: %+v", p)
	}
}

func TestEmptyTableAlwaysMisses(t *testing.T) {
	table := NewTable(nil)

	p, ok := table.Lookup("anthropic", "claude-3-5-sonnet-20241022")
	if ok {
		t.Fatal("empty table should miss")
	}
	if p != DefaultPricing {
		t.Errorf("got %+v, want DefaultPricing", p)
	}
}

func TestAllCoversEveryEntry(t *testing.T) {
	rates := DefaultRates()
	want := 0
	for _, models := range rates {
		want += len(models)
	}

	all := NewTable(rates).All()
	if len(all) != want {
		t.Errorf("All returned %d entries, want %d", len(all), want)
	}
}
