package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/pricing"
	"github.com/promptvault/promptvault/internal/server/endpoints"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerCfg{Host: "127.0.0.1", Port: "0"},
		Auth:   config.AuthCfg{JWTSecret: "test-secret"},
		Providers: map[string]config.ProviderCfg{
			"mock": {Type: "mock", Model: "mock-model", Enabled: true},
		},
		Defaults: config.DefaultsCfg{Provider: "mock", DaysInMonth: 30},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{
		DataDir:       ":memory:",
		ConfigManager: config.NewFromConfig(testConfig(), nil),
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	t.Cleanup(func() { s.store.Close() })
	return s
}

// doJSON sends a request through the server's handler and decodes the response.
func doJSON(t *testing.T, s *Server, method, path, token string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if out != nil && rec.Code < 400 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func TestNewRequiresConfigManager(t *testing.T) {
	if _, err := New(Config{DataDir: ":memory:"}); err == nil {
		t.Fatal("expected error without config manager")
	}
}

func TestNewRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "${PROMPTVAULT_UNSET_TEST_SECRET}"
	_, err := New(Config{
		DataDir:       ":memory:",
		ConfigManager: config.NewFromConfig(cfg, nil),
	})
	if err == nil {
		t.Fatal("expected error when jwt secret resolves to empty")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	var resp struct {
		Status string `json:"status"`
	}
	rec := doJSON(t, s, "GET", "/health", "", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %s", resp.Status)
	}
}

func TestReady(t *testing.T) {
	s := newTestServer(t)

	var resp struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	rec := doJSON(t, s, "GET", "/ready", "", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp.Database != "ok" {
		t.Errorf("expected database ok, got %s", resp.Database)
	}
}

func TestStatusListsProviders(t *testing.T) {
	s := newTestServer(t)

	var resp struct {
		Server    string   `json:"server"`
		Providers []string `json:"providers"`
	}
	rec := doJSON(t, s, "GET", "/status", "", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(resp.Providers) != 1 || resp.Providers[0] != "mock" {
		t.Errorf("expected [mock], got %v", resp.Providers)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/prompts", "", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, s, "GET", "/api/prompts", "not-a-real-token", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestProviderReload(t *testing.T) {
	s := newTestServer(t)

	cfg := testConfig()
	cfg.Providers["second"] = config.ProviderCfg{Type: "mock", Enabled: true}
	reloadProviders(s.registry, cfg, s.logger)

	if !s.registry.Has("second") {
		t.Error("expected second provider after reload")
	}

	delete(cfg.Providers, "second")
	reloadProviders(s.registry, cfg, s.logger)
	if s.registry.Has("second") {
		t.Error("expected second provider removed after reload")
	}
	if !s.registry.Has("mock") {
		t.Error("mock provider should survive reloads")
	}
}

func TestPricingReload(t *testing.T) {
	s := newTestServer(t)

	// Unknown model falls back to default pricing before the reload.
	var estimate endpoints.EstimateResponse
	rec := doJSON(t, s, "POST", "/api/cost/estimate", "", endpoints.EstimateRequest{
		Provider: "custom", Model: "local-llm", InputTokens: 1000, OutputTokens: 1000,
	}, &estimate)
	if rec.Code != http.StatusOK {
		t.Fatalf("estimate failed (%d): %s", rec.Code, rec.Body.String())
	}
	if !estimate.PricingMissing {
		t.Fatal("expected fallback pricing before reload")
	}

	cfg := testConfig()
	cfg.Pricing = map[string]map[string]pricing.Rates{
		"custom": {"local-llm": {InputPer1K: 0.01, OutputPer1K: 0.02}},
	}
	s.reloadPricing(cfg)

	// pricing_missing is omitempty, so reset before decoding the second
	// response or the stale true from the first decode survives.
	estimate = endpoints.EstimateResponse{}
	rec = doJSON(t, s, "POST", "/api/cost/estimate", "", endpoints.EstimateRequest{
		Provider: "custom", Model: "local-llm", InputTokens: 1000, OutputTokens: 1000,
	}, &estimate)
	if rec.Code != http.StatusOK {
		t.Fatalf("estimate after reload failed (%d)", rec.Code)
	}
	if estimate.PricingMissing {
		t.Error("expected an exact pricing entry after reload")
	}
	if estimate.TotalCost != 0.03 {
		t.Errorf("expected reloaded total 0.03, got %v", estimate.TotalCost)
	}
}
