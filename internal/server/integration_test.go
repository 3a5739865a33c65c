package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/promptvault/promptvault/internal/cost"
	"github.com/promptvault/promptvault/internal/providers"
	"github.com/promptvault/promptvault/internal/server/endpoints"
)

// registerAndLogin creates a user and returns a session token.
func registerAndLogin(t *testing.T, s *Server) string {
	t.Helper()

	var resp endpoints.TokenResponse
	rec := doJSON(t, s, "POST", "/api/auth/register", "", endpoints.RegisterRequest{
		Username: "tester",
		Password: "correct-horse",
	}, &resp)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed (%d): %s", rec.Code, rec.Body.String())
	}
	if resp.Token == "" {
		t.Fatal("expected a session token")
	}
	return resp.Token
}

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	// Duplicate registration is rejected
	rec := doJSON(t, s, "POST", "/api/auth/register", "", endpoints.RegisterRequest{
		Username: "tester", Password: "another-pass",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate username, got %d", rec.Code)
	}

	// Login with wrong password
	rec = doJSON(t, s, "POST", "/api/auth/login", "", endpoints.LoginRequest{
		Username: "tester", Password: "wrong",
	}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}

	// Login with right password
	var login endpoints.TokenResponse
	rec = doJSON(t, s, "POST", "/api/auth/login", "", endpoints.LoginRequest{
		Username: "tester", Password: "correct-horse",
	}, &login)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed (%d): %s", rec.Code, rec.Body.String())
	}

	var me endpoints.MeResponse
	rec = doJSON(t, s, "GET", "/api/auth/me", token, nil, &me)
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed (%d)", rec.Code)
	}
	if me.Username != "tester" {
		t.Errorf("expected username tester, got %s", me.Username)
	}
}

func TestPromptLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	// Create
	var created endpoints.PromptResponse
	rec := doJSON(t, s, "POST", "/api/prompts", token, endpoints.PromptRequest{
		Title:       "Greeting",
		Body:        "Hello {{name|World|Who to greet}}, the weather is {{weather}}.",
		Description: "A greeting prompt",
		Tags:        []string{"demo", "greeting"},
	}, &created)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed (%d): %s", rec.Code, rec.Body.String())
	}
	if len(created.Variables) != 2 {
		t.Fatalf("expected 2 extracted variables, got %d", len(created.Variables))
	}
	if created.Variables[0].Name != "name" || created.Variables[0].Default != "World" {
		t.Errorf("unexpected first variable: %+v", created.Variables[0])
	}

	// Get
	var got endpoints.PromptResponse
	rec = doJSON(t, s, "GET", "/api/prompts/"+created.ID, token, nil, &got)
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed (%d)", rec.Code)
	}
	if got.Title != "Greeting" {
		t.Errorf("expected title Greeting, got %s", got.Title)
	}

	// List with tag filter
	var list []endpoints.PromptResponse
	rec = doJSON(t, s, "GET", "/api/prompts?tag=demo", token, nil, &list)
	if rec.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("expected 1 prompt for tag demo, got %d (code %d)", len(list), rec.Code)
	}
	rec = doJSON(t, s, "GET", "/api/prompts?tag=nope", token, nil, &list)
	if rec.Code != http.StatusOK || len(list) != 0 {
		t.Fatalf("expected 0 prompts for tag nope, got %d", len(list))
	}

	// Variables listing for the stored prompt
	var vars endpoints.ExtractResponse
	rec = doJSON(t, s, "GET", "/api/prompts/"+created.ID+"/variables", token, nil, &vars)
	if rec.Code != http.StatusOK {
		t.Fatalf("variables failed (%d)", rec.Code)
	}
	if len(vars.Variables) != 2 || vars.Variables[1].Name != "weather" {
		t.Errorf("unexpected variables: %+v", vars.Variables)
	}

	// Render stored prompt: explicit value + default + unfilled literal
	var rendered endpoints.RenderResponse
	rec = doJSON(t, s, "POST", "/api/prompts/"+created.ID+"/render", token,
		endpoints.RenderPromptRequest{Values: map[string]string{"name": "Ada"}}, &rendered)
	if rec.Code != http.StatusOK {
		t.Fatalf("render failed (%d): %s", rec.Code, rec.Body.String())
	}
	want := "Hello Ada, the weather is {{weather}}."
	if rendered.Rendered != want {
		t.Errorf("rendered = %q, want %q", rendered.Rendered, want)
	}

	// Update
	var updated endpoints.PromptResponse
	rec = doJSON(t, s, "PUT", "/api/prompts/"+created.ID, token, endpoints.PromptRequest{
		Title: "Greeting v2",
		Body:  "Hi {{name}}",
	}, &updated)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed (%d)", rec.Code)
	}
	if updated.Title != "Greeting v2" {
		t.Errorf("expected updated title, got %s", updated.Title)
	}

	// Delete
	rec = doJSON(t, s, "DELETE", "/api/prompts/"+created.ID, token, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete failed (%d)", rec.Code)
	}
	rec = doJSON(t, s, "GET", "/api/prompts/"+created.ID, token, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestTemplateEndpoints(t *testing.T) {
	s := newTestServer(t)

	var extract endpoints.ExtractResponse
	rec := doJSON(t, s, "POST", "/api/template/extract", "", endpoints.ExtractRequest{
		Template: "Summarize {{text||Content to summarize}} in {{style|bullet points}}",
	}, &extract)
	if rec.Code != http.StatusOK {
		t.Fatalf("extract failed (%d)", rec.Code)
	}
	if len(extract.Variables) != 2 {
		t.Fatalf("expected 2 variables, got %d", len(extract.Variables))
	}
	if extract.Variables[0].Description != "Content to summarize" {
		t.Errorf("unexpected description: %q", extract.Variables[0].Description)
	}

	var render endpoints.RenderResponse
	rec = doJSON(t, s, "POST", "/api/template/render", "", endpoints.RenderRequest{
		Template: "Summarize {{text}} in {{style|bullet points}}",
		Values:   map[string]string{"text": "the report"},
	}, &render)
	if rec.Code != http.StatusOK {
		t.Fatalf("render failed (%d)", rec.Code)
	}
	if render.Rendered != "Summarize the report in bullet points" {
		t.Errorf("rendered = %q", render.Rendered)
	}
}

func TestCostEndpoints(t *testing.T) {
	s := newTestServer(t)

	// Unknown model falls back to default pricing: 1000 in * $1/1K + 1000 out * $3/1K.
	var estimate endpoints.EstimateResponse
	rec := doJSON(t, s, "POST", "/api/cost/estimate", "", endpoints.EstimateRequest{
		Provider:     "nobody",
		Model:        "imaginary",
		InputTokens:  1000,
		OutputTokens: 1000,
	}, &estimate)
	if rec.Code != http.StatusOK {
		t.Fatalf("estimate failed (%d): %s", rec.Code, rec.Body.String())
	}
	if estimate.TotalCost != 4.0 {
		t.Errorf("expected default-priced total 4.0, got %v", estimate.TotalCost)
	}
	if !estimate.PricingMissing {
		t.Error("expected pricing_missing flag")
	}
	if estimate.FormattedCost != "$4.00" {
		t.Errorf("expected $4.00, got %s", estimate.FormattedCost)
	}

	// Token estimation from text: 4 words -> ceil(4*1.3) = 6 tokens.
	rec = doJSON(t, s, "POST", "/api/cost/estimate", "", endpoints.EstimateRequest{
		Provider: "nobody",
		Model:    "imaginary",
		Text:     "one two three four",
	}, &estimate)
	if rec.Code != http.StatusOK {
		t.Fatalf("estimate from text failed (%d)", rec.Code)
	}
	if estimate.InputTokens != 6 {
		t.Errorf("expected 6 estimated tokens, got %d", estimate.InputTokens)
	}
	if !estimate.EstimatedFromText {
		t.Error("expected estimated_from_text flag")
	}

	// Compare requires at least one model
	rec = doJSON(t, s, "POST", "/api/cost/compare", "", endpoints.CompareRequest{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty compare, got %d", rec.Code)
	}

	// Savings between two built-in models at 1000/1000 tokens:
	// gpt-4o costs 0.0125, gpt-4o-mini 0.00075.
	var savings endpoints.SavingsResponse
	rec = doJSON(t, s, "POST", "/api/cost/savings", "", endpoints.SavingsRequest{
		Expensive:    cost.ModelRef{Provider: "openai", Model: "gpt-4o"},
		Cheaper:      cost.ModelRef{Provider: "openai", Model: "gpt-4o-mini"},
		InputTokens:  1000,
		OutputTokens: 1000,
	}, &savings)
	if rec.Code != http.StatusOK {
		t.Fatalf("savings failed (%d): %s", rec.Code, rec.Body.String())
	}
	if savings.Savings.Absolute != 0.01175 {
		t.Errorf("expected absolute savings 0.01175, got %v", savings.Savings.Absolute)
	}
	if savings.Savings.Percent != 94.0 {
		t.Errorf("expected 94%% savings, got %v", savings.Savings.Percent)
	}

	// Both model refs are required
	rec = doJSON(t, s, "POST", "/api/cost/savings", "", endpoints.SavingsRequest{
		Expensive: cost.ModelRef{Provider: "openai", Model: "gpt-4o"},
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing model, got %d", rec.Code)
	}
}

func TestPlaygroundAndUsage(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	// Create a prompt and run it through the mock provider
	var created endpoints.PromptResponse
	doJSON(t, s, "POST", "/api/prompts", token, endpoints.PromptRequest{
		Title: "Review",
		Body:  "Review this code: {{code}}",
	}, &created)

	var run endpoints.PlaygroundResponse
	rec := doJSON(t, s, "POST", "/api/playground/run", token, endpoints.PlaygroundRequest{
		PromptID: created.ID,
		Values:   map[string]string{"code": "func main() {}"},
		Model:    "mock-model",
	}, &run)
	if rec.Code != http.StatusOK {
		t.Fatalf("playground run failed (%d): %s", rec.Code, rec.Body.String())
	}
	if run.Content != "mock response" {
		t.Errorf("expected mock response, got %q", run.Content)
	}
	if !strings.Contains(run.RenderedPrompt, "func main() {}") {
		t.Errorf("rendered prompt missing value: %q", run.RenderedPrompt)
	}
	// Mock reports 100 input / 50 output tokens
	if run.InputTokens != 100 || run.OutputTokens != 50 {
		t.Errorf("unexpected token counts: %d/%d", run.InputTokens, run.OutputTokens)
	}
	if run.UsageRecordID == "" {
		t.Error("expected a usage record ID")
	}

	// Usage list shows the run
	var records []map[string]any
	rec = doJSON(t, s, "GET", "/api/usage", token, nil, &records)
	if rec.Code != http.StatusOK {
		t.Fatalf("usage list failed (%d)", rec.Code)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 usage record, got %d", len(records))
	}

	// Summary with provider breakdown
	var summary endpoints.UsageSummaryResponse
	rec = doJSON(t, s, "GET", "/api/usage/summary?by=provider", token, nil, &summary)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed (%d)", rec.Code)
	}
	if summary.Count != 1 || summary.SuccessCount != 1 {
		t.Errorf("unexpected summary: %+v", summary.Summary)
	}
	if _, ok := summary.Breakdown["mock"]; !ok {
		t.Error("expected mock provider in breakdown")
	}

	// Projection over one day of usage
	var projection endpoints.UsageProjectionResponse
	rec = doJSON(t, s, "GET", "/api/usage/projection", token, nil, &projection)
	if rec.Code != http.StatusOK {
		t.Fatalf("projection failed (%d): %s", rec.Code, rec.Body.String())
	}
	if projection.Days != 30 {
		t.Errorf("expected 30-day projection, got %d", projection.Days)
	}
	if len(projection.DailyCosts) != 1 {
		t.Errorf("expected 1 daily cost row, got %d", len(projection.DailyCosts))
	}
}

func TestPlaygroundStructuredOutput(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	client, err := s.registry.Get("mock")
	if err != nil {
		t.Fatalf("mock provider: %v", err)
	}
	mock := client.(*providers.MockClient)
	mock.ResponseJSON = json.RawMessage(`{"sentiment": "positive", "score": 0.9}`)

	schema := json.RawMessage(`{
		"type": "object",
		"required": ["sentiment"],
		"properties": {"sentiment": {"type": "string"}}
	}`)

	var run endpoints.PlaygroundResponse
	rec := doJSON(t, s, "POST", "/api/playground/run", token, endpoints.PlaygroundRequest{
		Template:   "Classify: {{text}}",
		Values:     map[string]string{"text": "great work"},
		JSONSchema: schema,
	}, &run)
	if rec.Code != http.StatusOK {
		t.Fatalf("structured run failed (%d): %s", rec.Code, rec.Body.String())
	}
	if len(run.ParsedJSON) == 0 {
		t.Fatal("expected parsed JSON in the response")
	}
	var parsed struct {
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal(run.ParsedJSON, &parsed); err != nil {
		t.Fatalf("parsed JSON does not decode: %v", err)
	}
	if parsed.Sentiment != "positive" {
		t.Errorf("sentiment = %q, want positive", parsed.Sentiment)
	}

	// A response that misses a required field fails validation.
	badSchema := json.RawMessage(`{"type": "object", "required": ["count"]}`)
	rec = doJSON(t, s, "POST", "/api/playground/run", token, endpoints.PlaygroundRequest{
		Template:   "Count things",
		JSONSchema: badSchema,
	}, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for schema mismatch, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProjectionEmpty(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec := doJSON(t, s, "GET", "/api/usage/projection", token, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty projection, got %d", rec.Code)
	}
}

func TestPlaygroundMissingBody(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s)

	rec := doJSON(t, s, "POST", "/api/playground/run", token, endpoints.PlaygroundRequest{}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without prompt or template, got %d", rec.Code)
	}

	rec = doJSON(t, s, "POST", "/api/playground/run", token, endpoints.PlaygroundRequest{
		PromptID: "does-not-exist",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown prompt, got %d", rec.Code)
	}
}
