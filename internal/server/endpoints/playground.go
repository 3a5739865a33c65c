package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/api"
	"github.com/promptvault/promptvault/internal/auth"
	"github.com/promptvault/promptvault/internal/cost"
	"github.com/promptvault/promptvault/internal/providers"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/svcctx"
	"github.com/promptvault/promptvault/internal/template"
	"github.com/promptvault/promptvault/internal/usage"
)

// PlaygroundRequest runs a prompt against a provider. Either PromptID or
// Template must be set; PromptID wins when both are given.
type PlaygroundRequest struct {
	PromptID string            `json:"prompt_id,omitempty"`
	Template string            `json:"template,omitempty"`
	Values   map[string]string `json:"values,omitempty"`

	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model,omitempty"`
	System      string  `json:"system,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// JSONSchema requests structured output; the response is validated
	// against it before being returned.
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// PlaygroundResponse is the outcome of a playground run.
type PlaygroundResponse struct {
	Content        string           `json:"content"`
	ParsedJSON     json.RawMessage  `json:"parsed_json,omitempty"`
	RenderedPrompt string           `json:"rendered_prompt"`
	Provider       string           `json:"provider"`
	Model          string           `json:"model"`
	InputTokens    int              `json:"input_tokens"`
	OutputTokens   int              `json:"output_tokens"`
	TotalTokens    int              `json:"total_tokens"`
	Cost           cost.Calculation `json:"cost"`
	FormattedCost  string           `json:"formatted_cost"`
	LatencyMs      int64            `json:"latency_ms"`
	UsageRecordID  string           `json:"usage_record_id,omitempty"`
}

// PlaygroundEndpoint handles POST /api/playground/run.
type PlaygroundEndpoint struct{}

func (e *PlaygroundEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/playground/run", e.handler
}

func (e *PlaygroundEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		Run a prompt
//	@Description	Render a prompt, send it to a provider, and record the priced usage
//	@Tags			playground
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PlaygroundRequest	true	"Run parameters"
//	@Success		200		{object}	PlaygroundResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/playground/run [post]
func (e *PlaygroundEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req PlaygroundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	services := svcctx.ServicesFrom(ctx)

	// Resolve the template text
	body := req.Template
	if req.PromptID != "" {
		p, err := services.Store.GetPrompt(ctx, req.PromptID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "prompt not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		body = p.Body
	}
	if body == "" {
		writeError(w, http.StatusBadRequest, "prompt_id or template is required")
		return
	}

	vars := template.Extract(body)
	rendered := template.Render(body, vars, req.Values)

	// Resolve the provider
	providerName := req.Provider
	if providerName == "" {
		providerName = services.ConfigManager.Get().Defaults.Provider
	}
	client, err := services.Registry.Get(providerName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	genReq := &providers.Request{
		System:      req.System,
		Prompt:      rendered,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		RequestID:   uuid.New().String(),
	}
	if len(req.JSONSchema) > 0 {
		genReq.ResponseFormat = &providers.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: req.JSONSchema,
		}
	}

	opts := usage.RecordOpts{
		UserID:   auth.UserIDFrom(ctx),
		PromptID: req.PromptID,
	}

	result, err := client.Generate(ctx, genReq)
	if err != nil {
		latency := resultLatency(result)
		if _, recErr := services.UsageRecorder.RecordError(ctx, opts, providerName, req.Model, err, latency); recErr != nil {
			services.Logger.Error("failed to record usage", "error", recErr)
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	calc := services.Calculator.Calculate(providerName, result.ModelUsed,
		result.InputTokens, result.OutputTokens)

	recordID, err := services.UsageRecorder.RecordRun(ctx, opts, result, calc)
	if err != nil {
		// The generation succeeded; log the bookkeeping failure and move on.
		services.Logger.Error("failed to record usage", "error", err)
	}

	writeJSON(w, http.StatusOK, PlaygroundResponse{
		Content:        result.Content,
		ParsedJSON:     result.ParsedJSON,
		RenderedPrompt: rendered,
		Provider:       providerName,
		Model:          result.ModelUsed,
		InputTokens:    result.InputTokens,
		OutputTokens:   result.OutputTokens,
		TotalTokens:    result.TotalTokens,
		Cost:           calc,
		FormattedCost:  cost.FormatCost(calc.TotalCost),
		LatencyMs:      result.ExecutionTime.Milliseconds(),
		UsageRecordID:  recordID,
	})
}

func resultLatency(result *providers.Result) time.Duration {
	if result != nil {
		return result.ExecutionTime
	}
	return 0
}

func (e *PlaygroundEndpoint) Command(getServerURL func() string) *cobra.Command {
	var promptID, tmpl, provider, model, system, schema string
	var values map[string]string
	var temperature float64
	var maxTokens int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a prompt against a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PlaygroundResponse
			err := client.Post(cmd.Context(), "/api/playground/run", PlaygroundRequest{
				PromptID:    promptID,
				Template:    tmpl,
				Values:      values,
				Provider:    provider,
				Model:       model,
				System:      system,
				Temperature: temperature,
				MaxTokens:   maxTokens,
				JSONSchema:  json.RawMessage(schema),
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&promptID, "prompt", "", "Stored prompt ID")
	cmd.Flags().StringVar(&tmpl, "template", "", "Inline template text")
	cmd.Flags().StringToStringVar(&values, "values", nil, "Variable values (name=value)")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider name (default from config)")
	cmd.Flags().StringVar(&model, "model", "", "Model override")
	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Max output tokens")
	cmd.Flags().StringVar(&schema, "schema", "", "JSON schema the response must match")
	return cmd
}
