package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/api"
	"github.com/promptvault/promptvault/internal/cost"
	"github.com/promptvault/promptvault/internal/svcctx"
	"github.com/promptvault/promptvault/internal/tokens"
)

// EstimateRequest prices one hypothetical generation. Token counts may be
// given directly, or estimated from text when the counts are zero.
type EstimateRequest struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	// Text is tokenized with the rough word-count heuristic when
	// InputTokens is zero.
	Text string `json:"text,omitempty"`
}

// EstimateResponse is a priced estimate.
type EstimateResponse struct {
	cost.Calculation
	FormattedCost string `json:"formatted_cost"`
	// EstimatedFromText is true when input tokens came from the heuristic
	// rather than the request.
	EstimatedFromText bool `json:"estimated_from_text,omitempty"`
}

// EstimateCostEndpoint handles POST /api/cost/estimate.
type EstimateCostEndpoint struct{}

func (e *EstimateCostEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/cost/estimate", e.handler
}

func (e *EstimateCostEndpoint) RequiresAuth() bool { return false }

// handler godoc
//
//	@Summary		Estimate generation cost
//	@Description	Price a provider/model pair for the given token counts; unknown models fall back to default pricing with a flag
//	@Tags			cost
//	@Accept			json
//	@Produce		json
//	@Param			request	body		EstimateRequest	true	"Estimate parameters"
//	@Success		200		{object}	EstimateResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/cost/estimate [post]
func (e *EstimateCostEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Provider == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "provider and model are required")
		return
	}

	estimatedFromText := false
	if req.InputTokens == 0 && req.Text != "" {
		req.InputTokens = tokens.Estimate(req.Text)
		estimatedFromText = true
	}

	calc := svcctx.CalculatorFrom(r.Context()).Calculate(
		req.Provider, req.Model, req.InputTokens, req.OutputTokens)

	writeJSON(w, http.StatusOK, EstimateResponse{
		Calculation:       calc,
		FormattedCost:     cost.FormatCost(calc.TotalCost),
		EstimatedFromText: estimatedFromText,
	})
}

func (e *EstimateCostEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, model, text string
	var inputTokens, outputTokens int
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the cost of a generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp EstimateResponse
			err := client.Post(cmd.Context(), "/api/cost/estimate", EstimateRequest{
				Provider:     provider,
				Model:        model,
				InputTokens:  inputTokens,
				OutputTokens: outputTokens,
				Text:         text,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Provider name")
	cmd.Flags().StringVar(&model, "model", "", "Model name")
	cmd.Flags().IntVar(&inputTokens, "input-tokens", 0, "Input token count")
	cmd.Flags().IntVar(&outputTokens, "output-tokens", 0, "Expected output token count")
	cmd.Flags().StringVar(&text, "text", "", "Estimate input tokens from this text")
	cmd.MarkFlagRequired("provider")
	cmd.MarkFlagRequired("model")
	return cmd
}

// CompareRequest prices the same usage across several models.
type CompareRequest struct {
	Models       []cost.ModelRef `json:"models"`
	InputTokens  int             `json:"input_tokens"`
	OutputTokens int             `json:"output_tokens"`
}

// CompareResponse ranks the compared models by total cost.
type CompareResponse struct {
	Ranked []cost.RankedCalculation `json:"ranked"`
	// Savings is the difference between the most expensive and the
	// cheapest model, present when two or more models were compared.
	Savings *cost.Savings `json:"savings,omitempty"`
}

// CompareCostEndpoint handles POST /api/cost/compare.
type CompareCostEndpoint struct{}

func (e *CompareCostEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/cost/compare", e.handler
}

func (e *CompareCostEndpoint) RequiresAuth() bool { return false }

// handler godoc
//
//	@Summary		Compare model costs
//	@Description	Price identical token usage across models and rank them cheapest first
//	@Tags			cost
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CompareRequest	true	"Models and token counts"
//	@Success		200		{object}	CompareResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/cost/compare [post]
func (e *CompareCostEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Models) == 0 {
		writeError(w, http.StatusBadRequest, "at least one model is required")
		return
	}

	ranked := svcctx.CalculatorFrom(r.Context()).CompareModels(
		req.Models, req.InputTokens, req.OutputTokens)

	resp := CompareResponse{Ranked: ranked}
	if len(ranked) >= 2 {
		s := cost.CalculateSavings(ranked[len(ranked)-1].Calculation, ranked[0].Calculation)
		resp.Savings = &s
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *CompareCostEndpoint) Command(getServerURL func() string) *cobra.Command {
	var models []string
	var inputTokens, outputTokens int
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare generation cost across models",
		Long: `Compare the cost of identical token usage across models.

Models are given as provider/model pairs:
  promptvault api cost compare --model openai/gpt-4o --model anthropic/claude-3-5-haiku-20241022`,
		RunE: func(cmd *cobra.Command, args []string) error {
			refs := make([]cost.ModelRef, 0, len(models))
			for _, m := range models {
				provider, model, ok := splitModelRef(m)
				if !ok {
					return cmd.Usage()
				}
				refs = append(refs, cost.ModelRef{Provider: provider, Model: model})
			}

			client := api.NewClient(getServerURL())
			var resp CompareResponse
			err := client.Post(cmd.Context(), "/api/cost/compare", CompareRequest{
				Models:       refs,
				InputTokens:  inputTokens,
				OutputTokens: outputTokens,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringArrayVar(&models, "model", nil, "provider/model pair (repeatable)")
	cmd.Flags().IntVar(&inputTokens, "input-tokens", 1000, "Input token count")
	cmd.Flags().IntVar(&outputTokens, "output-tokens", 1000, "Output token count")
	cmd.MarkFlagRequired("model")
	return cmd
}

// SavingsRequest prices the same usage on two models and reports how much
// the second saves over the first.
type SavingsRequest struct {
	Expensive    cost.ModelRef `json:"expensive"`
	Cheaper      cost.ModelRef `json:"cheaper"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
}

// SavingsResponse carries both calculations alongside the savings figure.
type SavingsResponse struct {
	Expensive cost.Calculation `json:"expensive"`
	Cheaper   cost.Calculation `json:"cheaper"`
	Savings   cost.Savings     `json:"savings"`
}

// SavingsEndpoint handles POST /api/cost/savings.
type SavingsEndpoint struct{}

func (e *SavingsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/cost/savings", e.handler
}

func (e *SavingsEndpoint) RequiresAuth() bool { return false }

// handler godoc
//
//	@Summary		Calculate savings between two models
//	@Description	Price identical token usage on two models and report the absolute and percentage savings of the second over the first
//	@Tags			cost
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SavingsRequest	true	"Model pair and token counts"
//	@Success		200		{object}	SavingsResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/cost/savings [post]
func (e *SavingsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SavingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Expensive.Provider == "" || req.Expensive.Model == "" ||
		req.Cheaper.Provider == "" || req.Cheaper.Model == "" {
		writeError(w, http.StatusBadRequest, "both models are required")
		return
	}

	calc := svcctx.CalculatorFrom(r.Context())
	expensive := calc.Calculate(req.Expensive.Provider, req.Expensive.Model,
		req.InputTokens, req.OutputTokens)
	cheaper := calc.Calculate(req.Cheaper.Provider, req.Cheaper.Model,
		req.InputTokens, req.OutputTokens)

	writeJSON(w, http.StatusOK, SavingsResponse{
		Expensive: expensive,
		Cheaper:   cheaper,
		Savings:   cost.CalculateSavings(expensive, cheaper),
	})
}

func (e *SavingsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var expensive, cheaper string
	var inputTokens, outputTokens int
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Calculate savings between two models",
		RunE: func(cmd *cobra.Command, args []string) error {
			expProvider, expModel, ok := splitModelRef(expensive)
			if !ok {
				return cmd.Usage()
			}
			chProvider, chModel, ok := splitModelRef(cheaper)
			if !ok {
				return cmd.Usage()
			}

			client := api.NewClient(getServerURL())
			var resp SavingsResponse
			err := client.Post(cmd.Context(), "/api/cost/savings", SavingsRequest{
				Expensive:    cost.ModelRef{Provider: expProvider, Model: expModel},
				Cheaper:      cost.ModelRef{Provider: chProvider, Model: chModel},
				InputTokens:  inputTokens,
				OutputTokens: outputTokens,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&expensive, "expensive", "", "provider/model pair to compare against")
	cmd.Flags().StringVar(&cheaper, "cheaper", "", "provider/model pair expected to cost less")
	cmd.Flags().IntVar(&inputTokens, "input-tokens", 1000, "Input token count")
	cmd.Flags().IntVar(&outputTokens, "output-tokens", 1000, "Output token count")
	cmd.MarkFlagRequired("expensive")
	cmd.MarkFlagRequired("cheaper")
	return cmd
}

func splitModelRef(s string) (provider, model string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return s[:i], s[i+1:], i > 0 && i < len(s)-1
		}
	}
	return "", "", false
}
