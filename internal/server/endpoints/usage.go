package endpoints

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/api"
	"github.com/promptvault/promptvault/internal/cost"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/svcctx"
	"github.com/promptvault/promptvault/internal/usage"
)

func usageFilterFromQuery(q url.Values) store.UsageFilter {
	f := store.UsageFilter{
		UserID:   q.Get("user_id"),
		PromptID: q.Get("prompt_id"),
		Provider: q.Get("provider"),
		Model:    q.Get("model"),
	}
	if since := q.Get("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			f.Since = t
		}
	}
	return f
}

// ListUsageEndpoint handles GET /api/usage.
type ListUsageEndpoint struct{}

func (e *ListUsageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/usage", e.handler
}

func (e *ListUsageEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		List usage records
//	@Description	List recorded generation calls, newest first
//	@Tags			usage
//	@Produce		json
//	@Param			user_id		query		string	false	"Filter by user"
//	@Param			prompt_id	query		string	false	"Filter by prompt"
//	@Param			provider	query		string	false	"Filter by provider"
//	@Param			model		query		string	false	"Filter by model"
//	@Param			since		query		string	false	"RFC3339 lower bound"
//	@Param			limit		query		int		false	"Max records (default 100)"
//	@Success		200			{array}		store.UsageRecord
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/usage [get]
func (e *ListUsageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	q := svcctx.UsageQueryFrom(r.Context())

	limit := 100
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := q.List(r.Context(), usageFilterFromQuery(r.URL.Query()), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []store.UsageRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (e *ListUsageEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, model, promptID string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List usage records",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())

			params := url.Values{}
			if provider != "" {
				params.Set("provider", provider)
			}
			if model != "" {
				params.Set("model", model)
			}
			if promptID != "" {
				params.Set("prompt_id", promptID)
			}
			params.Set("limit", strconv.Itoa(limit))

			var resp []store.UsageRecord
			if err := client.Get(cmd.Context(), "/api/usage?"+params.Encode(), &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Filter by provider")
	cmd.Flags().StringVar(&model, "model", "", "Filter by model")
	cmd.Flags().StringVar(&promptID, "prompt", "", "Filter by prompt ID")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max records")
	return cmd
}

// UsageSummaryResponse is the aggregated usage summary, with an optional
// cost breakdown.
type UsageSummaryResponse struct {
	usage.Summary
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
}

// UsageSummaryEndpoint handles GET /api/usage/summary.
type UsageSummaryEndpoint struct{}

func (e *UsageSummaryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/usage/summary", e.handler
}

func (e *UsageSummaryEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		Usage summary
//	@Description	Aggregate cost, tokens, and call counts, with an optional breakdown by provider, model, or prompt
//	@Tags			usage
//	@Produce		json
//	@Param			user_id		query		string	false	"Filter by user"
//	@Param			prompt_id	query		string	false	"Filter by prompt"
//	@Param			provider	query		string	false	"Filter by provider"
//	@Param			model		query		string	false	"Filter by model"
//	@Param			since		query		string	false	"RFC3339 lower bound"
//	@Param			by			query		string	false	"Breakdown by: provider, model, or prompt"
//	@Success		200			{object}	UsageSummaryResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/usage/summary [get]
func (e *UsageSummaryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	q := svcctx.UsageQueryFrom(r.Context())
	f := usageFilterFromQuery(r.URL.Query())

	summary, err := q.GetSummary(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := UsageSummaryResponse{Summary: *summary}
	switch r.URL.Query().Get("by") {
	case "provider":
		resp.Breakdown, err = q.CostByProvider(r.Context(), f)
	case "model":
		resp.Breakdown, err = q.CostByModel(r.Context(), f)
	case "prompt":
		resp.Breakdown, err = q.CostByPrompt(r.Context(), f)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (e *UsageSummaryEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider, model, promptID, by string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())

			params := url.Values{}
			if provider != "" {
				params.Set("provider", provider)
			}
			if model != "" {
				params.Set("model", model)
			}
			if promptID != "" {
				params.Set("prompt_id", promptID)
			}
			if by != "" {
				params.Set("by", by)
			}

			path := "/api/usage/summary"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var resp UsageSummaryResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Filter by provider")
	cmd.Flags().StringVar(&model, "model", "", "Filter by model")
	cmd.Flags().StringVar(&promptID, "prompt", "", "Filter by prompt ID")
	cmd.Flags().StringVar(&by, "by", "", "Breakdown by: provider, model, or prompt")
	return cmd
}

// UsageProjectionResponse extrapolates observed spend to a month.
type UsageProjectionResponse struct {
	cost.Projection
	DailyCosts []store.DailyCost `json:"daily_costs"`
}

// UsageProjectionEndpoint handles GET /api/usage/projection.
type UsageProjectionEndpoint struct{}

func (e *UsageProjectionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/usage/projection", e.handler
}

func (e *UsageProjectionEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		Monthly cost projection
//	@Description	Average the observed daily spend and extrapolate it to a month
//	@Tags			usage
//	@Produce		json
//	@Param			user_id		query		string	false	"Filter by user"
//	@Param			provider	query		string	false	"Filter by provider"
//	@Param			days		query		int		false	"Month length (default from config)"
//	@Success		200			{object}	UsageProjectionResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/usage/projection [get]
func (e *UsageProjectionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := svcctx.UsageQueryFrom(ctx)
	f := usageFilterFromQuery(r.URL.Query())

	days := svcctx.ConfigManagerFrom(ctx).Get().Defaults.DaysInMonth
	if s := r.URL.Query().Get("days"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			days = n
		}
	}

	projection, err := q.ProjectMonthly(ctx, f, days)
	if err != nil {
		if errors.Is(err, cost.ErrEmptyProjection) {
			writeError(w, http.StatusNotFound, "no usage to project from")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	daily, err := q.DailyCosts(ctx, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, UsageProjectionResponse{
		Projection: projection,
		DailyCosts: daily,
	})
}

func (e *UsageProjectionEndpoint) Command(getServerURL func() string) *cobra.Command {
	var provider string
	var days int
	cmd := &cobra.Command{
		Use:   "projection",
		Short: "Project monthly spend from observed usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())

			params := url.Values{}
			if provider != "" {
				params.Set("provider", provider)
			}
			if days > 0 {
				params.Set("days", strconv.Itoa(days))
			}

			path := "/api/usage/projection"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var resp UsageProjectionResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Filter by provider")
	cmd.Flags().IntVar(&days, "days", 0, "Month length in days")
	return cmd
}
