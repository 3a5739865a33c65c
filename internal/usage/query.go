package usage

import (
	"context"

	"github.com/promptvault/promptvault/internal/cost"
	"github.com/promptvault/promptvault/internal/store"
)

// Query aggregates stored usage records.
type Query struct {
	store *store.Store
}

// NewQuery creates a new usage query helper.
func NewQuery(st *store.Store) *Query {
	return &Query{store: st}
}

// List returns usage records matching the filter, newest first.
// A limit of 0 means no limit.
func (q *Query) List(ctx context.Context, f store.UsageFilter, limit int) ([]store.UsageRecord, error) {
	return q.store.ListUsage(ctx, f, limit)
}

// TotalCost returns the total cost for records matching the filter.
func (q *Query) TotalCost(ctx context.Context, f store.UsageFilter) (float64, error) {
	records, err := q.List(ctx, f, 0)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, r := range records {
		total += r.TotalCost
	}
	return total, nil
}

// Summary provides a summary of usage for a filter.
type Summary struct {
	Count             int     `json:"count"`
	TotalCostUSD      float64 `json:"total_cost_usd"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalTokens       int     `json:"total_tokens"`
	SuccessCount      int     `json:"success_count"`
	ErrorCount        int     `json:"error_count"`
	AvgCostUSD        float64 `json:"avg_cost_usd"`
	AvgTokens         float64 `json:"avg_tokens"`
	AvgLatencyMs      float64 `json:"avg_latency_ms"`
}

// GetSummary returns a summary of usage matching the filter.
func (q *Query) GetSummary(ctx context.Context, f store.UsageFilter) (*Summary, error) {
	records, err := q.List(ctx, f, 0)
	if err != nil {
		return nil, err
	}

	s := &Summary{Count: len(records)}
	var latencySum int
	for _, r := range records {
		s.TotalCostUSD += r.TotalCost
		s.TotalInputTokens += r.InputTokens
		s.TotalOutputTokens += r.OutputTokens
		latencySum += r.LatencyMs
		if r.Success {
			s.SuccessCount++
		} else {
			s.ErrorCount++
		}
	}
	s.TotalTokens = s.TotalInputTokens + s.TotalOutputTokens

	if s.Count > 0 {
		s.AvgCostUSD = s.TotalCostUSD / float64(s.Count)
		s.AvgTokens = float64(s.TotalTokens) / float64(s.Count)
		s.AvgLatencyMs = float64(latencySum) / float64(s.Count)
	}

	return s, nil
}

// CostByProvider returns cost breakdown by provider.
func (q *Query) CostByProvider(ctx context.Context, f store.UsageFilter) (map[string]float64, error) {
	records, err := q.List(ctx, f, 0)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]float64)
	for _, r := range records {
		breakdown[r.Provider] += r.TotalCost
	}
	return breakdown, nil
}

// CostByModel returns cost breakdown by model.
func (q *Query) CostByModel(ctx context.Context, f store.UsageFilter) (map[string]float64, error) {
	records, err := q.List(ctx, f, 0)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]float64)
	for _, r := range records {
		breakdown[r.Model] += r.TotalCost
	}
	return breakdown, nil
}

// CostByPrompt returns cost breakdown by prompt.
func (q *Query) CostByPrompt(ctx context.Context, f store.UsageFilter) (map[string]float64, error) {
	records, err := q.List(ctx, f, 0)
	if err != nil {
		return nil, err
	}

	breakdown := make(map[string]float64)
	for _, r := range records {
		breakdown[r.PromptID] += r.TotalCost
	}
	return breakdown, nil
}

// DailyCosts returns per-day totals for records matching the filter.
func (q *Query) DailyCosts(ctx context.Context, f store.UsageFilter) ([]store.DailyCost, error) {
	return q.store.DailyCosts(ctx, f)
}

// ProjectMonthly extrapolates observed daily spend to a monthly total.
// Returns cost.ErrEmptyProjection when no usage matches the filter.
func (q *Query) ProjectMonthly(ctx context.Context, f store.UsageFilter, daysInMonth int) (cost.Projection, error) {
	days, err := q.store.DailyCosts(ctx, f)
	if err != nil {
		return cost.Projection{}, err
	}

	daily := make([]cost.Calculation, len(days))
	for i, d := range days {
		daily[i] = cost.Calculation{TotalCost: d.TotalCost}
	}
	return cost.ProjectMonthly(daily, daysInMonth)
}
