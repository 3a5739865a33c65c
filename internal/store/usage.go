package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// UsageRecord is one recorded generation call with its priced breakdown.
// Records are append-only.
type UsageRecord struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	PromptID string `json:"prompt_id,omitempty"`

	Provider string `json:"provider"`
	Model    string `json:"model"`

	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	InputCost      float64 `json:"input_cost"`
	OutputCost     float64 `json:"output_cost"`
	TotalCost      float64 `json:"total_cost"`
	PricingMissing bool    `json:"pricing_missing,omitempty"`

	LatencyMs int    `json:"latency_ms"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// UsageFilter narrows a usage query. Zero values match everything.
type UsageFilter struct {
	UserID   string
	PromptID string
	Provider string
	Model    string
	Since    time.Time
}

// InsertUsage appends a usage record.
func (s *Store) InsertUsage(ctx context.Context, r UsageRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (
			id, user_id, prompt_id, provider, model,
			input_tokens, output_tokens, input_cost, output_cost, total_cost,
			pricing_missing, latency_ms, success, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.PromptID, r.Provider, r.Model,
		r.InputTokens, r.OutputTokens, r.InputCost, r.OutputCost, r.TotalCost,
		r.PricingMissing, r.LatencyMs, r.Success, r.Error, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// ListUsage returns usage records matching the filter, newest first.
// limit <= 0 means no limit.
func (s *Store) ListUsage(ctx context.Context, f UsageFilter, limit int) ([]UsageRecord, error) {
	query := `
		SELECT id, user_id, prompt_id, provider, model,
		       input_tokens, output_tokens, input_cost, output_cost, total_cost,
		       pricing_missing, latency_ms, success, error, created_at
		FROM usage_records`

	conds, args := usageConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	var records []UsageRecord
	for rows.Next() {
		var r UsageRecord
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.PromptID, &r.Provider, &r.Model,
			&r.InputTokens, &r.OutputTokens, &r.InputCost, &r.OutputCost, &r.TotalCost,
			&r.PricingMissing, &r.LatencyMs, &r.Success, &r.Error, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan usage record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// DailyCost is the summed cost of one calendar day of usage.
type DailyCost struct {
	Day       string  `json:"day"` // YYYY-MM-DD
	TotalCost float64 `json:"total_cost"`
	Calls     int     `json:"calls"`
}

// DailyCosts returns per-day cost totals matching the filter, oldest first.
func (s *Store) DailyCosts(ctx context.Context, f UsageFilter) ([]DailyCost, error) {
	query := `
		SELECT date(created_at) AS day, SUM(total_cost), COUNT(*)
		FROM usage_records`

	conds, args := usageConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " GROUP BY day ORDER BY day ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily costs: %w", err)
	}
	defer rows.Close()

	var days []DailyCost
	for rows.Next() {
		var d DailyCost
		if err := rows.Scan(&d.Day, &d.TotalCost, &d.Calls); err != nil {
			return nil, fmt.Errorf("scan daily cost: %w", err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func usageConds(f UsageFilter) ([]string, []any) {
	var conds []string
	var args []any
	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.PromptID != "" {
		conds = append(conds, "prompt_id = ?")
		args = append(args, f.PromptID)
	}
	if f.Provider != "" {
		conds = append(conds, "provider = ?")
		args = append(args, f.Provider)
	}
	if f.Model != "" {
		conds = append(conds, "model = ?")
		args = append(args, f.Model)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Since)
	}
	return conds, args
}
