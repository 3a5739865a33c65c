package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/promptvault/promptvault/internal/cost"
	"github.com/promptvault/promptvault/internal/providers"
	"github.com/promptvault/promptvault/internal/store"
)

// Recorder persists usage records for playground runs.
type Recorder struct {
	store  *store.Store
	logger *slog.Logger
}

// NewRecorder creates a new usage recorder.
func NewRecorder(st *store.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: st, logger: logger}
}

// RecordOpts provides attribution for a usage record.
type RecordOpts struct {
	UserID   string
	PromptID string
}

// RecordRun stores the usage of a completed generation along with its
// priced cost.
func (r *Recorder) RecordRun(ctx context.Context, opts RecordOpts, result *providers.Result, calc cost.Calculation) (string, error) {
	if result == nil {
		return "", fmt.Errorf("nil generation result")
	}

	rec := store.UsageRecord{
		ID:       uuid.New().String(),
		UserID:   opts.UserID,
		PromptID: opts.PromptID,

		Provider: result.Provider,
		Model:    result.ModelUsed,

		InputTokens:  result.InputTokens,
		OutputTokens: result.OutputTokens,

		InputCost:      calc.InputCost,
		OutputCost:     calc.OutputCost,
		TotalCost:      calc.TotalCost,
		PricingMissing: calc.PricingMissing,

		LatencyMs: int(result.ExecutionTime.Milliseconds()),
		Success:   result.Success,
		Error:     result.ErrorMessage,

		CreatedAt: time.Now().UTC(),
	}

	if err := r.store.InsertUsage(ctx, rec); err != nil {
		return "", fmt.Errorf("recording usage: %w", err)
	}
	return rec.ID, nil
}

// RecordError stores a failed generation attempt.
func (r *Recorder) RecordError(ctx context.Context, opts RecordOpts, provider, model string, genErr error, duration time.Duration) (string, error) {
	rec := store.UsageRecord{
		ID:       uuid.New().String(),
		UserID:   opts.UserID,
		PromptID: opts.PromptID,

		Provider: provider,
		Model:    model,

		LatencyMs: int(duration.Milliseconds()),
		Success:   false,
		CreatedAt: time.Now().UTC(),
	}
	if genErr != nil {
		rec.Error = genErr.Error()
	}

	if err := r.store.InsertUsage(ctx, rec); err != nil {
		return "", fmt.Errorf("recording usage: %w", err)
	}
	return rec.ID, nil
}
