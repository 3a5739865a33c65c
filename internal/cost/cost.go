// Package cost converts token usage into priced cost breakdowns.
//
// All functions are deterministic: rounding happens with shared round6 and
// round2 helpers at fixed points in each computation, so the same token
// counts and pricing always produce the same figures. Unknown pricing never
// fails a calculation - it falls back to pricing.DefaultPricing and the
// result is flagged so callers can surface a warning.
package cost

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/promptvault/promptvault/internal/pricing"
)

// ErrEmptyProjection is returned when a monthly projection is requested over
// zero data points. Rejecting the empty set keeps NaN out of the results.
var ErrEmptyProjection = errors.New("cannot project monthly cost from empty usage")

// defaultDaysInMonth is used when a caller does not specify a month length.
const defaultDaysInMonth = 30

// Calculation is one priced generation request.
type Calculation struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`

	// Costs in USD, each rounded to 6 decimal places.
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`

	// Pricing is the resolved table entry, possibly the default.
	Pricing pricing.ModelPricing `json:"pricing"`

	// PricingMissing is true when no exact table entry existed and the
	// default rates were substituted.
	PricingMissing bool `json:"pricing_missing,omitempty"`
}

// Calculator prices token usage against an immutable pricing table.
type Calculator struct {
	table  *pricing.Table
	logger *slog.Logger
}

// NewCalculator creates a calculator over the given table.
func NewCalculator(table *pricing.Table, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{table: table, logger: logger}
}

// Calculate prices a single request. Rounding order is fixed: each side is
// rounded to 6 decimals independently, then their sum is rounded again, so
// TotalCost always equals round6(InputCost + OutputCost).
//
// Token counts are expected to be non-negative; they come from provider
// usage data and are not validated here.
func (c *Calculator) Calculate(provider, model string, inputTokens, outputTokens int) Calculation {
	p, ok := c.table.Lookup(provider, model)
	if !ok {
		c.logger.Warn("no pricing for model, using default rates",
			"provider", provider, "model", model)
	}

	inputCost := Round6(float64(inputTokens) / 1000 * p.InputPer1K)
	outputCost := Round6(float64(outputTokens) / 1000 * p.OutputPer1K)

	return Calculation{
		Provider:       provider,
		Model:          model,
		InputTokens:    inputTokens,
		OutputTokens:   outputTokens,
		InputCost:      inputCost,
		OutputCost:     outputCost,
		TotalCost:      Round6(inputCost + outputCost),
		Pricing:        p,
		PricingMissing: !ok,
	}
}

// ModelRef names one provider/model pair for comparison.
type ModelRef struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// RankedCalculation is a Calculation with its rank in a comparison,
// 1 = cheapest.
type RankedCalculation struct {
	Calculation
	Rank int `json:"rank"`
}

// CompareModels prices the same token usage across several models and
// returns the results ranked ascending by total cost. The sort is stable,
// so models with identical totals keep their input order.
func (c *Calculator) CompareModels(models []ModelRef, inputTokens, outputTokens int) []RankedCalculation {
	ranked := make([]RankedCalculation, len(models))
	for i, m := range models {
		ranked[i] = RankedCalculation{
			Calculation: c.Calculate(m.Provider, m.Model, inputTokens, outputTokens),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalCost < ranked[j].TotalCost
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Savings describes the difference between two priced requests.
type Savings struct {
	Absolute  float64 `json:"absolute_savings"`
	Percent   float64 `json:"percentage_savings"`
	Formatted string  `json:"formatted_savings"`
}

// CalculateSavings reports how much cheaper the second calculation is
// relative to the first. Argument order is not validated: passing them
// reversed yields a negative savings, which is a legitimate result rather
// than an error.
func CalculateSavings(expensive, cheaper Calculation) Savings {
	absolute := Round6(expensive.TotalCost - cheaper.TotalCost)
	var percent float64
	if expensive.TotalCost > 0 {
		percent = Round2(absolute / expensive.TotalCost * 100)
	}
	return Savings{
		Absolute:  absolute,
		Percent:   percent,
		Formatted: FormatCost(absolute),
	}
}

// Projection extrapolates daily usage to a month.
type Projection struct {
	TotalMonthlyCost float64 `json:"total_monthly_cost"`
	AverageDailyCost float64 `json:"average_daily_cost"`
	Days             int     `json:"days"`
}

// ProjectMonthly extrapolates a set of daily calculations to a monthly
// total. daysInMonth defaults to 30 when zero or negative. An empty input
// returns ErrEmptyProjection instead of dividing by zero.
func ProjectMonthly(daily []Calculation, daysInMonth int) (Projection, error) {
	if len(daily) == 0 {
		return Projection{}, ErrEmptyProjection
	}
	if daysInMonth <= 0 {
		daysInMonth = defaultDaysInMonth
	}

	var sum float64
	for _, d := range daily {
		sum += d.TotalCost
	}

	avg := Round6(sum / float64(len(daily)))
	return Projection{
		TotalMonthlyCost: Round2(avg * float64(daysInMonth)),
		AverageDailyCost: avg,
		Days:             daysInMonth,
	}, nil
}

// FormatCost renders a USD amount with precision scaled to its magnitude:
// sub-cent values keep 6 decimals so they stay visible, values under a
// dollar keep 4, and anything larger reads as ordinary currency.
func FormatCost(cost float64) string {
	switch {
	case cost < 0.01:
		return fmt.Sprintf("$%.6f", cost)
	case cost < 1:
		return fmt.Sprintf("$%.4f", cost)
	default:
		return fmt.Sprintf("$%.2f", cost)
	}
}

// Round6 rounds to 6 decimal places, half away from zero.
func Round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
