// Package providers holds the clients that perform generation calls against
// external AI vendors.
//
// The application core only consumes the text and token counts a Result
// carries; pricing those tokens is the cost package's job.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// Client is the generation boundary. Implementations wrap one vendor API.
type Client interface {
	// Generate sends a prompt and returns the generated text plus usage.
	Generate(ctx context.Context, req *Request) (*Result, error)

	// Name returns the client identifier (the config key it was built from).
	Name() string
}

// ResponseFormat requests structured JSON output conforming to a schema.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// Request is one generation request.
type Request struct {
	// System is an optional system prompt.
	System string `json:"system,omitempty"`

	// Prompt is the materialized prompt text.
	Prompt string `json:"prompt"`

	// Model selection (uses the client default if empty).
	Model string `json:"model,omitempty"`

	// Generation parameters.
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`

	// Structured output.
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Request tracking.
	RequestID string `json:"-"`
}

// Result is the complete response from a generation call.
type Result struct {
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"` // Set when ResponseFormat was requested

	// Token counts, as reported by the provider.
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`

	// Provider info.
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Timing and tracking.
	ExecutionTime time.Duration `json:"execution_time"`
	RequestID     string        `json:"request_id"`
	Attempts      int           `json:"attempts"`

	// Success/error.
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error_message,omitempty"`
}
