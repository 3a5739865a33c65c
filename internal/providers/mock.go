package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockClient is a Client for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool
	FailAfter    int // Fail after N requests (0 = never)
	ResponseText string
	ResponseJSON json.RawMessage

	// Token counts reported with each result.
	InputTokens  int
	OutputTokens int

	// State
	requestCount atomic.Int64
}

// NewMockClient creates a mock client with sensible defaults.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseText: "mock response",
		InputTokens:  100,
		OutputTokens: 50,
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// RequestCount returns how many requests the mock has served.
func (c *MockClient) RequestCount() int {
	return int(c.requestCount.Load())
}

// Generate returns the configured canned response.
func (c *MockClient) Generate(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	count := c.requestCount.Add(1)

	if c.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Latency):
		}
	}

	result := &Result{
		Provider:  MockClientName,
		ModelUsed: req.Model,
		RequestID: req.RequestID,
		Attempts:  1,
	}

	if c.ShouldFail || (c.FailAfter > 0 && count > int64(c.FailAfter)) {
		result.ErrorMessage = "mock failure"
		result.ExecutionTime = time.Since(start)
		return result, fmt.Errorf("mock failure (request %d)", count)
	}

	result.Success = true
	result.Content = c.ResponseText
	result.InputTokens = c.InputTokens
	result.OutputTokens = c.OutputTokens
	result.TotalTokens = c.InputTokens + c.OutputTokens
	if req.ResponseFormat != nil && len(c.ResponseJSON) > 0 {
		result.Content = string(c.ResponseJSON)
		parsed, err := ValidateStructured(req.ResponseFormat.JSONSchema, result.Content)
		if err != nil {
			result.Success = false
			result.ErrorMessage = err.Error()
			result.ExecutionTime = time.Since(start)
			return result, fmt.Errorf("structured output from %s: %w", MockClientName, err)
		}
		result.ParsedJSON = parsed
	}
	result.ExecutionTime = time.Since(start)

	return result, nil
}
