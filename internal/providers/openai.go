package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIConfig holds configuration for an OpenAI-compatible chat client.
// Most vendors (OpenAI, OpenRouter, DeepInfra, local gateways) speak this
// API; BaseURL selects the endpoint.
type OpenAIConfig struct {
	Name       string // Registry name; also recorded as Result.Provider
	APIKey     string
	Model      string // Default model when a request does not specify one
	BaseURL    string // Optional; vendor default when empty
	RateLimit  int    // Requests per minute
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	HTTPClient *http.Client // Optional (tests)
}

// OpenAIClient implements Client using the official OpenAI SDK.
type OpenAIClient struct {
	name       string
	model      string
	maxRetries int
	retryDelay time.Duration
	limiter    *RateLimiter
	client     openai.Client
}

// NewOpenAIClient creates a chat client from config.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		// Retries are handled here, not in the SDK transport, so attempts
		// are counted and rate limited uniformly.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		name:       cfg.Name,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    NewRateLimiter(cfg.RateLimit),
		client:     openai.NewClient(opts...),
	}
}

// Name returns the client identifier.
func (c *OpenAIClient) Name() string {
	return c.name
}

// Generate sends a chat completion request, retrying transient failures.
func (c *OpenAIClient) Generate(ctx context.Context, req *Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: buildMessages(req),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	start := time.Now()
	attempts := 0

	var completion *openai.ChatCompletion
	err := retry.Do(
		func() error {
			attempts++
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.client.Chat.Completions.New(ctx, params)
			if err != nil {
				return err
			}
			if len(resp.Choices) == 0 {
				return fmt.Errorf("response has no choices")
			}
			completion = resp
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)

	result := &Result{
		Provider:      c.name,
		ModelUsed:     model,
		RequestID:     req.RequestID,
		Attempts:      attempts,
		ExecutionTime: time.Since(start),
	}

	if err != nil {
		result.ErrorMessage = err.Error()
		return result, fmt.Errorf("generate via %s: %w", c.name, err)
	}

	result.Success = true
	result.Content = completion.Choices[0].Message.Content
	result.InputTokens = int(completion.Usage.PromptTokens)
	result.OutputTokens = int(completion.Usage.CompletionTokens)
	result.TotalTokens = int(completion.Usage.TotalTokens)

	if req.ResponseFormat != nil {
		parsed, err := ValidateStructured(req.ResponseFormat.JSONSchema, result.Content)
		if err != nil {
			result.Success = false
			result.ErrorMessage = err.Error()
			return result, fmt.Errorf("structured output from %s: %w", c.name, err)
		}
		result.ParsedJSON = parsed
	}

	return result, nil
}

func buildMessages(req *Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))
	return messages
}
