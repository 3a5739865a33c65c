package endpoints

import (
	"github.com/promptvault/promptvault/internal/api"
)

// Config holds dependencies needed by some endpoints.
type Config struct {
	SwaggerSpecPath string
}

// All returns all endpoint instances.
func All(cfg Config) []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&ReadyEndpoint{},
		&StatusEndpoint{},

		// Auth endpoints
		&RegisterEndpoint{},
		&LoginEndpoint{},
		&MeEndpoint{},

		// Prompt endpoints
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&CreatePromptEndpoint{},
		&UpdatePromptEndpoint{},
		&DeletePromptEndpoint{},
		&PromptVariablesEndpoint{},
		&RenderPromptEndpoint{},

		// Template endpoints
		&ExtractEndpoint{},
		&RenderEndpoint{},

		// Cost endpoints
		&EstimateCostEndpoint{},
		&CompareCostEndpoint{},
		&SavingsEndpoint{},
		&PricingEndpoint{},

		// Playground
		&PlaygroundEndpoint{},

		// Usage endpoints
		&ListUsageEndpoint{},
		&UsageSummaryEndpoint{},
		&UsageProjectionEndpoint{},

		// Swagger/OpenAPI endpoints
		&SwaggerEndpoint{SpecPath: cfg.SwaggerSpecPath},
		&SwaggerUIEndpoint{},
	}
}

// PromptCommands groups prompt CRUD endpoints for the "prompts" subcommand.
func PromptCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListPromptsEndpoint{},
		&GetPromptEndpoint{},
		&CreatePromptEndpoint{},
		&UpdatePromptEndpoint{},
		&DeletePromptEndpoint{},
		&PromptVariablesEndpoint{},
		&RenderPromptEndpoint{},
	}
}

// CostCommands groups cost endpoints for the "cost" subcommand.
func CostCommands() []api.Endpoint {
	return []api.Endpoint{
		&EstimateCostEndpoint{},
		&CompareCostEndpoint{},
		&SavingsEndpoint{},
		&PricingEndpoint{},
	}
}

// UsageCommands groups usage endpoints for the "usage" subcommand.
func UsageCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListUsageEndpoint{},
		&UsageSummaryEndpoint{},
		&UsageProjectionEndpoint{},
	}
}
