package main

import (
	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running PromptVault server via HTTP.

These commands require a running server (promptvault serve).
Use --server to specify a custom server URL. Endpoints that require a
session read the token from PROMPTVAULT_TOKEN; get one with
"promptvault api auth login".

Examples:
  promptvault api health                 # Check server health
  promptvault api prompts list           # List prompts
  promptvault api cost estimate          # Estimate a generation cost
  promptvault api playground run         # Run a prompt`,
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Account and session commands",
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Prompt library commands",
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Template extraction and rendering commands",
}

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Cost estimation and comparison commands",
}

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run prompts against providers",
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Usage and spend tracking commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health endpoints at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ReadyEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.StatusEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.SwaggerEndpoint{}).Command(getServerURL))

	// Auth as subcommand group
	authCmd.AddCommand((&endpoints.RegisterEndpoint{}).Command(getServerURL))
	authCmd.AddCommand((&endpoints.LoginEndpoint{}).Command(getServerURL))
	authCmd.AddCommand((&endpoints.MeEndpoint{}).Command(getServerURL))

	// Prompts as subcommand group
	promptsCmd.AddCommand((&endpoints.ListPromptsEndpoint{}).Command(getServerURL))
	promptsCmd.AddCommand((&endpoints.GetPromptEndpoint{}).Command(getServerURL))
	promptsCmd.AddCommand((&endpoints.CreatePromptEndpoint{}).Command(getServerURL))
	promptsCmd.AddCommand((&endpoints.UpdatePromptEndpoint{}).Command(getServerURL))
	promptsCmd.AddCommand((&endpoints.DeletePromptEndpoint{}).Command(getServerURL))
	promptsCmd.AddCommand((&endpoints.PromptVariablesEndpoint{}).Command(getServerURL))
	promptsCmd.AddCommand((&endpoints.RenderPromptEndpoint{}).Command(getServerURL))
	promptsCmd.AddCommand(exportCmd())

	// Template as subcommand group
	templateCmd.AddCommand((&endpoints.ExtractEndpoint{}).Command(getServerURL))
	templateCmd.AddCommand((&endpoints.RenderEndpoint{}).Command(getServerURL))

	// Cost as subcommand group
	costCmd.AddCommand((&endpoints.EstimateCostEndpoint{}).Command(getServerURL))
	costCmd.AddCommand((&endpoints.CompareCostEndpoint{}).Command(getServerURL))
	costCmd.AddCommand((&endpoints.SavingsEndpoint{}).Command(getServerURL))
	costCmd.AddCommand((&endpoints.PricingEndpoint{}).Command(getServerURL))

	// Playground as subcommand group
	playgroundCmd.AddCommand((&endpoints.PlaygroundEndpoint{}).Command(getServerURL))

	// Usage as subcommand group
	usageCmd.AddCommand((&endpoints.ListUsageEndpoint{}).Command(getServerURL))
	usageCmd.AddCommand((&endpoints.UsageSummaryEndpoint{}).Command(getServerURL))
	usageCmd.AddCommand((&endpoints.UsageProjectionEndpoint{}).Command(getServerURL))

	apiCmd.AddCommand(authCmd)
	apiCmd.AddCommand(promptsCmd)
	apiCmd.AddCommand(templateCmd)
	apiCmd.AddCommand(costCmd)
	apiCmd.AddCommand(playgroundCmd)
	apiCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(apiCmd)
}
