package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/api"
	"github.com/promptvault/promptvault/internal/home"
	"github.com/promptvault/promptvault/internal/server/endpoints"
)

// exportCmd dumps the prompt library to a local JSON file for backup or
// sharing outside the server.
func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all prompts to a JSON file",
		Long: `Export the full prompt library to a JSON file.

Without --out, the file is written to the exports directory under the
promptvault home with a timestamped name.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var prompts []endpoints.PromptResponse
			if err := client.Get(cmd.Context(), "/api/prompts", &prompts); err != nil {
				return err
			}

			path := out
			if path == "" {
				h, err := home.New(homeDir)
				if err != nil {
					return err
				}
				if err := h.EnsureExportsDir(); err != nil {
					return err
				}
				name := "prompts-" + time.Now().Format("20060102-150405") + ".json"
				path = filepath.Join(h.ExportsDir(), name)
			}

			if err := api.OutputToFile(prompts, path); err != nil {
				return err
			}
			fmt.Printf("Exported %d prompts to %s\n", len(prompts), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file path")
	return cmd
}
