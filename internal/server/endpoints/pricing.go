package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/api"
	"github.com/promptvault/promptvault/internal/pricing"
	"github.com/promptvault/promptvault/internal/svcctx"
)

// PricingResponse lists the configured pricing table.
type PricingResponse struct {
	Providers []string               `json:"providers"`
	Models    []pricing.ModelPricing `json:"models"`
	Default   pricing.ModelPricing   `json:"default"`
}

// PricingEndpoint handles GET /api/pricing.
type PricingEndpoint struct{}

func (e *PricingEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/pricing", e.handler
}

func (e *PricingEndpoint) RequiresAuth() bool { return false }

// handler godoc
//
//	@Summary		List pricing
//	@Description	List every priced model plus the default rates used for unknown models
//	@Tags			cost
//	@Produce		json
//	@Success		200	{object}	PricingResponse
//	@Router			/api/pricing [get]
func (e *PricingEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	table := svcctx.PricingTableFrom(r.Context())

	writeJSON(w, http.StatusOK, PricingResponse{
		Providers: table.Providers(),
		Models:    table.All(),
		Default:   pricing.DefaultPricing,
	})
}

func (e *PricingEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "pricing",
		Short: "List the pricing table",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PricingResponse
			if err := client.Get(cmd.Context(), "/api/pricing", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
