package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/api"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/svcctx"
	"github.com/promptvault/promptvault/internal/template"
)

// ExtractRequest is the request body for variable extraction.
type ExtractRequest struct {
	Template string `json:"template"`
}

// ExtractResponse lists the variables found in a template.
type ExtractResponse struct {
	Variables []template.Variable `json:"variables"`
}

// ExtractEndpoint handles POST /api/template/extract.
type ExtractEndpoint struct{}

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/template/extract", e.handler
}

func (e *ExtractEndpoint) RequiresAuth() bool { return false }

// handler godoc
//
//	@Summary		Extract template variables
//	@Description	Parse placeholder declarations out of a template body
//	@Tags			template
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ExtractRequest	true	"Template text"
//	@Success		200		{object}	ExtractResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/template/extract [post]
func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Variables: template.Extract(req.Template),
	})
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var tmpl string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract variables from a template",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			err := client.Post(cmd.Context(), "/api/template/extract",
				ExtractRequest{Template: tmpl}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&tmpl, "template", "", "Template text")
	cmd.MarkFlagRequired("template")
	return cmd
}

// RenderRequest is the request body for template rendering.
type RenderRequest struct {
	Template string            `json:"template"`
	Values   map[string]string `json:"values,omitempty"`
}

// RenderResponse is a rendered template.
type RenderResponse struct {
	Rendered  string              `json:"rendered"`
	Variables []template.Variable `json:"variables"`
}

// RenderEndpoint handles POST /api/template/render.
type RenderEndpoint struct{}

func (e *RenderEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/template/render", e.handler
}

func (e *RenderEndpoint) RequiresAuth() bool { return false }

// handler godoc
//
//	@Summary		Render a template
//	@Description	Substitute values into placeholders; unfilled variables fall back to their defaults, then to the literal placeholder
//	@Tags			template
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RenderRequest	true	"Template and values"
//	@Success		200		{object}	RenderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/template/render [post]
func (e *RenderEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := template.Extract(req.Template)
	writeJSON(w, http.StatusOK, RenderResponse{
		Rendered:  template.Render(req.Template, vars, req.Values),
		Variables: vars,
	})
}

func (e *RenderEndpoint) Command(getServerURL func() string) *cobra.Command {
	var tmpl string
	var values map[string]string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template with values",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp RenderResponse
			err := client.Post(cmd.Context(), "/api/template/render",
				RenderRequest{Template: tmpl, Values: values}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&tmpl, "template", "", "Template text")
	cmd.Flags().StringToStringVar(&values, "values", nil, "Variable values (name=value)")
	cmd.MarkFlagRequired("template")
	return cmd
}

// RenderPromptRequest supplies values for rendering a stored prompt.
type RenderPromptRequest struct {
	Values map[string]string `json:"values,omitempty"`
}

// RenderPromptEndpoint handles POST /api/prompts/{id}/render.
type RenderPromptEndpoint struct{}

func (e *RenderPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts/{id}/render", e.handler
}

func (e *RenderPromptEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		Render a stored prompt
//	@Description	Render the body of a saved prompt with the supplied values
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Prompt ID"
//	@Param			request	body		RenderPromptRequest	true	"Variable values"
//	@Success		200		{object}	RenderResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/prompts/{id}/render [post]
func (e *RenderPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req RenderPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	p, err := st.GetPrompt(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	vars := template.Extract(p.Body)
	writeJSON(w, http.StatusOK, RenderResponse{
		Rendered:  template.Render(p.Body, vars, req.Values),
		Variables: vars,
	})
}

// PromptVariablesEndpoint handles GET /api/prompts/{id}/variables.
type PromptVariablesEndpoint struct{}

func (e *PromptVariablesEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{id}/variables", e.handler
}

func (e *PromptVariablesEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		List a prompt's variables
//	@Description	Extract the placeholder declarations from a saved prompt body
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		string	true	"Prompt ID"
//	@Success		200	{object}	ExtractResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/prompts/{id}/variables [get]
func (e *PromptVariablesEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())
	p, err := st.GetPrompt(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Variables: template.Extract(p.Body),
	})
}

func (e *PromptVariablesEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "variables <id>",
		Short: "List the variables of a stored prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ExtractResponse
			err := client.Get(cmd.Context(), "/api/prompts/"+args[0]+"/variables", &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

func (e *RenderPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var values map[string]string
	cmd := &cobra.Command{
		Use:   "render-prompt <id>",
		Short: "Render a stored prompt with values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp RenderResponse
			err := client.Post(cmd.Context(), "/api/prompts/"+args[0]+"/render",
				RenderPromptRequest{Values: values}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringToStringVar(&values, "values", nil, "Variable values (name=value)")
	return cmd
}
