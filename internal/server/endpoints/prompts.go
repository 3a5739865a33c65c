package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptvault/promptvault/internal/api"
	"github.com/promptvault/promptvault/internal/auth"
	"github.com/promptvault/promptvault/internal/store"
	"github.com/promptvault/promptvault/internal/svcctx"
	"github.com/promptvault/promptvault/internal/template"
)

// PromptRequest is the request body for creating or updating a prompt.
type PromptRequest struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// PromptResponse is a stored prompt plus its extracted variables.
type PromptResponse struct {
	store.Prompt
	Variables []template.Variable `json:"variables"`
}

func promptResponse(p *store.Prompt) PromptResponse {
	return PromptResponse{
		Prompt:    *p,
		Variables: template.Extract(p.Body),
	}
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		List prompts
//	@Description	List saved prompts, optionally filtered by tag or search text
//	@Tags			prompts
//	@Produce		json
//	@Param			tag		query		string	false	"Filter by exact tag"
//	@Param			search	query		string	false	"Substring match on title or body"
//	@Success		200		{array}		PromptResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())

	prompts, err := st.ListPrompts(r.Context(), store.PromptFilter{
		Tag:    r.URL.Query().Get("tag"),
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]PromptResponse, 0, len(prompts))
	for i := range prompts {
		resp = append(resp, promptResponse(&prompts[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var tag, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())

			path := "/api/prompts"
			params := url.Values{}
			if tag != "" {
				params.Set("tag", tag)
			}
			if search != "" {
				params.Set("search", search)
			}
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var resp []PromptResponse
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Filter by exact tag")
	cmd.Flags().StringVar(&search, "search", "", "Search title and body")
	return cmd
}

// GetPromptEndpoint handles GET /api/prompts/{id}.
type GetPromptEndpoint struct{}

func (e *GetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts/{id}", e.handler
}

func (e *GetPromptEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		Get a prompt
//	@Description	Get a prompt by ID, including its extracted variables
//	@Tags			prompts
//	@Produce		json
//	@Param			id	path		string	true	"Prompt ID"
//	@Success		200	{object}	PromptResponse
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/prompts/{id} [get]
func (e *GetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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

	writeJSON(w, http.StatusOK, promptResponse(p))
}

func (e *GetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a prompt by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptResponse
			if err := client.Get(cmd.Context(), "/api/prompts/"+args[0], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// CreatePromptEndpoint handles POST /api/prompts.
type CreatePromptEndpoint struct{}

func (e *CreatePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts", e.handler
}

func (e *CreatePromptEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		Create a prompt
//	@Description	Save a new prompt template
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PromptRequest	true	"Prompt"
//	@Success		201		{object}	PromptResponse
//	@Failure		400		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/prompts [post]
func (e *CreatePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	p, err := st.CreatePrompt(r.Context(), store.Prompt{
		UserID:      auth.UserIDFrom(r.Context()),
		Title:       req.Title,
		Body:        req.Body,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, promptResponse(p))
}

func (e *CreatePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title, body, description string
	var tags []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptResponse
			err := client.Post(cmd.Context(), "/api/prompts", PromptRequest{
				Title:       title,
				Body:        body,
				Description: description,
				Tags:        tags,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Prompt title")
	cmd.Flags().StringVar(&body, "body", "", "Prompt template body")
	cmd.Flags().StringVar(&description, "description", "", "Prompt description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags (comma-separated)")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("body")
	return cmd
}

// UpdatePromptEndpoint handles PUT /api/prompts/{id}.
type UpdatePromptEndpoint struct{}

func (e *UpdatePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PUT", "/api/prompts/{id}", e.handler
}

func (e *UpdatePromptEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		Update a prompt
//	@Description	Replace the mutable fields of a prompt
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Prompt ID"
//	@Param			request	body		PromptRequest	true	"Prompt"
//	@Success		200		{object}	PromptResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/prompts/{id} [put]
func (e *UpdatePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.Body == "" {
		writeError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	st := svcctx.StoreFrom(r.Context())
	p, err := st.UpdatePrompt(r.Context(), store.Prompt{
		ID:          r.PathValue("id"),
		Title:       req.Title,
		Body:        req.Body,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, promptResponse(p))
}

func (e *UpdatePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var title, body, description string
	var tags []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp PromptResponse
			err := client.Put(cmd.Context(), "/api/prompts/"+args[0], PromptRequest{
				Title:       title,
				Body:        body,
				Description: description,
				Tags:        tags,
			}, &resp)
			if err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Prompt title")
	cmd.Flags().StringVar(&body, "body", "", "Prompt template body")
	cmd.Flags().StringVar(&description, "description", "", "Prompt description")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "Tags (comma-separated)")
	return cmd
}

// DeletePromptEndpoint handles DELETE /api/prompts/{id}.
type DeletePromptEndpoint struct{}

func (e *DeletePromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/prompts/{id}", e.handler
}

func (e *DeletePromptEndpoint) RequiresAuth() bool { return true }

// handler godoc
//
//	@Summary		Delete a prompt
//	@Tags			prompts
//	@Param			id	path	string	true	"Prompt ID"
//	@Success		204
//	@Failure		404	{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/api/prompts/{id} [delete]
func (e *DeletePromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	st := svcctx.StoreFrom(r.Context())

	if err := st.DeletePrompt(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "prompt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (e *DeletePromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			if err := client.Delete(cmd.Context(), "/api/prompts/"+args[0]); err != nil {
				return err
			}
			cmd.Println("Deleted", args[0])
			return nil
		},
	}
}
