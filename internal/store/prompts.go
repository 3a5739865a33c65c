package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prompt is one saved prompt template.
type Prompt struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PromptFilter narrows a prompt listing.
type PromptFilter struct {
	Tag    string // exact tag match
	Search string // substring match on title or body
}

// CreatePrompt inserts a new prompt and returns it with generated fields.
func (s *Store) CreatePrompt(ctx context.Context, p Prompt) (*Prompt, error) {
	p.ID = uuid.New().String()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prompts (id, user_id, title, body, description, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.Title, p.Body, p.Description, joinTags(p.Tags), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert prompt: %w", err)
	}
	return &p, nil
}

// GetPrompt returns the prompt with the given id.
func (s *Store) GetPrompt(ctx context.Context, id string) (*Prompt, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, body, description, tags, created_at, updated_at
		FROM prompts WHERE id = ?`, id)
	return scanPrompt(row.Scan)
}

// ListPrompts returns prompts matching the filter, newest first.
func (s *Store) ListPrompts(ctx context.Context, f PromptFilter) ([]Prompt, error) {
	query := `
		SELECT id, user_id, title, body, description, tags, created_at, updated_at
		FROM prompts`
	var conds []string
	var args []any

	if f.Search != "" {
		conds = append(conds, "(title LIKE ? OR body LIKE ?)")
		like := "%" + f.Search + "%"
		args = append(args, like, like)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []Prompt
	for rows.Next() {
		p, err := scanPrompt(rows.Scan)
		if err != nil {
			return nil, err
		}
		// Tag filtering happens client-side: tags are a comma-joined column
		// and exact matching on a LIKE pattern gets false positives.
		if f.Tag != "" && !hasTag(p.Tags, f.Tag) {
			continue
		}
		prompts = append(prompts, *p)
	}
	return prompts, rows.Err()
}

// UpdatePrompt replaces the mutable fields of a prompt.
func (s *Store) UpdatePrompt(ctx context.Context, p Prompt) (*Prompt, error) {
	p.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE prompts SET title = ?, body = ?, description = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Body, p.Description, joinTags(p.Tags), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetPrompt(ctx, p.ID)
}

// DeletePrompt removes a prompt by id.
func (s *Store) DeletePrompt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM prompts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPrompt(scan func(...any) error) (*Prompt, error) {
	var p Prompt
	var tags string
	err := scan(&p.ID, &p.UserID, &p.Title, &p.Body, &p.Description, &tags, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan prompt: %w", err)
	}
	p.Tags = splitTags(tags)
	return &p, nil
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func hasTag(tags []string, want string) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}
