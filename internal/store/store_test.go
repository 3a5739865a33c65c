package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMemoryPoolSharesDatabase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Hold two pooled connections at once; both must see the migrated
	// schema rather than a private empty database.
	c1, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("first conn: %v", err)
	}
	defer c1.Close()
	c2, err := s.db.Conn(ctx)
	if err != nil {
		t.Fatalf("second conn: %v", err)
	}
	defer c2.Close()

	for i, c := range []*sql.Conn{c1, c2} {
		var count int
		if err := c.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM usage_records").Scan(&count); err != nil {
			t.Fatalf("conn %d cannot see schema: %v", i+1, err)
		}
	}
}

func TestMemoryStoresAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := newTestStore(t)
	b := newTestStore(t)

	if _, err := a.CreateUser(ctx, "only-in-a", "hash"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := b.GetUserByUsername(ctx, "only-in-a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stores share state: err = %v, want ErrNotFound", err)
	}
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	has, err := s.HasUsers(ctx)
	if err != nil {
		t.Fatalf("HasUsers: %v", err)
	}
	if has {
		t.Error("fresh store should have no users")
	}

	u, err := s.CreateUser(ctx, "admin", "hash123")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated user id")
	}

	got, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash123" {
		t.Errorf("got %+v, want %+v", got, u)
	}

	if _, err := s.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestPromptCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "admin", "hash")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	p, err := s.CreatePrompt(ctx, Prompt{
		UserID:      u.ID,
		Title:       "Greeting",
		Body:        "Hello {{name|World}}!",
		Description: "says hello",
		Tags:        []string{"demo", "greeting"},
	})
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}

	got, err := s.GetPrompt(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPrompt: %v", err)
	}
	if got.Body != "Hello {{name|World}}!" || len(got.Tags) != 2 {
		t.Errorf("unexpected prompt: %+v", got)
	}

	got.Title = "Greeting v2"
	updated, err := s.UpdatePrompt(ctx, *got)
	if err != nil {
		t.Fatalf("UpdatePrompt: %v", err)
	}
	if updated.Title != "Greeting v2" {
		t.Errorf("title = %q after update", updated.Title)
	}

	if err := s.DeletePrompt(ctx, p.ID); err != nil {
		t.Fatalf("DeletePrompt: %v", err)
	}
	if _, err := s.GetPrompt(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted prompt err = %v, want ErrNotFound", err)
	}
	if err := s.DeletePrompt(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestListPromptsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, _ := s.CreateUser(ctx, "admin", "hash")
	mk := func(title, body string, tags ...string) {
		t.Helper()
		if _, err := s.CreatePrompt(ctx, Prompt{UserID: u.ID, Title: title, Body: body, Tags: tags}); err != nil {
			t.Fatalf("CreatePrompt %s: %v", title, err)
		}
	}
	mk("Summarizer", "Summarize {{text}}", "summarize")
	mk("Translator", "Translate {{text}} to {{lang|French}}", "translate")
	mk("Greeter", "Hello {{name}}", "demo")

	all, err := s.ListPrompts(ctx, PromptFilter{})
	if err != nil {
		t.Fatalf("ListPrompts: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d prompts, want 3", len(all))
	}

	tagged, err := s.ListPrompts(ctx, PromptFilter{Tag: "translate"})
	if err != nil {
		t.Fatalf("ListPrompts tag: %v", err)
	}
	if len(tagged) != 1 || tagged[0].Title != "Translator" {
		t.Errorf("tag filter got %+v", tagged)
	}

	found, err := s.ListPrompts(ctx, PromptFilter{Search: "Summarize"})
	if err != nil {
		t.Fatalf("ListPrompts search: %v", err)
	}
	if len(found) != 1 || found[0].Title != "Summarizer" {
		t.Errorf("search filter got %+v", found)
	}
}

func TestUsageRecordsAndDailyCosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []UsageRecord{
		{ID: "r1", UserID: "u1", Provider: "anthropic", Model: "m", TotalCost: 1.5, Success: true, CreatedAt: base},
		{ID: "r2", UserID: "u1", Provider: "anthropic", Model: "m", TotalCost: 0.5, Success: true, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "r3", UserID: "u1", Provider: "openai", Model: "m2", TotalCost: 3.0, Success: true, CreatedAt: base.AddDate(0, 0, 1)},
		{ID: "r4", UserID: "u2", Provider: "openai", Model: "m2", TotalCost: 9.0, Success: false, CreatedAt: base.AddDate(0, 0, 1)},
	}
	for _, r := range records {
		if err := s.InsertUsage(ctx, r); err != nil {
			t.Fatalf("InsertUsage %s: %v", r.ID, err)
		}
	}

	u1, err := s.ListUsage(ctx, UsageFilter{UserID: "u1"}, 0)
	if err != nil {
		t.Fatalf("ListUsage: %v", err)
	}
	if len(u1) != 3 {
		t.Errorf("user filter got %d records, want 3", len(u1))
	}
	if u1[0].ID != "r3" {
		t.Errorf("newest first: got %s, want r3", u1[0].ID)
	}

	limited, err := s.ListUsage(ctx, UsageFilter{}, 2)
	if err != nil {
		t.Fatalf("ListUsage limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit got %d records, want 2", len(limited))
	}

	days, err := s.DailyCosts(ctx, UsageFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("DailyCosts: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2", len(days))
	}
	if days[0].Day != "2026-08-01" || days[0].TotalCost != 2.0 || days[0].Calls != 2 {
		t.Errorf("day 1 = %+v", days[0])
	}
	if days[1].Day != "2026-08-02" || days[1].TotalCost != 3.0 {
		t.Errorf("day 2 = %+v", days[1])
	}
}
