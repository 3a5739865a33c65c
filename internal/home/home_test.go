package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewWithPath(t *testing.T) {
	d, err := New("/tmp/promptvault-test")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if d.Path() != "/tmp/promptvault-test" {
		t.Errorf("expected path /tmp/promptvault-test, got %s", d.Path())
	}
}

func TestNewDefaultPath(t *testing.T) {
	d, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, DefaultDirName)
	if d.Path() != want {
		t.Errorf("expected path %s, got %s", want, d.Path())
	}
}

func TestPaths(t *testing.T) {
	d, _ := New("/vault")

	if got := d.DataPath(); got != "/vault/data" {
		t.Errorf("DataPath = %s, want /vault/data", got)
	}
	if got := d.ConfigPath(); got != "/vault/config.yaml" {
		t.Errorf("ConfigPath = %s, want /vault/config.yaml", got)
	}
	if got := d.ExportsDir(); got != "/vault/exports" {
		t.Errorf("ExportsDir = %s, want /vault/exports", got)
	}
}

func TestEnsureExists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "vault")
	d, _ := New(root)

	if d.Exists() {
		t.Error("directory should not exist yet")
	}
	if err := d.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if !d.Exists() {
		t.Error("directory should exist after EnsureExists")
	}
	if _, err := os.Stat(d.DataPath()); err != nil {
		t.Errorf("data directory not created: %v", err)
	}
	if d.ConfigExists() {
		t.Error("config file should not exist")
	}
}
