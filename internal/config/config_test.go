package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMergePrefersProjectOverUser(t *testing.T) {
	userDir := t.TempDir()
	projectDir := t.TempDir()

	os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("oracle_command: user-oracle\ntimeout_seconds: 10\n"), 0o644)
	os.MkdirAll(filepath.Join(projectDir, ".ser"), 0o755)
	os.WriteFile(filepath.Join(projectDir, ".ser", "config.yaml"), []byte("oracle_command: project-oracle\n"), 0o644)

	m := NewManager()
	if err := m.Load(userDir, projectDir); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := m.Get()
	if cfg.OracleCommand != "project-oracle" {
		t.Fatalf("expected project config to win, got %q", cfg.OracleCommand)
	}
	if cfg.TimeoutSeconds != 10 {
		t.Fatalf("expected user config's timeout to survive when project doesn't set it, got %d", cfg.TimeoutSeconds)
	}
}

func TestMergeFallsBackToDefaults(t *testing.T) {
	m := NewManager()
	if err := m.Load(t.TempDir(), t.TempDir()); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := m.Get()
	if cfg.OracleCommand == "" || cfg.SMTCommand == "" {
		t.Fatalf("expected non-empty defaults, got %+v", cfg)
	}
}
