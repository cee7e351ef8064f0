package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	s := tempStore(t)
	cfg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Version != CurrentVersion {
		t.Errorf("version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.EffectivePageSize() != DefaultPageSize {
		t.Errorf("page size = %d, want default %d", cfg.EffectivePageSize(), DefaultPageSize)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := tempStore(t)
	in := Config{CodexPath: "/opt/codex", CodexDir: "/data/.codex", PageSize: 50}
	if err := s.Save(in); err != nil {
		t.Fatal(err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if out.CodexPath != in.CodexPath || out.CodexDir != in.CodexDir || out.PageSize != in.PageSize {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestUpdate(t *testing.T) {
	s := tempStore(t)
	err := s.Update(func(c *Config) error {
		c.PageSize = 7
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PageSize != 7 {
		t.Errorf("page size = %d, want 7", cfg.PageSize)
	}
}

func TestLoad_UnsupportedVersion(t *testing.T) {
	s := tempStore(t)
	if err := os.WriteFile(s.Path(), []byte(`{"version":99}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil || !strings.Contains(err.Error(), "unsupported config version") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	s := tempStore(t)
	if err := os.WriteFile(s.Path(), []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
