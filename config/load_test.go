package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite default driver, got %q", cfg.DBDriver)
	}
	if cfg.ListenAddr != "0.0.0.0:3001" {
		t.Fatalf("unexpected default listen addr %q", cfg.ListenAddr)
	}
	if cfg.Advisory.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected default model %q", cfg.Advisory.Model)
	}
	if cfg.Advisory.Timeout() != 30*time.Second {
		t.Fatalf("unexpected default timeout %v", cfg.Advisory.Timeout())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("THREATWATCH_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("expected env override, got %q", cfg.ListenAddr)
	}
	if !cfg.Advisory.Configured() {
		t.Fatalf("expected advisory configured from env")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "listen_addr: 127.0.0.1:8088\nadvisory:\n  model: test-model\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:8088" {
		t.Fatalf("expected yaml value, got %q", cfg.ListenAddr)
	}
	if cfg.Advisory.Model != "test-model" {
		t.Fatalf("expected yaml model, got %q", cfg.Advisory.Model)
	}
}
