package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SUBVOC_PROVIDER", "")
	t.Setenv("SUBVOC_DB", "")
	t.Setenv("SUBVOC_MPV_SOCKET", "")

	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Provider != "gemini" {
		t.Errorf("default provider: got %q", cfg.Provider)
	}
	if cfg.DatabasePath != filepath.Join(dir, "subvoc.db") {
		t.Errorf("default db path: got %q", cfg.DatabasePath)
	}
	if cfg.MPVSocket == "" {
		t.Error("expected a default mpv socket path")
	}
	if cfg.SourceLanguage != "es" || cfg.TargetLanguage != "en" {
		t.Errorf("default languages: %q -> %q", cfg.SourceLanguage, cfg.TargetLanguage)
	}
}

func TestLoadParsesFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SUBVOC_PROVIDER", "")
	t.Setenv("SUBVOC_DB", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `provider: openai
model: gpt-5-mini
database_path: /var/lib/subvoc/data.db
source_language: ja
target_language: en
lockout_millis: 1500
openai_api_key: file-key
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Provider != "openai" || cfg.Model != "gpt-5-mini" {
		t.Errorf("provider/model: %q/%q", cfg.Provider, cfg.Model)
	}
	if cfg.DatabasePath != "/var/lib/subvoc/data.db" {
		t.Errorf("db path: %q", cfg.DatabasePath)
	}
	if cfg.LockoutMillis != 1500 {
		t.Errorf("lockout: %d", cfg.LockoutMillis)
	}
	if cfg.APIKey() != "file-key" {
		t.Errorf("api key: %q", cfg.APIKey())
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("provider: gemini\ngemini_api_key: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("SUBVOC_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "claude-key")
	t.Setenv("SUBVOC_DB", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Provider != "anthropic" {
		t.Errorf("provider override: %q", cfg.Provider)
	}
	if cfg.APIKey() != "claude-key" {
		t.Errorf("api key for provider: %q", cfg.APIKey())
	}
	if cfg.GeminiAPIKey != "from-env" {
		t.Errorf("gemini key: %q", cfg.GeminiAPIKey)
	}
	if cfg.DatabasePath != "/tmp/override.db" {
		t.Errorf("db path override: %q", cfg.DatabasePath)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("provider: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
