package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// user configuration, loaded from a yaml file with env overrides
type Config struct {
	// path to the sqlite database; defaults next to the config file
	DatabasePath string `yaml:"database_path"`

	// unix socket mpv is told to listen on
	MPVSocket string `yaml:"mpv_socket"`

	// dictionary provider: gemini, openai or anthropic
	Provider string `yaml:"provider"`

	// provider model override; empty uses the provider default
	Model string `yaml:"model"`

	// language the subtitles are in
	SourceLanguage string `yaml:"source_language"`

	// language definitions are written in
	TargetLanguage string `yaml:"target_language"`

	// navigation lockout in milliseconds; 0 uses the default
	LockoutMillis int `yaml:"lockout_millis"`

	// api keys; env vars take precedence
	GeminiAPIKey    string `yaml:"gemini_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
}

// DefaultPath returns the conventional config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "subvoc", "config.yaml"), nil
}

// Load reads the config file at path. A missing file is not an error:
// defaults and env vars still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Provider:       "gemini",
		SourceLanguage: "es",
		TargetLanguage: "en",
		MPVSocket:      filepath.Join(os.TempDir(), "subvoc-mpv.sock"),
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(filepath.Dir(path), "subvoc.db")
	}

	applyEnv(cfg)
	return cfg, nil
}

// env vars override file values
func applyEnv(cfg *Config) {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := os.Getenv("SUBVOC_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("SUBVOC_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("SUBVOC_MPV_SOCKET"); v != "" {
		cfg.MPVSocket = v
	}
}

// APIKey returns the key configured for the active provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.GeminiAPIKey
	}
}
