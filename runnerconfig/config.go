// Package runnerconfig holds the CLI's out-of-core defaults: model names,
// sampler settings, the debug flag and the instruction budget. Grounded in
// the teacher's config package (config/config.go) — same
// Load/LoadFrom/Save/SaveTo/GetConfigPath shape, same "defaults, then TOML
// file, then environment" layering, adapted from emulator settings to
// Language-Logic Machine settings (spec.md §6.6: env vars win over the file).
package runnerconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the CLI needs beyond what's on the command
// line, loaded from a TOML file with environment variables able to
// override any field.
type Config struct {
	LLM struct {
		BaseURL        string `toml:"base_url"`
		TextModel      string `toml:"text_model"`
		EmbeddingModel string `toml:"embedding_model"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
	} `toml:"llm"`

	Run struct {
		Debug           bool   `toml:"debug"`
		MaxInstructions uint64 `toml:"max_instructions"`
	} `toml:"run"`

	// Sampler is loaded from and saved to the file, but the CLI does not
	// pass it on: Language-Logic calls always use
	// languagelogic.DefaultSampler.
	Sampler struct {
		Temperature   float64 `toml:"temperature"`
		MinP          float64 `toml:"min_p"`
		TopP          float64 `toml:"top_p"`
		TopK          int     `toml:"top_k"`
		RepeatPenalty float64 `toml:"repeat_penalty"`
	} `toml:"sampler"`
}

// DefaultConfig returns the built-in defaults, applied before any TOML file
// or environment variable is consulted.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.LLM.BaseURL = "http://127.0.0.1:8080"
	cfg.LLM.TextModel = "default-text-model"
	cfg.LLM.EmbeddingModel = "default-embedding-model"
	cfg.LLM.TimeoutSeconds = 30

	cfg.Run.Debug = false
	cfg.Run.MaxInstructions = 1_000_000

	cfg.Sampler.Temperature = 0.3
	cfg.Sampler.MinP = 0.15
	cfg.Sampler.TopP = 0.95
	cfg.Sampler.TopK = 40
	cfg.Sampler.RepeatPenalty = 1.05

	return cfg
}

// GetConfigPath returns the platform-specific config file path:
// ~/.config/llmvm/config.toml on macOS/Linux, %APPDATA%\llmvm\config.toml
// on Windows.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "llmvm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "llmvm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config path, then applies
// environment variable overrides.
func Load() (*Config, error) {
	cfg, err := LoadFrom(GetConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFrom loads configuration from path without applying environment
// overrides (used by tests that want the file's own values).
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("runnerconfig: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides fields with LLMVM_* environment variables, per
// spec.md §6.6 ("configuration is read from environment variables naming
// the text and embedding models and enabling debug output").
func (c *Config) applyEnv() {
	if v := os.Getenv("LLMVM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLMVM_TEXT_MODEL"); v != "" {
		c.LLM.TextModel = v
	}
	if v := os.Getenv("LLMVM_EMBEDDING_MODEL"); v != "" {
		c.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLMVM_DEBUG"); v != "" {
		c.Run.Debug = v != "0" && v != "false"
	}
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes the config to path as TOML, grounded in the teacher's
// config.SaveTo (config/config.go).
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("runnerconfig: creating %s: %w", dir, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("runnerconfig: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("runnerconfig: encoding %s: %w", path, err)
	}
	return nil
}
