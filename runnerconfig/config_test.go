package runnerconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.LLM.TextModel != DefaultConfig().LLM.TextModel {
		t.Fatalf("got %q, want the default", cfg.LLM.TextModel)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.LLM.TextModel = "custom-model"
	cfg.Run.MaxInstructions = 42

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.LLM.TextModel != "custom-model" {
		t.Fatalf("got %q, want custom-model", loaded.LLM.TextModel)
	}
	if loaded.Run.MaxInstructions != 42 {
		t.Fatalf("got %d, want 42", loaded.Run.MaxInstructions)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.LLM.TextModel = "from-file"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	t.Setenv("LLMVM_TEXT_MODEL", "from-env")
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	loaded.applyEnv()
	if loaded.LLM.TextModel != "from-env" {
		t.Fatalf("got %q, want from-env", loaded.LLM.TextModel)
	}

	os.Unsetenv("LLMVM_TEXT_MODEL")
}
