package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Address() != "0.0.0.0:9090" {
		t.Errorf("Address = %q", cfg.Address())
	}
	if cfg.Database.Path != "./data/projektchat.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.MaxFileSize() != 50*1024*1024 {
		t.Errorf("MaxFileSize = %d", cfg.MaxFileSize())
	}
	if cfg.OCR.Languages != "deu+eng" {
		t.Errorf("ocr languages = %q", cfg.OCR.Languages)
	}

	if cfg.LLM.DefaultProvider != "lm_studio" {
		t.Errorf("default provider = %q", cfg.LLM.DefaultProvider)
	}
	lm, ok := cfg.LLM.Providers["lm_studio"]
	if !ok || !lm.Enabled {
		t.Fatalf("lm_studio = %+v", lm)
	}
	if lm.Settings.BaseURL != "http://localhost:1234" {
		t.Errorf("lm_studio base_url = %q", lm.Settings.BaseURL)
	}
	if or, ok := cfg.LLM.Providers["openrouter"]; !ok || or.Enabled {
		t.Errorf("openrouter must default to disabled, got %+v", or)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
llm:
  default_provider: openrouter
  providers:
    openrouter:
      enabled: true
      settings:
        api_key: sk-test
        model_name: mistralai/mistral-large
        parameters:
          temperature: 0.2
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	or := cfg.LLM.Providers["openrouter"]
	if !or.Enabled || or.Settings.APIKey != "sk-test" {
		t.Errorf("openrouter = %+v", or)
	}
	if or.Settings.ModelName != "mistralai/mistral-large" {
		t.Errorf("model = %q", or.Settings.ModelName)
	}
	if or.Settings.Parameters.Temperature == nil || *or.Settings.Parameters.Temperature != 0.2 {
		t.Errorf("temperature = %v", or.Settings.Parameters.Temperature)
	}
}

func TestValidateDefaultProvider(t *testing.T) {
	if _, err := Load(writeConfig(t, "llm:\n  default_provider: fehlt\n")); err == nil {
		t.Error("unknown default provider must be rejected")
	}
	if _, err := Load(writeConfig(t, "llm:\n  default_provider: openrouter\n")); err == nil {
		t.Error("disabled default provider must be rejected")
	}
}

func TestRequestTimeout(t *testing.T) {
	if got := (ProviderSettings{}).RequestTimeout(); got != 30*time.Second {
		t.Errorf("zero timeout = %v", got)
	}
	if got := (ProviderSettings{Timeout: 120}).RequestTimeout(); got != 120*time.Second {
		t.Errorf("timeout = %v", got)
	}
}
