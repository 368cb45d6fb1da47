package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"projektchat/internal/domain"
)

// Config holds all configuration for Projektchat
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Upload   UploadConfig   `mapstructure:"upload"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// UploadConfig holds document upload configuration
type UploadConfig struct {
	MaxFileSizeMB int `mapstructure:"max_file_size_mb"`
}

// OCRConfig points at an external OCR service (tesseract-compatible HTTP
// endpoint). Leave Endpoint empty to disable OCR; image uploads and scanned
// PDFs then degrade to a descriptive placeholder.
type OCRConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Languages string `mapstructure:"languages"`
	Timeout   int    `mapstructure:"timeout"`
}

// LLMConfig holds the provider registry
type LLMConfig struct {
	DefaultProvider string                    `mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `mapstructure:"providers"`
}

// ProviderConfig is one entry in the provider registry. A provider must be
// enabled before it can be instantiated or used.
type ProviderConfig struct {
	Enabled  bool             `mapstructure:"enabled"`
	Settings ProviderSettings `mapstructure:"settings"`
}

// ProviderSettings holds connection settings for one provider
type ProviderSettings struct {
	BaseURL        string            `mapstructure:"base_url"`
	APIKey         string            `mapstructure:"api_key"`
	ModelName      string            `mapstructure:"model_name"`
	DeploymentName string            `mapstructure:"deployment_name"`
	APIVersion     string            `mapstructure:"api_version"`
	Timeout        int               `mapstructure:"timeout"`
	MaxRetries     int               `mapstructure:"max_retries"`
	Headers        map[string]string `mapstructure:"headers"`
	Parameters     domain.Parameters `mapstructure:"parameters"`
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("PROJEKTCHAT")
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.path", "./data/projektchat.db")

	v.SetDefault("upload.max_file_size_mb", 50)

	v.SetDefault("ocr.endpoint", "")
	v.SetDefault("ocr.languages", "deu+eng")
	v.SetDefault("ocr.timeout", 60)

	v.SetDefault("llm.default_provider", "lm_studio")
	v.SetDefault("llm.providers.lm_studio.enabled", true)
	v.SetDefault("llm.providers.lm_studio.settings.base_url", "http://localhost:1234")
	v.SetDefault("llm.providers.lm_studio.settings.model_name", "llama-3.1-8b-instruct")
	v.SetDefault("llm.providers.lm_studio.settings.timeout", 30)
	v.SetDefault("llm.providers.lm_studio.settings.max_retries", 3)
	v.SetDefault("llm.providers.openrouter.enabled", false)
	v.SetDefault("llm.providers.openrouter.settings.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.providers.openrouter.settings.model_name", "anthropic/claude-3.5-sonnet")
	v.SetDefault("llm.providers.openrouter.settings.timeout", 60)
	v.SetDefault("llm.providers.openrouter.settings.max_retries", 3)
	v.SetDefault("llm.providers.azure_openai.enabled", false)
	v.SetDefault("llm.providers.azure_openai.settings.api_version", "2024-02-01")
	v.SetDefault("llm.providers.azure_openai.settings.timeout", 60)
	v.SetDefault("llm.providers.azure_openai.settings.max_retries", 3)
}

// Validate checks the provider registry: the selected default provider must
// exist among the enabled providers.
func (c *Config) Validate() error {
	if c.LLM.DefaultProvider == "" {
		return nil
	}
	p, ok := c.LLM.Providers[c.LLM.DefaultProvider]
	if !ok {
		return fmt.Errorf("default provider %q not found in providers", c.LLM.DefaultProvider)
	}
	if !p.Enabled {
		return fmt.Errorf("default provider %q is not enabled", c.LLM.DefaultProvider)
	}
	return nil
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaxFileSize returns the upload limit in bytes
func (c *Config) MaxFileSize() int64 {
	return int64(c.Upload.MaxFileSizeMB) * 1024 * 1024
}

// RequestTimeout returns the per-request timeout for a provider's settings,
// falling back to 30 seconds.
func (s ProviderSettings) RequestTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}
