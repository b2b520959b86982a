// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	HTTPPort    int    `mapstructure:"http_port"`
	TemplateDir string `mapstructure:"template_dir"`
	StaticDir   string `mapstructure:"static_dir"`
	LogFile     string `mapstructure:"log_file"`

	Model   ModelConfig   `mapstructure:"model"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Storage StorageConfig `mapstructure:"storage"`
}

// ModelConfig holds the completion API settings.
type ModelConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Name           string        `mapstructure:"name"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
}

// LimitsConfig bounds how much work a single submission can cause.
type LimitsConfig struct {
	MaxFileSize   int64 `mapstructure:"max_file_size"`
	MaxBatchFiles int   `mapstructure:"max_batch_files"`
	CacheEntries  int   `mapstructure:"cache_entries"`
	AnalysisChars int   `mapstructure:"analysis_chars"`
	RetentionDays int   `mapstructure:"retention_days"`
}

// StorageConfig holds filesystem paths the server owns.
type StorageConfig struct {
	HistoryFile string `mapstructure:"history_file"`
	UploadDir   string `mapstructure:"upload_dir"`
	WatchDir    string `mapstructure:"watch_dir"`
	LogoPath    string `mapstructure:"logo_path"`
}

// Load loads configuration from an optional YAML file and the environment.
// Every key has a working default so the server starts with nothing but
// CLINSIGHT_MODEL_API_KEY set.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("http_port", 8080)
	v.SetDefault("template_dir", "./frontend/template")
	v.SetDefault("static_dir", "./frontend/static")
	v.SetDefault("log_file", "./clinsight.log")

	v.SetDefault("model.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("model.name", "deepseek-chat")
	v.SetDefault("model.max_tokens", 4000)
	v.SetDefault("model.request_timeout", 90*time.Second)
	v.SetDefault("model.max_attempts", 3)

	v.SetDefault("limits.max_file_size", int64(200*1024*1024)) // 200MB
	v.SetDefault("limits.max_batch_files", 5)
	v.SetDefault("limits.cache_entries", 100)
	v.SetDefault("limits.analysis_chars", 30000)
	v.SetDefault("limits.retention_days", 7)

	v.SetDefault("storage.history_file", "./history.json")
	v.SetDefault("storage.upload_dir", "./uploaded_pdfs")
	v.SetDefault("storage.watch_dir", "")
	v.SetDefault("storage.logo_path", "./bofu_logo.png")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Allow environment variable overrides (CLINSIGHT_MODEL_API_KEY etc.)
	// Nested keys map dots to underscores: model.max_tokens is
	// CLINSIGHT_MODEL_MAX_TOKENS.
	v.SetEnvPrefix("CLINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// DEEPSEEK_API_KEY is what the hosted deployments already set; honor it
	// when the prefixed variable is absent.
	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = os.Getenv("DEEPSEEK_API_KEY")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Limits.MaxFileSize <= 0 {
		return fmt.Errorf("limits.max_file_size must be positive, got %d", c.Limits.MaxFileSize)
	}
	if c.Limits.MaxBatchFiles <= 0 {
		return fmt.Errorf("limits.max_batch_files must be positive, got %d", c.Limits.MaxBatchFiles)
	}
	if c.Limits.CacheEntries <= 0 {
		return fmt.Errorf("limits.cache_entries must be positive, got %d", c.Limits.CacheEntries)
	}
	if c.Model.MaxAttempts <= 0 {
		return fmt.Errorf("model.max_attempts must be positive, got %d", c.Model.MaxAttempts)
	}
	return nil
}
