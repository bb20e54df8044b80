package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	envBotToken  = "BOT_TOKEN"
	envAllowFrom = "CHARTBOT_ALLOW_FROM"
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Charts   ChartsConfig   `json:"charts"`
	Gateway  GatewayConfig  `json:"gateway"`
	Logging  LoggingConfig  `json:"logging,omitempty"`
}

// TelegramConfig configures the Telegram bot connection and webhook route.
type TelegramConfig struct {
	Token       string   `json:"token"`
	WebhookPath string   `json:"webhook_path"`
	AllowFrom   []string `json:"allow_from"`
}

// ChartsConfig configures the Shazam chart API client.
type ChartsConfig struct {
	BaseURL               string `json:"base_url"`
	Language              string `json:"language"`
	Region                string `json:"region"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// GatewayConfig configures HTTP webhook bind settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// LoadConfig resolves config.json, unmarshals it, and applies environment
// overrides.
//
// A missing config file is not an error: the bot can run entirely on
// defaults plus BOT_TOKEN.
func LoadConfig() (*Config, error) {
	var cfg Config

	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides injects selected env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if token := strings.TrimSpace(os.Getenv(envBotToken)); token != "" {
		cfg.Telegram.Token = token
	}

	if rawAllowFrom := strings.TrimSpace(os.Getenv(envAllowFrom)); rawAllowFrom != "" {
		cfg.Telegram.AllowFrom = parseCSV(rawAllowFrom)
	}
}

// parseCSV splits comma-separated values and returns a trimmed compact slice.
func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		clean = append(clean, trimmed)
	}

	return slices.Clip(clean)
}

// findConfigPath resolves the active config file location.
//
// Precedence is CHARTBOT_CONFIG first, then cwd-local fallback paths. An
// empty return with nil error means no config file exists.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("CHARTBOT_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("CHARTBOT_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
