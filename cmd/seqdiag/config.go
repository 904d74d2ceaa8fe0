package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds all seqdiag configuration.
// Priority: flags > env vars > settings.json > defaults.
type Config struct {
	LogLevel   string `json:"log_level"`
	LogFile    string `json:"log_file"`
	LogJournal bool   `json:"log_journal"`
	LogPretty  bool   `json:"log_pretty"`
	Engine     string `json:"engine"`
	Format     string `json:"format"`
	HTTPAddr   string `json:"http_addr"`
}

func defaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogPretty: true,
		Engine:    "expr",
		Format:    "mermaid",
		HTTPAddr:  ":4180",
	}
}

func seqdiagDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".seqdiag"
	}
	return filepath.Join(home, ".seqdiag")
}

func settingsPath() string {
	return filepath.Join(seqdiagDir(), "settings.json")
}

func loadConfig() Config {
	return loadConfigFrom(settingsPath(), os.Getenv)
}

// loadConfigFrom layers settings at path and the SEQDIAG_* variables read
// through getenv over the defaults.
func loadConfigFrom(path string, getenv func(string) string) Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := getenv("SEQDIAG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("SEQDIAG_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := getenv("SEQDIAG_LOG_JOURNAL"); v != "" {
		cfg.LogJournal = v == "true" || v == "1"
	}
	if v := getenv("SEQDIAG_LOG_PRETTY"); v != "" {
		cfg.LogPretty = v == "true" || v == "1"
	}
	if v := getenv("SEQDIAG_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := getenv("SEQDIAG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := getenv("SEQDIAG_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}

	return cfg
}
