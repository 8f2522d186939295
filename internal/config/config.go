package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/hochfrequenz/nudge/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Session  domain.SessionConfig `toml:"session"`
	History  HistoryConfig        `toml:"history"`
	Sessions SessionsConfig       `toml:"sessions"`
	Web      WebConfig            `toml:"web"`
	LLM      LLMConfig            `toml:"llm"`
	Schedule []ScheduleEntry      `toml:"schedule"`
}

// HistoryConfig holds history persistence settings
type HistoryConfig struct {
	Path       string `toml:"path"`
	MaxRecords int    `toml:"max_records"`
}

// SessionsConfig holds the session log settings
type SessionsConfig struct {
	DatabasePath string `toml:"database_path"`
}

// WebConfig holds web UI settings
type WebConfig struct {
	Port      int    `toml:"port"`
	Host      string `toml:"host"`
	StaticDir string `toml:"static_dir"`
}

// LLMConfig holds settings for the optional encouragement endpoint
type LLMConfig struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
	KeyFile string `toml:"key_file"`
}

// ScheduleEntry describes a cron-triggered automatic session start
type ScheduleEntry struct {
	Name    string `toml:"name"`
	Cron    string `toml:"cron"`
	Enabled bool   `toml:"enabled"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".nudge")
	return &Config{
		Session: domain.SessionConfig{
			URL:          "https://www.notion.so/",
			TotalSec:     3600,
			FirstSec:     300,
			SecondSec:    600,
			SubseqSec:    900,
			SoundEnabled: true,
			SoundFile:    "default_reminder.mp3",
		},
		History: HistoryConfig{
			Path:       filepath.Join(dataDir, "history.json"),
			MaxRecords: 500,
		},
		Sessions: SessionsConfig{
			DatabasePath: filepath.Join(dataDir, "sessions.db"),
		},
		Web: WebConfig{
			Port:      8765,
			Host:      "127.0.0.1",
			StaticDir: "web/ui",
		},
		LLM: LLMConfig{
			BaseURL: "https://openrouter.ai/api/v1",
			Model:   "openai/gpt-5-mini",
			KeyFile: filepath.Join(dataDir, "openrouter.key"),
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	// Expand paths
	cfg.History.Path = ExpandPath(cfg.History.Path)
	cfg.Sessions.DatabasePath = ExpandPath(cfg.Sessions.DatabasePath)
	cfg.LLM.KeyFile = ExpandPath(cfg.LLM.KeyFile)
	cfg.Web.StaticDir = ExpandPath(cfg.Web.StaticDir)

	return cfg, nil
}

// Save writes the configuration to a TOML file, creating the directory if needed
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// MergeSession overlays a partial session config onto defaults. Zero-valued
// fields in the overlay keep the default; booleans come from the overlay
// as-is since "sound off" is a deliberate choice.
func MergeSession(overlay, defaults domain.SessionConfig) domain.SessionConfig {
	merged := overlay
	if merged.URL == "" {
		merged.URL = defaults.URL
	}
	if merged.TotalSec == 0 {
		merged.TotalSec = defaults.TotalSec
	}
	if merged.FirstSec == 0 {
		merged.FirstSec = defaults.FirstSec
	}
	if merged.SecondSec == 0 {
		merged.SecondSec = defaults.SecondSec
	}
	if merged.SubseqSec == 0 {
		merged.SubseqSec = defaults.SubseqSec
	}
	if merged.BrowserPath == "" {
		merged.BrowserPath = defaults.BrowserPath
	}
	if merged.SoundFile == "" {
		merged.SoundFile = defaults.SoundFile
	}
	return merged
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "nudge", "config.toml")
}
