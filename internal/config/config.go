package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for one internwatch run.
type Config struct {
	RequestTimeout time.Duration
	Sources        []SourceConfig
	State          StateConfig
	Notification   NotificationConfig
}

// SourceConfig describes a single listing source to poll.
type SourceConfig struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"` // "html" or "table"
	URL         string   `yaml:"url"`
	FallbackURL string   `yaml:"fallback_url"` // table source: tried when the primary fails
	Origin      string   `yaml:"origin"`       // html source: base for relative hrefs
	LinkPattern string   `yaml:"link_pattern"` // html source: overrides the derived posting URL shape
	FreshAges   []string `yaml:"fresh_ages"`   // age buckets eligible as "new"; empty = no predicate
	Enabled     bool     `yaml:"enabled"`
}

// StateConfig selects the seen-state backend.
type StateConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type        string `yaml:"type"`          // "telegram" or "log"
	BotTokenEnv string `yaml:"bot_token_env"` // env var holding the bot credential
	ChatIDEnv   string `yaml:"chat_id_env"`   // env var holding the destination id
	DisplayCap  int    `yaml:"display_cap"`   // max postings rendered per source
}

// rawConfig is used for YAML unmarshaling (duration as string).
type rawConfig struct {
	RequestTimeout string             `yaml:"request_timeout"`
	Sources        []SourceConfig     `yaml:"sources"`
	State          StateConfig        `yaml:"state"`
	Notification   NotificationConfig `yaml:"notification"`
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout := 25 * time.Second // default: bound each network fetch
	if raw.RequestTimeout != "" {
		timeout, err = time.ParseDuration(raw.RequestTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse request_timeout %q: %w", raw.RequestTimeout, err)
		}
	}

	cfg := &Config{
		RequestTimeout: timeout,
		Sources:        raw.Sources,
		State:          raw.State,
		Notification:   raw.Notification,
	}

	if cfg.State.Backend == "" {
		cfg.State.Backend = "file"
	}
	if cfg.State.Path == "" {
		cfg.State.Path = "seen.json"
	}
	if cfg.Notification.Type == "" {
		cfg.Notification.Type = "telegram"
	}
	if cfg.Notification.BotTokenEnv == "" {
		cfg.Notification.BotTokenEnv = "TELEGRAM_BOT_TOKEN"
	}
	if cfg.Notification.ChatIDEnv == "" {
		cfg.Notification.ChatIDEnv = "TELEGRAM_CHAT_ID"
	}
	if cfg.Notification.DisplayCap == 0 {
		cfg.Notification.DisplayCap = 6
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.RequestTimeout)
	}

	enabled := 0
	names := make(map[string]bool)
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("sources[%d]: duplicate name %q", i, s.Name)
		}
		names[s.Name] = true

		if s.Type != "html" && s.Type != "table" {
			return fmt.Errorf("source %q: type must be \"html\" or \"table\", got %q", s.Name, s.Type)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		if s.Type == "html" {
			if s.Origin == "" {
				return fmt.Errorf("source %q: origin is required for html sources", s.Name)
			}
			u, err := url.Parse(s.Origin)
			if err != nil || u.Host == "" {
				return fmt.Errorf("source %q: origin %q is not a valid URL", s.Name, s.Origin)
			}
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	switch cfg.State.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("state.backend must be \"file\" or \"sqlite\", got %q", cfg.State.Backend)
	}

	switch cfg.Notification.Type {
	case "telegram", "log":
	default:
		return fmt.Errorf("notification.type must be \"telegram\" or \"log\", got %q", cfg.Notification.Type)
	}
	if cfg.Notification.DisplayCap < 1 {
		return fmt.Errorf("notification.display_cap must be positive, got %d", cfg.Notification.DisplayCap)
	}

	return nil
}
