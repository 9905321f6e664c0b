package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/query"
)

// Config is the root configuration for uxradar.
type Config struct {
	Sources      []SourceConfig
	Discovery    bool
	Search       SearchConfig
	AI           AIConfig
	Pipeline     PipelineConfig
	Server       ServerConfig
	Notification NotificationConfig
	Watch        WatchConfig
}

// SourceConfig describes one curated job board.
type SourceConfig struct {
	Name      string `yaml:"name"`
	SiteQuery string `yaml:"site_query"`
	Enabled   bool   `yaml:"enabled"`
}

// SearchConfig controls the search provider client.
type SearchConfig struct {
	BaseURL      string
	APIKey       string // expanded from env var by Load
	Limit        int
	Timeout      time.Duration // per-request HTTP timeout
	RetryBackoff time.Duration // wait before the single rate-limit retry
}

// AIConfig controls the optional AI-assisted dedup and classification.
type AIConfig struct {
	Enabled  bool
	Provider string // "openai" or "anthropic"
	BaseURL  string // empty means the provider default
	Model    string
	APIKey   string // expanded from env var by Load
	Timeout  time.Duration
}

// PipelineConfig tunes normalization.
type PipelineConfig struct {
	RecencyDays int
}

// ServerConfig controls `uxradar serve`.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Debug bool   `yaml:"debug"` // include the pipeline log in responses
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// WatchConfig controls `uxradar watch`.
type WatchConfig struct {
	Interval time.Duration
}

const (
	defaultSearchBaseURL = "https://api.firecrawl.dev/v2"
	defaultServerAddr    = ":8080"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Sources      []SourceConfig     `yaml:"sources"`
	Discovery    rawDiscoveryConfig `yaml:"discovery"`
	Search       rawSearchConfig    `yaml:"search"`
	AI           rawAIConfig        `yaml:"ai"`
	Pipeline     rawPipelineConfig  `yaml:"pipeline"`
	Server       ServerConfig       `yaml:"server"`
	Notification NotificationConfig `yaml:"notification"`
	Watch        rawWatchConfig     `yaml:"watch"`
}

type rawDiscoveryConfig struct {
	Enabled *bool `yaml:"enabled"`
}

type rawSearchConfig struct {
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	Limit        int    `yaml:"limit"`
	Timeout      string `yaml:"timeout"`
	RetryBackoff string `yaml:"retry_backoff"`
}

type rawAIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
}

type rawPipelineConfig struct {
	RecencyDays int `yaml:"recency_days"`
}

type rawWatchConfig struct {
	Interval string `yaml:"interval"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
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

	searchTimeout, err := parseDuration("search.timeout", raw.Search.Timeout, 60*time.Second)
	if err != nil {
		return nil, err
	}
	retryBackoff, err := parseDuration("search.retry_backoff", raw.Search.RetryBackoff, 2*time.Second)
	if err != nil {
		return nil, err
	}
	aiTimeout, err := parseDuration("ai.timeout", raw.AI.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	watchInterval, err := parseDuration("watch.interval", raw.Watch.Interval, 6*time.Hour)
	if err != nil {
		return nil, err
	}

	sources := raw.Sources
	if len(sources) == 0 {
		for _, s := range query.DefaultSources() {
			sources = append(sources, SourceConfig{Name: s.Name, SiteQuery: s.SiteQuery, Enabled: true})
		}
	}

	discovery := true
	if raw.Discovery.Enabled != nil {
		discovery = *raw.Discovery.Enabled
	}

	searchBaseURL := raw.Search.BaseURL
	if searchBaseURL == "" {
		searchBaseURL = defaultSearchBaseURL
	}
	limit := raw.Search.Limit
	if limit == 0 {
		limit = 10
	}

	recency := raw.Pipeline.RecencyDays
	if recency == 0 {
		recency = 14
	}

	provider := strings.ToLower(raw.AI.Provider)
	if provider == "" {
		provider = "openai"
	}

	server := raw.Server
	if server.Addr == "" {
		server.Addr = defaultServerAddr
	}

	notification := raw.Notification
	if notification.Type == "" {
		notification.Type = "log"
	}

	cfg := &Config{
		Sources:   sources,
		Discovery: discovery,
		Search: SearchConfig{
			BaseURL:      searchBaseURL,
			APIKey:       raw.Search.APIKey,
			Limit:        limit,
			Timeout:      searchTimeout,
			RetryBackoff: retryBackoff,
		},
		AI: AIConfig{
			Enabled:  raw.AI.Enabled,
			Provider: provider,
			BaseURL:  raw.AI.BaseURL,
			Model:    raw.AI.Model,
			APIKey:   raw.AI.APIKey,
			Timeout:  aiTimeout,
		},
		Pipeline:     PipelineConfig{RecencyDays: recency},
		Server:       server,
		Notification: notification,
		Watch:        WatchConfig{Interval: watchInterval},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

// EnabledSources returns the enabled curated sources in config order.
func (c *Config) EnabledSources() []model.SourceConfig {
	var out []model.SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s.Model())
		}
	}
	return out
}

// Model converts a configured source into the pipeline's curated-tier form.
func (s SourceConfig) Model() model.SourceConfig {
	return model.SourceConfig{Name: s.Name, SiteQuery: s.SiteQuery, Tier: model.TierCurated}
}

func validate(cfg *Config) error {
	enabled := 0
	names := make(map[string]bool)
	for _, s := range cfg.Sources {
		if s.Name == "" || s.SiteQuery == "" {
			return fmt.Errorf("every source needs a name and a site_query")
		}
		if strings.EqualFold(s.Name, model.DiscoverySourceName) {
			return fmt.Errorf("source name %q is reserved", s.Name)
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		names[s.Name] = true
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.Search.APIKey == "" {
		return fmt.Errorf("search.api_key is required")
	}
	if cfg.Search.Limit < 1 || cfg.Search.Limit > 100 {
		return fmt.Errorf("search.limit must be between 1 and 100, got %d", cfg.Search.Limit)
	}
	if cfg.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive, got %v", cfg.Search.Timeout)
	}
	if cfg.Search.RetryBackoff < 0 {
		return fmt.Errorf("search.retry_backoff must not be negative, got %v", cfg.Search.RetryBackoff)
	}

	if cfg.Pipeline.RecencyDays < 1 || cfg.Pipeline.RecencyDays > 60 {
		return fmt.Errorf("pipeline.recency_days must be between 1 and 60, got %d", cfg.Pipeline.RecencyDays)
	}

	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %v", cfg.Watch.Interval)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if cfg.AI.Enabled {
		if cfg.AI.Provider != "openai" && cfg.AI.Provider != "anthropic" {
			return fmt.Errorf("ai.provider must be \"openai\" or \"anthropic\", got %q", cfg.AI.Provider)
		}
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Timeout <= 0 {
			return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
		}
	}

	return nil
}
