// Package config loads the oneminnews configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/oneminnews/oneminnews/internal/feeds"
)

// AppName names the directories the application keeps its files in.
const AppName = "oneminnews"

// Config holds all application configuration.
type Config struct {
	API     APIConfig     `toml:"api"`
	Feed    FeedConfig    `toml:"feed"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	AI      AIConfig      `toml:"ai"`
	Offline OfflineConfig `toml:"offline"`
}

// APIConfig points at the news service.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// FeedConfig holds the article list settings.
type FeedConfig struct {
	PageSize        int    `toml:"page_size"`
	Sort            string `toml:"sort"`
	Source          string `toml:"source"`
	ScrollThreshold int    `toml:"scroll_threshold"`
}

// ServerConfig holds the local reader API settings.
type ServerConfig struct {
	Port            int  `toml:"port"`
	AutoOpenBrowser bool `toml:"auto_open_browser"`
}

// StorageConfig says where local data lives.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// AIConfig holds AI provider settings, used for summaries when there is no
// news service.
type AIConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

// OfflineConfig lists the feeds read when there is no news service.
type OfflineConfig struct {
	RefreshIntervalMinutes int                `toml:"refresh_interval_minutes"`
	Feeds                  []feeds.FeedConfig `toml:"feeds"`
}

// Sort orders understood by the news service.
var Sorts = []string{"time", "popular", "smart"}

const defaultConfigContent = `[api]
base_url = ""                     # News service root, e.g. "https://api.example.com". Empty reads the feeds below directly.
timeout_seconds = 30

[feed]
page_size = 10
sort = "time"                     # "time", "popular" or "smart"
source = ""                       # Only show this source; empty shows all
scroll_threshold = 3              # Load more when this close to the end of the list

[server]
port = 8080
auto_open_browser = true

[storage]
data_dir = ""                     # Defaults to the XDG data directory

[ai]
provider = "anthropic"            # "anthropic" or "openai"; only used without a news service
api_key = ""                      # Your API key (or set AI_API_KEY env var)
model = "claude-haiku-4-5"

[offline]
refresh_interval_minutes = 30

[[offline.feeds]]
name = "BBC News"
url = "https://feeds.bbci.co.uk/news/rss.xml"

[[offline.feeds]]
name = "The Guardian"
url = "https://www.theguardian.com/world/rss"

[[offline.feeds]]
name = "Al Jazeera"
url = "https://www.aljazeera.com/xml/rss/all.xml"

[[offline.feeds]]
name = "The New York Times"
url = "https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml"

[[offline.feeds]]
name = "Sky News"
url = "https://feeds.skynews.com/feeds/rss/world.xml"
`

// DefaultPath returns the config file location under the XDG config home.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// DefaultDataDir returns the data directory under the XDG data home.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// DefaultLogPath returns the log file location under the XDG state home.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		slog.Warn("ignoring unknown config keys", "keys", fmt.Sprint(undecoded))
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "port = 0" which would otherwise be silently
// replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("api", "timeout_seconds") && cfg.API.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid api.timeout_seconds %d: must be >= 1", cfg.API.TimeoutSeconds)
	}
	if md.IsDefined("feed", "page_size") {
		if cfg.Feed.PageSize < 1 || cfg.Feed.PageSize > 50 {
			return fmt.Errorf("invalid feed.page_size %d: must be between 1 and 50", cfg.Feed.PageSize)
		}
	}
	if md.IsDefined("feed", "scroll_threshold") && cfg.Feed.ScrollThreshold < 1 {
		return fmt.Errorf("invalid feed.scroll_threshold %d: must be >= 1", cfg.Feed.ScrollThreshold)
	}
	if md.IsDefined("offline", "refresh_interval_minutes") && cfg.Offline.RefreshIntervalMinutes < 1 {
		return fmt.Errorf("invalid offline.refresh_interval_minutes %d: must be >= 1", cfg.Offline.RefreshIntervalMinutes)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = 30
	}
	if cfg.Feed.PageSize == 0 {
		cfg.Feed.PageSize = 10
	}
	if cfg.Feed.Sort == "" {
		cfg.Feed.Sort = "time"
	}
	if cfg.Feed.ScrollThreshold == 0 {
		cfg.Feed.ScrollThreshold = 3
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = DefaultDataDir()
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "anthropic"
	}
	if cfg.Offline.RefreshIntervalMinutes == 0 {
		cfg.Offline.RefreshIntervalMinutes = 30
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. ANTHROPIC_API_KEY (when provider is "anthropic")
//  3. OPENAI_API_KEY (when provider is "openai")
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ONEMINNEWS_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}

	switch cfg.AI.Provider {
	case "anthropic":
		if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}

	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"anthropic\" or \"openai\"", cfg.AI.Provider)
	}

	if !validSort(cfg.Feed.Sort) {
		return fmt.Errorf("invalid feed.sort %q: must be one of %v", cfg.Feed.Sort, Sorts)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	for i, f := range cfg.Offline.Feeds {
		if f.URL == "" {
			return fmt.Errorf("invalid offline.feeds[%d]: url is required", i)
		}
	}

	if cfg.Offline() && len(cfg.Offline.Feeds) == 0 {
		slog.Warn("no news service and no offline feeds configured: the list will be empty")
	}
	if cfg.Offline() && cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: summaries need it when there is no news service")
	}

	return nil
}

func validSort(s string) bool {
	for _, v := range Sorts {
		if s == v {
			return true
		}
	}
	return false
}

// Offline reports whether the reader runs without a news service.
func (c *Config) Offline() bool {
	return c.API.BaseURL == ""
}

// DatabasePath returns the path of the local store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Storage.DataDir, AppName+".db")
}

// APITimeout returns the news service request timeout.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// RefreshInterval returns how long offline feeds are cached.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Offline.RefreshIntervalMinutes) * time.Minute
}
