package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:devpulse.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		UpdateInterval  time.Duration `yaml:"update_interval" json:"update_interval" jsonschema:"default=1h,description=Aggregation cycle interval"`
		ProviderTimeout time.Duration `yaml:"provider_timeout" json:"provider_timeout" jsonschema:"default=30s,description=Per-provider fetch timeout"`
		KeepSnapshots   int           `yaml:"keep_snapshots" json:"keep_snapshots" jsonschema:"default=50,description=Number of historical snapshots to retain"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	// Username is the default account name for providers that don't set their own
	Username string `yaml:"username" json:"username" jsonschema:"description=Default account name for all providers"`

	Providers ProvidersConfig `yaml:"providers" json:"providers" jsonschema:"description=External data provider settings"`

	// UpdateSecret authorizes POST /api/v1/update, normally set via environment
	UpdateSecret string `yaml:"update_secret" json:"update_secret" jsonschema:"description=Bearer secret for the on-demand update endpoint"`
}

// ProvidersConfig holds per-provider settings. Credentials are normally
// injected via ${ENV_VAR} expansion in the YAML file.
type ProvidersConfig struct {
	Analytics AnalyticsConfig `yaml:"analytics" json:"analytics"`
	Github    GithubConfig    `yaml:"github" json:"github"`
	Npm       NpmConfig       `yaml:"npm" json:"npm"`
	Lapras    LaprasConfig    `yaml:"lapras" json:"lapras"`
	Zenn      ZennConfig      `yaml:"zenn" json:"zenn"`
	Qiita     QiitaConfig     `yaml:"qiita" json:"qiita"`
	Blog      BlogConfig      `yaml:"blog" json:"blog"`
}

// AnalyticsConfig holds analytics reporting API settings
type AnalyticsConfig struct {
	PropertyID string `yaml:"property_id" json:"property_id" jsonschema:"description=Analytics property identifier"`
	Token      string `yaml:"token" json:"token" jsonschema:"description=Analytics API token"`
	BaseURL    string `yaml:"base_url" json:"base_url" jsonschema:"description=API base URL override"`
	PageLimit  int    `yaml:"page_limit" json:"page_limit" jsonschema:"default=50,description=Max page-stat rows"`
}

// GithubConfig holds source-hosting API settings
type GithubConfig struct {
	User     string `yaml:"user" json:"user" jsonschema:"description=Account name, falls back to username"`
	Token    string `yaml:"token" json:"token" jsonschema:"description=API token"`
	APIURL   string `yaml:"api_url" json:"api_url" jsonschema:"description=GraphQL endpoint override"`
	PageSize int    `yaml:"page_size" json:"page_size" jsonschema:"default=100,description=Repositories per page"`
}

// NpmConfig holds package-registry settings
type NpmConfig struct {
	Packages     string `yaml:"packages" json:"packages" jsonschema:"description=Comma-separated package names"`
	RegistryURL  string `yaml:"registry_url" json:"registry_url" jsonschema:"description=Registry base URL override"`
	DownloadsURL string `yaml:"downloads_url" json:"downloads_url" jsonschema:"description=Downloads API base URL override"`
	SizeURL      string `yaml:"size_url" json:"size_url" jsonschema:"description=Package size API base URL override"`
}

// PackageNames returns the configured package names, trimmed, empty entries dropped
func (c NpmConfig) PackageNames() []string {
	parts := strings.Split(c.Packages, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// LaprasConfig holds portfolio API settings
type LaprasConfig struct {
	User    string `yaml:"user" json:"user" jsonschema:"description=Account name, falls back to username"`
	BaseURL string `yaml:"base_url" json:"base_url" jsonschema:"description=Site base URL override"`
}

// ZennConfig holds Zenn API settings
type ZennConfig struct {
	User    string `yaml:"user" json:"user" jsonschema:"description=Account name, falls back to username"`
	BaseURL string `yaml:"base_url" json:"base_url" jsonschema:"description=Site base URL override"`
}

// QiitaConfig holds Qiita API settings
type QiitaConfig struct {
	User    string `yaml:"user" json:"user" jsonschema:"description=Account name, falls back to username"`
	Token   string `yaml:"token" json:"token" jsonschema:"description=API token"`
	BaseURL string `yaml:"base_url" json:"base_url" jsonschema:"description=API base URL override"`
	PerPage int    `yaml:"per_page" json:"per_page" jsonschema:"default=100,description=Articles per page"`
}

// BlogConfig holds the optional personal blog feed settings
type BlogConfig struct {
	FeedURL string `yaml:"feed_url" json:"feed_url" jsonschema:"description=RSS/Atom feed URL, empty disables the provider"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema, supplementary only
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		log.Printf("[WARN] config schema validation failed: %v", err)
	}

	return &cfg, nil
}

// setDefaults fills zero values with defaults
func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Database.DSN == "" {
		c.Database.DSN = "file:devpulse.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	if c.Schedule.UpdateInterval == 0 {
		c.Schedule.UpdateInterval = time.Hour
	}
	if c.Schedule.ProviderTimeout == 0 {
		c.Schedule.ProviderTimeout = 30 * time.Second
	}
	if c.Schedule.KeepSnapshots == 0 {
		c.Schedule.KeepSnapshots = 50
	}

	if c.Providers.Analytics.PageLimit == 0 {
		c.Providers.Analytics.PageLimit = 50
	}
	if c.Providers.Github.PageSize == 0 {
		c.Providers.Github.PageSize = 100
	}
	if c.Providers.Qiita.PerPage == 0 {
		c.Providers.Qiita.PerPage = 100
	}

	// username is the fallback account for all account-based providers
	if c.Providers.Github.User == "" {
		c.Providers.Github.User = c.Username
	}
	if c.Providers.Lapras.User == "" {
		c.Providers.Lapras.User = c.Username
	}
	if c.Providers.Zenn.User == "" {
		c.Providers.Zenn.User = c.Username
	}
	if c.Providers.Qiita.User == "" {
		c.Providers.Qiita.User = c.Username
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Schedule.UpdateInterval < time.Minute {
		return fmt.Errorf("schedule.update_interval must be at least 1 minute")
	}
	if cfg.Schedule.ProviderTimeout < time.Second {
		return fmt.Errorf("schedule.provider_timeout must be at least 1 second")
	}
	if cfg.Providers.Github.PageSize < 1 || cfg.Providers.Github.PageSize > 100 {
		return fmt.Errorf("providers.github.page_size must be between 1 and 100")
	}
	if cfg.Providers.Qiita.PerPage < 1 || cfg.Providers.Qiita.PerPage > 100 {
		return fmt.Errorf("providers.qiita.per_page must be between 1 and 100")
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetUpdateSecret returns the on-demand update secret
func (c *Config) GetUpdateSecret() string {
	return c.UpdateSecret
}
