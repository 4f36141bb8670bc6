// Package config loads runtime configuration for the mobile-ID portal.
//
// Values are layered: compiled-in defaults, then an optional YAML file, then
// a fixed set of environment variables.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Environments recognised by the service.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the root configuration.
type Config struct {
	App       AppConfig       `koanf:"app" yaml:"app"`
	Telemetry TelemetryConfig `koanf:"telemetry" yaml:"telemetry"`
	Providers ProvidersConfig `koanf:"providers" yaml:"providers"`
	Database  DatabaseConfig  `koanf:"database" yaml:"database"`
	PubSub    PubSubConfig    `koanf:"pubsub" yaml:"pubsub"`
	Auth      AuthConfig      `koanf:"auth" yaml:"auth"`
	HTTP      HTTPConfig      `koanf:"http" yaml:"http"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Port     int    `koanf:"port" yaml:"port"`
	Env      string `koanf:"env" yaml:"env"`
	LogLevel string `koanf:"log_level" yaml:"log_level"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool   `koanf:"enabled" yaml:"enabled"`
	OTLPEndpoint string `koanf:"otlp_endpoint" yaml:"otlp_endpoint"`
}

// UpstreamConfig describes one upstream public API.
type UpstreamConfig struct {
	APIKey  string `koanf:"api_key" yaml:"api_key"`
	BaseURL string `koanf:"base_url" yaml:"base_url"`
}

// ProvidersConfig groups the upstream feeds and the shared client policy.
type ProvidersConfig struct {
	Opinet     UpstreamConfig `koanf:"opinet" yaml:"opinet"`
	Expressway UpstreamConfig `koanf:"expressway" yaml:"expressway"`
	Molit      UpstreamConfig `koanf:"molit" yaml:"molit"`
	DataGoKR   UpstreamConfig `koanf:"datagokr" yaml:"datagokr"`
	Seoul      UpstreamConfig `koanf:"seoul" yaml:"seoul"`

	// Timeout bounds every upstream call.
	Timeout time.Duration `koanf:"timeout" yaml:"timeout"`

	// MaxRetries is zero by default: a failed call goes straight to fallback.
	MaxRetries uint64 `koanf:"max_retries" yaml:"max_retries"`
}

// DatabaseConfig configures the optional Postgres suggestion store.
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled" yaml:"enabled"`
	Host            string        `koanf:"host" yaml:"host"`
	Port            int           `koanf:"port" yaml:"port"`
	User            string        `koanf:"user" yaml:"user"`
	Password        string        `koanf:"password" yaml:"password"`
	Name            string        `koanf:"name" yaml:"name"`
	SSLMode         string        `koanf:"ssl_mode" yaml:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// PubSubConfig configures the optional suggestion notifier and the worker
// that archives its messages.
type PubSubConfig struct {
	ProjectID    string `koanf:"project_id" yaml:"project_id"`
	Topic        string `koanf:"topic" yaml:"topic"`
	Subscription string `koanf:"subscription" yaml:"subscription"`
}

// Enabled reports whether both project and topic are set.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != "" && c.Topic != ""
}

// AuthConfig configures admin bearer tokens.
type AuthConfig struct {
	SigningKey string `koanf:"signing_key" yaml:"signing_key"`
	Issuer     string `koanf:"issuer" yaml:"issuer"`
	Audience   string `koanf:"audience" yaml:"audience"`
}

// HTTPConfig holds edge settings for the API server.
type HTTPConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" yaml:"allowed_origins"`
	RequireTLS     bool     `koanf:"require_tls" yaml:"require_tls"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Port:     8080,
			Env:      EnvDevelopment,
			LogLevel: "info",
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: "localhost:4317",
		},
		Providers: ProvidersConfig{
			Opinet:     UpstreamConfig{BaseURL: "https://www.opinet.co.kr/api"},
			Expressway: UpstreamConfig{BaseURL: "http://data.ex.co.kr/api/trafficapi"},
			Molit:      UpstreamConfig{BaseURL: "http://apis.data.go.kr/1613000/TrafficRoadEventService"},
			DataGoKR:   UpstreamConfig{BaseURL: "http://apis.data.go.kr"},
			Seoul:      UpstreamConfig{APIKey: "sample", BaseURL: "http://openapi.seoul.go.kr:8088"}, // public demo key
			Timeout:    10 * time.Second,
			MaxRetries: 0,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "mobileid",
			Password:        "localdev",
			Name:            "mobileid",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Auth: AuthConfig{
			Issuer:   "mobileid-portal",
			Audience: "mobileid-admin",
		},
		HTTP: HTTPConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// envKeys maps the supported environment variables onto config keys.
var envKeys = map[string]string{
	"APP_PORT":                    "app.port",
	"APP_ENV":                     "app.env",
	"LOG_LEVEL":                   "app.log_level",
	"OTEL_ENABLED":                "telemetry.enabled",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "telemetry.otlp_endpoint",
	"OPINET_API_KEY":              "providers.opinet.api_key",
	"EX_TRAFFIC_API_KEY":          "providers.expressway.api_key",
	"MOLIT_TRAFFIC_API_KEY":       "providers.molit.api_key",
	"DATA_GO_KR_API_KEY":          "providers.datagokr.api_key",
	"SEOUL_OPEN_API_KEY":          "providers.seoul.api_key",
	"UPSTREAM_TIMEOUT":            "providers.timeout",
	"UPSTREAM_MAX_RETRIES":        "providers.max_retries",
	"DB_ENABLED":                  "database.enabled",
	"DB_HOST":                     "database.host",
	"DB_PORT":                     "database.port",
	"DB_USER":                     "database.user",
	"DB_PASSWORD":                 "database.password",
	"DB_NAME":                     "database.name",
	"DB_SSL_MODE":                 "database.ssl_mode",
	"DB_MAX_OPEN_CONNS":           "database.max_open_conns",
	"DB_MAX_IDLE_CONNS":           "database.max_idle_conns",
	"DB_CONN_MAX_LIFETIME":        "database.conn_max_lifetime",
	"PUBSUB_PROJECT_ID":           "pubsub.project_id",
	"PUBSUB_SUGGESTIONS_TOPIC":    "pubsub.topic",
	"PUBSUB_SUBSCRIPTION":         "pubsub.subscription",
	"JWT_SIGNING_KEY":             "auth.signing_key",
	"CORS_ALLOWED_ORIGINS":        "http.allowed_origins",
	"REQUIRE_TLS":                 "http.require_tls",
}

// Load reads the YAML file at path (if it exists) and overlays the
// supported environment variables on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// envValue translates one environment variable. Unknown names are skipped.
func envValue(name, value string) (string, interface{}) {
	key, ok := envKeys[name]
	if !ok || value == "" {
		return "", nil
	}
	if key == "http.allowed_origins" {
		parts := strings.Split(value, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		return key, origins
	}
	return key, value
}

// Validate checks values the server cannot run without.
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app.port must be between 1 and 65535, got %d", c.App.Port)
	}
	if c.App.Env != EnvDevelopment && c.App.Env != EnvProduction && c.App.Env != "test" {
		return fmt.Errorf("invalid app.env %q: must be one of development, production, test", c.App.Env)
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("providers.timeout must be positive")
	}
	if c.PubSub.ProjectID != "" && c.PubSub.Topic == "" {
		return fmt.Errorf("pubsub.topic is required when pubsub.project_id is set")
	}
	return nil
}

// IsDevelopment reports whether upstream error details may be exposed.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == EnvDevelopment
}

// MissingKeys lists upstreams configured without an API key. Those feeds
// will always serve their fallback payload.
func (c *Config) MissingKeys() []string {
	var missing []string
	for name, u := range map[string]UpstreamConfig{
		"opinet":     c.Providers.Opinet,
		"expressway": c.Providers.Expressway,
		"molit":      c.Providers.Molit,
		"datagokr":   c.Providers.DataGoKR,
		"seoul":      c.Providers.Seoul,
	} {
		if u.APIKey == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
