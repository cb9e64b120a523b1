package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DocumentEntry registers one API document for ingestion at startup.
type DocumentEntry struct {
	ID      string            `yaml:"id"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Enabled *bool             `yaml:"enabled,omitempty"` // nil means enabled
}

// IsEnabled reports whether the entry should be ingested.
func (d DocumentEntry) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

// DiscoveryConfig overrides resource discovery policy.
type DiscoveryConfig struct {
	RequireMutating *bool    `yaml:"require_mutating,omitempty"`
	MaxSchemaDepth  int      `yaml:"max_schema_depth,omitempty"`
	EnvelopeKeys    []string `yaml:"envelope_keys,omitempty"`
}

// TransformConfig overrides the transformer's candidate-key heuristics.
type TransformConfig struct {
	ListKeys       []string `yaml:"list_keys,omitempty"`
	SingleKeys     []string `yaml:"single_keys,omitempty"`
	PaginationKeys []string `yaml:"pagination_keys,omitempty"`
}

// FileConfig defines the structure loaded from the YAML configuration file.
type FileConfig struct {
	Documents []DocumentEntry `yaml:"documents"`
	Discovery DiscoveryConfig `yaml:"discovery,omitempty"`
	Transform TransformConfig `yaml:"transform,omitempty"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Environment variables use the prefix
// "OPENAPI_ADMIN_" and override file settings.
type Config struct {
	// Config File Path (loaded first from env)
	ConfigFilePath string `envconfig:"CONFIG_FILE" default:"configs/openapi-admin.yaml"`

	// File-loaded fields
	Documents []DocumentEntry
	Discovery DiscoveryConfig
	Transform TransformConfig

	// Environment-overridable fields
	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	ServerReadTimeout        time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
	ServerWriteTimeout       time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	ServerIdleTimeout        time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"120s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// ParsedLogLevel returns the slog.Level for the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration first from environment variables (to get the file
// path), then from the YAML file, and finally merges/overrides with
// environment variables again.
func Load() (*Config, error) {
	var initialCfg Config
	if err := envconfig.Process("openapi_admin", &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %q: %w", initialCfg.ConfigFilePath, err)
			}
			// Missing default file is fine: the ingest endpoint can register
			// documents at runtime.
			slog.Info("No config file found, starting with no registered documents.",
				"path", initialCfg.ConfigFilePath)
		} else {
			if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config file %q: %w", initialCfg.ConfigFilePath, err)
			}
			slog.Info("Loaded configuration from file.", "path", initialCfg.ConfigFilePath)
		}
	}

	finalCfg := initialCfg
	finalCfg.Discovery = fileCfg.Discovery
	finalCfg.Transform = fileCfg.Transform

	finalCfg.Documents = make([]DocumentEntry, 0, len(fileCfg.Documents))
	for _, doc := range fileCfg.Documents {
		if doc.ID == "" || doc.URL == "" {
			slog.Warn("Ignoring document entry without id or url", "id", doc.ID, "url", doc.URL)
			continue
		}
		finalCfg.Documents = append(finalCfg.Documents, doc)
	}

	// Process environment variables again so they override file settings.
	if err := envconfig.Process("openapi_admin", &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	return &finalCfg, nil
}
