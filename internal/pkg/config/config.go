package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "cdsctl.yaml"

type Config struct {
	API     APIConfig     `koanf:"api"`
	Log     LogConfig     `koanf:"log"`
	Tracing TracingConfig `koanf:"tracing"`
	Mock    MockConfig    `koanf:"mock"`
}

type APIConfig struct {
	URL       string `koanf:"url"`
	Timeout   string `koanf:"timeout"` // Duration string like "30s"; empty means no client timeout
	UserAgent string `koanf:"user_agent"`
	Project   string `koanf:"project"` // Default project key for CLI commands
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// MockConfig configures cds-mock-api.
type MockConfig struct {
	Port     int      `koanf:"port"`
	Projects []string `koanf:"projects"`
}

// TimeoutDuration parses API.Timeout.
func (c APIConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("api.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("api.timeout: negative duration %s", d)
	}
	return d, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (DefaultPath when empty), then overlays CDS_ environment
// variables: CDS_API__URL sets api.url.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("CDS_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "CDS_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	defaults := map[string]any{
		"api.url":              "http://localhost:8081",
		"api.user_agent":       "cdsctl/1.0",
		"log.level":            "info",
		"log.format":           "json",
		"tracing.service_name": "cdsctl",
		"mock.port":            8081,
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.API.URL = substituteEnvVars(cfg.API.URL)
	cfg.API.Project = substituteEnvVars(cfg.API.Project)

	if _, err := cfg.API.TimeoutDuration(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
