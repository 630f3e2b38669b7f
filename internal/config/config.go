// Package config loads the server configuration from a YAML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SessionConfig selects and configures the session store backend.
type SessionConfig struct {
	// Backend is one of "memory", "redis", "file".
	Backend string `yaml:"backend"`

	// Path is the session directory for the file backend.
	Path string `yaml:"path"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds redis connection settings for the redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// Lock enables distributed session locking, for running more than
	// one server instance against the same redis.
	Lock bool `yaml:"lock"`
}

// Duration wraps time.Duration so YAML files can carry "30s"-style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AnalysisConfig configures the external analysis service client.
type AnalysisConfig struct {
	BaseURL string   `yaml:"base_url"`
	Model   string   `yaml:"model"`
	APIKey  string   `yaml:"api_key"`
	Timeout Duration `yaml:"timeout"`
}

// InputsConfig overrides the example compound and receptor.
type InputsConfig struct {
	Smiles   string `yaml:"smiles"`
	Receptor string `yaml:"receptor"`
}

// Config is the root of catalyst.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Session  SessionConfig  `yaml:"session"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Inputs   InputsConfig   `yaml:"inputs"`
	LogLevel string         `yaml:"log_level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Session: SessionConfig{
			Backend: "memory",
			Path:    ".catalyst/sessions",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		Analysis: AnalysisConfig{
			BaseURL: "http://localhost:9090",
			Model:   "chem-analysis-1",
			Timeout: Duration(120 * time.Second),
		},
		LogLevel: "info",
	}
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist. The analysis API key can always be supplied via
// the CATALYST_API_KEY environment variable, which takes precedence over
// the file so the key never has to live on disk.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if key := os.Getenv("CATALYST_API_KEY"); key != "" {
		cfg.Analysis.APIKey = key
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Session.Backend {
	case "memory", "redis", "file":
	default:
		return fmt.Errorf("unknown session backend %q (want memory, redis or file)", c.Session.Backend)
	}
	if c.Analysis.Timeout < 0 {
		return fmt.Errorf("analysis timeout must not be negative")
	}
	return nil
}
