package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr"`
	ProfilesDir string `json:"profiles_dir" yaml:"profiles_dir" toml:"profiles_dir"`
	Device      string `json:"device" yaml:"device" toml:"device"`
	ServiceName string `json:"service_name" yaml:"service_name" toml:"service_name"`
	LogLevel    string `json:"log_level" yaml:"log_level" toml:"log_level"`
	EventDB     string `json:"event_db" yaml:"event_db" toml:"event_db"`
	// AutoStart starts the Wi-Fi service as soon as it is bound.
	AutoStart *bool `json:"auto_start" yaml:"auto_start" toml:"auto_start"`
	// StartRetries is passed to the manager; negative disables retries.
	StartRetries int `json:"start_retries" yaml:"start_retries" toml:"start_retries"`
	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins  []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	MaxBodyBytes int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// AutoStartEnabled reports the effective auto start setting, true when unset.
func (c Config) AutoStartEnabled() bool {
	return c.AutoStart == nil || *c.AutoStart
}
