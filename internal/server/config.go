package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/zinswerk/zinsrechner/internal/config"
	"github.com/zinswerk/zinsrechner/pkg/constants"
)

// Config defines runtime parameters for the HTTP server. YAML values can
// be overridden through ZINSRECHNER_* environment variables.
type Config struct {
	Address         string               `yaml:"address" envconfig:"ADDRESS"`
	StorePath       string               `yaml:"storePath" envconfig:"STORE_PATH"`
	AllowedOrigins  []string             `yaml:"allowedOrigins" envconfig:"ALLOWED_ORIGINS"`
	MaxRequestBytes int64                `yaml:"maxRequestBytes" envconfig:"MAX_REQUEST_BYTES"`
	Logging         config.LoggingConfig `yaml:"logging"`
}

// LoadConfig loads the server configuration from YAML and applies
// environment overrides. If the file does not exist, defaults are
// returned without error.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Address:         constants.DefaultServerAddress,
		StorePath:       constants.DefaultStorePath,
		MaxRequestBytes: constants.DefaultMaxRequestBytes,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read server config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse server config: %w", err)
		}
	}

	if err := envconfig.Process("zinsrechner", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment overrides: %w", err)
	}

	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}
	if c.StorePath == "" {
		c.StorePath = constants.DefaultStorePath
	}
	if c.MaxRequestBytes <= 0 {
		c.MaxRequestBytes = constants.DefaultMaxRequestBytes
	}
}
