package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Hass         HassConfig      `yaml:"hass"`
	Resolve      ResolveConfig   `yaml:"resolve"`
	Discovery    DiscoveryConfig `yaml:"discovery"`
	Logging      LoggingConfig   `yaml:"logging"`
	Sensors      []SensorConfig  `yaml:"sensors"`
	PollInterval time.Duration   `yaml:"poll_interval"`
}

// HassConfig describes how to reach the Home Assistant instance.
type HassConfig struct {
	URL         string `yaml:"url"`
	APIPassword string `yaml:"api_password"`
	// Timeout is the socket timeout, nil means the client default.
	Timeout   *time.Duration `yaml:"timeout"`
	Interface string         `yaml:"interface"`
}

// ResolveConfig contains name resolution overrides.
type ResolveConfig struct {
	Network     string            `yaml:"network"`
	DNSServer   string            `yaml:"dns_server"`
	StaticHosts map[string]string `yaml:"static_hosts"`
}

// DiscoveryConfig enables finding the instance on the local network when
// no url is configured.
type DiscoveryConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SensorConfig describes a reading taken from a file, e.g. a sysfs node.
type SensorConfig struct {
	EntityID    string   `yaml:"entity_id"`
	File        string   `yaml:"file"`
	Scale       float64  `yaml:"scale"`
	Unit        string   `yaml:"unit"`
	ReportDelta *float64 `yaml:"report_delta"`
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. an empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Discovery: DiscoveryConfig{
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		PollInterval: 30 * time.Second,
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HASS_KEY
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HASS_URL"); v != "" {
		cfg.Hass.URL = v
	}
	if v := os.Getenv("HASS_API_PASSWORD"); v != "" {
		cfg.Hass.APIPassword = v
	}
	if v := os.Getenv("HASS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HASS_TIMEOUT: %w", err)
		}
		cfg.Hass.Timeout = &d
	}
	if v := os.Getenv("HASS_INTERFACE"); v != "" {
		cfg.Hass.Interface = v
	}
	if v := os.Getenv("HASS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// ErrNoInstance is returned by RequireInstance when neither a url nor
// discovery is configured.
var ErrNoInstance = errors.New("hass.url is required unless discovery is enabled")

// RequireInstance checks that the instance can be reached, either through
// hass.url or through discovery. commands that don't talk to an instance,
// like discover, skip it.
func (c *Config) RequireInstance() error {
	if c.Hass.URL == "" && !c.Discovery.Enabled {
		return ErrNoInstance
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if strings.HasSuffix(c.Hass.URL, "/") {
		errs = append(errs, errors.New("hass.url must not end with /"))
	}
	if c.Hass.Timeout != nil && *c.Hass.Timeout < 0 {
		errs = append(errs, errors.New("hass.timeout must not be negative"))
	}
	switch c.Resolve.Network {
	case "", "ip", "ip4", "ip6":
	default:
		errs = append(errs, fmt.Errorf("resolve.network %q must be one of ip, ip4, ip6", c.Resolve.Network))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("poll_interval must be positive"))
	}
	for i, s := range c.Sensors {
		if s.EntityID == "" || s.File == "" {
			errs = append(errs, fmt.Errorf("sensors[%d]: entity_id and file are required", i))
		}
	}
	return errors.Join(errs...)
}
