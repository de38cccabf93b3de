package config

import (
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v2"

	"github.com/gnunet-go/gns/log"
)

// Config is the whole configuration of the resolver process
type Config struct {
	Log      log.Config `yaml:"log"`
	Resolver Resolver   `yaml:"resolver"`
	DNS      DNS        `yaml:"dns"`
	Cache    Cache      `yaml:"cache"`
}

// Resolver bundles the knobs of the recursion driver
type Resolver struct {
	// StartZone is the zkey representation of the zone all ".gnu" names are anchored in
	StartZone string `yaml:"startZone"`

	// MaxBackgroundQueries caps the number of lookups concurrently waiting
	// for a DHT result; admitting one more force-fails the oldest
	MaxBackgroundQueries int `yaml:"maxBackgroundQueries" default:"100"`

	// MaxRecursion bounds delegation chains (CNAME loops, PKEY cycles)
	MaxRecursion int `yaml:"maxRecursion" default:"128"`

	DhtTimeout Duration `yaml:"dhtTimeout" default:"60s"`
}

// DNS configures the delegated-DNS and fallback paths
type DNS struct {
	Timeout Duration `yaml:"timeout" default:"10s"`
}

// Cache configures the in-memory namestore
type Cache struct {
	MaxItemsCount int `yaml:"maxItemsCount" default:"10000"`
}

// NewConfig reads the config from the given yaml file
func NewConfig(path string) (*Config, error) {
	cfg := Config{}
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("can't apply config defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("wrong file structure: %w", err)
	}

	return &cfg, nil
}

// NewDefaultConfig returns a config with all default values applied
func NewDefaultConfig() *Config {
	cfg := Config{}
	_ = defaults.Set(&cfg)

	return &cfg
}

// Validate checks the semantic constraints the defaults can't express
func (c *Config) Validate() error {
	if c.Resolver.MaxBackgroundQueries <= 0 {
		return fmt.Errorf("maxBackgroundQueries must be positive")
	}

	if c.Resolver.MaxRecursion <= 0 {
		return fmt.Errorf("maxRecursion must be positive")
	}

	if !c.DNS.Timeout.IsAboveZero() || c.Resolver.DhtTimeout.ToDuration() < time.Second {
		return fmt.Errorf("timeouts are implausibly small")
	}

	return nil
}
