// Package config loads the taxonomy configuration file, most importantly
// the open-ended registry of consumer models whose references feed the
// cloud weight computation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/all-ride/ride-web-orm-taxonomy/internal/services"
)

type Config struct {
	Consumers []services.ConsumerModel `yaml:"consumers"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes and validates raw YAML config bytes.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for i, consumer := range cfg.Consumers {
		if err := consumer.Validate(); err != nil {
			return nil, fmt.Errorf("consumer %d (%s): %w", i, consumer.Name, err)
		}
	}
	return &cfg, nil
}
