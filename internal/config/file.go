package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile decodes a YAML file over cfg. Keys absent from the file keep the
// values already in cfg.
func LoadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return nil
}
