package runtimeconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads a YAML file over DefaultConfig. Keys absent from the file keep
// their defaults; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("postmigrate config: read %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("postmigrate config: parse %s: %w", path, err)
	}
	return cfg, nil
}
