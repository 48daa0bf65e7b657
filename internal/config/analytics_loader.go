package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadAnalyticsFile loads and validates an analytics thresholds file using
// Koanf. Returns the parsed and validated AnalyticsFile or an error.
//
// Error cases:
//   - File not found or cannot be read
//   - Invalid YAML syntax
//   - Schema validation failure (unsupported version, out-of-range values)
func LoadAnalyticsFile(filepath string) (*AnalyticsFile, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(filepath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load analytics config from %q: %w", filepath, err)
	}

	var cfg AnalyticsFile
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse analytics config from %q: %w", filepath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analytics config validation failed for %q: %w", filepath, err)
	}

	return &cfg, nil
}
