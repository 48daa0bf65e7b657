package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteAnalyticsFile atomically writes an AnalyticsFile to disk using a
// temp-file-then-rename pattern so readers never observe a partial write.
//
// If any step fails, the temp file is cleaned up and the original file
// remains untouched.
func WriteAnalyticsFile(path string, cfg *AnalyticsFile) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics config: %w", err)
	}

	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".analytics.*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if _, err := os.Stat(tmpPath); err == nil {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Rename within the same directory is atomic on POSIX systems.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %q: %w", path, err)
	}

	return nil
}
