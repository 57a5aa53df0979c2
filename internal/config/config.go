// Package config handles meshpcd configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/meshpcd/internal/logger"
)

// Config holds all settings.
type Config struct {
	Export   ExportConfig   `yaml:"export"`
	Library  LibraryConfig  `yaml:"library"`
	Manifest ManifestConfig `yaml:"manifest"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ExportConfig holds the point cloud export parameters.
type ExportConfig struct {
	OutputDir       string  `yaml:"output_dir"`
	DensityMin      float32 `yaml:"density_min"`
	DensityMax      float32 `yaml:"density_max"`
	ContinueOnError bool    `yaml:"continue_on_error"`
	Confirm         bool    `yaml:"confirm"`
}

// LibraryConfig locates the asset library. An empty path means the
// library installed next to the binary.
type LibraryConfig struct {
	Path string `yaml:"path"`
}

// ManifestConfig enables the export history when Path is set.
type ManifestConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			OutputDir:       "./",
			DensityMin:      0,
			DensityMax:      100,
			ContinueOnError: true,
			Confirm:         false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks values that would make an export meaningless. Infinite
// densities are accepted; the library's max_points bounds the point count.
func (c *Config) Validate() error {
	var errs []error
	if math.IsNaN(float64(c.Export.DensityMin)) {
		errs = append(errs, errors.New("export.density_min must be a number, got NaN"))
	}
	if math.IsNaN(float64(c.Export.DensityMax)) {
		errs = append(errs, errors.New("export.density_max must be a number, got NaN"))
	}
	if c.Export.DensityMin < 0 {
		errs = append(errs, fmt.Errorf("export.density_min must be >= 0, got %v", c.Export.DensityMin))
	}
	if c.Export.DensityMax < 0 {
		errs = append(errs, fmt.Errorf("export.density_max must be >= 0, got %v", c.Export.DensityMax))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}
