// Package config loads residual run settings from JSON or YAML files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/residuals.report/internal/gmm"
	"github.com/banshee-data/residuals.report/internal/residual"
	"github.com/banshee-data/residuals.report/internal/units"
)

// ExampleConfigPath is the documented example configuration shipped with
// the repository.
const ExampleConfigPath = "config/residuals.example.yaml"

// maxFileSize bounds configuration files (1MB).
const maxFileSize = 1 * 1024 * 1024

// ResidualConfig holds the settings for a residual run. Nil fields fall
// back to the defaults returned by the Get* methods, so partial files are
// safe.
type ResidualConfig struct {
	Region           *string  `json:"region,omitempty" yaml:"region,omitempty"`
	VsSource         *string  `json:"vs_source,omitempty" yaml:"vs_source,omitempty"`
	MechanismFromSOF *bool    `json:"mechanism_from_sof,omitempty" yaml:"mechanism_from_sof,omitempty"`
	MinAmp           *float64 `json:"min_amp,omitempty" yaml:"min_amp,omitempty"`
	Workers          *int     `json:"workers,omitempty" yaml:"workers,omitempty"`
	Z1Units          *string  `json:"z1_units,omitempty" yaml:"z1_units,omitempty"`

	// Coefficients is the path of the BA18 coefficient CSV. Relative paths
	// are resolved against the config file's directory.
	Coefficients *string `json:"coefficients,omitempty" yaml:"coefficients,omitempty"`
}

// EmptyResidualConfig returns a ResidualConfig with all fields set to nil.
func EmptyResidualConfig() *ResidualConfig {
	return &ResidualConfig{}
}

// LoadResidualConfig loads a ResidualConfig from a .json, .yaml or .yml
// file no larger than 1MB, and validates it.
func LoadResidualConfig(path string) (*ResidualConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", filepath.Ext(cleanPath))
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyResidualConfig()
	if ext == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes as io.EOF and leaves every default.
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if cfg.Coefficients != nil && *cfg.Coefficients != "" && !filepath.IsAbs(*cfg.Coefficients) {
		resolved := filepath.Join(filepath.Dir(cleanPath), *cfg.Coefficients)
		cfg.Coefficients = &resolved
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *ResidualConfig) Validate() error {
	if c.MinAmp != nil && !(*c.MinAmp > 0) {
		return fmt.Errorf("min_amp must be positive, got %g", *c.MinAmp)
	}
	if c.VsSource != nil && *c.VsSource != gmm.VsInferred && *c.VsSource != gmm.VsMeasured {
		return fmt.Errorf("vs_source must be %q or %q, got %q", gmm.VsInferred, gmm.VsMeasured, *c.VsSource)
	}
	if c.Z1Units != nil && !units.IsValidDepthUnit(*c.Z1Units) {
		return fmt.Errorf("z1_units must be one of %s, got %q", units.GetValidDepthUnitsString(), *c.Z1Units)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	if c.Region != nil && strings.TrimSpace(*c.Region) == "" {
		return fmt.Errorf("region must not be empty")
	}
	return nil
}

// GetRegion returns the region or the default.
func (c *ResidualConfig) GetRegion() string {
	if c.Region == nil {
		return gmm.RegionCalifornia
	}
	return *c.Region
}

// GetVsSource returns the vs_source value or the default.
func (c *ResidualConfig) GetVsSource() string {
	if c.VsSource == nil {
		return gmm.VsInferred
	}
	return *c.VsSource
}

// GetMechanismFromSOF returns the mechanism_from_sof value or the default.
func (c *ResidualConfig) GetMechanismFromSOF() bool {
	if c.MechanismFromSOF == nil {
		return true
	}
	return *c.MechanismFromSOF
}

// GetMinAmp returns the min_amp value or the default.
func (c *ResidualConfig) GetMinAmp() float64 {
	if c.MinAmp == nil {
		return residual.DefaultMinAmp
	}
	return *c.MinAmp
}

// GetWorkers returns the workers value or the default.
func (c *ResidualConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetZ1Units returns the z1_units value or the default.
func (c *ResidualConfig) GetZ1Units() string {
	if c.Z1Units == nil {
		return units.KM
	}
	return *c.Z1Units
}

// GetCoefficients returns the coefficient table path, or "" when unset.
func (c *ResidualConfig) GetCoefficients() string {
	if c.Coefficients == nil {
		return ""
	}
	return *c.Coefficients
}

// ToOptions converts the configuration into residual computer options.
func (c *ResidualConfig) ToOptions() residual.Options {
	return residual.Options{
		Region:           c.GetRegion(),
		VsSource:         c.GetVsSource(),
		MechanismFromSOF: c.GetMechanismFromSOF(),
		MinAmp:           c.GetMinAmp(),
		Z1Units:          c.GetZ1Units(),
		Workers:          c.GetWorkers(),
	}
}
