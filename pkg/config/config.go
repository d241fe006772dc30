// Package config provides configuration loading and management for liverroi.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"liverroi/pkg/sector"
	"liverroi/pkg/volume"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores limits how many volumes are processed at the same time
		NumCores int `yaml:"numCores"`

		// Anisotropic enables spacing-aware erosion when locating the centre
		Anisotropic bool `yaml:"anisotropic"`

		// FillHollows removes enclosed background voids before erosion
		FillHollows bool `yaml:"fillHollows"`
	} `yaml:"processing"`

	// Spacing is the physical voxel size in mm of loaded volumes
	Spacing struct {
		Z      float64 `yaml:"z"`
		Height float64 `yaml:"height"`
		Width  float64 `yaml:"width"`
	} `yaml:"spacing"`

	// Region of interest parameters
	ROI struct {
		// RadiusMM is the physical radius of every extracted region
		RadiusMM float64 `yaml:"radiusMM"`

		// Alpha places peripheral centres between the liver centre (0) and the
		// liver edge (1)
		Alpha float64 `yaml:"alpha"`

		// IncludeTumor keeps tumor voxels in the extracted regions
		IncludeTumor bool `yaml:"includeTumor"`

		// Dims is 2 for slice regions or 3 for spherical regions
		Dims int `yaml:"dims"`
	} `yaml:"roi"`

	// Orientation of the liver sector inside a slice
	Orientation struct {
		// Axis is one of height+, height-, width+, width-
		Axis string `yaml:"axis"`

		// Rotation is clockwise or counterclockwise
		Rotation string `yaml:"rotation"`
	} `yaml:"orientation"`

	// Output parameters
	Output struct {
		// OverlayDir receives one overlay image per volume when set
		OverlayDir string `yaml:"overlayDir"`

		// ReportFile receives the YAML report when set
		ReportFile string `yaml:"reportFile"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.Anisotropic = true
	cfg.Processing.FillHollows = true

	// Typical abdominal CT: thick slices, sub-millimetre pixels
	cfg.Spacing.Z = 2.5
	cfg.Spacing.Height = 0.8
	cfg.Spacing.Width = 0.8

	// Set default region parameters
	cfg.ROI.RadiusMM = 15
	cfg.ROI.Alpha = 0.5
	cfg.ROI.IncludeTumor = false
	cfg.ROI.Dims = 3

	cfg.Orientation.Axis = sector.HeightPos.String()
	cfg.Orientation.Rotation = sector.CounterClockwise.String()

	// Set default output parameters
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML on top of the defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate rejects values the ROI code would treat as programming errors, so
// that bad user input surfaces as an error rather than a panic.
func (c *Config) Validate() error {
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("processing.numCores must be at least 1, got %d", c.Processing.NumCores)
	}
	sp := c.VoxelSpacing()
	if err := sp.Validate(); err != nil {
		return fmt.Errorf("spacing: %w", err)
	}
	if c.Processing.Anisotropic && sp.H != sp.W {
		return fmt.Errorf("anisotropic erosion needs equal height and width spacing, got %g and %g", sp.H, sp.W)
	}
	if !(c.ROI.RadiusMM >= 0) {
		return fmt.Errorf("roi.radiusMM must be non-negative, got %g", c.ROI.RadiusMM)
	}
	if !(c.ROI.Alpha >= 0 && c.ROI.Alpha <= 1) {
		return fmt.Errorf("roi.alpha must be within [0, 1], got %g", c.ROI.Alpha)
	}
	if c.ROI.Dims != 2 && c.ROI.Dims != 3 {
		return fmt.Errorf("roi.dims must be 2 or 3, got %d", c.ROI.Dims)
	}
	if _, err := c.Pattern(); err != nil {
		return err
	}
	return nil
}

// VoxelSpacing returns the configured spacing.
func (c *Config) VoxelSpacing() volume.Spacing {
	return volume.Spacing{Z: c.Spacing.Z, H: c.Spacing.Height, W: c.Spacing.Width}
}

// Pattern parses the orientation section.
func (c *Config) Pattern() (sector.Pattern, error) {
	axis, err := sector.ParseAxisDirection(c.Orientation.Axis)
	if err != nil {
		return sector.Pattern{}, fmt.Errorf("orientation.axis: %w", err)
	}
	rot, err := sector.ParseRotation(c.Orientation.Rotation)
	if err != nil {
		return sector.Pattern{}, fmt.Errorf("orientation.rotation: %w", err)
	}
	p := sector.Pattern{Axis: axis, Rotation: rot}
	if !p.Valid() {
		return sector.Pattern{}, fmt.Errorf("orientation %s has no peripheral directions", p)
	}
	return p, nil
}
