package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"liverroi/pkg/sector"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	p, err := cfg.Pattern()
	if err != nil {
		t.Fatalf("Pattern() failed: %v", err)
	}
	if want := (sector.Pattern{Axis: sector.HeightPos, Rotation: sector.CounterClockwise}); p != want {
		t.Errorf("Pattern = %s, want %s", p, want)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Missing file should give defaults (-want +got):\n%s", diff)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "liverroi.yaml")
	cfg := DefaultConfig()
	cfg.ROI.RadiusMM = 20
	cfg.ROI.Dims = 2
	cfg.Orientation.Rotation = "clockwise"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("Round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := "roi:\n  alpha: 0.8\nspacing:\n  z: 5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ROI.Alpha != 0.8 || cfg.Spacing.Z != 5 {
		t.Errorf("Overrides not applied: alpha=%g z=%g", cfg.ROI.Alpha, cfg.Spacing.Z)
	}
	if cfg.ROI.RadiusMM != DefaultConfig().ROI.RadiusMM {
		t.Errorf("Unset fields should keep defaults, radius=%g", cfg.ROI.RadiusMM)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("roi: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"Cores", func(c *Config) { c.Processing.NumCores = 0 }, "numCores"},
		{"Spacing", func(c *Config) { c.Spacing.Z = 0 }, "spacing"},
		{"InPlane", func(c *Config) { c.Spacing.Width = 1.2 }, "equal height and width"},
		{"Radius", func(c *Config) { c.ROI.RadiusMM = -1 }, "radiusMM"},
		{"Alpha", func(c *Config) { c.ROI.Alpha = 1.1 }, "alpha"},
		{"Dims", func(c *Config) { c.ROI.Dims = 4 }, "dims"},
		{"Axis", func(c *Config) { c.Orientation.Axis = "up" }, "orientation.axis"},
		{"Rotation", func(c *Config) { c.Orientation.Rotation = "spin" }, "orientation.rotation"},
		{"Pattern", func(c *Config) { c.Orientation.Axis = "width+" }, "no peripheral directions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Error %q should mention %q", err, tt.errMsg)
			}
		})
	}

	t.Run("IsotropicAllowsUnequalInPlane", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Processing.Anisotropic = false
		cfg.Spacing.Width = 1.2
		if err := cfg.Validate(); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})
}
