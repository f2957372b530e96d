// Package config loads the run configuration for the sustainability
// evaluator. Fields are pointers so a partial JSON file inherits the
// documented defaults; the Get* methods provide the fallbacks.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/emissions.report/internal/emissions"
	"github.com/banshee-data/emissions.report/internal/sustain"
)

// Config is the root configuration. The schema mirrors the evaluator's
// constructor surface so one JSON file drives a whole run.
type Config struct {
	// Map bounds and grid sizing
	MinX      *float64 `json:"min_x,omitempty"`
	MinY      *float64 `json:"min_y,omitempty"`
	MaxX      *float64 `json:"max_x,omitempty"`
	MaxY      *float64 `json:"max_y,omitempty"`
	CellSizeM *float64 `json:"cell_size_m,omitempty"`

	// Estimator params
	SampleHz        *float64 `json:"sample_hz,omitempty"`
	GridGramsPerKWh *float64 `json:"grid_g_per_kwh,omitempty"`
	ModelType       *string  `json:"model_type,omitempty"` // "auto", "ev" or "ice"

	// Output
	LogFolder *string `json:"log_folder,omitempty"`

	// Per-vehicle physical parameter overrides, keyed by vehicle id.
	Vehicles map[string]*sustain.ParamOverrides `json:"vehicles,omitempty"`
}

// Defaults, applied for fields omitted from the JSON file.
const (
	DefaultCellSizeM = 50.0
	DefaultLogFolder = "cache/sustainability_logs"
)

// Load reads a Config from a JSON file. Partial configs are safe:
// omitted fields keep their defaults.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Guard against accidentally pointing at something huge.
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all set fields carry usable values.
func (c *Config) Validate() error {
	if c.CellSizeM != nil && *c.CellSizeM <= 0 {
		return fmt.Errorf("cell_size_m must be positive, got %v", *c.CellSizeM)
	}
	if c.SampleHz != nil && *c.SampleHz <= 0 {
		return fmt.Errorf("sample_hz must be positive, got %v", *c.SampleHz)
	}
	if c.GridGramsPerKWh != nil && *c.GridGramsPerKWh <= 0 {
		return fmt.Errorf("grid_g_per_kwh must be positive, got %v", *c.GridGramsPerKWh)
	}
	if c.MinX != nil && c.MaxX != nil && *c.MaxX <= *c.MinX {
		return fmt.Errorf("max_x (%v) must exceed min_x (%v)", *c.MaxX, *c.MinX)
	}
	if c.MinY != nil && c.MaxY != nil && *c.MaxY <= *c.MinY {
		return fmt.Errorf("max_y (%v) must exceed min_y (%v)", *c.MaxY, *c.MinY)
	}
	if c.ModelType != nil {
		switch emissions.Powertrain(*c.ModelType) {
		case emissions.Auto, emissions.Electric, emissions.Combustion:
		default:
			return fmt.Errorf("model_type must be auto, ev or ice, got %q", *c.ModelType)
		}
	}
	for id, o := range c.Vehicles {
		if o == nil {
			continue
		}
		if o.MassKg != nil && *o.MassKg <= 0 {
			return fmt.Errorf("vehicle %s: mass must be positive", id)
		}
		if o.DrivetrainEff != nil && (*o.DrivetrainEff <= 0 || *o.DrivetrainEff > 1) {
			return fmt.Errorf("vehicle %s: drivetrain_eff must be in (0, 1]", id)
		}
		if o.FrontalAreaM2 != nil && *o.FrontalAreaM2 <= 0 {
			return fmt.Errorf("vehicle %s: area must be positive", id)
		}
	}
	return nil
}

// GetBounds returns the configured map bounds, defaulting per axis.
func (c *Config) GetBounds() sustain.MapBounds {
	b := sustain.DefaultMapBounds()
	if c.MinX != nil {
		b.MinX = *c.MinX
	}
	if c.MinY != nil {
		b.MinY = *c.MinY
	}
	if c.MaxX != nil {
		b.MaxX = *c.MaxX
	}
	if c.MaxY != nil {
		b.MaxY = *c.MaxY
	}
	return b
}

// GetCellSizeM returns the grid cell size in meters.
func (c *Config) GetCellSizeM() float64 {
	if c.CellSizeM != nil {
		return *c.CellSizeM
	}
	return DefaultCellSizeM
}

// GetSampleHz returns the log sampling rate.
func (c *Config) GetSampleHz() float64 {
	if c.SampleHz != nil {
		return *c.SampleHz
	}
	return sustain.DefaultSampleHz
}

// GetGridGramsPerKWh returns the grid carbon intensity for EVs.
func (c *Config) GetGridGramsPerKWh() float64 {
	if c.GridGramsPerKWh != nil {
		return *c.GridGramsPerKWh
	}
	return emissions.DefaultGridGramsCO2PerKWh
}

// GetModelType returns the fleet-wide powertrain override.
func (c *Config) GetModelType() emissions.Powertrain {
	if c.ModelType != nil {
		return emissions.Powertrain(*c.ModelType)
	}
	return emissions.Auto
}

// GetLogFolder returns the output directory for logs and the summary.
func (c *Config) GetLogFolder() string {
	if c.LogFolder != nil {
		return *c.LogFolder
	}
	return DefaultLogFolder
}

// VehicleOverrides returns the explicit parameters for the given
// vehicle id, or nil when none are configured.
func (c *Config) VehicleOverrides(id string) *sustain.ParamOverrides {
	return c.Vehicles[id]
}

// EvaluatorConfig maps the loaded configuration onto the evaluator's
// constructor surface.
func (c *Config) EvaluatorConfig() sustain.EvaluatorConfig {
	return sustain.EvaluatorConfig{
		Bounds:          c.GetBounds(),
		CellSizeM:       c.GetCellSizeM(),
		LogDir:          c.GetLogFolder(),
		Model:           c.GetModelType(),
		SampleHz:        c.GetSampleHz(),
		GridGramsPerKWh: c.GetGridGramsPerKWh(),
	}
}
