// Package config loads the reconstruction tuning parameters.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/surfacer/internal/surface"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the reconstruction tuning parameters. Fields are
// pointers so a partial JSON file only overrides what it names; the Get*
// methods supply defaults for everything else. The schema matches the
// /api/config endpoint so the same JSON works for startup configuration
// and for inspection at runtime.
type TuningConfig struct {
	// Smoother params
	SearchRadius *float64 `json:"search_radius,omitempty"`
	Polynomial   *bool    `json:"polynomial,omitempty"`
	MinNeighbors *int     `json:"min_neighbors,omitempty"`

	// Reconstructor params
	FanPolygons *bool `json:"fan_polygons,omitempty"`

	// Request limits
	MaxPoints *int `json:"max_points,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that any set values are usable.
func (c *TuningConfig) Validate() error {
	if c.SearchRadius != nil && *c.SearchRadius <= 0 {
		return fmt.Errorf("search_radius must be positive, got %f", *c.SearchRadius)
	}
	if c.MinNeighbors != nil && *c.MinNeighbors < 3 {
		return fmt.Errorf("min_neighbors must be at least 3, got %d", *c.MinNeighbors)
	}
	if c.MaxPoints != nil && *c.MaxPoints < 1 {
		return fmt.Errorf("max_points must be positive, got %d", *c.MaxPoints)
	}
	return nil
}

// GetSearchRadius returns the search_radius value or the default.
func (c *TuningConfig) GetSearchRadius() float64 {
	if c.SearchRadius == nil {
		return surface.DefaultSearchRadius
	}
	return *c.SearchRadius
}

// GetPolynomial returns the polynomial value or the default.
func (c *TuningConfig) GetPolynomial() bool {
	if c.Polynomial == nil {
		return true
	}
	return *c.Polynomial
}

// GetMinNeighbors returns the min_neighbors value or the default.
func (c *TuningConfig) GetMinNeighbors() int {
	if c.MinNeighbors == nil {
		return surface.DefaultMinNeighbors
	}
	return *c.MinNeighbors
}

// GetFanPolygons returns the fan_polygons value or the default.
func (c *TuningConfig) GetFanPolygons() bool {
	if c.FanPolygons == nil {
		return false
	}
	return *c.FanPolygons
}

// GetMaxPoints returns the max_points request limit or the default.
func (c *TuningConfig) GetMaxPoints() int {
	if c.MaxPoints == nil {
		return 1_000_000
	}
	return *c.MaxPoints
}

// PipelineParams converts the tuning config into reconstruction pipeline
// parameters.
func (c *TuningConfig) PipelineParams() surface.Params {
	return surface.Params{
		SearchRadius: c.GetSearchRadius(),
		Polynomial:   c.GetPolynomial(),
		MinNeighbors: c.GetMinNeighbors(),
		FanPolygons:  c.GetFanPolygons(),
	}
}
