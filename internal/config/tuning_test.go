package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/surfacer/internal/surface"
)

func writeConfigFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()
	assert.Equal(t, surface.DefaultSearchRadius, cfg.GetSearchRadius())
	assert.True(t, cfg.GetPolynomial())
	assert.Equal(t, surface.DefaultMinNeighbors, cfg.GetMinNeighbors())
	assert.False(t, cfg.GetFanPolygons())
	assert.Equal(t, 1_000_000, cfg.GetMaxPoints())
}

func TestLoadTuningConfig_PartialOverride(t *testing.T) {
	path := writeConfigFile(t, "tuning.json", `{"search_radius": 0.5, "polynomial": false}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.GetSearchRadius())
	assert.False(t, cfg.GetPolynomial())
	// Unset fields keep their defaults.
	assert.Equal(t, surface.DefaultMinNeighbors, cfg.GetMinNeighbors())
	assert.Equal(t, 1_000_000, cfg.GetMaxPoints())
}

func TestLoadTuningConfig_RejectsNonJSONExtension(t *testing.T) {
	path := writeConfigFile(t, "tuning.yaml", `{}`)
	_, err := LoadTuningConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".json")
}

func TestLoadTuningConfig_MissingFile(t *testing.T) {
	_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoadTuningConfig_MalformedJSON(t *testing.T) {
	path := writeConfigFile(t, "tuning.json", `{"search_radius": `)
	_, err := LoadTuningConfig(path)
	require.Error(t, err)
}

func TestLoadTuningConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantErr  string
	}{
		{"zero radius", `{"search_radius": 0}`, "search_radius"},
		{"negative radius", `{"search_radius": -0.1}`, "search_radius"},
		{"min neighbors too small", `{"min_neighbors": 2}`, "min_neighbors"},
		{"zero max points", `{"max_points": 0}`, "max_points"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfigFile(t, "tuning.json", tc.contents)
			_, err := LoadTuningConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestPipelineParams(t *testing.T) {
	radius := 0.1
	neighbors := 5
	fan := true
	cfg := &TuningConfig{
		SearchRadius: &radius,
		MinNeighbors: &neighbors,
		FanPolygons:  &fan,
	}

	want := surface.Params{
		SearchRadius: 0.1,
		Polynomial:   true,
		MinNeighbors: 5,
		FanPolygons:  true,
	}
	assert.Equal(t, want, cfg.PipelineParams())
}

func TestLoadTuningConfig_Defaults(t *testing.T) {
	// The shipped defaults file must load cleanly.
	cfg, err := LoadTuningConfig("../../" + DefaultConfigPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
}
