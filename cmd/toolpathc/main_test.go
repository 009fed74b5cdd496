package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isoroute/toolpath/config"
)

func TestLoadDrillPoints_ParsesXYArray(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drill.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"x":1,"y":2},{"x":3.5,"y":-1}]`), 0o644))

	points, err := loadDrillPoints(path)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1.0, points[0].X)
	assert.Equal(t, 2.0, points[0].Y)
	assert.Equal(t, 3.5, points[1].X)
	assert.Equal(t, -1.0, points[1].Y)
}

func TestLoadDrillPoints_MissingFileErrors(t *testing.T) {
	_, err := loadDrillPoints(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadJSON_OverridesConfigFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rapid_cost":{"base_cost":9.5}}`), 0o644))

	cfg := config.Default()
	require.NoError(t, loadJSON(path, &cfg))
	assert.Equal(t, 9.5, cfg.RapidCost.BaseCost)
}

func TestLoadJSON_MalformedJSONErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	cfg := config.Default()
	assert.Error(t, loadJSON(path, &cfg))
}
