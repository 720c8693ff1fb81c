package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Engine.DtStop)
	assert.Equal(t, "plan.base", cfg.Plan.BaseDataFile)
	assert.Equal(t, "plan.sync", cfg.Plan.SyncDataFile)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
engine:
  dt_stop: 7
  dx_stop: [64, 64]
plan:
  base_data_file: run.base
  sync_data_file: run.sync
database:
  type: postgres
  host: db.internal
  port: 5432
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Engine.DtStop)
	assert.Equal(t, []int{64, 64}, cfg.Engine.DxStop)
	assert.Equal(t, "run.base", cfg.Plan.BaseDataFile)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  type: oracle\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: shout\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate_NegativeCutoffs(t *testing.T) {
	cfg := &Config{}
	cfg.Engine.DtStop = -1
	assert.Error(t, cfg.Validate())

	cfg = &Config{}
	cfg.Engine.DxStop = []int{4, -2}
	assert.Error(t, cfg.Validate())
}
