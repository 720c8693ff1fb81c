package pprof

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_FileMode(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCollector(Config{Mode: ModeFile, OutputDir: dir})
	require.NoError(t, err)

	require.NoError(t, c.Start())
	require.NoError(t, c.Stop())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var cpu, heap bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "cpu-") {
			cpu = true
		}
		if strings.HasPrefix(e.Name(), "heap-") {
			heap = true
		}
	}
	assert.True(t, cpu, "cpu profile written")
	assert.True(t, heap, "heap profile written")
}

func TestCollector_StopWithoutStart(t *testing.T) {
	c, err := NewCollector(Config{Mode: ModeFile, OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.NoError(t, c.Stop())
}

func TestNewCollector_UnknownMode(t *testing.T) {
	_, err := NewCollector(Config{Mode: "tcp"})
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ModeFile, cfg.Mode)
	assert.Equal(t, "./pprof", cfg.OutputDir)
}
