package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCaseArgs(t *testing.T) {
	c, timesteps, err := parseCaseArgs([]string{"life", "64", "32", "10"})
	require.NoError(t, err)
	assert.Equal(t, "life", c.Name)
	assert.Equal(t, []int{64, 32}, c.Dims)
	assert.Equal(t, 10, timesteps)
}

func TestParseCaseArgs_Errors(t *testing.T) {
	_, _, err := parseCaseArgs([]string{"nope", "8", "1"})
	assert.Error(t, err, "unknown stencil")

	_, _, err = parseCaseArgs([]string{"shift", "eight", "1"})
	assert.Error(t, err, "non-integer dimension")

	_, _, err = parseCaseArgs([]string{"shift", "8", "-1"})
	assert.Error(t, err, "negative timesteps")

	_, _, err = parseCaseArgs([]string{"shift", "8", "8", "1"})
	assert.Error(t, err, "wrong arity for a 1D stencil")
}

func TestSquareDims(t *testing.T) {
	assert.Equal(t, []int{16}, squareDims("shift", 16))
	assert.Equal(t, []int{16}, squareDims("diffusion", 16))
	assert.Equal(t, []int{16, 16}, squareDims("life", 16))
}
