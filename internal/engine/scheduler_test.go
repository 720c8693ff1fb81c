package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencil-engine/pkg/collections"
	apperrors "github.com/stencil-engine/pkg/errors"
)

// cellCounter records every kernel invocation; safe under the parallel
// scheduler.
type cellCounter struct {
	mu     sync.Mutex
	counts map[[MaxRank + 1]int]int
}

func newCellCounter() *cellCounter {
	return &cellCounter{counts: make(map[[MaxRank + 1]int]int)}
}

func (c *cellCounter) kernel(rank int) Kernel {
	return func(t int, x []int) {
		var key [MaxRank + 1]int
		key[0] = t
		copy(key[1:], x[:rank])
		c.mu.Lock()
		c.counts[key]++
		c.mu.Unlock()
	}
}

func (c *cellCounter) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

func (c *cellCounter) get(t int, x ...int) int {
	var key [MaxRank + 1]int
	key[0] = t
	copy(key[1:], x)
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[key]
}

func buildEngine(t *testing.T, rank int, dims []int, offsets []Offset, modes []BoundaryMode, cfg Config) *Engine {
	t.Helper()
	e, err := New(rank, cfg)
	require.NoError(t, err)
	s, err := NewShape(rank, offsets)
	require.NoError(t, err)
	require.NoError(t, e.RegisterShape(s))
	x0 := make([]int, rank)
	require.NoError(t, e.RegisterGrid(x0, dims))
	for i, m := range modes {
		require.NoError(t, e.SetBoundary(i, m))
	}
	return e
}

var threePoint1D = []Offset{
	{Dt: 0, Dx: []int{0}},
	{Dt: -1, Dx: []int{-1}},
	{Dt: -1, Dx: []int{0}},
	{Dt: -1, Dx: []int{1}},
}

func TestRun_CoverageExactlyOnce1D(t *testing.T) {
	const nx, T = 37, 13
	// Tight cutoffs force deep recursion through every action kind.
	cfg := Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{4}, DxStopBoundary: []int{2}}
	e := buildEngine(t, 1, []int{nx}, threePoint1D, []BoundaryMode{Periodic}, cfg)

	c := newCellCounter()
	k := c.kernel(1)
	require.NoError(t, e.Run(T, k, k))

	shift := e.TimeShift()
	for ti := shift; ti < T+shift; ti++ {
		for x := 0; x < nx; x++ {
			assert.Equal(t, 1, c.get(ti, x), "cell (t=%d, x=%d)", ti, x)
		}
	}
	assert.Equal(t, nx*T, c.total())
}

func TestRun_CoverageExactlyOnce2D(t *testing.T) {
	const T = 6
	dims := []int{20, 11}
	offsets := []Offset{
		{Dt: 0, Dx: []int{0, 0}},
		{Dt: -1, Dx: []int{-1, 0}},
		{Dt: -1, Dx: []int{1, 0}},
		{Dt: -1, Dx: []int{0, -1}},
		{Dt: -1, Dx: []int{0, 1}},
	}
	cfg := Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{3, 3}, DxStopBoundary: []int{2, 2}}
	e := buildEngine(t, 2, dims, offsets, []BoundaryMode{Periodic, Periodic}, cfg)

	c := newCellCounter()
	k := c.kernel(2)
	require.NoError(t, e.Run(T, k, k))

	shift := e.TimeShift()
	for ti := shift; ti < T+shift; ti++ {
		for x := 0; x < dims[0]; x++ {
			for y := 0; y < dims[1]; y++ {
				assert.Equal(t, 1, c.get(ti, x, y), "cell (t=%d, x=%d, y=%d)", ti, x, y)
			}
		}
	}
	assert.Equal(t, dims[0]*dims[1]*T, c.total())
}

func TestRun_CoverageWithLogicDomain(t *testing.T) {
	const nx, T = 32, 5
	e := buildEngine(t, 1, []int{nx}, threePoint1D, []BoundaryMode{NonPeriodic}, Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{4}})
	require.NoError(t, e.RegisterDomain([]int{4}, []int{28}))

	c := newCellCounter()
	k := c.kernel(1)
	require.NoError(t, e.Run(T, k, k))

	shift := e.TimeShift()
	for ti := shift; ti < T+shift; ti++ {
		for x := 0; x < nx; x++ {
			want := 0
			if x >= 4 && x < 28 {
				want = 1
			}
			assert.Equal(t, want, c.get(ti, x), "cell (t=%d, x=%d)", ti, x)
		}
	}
}

func TestRunSerial_SameCoverage(t *testing.T) {
	const nx, T = 24, 9
	cfg := Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{4}, DxStopBoundary: []int{2}}
	e := buildEngine(t, 1, []int{nx}, threePoint1D, []BoundaryMode{Periodic}, cfg)

	c := newCellCounter()
	k := c.kernel(1)
	require.NoError(t, e.RunSerial(T, k, k))
	assert.Equal(t, nx*T, c.total())
	shift := e.TimeShift()
	for ti := shift; ti < T+shift; ti++ {
		for x := 0; x < nx; x++ {
			assert.Equal(t, 1, c.get(ti, x))
		}
	}
}

// With the space cutoff beyond the grid extent the scheduler must fall
// straight through to a single base case regardless of depth.
func TestRun_DxStopBeyondExtent(t *testing.T) {
	const nx, T = 8, 40
	cfg := Config{DxStop: []int{100}, DxStopBoundary: []int{100}}
	e := buildEngine(t, 1, []int{nx}, threePoint1D, []BoundaryMode{Periodic}, cfg)

	p, err := e.GenPlan(T)
	require.NoError(t, err)
	require.Len(t, p.Base, 1)
	assert.Equal(t, RegionBoundary, p.Base[0].Region)
	assert.Equal(t, e.TimeShift(), p.Base[0].T0)
	assert.Equal(t, T+e.TimeShift(), p.Base[0].T1)

	c := newCellCounter()
	k := c.kernel(1)
	require.NoError(t, e.Run(T, k, k))
	assert.Equal(t, nx*T, c.total())
}

func TestRun_ZeroTimesteps(t *testing.T) {
	e := buildEngine(t, 1, []int{1}, []Offset{
		{Dt: 0, Dx: []int{0}},
		{Dt: -1, Dx: []int{0}},
	}, []BoundaryMode{NonPeriodic}, Config{})

	c := newCellCounter()
	k := c.kernel(1)
	require.NoError(t, e.Run(0, k, k))
	assert.Equal(t, 0, c.total())
}

func TestRun_SingleStepTouchesEachCellOnce(t *testing.T) {
	dims := []int{10, 10}
	offsets := []Offset{
		{Dt: 0, Dx: []int{0, 0}},
		{Dt: -1, Dx: []int{0, 0}},
	}
	e := buildEngine(t, 2, dims, offsets, []BoundaryMode{Periodic, Periodic}, Config{})

	c := newCellCounter()
	k := c.kernel(2)
	require.NoError(t, e.Run(1, k, k))
	assert.Equal(t, 100, c.total())
}

func TestRun_NonInvertingInvariant(t *testing.T) {
	const nx, T = 64, 16
	cfg := Config{DtStop: 1, DtStopBoundary: 1, DxStop: []int{2}, DxStopBoundary: []int{1}}
	e := buildEngine(t, 1, []int{nx}, threePoint1D, []BoundaryMode{Periodic}, cfg)

	p, err := e.GenPlan(T)
	require.NoError(t, err)
	require.NotEmpty(t, p.Base)
	for i, r := range p.Base {
		assert.True(t, r.G.NonInverting(1, r.T1-r.T0), "record %d inverts: %s", i, r.G)
		for d := 0; d < 1; d++ {
			s := e.Slope(d)
			assert.Contains(t, []int{-s, 0, s}, r.G.DX0[d], "record %d dx0", i)
			assert.Contains(t, []int{-s, 0, s}, r.G.DX1[d], "record %d dx1", i)
		}
	}
}

// A full-period cut must fold the left and right edge triangles into
// one merged child straddling the upper edge.
func TestSpaceCut_InitialCutMergesTriangles(t *testing.T) {
	const nx, T = 32, 2
	cfg := Config{DtStop: 1, DtStopBoundary: 1, DxStop: []int{4}, DxStopBoundary: []int{1}}
	e := buildEngine(t, 1, []int{nx}, threePoint1D, []BoundaryMode{Periodic}, cfg)

	p, err := e.GenPlan(T)
	require.NoError(t, err)

	s := e.Slope(0)
	merged := false
	for _, r := range p.Base {
		if r.G.X0[0] == nx-s && r.G.X1[0] == nx+s && r.G.DX0[0] == -s && r.G.DX1[0] == s {
			merged = true
		}
	}
	assert.True(t, merged, "no merged-triangles child in %d records", len(p.Base))
}

// An elongated grid defeats the simultaneous cut on the short dimension
// but must still decompose through the one-dimensional fallback, and
// cover every cell exactly once.
func TestRun_OneDimFallbackCoverage(t *testing.T) {
	const T = 6
	dims := []int{64, 4}
	offsets := []Offset{
		{Dt: 0, Dx: []int{0, 0}},
		{Dt: -1, Dx: []int{-1, -1}},
		{Dt: -1, Dx: []int{1, 1}},
	}
	cfg := Config{DtStop: 1, DtStopBoundary: 1, DxStop: []int{3, 3}, DxStopBoundary: []int{1, 1}}
	e := buildEngine(t, 2, dims, offsets, []BoundaryMode{Periodic, Periodic}, cfg)

	c := newCellCounter()
	k := c.kernel(2)
	require.NoError(t, e.Run(T, k, k))

	shift := e.TimeShift()
	for ti := shift; ti < T+shift; ti++ {
		for x := 0; x < dims[0]; x++ {
			for y := 0; y < dims[1]; y++ {
				assert.Equal(t, 1, c.get(ti, x, y), "cell (t=%d, x=%d, y=%d)", ti, x, y)
			}
		}
	}
}

func TestPush_QueueOverflowPanics(t *testing.T) {
	w := &walker{}
	r := collections.NewRing[queueItem](1)
	w.push(r, queueItem{})

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		ae, ok := rec.(*apperrors.AppError)
		require.True(t, ok)
		assert.Equal(t, apperrors.CodeQueueOverflow, ae.Code)
	}()
	w.push(r, queueItem{})
}

func TestQueueCap(t *testing.T) {
	assert.Equal(t, 6, queueCap(1))
	assert.Equal(t, 18, queueCap(2))
	assert.Equal(t, 162, queueCap(4))
}
