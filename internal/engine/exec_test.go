package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencil-engine/internal/array"
)

// shiftRig wires the 1D shift-and-fill stencil a[t,x] = a[t-1,x-1] + 1
// with periodic wrap onto a fresh array.
type shiftRig struct {
	a      *array.Array[int]
	f, bf  Kernel
	engine *Engine
}

func newShiftRig(t *testing.T, nx, toggle int, cfg Config) *shiftRig {
	t.Helper()
	s, err := NewShape(1, []Offset{{Dt: 0, Dx: []int{0}}, {Dt: -1, Dx: []int{-1}}})
	require.NoError(t, err)
	if toggle < s.Toggle() {
		toggle = s.Toggle()
	}
	a := array.New[int]([]int{nx}, toggle)

	e, err := New(1, cfg)
	require.NoError(t, err)
	require.NoError(t, e.RegisterShape(s))
	require.NoError(t, e.RegisterGrid([]int{0}, []int{nx}))
	require.NoError(t, e.SetBoundary(0, Periodic))

	r := &shiftRig{a: a, engine: e}
	r.f = func(t int, x []int) {
		*a.At(t, x[0]) = *a.At(t-1, x[0]-1) + 1
	}
	r.bf = func(t int, x []int) {
		*a.At(t, x[0]) = a.GetWrap(t-1, x[0]-1) + 1
	}
	return r
}

func (r *shiftRig) values(t int, nx int) []int {
	out := make([]int, nx)
	for x := 0; x < nx; x++ {
		out[x] = *r.a.At(t, x)
	}
	return out
}

func TestRun_ShiftFillValues(t *testing.T) {
	const nx, T = 8, 4
	r := newShiftRig(t, nx, 0, Config{DtStop: 1, DtStopBoundary: 1, DxStop: []int{2}, DxStopBoundary: []int{1}})
	require.NoError(t, r.engine.Run(T, r.f, r.bf))
	for x := 0; x < nx; x++ {
		assert.Equal(t, T, *r.a.At(T, x), "a[%d, %d]", T, x)
	}
}

func TestRun_SerialEqualsParallel(t *testing.T) {
	const nx, T = 61, 17
	cfg := Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{5}, DxStopBoundary: []int{2}}

	par := newShiftRig(t, nx, 0, cfg)
	require.NoError(t, par.engine.Run(T, par.f, par.bf))

	ser := newShiftRig(t, nx, 0, cfg)
	require.NoError(t, ser.engine.RunSerial(T, ser.f, ser.bf))

	assert.Equal(t, ser.values(T, nx), par.values(T, nx))
}

func TestRun_MatchesNaiveLoop(t *testing.T) {
	const nx, T = 40, 11
	r := newShiftRig(t, nx, 0, Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{4}, DxStopBoundary: []int{1}})
	require.NoError(t, r.engine.Run(T, r.f, r.bf))

	ref := array.New[int]([]int{nx}, 2)
	for tt := 1; tt <= T; tt++ {
		for x := 0; x < nx; x++ {
			*ref.At(tt, x) = ref.GetWrap(tt-1, x-1) + 1
		}
	}
	for x := 0; x < nx; x++ {
		assert.Equal(t, *ref.At(T, x), *r.a.At(T, x), "x=%d", x)
	}
}

// Doubling the toggle beyond the minimum must not change any value.
func TestRun_ToggleDoubling(t *testing.T) {
	const nx, T = 24, 8
	cfg := Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{4}}

	minimal := newShiftRig(t, nx, 0, cfg)
	require.NoError(t, minimal.engine.Run(T, minimal.f, minimal.bf))

	doubled := newShiftRig(t, nx, 4, cfg)
	require.NoError(t, doubled.engine.Run(T, doubled.f, doubled.bf))

	assert.Equal(t, minimal.values(T, nx), doubled.values(T, nx))
}

func TestRunPlan_MatchesRun(t *testing.T) {
	const nx, T = 48, 12
	cfg := Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{4}, DxStopBoundary: []int{2}}

	direct := newShiftRig(t, nx, 0, cfg)
	require.NoError(t, direct.engine.Run(T, direct.f, direct.bf))

	replay := newShiftRig(t, nx, 0, cfg)
	p, err := replay.engine.GenPlan(T)
	require.NoError(t, err)
	require.NoError(t, replay.engine.RunPlan(p, replay.f, replay.bf))

	assert.Equal(t, direct.values(T, nx), replay.values(T, nx))
}

func TestGenPlan_CoversDomainExactlyOnce(t *testing.T) {
	const nx, T = 30, 7
	cfg := Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{4}, DxStopBoundary: []int{2}}
	r := newShiftRig(t, nx, 0, cfg)

	p, err := r.engine.GenPlan(T)
	require.NoError(t, err)
	require.NoError(t, p.Validate())

	shift := r.engine.TimeShift()
	counts := make(map[[2]int]int)
	for _, rec := range p.Base {
		g := rec.G
		for tt := rec.T0; tt < rec.T1; tt++ {
			for x := g.X0[0]; x < g.X1[0]; x++ {
				w := pmodLU(x, 0, nx)
				counts[[2]int{tt, w}]++
			}
			g.X0[0] += g.DX0[0]
			g.X1[0] += g.DX1[0]
		}
	}
	for tt := shift; tt < T+shift; tt++ {
		for x := 0; x < nx; x++ {
			assert.Equal(t, 1, counts[[2]int{tt, x}], "cell (t=%d, x=%d)", tt, x)
		}
	}
	assert.Equal(t, nx*T, len(counts))
}

func TestGenPlan_SyncIndicesStrictlyIncrease(t *testing.T) {
	const nx, T = 64, 16
	cfg := Config{DtStop: 2, DtStopBoundary: 2, DxStop: []int{4}, DxStopBoundary: []int{2}}
	r := newShiftRig(t, nx, 0, cfg)

	p, err := r.engine.GenPlan(T)
	require.NoError(t, err)
	require.NotEmpty(t, p.Sync)
	prev := 0
	for _, s := range p.Sync {
		assert.Greater(t, s, prev)
		prev = s
	}
	assert.Equal(t, len(p.Base), p.Sync[len(p.Sync)-1])
}

func TestPlan_ValidateRejects(t *testing.T) {
	good := func() *Plan {
		g := Grid{}
		g.X0[0], g.X1[0] = 0, 4
		return &Plan{
			Rank: 1,
			Base: []PlanRecord{{Region: RegionInterior, T0: 1, T1: 2, G: g}},
			Sync: []int{1},
		}
	}

	p := good()
	require.NoError(t, p.Validate())

	p = good()
	p.Sync = []int{1, 1}
	assert.Error(t, p.Validate(), "non-increasing sync")

	p = good()
	p.Sync = []int{2}
	assert.Error(t, p.Validate(), "sync past base data")

	p = good()
	p.Base[0].Region = 7
	assert.Error(t, p.Validate(), "unknown region id")

	p = good()
	p.Base[0].T1 = p.Base[0].T0
	assert.Error(t, p.Validate(), "empty time interval")

	p = good()
	p.Rank = 0
	assert.Error(t, p.Validate())
}

func TestRunPlan_RankMismatch(t *testing.T) {
	r := newShiftRig(t, 16, 0, Config{})
	p := &Plan{Rank: 2}
	err := r.engine.RunPlan(p, r.f, r.bf)
	assert.Error(t, err)
}
