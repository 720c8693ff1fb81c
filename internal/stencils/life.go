package stencils

import (
	"github.com/stencil-engine/internal/array"
	"github.com/stencil-engine/internal/engine"
)

func init() {
	register("life", NewLife)
}

// lifeShape is the Moore neighborhood one step back plus the cell's own
// previous state.
func lifeShape() (*engine.Shape, error) {
	offsets := []engine.Offset{{Dt: 0, Dx: []int{0, 0}}}
	for dj := -1; dj <= 1; dj++ {
		for di := -1; di <= 1; di++ {
			offsets = append(offsets, engine.Offset{Dt: -1, Dx: []int{dj, di}})
		}
	}
	return engine.NewShape(2, offsets)
}

func lifeRule(alive, neighbors int) int {
	if alive != 0 {
		if neighbors == 2 || neighbors == 3 {
			return 1
		}
		return 0
	}
	if neighbors == 3 {
		return 1
	}
	return 0
}

// NewLife builds Conway's Game of Life on a periodic 2D grid, seeded
// with a glider at (1, 1). The glider translates by (1, 1) every four
// generations.
func NewLife(dims []int) (*Case, error) {
	if err := wantDims("life", dims, 2); err != nil {
		return nil, err
	}
	shape, err := lifeShape()
	if err != nil {
		return nil, err
	}

	nx, ny := dims[0], dims[1]
	a := array.New[int](dims, shape.Toggle())
	ref := array.New[int](dims, shape.Toggle())

	step := func(dst *array.Array[int], t, j, i int) {
		neighbors := 0
		for dj := -1; dj <= 1; dj++ {
			for di := -1; di <= 1; di++ {
				if dj == 0 && di == 0 {
					continue
				}
				neighbors += dst.GetWrap(t-1, j+dj, i+di)
			}
		}
		*dst.At(t, j, i) = lifeRule(dst.GetWrap(t-1, j, i), neighbors)
	}

	c := &Case{
		Name:  "life",
		Rank:  2,
		Dims:  dims,
		Shape: shape,
		Modes: []engine.BoundaryMode{engine.Periodic, engine.Periodic},
	}
	c.Kernel = func(t int, x []int) {
		// Interior zoids sit at least one slope inside the grid, so
		// the wrapped reads never actually wrap here.
		step(a, t, x[0], x[1])
	}
	c.Boundary = func(t int, x []int) {
		step(a, t, x[0], x[1])
	}
	seed := func(dst *array.Array[int]) {
		for p := 0; p < shape.Toggle(); p++ {
			dst.FillPlane(p, 0)
		}
		// Glider heading toward +x, +y.
		for _, cell := range [][2]int{{2, 1}, {3, 2}, {1, 3}, {2, 3}, {3, 3}} {
			*dst.At(0, cell[0], cell[1]) = 1
		}
	}
	c.Reset = func() {
		seed(a)
		seed(ref)
	}
	c.Naive = func(T int) {
		for t := 1; t <= T; t++ {
			for j := 0; j < nx; j++ {
				for i := 0; i < ny; i++ {
					step(ref, t, j, i)
				}
			}
		}
	}
	c.Equal = func(T int) bool {
		for j := 0; j < nx; j++ {
			for i := 0; i < ny; i++ {
				if *a.At(T, j, i) != *ref.At(T, j, i) {
					return false
				}
			}
		}
		return true
	}
	c.Probe = func(t int, x ...int) float64 {
		return float64(*a.At(t, x...))
	}
	return c, nil
}
