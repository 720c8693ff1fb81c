package stencils

import (
	"github.com/stencil-engine/internal/array"
	"github.com/stencil-engine/internal/engine"
)

func init() {
	register("shift", NewShiftFill)
}

// NewShiftFill builds the 1D shift-and-fill stencil
// a[t, x] = a[t-1, x-1] + 1 with a periodic boundary. Starting from an
// all-zero line, every cell reads T after T steps.
func NewShiftFill(dims []int) (*Case, error) {
	if err := wantDims("shift", dims, 1); err != nil {
		return nil, err
	}
	shape, err := engine.NewShape(1, []engine.Offset{
		{Dt: 0, Dx: []int{0}},
		{Dt: -1, Dx: []int{-1}},
	})
	if err != nil {
		return nil, err
	}

	nx := dims[0]
	a := array.New[int](dims, shape.Toggle())
	ref := array.New[int](dims, shape.Toggle())

	c := &Case{
		Name:  "shift",
		Rank:  1,
		Dims:  dims,
		Shape: shape,
		Modes: []engine.BoundaryMode{engine.Periodic},
	}
	c.Kernel = func(t int, x []int) {
		*a.At(t, x[0]) = *a.At(t-1, x[0]-1) + 1
	}
	c.Boundary = func(t int, x []int) {
		*a.At(t, x[0]) = a.GetWrap(t-1, x[0]-1) + 1
	}
	c.Reset = func() {
		for p := 0; p < shape.Toggle(); p++ {
			a.FillPlane(p, 0)
			ref.FillPlane(p, 0)
		}
	}
	c.Naive = func(T int) {
		for t := 1; t <= T; t++ {
			for x := 0; x < nx; x++ {
				*ref.At(t, x) = ref.GetWrap(t-1, x-1) + 1
			}
		}
	}
	c.Equal = func(T int) bool {
		for x := 0; x < nx; x++ {
			if *a.At(T, x) != *ref.At(T, x) {
				return false
			}
		}
		return true
	}
	c.Probe = func(t int, x ...int) float64 {
		return float64(*a.At(t, x...))
	}
	return c, nil
}
