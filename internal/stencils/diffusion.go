package stencils

import (
	"github.com/stencil-engine/internal/array"
	"github.com/stencil-engine/internal/engine"
)

func init() {
	register("diffusion", NewDiffusion)
}

// NewDiffusion builds the 1D three-point diffusion stencil
// a[t, x] = (a[t-1, x-1] + a[t-1, x] + a[t-1, x+1]) / 3 in float64,
// wrapping periodically. A single seed of 3 spreads one cell per step.
func NewDiffusion(dims []int) (*Case, error) {
	if err := wantDims("diffusion", dims, 1); err != nil {
		return nil, err
	}
	shape, err := engine.NewShape(1, []engine.Offset{
		{Dt: 0, Dx: []int{0}},
		{Dt: -1, Dx: []int{-1}},
		{Dt: -1, Dx: []int{0}},
		{Dt: -1, Dx: []int{1}},
	})
	if err != nil {
		return nil, err
	}

	nx := dims[0]
	a := array.New[float64](dims, shape.Toggle())
	ref := array.New[float64](dims, shape.Toggle())

	c := &Case{
		Name:  "diffusion",
		Rank:  1,
		Dims:  dims,
		Shape: shape,
		Modes: []engine.BoundaryMode{engine.Periodic},
	}
	c.Kernel = func(t int, x []int) {
		*a.At(t, x[0]) = (*a.At(t-1, x[0]-1) + *a.At(t-1, x[0]) + *a.At(t-1, x[0]+1)) / 3
	}
	c.Boundary = func(t int, x []int) {
		*a.At(t, x[0]) = (a.GetWrap(t-1, x[0]-1) + a.GetWrap(t-1, x[0]) + a.GetWrap(t-1, x[0]+1)) / 3
	}
	seed := func(dst *array.Array[float64]) {
		for p := 0; p < shape.Toggle(); p++ {
			dst.FillPlane(p, 0)
		}
		*dst.At(0, 0) = 3
	}
	c.Reset = func() {
		seed(a)
		seed(ref)
	}
	c.Naive = func(T int) {
		for t := 1; t <= T; t++ {
			for x := 0; x < nx; x++ {
				*ref.At(t, x) = (ref.GetWrap(t-1, x-1) + ref.GetWrap(t-1, x) + ref.GetWrap(t-1, x+1)) / 3
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
