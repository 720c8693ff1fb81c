package stencils

import (
	"math/rand"

	"github.com/stencil-engine/internal/array"
	"github.com/stencil-engine/internal/engine"
)

func init() {
	register("heat", NewHeat2D)
}

// NewHeat2D builds the 2D heat relaxation
//
//	a[t, j, i] = 0.125*(a[t-1, j+1, i] - 2*a[t-1, j, i] + a[t-1, j-1, i])
//	           + 0.125*(a[t-1, j, i+1] - 2*a[t-1, j, i] + a[t-1, j, i-1])
//	           + a[t-1, j, i]
//
// on a non-periodic grid whose outer ring is clamped to zero; only the
// inner region is updated. Cells hold float64, so verification compares
// against the reference loop bit-for-bit (both run the same ordered
// per-cell arithmetic).
func NewHeat2D(dims []int) (*Case, error) {
	if err := wantDims("heat", dims, 2); err != nil {
		return nil, err
	}
	shape, err := engine.NewShape(2, []engine.Offset{
		{Dt: 0, Dx: []int{0, 0}},
		{Dt: -1, Dx: []int{0, 0}},
		{Dt: -1, Dx: []int{-1, 0}},
		{Dt: -1, Dx: []int{1, 0}},
		{Dt: -1, Dx: []int{0, -1}},
		{Dt: -1, Dx: []int{0, 1}},
	})
	if err != nil {
		return nil, err
	}

	nx, ny := dims[0], dims[1]
	a := array.New[float64](dims, shape.Toggle())
	ref := array.New[float64](dims, shape.Toggle())

	point := func(dst *array.Array[float64], t, j, i int) {
		c := *dst.At(t-1, j, i)
		*dst.At(t, j, i) = 0.125*(*dst.At(t-1, j+1, i)-2*c+*dst.At(t-1, j-1, i)) +
			0.125*(*dst.At(t-1, j, i+1)-2*c+*dst.At(t-1, j, i-1)) + c
	}

	c := &Case{
		Name:    "heat",
		Rank:    2,
		Dims:    dims,
		Shape:   shape,
		Modes:   []engine.BoundaryMode{engine.NonPeriodic, engine.NonPeriodic},
		LogicX0: []int{1, 1},
		LogicX1: []int{nx - 1, ny - 1},
	}
	c.Kernel = func(t int, x []int) {
		point(a, t, x[0], x[1])
	}
	// The logic domain excludes the clamped ring, so neighbor reads
	// stay in bounds even on boundary slabs.
	c.Boundary = c.Kernel
	seed := func(dst *array.Array[float64]) {
		rng := rand.New(rand.NewSource(42))
		for j := 0; j < nx; j++ {
			for i := 0; i < ny; i++ {
				v := 0.0
				if j > 0 && j < nx-1 && i > 0 && i < ny-1 {
					v = float64(rng.Intn(1024))
				}
				*dst.At(0, j, i) = v
				*dst.At(1, j, i) = 0
			}
		}
	}
	c.Reset = func() {
		seed(a)
		seed(ref)
	}
	c.Naive = func(T int) {
		for t := 1; t <= T; t++ {
			for j := 1; j < nx-1; j++ {
				for i := 1; i < ny-1; i++ {
					point(ref, t, j, i)
				}
			}
		}
	}
	c.Equal = func(T int) bool {
		for j := 1; j < nx-1; j++ {
			for i := 1; i < ny-1; i++ {
				if *a.At(T, j, i) != *ref.At(T, j, i) {
					return false
				}
			}
		}
		return true
	}
	c.Probe = func(t int, x ...int) float64 {
		return *a.At(t, x...)
	}
	return c, nil
}
