package stencils

import (
	"github.com/stencil-engine/internal/array"
	"github.com/stencil-engine/internal/engine"
)

func init() {
	register("kleinshift", NewKleinShift)
}

// NewKleinShift builds a 2D translation stencil
// a[t, j, i] = a[t-1, j-1, i-1] on a grid glued as a Klein bottle along
// dimension 1: crossing that edge mirrors the dimension-0 coordinate.
// A pattern pushed through the glued edge comes back flipped.
func NewKleinShift(dims []int) (*Case, error) {
	if err := wantDims("kleinshift", dims, 2); err != nil {
		return nil, err
	}
	shape, err := engine.NewShape(2, []engine.Offset{
		{Dt: 0, Dx: []int{0, 0}},
		{Dt: -1, Dx: []int{-1, -1}},
	})
	if err != nil {
		return nil, err
	}

	n0, n1 := dims[0], dims[1]
	a := array.New[int](dims, shape.Toggle())
	ref := array.New[int](dims, shape.Toggle())

	// get reads (t, j, i) honoring the gluing: dimension 0 is
	// periodic; crossing dimension 1 wraps and mirrors dimension 0.
	get := func(dst *array.Array[int], t, j, i int) int {
		if j < 0 {
			j += n0
		} else if j >= n0 {
			j -= n0
		}
		if i < 0 {
			i += n1
			j = n0 - 1 - j
		} else if i >= n1 {
			i -= n1
			j = n0 - 1 - j
		}
		return *dst.At(t, j, i)
	}

	c := &Case{
		Name:     "kleinshift",
		Rank:     2,
		Dims:     dims,
		Shape:    shape,
		Modes:    []engine.BoundaryMode{engine.Periodic, engine.KleinBottle},
		Partners: map[int]int{1: 0},
	}
	c.Kernel = func(t int, x []int) {
		*a.At(t, x[0], x[1]) = *a.At(t-1, x[0]-1, x[1]-1)
	}
	c.Boundary = func(t int, x []int) {
		*a.At(t, x[0], x[1]) = get(a, t-1, x[0]-1, x[1]-1)
	}
	seed := func(dst *array.Array[int]) {
		for p := 0; p < shape.Toggle(); p++ {
			dst.FillPlane(p, 0)
		}
		// An L-shaped, chirality-revealing pattern.
		*dst.At(0, 0, 0) = 1
		*dst.At(0, 1, 0) = 2
		*dst.At(0, 0, 1) = 3
	}
	c.Reset = func() {
		seed(a)
		seed(ref)
	}
	c.Naive = func(T int) {
		for t := 1; t <= T; t++ {
			for j := 0; j < n0; j++ {
				for i := 0; i < n1; i++ {
					*ref.At(t, j, i) = get(ref, t-1, j-1, i-1)
				}
			}
		}
	}
	c.Equal = func(T int) bool {
		for j := 0; j < n0; j++ {
			for i := 0; i < n1; i++ {
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
