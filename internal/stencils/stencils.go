// Package stencils bundles the sample stencil programs shipped with the
// CLI: each case wires a shape, an interior and a boundary kernel over
// its own arrays, plus the naive reference loop used for verification.
package stencils

import (
	"sort"

	"github.com/stencil-engine/internal/engine"
	apperrors "github.com/stencil-engine/pkg/errors"
)

// Case is one runnable sample stencil. Kernel and Boundary close over
// the case's primary array; Naive runs the reference nested loop over a
// twin array, and Equal compares the two at the final time level.
type Case struct {
	Name string
	Rank int
	Dims []int

	Shape    *engine.Shape
	Modes    []engine.BoundaryMode
	Partners map[int]int

	// LogicX0/LogicX1 restrict the updated region; nil means the whole
	// grid.
	LogicX0, LogicX1 []int

	Kernel   engine.Kernel
	Boundary engine.Kernel

	// Reset re-initializes both arrays to the initial condition.
	Reset func()
	// Naive advances the reference array T steps with the plain
	// nested loop.
	Naive func(T int)
	// Equal reports whether the engine result matches the reference
	// at the final time level of a T-step run.
	Equal func(T int) bool
	// Probe reads one cell of the engine's array, as a float64.
	Probe func(t int, x ...int) float64
}

// Points returns the number of cells updated per time step.
func (c *Case) Points() int {
	n := 1
	for i, d := range c.Dims {
		if c.LogicX0 != nil && c.LogicX1 != nil {
			d = c.LogicX1[i] - c.LogicX0[i]
		}
		n *= d
	}
	return n
}

// Build constructs an engine configured for the case.
func (c *Case) Build(cfg engine.Config) (*engine.Engine, error) {
	e, err := engine.New(c.Rank, cfg)
	if err != nil {
		return nil, err
	}
	if err := e.RegisterShape(c.Shape); err != nil {
		return nil, err
	}
	x0 := make([]int, c.Rank)
	x1 := make([]int, c.Rank)
	for i := 0; i < c.Rank; i++ {
		x1[i] = c.Dims[i]
	}
	if err := e.RegisterGrid(x0, x1); err != nil {
		return nil, err
	}
	for i, m := range c.Modes {
		if err := e.SetBoundary(i, m); err != nil {
			return nil, err
		}
	}
	for axis, partner := range c.Partners {
		if err := e.SetKleinPartner(axis, partner); err != nil {
			return nil, err
		}
	}
	if c.LogicX0 != nil && c.LogicX1 != nil {
		if err := e.RegisterDomain(c.LogicX0, c.LogicX1); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Factory builds a case for the given per-dimension extents.
type Factory func(dims []int) (*Case, error)

var registry = map[string]Factory{}

func register(name string, f Factory) {
	registry[name] = f
}

// Lookup resolves a registered case factory by name.
func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "unknown stencil %q", name)
	}
	return f, nil
}

// Names lists the registered cases in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func wantDims(name string, dims []int, rank int) error {
	if len(dims) != rank {
		return apperrors.Newf(apperrors.CodeInvalidInput, "%s needs %d dimension(s), got %d", name, rank, len(dims))
	}
	for _, d := range dims {
		if d <= 0 {
			return apperrors.Newf(apperrors.CodeInvalidInput, "%s: non-positive extent %d", name, d)
		}
	}
	return nil
}
