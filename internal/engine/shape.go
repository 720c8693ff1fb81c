// Package engine implements a cache-oblivious parallel stencil execution
// engine. It decomposes the space-time iteration domain into trapezoids
// ("zoids"), recursively cutting them in space and time so that base cases
// fit in cache, and schedules independent sub-zoids on concurrent tasks
// while preserving the data-dependence order implied by the stencil shape.
package engine

import (
	apperrors "github.com/stencil-engine/pkg/errors"
)

// MaxRank is the highest spatial dimensionality the engine supports.
// Time is handled separately.
const MaxRank = 4

// Offset is one relative space-time cell read by a kernel invocation:
// the kernel writing cell (t, x) reads (t+Dt, x+Dx).
type Offset struct {
	Dt int
	Dx []int
}

// Shape is the set of offsets a kernel reads, together with the derived
// quantities the scheduler needs: per-dimension slopes, the number of
// time planes an array must retain (toggle), and the time shift that
// re-bases the kernel onto non-negative time offsets.
type Shape struct {
	rank    int
	offsets []Offset

	slopes    [MaxRank]int
	timeShift int
	toggle    int
}

// NewShape derives slopes, time shift and toggle from the given offsets.
//
// Offsets with Dt > 0 would read the future and are rejected, as is an
// empty offset set. A shape whose offsets all share a single Dt carries
// no usable time extent and is rejected as degenerate.
func NewShape(rank int, offsets []Offset) (*Shape, error) {
	if rank < 1 || rank > MaxRank {
		return nil, apperrors.Newf(apperrors.CodeInvalidShape, "rank %d out of range [1, %d]", rank, MaxRank)
	}
	if len(offsets) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidShape, "empty offset set", nil)
	}

	s := &Shape{rank: rank}
	if err := s.merge(offsets); err != nil {
		return nil, err
	}
	return s, nil
}

// Merge unions another offset set into the shape. The derived slopes,
// time shift and toggle only ever grow.
func (s *Shape) Merge(offsets []Offset) error {
	return s.merge(offsets)
}

func (s *Shape) merge(offsets []Offset) error {
	if len(offsets) == 0 {
		return apperrors.Wrap(apperrors.CodeInvalidShape, "empty offset set", nil)
	}

	tmin, tmax := offsets[0].Dt, offsets[0].Dt
	for _, o := range offsets {
		if len(o.Dx) != s.rank {
			return apperrors.Newf(apperrors.CodeInvalidShape, "offset has %d spatial components, want %d", len(o.Dx), s.rank)
		}
		if o.Dt > 0 {
			return apperrors.Newf(apperrors.CodeInvalidShape, "offset reads the future (dt=%d)", o.Dt)
		}
		tmin = min(tmin, o.Dt)
		tmax = max(tmax, o.Dt)
	}
	if tmax == tmin {
		return apperrors.Wrap(apperrors.CodeDegenerateShape, "all offsets share one time level", nil)
	}

	depth := tmax - tmin
	s.timeShift = max(s.timeShift, -tmin)
	s.toggle = max(s.toggle, depth+1)

	for _, o := range offsets {
		for i := 0; i < s.rank; i++ {
			if o.Dt == tmax {
				continue
			}
			// Maximum spatial displacement per time step, rounded up.
			denom := tmax - o.Dt
			s.slopes[i] = max(s.slopes[i], (abs(o.Dx[i])+denom-1)/denom)
		}
	}

	s.offsets = append(s.offsets, offsets...)
	return nil
}

// Rank returns the spatial dimensionality the shape was built for.
func (s *Shape) Rank() int { return s.rank }

// Slope returns the maximum per-step displacement along dimension i.
func (s *Shape) Slope(i int) int { return s.slopes[i] }

// TimeShift returns the offset added to internal time so every read
// lands on a non-negative plane.
func (s *Shape) TimeShift() int { return s.timeShift }

// Toggle returns the number of distinct time planes an array must store.
func (s *Shape) Toggle() int { return s.toggle }

// Offsets returns the accumulated offset set.
func (s *Shape) Offsets() []Offset { return s.offsets }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
