package engine

import (
	apperrors "github.com/stencil-engine/pkg/errors"
	"github.com/stencil-engine/pkg/utils"
)

// BoundaryMode selects how a spatial axis behaves at the edges of the
// physical grid.
type BoundaryMode int

const (
	// NonPeriodic axes read a user-supplied default outside the grid.
	NonPeriodic BoundaryMode = iota
	// Periodic axes wrap modulo the physical extent.
	Periodic
	// KleinBottle axes wrap like periodic axes but mirror the partner
	// axis coordinate on every crossing.
	KleinBottle
)

// String returns the configuration name of the mode.
func (m BoundaryMode) String() string {
	switch m {
	case NonPeriodic:
		return "non-periodic"
	case Periodic:
		return "periodic"
	case KleinBottle:
		return "klein-bottle"
	default:
		return "unknown"
	}
}

// Kernel computes one grid cell at one time step. The coordinate slice
// holds x[0]..x[rank-1] with dimension 0 varying fastest; callees must
// not retain it past the call.
//
// The engine invokes the interior flavour with raw indices and the
// boundary flavour with indices already wrapped to the physical extent.
type Kernel func(t int, x []int)

// Config carries the tunables of an engine instance. The zero value of
// any field falls back to the default for that field.
type Config struct {
	// DtStop and DtStopBoundary stop the time recursion for interior
	// and boundary-touching zoids respectively.
	DtStop         int
	DtStopBoundary int
	// DxStop and DxStopBoundary stop the space recursion per dimension.
	DxStop         []int
	DxStopBoundary []int

	// Logger receives configuration-time diagnostics. The hot loop
	// never logs.
	Logger utils.Logger
}

// Default recursion cutoffs. Small boundary slabs keep the wrap
// arithmetic off the bulk of the grid.
const (
	DefaultDtStop         = 5
	DefaultDtStopBoundary = 5
	DefaultDxStop         = 100
	DefaultDxStopBoundary = 1
)

// Engine executes stencil updates over a fixed physical grid. Configure
// it once (shape, grids, boundary modes), then call Run, RunSerial,
// GenPlan or RunPlan any number of times.
type Engine struct {
	rank int
	cfg  Config

	shape     *Shape
	slope     [MaxRank]int
	timeShift int
	toggle    int

	phys     Grid
	physLen  [MaxRank]int
	logic    Grid
	boundary [MaxRank]BoundaryMode
	partner  [MaxRank]int

	// Boundary classification thresholds, derived from phys and slope.
	ulb [MaxRank]int
	uub [MaxRank]int
	lub [MaxRank]int

	dtStop         int
	dtStopBoundary int
	dxStop         [MaxRank]int
	dxStopBoundary [MaxRank]int

	shapeSet  bool
	gridSet   bool
	domainSet bool

	log utils.Logger
}

// New creates an engine of the given rank with the given tunables.
func New(rank int, cfg Config) (*Engine, error) {
	if rank < 1 || rank > MaxRank {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "rank %d out of range [1, %d]", rank, MaxRank)
	}
	e := &Engine{rank: rank, cfg: cfg, log: cfg.Logger}

	e.dtStop = cfg.DtStop
	if e.dtStop <= 0 {
		e.dtStop = DefaultDtStop
	}
	e.dtStopBoundary = cfg.DtStopBoundary
	if e.dtStopBoundary <= 0 {
		e.dtStopBoundary = DefaultDtStopBoundary
	}
	for i := 0; i < rank; i++ {
		e.dxStop[i] = DefaultDxStop
		e.dxStopBoundary[i] = DefaultDxStopBoundary
		if i < len(cfg.DxStop) && cfg.DxStop[i] > 0 {
			e.dxStop[i] = cfg.DxStop[i]
		}
		if i < len(cfg.DxStopBoundary) && cfg.DxStopBoundary[i] > 0 {
			e.dxStopBoundary[i] = cfg.DxStopBoundary[i]
		}
		// Default Klein partner: the next axis, cyclically.
		e.partner[i] = (i + 1) % rank
	}
	return e, nil
}

// Rank returns the spatial dimensionality.
func (e *Engine) Rank() int { return e.rank }

// Slope returns the registered slope along dimension i.
func (e *Engine) Slope(i int) int { return e.slope[i] }

// Toggle returns the number of time planes arrays must retain.
func (e *Engine) Toggle() int { return e.toggle }

// TimeShift returns the internal time offset applied by Run.
func (e *Engine) TimeShift() int { return e.timeShift }

// RegisterShape folds a shape's derived quantities into the engine.
// Shapes compose: slopes, toggle and time shift update monotonically.
func (e *Engine) RegisterShape(s *Shape) error {
	if s == nil {
		return apperrors.Wrap(apperrors.CodeInvalidShape, "nil shape", nil)
	}
	if s.Rank() != e.rank {
		return apperrors.Newf(apperrors.CodeInvalidShape, "shape rank %d, engine rank %d", s.Rank(), e.rank)
	}
	e.shape = s
	for i := 0; i < e.rank; i++ {
		e.slope[i] = max(e.slope[i], s.Slope(i))
	}
	e.timeShift = max(e.timeShift, s.TimeShift())
	e.toggle = max(e.toggle, s.Toggle())
	e.shapeSet = true
	if e.gridSet {
		e.setThresholds()
	}
	e.debugf("registered shape: slopes=%v timeShift=%d toggle=%d", e.slope[:e.rank], e.timeShift, e.toggle)
	return nil
}

// RegisterGrid sets the physical extents [x0[i], x1[i]) per dimension.
// The logic domain defaults to the whole physical grid.
func (e *Engine) RegisterGrid(x0, x1 []int) error {
	if len(x0) != e.rank || len(x1) != e.rank {
		return apperrors.Newf(apperrors.CodeExtentMismatch, "got %d/%d extents, want %d", len(x0), len(x1), e.rank)
	}
	for i := 0; i < e.rank; i++ {
		if x0[i] >= x1[i] {
			return apperrors.Newf(apperrors.CodeExtentMismatch, "dimension %d: empty extent [%d, %d)", i, x0[i], x1[i])
		}
		e.phys.X0[i] = x0[i]
		e.phys.X1[i] = x1[i]
		e.physLen[i] = x1[i] - x0[i]
	}
	e.gridSet = true
	if !e.domainSet {
		e.logic = e.phys
	}
	if e.shapeSet {
		e.setThresholds()
	}
	return nil
}

// RegisterDomain restricts the updated region to [lx0[i], lx1[i]) per
// dimension. Must lie within the physical grid.
func (e *Engine) RegisterDomain(lx0, lx1 []int) error {
	if !e.gridSet {
		return apperrors.Wrap(apperrors.CodeUnsetFlag, "register the physical grid before the domain", nil)
	}
	if len(lx0) != e.rank || len(lx1) != e.rank {
		return apperrors.Newf(apperrors.CodeExtentMismatch, "got %d/%d extents, want %d", len(lx0), len(lx1), e.rank)
	}
	for i := 0; i < e.rank; i++ {
		if lx0[i] < e.phys.X0[i] || lx1[i] > e.phys.X1[i] || lx0[i] >= lx1[i] {
			return apperrors.Newf(apperrors.CodeExtentMismatch, "dimension %d: domain [%d, %d) outside grid [%d, %d)",
				i, lx0[i], lx1[i], e.phys.X0[i], e.phys.X1[i])
		}
		e.logic.X0[i] = lx0[i]
		e.logic.X1[i] = lx1[i]
	}
	e.domainSet = true
	return nil
}

// SetBoundary selects the boundary mode of one axis.
func (e *Engine) SetBoundary(axis int, mode BoundaryMode) error {
	if axis < 0 || axis >= e.rank {
		return apperrors.Newf(apperrors.CodeInvalidInput, "axis %d out of range", axis)
	}
	if mode == KleinBottle && e.rank < 2 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "klein-bottle needs a partner axis", nil)
	}
	e.boundary[axis] = mode
	return nil
}

// SetKleinPartner overrides the axis mirrored when the given
// klein-bottle axis wraps.
func (e *Engine) SetKleinPartner(axis, partner int) error {
	if axis < 0 || axis >= e.rank || partner < 0 || partner >= e.rank || axis == partner {
		return apperrors.Newf(apperrors.CodeInvalidInput, "bad klein pairing %d/%d", axis, partner)
	}
	e.partner[axis] = partner
	return nil
}

func (e *Engine) setThresholds() {
	for i := 0; i < e.rank; i++ {
		e.ulb[i] = e.phys.X1[i] - e.slope[i]
		e.uub[i] = e.phys.X1[i] + e.slope[i]
		e.lub[i] = e.phys.X0[i] + e.slope[i]
	}
}

func (e *Engine) checkFlags() error {
	if !e.shapeSet {
		return apperrors.Wrap(apperrors.CodeUnsetFlag, "shape not registered", nil)
	}
	if !e.gridSet {
		return apperrors.Wrap(apperrors.CodeUnsetFlag, "physical grid not registered", nil)
	}
	return nil
}

// Run executes timesteps global time steps over the logic domain with
// the parallel scheduler. The boundary kernel bf receives indices
// already wrapped to the physical extent.
func (e *Engine) Run(timesteps int, f, bf Kernel) (err error) {
	if err = e.checkFlags(); err != nil {
		return err
	}
	defer recoverWalk(&err)
	w := &walker{e: e, f: f, bf: bf}
	w.bicutP(e.timeShift, timesteps+e.timeShift, e.logic)
	return nil
}

// RunSerial performs the identical decomposition without spawning any
// concurrent task; base cases execute in a deterministic order. Used
// for verification.
func (e *Engine) RunSerial(timesteps int, f, bf Kernel) (err error) {
	if err = e.checkFlags(); err != nil {
		return err
	}
	defer recoverWalk(&err)
	w := &walker{e: e, f: f, bf: bf, serial: true}
	w.bicutP(e.timeShift, timesteps+e.timeShift, e.logic)
	return nil
}

// recoverWalk converts fatal scheduler panics carrying an AppError
// (queue overflow, geometry violations) into returned errors. Anything
// else keeps propagating.
func recoverWalk(err *error) {
	if r := recover(); r != nil {
		if ae, ok := r.(*apperrors.AppError); ok {
			*err = ae
			return
		}
		panic(r)
	}
}

func (e *Engine) debugf(format string, args ...interface{}) {
	if e.log != nil {
		e.log.Debug(format, args...)
	}
}
