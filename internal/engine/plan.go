package engine

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/stencil-engine/pkg/errors"
)

// Region identifiers carried by plan records.
const (
	RegionInterior = 0
	RegionBoundary = 1
)

// EndSync is the sentinel terminating the sync sequence in a plan file.
const EndSync = -(1 << 30)

// PlanRecord is one recorded base case.
type PlanRecord struct {
	Region int
	T0, T1 int
	G      Grid
}

// Plan is the result of a dry run: the base cases in dependence-safe
// order plus the strictly-increasing indices at which replay must
// barrier. Base cases between two consecutive sync points are mutually
// independent and replay concurrently.
type Plan struct {
	Rank int
	Base []PlanRecord
	Sync []int
}

// Validate checks the structural invariants a loaded plan must satisfy.
func (p *Plan) Validate() error {
	if p.Rank < 1 || p.Rank > MaxRank {
		return apperrors.Newf(apperrors.CodeBadPlan, "rank %d out of range", p.Rank)
	}
	prev := 0
	for _, s := range p.Sync {
		if s <= prev {
			return apperrors.Newf(apperrors.CodeBadPlan, "sync index %d not increasing past %d", s, prev)
		}
		if s > len(p.Base) {
			return apperrors.Newf(apperrors.CodeBadPlan, "sync index %d past %d base records", s, len(p.Base))
		}
		prev = s
	}
	if len(p.Base) > 0 && len(p.Sync) == 0 {
		return apperrors.Wrap(apperrors.CodeBadPlan, "base records without sync points", nil)
	}
	if len(p.Sync) > 0 && p.Sync[len(p.Sync)-1] != len(p.Base) {
		return apperrors.Newf(apperrors.CodeBadPlan, "plan tail not closed: last sync %d, %d base records",
			p.Sync[len(p.Sync)-1], len(p.Base))
	}
	for i, r := range p.Base {
		if r.Region != RegionInterior && r.Region != RegionBoundary {
			return apperrors.Newf(apperrors.CodeBadPlan, "record %d: unknown region id %d", i, r.Region)
		}
		if r.T0 >= r.T1 {
			return apperrors.Newf(apperrors.CodeBadPlan, "record %d: empty time interval [%d, %d)", i, r.T0, r.T1)
		}
		if !r.G.NonInverting(p.Rank, r.T1-r.T0) {
			return apperrors.Newf(apperrors.CodeBadPlan, "record %d: inverting zoid", i)
		}
	}
	return nil
}

// recorder accumulates base cases and sync points during a plan
// generation walk. Sync marks coincide with the scheduler's barriers;
// empty rounds are elided.
type recorder struct {
	base []PlanRecord
	sync []int
	mark int
}

func (r *recorder) Add(region, t0, t1 int, g Grid) {
	if t0 >= t1 {
		return
	}
	r.base = append(r.base, PlanRecord{Region: region, T0: t0, T1: t1, G: g})
}

func (r *recorder) Sync() {
	if len(r.base) > r.mark {
		r.sync = append(r.sync, len(r.base))
		r.mark = len(r.base)
	}
}

// GenPlan records the decisions of a dry run into a replayable plan:
// the scheduler walks the full decomposition, but each base case is
// recorded instead of executed and each barrier becomes a sync point.
func (e *Engine) GenPlan(timesteps int) (p *Plan, err error) {
	if err = e.checkFlags(); err != nil {
		return nil, err
	}
	defer recoverWalk(&err)

	rec := &recorder{}
	w := &walker{e: e, serial: true, rec: rec}
	w.bicutP(e.timeShift, timesteps+e.timeShift, e.logic)
	rec.Sync()
	return &Plan{Rank: e.rank, Base: rec.base, Sync: rec.sync}, nil
}

// RunPlan replays a plan: all base cases of a segment run concurrently,
// then the barrier, then the next segment.
func (e *Engine) RunPlan(p *Plan, f, bf Kernel) error {
	if err := e.checkFlags(); err != nil {
		return err
	}
	if p == nil {
		return apperrors.Wrap(apperrors.CodeBadPlan, "nil plan", nil)
	}
	if p.Rank != e.rank {
		return apperrors.Newf(apperrors.CodeBadPlan, "plan rank %d, engine rank %d", p.Rank, e.rank)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	offset := 0
	for _, s := range p.Sync {
		var grp errgroup.Group
		grp.SetLimit(runtime.NumCPU())
		for _, rec := range p.Base[offset:s] {
			grp.Go(func() error {
				if rec.Region == RegionBoundary {
					e.baseCaseBoundary(rec.T0, rec.T1, rec.G, bf)
				} else {
					e.baseCaseInterior(rec.T0, rec.T1, rec.G, f)
				}
				return nil
			})
		}
		if err := grp.Wait(); err != nil {
			return err
		}
		offset = s
	}
	return nil
}
