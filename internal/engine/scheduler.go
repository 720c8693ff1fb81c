package engine

import (
	"github.com/stencil-engine/pkg/collections"
	apperrors "github.com/stencil-engine/pkg/errors"
)

// walker drives one traversal of the space-time domain. The same
// decomposition serves three modes: parallel execution (default),
// strictly-serial execution (serial, for verification), and plan
// generation (serial with a recorder instead of kernels).
type walker struct {
	e      *Engine
	f, bf  Kernel
	serial bool
	rec    *recorder
}

// queueItem is one pending zoid in the space-cut staging buffers.
// level counts down through the dimensions; level < 0 marks a zoid cut
// on every dimension and ready to run this round.
type queueItem struct {
	level  int
	t0, t1 int
	g      Grid
}

// dimCut is the per-dimension cut analysis shared by the action
// selection and the staging loop.
type dimCut struct {
	lb, tb int
	thres  int
	cutLB  bool
	can    bool
}

// examine analyses dimension i of g over lt time steps. boundary picks
// the boundary cutoffs and enables the full-period ("initial cut")
// variant of the predicate.
func (w *walker) examine(i, lt int, g *Grid, boundary bool) dimCut {
	e := w.e
	d := dimCut{
		lb:    g.X1[i] - g.X0[i],
		tb:    g.X1[i] + g.DX1[i]*lt - g.X0[i] - g.DX0[i]*lt,
		cutLB: g.DX0[i] >= 0 && g.DX1[i] <= 0,
		thres: 2 * e.slope[i] * lt,
	}
	stop := e.dxStop[i]
	if boundary {
		stop = e.dxStopBoundary[i]
	}
	if d.cutLB {
		if boundary && d.lb == e.physLen[i] {
			// Initial cut: the begin and end points are excluded to
			// keep the boundary overhead off the full-width slice.
			d.can = d.lb-2*e.slope[i] >= 2*d.thres && d.lb > stop
		} else {
			d.can = d.lb >= 2*d.thres && d.lb > stop
		}
	} else {
		d.can = d.lb >= d.thres && d.tb > stop
	}
	return d
}

// bicut is the interior-region scheduler: pick base case, simultaneous
// space cut, one-dimensional fallback cut, or time cut.
func (w *walker) bicut(t0, t1 int, g Grid) {
	e := w.e
	lt := t1 - t0
	simCanCut, baseS := true, true
	largestDim, largestSize := -1, 0

	for i := e.rank - 1; i >= 0; i-- {
		d := w.examine(i, lt, &g, false)
		simCanCut = simCanCut && d.can
		size := d.lb
		if !d.cutLB {
			size = d.tb
		}
		if d.can && size > largestSize {
			largestDim, largestSize = i, size
		}
		if d.cutLB {
			baseS = baseS && d.lb <= e.dxStop[i]
		} else {
			baseS = baseS && d.tb <= e.dxStop[i]
		}
	}

	switch {
	case baseS || lt <= e.dtStop:
		w.leafInterior(t0, t1, g)
	case simCanCut:
		w.spaceCut(t0, t1, g)
	case largestSize > 0:
		w.oneSpaceCut(largestDim, t0, t1, g)
	default:
		halflt := lt / 2
		w.bicut(t0, t0+halflt, g)
		w.timeSync()
		w.bicut(t0+halflt, t1, g.Advance(e.rank, halflt))
	}
}

// bicutP is the boundary-region scheduler. touchBoundary may re-map the
// grid (past-the-upper-edge zoids), so all decisions run on the
// re-mapped copy.
func (w *walker) bicutP(t0, t1 int, g Grid) {
	e := w.e
	lt := t1 - t0
	callBoundary := false
	var touch [MaxRank]bool
	for i := e.rank - 1; i >= 0; i-- {
		touch[i] = e.touchBoundary(i, lt, &g)
		callBoundary = callBoundary || touch[i]
	}

	simCanCut, baseS := true, true
	largestDim, largestSize := -1, 0
	for i := e.rank - 1; i >= 0; i-- {
		d := w.examine(i, lt, &g, touch[i])
		simCanCut = simCanCut && d.can
		size := d.lb
		if !d.cutLB {
			size = d.tb
		}
		if d.can && size > largestSize {
			largestDim, largestSize = i, size
		}
		stop := e.dxStop[i]
		if touch[i] {
			stop = e.dxStopBoundary[i]
		}
		if d.cutLB {
			baseS = baseS && d.lb <= stop
		} else {
			baseS = baseS && d.tb <= stop
		}
	}

	dtStop := e.dtStop
	if callBoundary {
		dtStop = e.dtStopBoundary
	}

	switch {
	case baseS || lt <= dtStop:
		if callBoundary {
			w.leafBoundary(t0, t1, g)
		} else {
			w.leafInterior(t0, t1, g)
		}
	case simCanCut:
		if callBoundary {
			w.spaceCutP(t0, t1, g)
		} else {
			w.spaceCut(t0, t1, g)
		}
	case largestSize > 0:
		w.oneSpaceCutP(largestDim, t0, t1, g)
	default:
		halflt := lt / 2
		first := g
		if e.withinBoundary(t0, t0+halflt, &first) {
			w.bicut(t0, t0+halflt, first)
		} else {
			w.bicutP(t0, t0+halflt, first)
		}
		w.timeSync()
		second := g.Advance(e.rank, halflt)
		if e.withinBoundary(t0+halflt, t1, &second) {
			w.bicut(t0+halflt, t1, second)
		} else {
			w.bicutP(t0+halflt, t1, second)
		}
	}
}

// queueCap bounds the staging buffers: 2*3^rank pending zoids per
// buffer covers the worst-case fan-out of one simultaneous cut.
func queueCap(rank int) int {
	c := 2
	for i := 0; i < rank; i++ {
		c *= 3
	}
	return c
}

func (w *walker) push(q *collections.Ring[queueItem], it queueItem) {
	if !q.Push(it) {
		panic(apperrors.Newf(apperrors.CodeQueueOverflow, "staging queue full at %d items", q.Cap()))
	}
}

// spaceCut cuts every currently-cuttable dimension of an interior zoid
// before descending in time. Two staging buffers rotate: the "black"
// children of each per-dimension cut stay in the current round, the
// dependent "grey" middle and edge fixups move to the next round. All
// fully-cut zoids of a round run concurrently, then the round barrier.
func (w *walker) spaceCut(t0, t1 int, g Grid) {
	e := w.e
	q := [2]*collections.Ring[queueItem]{
		collections.NewRing[queueItem](queueCap(e.rank)),
		collections.NewRing[queueItem](queueCap(e.rank)),
	}
	w.push(q[0], queueItem{level: e.rank - 1, t0: t0, t1: t1, g: g})

	for dep := 0; dep < e.rank+1; dep++ {
		cur, next := q[dep&1], q[(dep+1)&1]
		var grp taskGroup
		for cur.Len() > 0 {
			it, _ := cur.Pop()
			if it.level < 0 {
				w.spawn(&grp, func() { w.bicut(it.t0, it.t1, it.g) })
				continue
			}
			lt := it.t1 - it.t0
			d := w.examine(it.level, lt, &it.g, false)
			if !d.can {
				it.level--
				w.push(cur, it)
				continue
			}
			w.cutDim(cur, next, it, d, false)
		}
		w.barrier(&grp)
	}
}

// spaceCutP is the boundary-region space cut: per-dimension analysis
// uses the boundary cutoffs for touching dimensions, full-period slices
// merge their edge triangles, and each leaf dispatches to the interior
// or boundary scheduler after classification.
func (w *walker) spaceCutP(t0, t1 int, g Grid) {
	e := w.e
	q := [2]*collections.Ring[queueItem]{
		collections.NewRing[queueItem](queueCap(e.rank)),
		collections.NewRing[queueItem](queueCap(e.rank)),
	}
	w.push(q[0], queueItem{level: e.rank - 1, t0: t0, t1: t1, g: g})

	for dep := 0; dep < e.rank+1; dep++ {
		cur, next := q[dep&1], q[(dep+1)&1]
		var grp taskGroup
		for cur.Len() > 0 {
			it, _ := cur.Pop()
			if it.level < 0 {
				lg := it.g
				if e.withinBoundary(it.t0, it.t1, &lg) {
					w.spawn(&grp, func() { w.bicut(it.t0, it.t1, lg) })
				} else {
					w.spawn(&grp, func() { w.bicutP(it.t0, it.t1, lg) })
				}
				continue
			}
			lt := it.t1 - it.t0
			probe := it.g
			touches := e.touchBoundary(it.level, lt, &probe)
			d := w.examine(it.level, lt, &it.g, touches)
			if !d.can {
				it.level--
				w.push(cur, it)
				continue
			}
			w.cutDim(cur, next, it, d, true)
		}
		w.barrier(&grp)
	}
}

// cutDim emits the children of one per-dimension cut. For an upright
// trapezoid (cutLB) the two black children go into the current round
// and the grey middle plus edge fixups into the next; a full-period
// boundary slice instead merges the right grey with the lower-edge
// triangle. Inverted trapezoids keep one body child now and the two
// side fixups next round.
func (w *walker) cutDim(cur, next *collections.Ring[queueItem], it queueItem, d dimCut, boundary bool) {
	e := w.e
	l := it.level
	s := e.slope[l]
	father := it.g
	child := father

	if d.cutLB {
		initial := boundary && d.lb == e.physLen[l]
		sep := d.lb / 2
		start, end := father.X0[l], father.X1[l]
		if initial {
			sep = (d.lb - 2*s) / 2
			start = father.X0[l] + s
			end = father.X1[l] - s
		}

		child.X0[l], child.DX0[l] = start, s
		child.X1[l], child.DX1[l] = start+sep, -s
		w.push(cur, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})

		child.X0[l], child.DX0[l] = start+sep, s
		child.X1[l], child.DX1[l] = end, -s
		w.push(cur, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})

		child.X0[l], child.DX0[l] = start+sep, -s
		child.X1[l], child.DX1[l] = start+sep, s
		w.push(next, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})

		if initial {
			// Merge triangles: the right grey and the mirror-image
			// triangle at the lower edge fold into one child.
			child.X0[l], child.DX0[l] = end, -s
			child.X1[l], child.DX1[l] = end+2*s, s
			w.push(next, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})
		} else {
			if father.DX0[l] != s {
				child.X0[l], child.DX0[l] = start, father.DX0[l]
				child.X1[l], child.DX1[l] = start, s
				w.push(next, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})
			}
			if father.DX1[l] != -s {
				child.X0[l], child.DX0[l] = end, -s
				child.X1[l], child.DX1[l] = end, father.DX1[l]
				w.push(next, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})
			}
		}
	} else {
		start, end := father.X0[l], father.X1[l]

		child.X0[l], child.DX0[l] = start, s
		child.X1[l], child.DX1[l] = end, -s
		w.push(cur, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})

		child.X0[l], child.DX0[l] = start, father.DX0[l]
		child.X1[l], child.DX1[l] = start, s
		w.push(next, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})

		child.X0[l], child.DX0[l] = end, -s
		child.X1[l], child.DX1[l] = end, father.DX1[l]
		w.push(next, queueItem{level: l - 1, t0: it.t0, t1: it.t1, g: child})
	}
}

// leafInterior executes (or records) an interior base case.
func (w *walker) leafInterior(t0, t1 int, g Grid) {
	if w.rec != nil {
		w.rec.Add(RegionInterior, t0, t1, g)
		return
	}
	w.e.baseCaseInterior(t0, t1, g, w.f)
}

// leafBoundary executes (or records) a boundary base case.
func (w *walker) leafBoundary(t0, t1 int, g Grid) {
	if w.rec != nil {
		w.rec.Add(RegionBoundary, t0, t1, g)
		return
	}
	w.e.baseCaseBoundary(t0, t1, g, w.bf)
}
