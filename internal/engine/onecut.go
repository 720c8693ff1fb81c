package engine

// oneSpaceCut is the fallback taken when the simultaneous cut fails but
// one dimension is still large enough: cut just that dimension, run the
// independent children concurrently, then the dependent ones.
func (w *walker) oneSpaceCut(dim, t0, t1 int, g Grid) {
	e := w.e
	s := e.slope[dim]
	child := g
	cutLB := g.DX0[dim] >= 0 && g.DX1[dim] <= 0

	if cutLB {
		lb := g.X1[dim] - g.X0[dim]
		sep := lb / 2
		start, end := g.X0[dim], g.X1[dim]

		var blacks taskGroup
		child.X0[dim], child.DX0[dim] = start, s
		child.X1[dim], child.DX1[dim] = start+sep, -s
		left := child
		w.spawn(&blacks, func() { w.bicut(t0, t1, left) })

		child.X0[dim], child.DX0[dim] = start+sep, s
		child.X1[dim], child.DX1[dim] = end, -s
		right := child
		w.spawn(&blacks, func() { w.bicut(t0, t1, right) })
		w.barrier(&blacks)

		var greys taskGroup
		child.X0[dim], child.DX0[dim] = start+sep, -s
		child.X1[dim], child.DX1[dim] = start+sep, s
		mid := child
		w.spawn(&greys, func() { w.bicut(t0, t1, mid) })

		if g.DX0[dim] != s {
			child.X0[dim], child.DX0[dim] = start, g.DX0[dim]
			child.X1[dim], child.DX1[dim] = start, s
			lf := child
			w.spawn(&greys, func() { w.bicut(t0, t1, lf) })
		}
		if g.DX1[dim] != -s {
			child.X0[dim], child.DX0[dim] = end, -s
			child.X1[dim], child.DX1[dim] = end, g.DX1[dim]
			rf := child
			w.spawn(&greys, func() { w.bicut(t0, t1, rf) })
		}
		w.barrier(&greys)
		return
	}

	// Inverted trapezoid: one body child now, two side fixups after.
	start, end := g.X0[dim], g.X1[dim]

	var body taskGroup
	child.X0[dim], child.DX0[dim] = start, s
	child.X1[dim], child.DX1[dim] = end, -s
	b := child
	w.spawn(&body, func() { w.bicut(t0, t1, b) })
	w.barrier(&body)

	var sides taskGroup
	child.X0[dim], child.DX0[dim] = start, g.DX0[dim]
	child.X1[dim], child.DX1[dim] = start, s
	lf := child
	w.spawn(&sides, func() { w.bicut(t0, t1, lf) })

	child.X0[dim], child.DX0[dim] = end, -s
	child.X1[dim], child.DX1[dim] = end, g.DX1[dim]
	rf := child
	w.spawn(&sides, func() { w.bicut(t0, t1, rf) })
	w.barrier(&sides)
}

// oneSpaceCutP is the boundary-region variant of oneSpaceCut: each
// child is classified and dispatched to the interior or boundary
// scheduler.
func (w *walker) oneSpaceCutP(dim, t0, t1 int, g Grid) {
	e := w.e
	s := e.slope[dim]
	child := g
	cutLB := g.DX0[dim] >= 0 && g.DX1[dim] <= 0

	dispatch := func(grp *taskGroup, cg Grid) {
		if e.withinBoundary(t0, t1, &cg) {
			w.spawn(grp, func() { w.bicut(t0, t1, cg) })
		} else {
			w.spawn(grp, func() { w.bicutP(t0, t1, cg) })
		}
	}

	if cutLB {
		lb := g.X1[dim] - g.X0[dim]
		sep := lb / 2
		start, end := g.X0[dim], g.X1[dim]

		var blacks taskGroup
		child.X0[dim], child.DX0[dim] = start, s
		child.X1[dim], child.DX1[dim] = start+sep, -s
		dispatch(&blacks, child)

		child.X0[dim], child.DX0[dim] = start+sep, s
		child.X1[dim], child.DX1[dim] = end, -s
		dispatch(&blacks, child)
		w.barrier(&blacks)

		var greys taskGroup
		child.X0[dim], child.DX0[dim] = start+sep, -s
		child.X1[dim], child.DX1[dim] = start+sep, s
		dispatch(&greys, child)

		if g.DX0[dim] != s {
			child.X0[dim], child.DX0[dim] = start, g.DX0[dim]
			child.X1[dim], child.DX1[dim] = start, s
			dispatch(&greys, child)
		}
		if g.DX1[dim] != -s {
			child.X0[dim], child.DX0[dim] = end, -s
			child.X1[dim], child.DX1[dim] = end, g.DX1[dim]
			dispatch(&greys, child)
		}
		w.barrier(&greys)
		return
	}

	start, end := g.X0[dim], g.X1[dim]

	var body taskGroup
	child.X0[dim], child.DX0[dim] = start, s
	child.X1[dim], child.DX1[dim] = end, -s
	dispatch(&body, child)
	w.barrier(&body)

	var sides taskGroup
	child.X0[dim], child.DX0[dim] = start, g.DX0[dim]
	child.X1[dim], child.DX1[dim] = start, s
	dispatch(&sides, child)

	child.X0[dim], child.DX0[dim] = end, -s
	child.X1[dim], child.DX1[dim] = end, g.DX1[dim]
	dispatch(&sides, child)
	w.barrier(&sides)
}
