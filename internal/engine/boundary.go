package engine

// touchBoundary classifies the grid along dimension i for a zoid
// advancing lt steps. A zoid lying entirely past the upper edge is
// re-mapped in place: shifted down by one period, or put through the
// Klein twist when the axis is so configured. After a re-map the zoid
// counts as interior on that dimension.
func (e *Engine) touchBoundary(i, lt int, g *Grid) bool {
	if g.X0[i] >= e.uub[i] && g.X0[i]+g.DX0[i]*lt >= e.uub[i] {
		if e.boundary[i] == KleinBottle {
			e.kleinRegion(i, g)
		} else {
			g.X0[i] -= e.physLen[i]
			g.X1[i] -= e.physLen[i]
		}
		return false
	}
	if g.X1[i] <= e.ulb[i] && g.X1[i]+g.DX1[i]*lt <= e.ulb[i] &&
		g.X0[i] >= e.lub[i] && g.X0[i]+g.DX0[i]*lt >= e.lub[i] {
		return false
	}
	return true
}

// withinBoundary reports whether the zoid is interior on every
// dimension. Like touchBoundary it may re-map a past-the-edge grid in
// place, so callers dispatch on the (possibly re-mapped) grid.
func (e *Engine) withinBoundary(t0, t1 int, g *Grid) bool {
	touch := false
	lt := t1 - t0
	for i := 0; i < e.rank; i++ {
		touch = e.touchBoundary(i, lt, g) || touch
	}
	return !touch
}

// kleinRegion maps a zoid entirely past the upper edge of klein axis i
// back into the grid: the axis shifts down by one period and the
// partner axis interval is mirrored, with its edge slopes swapped and
// negated so the mirrored walls keep their meaning.
func (e *Engine) kleinRegion(i int, g *Grid) {
	g.X0[i] -= e.physLen[i]
	g.X1[i] -= e.physLen[i]

	p := e.partner[i]
	lo, hi := e.phys.X0[p], e.phys.X1[p]
	x0, x1 := g.X0[p], g.X1[p]
	dx0, dx1 := g.DX0[p], g.DX1[p]
	g.X0[p] = lo + hi - x1
	g.X1[p] = lo + hi - x0
	g.DX0[p] = -dx1
	g.DX1[p] = -dx0
}

// pmodLU wraps x into [lo, hi).
func pmodLU(x, lo, hi int) int {
	period := hi - lo
	r := (x - lo) % period
	if r < 0 {
		r += period
	}
	return lo + r
}

// floorDiv returns floor(a / b) for b > 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// wrapPoint maps the raw point in to physical coordinates in out.
// Every axis wraps modulo its extent; for each klein axis crossed an
// odd number of times, the partner coordinate is mirrored afterwards.
func (e *Engine) wrapPoint(in, out []int) {
	var flip [MaxRank]bool
	for i := 0; i < e.rank; i++ {
		lo, hi := e.phys.X0[i], e.phys.X1[i]
		x := in[i]
		if x >= lo && x < hi {
			out[i] = x
			continue
		}
		q := floorDiv(x-lo, hi-lo)
		out[i] = x - q*e.physLen[i]
		if e.boundary[i] == KleinBottle && q&1 != 0 {
			p := e.partner[i]
			flip[p] = !flip[p]
		}
	}
	for i := 0; i < e.rank; i++ {
		if flip[i] {
			out[i] = e.phys.X0[i] + e.phys.X1[i] - 1 - out[i]
		}
	}
}
