package engine

// baseCaseInterior advances the zoid one time step at a time, invoking
// the interior kernel on every point of the current slab, then stepping
// the edges by dx0/dx1. Rank-specialized loop nests keep dynamic
// dispatch out of the innermost loop.
func (e *Engine) baseCaseInterior(t0, t1 int, g Grid, f Kernel) {
	var xs [MaxRank]int
	pt := xs[:e.rank]
	for t := t0; t < t1; t++ {
		switch e.rank {
		case 1:
			for i := g.X0[0]; i < g.X1[0]; i++ {
				pt[0] = i
				f(t, pt)
			}
		case 2:
			for i := g.X0[1]; i < g.X1[1]; i++ {
				pt[1] = i
				for j := g.X0[0]; j < g.X1[0]; j++ {
					pt[0] = j
					f(t, pt)
				}
			}
		case 3:
			for i := g.X0[2]; i < g.X1[2]; i++ {
				pt[2] = i
				for j := g.X0[1]; j < g.X1[1]; j++ {
					pt[1] = j
					for k := g.X0[0]; k < g.X1[0]; k++ {
						pt[0] = k
						f(t, pt)
					}
				}
			}
		case 4:
			for i := g.X0[3]; i < g.X1[3]; i++ {
				pt[3] = i
				for j := g.X0[2]; j < g.X1[2]; j++ {
					pt[2] = j
					for k := g.X0[1]; k < g.X1[1]; k++ {
						pt[1] = k
						for l := g.X0[0]; l < g.X1[0]; l++ {
							pt[0] = l
							f(t, pt)
						}
					}
				}
			}
		}
		for i := 0; i < e.rank; i++ {
			g.X0[i] += g.DX0[i]
			g.X1[i] += g.DX1[i]
		}
	}
}

// baseCaseBoundary is the boundary-slab variant: every point is wrapped
// to the physical extent (with the Klein mirror applied per crossing)
// before the boundary kernel sees it.
func (e *Engine) baseCaseBoundary(t0, t1 int, g Grid, bf Kernel) {
	var raw, wrapped [MaxRank]int
	pt := raw[:e.rank]
	wp := wrapped[:e.rank]
	for t := t0; t < t1; t++ {
		switch e.rank {
		case 1:
			for i := g.X0[0]; i < g.X1[0]; i++ {
				pt[0] = i
				e.wrapPoint(pt, wp)
				bf(t, wp)
			}
		case 2:
			for i := g.X0[1]; i < g.X1[1]; i++ {
				pt[1] = i
				for j := g.X0[0]; j < g.X1[0]; j++ {
					pt[0] = j
					e.wrapPoint(pt, wp)
					bf(t, wp)
				}
			}
		case 3:
			for i := g.X0[2]; i < g.X1[2]; i++ {
				pt[2] = i
				for j := g.X0[1]; j < g.X1[1]; j++ {
					pt[1] = j
					for k := g.X0[0]; k < g.X1[0]; k++ {
						pt[0] = k
						e.wrapPoint(pt, wp)
						bf(t, wp)
					}
				}
			}
		case 4:
			for i := g.X0[3]; i < g.X1[3]; i++ {
				pt[3] = i
				for j := g.X0[2]; j < g.X1[2]; j++ {
					pt[2] = j
					for k := g.X0[1]; k < g.X1[1]; k++ {
						pt[1] = k
						for l := g.X0[0]; l < g.X1[0]; l++ {
							pt[0] = l
							e.wrapPoint(pt, wp)
							bf(t, wp)
						}
					}
				}
			}
		}
		for i := 0; i < e.rank; i++ {
			g.X0[i] += g.DX0[i]
			g.X1[i] += g.DX1[i]
		}
	}
}
