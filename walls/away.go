package walls

import "arena-server/geom"

// stepOff is the one click step perpendicular to seg that leaves it on
// the side its outward normal points to.
func stepOff(d geom.Vec) (int, int) {
	if geom.Abs(d.X) >= geom.Abs(d.Y) {
		return 0, -geom.Sign(d.X)
	}
	return geom.Sign(d.Y), 0
}

// straddles reports whether a line from (lsx, lsy) with delta d spans
// both coordinates of (x, y).
func straddles(lsx, lsy int, d geom.Vec, x, y int) bool {
	if lsx < x && lsx+d.X < x || lsx > x && lsx+d.X > x {
		return false
	}
	if lsy < y && lsy+d.Y < y || lsy > y && lsy+d.Y > y {
		return false
	}
	return true
}

// blocksStep reports whether stepping from the origin by (dx, dy) would
// put the point on or across the line at (lsx, lsy).
func blocksStep(seg *geom.Segment, lsx, lsy, dx, dy int) bool {
	if !straddles(lsx, lsy, seg.Delta, dx, dy) {
		return false
	}
	res := seg.Side(lsx-dx, lsy-dy)
	if res != 0 && (res > 0) == (seg.Side(lsx, lsy) > 0) {
		return false
	}
	if res != 0 && !straddles(lsx, lsy, seg.Delta, 0, 0) {
		return false
	}
	return true
}

// Away steps a point that has just stopped against line one click off
// it. It returns -1 after moving mv.Start, or the other line that makes
// the step impossible, meaning the point sits in a corner.
func (ix *Index) Away(mv *Move, line int) int {
	l := &ix.segs[line]
	lsx := ix.bounds.CenterX(l.Start.X - mv.Start.X)
	lsy := ix.bounds.CenterY(l.Start.Y - mv.Start.Y)
	dx, dy := stepOff(l.Delta)

	if nearEnds(lsx, lsy, l.Delta) {
		for _, i := range ix.cells[ix.cellIndex(mv.Start.X, mv.Start.Y)].Lines {
			if int(i) == line {
				continue
			}
			seg := &ix.segs[i]
			if ix.masked(seg.Group, mv.HitMask) {
				continue
			}
			sx := ix.bounds.CenterX(seg.Start.X - mv.Start.X)
			sy := ix.bounds.CenterY(seg.Start.Y - mv.Start.Y)
			if !nearEnds(sx, sy, seg.Delta) {
				continue
			}
			if blocksStep(seg, sx, sy, dx, dy) {
				return int(i)
			}
		}
	}
	mv.Start.X = ix.bounds.WrapX(mv.Start.X + dx)
	mv.Start.Y = ix.bounds.WrapY(mv.Start.Y + dy)
	return -1
}

// nearEnds reports whether either end of a line lies within the
// separation distance of the origin.
func nearEnds(lsx, lsy int, d geom.Vec) bool {
	far := func(x, y int) bool { return geom.Abs(x) > SeparationDist || geom.Abs(y) > SeparationDist }
	return !far(lsx, lsy) || !far(lsx+d.X, lsy+d.Y)
}

// ShapeAway steps a ship one click off the obstruction it just stopped
// against. It reports true after moving mv.Start; otherwise it returns
// what prevents the step.
func (ix *Index) ShapeAway(mv *Move, shape *geom.Shape, dir int, obstruction geom.Segment) (Hit, bool) {
	dx, dy := stepOff(obstruction.Delta)
	return ix.shapeStep(dx, dy, mv, shape, dir)
}

func (ix *Index) shapeStep(dx, dy int, mv *Move, shape *geom.Shape, dir int) (Hit, bool) {
	c := &ix.cells[ix.cellIndex(mv.Start.X, mv.Start.Y)]
	// The centre cell lists the lines for every vertex.
	for p := 0; p < shape.NumPoints(); p++ {
		pt := shape.Point(p, dir)
		for _, i := range c.Lines {
			seg := &ix.segs[i]
			if ix.masked(seg.Group, mv.HitMask) {
				continue
			}
			lsx := ix.bounds.CenterX(seg.Start.X - mv.Start.X - pt.X)
			lsy := ix.bounds.CenterY(seg.Start.Y - mv.Start.Y - pt.Y)
			if blocksStep(seg, lsx, lsy, dx, dy) {
				return Hit{Line: int(i), Corner: -1, Point: p, Seg: *seg}, false
			}
		}
	}

	if len(c.Corners) > 0 {
		edges := shapeLines(shape, dir)
		for _, corner := range c.Corners {
			cs := &ix.segs[corner]
			if ix.masked(cs.Group, mv.HitMask) {
				continue
			}
			for e := range edges {
				edge := &edges[e]
				lsx := ix.bounds.CenterX(edge.Start.X + cs.Start.X - mv.Start.X)
				lsy := ix.bounds.CenterY(edge.Start.Y + cs.Start.Y - mv.Start.Y)
				if blocksStep(edge, lsx, lsy, dx, dy) {
					return Hit{Line: -1, Corner: int(corner), Point: -1, Seg: cornerSegment(cs, edge.Delta)}, false
				}
			}
		}
	}

	mv.Start.X = ix.bounds.WrapX(mv.Start.X + dx)
	mv.Start.Y = ix.bounds.WrapY(mv.Start.Y + dy)
	return NoHit, true
}

// ShapeTurnStep reports whether a ship at pos may rotate one step from
// dir toward sign without touching a wall. Every vertex is swept along
// its chord, then every nearby corner is tested against the area the
// outline sweeps.
func (ix *Index) ShapeTurnStep(shape *geom.Shape, hitMask uint32, pos geom.Vec, dir, sign int) bool {
	newDir := geom.Mod(dir+sign, geom.Res)
	for i := 0; i < shape.NumPoints(); i++ {
		from := shape.Point(i, dir)
		to := shape.Point(i, newDir)
		mv := Move{
			Start:   ix.bounds.WrapVec(pos.Add(from)),
			Delta:   to.Sub(from),
			HitMask: hitMask,
		}
		for !mv.Delta.IsZero() {
			r := ix.SweepPoint(mv)
			if r.Hit.Blocked() {
				return false
			}
			mv.Start = ix.bounds.WrapVec(mv.Start.Add(r.Moved))
			mv.Delta = mv.Delta.Sub(r.Moved)
		}
	}

	n := shape.NumPoints()
	for _, p := range ix.cells[ix.cellIndex(pos.X, pos.Y)].Corners {
		cs := &ix.segs[p]
		if ix.masked(cs.Group, hitMask) {
			continue
		}
		xp := ix.bounds.CenterX(cs.Start.X - pos.X)
		yp := ix.bounds.CenterY(cs.Start.Y - pos.Y)
		o1 := shape.Point(n-1, dir)
		n1 := shape.Point(n-1, newDir)
		xo1, yo1 := o1.X-xp, o1.Y-yp
		xn1, yn1 := n1.X-xp, n1.Y-yp
		t := 0
		for i := 0; i < n; i++ {
			o2 := shape.Point(i, dir)
			n2 := shape.Point(i, newDir)
			xo2, yo2 := o2.X-xp, o2.Y-yp
			xn2, yn2 := n2.X-xp, n2.Y-yp
			if crossing(xo1, yo1, xn1, yn1, &t) ||
				crossing(xn1, yn1, xn2, yn2, &t) ||
				crossing(xn2, yn2, xo2, yo2, &t) ||
				crossing(xo2, yo2, xo1, yo1, &t) {
				return false
			}
			if t&1 != 0 {
				return false
			}
			xo1, yo1, xn1, yn1 = xo2, yo2, xn2, yn2
		}
	}
	return true
}
