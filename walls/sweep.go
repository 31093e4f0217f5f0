package walls

import (
	"math"

	"arena-server/geom"
)

// Move is one straight-line travel request. Groups whose hit mask
// intersects HitMask are transparent to it.
type Move struct {
	Start   geom.Vec
	Delta   geom.Vec
	HitMask uint32
}

// Hit describes the first obstruction of a sweep.
type Hit struct {
	// Line is the wall segment struck, or -1.
	Line int
	// Corner is set when a ship edge ran into a wall corner: the segment
	// starting at that corner. Otherwise -1.
	Corner int
	// Point is the ship vertex that struck Line, or -1.
	Point int
	// Seg is the obstruction in world orientation with its group set.
	// For corner hits it is the ship edge that touched the corner.
	Seg geom.Segment
}

// Blocked reports whether the sweep stopped at an obstruction.
func (h Hit) Blocked() bool { return h.Line >= 0 || h.Corner >= 0 }

// NoHit is the Hit of an unobstructed sweep.
var NoHit = Hit{Line: -1, Corner: -1, Point: -1}

// Result is the outcome of one sweep: Moved is how far the start point
// got, never more than the requested delta.
type Result struct {
	Moved geom.Vec
	Hit   Hit
}

// sweep holds one search in the canonical octant where the delta has
// dx >= dy >= 0.
type sweep struct {
	ix       *Index
	move     *Move
	chx      bool
	chy      bool
	chxy     bool
	mdx, mdy int
	mbase    int
	mindone  int
	height   int
	minLine  int
	hit      Hit
}

func liney(x, y, base, arg int) int { return (y*arg + base) / x }

func (ix *Index) newSweep(mv *Move) *sweep {
	s := &sweep{ix: ix, move: mv, minLine: -1, hit: NoHit}
	mdx, mdy := mv.Delta.X, mv.Delta.Y
	if mdx < 0 {
		mdx = -mdx
		s.chx = true
	}
	if mdy < 0 {
		mdy = -mdy
		s.chy = true
	}
	if mdx < mdy {
		mdx, mdy = mdy, mdx
		s.chxy = true
	}
	if mdx > maxSweep {
		mdy = int(float64(mdy) * maxSweep / float64(mdx))
		mdx = maxSweep
	}
	s.mindone = mdx
	s.height = mdy
	s.mdx = mdx + 1
	s.mdy = mdy + 1
	s.mbase = s.mdy >> 1
	return s
}

func (s *sweep) transform(x, y int) (int, int) {
	if s.chx {
		x = -x
	}
	if s.chy {
		y = -y
	}
	if s.chxy {
		x, y = y, x
	}
	return x, y
}

func roomToEdge(m int) int {
	if m > 0 {
		return BlockClicks - (m & blockMask)
	}
	return -m & blockMask
}

// limit stops the search where lines missing from the cell list could
// start to matter.
func (s *sweep) limit(x, msx, msy int) {
	if s.mindone <= x {
		return
	}
	if x < MaxMove {
		x = min(x+min(roomToEdge(msx), roomToEdge(msy)), MaxMove)
	}
	if s.mindone > x {
		s.mindone = x
		s.height = liney(s.mdx, s.mdy, s.mbase, x)
	}
}

// check finds how far a point at (msx, msy) in canonical coordinates can
// go before crossing seg, and records it when it beats the best so far.
func (s *sweep) check(msx, msy int, seg *geom.Segment) bool {
	b := s.ix.bounds
	lsx, lsy := seg.Start.X, seg.Start.Y
	ldx, ldy := seg.Delta.X, seg.Delta.Y
	if s.chx {
		lsx, ldx = -lsx, -ldx
	}
	if s.chy {
		lsy, ldy = -lsy, -ldy
	}
	if s.chxy {
		lsx, lsy = lsy, lsx
		ldx, ldy = ldy, ldx
	}
	lsx -= msx
	lsy -= msy
	if s.chxy {
		lsx, lsy = b.CenterY(lsx), b.CenterX(lsy)
	} else {
		lsx, lsy = b.CenterX(lsx), b.CenterY(lsy)
	}
	if s.height < lsy+min(ldy, 0) || 0 > lsy+max(ldy, 0) {
		return false
	}
	if ldx < 0 {
		lsx += ldx
		ldx = -ldx
		lsy += ldy
		ldy = -ldy
	}

	start := max(0, lsx)
	end := min(s.mindone+1, lsx+ldx)
	if start > end {
		return false
	}
	sy := liney(s.mdx, s.mdy, s.mbase, start)
	prod := (start-lsx)*ldy - (sy-lsy)*ldx
	if prod == 0 {
		if ldx == 0 && (lsy+min(ldy, 0) > sy || lsy+max(ldy, 0) < sy) {
			return false
		}
		start--
	} else {
		bigger := prod > 0
		if geom.Abs(prod) >= ldx {
			ey := liney(s.mdx, s.mdy, s.mbase, end)
			p := (end-lsx)*ldy - (ey-lsy)*ldx
			if geom.Abs(p) >= ldx && (p > 0) == bigger {
				return false
			}
		}
		diff := float64(-s.mbase)/float64(s.mdx) - float64(lsx)*float64(ldy)/float64(ldx) + float64(lsy)
		diff2 := float64(s.mdy)/float64(s.mdx) - float64(ldy)/float64(ldx)
		var schs, sche int
		switch {
		case math.Abs(diff2) < 1./(50000.*50000):
			if diff > 0 || diff < -1 {
				return false
			}
			schs, sche = start+1, end
		case diff2 < 0:
			schs = clampTrunc((diff+1)/diff2+.9, start+1, end+1)
			sche = clampTrunc(diff/diff2+1.1, start, end)
		default:
			schs = clampTrunc(diff/diff2+.9, start+1, end+1)
			sche = clampTrunc((diff+1)/diff2+1.1, start, end)
		}
		x := schs
		for ; x <= sche; x++ {
			p := (x-lsx)*ldy - (liney(s.mdx, s.mdy, s.mbase, x)-lsy)*ldx
			if (p >= 0) != bigger || p == 0 {
				break
			}
		}
		if x > sche {
			return false
		}
		start = x - 1
	}

	if start < s.mindone ||
		(start == s.mindone && s.minLine != -1 && seg.Side(s.move.Delta.X, s.move.Delta.Y) < 0) {
		s.mindone = start
		s.height = liney(s.mdx, s.mdy, s.mbase, start)
		return true
	}
	return false
}

// clampTrunc truncates f toward zero after clamping it into [lo, hi].
func clampTrunc(f float64, lo, hi int) int {
	if f < float64(lo) {
		return lo
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}

func (s *sweep) lines(msx, msy int, ids []int32) bool {
	hit := false
	for _, id := range ids {
		seg := &s.ix.segs[id]
		if s.ix.masked(seg.Group, s.move.HitMask) {
			continue
		}
		if s.check(msx, msy, seg) {
			hit = true
			s.minLine = int(id)
			s.hit = Hit{Line: int(id), Corner: -1, Point: -1, Seg: *seg}
		}
	}
	return hit
}

func (s *sweep) result() Result {
	done, height := s.mindone, s.height
	if s.chxy {
		done, height = height, done
	}
	if s.chx {
		done = -done
	}
	if s.chy {
		height = -height
	}
	return Result{Moved: geom.Vec{X: done, Y: height}, Hit: s.hit}
}

// SweepPoint moves a point along mv.Delta until it would cross a wall.
// The delta must not be zero and the start must not lie on a wall.
func (ix *Index) SweepPoint(mv Move) Result {
	s := ix.newSweep(&mv)
	c := &ix.cells[ix.cellIndex(mv.Start.X, mv.Start.Y)]
	msx, msy := s.transform(mv.Start.X, mv.Start.Y)
	s.limit(c.Distance, msx, msy)
	s.lines(msx, msy, c.Lines)
	return s.result()
}

// shapeLines is the ship outline mirrored through its centre, as seen
// from a wall corner.
func shapeLines(shape *geom.Shape, dir int) []geom.Segment {
	n := shape.NumPoints()
	out := make([]geom.Segment, n)
	for p := 0; p < n; p++ {
		out[p].Start = shape.Point(p, dir).Neg()
	}
	for p := 0; p < n; p++ {
		out[p].Delta = out[(p+1)%n].Start.Sub(out[p].Start)
	}
	return out
}

// SweepShape moves a ship outline facing dir along mv.Delta. Each vertex
// is swept against the walls, and each nearby wall corner is swept
// against the outline edges.
func (ix *Index) SweepShape(mv Move, shape *geom.Shape, dir int) Result {
	s := ix.newSweep(&mv)
	for p := 0; p < shape.NumPoints(); p++ {
		pt := shape.Point(p, dir)
		px := ix.bounds.WrapX(mv.Start.X + pt.X)
		py := ix.bounds.WrapY(mv.Start.Y + pt.Y)
		c := &ix.cells[ix.cellIndex(px, py)]
		msx, msy := s.transform(px, py)
		s.limit(c.Distance, msx, msy)
		if s.lines(msx, msy, c.Lines) {
			s.hit.Point = p
		}
	}

	c := &ix.cells[ix.cellIndex(mv.Start.X, mv.Start.Y)]
	if len(c.Corners) == 0 {
		return s.result()
	}
	edges := shapeLines(shape, dir)
	for _, corner := range c.Corners {
		cs := &ix.segs[corner]
		if ix.masked(cs.Group, mv.HitMask) {
			continue
		}
		msx, msy := s.transform(mv.Start.X-cs.Start.X, mv.Start.Y-cs.Start.Y)
		for e := range edges {
			if s.check(msx, msy, &edges[e]) {
				s.minLine = len(ix.segs) + e
				s.hit = Hit{Line: -1, Corner: int(corner), Point: -1, Seg: cornerSegment(cs, edges[e].Delta)}
			}
		}
	}
	return s.result()
}

func cornerSegment(corner *geom.Segment, delta geom.Vec) geom.Segment {
	return geom.NewSegment(corner.Start, delta, corner.Group)
}
