package physics

import (
	"arena-server/arena"
	"arena-server/geom"
	"arena-server/walls"
)

const (
	// maxCornerBounces bounds the back and forth between the two lines
	// of a corner.
	maxCornerBounces = 16
	// maxCornerSteps bounds the walk out of a corner.
	maxCornerSteps = 2 * walls.SeparationDist
)

// clearCorner frees a point stuck where lines l1 and l2 meet. The object
// is bounced off each line it is still heading into, then walked click by
// click to the nearest position on the free side of both. It reports
// false if the object died or could not be freed.
func (e *polygonEngine) clearCorner(mv *walls.Move, obj *arena.Object, l1, l2 int) bool {
	ix := e.ix
	seg1, seg2 := ix.Segment(l1), ix.Segment(l2)
	for i := 0; ; i++ {
		if i == maxCornerBounces {
			mv.Delta = geom.Vec{}
			return false
		}
		if seg1.SideVel(obj.Vel) < 0 && e.resolve(obj, lineHit(ix, l1), mv) == Crashed {
			return false
		}
		if seg2.SideVel(obj.Vel) >= 0 {
			break
		}
		if e.resolve(obj, lineHit(ix, l2), mv) == Crashed {
			return false
		}
	}
	if mv.Delta.IsZero() {
		return true
	}

	b := ix.Bounds()
	ls1x, ls1y := b.CenterX(seg1.Start.X-mv.Start.X), b.CenterY(seg1.Start.Y-mv.Start.Y)
	ls2x, ls2y := b.CenterX(seg2.Start.X-mv.Start.X), b.CenterY(seg2.Start.Y-mv.Start.Y)
	side1 := seg1.Side(ls1x, ls1y) > 0
	side2 := seg2.Side(ls2x, ls2y) > 0
	blocked := func(x, y int) bool {
		r1 := seg1.Side(ls1x-x, ls1y-y)
		r2 := seg2.Side(ls2x-x, ls2y-y)
		return r1 == 0 || (r1 > 0) != side1 || r2 == 0 || (r2 > 0) != side2
	}
	sign := func(v int) int {
		if v < 0 {
			return -1
		}
		return 1
	}
	xm, ym := sign(mv.Delta.X), sign(mv.Delta.Y)

	var x, y int
	freed := false
	if geom.Abs(mv.Delta.X) >= geom.Abs(mv.Delta.Y) {
		x = xm
		for i := 0; i < maxCornerSteps && !freed; i++ {
			switch {
			case blocked(x, y):
				y += ym
				if !blocked(x, y+ym) {
					freed = true
				} else {
					x += xm
				}
			case blocked(x, y+1) && blocked(x, y-1):
				x += xm
			default:
				freed = true
			}
		}
	} else {
		y = ym
		for i := 0; i < maxCornerSteps && !freed; i++ {
			switch {
			case blocked(x, y):
				x += xm
				if !blocked(x+xm, y) {
					freed = true
				} else {
					y += ym
				}
			case blocked(x+1, y) && blocked(x-1, y):
				y += ym
			default:
				freed = true
			}
		}
	}
	if !freed {
		mv.Delta = geom.Vec{}
		return false
	}

	mv.Delta = mv.Delta.Sub(geom.Vec{X: x, Y: y})
	if (obj.Vel.X >= 0) != (mv.Delta.X >= 0) {
		mv.Delta.X = 0
	}
	if (obj.Vel.Y >= 0) != (mv.Delta.Y >= 0) {
		mv.Delta.Y = 0
	}
	mv.Start = b.WrapVec(mv.Start.Add(geom.Vec{X: x, Y: y}))
	return true
}
