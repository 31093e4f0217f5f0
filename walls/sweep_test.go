package walls

import (
	"testing"

	"arena-server/geom"
)

// ledgeWorld has a box whose right side is the wall x=origin, y in
// [origin, origin+100].
func ledgeWorld(t *testing.T) *Index {
	t.Helper()
	w := openWorld()
	w.AddPolygon(geom.Rect(0, origin-2000, origin, 2000, 100))
	return mustBuild(t, w)
}

func TestSweepPointStopsAtWall(t *testing.T) {
	ix := ledgeWorld(t)
	r := ix.SweepPoint(Move{Start: geom.Vec{X: origin + 10, Y: origin + 50}, Delta: geom.Vec{X: -20}})
	if r.Moved != (geom.Vec{X: -9}) {
		t.Errorf("expected to stop one click short of the wall, moved %+v", r.Moved)
	}
	if !r.Hit.Blocked() {
		t.Fatal("expected a hit")
	}
	if r.Hit.Seg.Start != (geom.Vec{X: origin, Y: origin}) || r.Hit.Seg.Delta != (geom.Vec{Y: 100}) {
		t.Errorf("wrong segment reported: %+v", r.Hit.Seg)
	}
	if r.Hit.Corner != -1 || r.Hit.Point != -1 {
		t.Errorf("point sweeps report only lines, got %+v", r.Hit)
	}
}

func TestSweepPointFullTravel(t *testing.T) {
	ix := mustBuild(t, openWorld())
	for _, d := range []geom.Vec{{X: 300, Y: -200}, {X: -7}, {Y: 5000}, {X: -1234, Y: 4321}} {
		r := ix.SweepPoint(Move{Start: geom.Vec{X: 15000, Y: 15000}, Delta: d})
		if r.Moved != d || r.Hit.Blocked() {
			t.Errorf("delta %+v: moved %+v hit %+v", d, r.Moved, r.Hit)
		}
	}
}

func TestSweepPointMovingAwayFromWall(t *testing.T) {
	ix := ledgeWorld(t)
	d := geom.Vec{X: 300}
	r := ix.SweepPoint(Move{Start: geom.Vec{X: origin + 5, Y: origin + 50}, Delta: d})
	if r.Moved != d || r.Hit.Blocked() {
		t.Errorf("leaving the wall should be free: moved %+v hit %+v", r.Moved, r.Hit)
	}
}

func TestSweepPointNeverOvershoots(t *testing.T) {
	ix := ledgeWorld(t)
	start := geom.Vec{X: origin + 700, Y: origin + 80}
	for dy := -300; dy <= 300; dy += 37 {
		d := geom.Vec{X: -1500, Y: dy}
		r := ix.SweepPoint(Move{Start: start, Delta: d})
		if geom.Abs(r.Moved.X) > geom.Abs(d.X) || geom.Abs(r.Moved.Y) > geom.Abs(d.Y) {
			t.Fatalf("delta %+v: moved %+v beyond request", d, r.Moved)
		}
		if r.Hit.Blocked() && start.X+r.Moved.X <= origin {
			t.Errorf("delta %+v: stopped at x=%d, on or past the wall", d, start.X+r.Moved.X)
		}
	}
}

func TestSweepPointHitMask(t *testing.T) {
	w := openWorld()
	g := w.AddGroup(geom.Group{Kind: geom.KindWall, Team: 1, HitMask: geom.TeamBit(1)})
	w.AddPolygon(geom.Rect(g, 8000, 8000, 1000, 1000))
	ix := mustBuild(t, w)
	mv := Move{Start: geom.Vec{X: 7500, Y: 8500}, Delta: geom.Vec{X: 3000}}

	mv.HitMask = geom.TeamBit(1)
	if r := ix.SweepPoint(mv); r.Hit.Blocked() || r.Moved != mv.Delta {
		t.Errorf("own team should pass through, got %+v", r)
	}
	mv.HitMask = geom.TeamBit(2)
	r := ix.SweepPoint(mv)
	if !r.Hit.Blocked() {
		t.Fatal("other team should be stopped")
	}
	if r.Hit.Seg.Group != g {
		t.Errorf("expected group %d, got %d", g, r.Hit.Seg.Group)
	}
	if r.Moved.X != 499 {
		t.Errorf("expected to stop at x=7999, moved %d", r.Moved.X)
	}
}

func TestSweepShapeVertexHit(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.Rect(0, 11460, 9000, 2000, 2000))
	ix := mustBuild(t, w)
	r := ix.SweepShape(Move{Start: geom.Vec{X: 10000, Y: 10000}, Delta: geom.Vec{X: 1000}}, geom.DefaultShip, 0)
	if r.Moved != (geom.Vec{X: 499}) {
		t.Errorf("expected the nose to stop one click short, moved %+v", r.Moved)
	}
	if r.Hit.Point != 0 || r.Hit.Line < 0 {
		t.Errorf("expected nose vertex hit on a line, got %+v", r.Hit)
	}
}

func TestSweepShapeCornerHit(t *testing.T) {
	w := openWorld()
	tip := geom.Vec{X: 20000, Y: 10000}
	w.AddPolygon(geom.PolygonFrom(0, tip, geom.Vec{X: 19000, Y: 10300}, geom.Vec{X: 19000, Y: 9700}))
	ix := mustBuild(t, w)

	// The spike points between the two rear vertices.
	start := geom.Vec{X: tip.X + 576 + 200, Y: tip.Y}
	r := ix.SweepShape(Move{Start: start, Delta: geom.Vec{X: -400}}, geom.DefaultShip, 0)
	if r.Hit.Corner != 0 || r.Hit.Line != -1 {
		t.Fatalf("expected a corner hit on segment 0, got %+v", r.Hit)
	}
	if r.Moved != (geom.Vec{X: -199}) {
		t.Errorf("expected the rear edge to stop short of the tip, moved %+v", r.Moved)
	}
	if r.Hit.Seg.Start != tip {
		t.Errorf("corner segment should start at the tip, got %+v", r.Hit.Seg.Start)
	}
}

func TestSweepShapeFree(t *testing.T) {
	ix := mustBuild(t, openWorld())
	d := geom.Vec{X: -900, Y: 300}
	for dir := 0; dir < geom.Res; dir += 9 {
		r := ix.SweepShape(Move{Start: geom.Vec{X: 16000, Y: 16000}, Delta: d}, geom.DefaultShip, dir)
		if r.Moved != d || r.Hit.Blocked() {
			t.Errorf("dir %d: moved %+v hit %+v", dir, r.Moved, r.Hit)
		}
	}
}

func TestAwayStepsOffWall(t *testing.T) {
	ix := ledgeWorld(t)
	mv := Move{Start: geom.Vec{X: origin + 10, Y: origin + 50}, Delta: geom.Vec{X: -20}}
	r := ix.SweepPoint(mv)
	mv.Start = mv.Start.Add(r.Moved)
	if got := ix.Away(&mv, r.Hit.Line); got != -1 {
		t.Fatalf("expected a free step, blocked by line %d", got)
	}
	if mv.Start != (geom.Vec{X: origin + 2, Y: origin + 50}) {
		t.Errorf("expected one click outward, at %+v", mv.Start)
	}
}

func TestShapeAwayStepsOffWall(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.Rect(0, 11460, 9000, 2000, 2000))
	ix := mustBuild(t, w)
	mv := Move{Start: geom.Vec{X: 10499, Y: 10000}, Delta: geom.Vec{X: 1}}
	hit, ok := ix.ShapeAway(&mv, geom.DefaultShip, 0, geom.NewSegment(geom.Vec{X: 11460, Y: 11000}, geom.Vec{Y: -2000}, 0))
	if !ok {
		t.Fatalf("expected a free step, got %+v", hit)
	}
	if mv.Start != (geom.Vec{X: 10498, Y: 10000}) {
		t.Errorf("expected to back off by one click, at %+v", mv.Start)
	}
}

func TestShapeTurnFreeSpace(t *testing.T) {
	ix := mustBuild(t, openWorld())
	pos := geom.Vec{X: 16000, Y: 16000}
	for dir := 0; dir < geom.Res; dir++ {
		if !ix.ShapeTurnStep(geom.DefaultShip, 0, pos, dir, 1) {
			t.Fatalf("turn from %d blocked in open space", dir)
		}
		if !ix.ShapeTurnStep(geom.DefaultShip, 0, pos, dir, -1) {
			t.Fatalf("reverse turn from %d blocked in open space", dir)
		}
	}
}

func TestShapeTurnBlockedByWall(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.Rect(0, 7000, 10700, 6000, 1000))
	ix := mustBuild(t, w)
	pos := geom.Vec{X: 10000, Y: 10000}

	dir := 0
	for dir < geom.Res/4 && ix.ShapeTurnStep(geom.DefaultShip, 0, pos, dir, 1) {
		dir++
	}
	if dir == geom.Res/4 {
		t.Fatal("nose swung through the wall")
	}
	if dir == 0 {
		t.Fatal("first step should be free")
	}
	if nose := geom.DefaultShip.Point(0, dir); nose.Y >= 700 {
		t.Errorf("nose reached y offset %d at dir %d", nose.Y, dir)
	}
}
