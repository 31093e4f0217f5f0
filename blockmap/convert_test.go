package blockmap

import (
	"testing"

	"arena-server/arena"
	"arena-server/geom"
	"arena-server/walls"
)

func hiddenEdges(p geom.Polygon) int {
	n := 0
	for _, e := range p.Edges {
		if e.Hidden {
			n++
		}
	}
	return n
}

func TestPolygonsHideSharedSides(t *testing.T) {
	g := mustParse(t, Options{}, "xx", "  ")
	w := g.Polygons(arena.DefaultRules())
	if len(w.Polygons) != 2 {
		t.Fatalf("expected a polygon per filled block, got %d", len(w.Polygons))
	}
	for i, p := range w.Polygons {
		if !p.Closed() {
			t.Errorf("polygon %d is open", i)
		}
		if n := hiddenEdges(p); n != 1 {
			t.Errorf("polygon %d: expected one hidden side, got %d", i, n)
		}
	}
}

func TestPolygonsWedge(t *testing.T) {
	g := mustParse(t, Options{}, "xa", "  ")
	w := g.Polygons(arena.DefaultRules())
	if len(w.Polygons) != 2 {
		t.Fatalf("expected two polygons, got %d", len(w.Polygons))
	}
	wedge := w.Polygons[1]
	if len(wedge.Edges) != 3 || !wedge.Closed() {
		t.Fatalf("expected a closed triangle, got %+v", wedge)
	}
	if n := hiddenEdges(wedge); n != 0 {
		t.Errorf("the wedge's solid sides face no neighbours, got %d hidden", n)
	}
	if n := hiddenEdges(w.Polygons[0]); n != 0 {
		t.Errorf("a wedge has no full left side, got %d hidden", n)
	}
}

func TestPolygonsStructureGroups(t *testing.T) {
	g := mustParse(t, Options{TeamPlay: true, TeamCannons: true}, "1r!*@")
	rules := arena.DefaultRules()
	rules.TargetTeamCollision = false
	w := g.Polygons(rules)

	kinds := map[geom.GroupKind]geom.Group{}
	for _, grp := range w.Groups[1:] {
		kinds[grp.Kind] = grp
	}
	for _, k := range []geom.GroupKind{geom.KindCannon, geom.KindTarget, geom.KindTreasure, geom.KindWormhole} {
		grp, ok := kinds[k]
		if !ok {
			t.Errorf("missing %v group", k)
			continue
		}
		if grp.Item != 0 {
			t.Errorf("%v group should point at item 0, got %d", k, grp.Item)
		}
	}
	if m := kinds[geom.KindTarget].HitMask; m != geom.TeamBit(1) {
		t.Errorf("own team should pass the target, mask %#x", m)
	}
	if m := kinds[geom.KindCannon].HitMask; m != geom.TeamBit(1) {
		t.Errorf("team immunity should let team 1 pass the cannon, mask %#x", m)
	}
	for _, p := range w.Polygons {
		if w.Groups[p.Group].Kind == geom.KindTreasure && len(p.Edges) != treasureArcPoints+2 {
			t.Errorf("treasure outline should have %d vertices, got %d", treasureArcPoints+2, len(p.Edges))
		}
	}
}

func TestPolygonsBuildIndex(t *testing.T) {
	g := mustParse(t, Options{}, "x  ", "   ", "  x")
	ix, err := walls.Build(g.Polygons(arena.DefaultRules()))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := ix.PointInside(B/2, 2*B+B/2, 0); got != 0 {
		t.Errorf("centre of the filled block should be inside the wall group, got %d", got)
	}
	if got := ix.PointInside(B+B/2, B+B/2, 0); got != geom.NoGroup {
		t.Errorf("centre of an open block should be outside, got %d", got)
	}
	r := ix.SweepPoint(walls.Move{Start: geom.Vec{X: 2*B - 500, Y: B / 2}, Delta: geom.Vec{X: 1000}})
	if !r.Hit.Blocked() || r.Moved.X >= 500 {
		t.Errorf("sweep should stop at the block side, moved %+v", r.Moved)
	}
}
