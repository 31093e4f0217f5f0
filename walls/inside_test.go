package walls

import (
	"testing"

	"arena-server/geom"
)

func TestPointInsideRectangle(t *testing.T) {
	w := geom.NewWorld(geom.Bounds{Width: 8 * BlockClicks, Height: 8 * BlockClicks})
	w.AddPolygon(geom.Rect(0, 4000, 4000, 4000, 4000))
	ix := mustBuild(t, w)

	cases := []struct {
		name string
		x, y int
		want int
	}{
		{"centre", 6000, 6000, 0},
		{"near corner", 4010, 4010, 0},
		{"far away", 14000, 14000, geom.NoGroup},
		{"left of edge in same cell", 3000, 6000, geom.NoGroup},
		{"below edge in same cell", 6000, 3990, geom.NoGroup},
		{"off map", -50, 6000, geom.NoGroup},
	}
	for _, c := range cases {
		if got := ix.PointInside(c.x, c.y, 0); got != c.want {
			t.Errorf("%s (%d,%d): got %d, want %d", c.name, c.x, c.y, got, c.want)
		}
	}
}

func TestPointInsideIdempotent(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.PolygonFrom(0,
		geom.Vec{X: 5000, Y: 5000}, geom.Vec{X: 14000, Y: 7000}, geom.Vec{X: 9000, Y: 15000}))
	ix := mustBuild(t, w)
	for y := 3000; y < 17000; y += 731 {
		for x := 3000; x < 17000; x += 677 {
			a := ix.PointInside(x, y, 0)
			if b := ix.PointInside(x, y, 0); a != b {
				t.Fatalf("(%d,%d): %d then %d", x, y, a, b)
			}
		}
	}
	if got := ix.PointInside(9000, 9000, 0); got != 0 {
		t.Errorf("triangle interior: got %d", got)
	}
	if got := ix.PointInside(5500, 14000, 0); got != geom.NoGroup {
		t.Errorf("outside triangle: got %d", got)
	}
}

func TestPointInsideRespectsMask(t *testing.T) {
	w := openWorld()
	g := w.AddGroup(geom.Group{Kind: geom.KindTarget, Team: 2, HitMask: geom.NonBallBit | geom.TeamBit(2)})
	w.AddPolygon(geom.Rect(g, 10000, 10000, 3000, 3000))
	ix := mustBuild(t, w)

	if got := ix.PointInside(11500, 11500, geom.TeamBit(1)); got != g {
		t.Errorf("expected group %d, got %d", g, got)
	}
	if got := ix.PointInside(11500, 11500, geom.TeamBit(2)); got != geom.NoGroup {
		t.Errorf("masked group should be skipped, got %d", got)
	}
}

func TestPointInsideWrapsAcrossEdge(t *testing.T) {
	w := geom.NewWorld(geom.Bounds{Width: 8 * BlockClicks, Height: 8 * BlockClicks, Wrap: true})
	w.AddPolygon(geom.Rect(0, 15000, 5000, 3000, 3000))
	ix := mustBuild(t, w)

	if got := ix.PointInside(15500, 6000, 0); got != 0 {
		t.Errorf("inside before the seam: got %d", got)
	}
	if got := ix.PointInside(500, 6000, 0); got != 0 {
		t.Errorf("inside after the seam: got %d", got)
	}
	if got := ix.PointInside(500+16*BlockClicks, 6000, 0); got != 0 {
		t.Errorf("unwrapped coordinate: got %d", got)
	}
	if got := ix.PointInside(14000, 6000, 0); got != geom.NoGroup {
		t.Errorf("outside: got %d", got)
	}
}

func TestCrossingOnEdge(t *testing.T) {
	n := 0
	if !crossing(-5, 0, 5, 0, &n) {
		t.Error("an edge through the origin should be reported")
	}
	n = 0
	if crossing(-5, 3, 5, 3, &n) || n != 1 {
		t.Errorf("edge above the origin should count once, n=%d", n)
	}
	n = 0
	if crossing(-5, -3, 5, -3, &n) || n != 0 {
		t.Errorf("edge below the origin should not count, n=%d", n)
	}
}

func TestPointInsideLongEdges(t *testing.T) {
	cases := []struct {
		name   string
		bounds geom.Bounds
		rect   geom.Polygon
		in     []geom.Vec
		out    []geom.Vec
	}{
		{
			name:   "edge longer than half the world",
			bounds: geom.Bounds{Width: 16 * BlockClicks, Height: 16 * BlockClicks},
			rect:   geom.Rect(0, origin, origin, 20000, 4000),
			in:     []geom.Vec{{X: 5000, Y: 6000}, {X: 14000, Y: 6000}, {X: 23900, Y: 7900}},
			out:    []geom.Vec{{X: 25000, Y: 6000}, {X: 14000, Y: 9000}, {X: 3000, Y: 6000}},
		},
		{
			name:   "wrapping world",
			bounds: geom.Bounds{Width: 8 * BlockClicks, Height: 8 * BlockClicks, Wrap: true},
			rect:   geom.Rect(0, 1000, 5000, 12000, 3000),
			in:     []geom.Vec{{X: 1500, Y: 6000}, {X: 12500, Y: 7500}},
			out:    []geom.Vec{{X: 14000, Y: 6000}, {X: 500, Y: 6000}, {X: 8000, Y: 9000}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := geom.NewWorld(c.bounds)
			w.AddPolygon(c.rect)
			ix := mustBuild(t, w)
			for _, p := range c.in {
				if got := ix.PointInside(p.X, p.Y, 0); got != 0 {
					t.Errorf("(%d,%d) should be inside, got %d", p.X, p.Y, got)
				}
			}
			for _, p := range c.out {
				if got := ix.PointInside(p.X, p.Y, 0); got != geom.NoGroup {
					t.Errorf("(%d,%d) should be outside, got %d", p.X, p.Y, got)
				}
			}
		})
	}
}
