package walls

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"arena-server/geom"
)

const origin = 4096

// openWorld is a 16x16 cell non-wrapping world with only group 0.
func openWorld() *geom.World {
	return geom.NewWorld(geom.Bounds{Width: 16 * BlockClicks, Height: 16 * BlockClicks})
}

// wallLine adds a single one-sided wall from a to a+d.
func wallLine(w *geom.World, group int, a, d geom.Vec) {
	w.AddPolygon(geom.Polygon{
		Group: group,
		Start: a,
		Edges: []geom.Edge{{Delta: d}, {Delta: d.Neg(), Hidden: true}},
	})
}

func mustBuild(t *testing.T, w *geom.World) *Index {
	t.Helper()
	ix, err := Build(w)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return ix
}

func TestBuildEmptyWorld(t *testing.T) {
	ix := mustBuild(t, openWorld())
	mx, my := ix.Size()
	if mx != 16 || my != 16 {
		t.Fatalf("expected 16x16 cells, got %dx%d", mx, my)
	}
	c := ix.CellAt(5000, 5000)
	if len(c.Lines) != 0 || len(c.Corners) != 0 {
		t.Errorf("expected empty cell, got %d lines %d corners", len(c.Lines), len(c.Corners))
	}
	if c.Distance != MaxMove {
		t.Errorf("expected distance %d, got %d", MaxMove, c.Distance)
	}
}

func TestBuildRejectsOpenPolygon(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.Polygon{Start: geom.Vec{X: origin, Y: origin}, Edges: []geom.Edge{
		{Delta: geom.Vec{X: 500}}, {Delta: geom.Vec{Y: 500}},
	}})
	_, err := Build(w)
	if !errors.Is(err, ErrOpenPolygon) {
		t.Fatalf("expected ErrOpenPolygon, got %v", err)
	}
}

func TestBuildRejectsUnknownGroup(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.Rect(3, origin, origin, 500, 500))
	if _, err := Build(w); !errors.Is(err, ErrBadGroup) {
		t.Fatalf("expected ErrBadGroup, got %v", err)
	}
}

func TestBuildRejectsEmptyWorld(t *testing.T) {
	if _, err := Build(geom.NewWorld(geom.Bounds{})); !errors.Is(err, ErrEmptyWorld) {
		t.Fatalf("expected ErrEmptyWorld, got %v", err)
	}
}

func TestBuildCellCapacity(t *testing.T) {
	w := openWorld()
	// More lines crowd one cell than it can list.
	for i := 0; i < lineSlots+10; i++ {
		wallLine(w, 0, geom.Vec{X: origin + 1024 + i, Y: origin + 1000}, geom.Vec{Y: 40})
	}
	_, err := Build(w)
	if !errors.Is(err, ErrCellCapacity) {
		t.Fatalf("expected ErrCellCapacity, got %v", err)
	}
}

func TestBuildKeepsNearLines(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.Rect(0, origin, origin, 4000, 4000))
	ix := mustBuild(t, w)
	if ix.NumSegments() != 4 {
		t.Fatalf("expected 4 segments, got %d", ix.NumSegments())
	}
	c := ix.CellAt(origin+100, origin+100)
	if len(c.Lines) != 4 {
		t.Errorf("expected all 4 lines listed near the corner, got %v", c.Lines)
	}
	if len(c.Corners) != 4 {
		t.Errorf("expected 4 corners, got %v", c.Corners)
	}
	if c.Clear != 0 {
		t.Errorf("expected no clear travel in a cell crossed by walls, got %d", c.Clear)
	}
	far := ix.CellAt(15*BlockClicks, 15*BlockClicks)
	if far.Clear <= 0 {
		t.Errorf("expected clear travel far from walls, got %d", far.Clear)
	}
}

func TestBuildSplitsLongSegments(t *testing.T) {
	w := geom.NewWorld(geom.Bounds{Width: 40 * BlockClicks, Height: 8 * BlockClicks})
	w.AddPolygon(geom.Rect(0, 1000, 1000, 70000, 2000))
	ix := mustBuild(t, w)
	for i := 0; i < ix.NumSegments(); i++ {
		d := ix.Segment(i).Delta
		if geom.Abs(d.X) > maxSegmentDelta || geom.Abs(d.Y) > maxSegmentDelta {
			t.Errorf("segment %d too long: %+v", i, d)
		}
	}
	if ix.NumSegments() != 8 {
		t.Errorf("expected 8 segments after splitting, got %d", ix.NumSegments())
	}
}

func TestBuildDeterministic(t *testing.T) {
	mk := func() *Index {
		w := openWorld()
		w.AddPolygon(geom.Rect(0, origin, origin, 4000, 4000))
		w.AddPolygon(geom.PolygonFrom(0,
			geom.Vec{X: 20000, Y: 20000}, geom.Vec{X: 24000, Y: 21000}, geom.Vec{X: 21000, Y: 25000}))
		return mustBuild(t, w)
	}
	a, b := mk(), mk()
	if !reflect.DeepEqual(a.cells, b.cells) {
		t.Error("cell tables differ between builds")
	}
	if !reflect.DeepEqual(a.inside, b.inside) {
		t.Error("containment tables differ between builds")
	}
	fa, err := a.Fingerprint()
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	fb, _ := b.Fingerprint()
	if fa != fb {
		t.Errorf("fingerprints differ: %x vs %x", fa, fb)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.Rect(0, origin, origin, 4000, 4000))
	ix := mustBuild(t, w)
	data, err := ix.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	loaded, err := LoadSnapshot(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f1, _ := ix.Fingerprint()
	f2, _ := loaded.Fingerprint()
	if f1 != f2 {
		t.Errorf("fingerprint changed across snapshot: %x vs %x", f1, f2)
	}
	mv := Move{Start: geom.Vec{X: origin - 500, Y: origin + 2000}, Delta: geom.Vec{X: 1000}}
	if a, b := ix.SweepPoint(mv), loaded.SweepPoint(mv); a != b {
		t.Errorf("sweep differs after reload: %+v vs %+v", a, b)
	}
}

func TestLoadSnapshotRejectsGarbage(t *testing.T) {
	if _, err := LoadSnapshot([]byte{0xc1}); !errors.Is(err, ErrSnapshot) {
		t.Errorf("expected ErrSnapshot, got %v", err)
	}
}

func TestLoadSnapshotRejectsNegativeIndices(t *testing.T) {
	w := openWorld()
	w.AddPolygon(geom.Rect(0, origin, origin, 4000, 4000))
	data, err := mustBuild(t, w).Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	corrupt := func(edit func(c *cell) bool) []byte {
		var s snapshot
		if err := msgpack.Unmarshal(data, &s); err != nil {
			t.Fatalf("decode: %v", err)
		}
		for i := range s.Cells {
			if edit(&s.Cells[i]) {
				out, err := msgpack.Marshal(&s)
				if err != nil {
					t.Fatalf("encode: %v", err)
				}
				return out
			}
		}
		t.Fatal("no cell to corrupt")
		return nil
	}

	lines := corrupt(func(c *cell) bool {
		if len(c.Lines) == 0 {
			return false
		}
		c.Lines[0] = -1
		return true
	})
	if _, err := LoadSnapshot(lines); !errors.Is(err, ErrSnapshot) {
		t.Errorf("negative line: expected ErrSnapshot, got %v", err)
	}
	corners := corrupt(func(c *cell) bool {
		if len(c.Corners) == 0 {
			return false
		}
		c.Corners[0] = -3
		return true
	})
	if _, err := LoadSnapshot(corners); !errors.Is(err, ErrSnapshot) {
		t.Errorf("negative corner: expected ErrSnapshot, got %v", err)
	}
}

func TestWorldFingerprintTracksGeometry(t *testing.T) {
	a := openWorld()
	a.AddPolygon(geom.Rect(0, origin, origin, 4000, 4000))
	b := openWorld()
	b.AddPolygon(geom.Rect(0, origin, origin, 4000, 4001))
	fa, err := WorldFingerprint(a)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	fb, _ := WorldFingerprint(b)
	if fa == fb {
		t.Error("different geometry should not share a fingerprint")
	}
}
