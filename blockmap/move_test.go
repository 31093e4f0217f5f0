package blockmap

import (
	"testing"

	"arena-server/arena"
	"arena-server/geom"
)

func objectInfo(g *Grid) *MoveInfo {
	return &MoveInfo{
		Object:          &arena.Object{Type: arena.ObjShot, Team: geom.TeamNone, Owner: arena.NoID},
		State:           g.NewState(),
		Team:            geom.TeamNone,
		EdgeBounce:      true,
		WallBounce:      true,
		CannonCrashes:   true,
		TargetCrashes:   true,
		TreasureCrashes: true,
		WormholeWarps:   true,
		Rand:            func() float64 { return 0 },
	}
}

func TestMoveSegmentFastPath(t *testing.T) {
	rows := make([]string, 20)
	for i := range rows {
		rows[i] = "                    "
	}
	rows[19] = "x                   "
	g := mustParse(t, Options{Wrap: true}, rows...)
	mi := objectInfo(g)
	mi.EdgeWrap = true
	ms := NewMoveState(mi, geom.Vec{X: 10 * B, Y: 10 * B}, geom.Vel{X: 2, Y: 1}, geom.Vec{X: 1000, Y: 500}, 0)
	g.MoveSegment(&ms)
	if ms.Done != (geom.Vec{X: 1000, Y: 500}) || !ms.Todo.IsZero() {
		t.Errorf("open space should allow the full travel, done %+v todo %+v", ms.Done, ms.Todo)
	}
	if ms.Crash != arena.NotACrash || ms.Bounce != NoBounce {
		t.Errorf("unexpected crash %v or bounce %v", ms.Crash, ms.Bounce)
	}
}

func TestClampTravel(t *testing.T) {
	got := clampTravel(geom.Vec{X: -4000, Y: 1000}, geom.Vec{X: -1, Y: 1}, 2000)
	if got != (geom.Vec{X: -2000, Y: 500}) {
		t.Errorf("expected the travel cut along x, got %+v", got)
	}
	got = clampTravel(geom.Vec{X: 100, Y: -3000}, geom.Vec{X: 1, Y: -1}, 1500)
	if got != (geom.Vec{X: 50, Y: -1500}) {
		t.Errorf("expected the travel cut along y, got %+v", got)
	}
}

func TestMoveSegmentFilledBounce(t *testing.T) {
	g := mustParse(t, Options{}, "   x")
	mi := objectInfo(g)
	ms := NewMoveState(mi, geom.Vec{X: 3 * B, Y: B / 2}, geom.Vel{X: 5}, geom.Vec{X: 100}, 0)
	g.MoveSegment(&ms)
	if ms.Bounce != BounceHorLo {
		t.Fatalf("expected a bounce off the low x side, got %v crash %v", ms.Bounce, ms.Crash)
	}
	if ms.Todo != (geom.Vec{X: -100}) || ms.Vel.X != -5 || !ms.Done.IsZero() {
		t.Errorf("travel should be reflected in place, todo %+v vel %+v done %+v", ms.Todo, ms.Vel, ms.Done)
	}
	if ms.Dir != geom.Res/2 {
		t.Errorf("object heading should be mirrored, got %d", ms.Dir)
	}

	mi.WallBounce = false
	ms = NewMoveState(mi, geom.Vec{X: 3 * B, Y: B / 2}, geom.Vel{X: 5}, geom.Vec{X: 100}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.CrashWall {
		t.Errorf("a mover that cannot bounce should crash, got %v", ms.Crash)
	}
}

func TestMoveSegmentLeavesUniverse(t *testing.T) {
	g := mustParse(t, Options{}, "    ")
	ms := NewMoveState(objectInfo(g), geom.Vec{X: -1, Y: 10}, geom.Vel{X: -1}, geom.Vec{X: -10}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.CrashUniverse {
		t.Errorf("expected CrashUniverse, got %v", ms.Crash)
	}
}

func TestMoveSegmentEdgeBounce(t *testing.T) {
	g := mustParse(t, Options{}, "    ")
	mi := objectInfo(g)
	ms := NewMoveState(mi, geom.Vec{X: 0, Y: B / 2}, geom.Vel{X: -3}, geom.Vec{X: -50}, 0)
	g.MoveSegment(&ms)
	if ms.Bounce != BounceEdge || ms.Todo != (geom.Vec{X: 50}) || ms.Vel.X != 3 {
		t.Errorf("expected an edge bounce, got bounce %v todo %+v vel %+v", ms.Bounce, ms.Todo, ms.Vel)
	}

	mi.EdgeBounce = false
	ms = NewMoveState(mi, geom.Vec{X: 0, Y: B / 2}, geom.Vel{X: -3, Y: -1}, geom.Vec{X: -50, Y: -10}, 0)
	g.MoveSegment(&ms)
	if ms.Todo.X != 0 || ms.Vel.X != 0 || ms.Dir != 3*geom.Res/4 {
		t.Errorf("without edge bounce the x travel should stop, todo %+v vel %+v dir %d", ms.Todo, ms.Vel, ms.Dir)
	}
}

func TestMoveSegmentWedgeDiagonal(t *testing.T) {
	g := mustParse(t, Options{}, " w ")
	mi := objectInfo(g)
	start := geom.Vec{X: B + B/2 + 100, Y: B/2 + 100}
	ms := NewMoveState(mi, start, geom.Vel{X: -1, Y: -1}, geom.Vec{X: -400, Y: -400}, 0)
	g.MoveSegment(&ms)
	if ms.Done != (geom.Vec{X: -100, Y: -100}) {
		t.Fatalf("expected to stop on the diagonal, done %+v crash %v bounce %v", ms.Done, ms.Crash, ms.Bounce)
	}
	ms.Pos = ms.Pos.Add(ms.Done)
	g.MoveSegment(&ms)
	if ms.Bounce != BounceLeftDown {
		t.Fatalf("expected a diagonal bounce, got %v crash %v", ms.Bounce, ms.Crash)
	}
	if ms.Todo != (geom.Vec{X: 300, Y: 300}) || ms.Vel != (geom.Vel{X: 1, Y: 1}) {
		t.Errorf("diagonal bounce should swap and negate, todo %+v vel %+v", ms.Todo, ms.Vel)
	}
}

func TestMoveSegmentWedgeInsideCrashes(t *testing.T) {
	g := mustParse(t, Options{}, " w ")
	ms := NewMoveState(objectInfo(g), geom.Vec{X: B + 100, Y: 100}, geom.Vel{X: 1, Y: 1}, geom.Vec{X: 10, Y: 10}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.CrashWall {
		t.Errorf("a point in the solid half should crash, got %v", ms.Crash)
	}
}

func TestMoveSegmentCannonCone(t *testing.T) {
	g := mustParse(t, Options{}, " r ")
	mi := objectInfo(g)
	ms := NewMoveState(mi, geom.Vec{X: B + 800, Y: 1493}, geom.Vel{Y: -5}, geom.Vec{Y: -1000}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.NotACrash || ms.Done != (geom.Vec{Y: -960}) {
		t.Fatalf("expected to stop at the cone, done %+v crash %v", ms.Done, ms.Crash)
	}
	ms.Pos = ms.Pos.Add(ms.Done)
	g.MoveSegment(&ms)
	if ms.Crash != arena.CrashCannon || ms.Cannon != 0 {
		t.Errorf("expected to hit cannon 0, got crash %v cannon %d", ms.Crash, ms.Cannon)
	}
}

func TestMoveSegmentCannonImmunity(t *testing.T) {
	g := mustParse(t, Options{}, " r ")
	mi := objectInfo(g)
	mi.State.Cannons[0].Used |= arena.EquipPhasing
	ms := NewMoveState(mi, geom.Vec{X: B + 800, Y: 1493}, geom.Vel{Y: -5}, geom.Vec{Y: -1000}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.NotACrash || ms.Done != (geom.Vec{Y: -1000}) {
		t.Errorf("a phasing cannon should be passed, done %+v crash %v", ms.Done, ms.Crash)
	}
}

func TestMoveSegmentTreasure(t *testing.T) {
	g := mustParse(t, Options{}, " * ")
	mi := objectInfo(g)
	ms := NewMoveState(mi, geom.Vec{X: B + 100, Y: 2000}, geom.Vel{Y: -4}, geom.Vec{Y: -1000}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.CrashTreasure || ms.Treasure != 0 {
		t.Errorf("a shot should crash on the treasure, got %v treasure %d", ms.Crash, ms.Treasure)
	}

	mi.Object.Type = arena.ObjBall
	var asked []int
	mi.Ball = func(tr int) bool {
		asked = append(asked, tr)
		return true
	}
	ms = NewMoveState(mi, geom.Vec{X: B + 100, Y: 2000}, geom.Vel{Y: -4}, geom.Vec{Y: -1000}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.NotACrash || ms.Done != (geom.Vec{Y: -1000}) {
		t.Errorf("a ball let through should keep moving, done %+v crash %v", ms.Done, ms.Crash)
	}
	if len(asked) != 1 || asked[0] != 0 {
		t.Errorf("ball hook should be asked about treasure 0, got %v", asked)
	}
}

func TestMoveSegmentTreasureArcClear(t *testing.T) {
	g := mustParse(t, Options{}, " * ")
	ms := NewMoveState(objectInfo(g), geom.Vec{X: B + 100, Y: B - 100}, geom.Vel{X: 1}, geom.Vec{X: 100}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.NotACrash || ms.Done != (geom.Vec{X: 100}) {
		t.Errorf("travel above the arc should be free, done %+v crash %v", ms.Done, ms.Crash)
	}
}

func TestMoveSegmentTargetTeam(t *testing.T) {
	g := mustParse(t, Options{TeamPlay: true}, "1! ")
	mi := objectInfo(g)
	pos := geom.Vec{X: B + 100, Y: B / 2}
	ms := NewMoveState(mi, pos, geom.Vel{X: 1}, geom.Vec{X: 100}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.CrashTarget || ms.Target != 0 {
		t.Errorf("a shot should hit the target, got %v", ms.Crash)
	}

	mi.Team = 1
	ms = NewMoveState(mi, pos, geom.Vel{X: 1}, geom.Vec{X: 100}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.NotACrash {
		t.Errorf("own team should pass without target collision, got %v", ms.Crash)
	}
}

func TestMoveSegmentFeasibleBounceCorner(t *testing.T) {
	// Point at the lower left corner of the filled block at (1, 1),
	// boxed in by the blocks left of and below it.
	g := mustParse(t, Options{}, "   ", "xx ", " x ")
	mi := objectInfo(g)
	ms := NewMoveState(mi, geom.Vec{X: B, Y: B}, geom.Vel{X: 1, Y: 1}, geom.Vec{X: 10, Y: 10}, 0)
	g.MoveSegment(&ms)
	if ms.Crash != arena.NotACrash {
		t.Fatalf("unexpected crash %v", ms.Crash)
	}
	if ms.Bounce != BounceLeftDown {
		t.Errorf("two blocked sides should combine into a corner bounce, got %v", ms.Bounce)
	}
}

func TestBounceWallDir(t *testing.T) {
	if d := BounceHorHi.WallDir(); d != 0 {
		t.Errorf("hor hi: %d", d)
	}
	if d := BounceVerHi.WallDir(); d != geom.Res/4 {
		t.Errorf("ver hi: %d", d)
	}
	if d := BounceLeftDown.WallDir(); d != geom.Res/8 {
		t.Errorf("left down: %d", d)
	}
}
