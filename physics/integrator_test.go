package physics

import (
	"testing"

	"arena-server/arena"
	"arena-server/geom"
)

func TestStepAgesObjects(t *testing.T) {
	host := newFakeHost()
	st := &arena.State{}
	r := newTestResolver(host, arena.DefaultRules(), st)
	in := NewIntegrator(NewPolygonEngine(mustBuild(t, openWorld()), r), r)

	shot := &arena.Object{Type: arena.ObjShot, Owner: arena.NoID, Pos: geom.Vec{X: 15000, Y: 15000}, Vel: geom.Vel{X: 10}, Life: 2}
	dead := &arena.Object{Type: arena.ObjShot, Owner: arena.NoID, Pos: geom.Vec{X: 15000, Y: 15000}, Vel: geom.Vel{X: 10}}
	in.Step(nil, []*arena.Object{shot, dead})
	if st.Frame != 1 {
		t.Errorf("frame should advance, got %d", st.Frame)
	}
	if shot.Life != 1 || shot.Pos.X != 15000+10*geom.Click {
		t.Errorf("shot should age and move, life %d pos %+v", shot.Life, shot.Pos)
	}
	if dead.Pos.X != 15000 {
		t.Error("dead objects must not move")
	}
	in.Step(nil, []*arena.Object{shot})
	if shot.Alive() {
		t.Errorf("shot should expire, life %d", shot.Life)
	}
}

func TestStepRebuildsTarget(t *testing.T) {
	w, g := targetWorld()
	st := &arena.State{Targets: []arena.Target{{Team: 2, Damage: 0, DeadTime: 1}}}
	r := newTestResolver(newFakeHost(), arena.DefaultRules(), st)
	ix := mustBuild(t, w)
	in := NewIntegrator(NewPolygonEngine(ix, r), r)
	if ix.Group(g).HitMask != geom.AllHitBits {
		t.Fatal("dead target should start out of play")
	}

	in.Step(nil, nil)
	targ := st.Targets[0]
	if !targ.Alive() || targ.Damage != arena.TargetDamage || targ.LastChange != 1 {
		t.Errorf("target should be rebuilt at full health: %+v", targ)
	}
	if ix.Group(g).HitMask != geom.TeamBit(2) {
		t.Errorf("rebuilt target should be solid again, mask %#x", ix.Group(g).HitMask)
	}
}

func TestStepWarpsPlayer(t *testing.T) {
	ann := testPlayer(1, "Ann", 1)
	ann.Status |= arena.StatusWarping
	ann.WormholeHit = 0
	st := &arena.State{Wormholes: []arena.Wormhole{
		{Pos: geom.Vec{X: 5000, Y: 5000}, Type: arena.WormNormal, LastDest: -1},
		{Pos: geom.Vec{X: 20000, Y: 20000}, Type: arena.WormIn, LastDest: -1},
		{Pos: geom.Vec{X: 25000, Y: 9000}, Type: arena.WormOut, LastDest: -1},
	}}
	r := newTestResolver(newFakeHost(ann), arena.DefaultRules(), st)
	in := NewIntegrator(NewPolygonEngine(mustBuild(t, openWorld()), r), r)

	in.Step([]*arena.Player{ann}, nil)
	if ann.Pos != st.Wormholes[2].Pos {
		t.Errorf("only the out hole is a valid exit, at %+v", ann.Pos)
	}
	if ann.WormholeDest != 2 || st.Wormholes[0].LastDest != 2 {
		t.Errorf("destination not recorded: dest %d last %d", ann.WormholeDest, st.Wormholes[0].LastDest)
	}
	if ann.Status&arena.StatusWarping != 0 || ann.Status&arena.StatusWarped == 0 {
		t.Errorf("warp status not updated: %v", ann.Status)
	}
}

func TestStepTurnsThenMovesPlayers(t *testing.T) {
	ann := testPlayer(1, "Ann", 1)
	ann.Pos = geom.Vec{X: 16000, Y: 16000}
	ann.FloatDir = 32
	ann.Vel = geom.Vel{X: 0, Y: 50}
	st := &arena.State{}
	r := newTestResolver(newFakeHost(ann), arena.DefaultRules(), st)
	in := NewIntegrator(NewPolygonEngine(mustBuild(t, openWorld()), r), r)

	in.Step([]*arena.Player{ann}, nil)
	if ann.Dir != 32 || ann.Pos != (geom.Vec{X: 16000, Y: 16000 + 50*geom.Click}) {
		t.Errorf("expected facing 32 after moving up, got %d at %+v", ann.Dir, ann.Pos)
	}
}
