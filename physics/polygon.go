package physics

import (
	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/geom"
	"arena-server/walls"
)

type polygonEngine struct {
	ix   *walls.Index
	res  *Resolver
	log  logrus.FieldLogger
	ball *geom.Shape

	// Structure groups by item index, with the masks they were built
	// with.
	targetGroups map[int][]int
	cannonGroups map[int][]int
	builtMask    []uint32
}

// NewPolygonEngine returns the engine for polygon maps. The resolver
// reads group data from ix from then on.
func NewPolygonEngine(ix *walls.Index, res *Resolver) MotionEngine {
	e := &polygonEngine{
		ix:           ix,
		res:          res,
		log:          res.log.WithField("engine", "polygon"),
		ball:         geom.BallWire(),
		targetGroups: make(map[int][]int),
		cannonGroups: make(map[int][]int),
		builtMask:    make([]uint32, ix.NumGroups()),
	}
	res.useGroups(ix)
	for g := 0; g < ix.NumGroups(); g++ {
		grp := ix.Group(g)
		e.builtMask[g] = grp.HitMask
		switch grp.Kind {
		case geom.KindTarget:
			e.targetGroups[grp.Item] = append(e.targetGroups[grp.Item], g)
		case geom.KindCannon:
			e.cannonGroups[grp.Item] = append(e.cannonGroups[grp.Item], g)
		}
	}
	e.SyncStructures()
	return e
}

func (e *polygonEngine) Name() string { return "polygon" }

func (e *polygonEngine) Bounds() geom.Bounds { return e.ix.Bounds() }

func (e *polygonEngine) PointInside(pos geom.Vec, excludeMask uint32) int {
	return e.ix.PointInside(pos.X, pos.Y, excludeMask)
}

func (e *polygonEngine) SyncStructures() {
	st := e.res.state
	set := func(groups []int, alive bool) {
		for _, g := range groups {
			mask := e.builtMask[g]
			if !alive {
				mask = geom.AllHitBits
			}
			e.ix.SetHitMask(g, mask)
		}
	}
	for i, groups := range e.targetGroups {
		t := st.Target(i)
		set(groups, t == nil || t.Alive())
	}
	for i, groups := range e.cannonGroups {
		c := st.Cannon(i)
		set(groups, c == nil || c.Alive())
	}
}

// resolve hands an obstruction to the resolver and updates group masks
// if a structure was destroyed by it.
func (e *polygonEngine) resolve(ent arena.Entity, hit walls.Hit, mv *walls.Move) Outcome {
	out := e.res.Resolve(ent, hit, mv)
	if e.res.takeStructureChange() {
		e.SyncStructures()
	}
	return out
}

func lineHit(ix *walls.Index, line int) walls.Hit {
	return walls.Hit{Line: line, Corner: -1, Point: -1, Seg: ix.Segment(line)}
}

// advance moves the sweep start by what the sweep managed.
func (e *polygonEngine) advance(mv *walls.Move, moved geom.Vec) {
	mv.Start = e.ix.Bounds().WrapVec(mv.Start.Add(moved))
	mv.Delta = mv.Delta.Sub(moved)
}

func (e *polygonEngine) MoveObject(obj *arena.Object) {
	if obj.Type == arena.ObjBall {
		e.moveBall(obj)
		return
	}
	e.movePoint(obj, geom.NonBallBit|geom.TeamBit(obj.Team))
}

// movePoint moves an object as a single point. A point that stops at a
// corner is bounced off both lines and stepped around it.
func (e *polygonEngine) movePoint(obj *arena.Object, mask uint32) {
	mv := walls.Move{Start: obj.Pos, Delta: obj.Vel.Delta(e.res.rules.TimeStep), HitMask: mask}
	nothingDone := 0
	for tries := 0; !mv.Delta.IsZero(); tries++ {
		if tries >= maxObjectTries || nothingDone >= maxNothingDone {
			stuck(e.log, obj)
			return
		}
		from := mv.Start
		r := e.ix.SweepPoint(mv)
		e.advance(&mv, r.Moved)
		if !r.Hit.Blocked() {
			break
		}
		line := r.Hit.Line
		if other := e.ix.Away(&mv, line); other >= 0 {
			if !e.clearCorner(&mv, obj, line, other) {
				break
			}
		} else if r.Hit.Seg.SideVel(obj.Vel) < 0 && e.resolve(obj, r.Hit, &mv) == Crashed {
			break
		}
		nothingDone = progress(nothingDone, from, mv.Start)
	}
	obj.Pos = mv.Start
	e.leftUniverse(obj)
}

// progress counts resolutions in a row that left the mover where it was.
func progress(nothingDone int, from, to geom.Vec) int {
	if from == to {
		return nothingDone + 1
	}
	return 0
}

func (e *polygonEngine) leftUniverse(obj *arena.Object) {
	b := e.ix.Bounds()
	if !b.Wrap && !b.Contains(obj.Pos) {
		obj.Kill()
	}
}

// moveBall sweeps the ball's round outline. A ball carried by a phasing
// player goes through everything.
func (e *polygonEngine) moveBall(ball *arena.Object) {
	rules := e.res.rules
	var owner *arena.Player
	if ball.Owner != arena.NoID {
		owner = e.res.host.PlayerByID(ball.Owner)
	}
	if owner != nil && phasing(owner) {
		ball.Pos = drift(e.ix.Bounds(), ball.Pos, ball.Vel, rules.TimeStep)
		return
	}
	mask := geom.BallBit | geom.NoTeamBit
	if owner != nil {
		mask = geom.BallBit | geom.TeamBit(owner.Team)
	}
	if rules.TreatBallAsPoint {
		e.movePoint(ball, mask)
		return
	}

	mv := walls.Move{Start: ball.Pos, Delta: ball.Vel.Delta(rules.TimeStep), HitMask: mask}
	nothingDone := 0
	for tries := 0; !mv.Delta.IsZero(); tries++ {
		if tries >= maxObjectTries || nothingDone >= maxNothingDone {
			stuck(e.log, ball)
			return
		}
		from := mv.Start
		r := e.ix.SweepShape(mv, e.ball, 0)
		e.advance(&mv, r.Moved)
		if !r.Hit.Blocked() {
			break
		}
		if e.shapeContact(ball, &ball.Vel, &mv, r.Hit, e.ball, 0) == Crashed {
			break
		}
		nothingDone = progress(nothingDone, from, mv.Start)
	}
	ball.Pos = mv.Start
	e.leftUniverse(ball)
}

// shapeContact handles an outline that stopped against hit. It first
// tries to step the outline off the obstruction; if something else is in
// the way the mover bounces off whichever of the two it is heading into,
// or stops dead when it heads into neither.
func (e *polygonEngine) shapeContact(ent arena.Entity, vel *geom.Vel, mv *walls.Move, hit walls.Hit, shape *geom.Shape, dir int) Outcome {
	block, ok := e.ix.ShapeAway(mv, shape, dir, hit.Seg)
	if ok {
		if hit.Seg.SideVel(*vel) < 0 {
			return e.resolve(ent, hit, mv)
		}
		return Passed
	}
	switch {
	case hit.Seg.SideVel(*vel) < 0:
		return e.resolve(ent, hit, mv)
	case block.Seg.SideVel(*vel) < 0:
		return e.resolve(ent, block, mv)
	}
	mv.Delta = geom.Vec{}
	*vel = geom.Vel{}
	return Passed
}

func (e *polygonEngine) MovePlayer(pl *arena.Player) {
	rules := e.res.rules
	b := e.ix.Bounds()
	if !pl.Active() {
		if pl.Status&(arena.StatusKilled|arena.StatusPaused) == 0 {
			pl.Pos = drift(b, pl.Pos, pl.Vel, rules.TimeStep)
		}
		return
	}
	pl.Vel = pl.Vel.Scale(1 - rules.Friction)
	delta := pl.Vel.Delta(rules.TimeStep)
	if phasing(pl) || e.clear(pl.Pos, delta) {
		pl.Pos = b.WrapVec(pl.Pos.Add(delta))
		e.playerLeftUniverse(pl)
		pl.Speed = pl.Vel.Len()
		return
	}

	mv := walls.Move{Start: pl.Pos, Delta: delta, HitMask: pl.HitMask()}
	nothingDone := 0
	for tries := 0; !mv.Delta.IsZero(); tries++ {
		if tries >= maxObjectTries {
			e.log.WithFields(logrus.Fields{"player": pl.Name, "pos": pl.Pos}).Error("couldn't move player")
			e.res.PlayerCrash(pl, arena.CrashUnknown, -1, -1)
			break
		}
		from := mv.Start
		r := e.ix.SweepShape(mv, pl.Ship, pl.Dir)
		e.advance(&mv, r.Moved)
		if !r.Hit.Blocked() {
			break
		}
		out := e.shapeContact(pl, &pl.Vel, &mv, r.Hit, pl.Ship, pl.Dir)
		if out == Crashed || out == Warped {
			break
		}
		if nothingDone = progress(nothingDone, from, mv.Start); nothingDone >= maxNothingDone {
			e.log.WithFields(logrus.Fields{"player": pl.Name, "pos": mv.Start}).Error("player wedged")
			e.res.PlayerCrash(pl, arena.CrashUnknown, -1, r.Hit.Point)
			break
		}
	}
	pl.Pos = mv.Start
	e.playerLeftUniverse(pl)
	pl.Speed = pl.Vel.Len()
}

// clear reports whether a ship at pos can travel delta without any wall
// being in reach.
func (e *polygonEngine) clear(pos, delta geom.Vec) bool {
	travel := max(geom.Abs(delta.X), geom.Abs(delta.Y)) + geom.MaxShapeOffset
	return travel < e.ix.ClearDistance(pos.X, pos.Y)
}

func (e *polygonEngine) playerLeftUniverse(pl *arena.Player) {
	b := e.ix.Bounds()
	if !b.Wrap && !b.Contains(pl.Pos) && pl.Active() {
		e.res.PlayerCrash(pl, arena.CrashUniverse, -1, -1)
	}
}

// TurnPlayer rotates the ship one facing at a time toward where it is
// steered, stopping at the first step that would touch a wall.
func (e *polygonEngine) TurnPlayer(pl *arena.Player) {
	target := wantedDir(pl)
	if target == pl.Dir {
		return
	}
	if !pl.Active() || phasing(pl) {
		pl.Dir = target
		return
	}
	sign := turnSign(pl.Dir, target)
	for pl.Dir != target {
		if !e.ix.ShapeTurnStep(pl.Ship, pl.HitMask(), pl.Pos, pl.Dir, sign) {
			pl.LastWallTouch = e.res.state.Frame
			return
		}
		pl.Dir = geom.Mod(pl.Dir+sign, geom.Res)
	}
}
