package physics

import (
	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/blockmap"
	"arena-server/geom"
)

type gridEngine struct {
	g   *blockmap.Grid
	res *Resolver
	log logrus.FieldLogger
}

// NewGridEngine returns the engine for block maps. Destroyed structures
// read as space straight from the state, so there is nothing to sync.
func NewGridEngine(g *blockmap.Grid, res *Resolver) MotionEngine {
	return &gridEngine{g: g, res: res, log: res.log.WithField("engine", "grid")}
}

func (e *gridEngine) Name() string { return "grid" }

func (e *gridEngine) Bounds() geom.Bounds { return e.g.Bounds() }

// PointInside treats every solid block as group 0. The mask is ignored
// since block maps have no team transparent walls.
func (e *gridEngine) PointInside(pos geom.Vec, _ uint32) int {
	if e.g.SolidAt(e.res.state, pos) {
		return 0
	}
	return geom.NoGroup
}

func (e *gridEngine) SyncStructures() {}

func (e *gridEngine) info() blockmap.MoveInfo {
	rules := e.res.rules
	return blockmap.MoveInfo{
		State:               e.res.state,
		EdgeWrap:            e.g.Wrap,
		EdgeBounce:          rules.EdgeBounce,
		TeamPlay:            rules.TeamPlay,
		TeamImmunity:        rules.TeamImmunity,
		TargetTeamCollision: rules.TargetTeamCollision,
		WormTime:            rules.WormTime,
		Rand:                e.res.rnd.Float64,
	}
}

func (e *gridEngine) objectInfo(obj *arena.Object) *blockmap.MoveInfo {
	rules := e.res.rules
	mi := e.info()
	mi.Object = obj
	mi.Team = obj.Team
	mi.WallBounce = rules.BounceTypes&obj.Type != 0
	mi.CannonCrashes = rules.CannonCrashTypes&obj.Type != 0
	mi.TargetCrashes = rules.TargetCrashTypes&obj.Type != 0
	mi.TreasureCrashes = rules.TreasureCrashTypes&obj.Type != 0
	mi.WormholeWarps = true
	if obj.Type == arena.ObjBall {
		if owner := e.res.host.PlayerByID(obj.Owner); owner != nil {
			mi.Team = owner.Team
			mi.Phased = phasing(owner)
		}
		mi.Ball = func(ti int) bool { return e.res.BallEntersTreasure(obj, ti) }
	}
	return &mi
}

func (e *gridEngine) playerInfo(pl *arena.Player) *blockmap.MoveInfo {
	mi := e.info()
	mi.Player = pl
	mi.Team = pl.Team
	mi.WallBounce = true
	mi.CannonCrashes = true
	mi.TargetCrashes = true
	mi.TreasureCrashes = true
	mi.WormholeWarps = true
	mi.Phased = phasing(pl)
	return &mi
}

// roomFor reports whether travel todo from pos stays clear of every
// block, given how many half blocks of margin a mover needs.
func (e *gridEngine) roomFor(pos, todo geom.Vec, margin int) bool {
	wd := e.g.WalldistAt(pos.X, pos.Y)
	if wd <= margin {
		return false
	}
	maxcl := ((wd - margin) * blockmap.B) >> 1
	return maxcl >= geom.Abs(todo.X) && maxcl >= geom.Abs(todo.Y)
}

func (e *gridEngine) MoveObject(obj *arena.Object) {
	rules := e.res.rules
	b := e.g.Bounds()
	todo := obj.Vel.Delta(rules.TimeStep)
	if e.g.Wrap || b.Contains(obj.Pos) {
		if e.roomFor(obj.Pos, todo, 2) {
			obj.Pos = b.WrapVec(obj.Pos.Add(todo))
			return
		}
	}

	ms := blockmap.NewMoveState(e.objectInfo(obj), obj.Pos, obj.Vel, todo, obj.Dir)
	nothingDone := 0
	for tries := 0; !ms.Todo.IsZero(); tries++ {
		if tries >= maxObjectTries {
			stuck(e.log, obj)
			return
		}
		e.g.MoveSegment(&ms)
		ms.Pos = b.WrapVec(ms.Pos.Add(ms.Done))
		if ms.Crash != arena.NotACrash || !obj.Alive() {
			break
		}
		if ms.Bounce != blockmap.NoBounce && ms.Bounce != blockmap.BounceEdge {
			if obj.Type != arena.ObjBall {
				obj.Life = int64(float64(obj.Life) * rules.ObjectWallBounceLifeFactor)
				if obj.Life <= 0 {
					break
				}
			}
			if obj.Type == arena.ObjSpark && obj.Status&arena.StatusFromBounce == 0 {
				obj.Status &^= arena.StatusOwnerImmune
			}
			maxSpeed := rules.MaxObjectWallBounceSpeed
			if ms.Vel.X*ms.Vel.X+ms.Vel.Y*ms.Vel.Y > maxSpeed*maxSpeed {
				obj.Kill()
				break
			}
			ms.Vel = ms.Vel.Scale(rules.ObjectWallBrakeFactor)
			ms.Todo = scaleVec(ms.Todo, rules.ObjectWallBrakeFactor)
		}
		if ms.Done.IsZero() {
			if nothingDone++; nothingDone >= maxNothingDone {
				ms.Crash = arena.CrashUnknown
				break
			}
		} else {
			nothingDone = 0
		}
	}
	obj.Pos = ms.Pos
	obj.Vel = ms.Vel
	obj.Dir = ms.Dir
	if ms.Crash != arena.NotACrash {
		e.objectCrash(obj, &ms)
	}
}

func scaleVec(v geom.Vec, f float64) geom.Vec {
	return geom.Vec{X: int(float64(v.X) * f), Y: int(float64(v.Y) * f)}
}

// objectCrash settles an object that hit something it cannot bounce
// off.
func (e *gridEngine) objectCrash(obj *arena.Object, ms *blockmap.MoveState) {
	switch ms.Crash {
	case arena.CrashTreasure:
		if obj.Type != arena.ObjBall {
			obj.Kill()
		}
	case arena.CrashTarget:
		obj.Kill()
		e.res.ObjectHitsTarget(ms.Target, obj)
	case arena.CrashCannon:
		e.res.CannonHit(ms.Cannon, obj)
	case arena.CrashUnknown:
		e.log.WithFields(logrus.Fields{"type": obj.Type, "pos": obj.Pos}).Warn("object made no progress")
		obj.Kill()
	default:
		obj.Kill()
	}
	e.res.takeStructureChange()
}

func (e *gridEngine) MovePlayer(pl *arena.Player) {
	rules := e.res.rules
	b := e.g.Bounds()
	if !pl.Active() {
		if pl.Status&(arena.StatusKilled|arena.StatusPaused) == 0 {
			pl.Pos = drift(b, pl.Pos, pl.Vel, rules.TimeStep)
		}
		return
	}
	friction := rules.Friction
	if bx, by := blockmap.BlockOf(b.WrapVec(pl.Pos)); e.g.At(bx, by).Kind() == blockmap.KindFriction {
		friction = rules.BlockFriction
	}
	pl.Vel = pl.Vel.Scale(1 - friction)
	todo := pl.Vel.Delta(rules.TimeStep)
	if b.Contains(b.WrapVec(pl.Pos)) && e.roomFor(pl.Pos, todo, 3) {
		pl.Pos = b.WrapVec(pl.Pos.Add(todo))
		pl.Speed = pl.Vel.Len()
		return
	}

	mi := e.playerInfo(pl)
	n := pl.Ship.NumPoints()
	ms := make([]blockmap.MoveState, n)
	pos := pl.Pos
	for i := range ms {
		ms[i] = blockmap.NewMoveState(mi, b.WrapVec(pos.Add(pl.Ship.Point(i, pl.Dir))), pl.Vel, todo, pl.Dir)
	}

	worst := 0
	crash := arena.NotACrash
	item := -1
	nothingDone := 0
	for tries := 0; !ms[worst].Todo.IsZero(); tries++ {
		if tries >= maxObjectTries {
			e.log.WithFields(logrus.Fields{"player": pl.Name, "pos": pl.Pos}).Error("couldn't move player")
			crash = arena.CrashUnknown
			break
		}
		bounce := -1
		worst = 0
		for i := range ms {
			ms[i].Cannon, ms[i].Target, ms[i].Treasure, ms[i].Wormhole = -1, -1, -1, -1
			e.g.MoveSegment(&ms[i])
			if ms[i].Crash != arena.NotACrash {
				worst = i
				break
			}
			if ms[i].Bounce != blockmap.NoBounce {
				if bounce < 0 || e.preferBounce(ms[i].Bounce, ms[bounce].Bounce) {
					bounce = i
				}
				continue
			}
			if bounce < 0 && lessDone(&ms[i], &ms[worst]) {
				worst = i
			}
		}
		if c := ms[worst].Crash; c != arena.NotACrash {
			crash = c
			item = crashItem(&ms[worst])
			break
		}

		if bounce >= 0 {
			worst = bounce
			w := &ms[worst]
			nothingDone = 0
			if w.Bounce != blockmap.BounceEdge {
				pl.LastWallTouch = e.res.state.Frame
				speed := w.Vel.Len()
				w.Vel = w.Vel.Scale(rules.PlayerWallBrakeFactor)
				w.Todo = scaleVec(w.Todo, rules.PlayerWallBrakeFactor)
				c := e.res.playerImpact(pl, impact{
					speed:   speed,
					wallDir: w.Bounce.WallDir(),
					angled:  true,
					target:  w.Target,
				})
				if c != arena.NotACrash {
					crash = c
					item = w.Target
					break
				}
			}
		} else if ms[worst].Done.IsZero() {
			if nothingDone++; nothingDone >= maxNothingDone {
				crash = arena.CrashUnknown
				break
			}
		} else {
			nothingDone = 0
		}

		w := ms[worst]
		pos = b.WrapVec(pos.Add(w.Done))
		for i := range ms {
			ms[i].Vel, ms[i].Todo, ms[i].Dir = w.Vel, w.Todo, w.Dir
			ms[i].Pos = b.WrapVec(pos.Add(pl.Ship.Point(i, pl.Dir)))
		}
	}

	pl.Pos = pos
	pl.Vel = ms[worst].Vel
	pl.Speed = pl.Vel.Len()
	if crash != arena.NotACrash {
		e.res.PlayerCrash(pl, crash, item, worst)
	}
	e.res.takeStructureChange()
}

// preferBounce decides whether bounce b replaces the chosen bounce cur.
// Edge bounces win over wall bounces; otherwise it is a coin toss.
func (e *gridEngine) preferBounce(b, cur blockmap.Bounce) bool {
	if (b == blockmap.BounceEdge) != (cur == blockmap.BounceEdge) {
		return b == blockmap.BounceEdge
	}
	return e.res.rnd.Float64() < 0.5
}

// lessDone reports whether a got less of its travel done than b, as a
// share of the travel each had to do.
func lessDone(a, b *blockmap.MoveState) bool {
	ra := geom.Abs(a.Done.X) + geom.Abs(a.Done.Y)
	rb := geom.Abs(b.Done.X) + geom.Abs(b.Done.Y)
	return ra < rb
}

func crashItem(ms *blockmap.MoveState) int {
	switch ms.Crash {
	case arena.CrashWormhole:
		return ms.Wormhole
	case arena.CrashCannon:
		return ms.Cannon
	case arena.CrashTarget:
		return ms.Target
	case arena.CrashTreasure:
		return ms.Treasure
	}
	return -1
}

// TurnPlayer turns the ship one facing at a time, moving each hull point
// along the arc it sweeps. Close to walls a step that would run a point
// into a block stops the turn.
func (e *gridEngine) TurnPlayer(pl *arena.Player) {
	target := wantedDir(pl)
	if target == pl.Dir {
		return
	}
	if !pl.Active() || phasing(pl) || e.g.WalldistAt(pl.Pos.X, pl.Pos.Y) > 2 {
		pl.Dir = target
		return
	}
	sign := turnSign(pl.Dir, target)
	for pl.Dir != target {
		next := geom.Mod(pl.Dir+sign, geom.Res)
		if !e.turnStep(pl, next) {
			pl.LastWallTouch = e.res.state.Frame
			return
		}
		pl.Dir = next
		e.clampToBorder(pl)
	}
}

func (e *gridEngine) turnStep(pl *arena.Player, next int) bool {
	b := e.g.Bounds()
	mi := e.playerInfo(pl)
	mi.WormholeWarps = false
	for i := 0; i < pl.Ship.NumPoints(); i++ {
		from := pl.Ship.Point(i, pl.Dir)
		d := pl.Ship.Point(i, next).Sub(from)
		if d.IsZero() {
			continue
		}
		ms := blockmap.NewMoveState(mi, b.WrapVec(pl.Pos.Add(from)), geom.Vel{X: float64(d.X), Y: float64(d.Y)}, d, pl.Dir)
		for tries := 0; !ms.Todo.IsZero(); tries++ {
			if tries >= maxNothingDone*2 {
				return false
			}
			e.g.MoveSegment(&ms)
			if ms.Crash != arena.NotACrash {
				return false
			}
			if ms.Bounce != blockmap.NoBounce && ms.Bounce != blockmap.BounceEdge {
				return false
			}
			if ms.Bounce == blockmap.BounceEdge {
				break
			}
			ms.Pos = b.WrapVec(ms.Pos.Add(ms.Done))
		}
	}
	return true
}

// clampToBorder pulls a ship back inside a world without wrap when a turn
// swung a hull point past the edge.
func (e *gridEngine) clampToBorder(pl *arena.Player) {
	b := e.g.Bounds()
	if b.Wrap {
		return
	}
	for i := 0; i < pl.Ship.NumPoints(); i++ {
		p := pl.Pos.Add(pl.Ship.Point(i, pl.Dir))
		switch {
		case p.X < 0:
			pl.Pos.X -= p.X
		case p.X >= b.Width:
			pl.Pos.X -= p.X - b.Width + 1
		}
		switch {
		case p.Y < 0:
			pl.Pos.Y -= p.Y
		case p.Y >= b.Height:
			pl.Pos.Y -= p.Y - b.Height + 1
		}
	}
}
