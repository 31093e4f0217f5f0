package physics

import (
	"math"

	"github.com/sirupsen/logrus"

	"arena-server/arena"
)

// Integrator runs whole frames: structure timers, warps, player turns
// and moves, then objects.
type Integrator struct {
	engine MotionEngine
	res    *Resolver
	log    logrus.FieldLogger
}

func NewIntegrator(engine MotionEngine, res *Resolver) *Integrator {
	return &Integrator{engine: engine, res: res, log: res.log.WithField("engine", engine.Name())}
}

func (in *Integrator) Engine() MotionEngine { return in.engine }

func (in *Integrator) Resolver() *Resolver { return in.res }

// Step advances the game by one frame. Dead objects are left in place
// with no life; removing them is up to the caller.
func (in *Integrator) Step(players []*arena.Player, objects []*arena.Object) {
	st := in.res.state
	st.Frame++
	if in.tickStructures() {
		in.engine.SyncStructures()
	}

	for _, pl := range players {
		if pl.Status&arena.StatusWarping != 0 {
			in.warp(pl)
		}
		in.engine.TurnPlayer(pl)
		in.engine.MovePlayer(pl)
	}

	life := int64(max(1, math.Round(in.res.rules.TimeStep)))
	for _, obj := range objects {
		if !obj.Alive() {
			continue
		}
		in.engine.MoveObject(obj)
		if obj.Alive() {
			obj.Life = max(obj.Life-life, 0)
		}
	}
	if in.res.takeStructureChange() {
		in.engine.SyncStructures()
	}
}

// tickStructures counts down dead targets and cannons and reports
// whether any came back.
func (in *Integrator) tickStructures() bool {
	st := in.res.state
	changed := false
	for i := range st.Targets {
		t := &st.Targets[i]
		if t.DeadTime > 0 {
			if t.DeadTime--; t.DeadTime == 0 {
				t.Damage = arena.TargetDamage
				t.LastChange = st.Frame
				changed = true
			}
		}
	}
	for i := range st.Cannons {
		c := &st.Cannons[i]
		if c.DeadTime > 0 {
			if c.DeadTime--; c.DeadTime == 0 {
				changed = true
			}
		}
	}
	for i := range st.Wormholes {
		if st.Wormholes[i].Countdown > 0 {
			st.Wormholes[i].Countdown--
		}
	}
	return changed
}

// warp sends a player that entered a wormhole to a random exit other
// than the hole it came through.
func (in *Integrator) warp(pl *arena.Player) {
	st := in.res.state
	pl.Status &^= arena.StatusWarping
	hole := st.Wormhole(pl.WormholeHit)
	if hole == nil {
		return
	}
	var exits []int
	for i, w := range st.Wormholes {
		if i != pl.WormholeHit && w.Type != arena.WormIn {
			exits = append(exits, i)
		}
	}
	if len(exits) == 0 {
		return
	}
	dest := exits[in.res.rnd.Intn(len(exits))]
	if hole.Countdown > 0 && hole.LastDest >= 0 && hole.LastDest != pl.WormholeHit {
		dest = hole.LastDest
	}
	hole.LastDest = dest
	in.log.WithFields(logrus.Fields{
		"player": pl.Name,
		"from":   pl.WormholeHit,
		"to":     dest,
	}).Debug("player warped")
	pl.Pos = in.engine.Bounds().WrapVec(st.Wormholes[dest].Pos)
	pl.WormholeDest = dest
	pl.Status |= arena.StatusWarped
}
