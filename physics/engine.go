package physics

import (
	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/geom"
)

// MotionEngine moves entities through one loaded map. The polygon and
// grid engines share the Resolver rules; which one runs is decided once
// when the map is loaded.
type MotionEngine interface {
	Name() string
	MoveObject(obj *arena.Object)
	MovePlayer(pl *arena.Player)
	TurnPlayer(pl *arena.Player)
	// PointInside returns the group holding pos, ignoring groups whose
	// hit mask meets excludeMask, or geom.NoGroup.
	PointInside(pos geom.Vec, excludeMask uint32) int
	// SyncStructures takes destroyed structures out of play and puts
	// rebuilt ones back.
	SyncStructures()
	Bounds() geom.Bounds
}

const (
	// maxObjectTries caps the sweeps of one object in one frame.
	maxObjectTries = 5000
	// maxNothingDone is how many resolutions in a row may make no
	// progress before the mover is given up on.
	maxNothingDone = 5
)

// stuck destroys an object the engine could not move.
func stuck(log logrus.FieldLogger, obj *arena.Object) {
	log.WithFields(logrus.Fields{
		"type": obj.Type,
		"pos":  obj.Pos,
		"vel":  obj.Vel,
	}).Error("couldn't move object")
	obj.Kill()
}

// turnSign is the direction of the shortest turn from dir to target.
func turnSign(dir, target int) int {
	if geom.Mod(target-dir, geom.Res) <= geom.Res/2 {
		return 1
	}
	return -1
}

// wantedDir is the facing FloatDir rounds to.
func wantedDir(pl *arena.Player) int {
	return geom.Mod(int(pl.FloatDir+0.5), geom.Res)
}

func phasing(pl *arena.Player) bool { return pl.Used&arena.EquipPhasing != 0 }

// drift moves an entity that takes no part in collisions.
func drift(b geom.Bounds, pos geom.Vec, vel geom.Vel, step float64) geom.Vec {
	return b.WrapVec(pos.Add(vel.Delta(step)))
}
