// Package arena holds the gameplay state both motion engines act on:
// moving objects, players, map structures and the rules that tune them.
package arena

import (
	"math"

	"arena-server/geom"
)

// ObjType is a bit per object kind so that rule sets can be expressed as
// masks.
type ObjType uint32

const (
	ObjShot ObjType = 1 << iota
	ObjSmartShot
	ObjTorpedo
	ObjHeatShot
	ObjMine
	ObjPulse
	ObjDebris
	ObjSpark
	ObjBall
	ObjItem
	ObjWreckage
	ObjAsteroid
	ObjCannonShot
	ObjPlayer
)

// KillingShots are the weapon types that damage targets.
const KillingShots = ObjShot | ObjSmartShot | ObjTorpedo | ObjHeatShot | ObjPulse | ObjCannonShot

var objTypeNames = []struct {
	t    ObjType
	name string
}{
	{ObjPlayer, "player"},
	{ObjDebris, "debris"},
	{ObjSpark, "spark"},
	{ObjBall, "ball"},
	{ObjShot, "shot"},
	{ObjSmartShot, "smart_shot"},
	{ObjMine, "mine"},
	{ObjTorpedo, "torpedo"},
	{ObjHeatShot, "heat_shot"},
	{ObjPulse, "pulse"},
	{ObjItem, "item"},
	{ObjWreckage, "wreckage"},
	{ObjAsteroid, "asteroid"},
	{ObjCannonShot, "cannon_shot"},
}

func (t ObjType) String() string {
	for _, n := range objTypeNames {
		if t&n.t != 0 {
			return n.name
		}
	}
	return "unknown"
}

// Status bits shared by objects and players.
type Status uint32

const (
	StatusGravity Status = 1 << iota
	StatusOwnerImmune
	StatusFromBounce
	StatusFromCannon
	StatusRecreate
	StatusNoExplosion
	StatusPlaying
	StatusPaused
	StatusGameOver
	StatusKilled
	StatusWarping
	StatusWarped
)

// NoID marks an unowned object.
const NoID = -1

// LifeForever is the life a loose ball starts with; the frames it has
// been loose are counted down from it.
const LifeForever int64 = math.MaxInt64

// Mods are the weapon modifiers relevant to target damage.
type Mods struct {
	Mini    int
	Nuclear bool
	// Mult scales shot damage; zero means one.
	Mult float64
}

// Object is anything that moves and is not a player: shots, debris,
// sparks, mines, balls and loose items.
type Object struct {
	ID     int
	Type   ObjType
	Pos    geom.Vec
	Vel    geom.Vel
	Mass   float64
	Life   int64
	Team   int
	Owner  int
	Status Status
	// Dir is the heading of missiles and debris.
	Dir  int
	Mods Mods

	// Treasure is the home treasure of a ball.
	Treasure int
	// ItemKind and ItemCount describe a loose item.
	ItemKind  int
	ItemCount int
}

// Alive reports whether the object still has life left.
func (o *Object) Alive() bool { return o.Life > 0 }

// Kill expires the object at the end of the frame.
func (o *Object) Kill() { o.Life = 0 }

// Entity is anything the collision resolver can act on.
type Entity interface {
	Position() geom.Vec
	Velocity() geom.Vel
	TeamID() int
}

func (o *Object) Position() geom.Vec { return o.Pos }
func (o *Object) Velocity() geom.Vel { return o.Vel }
func (o *Object) TeamID() int        { return o.Team }
