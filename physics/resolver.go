// Package physics moves objects and players through a loaded map and
// decides what every wall contact does to them.
package physics

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/geom"
	"arena-server/walls"
)

// Outcome is what a resolved obstruction did to the mover.
type Outcome int

const (
	// Passed means the obstruction does not apply to the mover.
	Passed Outcome = iota
	Bounced
	Crashed
	// Warped means a player entered a wormhole.
	Warped
)

func (o Outcome) String() string {
	switch o {
	case Passed:
		return "passed"
	case Bounced:
		return "bounced"
	case Crashed:
		return "crashed"
	case Warped:
		return "warped"
	}
	return "unknown"
}

// GroupTable is the group data the resolver reads from the polygon
// index. Hit masks change when structures are destroyed or rebuilt.
type GroupTable interface {
	NumGroups() int
	Group(g int) geom.Group
	SetHitMask(g int, mask uint32)
}

// Resolver applies the gameplay rules of wall contacts: bounces, crashes,
// structure damage and the scoring that goes with them.
type Resolver struct {
	log    logrus.FieldLogger
	host   arena.Host
	rules  arena.Rules
	state  *arena.State
	rnd    *rand.Rand
	groups GroupTable

	// structuresChanged is set when a target or cannon died, so the
	// polygon engine can update group masks before the next sweep.
	structuresChanged bool
}

// NewResolver returns a resolver acting on st. A nil log uses the
// standard logger; a nil rnd is seeded from the frame counter.
func NewResolver(log logrus.FieldLogger, host arena.Host, rules arena.Rules, st *arena.State, rnd *rand.Rand) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(st.Frame + 1))
	}
	return &Resolver{log: log, host: host, rules: rules, state: st, rnd: rnd}
}

func (r *Resolver) Rules() arena.Rules { return r.rules }

func (r *Resolver) State() *arena.State { return r.state }

// useGroups attaches the polygon group table.
func (r *Resolver) useGroups(g GroupTable) { r.groups = g }

func (r *Resolver) group(g int) (geom.Group, bool) {
	if g == 0 {
		return geom.WallGroup, true
	}
	if r.groups == nil || g < 0 || g >= r.groups.NumGroups() {
		return geom.Group{}, false
	}
	return r.groups.Group(g), true
}

// takeStructureChange reports and clears the structure change flag.
func (r *Resolver) takeStructureChange() bool {
	c := r.structuresChanged
	r.structuresChanged = false
	return c
}

// Resolve decides what the obstruction hit does to ent, which was moving
// with mv. It updates mv.Delta and the entity's velocity on a bounce.
func (r *Resolver) Resolve(ent arena.Entity, hit walls.Hit, mv *walls.Move) Outcome {
	if !hit.Blocked() {
		return Passed
	}
	grp, ok := r.group(hit.Seg.Group)
	if !ok {
		r.log.WithFields(logrus.Fields{
			"group": hit.Seg.Group,
			"pos":   ent.Position(),
		}).Error("obstruction has no group")
		switch e := ent.(type) {
		case *arena.Object:
			e.Kill()
		case *arena.Player:
			r.PlayerCrash(e, arena.CrashUnknown, -1, hit.Point)
		}
		mv.Delta = geom.Vec{}
		return Crashed
	}
	if grp.HitMask&mv.HitMask != 0 {
		return Passed
	}
	switch e := ent.(type) {
	case *arena.Object:
		if r.BounceObject(e, mv, hit.Seg) {
			return Bounced
		}
		return Crashed
	case *arena.Player:
		if r.BouncePlayer(e, mv, hit.Seg, hit.Point) {
			return Bounced
		}
		if e.Status&arena.StatusWarping != 0 {
			return Warped
		}
		return Crashed
	}
	return Passed
}

// reflect mirrors the velocity and the remaining travel across seg and
// slows both by brake.
func reflect(v *geom.Vel, mv *walls.Move, seg *geom.Segment, brake float64) {
	fx, fy := seg.Reflect(float64(mv.Delta.X), float64(mv.Delta.Y))
	mv.Delta = geom.Vec{X: int(fx * brake), Y: int(fy * brake)}
	vx, vy := seg.Reflect(v.X, v.Y)
	*v = geom.Vel{X: vx * brake, Y: vy * brake}
}

// BounceObject handles an object meeting seg. It reports whether the
// object survived and carries on with the reflected travel in mv.
func (r *Resolver) BounceObject(obj *arena.Object, mv *walls.Move, seg geom.Segment) bool {
	grp, _ := r.group(seg.Group)
	switch grp.Kind {
	case geom.KindTreasure:
		if obj.Type == arena.ObjBall {
			r.BallHitsGoal(obj, grp)
		}
		obj.Kill()
		return false
	case geom.KindTarget:
		r.ObjectHitsTarget(grp.Item, obj)
		obj.Kill()
		return false
	case geom.KindCannon:
		if cn := r.state.Cannon(grp.Item); cn != nil && obj.Type == arena.ObjItem {
			cn.AddItem(obj.ItemKind, obj.ItemCount)
		}
		obj.Kill()
		return false
	case geom.KindWormhole:
		obj.Kill()
		return false
	}

	if r.rules.BounceTypes&obj.Type == 0 {
		obj.Kill()
		return false
	}
	if obj.Type != arena.ObjBall {
		obj.Life = int64(float64(obj.Life) * r.rules.ObjectWallBounceLifeFactor)
		if obj.Life <= 0 {
			return false
		}
	}
	maxSpeed := r.rules.MaxObjectWallBounceSpeed
	if obj.Vel.X*obj.Vel.X+obj.Vel.Y*obj.Vel.Y > maxSpeed*maxSpeed {
		obj.Kill()
		return false
	}
	if obj.Type == arena.ObjSpark && obj.Status&arena.StatusFromBounce == 0 {
		obj.Status &^= arena.StatusOwnerImmune
	}
	reflect(&obj.Vel, mv, &seg, r.rules.ObjectWallBrakeFactor)
	return true
}

// BouncePlayer handles a ship vertex (or a wall corner touching the hull)
// meeting seg. It reports whether the ship survived the bounce.
func (r *Resolver) BouncePlayer(pl *arena.Player, mv *walls.Move, seg geom.Segment, point int) bool {
	grp, _ := r.group(seg.Group)
	crash := arena.NotACrash
	switch grp.Kind {
	case geom.KindTreasure:
		crash = arena.CrashTreasure
	case geom.KindTarget:
		crash = arena.CrashTarget
	case geom.KindCannon:
		crash = arena.CrashCannon
	case geom.KindWormhole:
		crash = arena.CrashWormhole
	}
	if crash != arena.NotACrash {
		r.PlayerCrash(pl, crash, grp.Item, point)
		mv.Delta = geom.Vec{}
		return false
	}

	pl.LastWallTouch = r.state.Frame
	crash = r.playerImpact(pl, impact{
		speed:   pl.Vel.Len(),
		wallDir: wallNormalDir(&seg, pl.Vel),
		target:  -1,
	})
	if crash != arena.NotACrash {
		r.PlayerCrash(pl, crash, -1, point)
		mv.Delta = geom.Vec{}
		return false
	}
	reflect(&pl.Vel, mv, &seg, r.rules.PlayerWallBrakeFactor)
	return true
}

// wallNormalDir is the facing of the wall normal pointing back at a mover
// arriving with v.
func wallNormalDir(seg *geom.Segment, v geom.Vel) int {
	nx, ny := float64(seg.Delta.Y), float64(-seg.Delta.X)
	if nx*v.X+ny*v.Y > 0 {
		nx, ny = -nx, -ny
	}
	return geom.DirOf(nx, ny)
}

// impact is one ship bounce off a wall as the limits see it.
type impact struct {
	speed float64
	// wallDir is the facing a ship has when its tail is towards the
	// wall.
	wallDir int
	// angled makes the cost grow with how far the ship faces away from
	// wallDir. Without it a flat nine tenths of the cost applies.
	angled bool
	// target is the target block bounced off, or -1.
	target int
}

// deltaDir is the signed shortest turn from dir to wallDir.
func deltaDir(dir, wallDir int) int {
	d := geom.Mod(wallDir-dir, geom.Res)
	if d > geom.Res/2 {
		d -= geom.Res
	}
	return d
}

// playerImpact applies the speed and angle limits, fuel drain, item
// damage and sparks of a ship bouncing off a wall. It returns the crash
// the bounce turns into, or NotACrash.
func (r *Resolver) playerImpact(pl *arena.Player, im impact) arena.Crash {
	rules := &r.rules
	v := int(im.speed) >> 2
	m := int(pl.Mass - pl.EmptyMass*0.75)
	b := 1 - 0.5*rules.PlayerWallBrakeFactor
	cost := int64(b * float64(m) * float64(v))

	shielded := pl.Used&arena.EquipShield != 0
	maxSpeed, maxAngle := rules.MaxPlayerWallBounceSpeed, rules.MaxPlayerWallBounceAngle
	if shielded {
		maxSpeed, maxAngle = rules.MaxShieldedPlayerWallBounceSpeed, rules.MaxShieldedPlayerWallBounceAngle
	}
	if pl.FullyShielded() {
		maxSpeed = max(maxSpeed, 100)
		maxAngle = geom.Res
	}
	crashAs := func(c arena.Crash) arena.Crash {
		if im.target >= 0 {
			return arena.CrashTarget
		}
		return c
	}
	armorSaves := func() bool {
		if shielded || pl.Have&arena.EquipArmor == 0 {
			return false
		}
		maxSpeed, maxAngle = rules.MaxShieldedPlayerWallBounceSpeed, rules.MaxShieldedPlayerWallBounceAngle
		r.hitArmor(pl)
		return true
	}

	if im.speed > maxSpeed && maxSpeed < rules.MaxShieldedPlayerWallBounceSpeed {
		armorSaves()
	}
	if im.speed > maxSpeed {
		return crashAs(arena.CrashWallSpeed)
	}

	d := deltaDir(pl.Dir, im.wallDir)
	ad := geom.Abs(d)
	if ad > maxAngle && maxAngle < rules.MaxShieldedPlayerWallBounceAngle {
		armorSaves()
	}
	if ad > maxAngle {
		return crashAs(arena.CrashWallAngle)
	}
	if ad <= geom.Res/16 {
		pl.FloatDir += (1 - rules.PlayerWallBrakeFactor) * float64(d)
		if pl.FloatDir >= geom.Res {
			pl.FloatDir -= geom.Res
		} else if pl.FloatDir < 0 {
			pl.FloatDir += geom.Res
		}
	}

	if im.angled {
		cost = cost * int64(geom.Res/2+ad) / geom.Res
	} else {
		cost = int64(float64(cost) * 0.9)
	}
	if !pl.FullyShielded() {
		pl.AddFuel(-int64(float64(cost<<arena.FuelScaleBits) * rules.WallBounceFuelDrainMult))
		r.damageItems(pl, float64(cost)*rules.WallBounceDestroyItemProb)
	}
	if pl.Fuel == 0 && rules.WallBounceFuelDrainMult != 0 {
		return crashAs(arena.CrashWallNoFuel)
	}
	if cost != 0 {
		if rules.WallBounceSparks {
			r.sparks(pl, cost, im.wallDir)
		}
		r.host.Sound(pl.Pos, arena.SoundPlayerBounced)
		if im.target >= 0 {
			ram := int64(float64(cost<<arena.FuelScaleBits) * (rules.WallBounceFuelDrainMult / 4))
			r.hitTarget(im.target, playerStriker(pl), ram)
		}
	}
	return arena.NotACrash
}

// hitArmor takes one piece of armor off the player.
func (r *Resolver) hitArmor(pl *arena.Player) {
	if pl.Armor > 0 {
		pl.Armor--
	}
	if pl.Armor == 0 {
		pl.Have &^= arena.EquipArmor
	}
}

// damageItems loses one of each carried item kind with probability p.
func (r *Resolver) damageItems(pl *arena.Player, p float64) {
	if p <= 0 {
		return
	}
	for i, n := range pl.Items {
		if n > 0 && r.rnd.Float64() < p {
			pl.Items[i] = n - 1
		}
	}
}

// sparks throws a fan of bounce sparks away from the wall.
func (r *Resolver) sparks(pl *arena.Player, cost int64, wallDir int) {
	intensity := int(float64(cost) * r.rules.WallBounceExplosionMult)
	if intensity <= 0 {
		return
	}
	half := intensity >> 1
	r.host.MakeDebris(arena.DebrisSpec{
		Pos:      pl.Pos,
		Vel:      pl.Vel,
		Owner:    pl.ID,
		Team:     pl.Team,
		Type:     arena.ObjSpark,
		Mass:     3.5,
		Status:   arena.StatusGravity | arena.StatusOwnerImmune | arena.StatusFromBounce,
		Radius:   1,
		Count:    half + int(float64(half)*r.rnd.Float64()),
		MinDir:   wallDir - geom.Res/4,
		MaxDir:   wallDir + geom.Res/4,
		MinSpeed: 20,
		MaxSpeed: float64(20 + intensity>>2),
		MinLife:  10,
		MaxLife:  10 + half,
	})
}
