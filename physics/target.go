package physics

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/geom"
)

// striker is whatever hits a target: a weapon or a ramming ship.
type striker struct {
	typ   arena.ObjType
	owner int
	team  int
	vel   geom.Vel
	mass  float64
	mods  arena.Mods
}

func objectStriker(o *arena.Object) striker {
	return striker{typ: o.Type, owner: o.Owner, team: o.Team, vel: o.Vel, mass: o.Mass, mods: o.Mods}
}

func playerStriker(pl *arena.Player) striker {
	return striker{typ: arena.ObjPlayer, owner: pl.ID, team: pl.Team, vel: pl.Vel, mass: pl.Mass}
}

// ObjectHitsTarget applies a weapon hit on target ti.
func (r *Resolver) ObjectHitsTarget(ti int, obj *arena.Object) {
	r.hitTarget(ti, objectStriker(obj), -1)
}

// hitTarget damages target ti. ram is the damage of a ship hitting it;
// zero or less means the standard ramming damage. A target brought down
// to zero is destroyed and the teams are scored.
func (r *Resolver) hitTarget(ti int, s striker, ram int64) {
	targ := r.state.Target(ti)
	if targ == nil {
		r.log.WithField("target", ti).Error("hit on unknown target")
		return
	}
	if s.typ&(arena.KillingShots|arena.ObjMine|arena.ObjPlayer) == 0 {
		return
	}
	if s.owner < 0 || targ.Team == s.team {
		return
	}
	killer := r.host.PlayerByID(s.owner)
	if killer == nil {
		return
	}

	switch s.typ {
	case arena.ObjShot, arena.ObjCannonShot:
		drain := 1.0
		if r.rules.ShotHitFuelDrainUsesKineticEnergy {
			v2 := s.vel.X*s.vel.X + s.vel.Y*s.vel.Y
			mass := s.mass
			if mass < 0 {
				mass = -mass
			}
			drain = v2 * mass / (r.rules.ShotsSpeed * r.rules.ShotsSpeed * r.rules.ShotsMass)
		}
		mult := s.mods.Mult
		if mult == 0 {
			mult = 1
		}
		targ.Damage += int64(arena.EDShotHit * drain * mult)
	case arena.ObjPulse:
		targ.Damage += arena.EDLaserHit
	case arena.ObjSmartShot, arena.ObjTorpedo, arena.ObjHeatShot:
		if s.mass == 0 {
			return
		}
		if s.mods.Nuclear {
			targ.Damage = 0
		} else {
			targ.Damage += int64(arena.EDSmartShotHit / (s.mods.Mini + 1))
		}
	case arena.ObjMine:
		if s.mass == 0 {
			return
		}
		targ.Damage -= int64(arena.TargetDamage / (s.mods.Mini + 1))
	case arena.ObjPlayer:
		if ram <= 0 || ram > arena.TargetDamage/4 {
			ram = arena.TargetDamage / 4
		}
		targ.Damage -= ram
	}

	targ.LastChange = r.state.Frame
	if targ.Damage > 0 {
		return
	}
	r.destroyTarget(ti, killer)
}

func (r *Resolver) destroyTarget(ti int, killer *arena.Player) {
	targ := &r.state.Targets[ti]
	targ.Damage = arena.TargetDamage
	targ.DeadTime = r.rules.TargetDeadTime
	r.structuresChanged = true

	r.host.MakeDebris(arena.DebrisSpec{
		Pos:      targ.Pos,
		Owner:    arena.NoID,
		Team:     targ.Team,
		Type:     arena.ObjDebris,
		Mass:     4.5,
		Status:   arena.StatusGravity,
		Radius:   6,
		Count:    75 + int(75*r.rnd.Float64()),
		MinDir:   0,
		MaxDir:   geom.Res - 1,
		MinSpeed: 20,
		MaxSpeed: 70,
		MinLife:  10,
		MaxLife:  100,
	})

	var (
		winScore, loseScore     float64
		winMembers, loseMembers int
		somebody                bool
	)
	if r.rules.TeamPlay {
		for _, p := range r.host.Players() {
			if p.Status&arena.StatusPaused != 0 {
				continue
			}
			if p.Team == targ.Team {
				loseScore += p.Score
				loseMembers++
				if p.Status&arena.StatusGameOver == 0 {
					somebody = true
				}
			} else if p.Team == killer.Team {
				winScore += p.Score
				winMembers++
			}
		}
	}
	r.log.WithFields(logrus.Fields{
		"target": ti,
		"team":   targ.Team,
		"killer": killer.Name,
	}).Info("target destroyed")
	if !somebody {
		return
	}

	total, remaining := 0, 0
	for i := range r.state.Targets {
		if r.state.Targets[i].Team == targ.Team {
			total++
			if r.state.Targets[i].Alive() {
				remaining++
			}
		}
	}
	r.host.Sound(targ.Pos, arena.SoundDestroyTarget)

	if remaining > 0 {
		sc := arena.Rate(killer.Score, arena.CannonScore) / 4
		sc = sc * float64(total-remaining) / float64(total+1)
		if sc >= 0.01 {
			r.host.Score(killer, sc, targ.Pos, "Target: ")
		}
		if r.rules.TargetTeamCollision && total < 10 {
			r.host.Message(fmt.Sprintf("%s blew up one of team %d's targets.", killer.Name, targ.Team))
		}
		return
	}

	last := ""
	if total > 1 {
		last = "last "
	}
	r.host.Message(fmt.Sprintf("%s blew up team %d's %starget.", killer.Name, targ.Team, last))

	sc := arena.Rate(winScore, loseScore)
	por := 0.0
	if winMembers > 0 {
		por = sc * float64(loseMembers) / float64(winMembers)
	}
	for _, p := range r.host.Players() {
		if p.Status&arena.StatusPaused != 0 {
			continue
		}
		if p.Team == targ.Team {
			if r.rules.TargetKillTeam && p.Active() {
				p.Status |= arena.StatusKilled
				r.host.Kill(p, fmt.Sprintf("team %d lost its targets", targ.Team))
			}
			r.host.Score(p, -sc, targ.Pos, "Target: ")
		} else if p.Team == killer.Team && (p.Team != geom.TeamNone || p == killer) {
			r.host.Score(p, por, targ.Pos, "Target: ")
		}
	}
}

// CannonDies blows up cannon ci. pl is the player responsible, if any.
func (r *Resolver) CannonDies(ci int, pl *arena.Player) {
	cn := r.state.Cannon(ci)
	if cn == nil {
		r.log.WithField("cannon", ci).Error("unknown cannon destroyed")
		return
	}
	cn.DeadTime = r.rules.CannonDeadTime
	cn.Items = nil
	cn.Used = 0
	cn.Armor = 0
	r.structuresChanged = true
	r.host.Sound(cn.Pos, arena.SoundCannonExplosion)

	facing := cn.FacingRes()
	spread := geom.Res / 5
	r.host.MakeDebris(arena.DebrisSpec{
		Pos:      cn.Pos,
		Owner:    arena.NoID,
		Team:     cn.Team,
		Type:     arena.ObjDebris,
		Mass:     4.5,
		Status:   arena.StatusGravity,
		Radius:   6,
		Count:    20 + int(20*r.rnd.Float64()),
		MinDir:   facing - spread,
		MaxDir:   facing + spread,
		MinSpeed: 20,
		MaxSpeed: 50,
		MinLife:  8,
		MaxLife:  68,
	})
	r.wreckage(cn, facing, spread)

	if pl == nil || r.rules.CannonPoints <= 0 {
		return
	}
	if r.rules.TeamPlay && r.rules.TeamCannons {
		r.host.TeamScore(cn.Team, -r.rules.CannonPoints)
	}
	if pl.Score <= r.rules.CannonMaxScore && !(r.rules.TeamPlay && pl.Team == cn.Team) {
		r.host.Score(pl, r.rules.CannonPoints, cn.Pos, "")
	}
}

// Wreckage limits for a destroyed cannon.
const (
	wreckMinMass   = 3.5
	wreckMaxMass   = 23
	wreckTotalMass = 28
	wreckMaxPieces = 10
)

// wreckage throws pieces of random mass until the cannon's mass is used
// up.
func (r *Resolver) wreckage(cn *arena.Cannon, facing, spread int) {
	left := float64(wreckTotalMass)
	for i := 0; i < wreckMaxPieces && left >= wreckMinMass; i++ {
		mass := min(wreckMinMass+r.rnd.Float64()*(wreckMaxMass-wreckMinMass), left)
		left -= mass
		r.host.MakeDebris(arena.DebrisSpec{
			Pos:      cn.Pos,
			Owner:    arena.NoID,
			Team:     cn.Team,
			Type:     arena.ObjWreckage,
			Mass:     mass,
			Status:   arena.StatusGravity,
			Radius:   int(mass),
			Count:    1,
			MinDir:   facing - spread,
			MaxDir:   facing + spread,
			MinSpeed: 10,
			MaxSpeed: 25,
			MinLife:  8,
			MaxLife:  68,
		})
	}
}

// CannonHit is an object crashing into cannon ci: items are absorbed,
// anything else wears down the armor and then destroys the cannon.
func (r *Resolver) CannonHit(ci int, obj *arena.Object) {
	cn := r.state.Cannon(ci)
	obj.Kill()
	if cn == nil || !cn.Alive() {
		return
	}
	if obj.Type == arena.ObjItem {
		cn.AddItem(obj.ItemKind, obj.ItemCount)
		return
	}
	if cn.Used&arena.EquipEmergencyShield != 0 {
		return
	}
	if cn.Armor > 0 {
		cn.Armor--
		return
	}
	r.CannonDies(ci, r.host.PlayerByID(obj.Owner))
}
