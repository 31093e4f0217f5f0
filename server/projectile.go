package main

import (
	"arena-server/arena"
	"arena-server/geom"
)

const shotLife = 60 // frames

// fireShot launches a shot from pl's nose along its facing.
func (s *Sim) fireShot(pl *arena.Player) *arena.Object {
	if len(s.objects)+len(s.spawned) >= maxObjects {
		return nil
	}
	nose := pl.Ship.Point(0, pl.Dir)
	speed := s.rules.ShotsSpeed
	shot := &arena.Object{
		ID:     s.nextObjectID(),
		Type:   arena.ObjShot,
		Pos:    s.in.Engine().Bounds().WrapVec(pl.Pos.Add(nose)),
		Vel:    geom.Vel{X: pl.Vel.X + geom.Tcos(pl.Dir)*speed, Y: pl.Vel.Y + geom.Tsin(pl.Dir)*speed},
		Mass:   s.rules.ShotsMass,
		Life:   shotLife,
		Team:   pl.Team,
		Owner:  pl.ID,
		Status: arena.StatusOwnerImmune,
		Dir:    pl.Dir,
	}
	// A nose inside a wall would start the shot on the wrong side of it.
	if s.in.Engine().PointInside(shot.Pos, 0) != geom.NoGroup {
		return nil
	}
	s.spawned = append(s.spawned, shot)
	return shot
}
