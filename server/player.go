package main

import (
	"fmt"

	"arena-server/arena"
	"arena-server/geom"
)

const (
	droneThrust   = 0.6 // pixels/frame² along the nose
	droneMaxSpeed = 14.0
	droneTurnMin  = 12 // frames between course changes
	droneTurnMax  = 48
	droneFireMin  = 6
	droneFireMax  = 30
)

var droneNames = []string{"Ace", "Blip", "Comet", "Dart", "Echo", "Flux", "Gale", "Hex"}

// drone is the steering state of a robot ship.
type drone struct {
	turnIn int
	fireIn int
	// war is the player this drone hunts, or arena.NoID.
	war int
}

// AddDrones adds n robot ships spread over the teams that have bases.
func (s *Sim) AddDrones(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teams := s.baseTeams()
	for i := 0; i < n; i++ {
		id := len(s.players) + 1
		name := droneNames[i%len(droneNames)]
		if i >= len(droneNames) {
			name = fmt.Sprintf("%s%d", name, i/len(droneNames)+1)
		}
		team := geom.TeamNone
		if len(teams) > 0 {
			team = teams[i%len(teams)]
		}
		pl := arena.NewPlayer(id, name, team)
		pl.Robot = true
		if err := s.place(pl); err != nil {
			return err
		}
		s.players = append(s.players, pl)
		s.drones[id] = &drone{war: arena.NoID}
	}
	return nil
}

// baseTeams lists the teams owning a base, in base order.
func (s *Sim) baseTeams() []int {
	seen := make(map[int]bool)
	var teams []int
	for _, b := range s.in.Resolver().State().Bases {
		if b.Team != geom.TeamNone && !seen[b.Team] {
			seen[b.Team] = true
			teams = append(teams, b.Team)
		}
	}
	return teams
}

// fly steers, thrusts and fires for one drone for one frame.
func (s *Sim) fly(pl *arena.Player, d *drone) {
	d.turnIn--
	if target := s.host.PlayerByID(d.war); target != nil && target.Status&arena.StatusKilled == 0 {
		b := s.in.Engine().Bounds()
		dx := float64(b.CenterX(target.Pos.X - pl.Pos.X))
		dy := float64(b.CenterY(target.Pos.Y - pl.Pos.Y))
		pl.FloatDir = float64(geom.DirOf(dx, dy))
	} else if d.turnIn <= 0 {
		d.war = arena.NoID
		pl.FloatDir = float64(s.rnd.Intn(geom.Res))
		d.turnIn = droneTurnMin + s.rnd.Intn(droneTurnMax-droneTurnMin+1)
	}

	pl.Vel.X += geom.Tcos(pl.Dir) * droneThrust
	pl.Vel.Y += geom.Tsin(pl.Dir) * droneThrust
	if speed := pl.Vel.Len(); speed > droneMaxSpeed {
		pl.Vel = pl.Vel.Scale(droneMaxSpeed / speed)
	}

	if d.fireIn--; d.fireIn <= 0 {
		s.fireShot(pl)
		d.fireIn = droneFireMin + s.rnd.Intn(droneFireMax-droneFireMin+1)
	}
}
