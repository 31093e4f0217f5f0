package main

import (
	"math"

	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/geom"
	"arena-server/journal"
)

// simHost is what the resolver sees of the server. Every call arrives
// from inside Sim.Step with the sim lock held.
type simHost struct {
	s *Sim
}

func (h *simHost) Kill(pl *arena.Player, reason string) {
	s := h.s
	s.respawn[pl.ID] = respawnFrames
	s.log.WithFields(logrus.Fields{"player": pl.Name, "reason": reason}).Info("player killed")
	s.record(journal.Event{Kind: journal.KindKill, Player: pl.Name, Team: pl.Team, Text: reason})
	s.publish(EventMsg{Kind: journal.KindKill, Player: pl.Name, Team: pl.Team, Text: reason})
}

// MakeDebris scatters spec.Count particles with random direction, speed
// and life within the given ranges.
func (h *simHost) MakeDebris(spec arena.DebrisSpec) {
	s := h.s
	for i := 0; i < spec.Count; i++ {
		if len(s.objects)+len(s.spawned) >= maxObjects {
			return
		}
		dir := spec.MinDir
		if spec.MaxDir > spec.MinDir {
			dir += s.rnd.Intn(spec.MaxDir - spec.MinDir + 1)
		}
		speed := spec.MinSpeed + s.rnd.Float64()*(spec.MaxSpeed-spec.MinSpeed)
		life := spec.MinLife
		if spec.MaxLife > spec.MinLife {
			life += s.rnd.Intn(spec.MaxLife - spec.MinLife + 1)
		}
		if life <= 0 {
			continue
		}
		s.spawned = append(s.spawned, &arena.Object{
			ID:     s.nextObjectID(),
			Type:   spec.Type,
			Pos:    spec.Pos,
			Vel:    geom.Vel{X: spec.Vel.X + geom.Tcos(dir)*speed, Y: spec.Vel.Y + geom.Tsin(dir)*speed},
			Mass:   spec.Mass,
			Life:   int64(life),
			Team:   spec.Team,
			Owner:  spec.Owner,
			Status: spec.Status,
			Dir:    dir,
		})
	}
}

func (h *simHost) Score(pl *arena.Player, delta float64, at geom.Vec, reason string) {
	s := h.s
	pl.Score += delta
	s.log.WithFields(logrus.Fields{
		"player": pl.Name,
		"delta":  math.Round(delta*100) / 100,
		"reason": reason,
	}).Debug("score")
	s.record(journal.Event{Kind: journal.KindScore, Player: pl.Name, Team: pl.Team, Delta: delta, Text: reason})
	s.publish(EventMsg{Kind: journal.KindScore, Player: pl.Name, Delta: delta, Text: reason})
}

func (h *simHost) TeamScore(team int, delta float64) {
	s := h.s
	st := s.in.Resolver().State()
	if team < 0 || team >= len(st.Teams) {
		s.log.WithField("team", team).Warn("score for unknown team")
		return
	}
	st.Teams[team].Score += delta
	s.record(journal.Event{Kind: journal.KindTeamScore, Team: team, Delta: delta})
	s.publish(EventMsg{Kind: journal.KindTeamScore, Team: team, Delta: delta})
}

func (h *simHost) Message(text string) {
	s := h.s
	s.log.WithField("msg", text).Info("message")
	s.record(journal.Event{Kind: journal.KindMessage, Text: text})
	s.publish(EventMsg{Kind: journal.KindMessage, Text: text})
}

func (h *simHost) PlayerMessage(pl *arena.Player, text string) {
	s := h.s
	s.log.WithFields(logrus.Fields{"player": pl.Name, "msg": text}).Debug("player message")
	s.record(journal.Event{Kind: journal.KindPrivate, Player: pl.Name, Text: text})
}

func (h *simHost) Sound(at geom.Vec, name string) {
	h.s.publish(EventMsg{Kind: "sound", Text: name})
}

func (h *simHost) SoundAll(name string) {
	h.s.publish(EventMsg{Kind: "sound", Text: name})
}

func (h *simHost) Players() []*arena.Player { return h.s.players }

func (h *simHost) PlayerByID(id int) *arena.Player {
	for _, pl := range h.s.players {
		if pl.ID == id {
			return pl
		}
	}
	return nil
}

// DeclareWar points a drone at the player who pushed it into a wall.
func (h *simHost) DeclareWar(robot, target *arena.Player) {
	s := h.s
	d := s.drones[robot.ID]
	if d == nil {
		return
	}
	d.war = target.ID
	s.log.WithFields(logrus.Fields{"robot": robot.Name, "target": target.Name}).Info("war declared")
}
