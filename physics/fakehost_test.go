package physics

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"arena-server/arena"
	"arena-server/geom"
	"arena-server/walls"
)

type scoreEvent struct {
	player string
	delta  float64
	reason string
}

// fakeHost records every collaborator call and applies scores to the
// players so that scoring formulas can be checked.
type fakeHost struct {
	players    []*arena.Player
	kills      []string
	messages   []string
	playerMsgs []string
	sounds     []string
	scores     []scoreEvent
	teamScores map[int]float64
	debris     []arena.DebrisSpec
	wars       [][2]string
}

func newFakeHost(players ...*arena.Player) *fakeHost {
	return &fakeHost{players: players, teamScores: make(map[int]float64)}
}

func (h *fakeHost) Kill(pl *arena.Player, reason string) {
	h.kills = append(h.kills, pl.Name)
}

func (h *fakeHost) MakeDebris(spec arena.DebrisSpec) { h.debris = append(h.debris, spec) }

func (h *fakeHost) Score(pl *arena.Player, delta float64, _ geom.Vec, reason string) {
	pl.Score += delta
	h.scores = append(h.scores, scoreEvent{player: pl.Name, delta: delta, reason: reason})
}

func (h *fakeHost) TeamScore(team int, delta float64) { h.teamScores[team] += delta }

func (h *fakeHost) Message(text string) { h.messages = append(h.messages, text) }

func (h *fakeHost) PlayerMessage(pl *arena.Player, text string) {
	h.playerMsgs = append(h.playerMsgs, pl.Name+": "+text)
}

func (h *fakeHost) Sound(_ geom.Vec, name string) { h.sounds = append(h.sounds, name) }

func (h *fakeHost) SoundAll(name string) { h.sounds = append(h.sounds, name) }

func (h *fakeHost) Players() []*arena.Player { return h.players }

func (h *fakeHost) PlayerByID(id int) *arena.Player {
	for _, p := range h.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (h *fakeHost) DeclareWar(robot, target *arena.Player) {
	h.wars = append(h.wars, [2]string{robot.Name, target.Name})
}

func (h *fakeHost) scoreOf(name string) float64 {
	sum := 0.0
	for _, s := range h.scores {
		if s.player == name {
			sum += s.delta
		}
	}
	return sum
}

func (h *fakeHost) said(sub string) bool {
	for _, m := range h.messages {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

// groupTable is a fixed group list for resolver tests that need no
// index.
type groupTable []geom.Group

func (g groupTable) NumGroups() int             { return len(g) }
func (g groupTable) Group(i int) geom.Group     { return g[i] }
func (g groupTable) SetHitMask(i int, m uint32) { g[i].HitMask = m }

func quietLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func newTestResolver(host *fakeHost, rules arena.Rules, st *arena.State) *Resolver {
	log, _ := quietLogger()
	return NewResolver(log, host, rules, st, rand.New(rand.NewSource(1)))
}

const origin = 4096

func openWorld() *geom.World {
	return geom.NewWorld(geom.Bounds{Width: 16 * walls.BlockClicks, Height: 16 * walls.BlockClicks})
}

func mustBuild(t *testing.T, w *geom.World) *walls.Index {
	t.Helper()
	ix, err := walls.Build(w)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return ix
}

// verticalWall is the segment x=origin, y in [origin, origin+100] with
// open space on its right.
func verticalWall() geom.Segment {
	return geom.NewSegment(geom.Vec{X: origin, Y: origin}, geom.Vec{Y: 100}, 0)
}

func testPlayer(id int, name string, team int) *arena.Player {
	pl := arena.NewPlayer(id, name, team)
	pl.Pos = geom.Vec{X: origin + 1000, Y: origin + 1000}
	return pl
}
