package blockmap

import (
	"errors"
	"testing"

	"arena-server/arena"
	"arena-server/geom"
)

func mustParse(t *testing.T, opts Options, rows ...string) *Grid {
	t.Helper()
	g, err := Parse(rows, opts)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return g
}

func TestParseLayout(t *testing.T) {
	g := mustParse(t, Options{}, "x#r", "w!*", "@ z")
	if g.W != 3 || g.H != 3 {
		t.Fatalf("expected 3x3, got %dx%d", g.W, g.H)
	}
	want := map[[2]int]Kind{
		{0, 2}: KindFilled,
		{1, 2}: KindFuel,
		{2, 2}: KindCannon,
		{0, 1}: KindRecLD,
		{1, 1}: KindTarget,
		{2, 1}: KindTreasure,
		{0, 0}: KindWormhole,
		{1, 0}: KindSpace,
		{2, 0}: KindFriction,
	}
	for at, k := range want {
		if got := g.At(at[0], at[1]).Kind(); got != k {
			t.Errorf("block %v: expected %v, got %v", at, k, got)
		}
	}
	st := g.NewState()
	if len(st.Cannons) != 1 || st.Cannons[0].Dir != arena.DirUp {
		t.Errorf("expected one upward cannon, got %+v", st.Cannons)
	}
	if len(st.Targets) != 1 || st.Targets[0].Damage != arena.TargetDamage {
		t.Errorf("expected one intact target, got %+v", st.Targets)
	}
	if len(st.Treasures) != 1 || len(st.Wormholes) != 1 {
		t.Errorf("expected a treasure and a wormhole, got %d and %d", len(st.Treasures), len(st.Wormholes))
	}
}

func TestParsePadsShortRows(t *testing.T) {
	g := mustParse(t, Options{}, "xxxx", "x")
	if g.W != 4 {
		t.Fatalf("width should follow the longest row, got %d", g.W)
	}
	if k := g.At(3, 0).Kind(); k != KindSpace {
		t.Errorf("padding should be space, got %v", k)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(nil, Options{}); !errors.Is(err, ErrEmptyMap) {
		t.Errorf("expected ErrEmptyMap, got %v", err)
	}
	if _, err := Parse([]string{"  !  "}, Options{TeamPlay: true}); !errors.Is(err, ErrNoTeamForMap) {
		t.Errorf("expected ErrNoTeamForMap, got %v", err)
	}
}

func TestParseAssignsClosestTeam(t *testing.T) {
	g := mustParse(t, Options{TeamPlay: true, TeamCannons: true}, "!1    2!", "*     r*")
	st := g.NewState()
	if st.Targets[0].Team != 1 || st.Targets[1].Team != 2 {
		t.Errorf("targets should belong to the nearest base, got %d and %d", st.Targets[0].Team, st.Targets[1].Team)
	}
	if st.Cannons[0].Team != 2 {
		t.Errorf("cannon should belong to team 2, got %d", st.Cannons[0].Team)
	}
	if st.Teams[1].TreasuresLeft != 1 || st.Teams[2].TreasuresLeft != 1 {
		t.Errorf("each team should have one treasure, got %+v", st.Teams)
	}
}

func TestNewStateIsIndependent(t *testing.T) {
	g := mustParse(t, Options{}, "r!")
	a := g.NewState()
	a.Targets[0].DeadTime = 10
	a.Cannons[0].AddItem(1, 1)
	b := g.NewState()
	if !b.Targets[0].Alive() || b.Cannons[0].Items != nil {
		t.Error("a new state must not see changes made to an earlier one")
	}
}

func TestLiveKindSkipsDeadStructures(t *testing.T) {
	g := mustParse(t, Options{}, "r!")
	st := g.NewState()
	st.Cannons[0].DeadTime = 5
	st.Targets[0].DeadTime = 5
	if k := g.liveKind(st, 0, 0); k != KindSpace {
		t.Errorf("dead cannon should be space, got %v", k)
	}
	if k := g.liveKind(st, 1, 0); k != KindSpace {
		t.Errorf("dead target should be space, got %v", k)
	}
}

func TestWalldistBorder(t *testing.T) {
	rows := []string{"       ", "       ", "       ", "   x   ", "       ", "       ", "       "}
	g := mustParse(t, Options{}, rows...)
	cases := []struct {
		x, y, want int
	}{
		{3, 3, 0},
		{2, 3, 2},
		{2, 2, 2},
		{0, 0, 2},
		{6, 3, 2},
		{1, 3, 4},
	}
	for _, c := range cases {
		if got := g.Walldist(c.x, c.y); got != c.want {
			t.Errorf("walldist(%d, %d): expected %d, got %d", c.x, c.y, c.want, got)
		}
	}
}

func TestWalldistWedgeOpenCorner(t *testing.T) {
	rows := make([]string, 9)
	for i := range rows {
		rows[i] = "         "
	}
	rows[4] = "    w    "
	g := mustParse(t, Options{Wrap: true}, rows...)
	if got := g.Walldist(5, 5); got != 3 {
		t.Errorf("open diagonal should be one further, got %d", got)
	}
	if got := g.Walldist(3, 3); got != 2 {
		t.Errorf("solid corner neighbour: expected 2, got %d", got)
	}
	if got := g.Walldist(0, 0); got != 8 {
		t.Errorf("far corner: expected 8, got %d", got)
	}
}

func TestWalldistAtClamps(t *testing.T) {
	g := mustParse(t, Options{}, "x  ")
	if got := g.WalldistAt(-5, -5); got != 0 {
		t.Errorf("expected the clamped block's distance 0, got %d", got)
	}
	if got := g.WalldistAt(10*B, 0); got != g.Walldist(2, 0) {
		t.Errorf("expected the last block's distance, got %d", got)
	}
}

func TestBlockOf(t *testing.T) {
	x, y := BlockOf(geom.Vec{X: B + 1, Y: 3*B - 1})
	if x != 1 || y != 2 {
		t.Errorf("expected block (1, 2), got (%d, %d)", x, y)
	}
}
