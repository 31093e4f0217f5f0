package blockmap

import (
	"errors"
	"fmt"
	"math"

	"arena-server/arena"
	"arena-server/geom"
)

// B is the block size in clicks.
const B = geom.BlockClicks

var (
	ErrEmptyMap     = errors.New("map has no blocks")
	ErrMapTooLarge  = errors.New("map too large")
	ErrNoTeamForMap = errors.New("no team base near structure")
)

// MaxBlocks bounds each map dimension.
const MaxBlocks = 1000

// Options control how a block map is read.
type Options struct {
	Wrap     bool
	TeamPlay bool
	// TeamCannons gives cannons the team of the nearest base.
	TeamCannons bool
	// Timing turns the letters A to Z into race checkpoints.
	Timing bool
}

// Grid is a parsed block map with its wall distance table. Block (0, 0)
// is the lower left corner.
type Grid struct {
	W, H     int
	Wrap     bool
	blocks   []Block
	walldist []uint8
	state    arena.State
}

// Parse reads a block map given as text rows, top row first. Short rows
// are padded with space.
func Parse(rows []string, opts Options) (*Grid, error) {
	h := len(rows)
	w := 0
	for _, r := range rows {
		w = max(w, len(r))
	}
	if w == 0 || h == 0 {
		return nil, ErrEmptyMap
	}
	if w > MaxBlocks || h > MaxBlocks {
		return nil, fmt.Errorf("%dx%d blocks: %w", w, h, ErrMapTooLarge)
	}
	g := &Grid{W: w, H: h, Wrap: opts.Wrap, blocks: make([]Block, w*h)}
	g.state.TeamPlay = opts.TeamPlay

	for row, line := range rows {
		y := h - 1 - row
		for x := 0; x < w; x++ {
			c := byte(' ')
			if x < len(line) {
				c = line[x]
			}
			g.blocks[x+y*w] = g.place(c, x, y, opts)
		}
	}

	if opts.TeamPlay {
		if err := g.assignTeams(opts.TeamCannons); err != nil {
			return nil, err
		}
	}
	g.initWalldist()
	return g, nil
}

func blockPos(x, y int, fx, fy float64) geom.Vec {
	return geom.Vec{X: int((float64(x) + fx) * B), Y: int((float64(y) + fy) * B)}
}

func (g *Grid) place(c byte, x, y int, opts Options) Block {
	st := &g.state
	center := blockPos(x, y, 0.5, 0.5)
	switch {
	case c == 'x':
		return Filled{}
	case c == 's':
		return Wedge{Solid: KindRecLU}
	case c == 'a':
		return Wedge{Solid: KindRecRU}
	case c == 'w':
		return Wedge{Solid: KindRecLD}
	case c == 'q':
		return Wedge{Solid: KindRecRD}
	case c == 'r' || c == 'd' || c == 'f' || c == 'c':
		cn := arena.Cannon{Team: geom.TeamNone}
		switch c {
		case 'r':
			cn.Dir, cn.Pos = arena.DirUp, blockPos(x, y, 0.5, 0.333)
		case 'd':
			cn.Dir, cn.Pos = arena.DirLeft, blockPos(x, y, 0.667, 0.5)
		case 'f':
			cn.Dir, cn.Pos = arena.DirRight, blockPos(x, y, 0.333, 0.5)
		case 'c':
			cn.Dir, cn.Pos = arena.DirDown, blockPos(x, y, 0.5, 0.667)
		}
		st.Cannons = append(st.Cannons, cn)
		return Cannon{ID: len(st.Cannons) - 1}
	case c == '#':
		return Fuel{}
	case c == '*' || c == '^':
		st.Treasures = append(st.Treasures, arena.Treasure{Pos: center, Team: geom.TeamNone, Empty: c == '^'})
		return Treasure{ID: len(st.Treasures) - 1}
	case c == '!':
		st.Targets = append(st.Targets, arena.Target{Pos: center, Team: geom.TeamNone, Damage: arena.TargetDamage})
		return Target{ID: len(st.Targets) - 1}
	case c == '_' || c >= '0' && c <= '9':
		team := geom.TeamNone
		if c != '_' {
			team = int(c - '0')
		}
		st.Bases = append(st.Bases, arena.Base{Pos: center, Team: team})
		return Base{Team: team}
	case c == '@' || c == '(' || c == ')':
		t := arena.WormNormal
		if c == '(' {
			t = arena.WormIn
		} else if c == ')' {
			t = arena.WormOut
		}
		st.Wormholes = append(st.Wormholes, arena.Wormhole{Pos: center, Type: t, LastDest: -1})
		return Wormhole{ID: len(st.Wormholes) - 1, Type: t}
	case c >= 'A' && c <= 'Z':
		if opts.Timing {
			return Check{}
		}
	case c == 'z':
		return Friction{}
	}
	return Space{}
}

// closestTeam is the team of the nearest base that has one.
func (g *Grid) closestTeam(p geom.Vec) int {
	team, best := geom.TeamNone, math.MaxFloat64
	b := g.Bounds()
	for _, base := range g.state.Bases {
		if base.Team == geom.TeamNone {
			continue
		}
		dx := float64(b.CenterX(p.X - base.Pos.X))
		dy := float64(b.CenterY(p.Y - base.Pos.Y))
		if l := math.Hypot(dx, dy); l < best {
			team, best = base.Team, l
		}
	}
	return team
}

func (g *Grid) assignTeams(cannons bool) error {
	st := &g.state
	for i := range st.Treasures {
		t := &st.Treasures[i]
		t.Team = g.closestTeam(t.Pos)
		if t.Team == geom.TeamNone {
			return fmt.Errorf("treasure %d: %w", i, ErrNoTeamForMap)
		}
		if !t.Empty {
			st.Teams[t.Team].TreasuresLeft++
		}
	}
	for i := range st.Targets {
		t := &st.Targets[i]
		t.Team = g.closestTeam(t.Pos)
		if t.Team == geom.TeamNone {
			return fmt.Errorf("target %d: %w", i, ErrNoTeamForMap)
		}
	}
	if cannons {
		for i := range st.Cannons {
			st.Cannons[i].Team = g.closestTeam(st.Cannons[i].Pos)
		}
	}
	return nil
}

// NewState returns fresh structure state for a game on this map.
func (g *Grid) NewState() *arena.State { return g.state.Clone() }

func (g *Grid) Bounds() geom.Bounds {
	return geom.Bounds{Width: g.W * B, Height: g.H * B, Wrap: g.Wrap}
}

// At returns the block at (x, y). Coordinates wrap.
func (g *Grid) At(x, y int) Block {
	return g.blocks[geom.Mod(x, g.W)+geom.Mod(y, g.H)*g.W]
}

// liveKind is the kind of block (x, y) as the movers see it: destroyed
// targets and cannons are space until they are rebuilt.
func (g *Grid) liveKind(st *arena.State, x, y int) Kind {
	blk := g.At(x, y)
	switch b := blk.(type) {
	case Target:
		if t := st.Target(b.ID); t != nil && !t.Alive() {
			return KindSpace
		}
	case Cannon:
		if c := st.Cannon(b.ID); c != nil && !c.Alive() {
			return KindSpace
		}
	}
	return blk.Kind()
}

// BlockOf returns the block coordinates holding click position p.
func BlockOf(p geom.Vec) (int, int) { return p.X / B, p.Y / B }

// SolidAt reports whether click position p lies inside a wall, a live
// structure or the solid half of a wedge. Positions off a non-wrapping
// map are solid.
func (g *Grid) SolidAt(st *arena.State, p geom.Vec) bool {
	b := g.Bounds()
	if !b.Contains(b.WrapVec(p)) {
		return true
	}
	p = b.WrapVec(p)
	bx, by := BlockOf(p)
	off := geom.Vec{X: p.X - bx*B, Y: p.Y - by*B}
	switch g.liveKind(st, bx, by) {
	case KindFilled, KindFuel, KindTarget, KindCannon, KindTreasure:
		return true
	case KindRecLD:
		return off.X+off.Y < B
	case KindRecRU:
		return off.X+off.Y > B
	case KindRecLU:
		return off.X < off.Y
	case KindRecRD:
		return off.X > off.Y
	}
	return false
}
