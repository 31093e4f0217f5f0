package arena

import "arena-server/geom"

// TargetDamage is the health of an intact target.
const TargetDamage = 250 << FuelScaleBits

// Energy drains a target suffers from weapon hits.
const (
	EDShotHit      = -25 << FuelScaleBits
	EDSmartShotHit = -120 << FuelScaleBits
	EDLaserHit     = -100 << FuelScaleBits
)

// Target is a destructible team structure.
type Target struct {
	Pos        geom.Vec
	Team       int
	Damage     int64
	DeadTime   int
	LastChange int64
}

// Alive reports whether the target is standing.
func (t *Target) Alive() bool { return t.DeadTime == 0 }

// Cannon directions.
const (
	DirUp = iota
	DirRight
	DirDown
	DirLeft
)

// Cannon is a stationary gun mounted on a wall.
type Cannon struct {
	Pos      geom.Vec
	Dir      int
	Team     int
	DeadTime int
	Used     Equip
	Armor    int
	Items    map[int]int
}

func (c *Cannon) Alive() bool { return c.DeadTime == 0 }

// AddItem stores an item the cannon absorbed.
func (c *Cannon) AddItem(kind, count int) {
	if c.Items == nil {
		c.Items = make(map[int]int)
	}
	c.Items[kind] += count
}

// FacingRes is the cannon direction in Res units.
func (c *Cannon) FacingRes() int {
	switch c.Dir {
	case DirRight:
		return 0
	case DirDown:
		return 3 * geom.Res / 4
	case DirLeft:
		return geom.Res / 2
	}
	return geom.Res / 4
}

// Treasure is a ball nest and goal.
type Treasure struct {
	Pos       geom.Vec
	Team      int
	Have      bool
	Empty     bool
	Destroyed int
}

// WormType says which way a wormhole leads.
type WormType int

const (
	WormNormal WormType = iota
	WormIn
	WormOut
)

type Wormhole struct {
	Pos       geom.Vec
	Type      WormType
	Countdown int
	LastDest  int
}

// Base is a spawn point. Team is geom.TeamNone for a free base.
type Base struct {
	Pos  geom.Vec
	Team int
}

// Team tallies per-team treasure results.
type Team struct {
	NumMembers         int
	TreasuresLeft      int
	TreasuresDestroyed int
	Score              float64
}

// State is the map structure state of a running game. Players live in
// the roster; objects are owned by the caller's pool.
type State struct {
	Frame     int64
	TeamPlay  bool
	Targets   []Target
	Cannons   []Cannon
	Treasures []Treasure
	Wormholes []Wormhole
	Bases     []Base
	Teams     [geom.MaxTeams]Team
}

// Target returns target i or nil when i is out of range.
func (s *State) Target(i int) *Target {
	if i < 0 || i >= len(s.Targets) {
		return nil
	}
	return &s.Targets[i]
}

func (s *State) Cannon(i int) *Cannon {
	if i < 0 || i >= len(s.Cannons) {
		return nil
	}
	return &s.Cannons[i]
}

func (s *State) Treasure(i int) *Treasure {
	if i < 0 || i >= len(s.Treasures) {
		return nil
	}
	return &s.Treasures[i]
}

// Clone returns a copy that shares nothing mutable with s.
func (s *State) Clone() *State {
	c := *s
	c.Targets = append([]Target(nil), s.Targets...)
	c.Cannons = make([]Cannon, len(s.Cannons))
	for i, cn := range s.Cannons {
		c.Cannons[i] = cn
		if cn.Items != nil {
			c.Cannons[i].Items = make(map[int]int, len(cn.Items))
			for k, v := range cn.Items {
				c.Cannons[i].Items[k] = v
			}
		}
	}
	c.Treasures = append([]Treasure(nil), s.Treasures...)
	c.Wormholes = append([]Wormhole(nil), s.Wormholes...)
	c.Bases = append([]Base(nil), s.Bases...)
	return &c
}

func (s *State) Wormhole(i int) *Wormhole {
	if i < 0 || i >= len(s.Wormholes) {
		return nil
	}
	return &s.Wormholes[i]
}
