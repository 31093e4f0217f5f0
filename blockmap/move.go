package blockmap

import (
	"math"
	"math/rand"

	"arena-server/arena"
	"arena-server/geom"
)

// Bounce is the side or diagonal a point bounced off.
type Bounce uint16

const (
	NoBounce        Bounce = 0
	BounceHorLo     Bounce = 0x01
	BounceHorHi     Bounce = 0x02
	BounceVerLo     Bounce = 0x04
	BounceVerHi     Bounce = 0x08
	BounceLeftDown  Bounce = 0x10
	BounceLeftUp    Bounce = 0x20
	BounceRightDown Bounce = 0x40
	BounceRightUp   Bounce = 0x80
	// BounceEdge is a bounce off the world border.
	BounceEdge Bounce = 0x100
)

// WallDir is the facing, in Res units, of a ship flying straight into
// the wall that caused bounce b.
func (b Bounce) WallDir() int {
	switch b {
	case BounceHorLo:
		return 4 * geom.Res / 8
	case BounceHorHi:
		return 0
	case BounceVerLo:
		return 6 * geom.Res / 8
	case BounceLeftDown:
		return 1 * geom.Res / 8
	case BounceLeftUp:
		return 7 * geom.Res / 8
	case BounceRightDown:
		return 3 * geom.Res / 8
	case BounceRightUp:
		return 5 * geom.Res / 8
	}
	return 2 * geom.Res / 8
}

// MoveInfo is what stays the same for every segment of one entity's
// move.
type MoveInfo struct {
	// Player is set for ship points; Object otherwise.
	Player *arena.Player
	Object *arena.Object
	State  *arena.State

	// Team is the team a target checks against: the carrier's team for
	// a ball.
	Team int

	EdgeWrap        bool
	EdgeBounce      bool
	WallBounce      bool
	CannonCrashes   bool
	TargetCrashes   bool
	TreasureCrashes bool
	WormholeWarps   bool
	Phased          bool

	TeamPlay            bool
	TeamImmunity        bool
	TargetTeamCollision bool
	// WormTime makes wormholes only warp objects while open.
	WormTime bool

	// Ball is called when a ball enters a treasure. It reports whether
	// the ball carries on moving.
	Ball func(treasure int) bool
	// Rand breaks ties between bounces; nil means math/rand.
	Rand func() float64
}

func (mi *MoveInfo) rand() float64 {
	if mi.Rand != nil {
		return mi.Rand()
	}
	return rand.Float64()
}

func (mi *MoveInfo) status() arena.Status {
	if mi.Player != nil {
		return mi.Player.Status
	}
	return mi.Object.Status
}

func (mi *MoveInfo) moverTeam() int {
	if mi.Player != nil {
		return mi.Player.Team
	}
	return mi.Object.Team
}

// MoveState is one point travelling through the grid. Todo is the travel
// still to do; each MoveSegment call fills Done and either Crash or
// Bounce.
type MoveState struct {
	Pos  geom.Vec
	Vel  geom.Vel
	Todo geom.Vec
	Done geom.Vec
	Dir  int
	Info *MoveInfo

	Crash  arena.Crash
	Bounce Bounce

	// The structure involved in the last crash, or -1.
	Cannon   int
	Target   int
	Treasure int
	Wormhole int
}

// NewMoveState starts a move at pos with the given velocity and travel.
func NewMoveState(mi *MoveInfo, pos geom.Vec, vel geom.Vel, todo geom.Vec, dir int) MoveState {
	return MoveState{
		Pos: pos, Vel: vel, Todo: todo, Dir: dir, Info: mi,
		Cannon: -1, Target: -1, Treasure: -1, Wormhole: -1,
	}
}

// BounceEdge turns the point around at the world border, or stops it
// against the border when edge bouncing is off.
func (ms *MoveState) BounceEdge(b Bounce) {
	pl := ms.Info.Player != nil
	switch b {
	case BounceHorLo, BounceHorHi:
		if ms.Info.EdgeBounce {
			ms.Todo.X = -ms.Todo.X
			ms.Vel.X = -ms.Vel.X
			if !pl {
				ms.Dir = geom.Mod(geom.Res/2-ms.Dir, geom.Res)
			}
		} else {
			ms.Todo.X = 0
			ms.Vel.X = 0
			if !pl {
				ms.Dir = geom.Res / 4
				if ms.Vel.Y < 0 {
					ms.Dir = 3 * geom.Res / 4
				}
			}
		}
	case BounceVerLo, BounceVerHi:
		if ms.Info.EdgeBounce {
			ms.Todo.Y = -ms.Todo.Y
			ms.Vel.Y = -ms.Vel.Y
			if !pl {
				ms.Dir = geom.Mod(geom.Res-ms.Dir, geom.Res)
			}
		} else {
			ms.Todo.Y = 0
			ms.Vel.Y = 0
			if !pl {
				ms.Dir = 0
				if ms.Vel.X < 0 {
					ms.Dir = geom.Res / 2
				}
			}
		}
	}
	ms.Bounce = BounceEdge
}

// BounceWall reflects the point off a block side or wedge diagonal. A
// mover that may not bounce crashes instead.
func (ms *MoveState) BounceWall(b Bounce) {
	if !ms.Info.WallBounce {
		ms.Crash = arena.CrashWall
		return
	}
	pl := ms.Info.Player != nil
	t, v := ms.Todo, ms.Vel
	switch b {
	case BounceHorLo, BounceHorHi:
		ms.Todo.X = -t.X
		ms.Vel.X = -v.X
		if !pl {
			ms.Dir = geom.Mod(geom.Res/2-ms.Dir, geom.Res)
		}
	case BounceVerLo, BounceVerHi:
		ms.Todo.Y = -t.Y
		ms.Vel.Y = -v.Y
		if !pl {
			ms.Dir = geom.Mod(geom.Res-ms.Dir, geom.Res)
		}
	case BounceLeftDown, BounceRightUp:
		ms.Todo = geom.Vec{X: -t.Y, Y: -t.X}
		ms.Vel = geom.Vel{X: -v.Y, Y: -v.X}
		if !pl {
			ms.Dir = geom.Mod(3*geom.Res/4-ms.Dir, geom.Res)
		}
	case BounceLeftUp, BounceRightDown:
		ms.Todo = geom.Vec{X: t.Y, Y: t.X}
		ms.Vel = geom.Vel{X: v.Y, Y: v.X}
		if !pl {
			ms.Dir = geom.Mod(geom.Res/4-ms.Dir, geom.Res)
		}
	}
	ms.Bounce = b
}

func roundInt(f float64) int { return int(math.Round(f)) }

func sqr(x float64) float64 { return x * x }

// MoveSegment moves a point through at most one block. On return Done
// holds the travel made and Todo what is left; a crash or a bounce
// happens with no travel at all.
func (g *Grid) MoveSegment(ms *MoveState) {
	mi := ms.Info
	st := mi.State
	ms.Crash = arena.NotACrash
	ms.Bounce = NoBounce
	ms.Done = geom.Vec{}

	cw, ch := g.W*B, g.H*B
	enter := ms.Pos
	if enter.X < 0 || enter.X >= cw || enter.Y < 0 || enter.Y >= ch {
		if !mi.EdgeWrap {
			ms.Crash = arena.CrashUniverse
			return
		}
		if enter.X < 0 {
			enter.X += cw
		} else if enter.X >= cw {
			enter.X -= cw
		}
		if enter.Y < 0 {
			enter.Y += ch
		} else if enter.Y >= ch {
			enter.Y -= ch
		}
		if enter.X < 0 || enter.X >= cw || enter.Y < 0 || enter.Y >= ch {
			ms.Crash = arena.CrashUniverse
			return
		}
		ms.Pos = enter
	}

	sign := geom.Vec{X: 1, Y: 1}
	if ms.Vel.X < 0 {
		sign.X = -1
	}
	if ms.Vel.Y < 0 {
		sign.Y = -1
	}
	bx, by := enter.X/B, enter.Y/B
	if wd := g.Walldist(bx, by); wd > 2 {
		maxcl := ((wd - 2) * B) >> 1
		ms.Done = clampTravel(ms.Todo, sign, maxcl)
		ms.Todo = ms.Todo.Sub(ms.Done)
		return
	}

	off := geom.Vec{X: enter.X - bx*B, Y: enter.Y - by*B}
	inside := true
	if off.X == 0 {
		inside = false
		if sign.X == -1 {
			off.X = B
			if bx--; bx < 0 {
				if !mi.EdgeWrap {
					ms.BounceEdge(BounceHorLo)
					return
				}
				bx += g.W
			}
		}
	} else if enter.X == cw-1 && !mi.EdgeWrap && ms.Vel.X > 0 {
		ms.BounceEdge(BounceHorHi)
		return
	}
	if off.Y == 0 {
		inside = false
		if sign.Y == -1 {
			off.Y = B
			if by--; by < 0 {
				if !mi.EdgeWrap {
					ms.BounceEdge(BounceVerLo)
					return
				}
				by += g.H
			}
		}
	} else if enter.Y == ch-1 && !mi.EdgeWrap && ms.Vel.Y > 0 {
		ms.BounceEdge(BounceVerHi)
		return
	}

	var leave geom.Vec
	needAdjust := false
	if sign.X == -1 {
		if off.X+ms.Todo.X < 0 {
			leave.X = enter.X - off.X
			needAdjust = true
		} else {
			leave.X = enter.X + ms.Todo.X
		}
	} else {
		if off.X+ms.Todo.X > B {
			leave.X = enter.X + B - off.X
			needAdjust = true
		} else {
			leave.X = enter.X + ms.Todo.X
		}
		if leave.X == cw && !mi.EdgeWrap {
			leave.X--
			needAdjust = true
		}
	}
	if sign.Y == -1 {
		if off.Y+ms.Todo.Y < 0 {
			leave.Y = enter.Y - off.Y
			needAdjust = true
		} else {
			leave.Y = enter.Y + ms.Todo.Y
		}
	} else {
		if off.Y+ms.Todo.Y > B {
			leave.Y = enter.Y + B - off.Y
			needAdjust = true
		} else {
			leave.Y = enter.Y + ms.Todo.Y
		}
		if leave.Y == ch && !mi.EdgeWrap {
			leave.Y--
			needAdjust = true
		}
	}
	if needAdjust && ms.Todo.X != 0 && ms.Todo.Y != 0 {
		wx := float64(leave.X-enter.X) / float64(ms.Todo.X)
		wy := float64(leave.Y-enter.Y) / float64(ms.Todo.Y)
		if wx > wy {
			leave.X = enter.X + roundInt(float64(ms.Todo.X)*wy)
		} else if wx < wy {
			leave.Y = enter.Y + roundInt(float64(ms.Todo.Y)*wx)
		}
	}
	delta := leave.Sub(enter)

	var wallBounce Bounce
	kind := g.liveKind(st, bx, by)
	blk := g.At(bx, by)

	if !mi.Phased {
		switch kind {
		case KindWormhole:
			if !mi.WormholeWarps {
				break
			}
			wb := blk.(Wormhole)
			if wb.Type == arena.WormOut {
				break
			}
			if pl := mi.Player; pl != nil {
				pbx, pby := BlockOf(pl.Pos)
				if pl.Status&arena.StatusWarped != 0 {
					if cur, ok := g.At(pbx, pby).(Wormhole); ok && cur.Type == arena.WormNormal && pl.WormholeDest == cur.ID {
						// Still sitting on the hole we were warped to.
						break
					}
					pl.Status &^= arena.StatusWarped
				}
				if pbx == bx && pby == by {
					ms.Wormhole = wb.ID
					ms.Crash = arena.CrashWormhole
					return
				}
			} else if hole := st.Wormhole(wb.ID); hole != nil {
				last := hole.LastDest
				obx, oby := BlockOf(mi.Object.Pos)
				if last >= 0 && last < len(st.Wormholes) &&
					(hole.Countdown > 0 || !mi.WormTime) &&
					st.Wormholes[last].Type != arena.WormIn &&
					last != wb.ID && (obx != bx || oby != by) {
					ms.Done = ms.Done.Add(st.Wormholes[last].Pos.Sub(hole.Pos))
				}
			}

		case KindCannon:
			if !mi.CannonCrashes {
				break
			}
			if mi.status()&arena.StatusFromCannon != 0 && !mi.TeamPlay {
				break
			}
			id := blk.(Cannon).ID
			ms.Cannon = id
			cn := st.Cannon(id)
			if cn == nil || cn.Used&arena.EquipPhasing != 0 {
				break
			}
			if mi.TeamPlay && (mi.TeamImmunity || mi.status()&arena.StatusFromCannon != 0) && mi.moverTeam() == cn.Team {
				break
			}
			d, crash := cannonTravel(cn.Dir, off, delta, sign, ms.Todo)
			if crash {
				ms.Crash = arena.CrashCannon
				return
			}
			delta = d

		case KindTreasure:
			if mi.TreasureCrashes {
				const r = 0.5 * B
				off2 := off.Add(delta)
				mid := geom.Vec{X: (off.X + off2.X) / 2, Y: (off.Y + off2.Y) / 2}
				clear := func(p geom.Vec) bool { return sqr(float64(p.X)-r)+sqr(float64(p.Y)-r) > r*r }
				if float64(off.Y) > r && float64(off2.Y) > r && clear(mid) && clear(off2) && clear(off) {
					break
				}
				id := blk.(Treasure).ID
				ms.Treasure = id
				ms.Crash = arena.CrashTreasure
				if mi.Object == nil || mi.Object.Type != arena.ObjBall {
					return
				}
				if mi.Ball != nil && mi.Ball(id) {
					ms.Crash = arena.NotACrash
					break
				}
				return
			}
			fallthrough

		case KindTarget:
			if kind == KindTarget && mi.TargetCrashes {
				id := blk.(Target).ID
				ms.Target = id
				if t := st.Target(id); !mi.TargetTeamCollision && t != nil && mi.Team == t.Team {
					break
				}
				if mi.Player == nil {
					ms.Crash = arena.CrashTarget
					return
				}
			}
			fallthrough

		case KindFuel, KindFilled:
			if inside {
				// A target rebuilt on top of us.
				ms.Crash = arena.CrashWall
				return
			}
			if off.X == 0 {
				if ms.Vel.X > 0 {
					wallBounce |= BounceHorLo
				}
			} else if off.X == B {
				if ms.Vel.X < 0 {
					wallBounce |= BounceHorHi
				}
			}
			if off.Y == 0 {
				if ms.Vel.Y > 0 {
					wallBounce |= BounceVerLo
				}
			} else if off.Y == B {
				if ms.Vel.Y < 0 {
					wallBounce |= BounceVerHi
				}
			}
			if wallBounce != 0 || ms.Todo.IsZero() {
				break
			}
			if ms.Todo.X == 0 && (off.X == 0 || off.X == B) {
				break
			}
			if ms.Todo.Y == 0 && (off.Y == 0 || off.Y == B) {
				break
			}
			ms.Crash = arena.CrashWall
			return

		case KindRecLD, KindRecLU, KindRecRD, KindRecRU:
			var crash bool
			wallBounce, delta, crash = wedge(kind, off, delta, ms.Vel, ms.Todo, sign)
			if crash {
				ms.Crash = arena.CrashWall
				return
			}
		}

		if wallBounce != 0 {
			wallBounce = g.feasibleBounce(ms, kind, bx, by, off, wallBounce)
			if ms.Crash != arena.NotACrash {
				return
			}
		}
	}

	if wallBounce != 0 {
		ms.BounceWall(wallBounce)
		return
	}
	ms.Done = ms.Done.Add(delta)
	ms.Todo = ms.Todo.Sub(delta)
}

// clampTravel limits todo to maxcl along its major axis.
func clampTravel(todo, sign geom.Vec, maxcl int) geom.Vec {
	ax, ay := sign.X*todo.X, sign.Y*todo.Y
	switch {
	case maxcl >= ax && maxcl >= ay:
		return todo
	case ax > ay:
		return geom.Vec{X: sign.X * maxcl, Y: todo.Y * maxcl / ax}
	}
	return geom.Vec{X: todo.X * maxcl / ay, Y: sign.Y * maxcl}
}

// feasibleBounce drops the side bounces that would push the point into a
// neighbouring solid block. Two blocked sides at a block corner combine
// into a diagonal bounce; when nothing is left the point is trapped and
// crashes. Several candidates are settled at random.
func (g *Grid) feasibleBounce(ms *MoveState, kind Kind, bx, by int, off geom.Vec, saved Bounce) Bounce {
	mi := ms.Info
	blockMask := KindFilled.bit() | KindFuel.bit()
	if !mi.TargetCrashes {
		blockMask |= KindTarget.bit()
	}
	if !mi.TreasureCrashes {
		blockMask |= KindTreasure.bit()
	}
	open := func(dx, dy int, wedges uint32) bool {
		nx, ny := bx+dx, by+dy
		if nx < 0 || nx >= g.W || ny < 0 || ny >= g.H {
			if !mi.EdgeWrap {
				return false
			}
		}
		return g.liveKind(mi.State, nx, ny).bit()&(blockMask|wedges) == 0
	}

	var wallBounce Bounce
	count := 0
	for bit := Bounce(1); bit <= saved; bit <<= 1 {
		if saved&bit == 0 {
			continue
		}
		ok := true
		switch bit {
		case BounceHorLo:
			ok = open(-1, 0, KindRecRU.bit()|KindRecRD.bit())
		case BounceHorHi:
			ok = open(1, 0, KindRecLU.bit()|KindRecLD.bit())
		case BounceVerLo:
			ok = open(0, -1, KindRecRU.bit()|KindRecLU.bit())
		case BounceVerHi:
			ok = open(0, 1, KindRecRD.bit()|KindRecLD.bit())
		}
		if ok {
			wallBounce |= bit
			count++
		}
	}

	switch {
	case count == 0:
		switch saved {
		case BounceHorLo | BounceVerLo:
			return BounceLeftDown
		case BounceHorLo | BounceVerHi:
			return BounceLeftUp
		case BounceHorHi | BounceVerLo:
			return BounceRightDown
		case BounceHorHi | BounceVerHi:
			return BounceRightUp
		}
		if wedgeCornerClear(kind, off, ms.Vel) {
			return NoBounce
		}
		ms.Crash = arena.CrashWall
		return NoBounce
	case count > 1:
		pick := int(mi.rand() * float64(count))
		for bit := Bounce(1); bit <= wallBounce; bit <<= 1 {
			if wallBounce&bit == 0 {
				continue
			}
			if pick == 0 {
				return bit
			}
			pick--
		}
	}
	return wallBounce
}

// wedgeCornerClear reports whether a point sitting on the open corner of
// a wedge may simply carry on.
func wedgeCornerClear(kind Kind, off geom.Vec, v geom.Vel) bool {
	switch kind {
	case KindRecLD:
		if off.X == 0 {
			return off.Y == B
		}
		return off.X == B && off.Y == 0 && v.X+v.Y >= 0
	case KindRecLU:
		if off.X == 0 {
			return off.Y == 0
		}
		return off.X == B && off.Y == B && v.X >= v.Y
	case KindRecRD:
		if off.X == 0 {
			return off.Y == 0
		}
		return off.X == B && off.Y == B && v.X <= v.Y
	case KindRecRU:
		if off.X == 0 {
			return off.Y == B
		}
		return off.X == B && off.Y == 0 && v.X+v.Y <= 0
	}
	return false
}
