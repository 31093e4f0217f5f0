// Package blockmap is the grid engine for maps made of square blocks.
// Every block has one kind; wedges are half blocks split along a
// diagonal.
package blockmap

import (
	"fmt"

	"arena-server/arena"
)

// Kind numbers the block variants so that sets of them fit in a mask.
type Kind uint8

const (
	KindSpace Kind = iota
	KindFilled
	KindFuel
	KindRecLU
	KindRecRU
	KindRecLD
	KindRecRD
	KindCannon
	KindTarget
	KindTreasure
	KindWormhole
	KindBase
	KindFriction
	KindCheck
)

func (k Kind) bit() uint32 { return 1 << k }

// Block is one map cell. The concrete types carry only what their kind
// needs.
type Block interface {
	Kind() Kind
}

type Space struct{}
type Filled struct{}
type Fuel struct{}
type Friction struct{}
type Check struct{}

// Wedge is a half filled block; Kind tells which corner is solid.
type Wedge struct {
	Solid Kind
}

type Cannon struct{ ID int }
type Target struct{ ID int }
type Treasure struct{ ID int }

type Wormhole struct {
	ID   int
	Type arena.WormType
}

// Base is a home base; Team is geom.TeamNone for an unassigned one.
type Base struct{ Team int }

func (Space) Kind() Kind    { return KindSpace }
func (Filled) Kind() Kind   { return KindFilled }
func (Fuel) Kind() Kind     { return KindFuel }
func (Friction) Kind() Kind { return KindFriction }
func (Check) Kind() Kind    { return KindCheck }
func (w Wedge) Kind() Kind  { return w.Solid }
func (Cannon) Kind() Kind   { return KindCannon }
func (Target) Kind() Kind   { return KindTarget }
func (Treasure) Kind() Kind { return KindTreasure }
func (Wormhole) Kind() Kind { return KindWormhole }
func (Base) Kind() Kind     { return KindBase }

// side bits of a block that are solid along their whole length.
const (
	sideLeft = 1 << iota
	sideRight
	sideBottom
	sideTop
)

func fullSides(k Kind) int {
	switch k {
	case KindFilled, KindFuel:
		return sideLeft | sideRight | sideBottom | sideTop
	case KindRecLD:
		return sideLeft | sideBottom
	case KindRecLU:
		return sideLeft | sideTop
	case KindRecRD:
		return sideRight | sideBottom
	case KindRecRU:
		return sideRight | sideTop
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case KindSpace:
		return "space"
	case KindFilled:
		return "filled"
	case KindFuel:
		return "fuel"
	case KindRecLU:
		return "rec_lu"
	case KindRecRU:
		return "rec_ru"
	case KindRecLD:
		return "rec_ld"
	case KindRecRD:
		return "rec_rd"
	case KindCannon:
		return "cannon"
	case KindTarget:
		return "target"
	case KindTreasure:
		return "treasure"
	case KindWormhole:
		return "wormhole"
	case KindBase:
		return "base"
	case KindFriction:
		return "friction"
	case KindCheck:
		return "check"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}
