package geom

import "fmt"

// GroupKind is the gameplay meaning of a polygon group.
type GroupKind uint8

const (
	KindWall GroupKind = iota
	KindTreasure
	KindBallArea
	KindTarget
	KindWormhole
	KindCannon
)

func (k GroupKind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindTreasure:
		return "treasure"
	case KindBallArea:
		return "ballarea"
	case KindTarget:
		return "target"
	case KindWormhole:
		return "wormhole"
	case KindCannon:
		return "cannon"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

const (
	MaxTeams = 10
	TeamNone = -1

	NoTeamBit  uint32 = 1 << 10
	BallBit    uint32 = 1 << 11
	NonBallBit uint32 = 1 << 12
	// AllHitBits is the mask of a group nothing collides with.
	AllHitBits = NonBallBit<<1 - 1

	// NoGroup is returned by containment queries that hit nothing.
	NoGroup = -1
)

// TeamBit is the hit-mask bit for team, or NoTeamBit when team is unset.
func TeamBit(team int) uint32 {
	if team < 0 || team >= MaxTeams {
		return NoTeamBit
	}
	return 1 << uint(team)
}

// GoalMask is the hit mask of a treasure goal owned by team: only balls
// carried by that team collide with it.
func GoalMask(team int) uint32 {
	return NonBallBit | (((NoTeamBit << 1) - 1) &^ TeamBit(team))
}

// Group gives a set of polygons its gameplay semantics. Item indexes the
// treasure, target, wormhole or cannon the group stands for.
type Group struct {
	Kind    GroupKind
	Team    int
	HitMask uint32
	Item    int
}

// WallGroup is group 0 of every world.
var WallGroup = Group{Kind: KindWall, Team: TeamNone, Item: -1}
