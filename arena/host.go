package arena

import "arena-server/geom"

// DebrisSpec describes a burst of particles. Directions are in Res units,
// speeds in pixels per frame and lives in frames.
type DebrisSpec struct {
	Pos      geom.Vec
	Vel      geom.Vel
	Owner    int
	Team     int
	Type     ObjType
	Mass     float64
	Status   Status
	Radius   int
	Count    int
	MinDir   int
	MaxDir   int
	MinSpeed float64
	MaxSpeed float64
	MinLife  int
	MaxLife  int
}

// Lifecycle creates and retires entities on behalf of the resolver.
type Lifecycle interface {
	// Kill is told about a player that was just killed.
	Kill(pl *Player, reason string)
	MakeDebris(spec DebrisSpec)
}

type Scorer interface {
	Score(pl *Player, delta float64, at geom.Vec, reason string)
	TeamScore(team int, delta float64)
}

type Messenger interface {
	Message(text string)
	PlayerMessage(pl *Player, text string)
	Sound(at geom.Vec, name string)
	SoundAll(name string)
}

type Roster interface {
	Players() []*Player
	PlayerByID(id int) *Player
	DeclareWar(robot, target *Player)
}

// Host is everything outside the physics core the resolver talks to.
type Host interface {
	Lifecycle
	Scorer
	Messenger
	Roster
}

// Sound names.
const (
	SoundPlayerHitWall   = "player_hit_wall"
	SoundPlayerHitCannon = "player_hit_cannon"
	SoundPlayerBounced   = "player_bounced"
	SoundCannonExplosion = "cannon_explosion"
	SoundDestroyTarget   = "destroy_target"
	SoundDestroyBall     = "destroy_ball"
)
