package arena

import "arena-server/geom"

// Equip is a bit per piece of equipment a player has or uses.
type Equip uint32

const (
	EquipShield Equip = 1 << iota
	EquipEmergencyShield
	EquipPhasing
	EquipArmor
)

// FuelScaleBits is the fixed-point shift of fuel amounts.
const FuelScaleBits = 8

// MaxRecordedShoves is how many recent pushes a player remembers.
const MaxRecordedShoves = 4

// Shove records who pushed a player and when.
type Shove struct {
	PusherID int
	Frame    int64
}

// Player is a ship under control of a human or robot.
type Player struct {
	ID    int
	Name  string
	Team  int
	Robot bool

	Pos geom.Vec
	Vel geom.Vel
	// Dir is the current facing; FloatDir is where steering wants it.
	Dir      int
	FloatDir float64
	Ship     *geom.Shape

	Mass      float64
	EmptyMass float64
	Status    Status
	Used      Equip
	Have      Equip
	Armor     int
	// Fuel is scaled by FuelScaleBits.
	Fuel  int64
	Items []int

	Score float64
	Kills int

	Shoves        [MaxRecordedShoves]Shove
	nextShove     int
	LastWallTouch int64
	WormholeHit   int
	WormholeDest  int
	Speed         float64
}

// NewPlayer returns a playing ship with the stock hull and empty shove
// records.
func NewPlayer(id int, name string, team int) *Player {
	pl := &Player{
		ID:           id,
		Name:         name,
		Team:         team,
		Ship:         geom.DefaultShip,
		Mass:         20,
		EmptyMass:    15,
		Status:       StatusPlaying,
		Fuel:         1000 << FuelScaleBits,
		WormholeHit:  -1,
		WormholeDest: -1,
	}
	for i := range pl.Shoves {
		pl.Shoves[i].PusherID = NoID
	}
	return pl
}

func (p *Player) Position() geom.Vec { return p.Pos }
func (p *Player) Velocity() geom.Vel { return p.Vel }
func (p *Player) TeamID() int        { return p.Team }

// Active reports whether the player takes part in collisions: playing
// and neither paused, out of the game, nor already killed.
func (p *Player) Active() bool {
	return p.Status&(StatusPlaying|StatusPaused|StatusGameOver|StatusKilled) == StatusPlaying
}

// FullyShielded reports whether both shield and emergency shield are up.
func (p *Player) FullyShielded() bool {
	return p.Used&(EquipShield|EquipEmergencyShield) == EquipShield|EquipEmergencyShield
}

// RecordShove remembers that pusher shoved the player at frame.
func (p *Player) RecordShove(pusher int, frame int64) {
	p.Shoves[p.nextShove] = Shove{PusherID: pusher, Frame: frame}
	p.nextShove = (p.nextShove + 1) % MaxRecordedShoves
}

// AddFuel changes the fuel amount, never going below zero.
func (p *Player) AddFuel(delta int64) {
	p.Fuel = max(p.Fuel+delta, 0)
}

// HitMask is the mask a player's moves use: groups of its own team are
// transparent.
func (p *Player) HitMask() uint32 {
	return geom.NonBallBit | geom.TeamBit(p.Team)
}
