package arena

import "math"

// Score rating constants.
const (
	RateSize  = 20
	RateRange = 1024

	WallScore   = 2000
	CannonScore = -1436
)

// Rate is the score a winner earns from a loser: twice the midpoint when
// scores are equal, less when the winner is far ahead.
func Rate(winner, loser float64) float64 {
	t := (RateSize / 2 * RateRange) / (math.Abs(loser-winner) + RateRange)
	if loser > winner {
		t = RateSize - t
	}
	return t
}

// Rules are the tunable gameplay constants. Speeds are pixels per frame,
// angles are in Res units and times are in frames.
type Rules struct {
	TeamPlay     bool
	TeamImmunity bool
	EdgeWrap     bool
	EdgeBounce   bool
	TimeStep     float64
	FPS          float64
	Friction     float64

	// BlockFriction replaces Friction over friction blocks.
	BlockFriction float64

	ObjectWallBounceLifeFactor float64
	ObjectWallBrakeFactor      float64
	MaxObjectWallBounceSpeed   float64

	PlayerWallBrakeFactor             float64
	MaxPlayerWallBounceSpeed          float64
	MaxShieldedPlayerWallBounceSpeed  float64
	MaxPlayerWallBounceAngle          int
	MaxShieldedPlayerWallBounceAngle  int
	WallBounceFuelDrainMult           float64
	WallBounceDestroyItemProb         float64
	WallBounceExplosionMult           float64
	WallBounceSparks                  bool
	ShotHitFuelDrainUsesKineticEnergy bool
	ShotsSpeed                        float64
	ShotsMass                         float64

	ShoveKillScoreMult float64
	ShoveWindow        int64

	TargetTeamCollision bool
	TargetKillTeam      bool
	TargetDeadTime      int
	TreasureKillTeam    bool
	CaptureTheFlag      bool
	CannonDeadTime      int
	CannonPoints        float64
	CannonMaxScore      float64

	// Object types per reaction. Types outside BounceTypes die on walls.
	BounceTypes        ObjType
	CannonCrashTypes   ObjType
	TargetCrashTypes   ObjType
	TreasureCrashTypes ObjType

	TeamCannons      bool
	TreatBallAsPoint bool
	// WormTime makes wormholes warp objects only while they are open.
	WormTime bool
}

// DefaultRules returns the stock server settings.
func DefaultRules() Rules {
	all := ObjType(1<<14 - 1)
	return Rules{
		TeamPlay:     true,
		TeamImmunity: true,
		EdgeBounce:   true,
		TimeStep:     1,
		FPS:          12,

		BlockFriction: 0.1,

		ObjectWallBounceLifeFactor: 0.80,
		ObjectWallBrakeFactor:      0.95,
		MaxObjectWallBounceSpeed:   40,

		PlayerWallBrakeFactor:             0.89,
		MaxPlayerWallBounceSpeed:          20,
		MaxShieldedPlayerWallBounceSpeed:  50,
		MaxPlayerWallBounceAngle:          30 * 128 / 360,
		MaxShieldedPlayerWallBounceAngle:  90 * 128 / 360,
		WallBounceFuelDrainMult:           1,
		WallBounceExplosionMult:           0.5,
		WallBounceSparks:                  true,
		ShotHitFuelDrainUsesKineticEnergy: true,
		ShotsSpeed:                        21,
		ShotsMass:                         0.1,

		ShoveKillScoreMult: 0.5,
		ShoveWindow:        20,

		TargetTeamCollision: true,
		TargetDeadTime:      60 * 12,
		CannonDeadTime:      72 * 12,
		CannonPoints:        1,
		CannonMaxScore:      100,

		BounceTypes:        all &^ (ObjMine | ObjWreckage),
		CannonCrashTypes:   all &^ ObjPlayer,
		TargetCrashTypes:   KillingShots | ObjMine | ObjBall,
		TreasureCrashTypes: all &^ ObjPlayer,
	}
}
