package arena

// Crash is why a move ended in destruction or a warp.
type Crash int

const (
	NotACrash Crash = iota
	CrashWall
	CrashWallSpeed
	CrashWallNoFuel
	CrashWallAngle
	CrashTarget
	CrashTreasure
	CrashCannon
	CrashUniverse
	CrashWormhole
	CrashUnknown
)

var crashNames = [...]string{
	NotACrash:       "none",
	CrashWall:       "wall",
	CrashWallSpeed:  "wall_speed",
	CrashWallNoFuel: "wall_no_fuel",
	CrashWallAngle:  "wall_angle",
	CrashTarget:     "target",
	CrashTreasure:   "treasure",
	CrashCannon:     "cannon",
	CrashUniverse:   "universe",
	CrashWormhole:   "wormhole",
	CrashUnknown:    "unknown",
}

func (c Crash) String() string {
	if c < 0 || int(c) >= len(crashNames) {
		return "unknown"
	}
	return crashNames[c]
}
