package physics

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"arena-server/arena"
)

type crashText struct {
	format string
	hud    string
	sound  string
}

var crashTexts = map[arena.Crash]crashText{
	arena.CrashWall:       {"%s crashed%s against a wall", "[Wall]", arena.SoundPlayerHitWall},
	arena.CrashWallSpeed:  {"%s smashed%s against a wall", "[Wall]", arena.SoundPlayerHitWall},
	arena.CrashWallNoFuel: {"%s smacked%s against a wall", "[Wall]", arena.SoundPlayerHitWall},
	arena.CrashWallAngle:  {"%s was trashed%s against a wall", "[Wall]", arena.SoundPlayerHitWall},
	arena.CrashTarget:     {"%s smashed%s against a target", "[Target]", arena.SoundPlayerHitWall},
	arena.CrashTreasure:   {"%s smashed%s against a treasure", "[Treasure]", arena.SoundPlayerHitWall},
	arena.CrashCannon:     {"%s smashed%s against a cannon", "[Cannon]", arena.SoundPlayerHitCannon},
	arena.CrashUniverse:   {"%s left the known universe%s", "[Universe]", arena.SoundPlayerHitWall},
	arena.CrashUnknown:    {"%s slammed%s into a programming error", "[Bug]", arena.SoundPlayerHitWall},
}

// PlayerCrash applies crash to pl. item is the target, cannon or
// wormhole involved and point the ship vertex that hit, 0 being the
// nose. A wormhole only starts the warp; every other crash kills the
// player and settles the score with whoever shoved them.
func (r *Resolver) PlayerCrash(pl *arena.Player, crash arena.Crash, item, point int) {
	text, known := crashTexts[crash]
	switch crash {
	case arena.CrashWormhole:
		pl.Status |= arena.StatusWarping
		pl.WormholeHit = item
		return
	case arena.CrashTarget:
		r.host.Sound(pl.Pos, text.sound)
		r.hitTarget(item, playerStriker(pl), -1)
	case arena.CrashCannon:
		cn := r.state.Cannon(item)
		if pl.FullyShielded() {
			known = false
		} else {
			r.host.Sound(pl.Pos, text.sound)
		}
		if cn != nil && cn.Alive() && cn.Used&arena.EquipEmergencyShield == 0 {
			r.CannonDies(item, pl)
		}
	case arena.NotACrash:
		r.log.WithField("player", pl.Name).Warn("unrecognized crash")
		return
	default:
		if known {
			r.host.Sound(pl.Pos, text.sound)
		}
	}
	if !known {
		return
	}

	pl.Status |= arena.StatusKilled
	head := ""
	if point == 0 {
		head = " head first"
	}
	msg := fmt.Sprintf(text.format, pl.Name, head)

	pushers, counts, total := r.pushers(pl)
	if len(pushers) == 0 {
		r.host.Score(pl, -arena.Rate(arena.WallScore, pl.Score), pl.Pos, text.hud)
		msg += "."
	} else {
		var sb strings.Builder
		sb.WriteString(msg)
		sum := 0.0
		for i, p := range pushers {
			sum += p.Score * float64(counts[i])
		}
		avg := float64(int(sum / float64(total)))
		for i, p := range pushers {
			switch {
			case i == 0:
				sb.WriteString(" with help from ")
			case i < len(pushers)-1:
				sb.WriteString(", ")
			default:
				sb.WriteString(" and ")
			}
			sb.WriteString(p.Name)
			sc := float64(counts[i]) * arena.Rate(p.Score, pl.Score) * r.rules.ShoveKillScoreMult / float64(total)
			r.host.Score(p, sc, pl.Pos, pl.Name)
		}
		pushers[len(pushers)-1].Kills++
		r.host.Score(pl, -arena.Rate(avg, pl.Score)*r.rules.ShoveKillScoreMult, pl.Pos, "[Shove]")
		sb.WriteString(".")
		msg = sb.String()

		if pl.Robot {
			r.host.DeclareWar(pl, pushers[r.rnd.Intn(len(pushers))])
		}
	}
	r.host.Message(msg)
	r.log.WithFields(logrus.Fields{
		"player": pl.Name,
		"crash":  crash,
		"frame":  r.state.Frame,
	}).Debug("player crashed")
	r.host.Kill(pl, msg)
}

// pushers lists who shoved pl within the shove window, with how often
// each did.
func (r *Resolver) pushers(pl *arena.Player) ([]*arena.Player, []int, int) {
	var (
		list   []*arena.Player
		counts []int
		total  int
	)
	window := r.rules.ShoveWindow
	if window <= 0 {
		window = 20
	}
	for _, sh := range pl.Shoves {
		if sh.PusherID == arena.NoID || sh.Frame < r.state.Frame-window {
			continue
		}
		p := r.host.PlayerByID(sh.PusherID)
		if p == nil {
			continue
		}
		j := 0
		for j < len(list) && list[j].ID != p.ID {
			j++
		}
		if j == len(list) {
			list = append(list, p)
			counts = append(counts, 0)
		}
		counts[j]++
		total++
	}
	return list, counts, total
}
