package physics

import (
	"fmt"
	"math"

	"arena-server/arena"
	"arena-server/geom"
)

// BallHitsGoal settles a ball that reached the treasure goal grp. A ball
// brought home is replaced; one brought to another team's goal destroys
// its home treasure and punishes that team.
func (r *Resolver) BallHitsGoal(ball *arena.Object, grp geom.Group) {
	if ball.Owner == arena.NoID {
		ball.Status |= arena.StatusNoExplosion | arena.StatusRecreate
		return
	}
	home := r.state.Treasure(ball.Treasure)
	if home == nil {
		r.log.WithField("treasure", ball.Treasure).Error("ball has no home treasure")
		ball.Kill()
		return
	}
	owner := r.host.PlayerByID(ball.Owner)
	if owner == nil {
		ball.Status |= arena.StatusNoExplosion | arena.StatusRecreate
		return
	}
	if home.Team == grp.Team {
		r.BallIsReplaced(ball, home, owner)
		return
	}
	r.BallIsDestroyed(ball, owner)
	if r.PunishTeam(owner, ball.Treasure, ball.Pos) {
		ball.Status &^= arena.StatusRecreate
	}
}

// BallEntersTreasure settles a ball entering treasure block ti on the
// grid. It reports whether the ball flies on.
func (r *Resolver) BallEntersTreasure(ball *arena.Object, ti int) bool {
	tt := r.state.Treasure(ti)
	if tt == nil {
		ball.Kill()
		return false
	}
	var owner *arena.Player
	if ball.Owner != arena.NoID {
		owner = r.host.PlayerByID(ball.Owner)
	}
	if ti == ball.Treasure {
		if !r.rules.TeamPlay || owner == nil || owner.Team != tt.Team {
			ball.Life = arena.LifeForever
			return true
		}
		r.BallIsReplaced(ball, tt, owner)
		return false
	}
	if owner == nil {
		ball.Kill()
		return false
	}
	if r.rules.TeamPlay && tt.Team == owner.Team {
		r.BallIsDestroyed(ball, owner)
		if r.rules.CaptureTheFlag && !tt.Have && !tt.Empty {
			r.host.PlayerMessage(owner, "Your treasure must be safe before you can cash an opponent's!")
		} else if r.PunishTeam(owner, ball.Treasure, ball.Pos) {
			ball.Status &^= arena.StatusRecreate
		}
	}
	ball.Kill()
	return false
}

// BallIsReplaced puts a ball back in its own treasure and rewards pl.
func (r *Resolver) BallIsReplaced(ball *arena.Object, tt *arena.Treasure, pl *arena.Player) {
	ball.Kill()
	ball.Status |= arena.StatusNoExplosion | arena.StatusRecreate
	r.host.Score(pl, 5, tt.Pos, "Treasure: ")
	r.host.Message(fmt.Sprintf(" < %s (team %d) has replaced the treasure >", pl.Name, pl.Team))
}

// BallIsDestroyed announces how long the ball was loose.
func (r *Resolver) BallIsDestroyed(ball *arena.Object, owner *arena.Player) {
	step := r.rules.TimeStep
	if step <= 0 {
		step = 1
	}
	fps := r.rules.FPS
	if fps <= 0 {
		fps = 12
	}
	frames := int64(float64(math.MaxInt64-ball.Life) / step)
	r.host.Message(fmt.Sprintf(" < The ball was loose for %d frames / %.2f frames @ 12fps / %.2f seconds >",
		frames, float64(frames)*12/fps, float64(frames)/fps))
}

// PunishTeam scores the destruction of treasure ti by pl. It reports
// whether the treasure counted as destroyed, in which case the ball is
// not recreated.
func (r *Resolver) PunishTeam(pl *arena.Player, ti int, at geom.Vec) bool {
	td := r.state.Treasure(ti)
	if td == nil || td.Team == pl.Team {
		return false
	}

	var (
		winScore, loseScore     float64
		winMembers, loseMembers int
		somebody                bool
	)
	players := r.host.Players()
	if r.rules.TeamPlay {
		for _, p := range players {
			if p.Status&arena.StatusPaused != 0 {
				continue
			}
			if p.Team == td.Team {
				loseScore += p.Score
				loseMembers++
				if p.Status&arena.StatusGameOver == 0 {
					somebody = true
				}
			} else if p.Team == pl.Team {
				winScore += p.Score
				winMembers++
			}
		}
	}

	r.host.SoundAll(arena.SoundDestroyBall)
	r.host.Message(fmt.Sprintf(" < %s's (%d) team has destroyed team %d treasure >", pl.Name, pl.Team, td.Team))

	if !somebody {
		r.host.Score(pl, arena.Rate(pl.Score, arena.CannonScore)/2, at, "Treasure:")
		return false
	}

	td.Destroyed++
	if td.Team >= 0 && td.Team < geom.MaxTeams {
		r.state.Teams[td.Team].TreasuresLeft--
	}
	if pl.Team >= 0 && pl.Team < geom.MaxTeams {
		r.state.Teams[pl.Team].TreasuresDestroyed++
	}

	sc := 3 * arena.Rate(winScore, loseScore)
	por := sc * float64(loseMembers) / float64(2*winMembers+1)
	for _, p := range players {
		if p.Status&arena.StatusPaused != 0 {
			continue
		}
		if p.Team == td.Team {
			r.host.Score(p, -sc, at, "Treasure: ")
			if r.rules.TreasureKillTeam {
				p.Status |= arena.StatusKilled
				r.host.Kill(p, fmt.Sprintf("team %d lost its treasure", td.Team))
			}
		} else if p.Team == pl.Team && (p.Team != geom.TeamNone || p == pl) {
			share := 2 * por
			if p == pl {
				share = 3 * por
			}
			r.host.Score(p, share, at, "Treasure: ")
		}
	}
	if r.rules.TreasureKillTeam {
		pl.Kills++
	}
	return true
}
