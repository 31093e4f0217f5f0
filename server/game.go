package main

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/geom"
	"arena-server/journal"
	"arena-server/physics"
)

const (
	TickRate      = 12 // frames per second, as the stock rules assume
	BroadcastRate = 12
)

const (
	maxObjects    = 2000
	respawnFrames = 3 * TickRate
)

var ErrNoBase = errors.New("map has no bases")

// Feed receives what spectators should see.
type Feed interface {
	BroadcastFrame(FrameState)
	BroadcastEvent(EventMsg)
}

// EventSink persists resolver events. *journal.Writer is one.
type EventSink interface {
	Record(journal.Event)
}

// Sim owns one running map: the players, the object pool and the
// integrator. Step runs on the Run goroutine; everything else takes the
// lock.
type Sim struct {
	mu      sync.RWMutex
	log     logrus.FieldLogger
	rules   arena.Rules
	rnd     *rand.Rand
	build   *MapBuild
	in      *physics.Integrator
	host    *simHost
	feed    Feed
	sink    EventSink
	session string

	players []*arena.Player
	drones  map[int]*drone
	respawn map[int]int
	objects []*arena.Object
	spawned []*arena.Object
	nextID  int

	tick           uint64
	broadcastEvery uint64
	running        bool
	stop           chan struct{}
	done           chan struct{}
}

// NewSim starts build with the given rules. feed and sink may be nil.
func NewSim(build *MapBuild, rules arena.Rules, rnd *rand.Rand, feed Feed, sink EventSink, session string) (*Sim, error) {
	s := &Sim{
		log:            Log.WithField("component", "sim"),
		rules:          rules,
		rnd:            rnd,
		feed:           feed,
		sink:           sink,
		session:        session,
		drones:         make(map[int]*drone),
		respawn:        make(map[int]int),
		broadcastEvery: 1,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	if rules.FPS > 0 && rules.FPS > BroadcastRate {
		s.broadcastEvery = uint64(rules.FPS / BroadcastRate)
	}
	s.host = &simHost{s: s}
	if err := s.load(build); err != nil {
		return nil, err
	}
	return s, nil
}

// load switches to build. The caller holds the write lock or owns s.
func (s *Sim) load(build *MapBuild) error {
	in, err := build.Start(s.host, s.rules, s.rnd, s.log.WithField("map", build.Name))
	if err != nil {
		return err
	}
	s.build, s.in = build, in
	s.objects, s.spawned = nil, nil
	s.spawnBalls()
	for _, pl := range s.players {
		if err := s.place(pl); err != nil {
			s.log.WithError(err).WithField("player", pl.Name).Warn("cannot place player")
		}
	}
	s.log.WithFields(logrus.Fields{
		"map":    build.Name,
		"engine": in.Engine().Name(),
		"build":  build.BuildID,
		"cached": build.CacheHit,
	}).Info("map loaded")
	s.record(journal.Event{Kind: journal.KindMapLoad, Text: build.Name + " " + build.Engine + " " + build.BuildID})
	return nil
}

// Reload swaps in a new map between frames. Players stay and are moved
// to bases; objects are dropped.
func (s *Sim) Reload(build *MapBuild) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(build)
}

// Run steps the simulation at the given frame period until Stop.
func (s *Sim) Run(period time.Duration) {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	defer close(s.done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Step()
		case <-s.stop:
			return
		}
	}
}

// Stop ends Run and waits for the last frame to finish.
func (s *Sim) Stop() {
	s.mu.Lock()
	running := s.running
	if running {
		s.running = false
		close(s.stop)
	}
	s.mu.Unlock()
	if running {
		<-s.done
	}
}

// Step runs one frame.
func (s *Sim) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick++
	for _, pl := range s.players {
		if pl.Status&arena.StatusKilled != 0 {
			s.countdownRespawn(pl)
			continue
		}
		pl.Status &^= arena.StatusWarped
		if d := s.drones[pl.ID]; d != nil {
			s.fly(pl, d)
		}
	}

	s.in.Step(s.players, s.objects)
	s.reap()

	if s.feed != nil && s.tick%s.broadcastEvery == 0 {
		s.feed.BroadcastFrame(s.frameLocked())
	}
}

// reap drops dead objects, recreates balls that asked for it and adds
// what was spawned during the frame.
func (s *Sim) reap() {
	live := s.objects[:0]
	for _, obj := range s.objects {
		if obj.Alive() {
			live = append(live, obj)
			continue
		}
		if obj.Type == arena.ObjBall && obj.Status&arena.StatusRecreate != 0 {
			s.spawned = append(s.spawned, s.newBall(obj.Treasure))
		}
	}
	for i := len(live); i < len(s.objects); i++ {
		s.objects[i] = nil
	}
	s.objects = live
	for _, obj := range s.spawned {
		if obj != nil && len(s.objects) < maxObjects {
			s.objects = append(s.objects, obj)
		}
	}
	s.spawned = s.spawned[:0]
}

func (s *Sim) nextObjectID() int {
	s.nextID++
	return s.nextID
}

// spawnBalls puts a ball on every treasure that starts with one.
func (s *Sim) spawnBalls() {
	st := s.in.Resolver().State()
	for i := range st.Treasures {
		if st.Treasures[i].Empty {
			continue
		}
		if ball := s.newBall(i); ball != nil {
			s.objects = append(s.objects, ball)
		}
	}
}

func (s *Sim) newBall(ti int) *arena.Object {
	tr := s.in.Resolver().State().Treasure(ti)
	if tr == nil {
		return nil
	}
	tr.Have = true
	return &arena.Object{
		ID:       s.nextObjectID(),
		Type:     arena.ObjBall,
		Pos:      tr.Pos.Add(geom.Vec{Y: geom.ToClick(geom.BallRadius * 2)}),
		Mass:     50,
		Life:     arena.LifeForever,
		Team:     tr.Team,
		Owner:    arena.NoID,
		Treasure: ti,
	}
}

// place puts a player on a base of its team, or any base.
func (s *Sim) place(pl *arena.Player) error {
	bases := s.in.Resolver().State().Bases
	if len(bases) == 0 {
		return ErrNoBase
	}
	var own []arena.Base
	for _, b := range bases {
		if b.Team == pl.Team {
			own = append(own, b)
		}
	}
	if len(own) == 0 {
		own = bases
	}
	b := own[s.rnd.Intn(len(own))]
	pl.Pos = b.Pos
	pl.Vel = geom.Vel{}
	pl.Dir = geom.Res / 4
	pl.FloatDir = float64(pl.Dir)
	pl.Status = arena.StatusPlaying
	pl.WormholeHit, pl.WormholeDest = -1, -1
	return nil
}

func (s *Sim) countdownRespawn(pl *arena.Player) {
	left, ok := s.respawn[pl.ID]
	if !ok {
		left = respawnFrames
	}
	if left--; left > 0 {
		s.respawn[pl.ID] = left
		return
	}
	delete(s.respawn, pl.ID)
	if err := s.place(pl); err != nil {
		s.log.WithError(err).WithField("player", pl.Name).Warn("cannot respawn")
		return
	}
	pl.Fuel = 1000 << arena.FuelScaleBits
	pl.Used = 0
}

// Frame returns the current state for a spectator.
func (s *Sim) Frame() FrameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameLocked()
}

func (s *Sim) frameLocked() FrameState {
	st := s.in.Resolver().State()
	fs := FrameState{
		Tick:    s.tick,
		Frame:   st.Frame,
		Ships:   make([]ShipState, 0, len(s.players)),
		Objects: make([]ObjectState, 0, len(s.objects)),
	}
	for _, pl := range s.players {
		fs.Ships = append(fs.Ships, ShipState{
			ID:     pl.ID,
			Name:   pl.Name,
			Team:   pl.Team,
			X:      geom.ToPixel(pl.Pos.X),
			Y:      geom.ToPixel(pl.Pos.Y),
			VX:     pl.Vel.X,
			VY:     pl.Vel.Y,
			Dir:    pl.Dir,
			Score:  pl.Score,
			Alive:  pl.Status&arena.StatusKilled == 0,
			Warped: pl.Status&arena.StatusWarped != 0,
		})
	}
	for _, obj := range s.objects {
		if !obj.Alive() {
			continue
		}
		fs.Objects = append(fs.Objects, ObjectState{
			ID:    obj.ID,
			Type:  obj.Type.String(),
			X:     geom.ToPixel(obj.Pos.X),
			Y:     geom.ToPixel(obj.Pos.Y),
			Owner: obj.Owner,
		})
	}
	for i, t := range st.Targets {
		fs.Targets = append(fs.Targets, StructureState{Index: i, Team: t.Team, Alive: t.Alive(), Damage: t.Damage})
	}
	for i, c := range st.Cannons {
		fs.Cannons = append(fs.Cannons, StructureState{Index: i, Team: c.Team, Alive: c.Alive()})
	}
	return fs
}

// Welcome describes the running map.
func (s *Sim) Welcome() WelcomeMsg {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := s.in.Engine().Bounds()
	return WelcomeMsg{
		Session: s.session,
		Map:     s.build.Name,
		Engine:  s.in.Engine().Name(),
		BuildID: s.build.BuildID,
		Width:   b.Width / geom.Click,
		Height:  b.Height / geom.Click,
	}
}

// PlayerCount returns the number of players
func (s *Sim) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Team returns a copy of the tallies of team t.
func (s *Sim) Team(t int) arena.Team {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.in.Resolver().State()
	if t < 0 || t >= len(st.Teams) {
		return arena.Team{}
	}
	return st.Teams[t]
}

func (s *Sim) record(e journal.Event) {
	if s.sink == nil {
		return
	}
	e.Frame = s.in.Resolver().State().Frame
	s.sink.Record(e)
}

func (s *Sim) publish(ev EventMsg) {
	if s.feed == nil {
		return
	}
	ev.Frame = s.in.Resolver().State().Frame
	s.feed.BroadcastEvent(ev)
}
