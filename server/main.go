package main

import (
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/journal"
)

func main() {
	initLogger()

	cfg, err := ParseConfig(os.Args[1:])
	if err != nil {
		Log.WithError(err).Fatal("bad configuration")
	}

	rules := arena.DefaultRules()
	rules.FPS = float64(cfg.TickRate)

	j, err := journal.Open(cfg.DB)
	if err != nil {
		Log.WithError(err).WithField("db", cfg.DB).Fatal("cannot open journal")
	}
	defer j.Close()

	auth, err := NewAuth(cfg.AdminHash, cfg.JWTSecret)
	if err != nil {
		Log.WithError(err).Fatal("bad admin settings")
	}
	if !auth.Enabled() {
		Log.Warn("ARENA_ADMIN_HASH not set, map reload is disabled")
	}

	cache := NewIndexCache(cfg.CacheDir, Log.WithField("component", "cache"))
	build, err := LoadMap(cfg.Map, cfg.Engine, rules, cache)
	if err != nil {
		Log.WithError(err).WithField("map", cfg.Map).Fatal("cannot load map")
	}

	session, err := j.StartSession(build.Name, build.Engine)
	if err != nil {
		Log.WithError(err).Fatal("cannot start journal session")
	}
	writer := journal.NewWriter(j, session, Log)

	app := &App{Rules: rules, Auth: auth, Journal: j, Session: session, Cache: cache, Map: cfg.Map, Engine: cfg.Engine}
	app.Hub = NewHub(func() WelcomeMsg { return app.Sim.Welcome() })

	sim, err := NewSim(build, rules, rand.New(rand.NewSource(cfg.Seed)), app.Hub, writer, session)
	if err != nil {
		Log.WithError(err).Fatal("cannot start simulation")
	}
	app.Sim = sim
	if err := sim.AddDrones(cfg.Drones); err != nil {
		Log.WithError(err).Warn("no drones")
	}

	go app.Hub.Run()
	go sim.Run(time.Second / time.Duration(cfg.TickRate))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Addr, Handler: SetupRoutes(app)}

	go func() {
		Log.WithFields(logrus.Fields{
			"addr":    cfg.Addr,
			"session": session,
			"tick":    cfg.TickRate,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			Log.WithError(err).Fatal("ListenAndServe")
		}
	}()

	<-stop
	Log.Info("shutting down")
	server.Close()
	sim.Stop()
	writer.Stop()
	if err := j.EndSession(session); err != nil {
		Log.WithError(err).Warn("cannot close journal session")
	}
}
