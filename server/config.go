package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Engine choices for -engine.
const (
	EngineAuto    = "auto"
	EngineGrid    = "grid"
	EnginePolygon = "polygon"
)

var ErrBadEngine = errors.New("unknown engine")

// Config is the server configuration. Every flag falls back to an
// environment variable.
type Config struct {
	Addr      string
	DB        string
	Map       string
	Engine    string
	CacheDir  string
	AdminHash string
	JWTSecret string
	Drones    int
	TickRate  int
	Seed      int64
}

// GetEnv returns the value of the environment variable named by key, or
// fallback if it is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

// ParseConfig reads args (without the program name).
func ParseConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("arena-server", flag.ContinueOnError)
	c := &Config{}
	fs.StringVar(&c.Addr, "addr", GetEnv("ARENA_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&c.DB, "db", GetEnv("ARENA_DB", "arena.db"), "SQLite journal path")
	fs.StringVar(&c.Map, "map", GetEnv("ARENA_MAP", ""), "block map file (empty for the built-in map)")
	fs.StringVar(&c.Engine, "engine", GetEnv("ARENA_ENGINE", EngineAuto), "motion engine: auto, grid or polygon")
	fs.StringVar(&c.CacheDir, "cache", GetEnv("ARENA_CACHE_DIR", ""), "directory for built index snapshots")
	fs.StringVar(&c.AdminHash, "admin-hash", GetEnv("ARENA_ADMIN_HASH", ""), "bcrypt hash of the admin password")
	fs.StringVar(&c.JWTSecret, "jwt-secret", GetEnv("ARENA_JWT_SECRET", ""), "admin token signing secret (random if empty)")
	fs.IntVar(&c.Drones, "drones", getEnvInt("ARENA_DRONES", 4), "robot ships to fly around the map")
	fs.IntVar(&c.TickRate, "tick", getEnvInt("ARENA_TICK", TickRate), "simulation frames per second")
	fs.Int64Var(&c.Seed, "seed", 0, "random seed (0 for time based)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch c.Engine {
	case EngineAuto, EngineGrid, EnginePolygon:
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadEngine, c.Engine)
	}
	if c.TickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.Drones < 0 {
		c.Drones = 0
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c, nil
}
