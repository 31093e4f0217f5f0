package main

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"arena-server/arena"
	"arena-server/blockmap"
	"arena-server/physics"
	"arena-server/walls"
)

const builtinMapName = "builtin"

// builtinMap is flown when no map file is given. Two teams, each with a
// target, a treasure and a cannon, plus a wormhole pair between them.
var builtinMap = []string{
	"xxxxxxxxxxxxxxxxxxxxxxxxxxxx",
	"x                          x",
	"x  1   !     ##     !   2  x",
	"x                          x",
	"x   *    xxxa    sxxx   *  x",
	"x        xxxx    xxxx      x",
	"x    r                 r   x",
	"xxxxxx     zzzzzz     xxxxxx",
	"x                          x",
	"x  (        _  _        )  x",
	"x                          x",
	"x     1    xxxxxxxx    2   x",
	"x          w      q        x",
	"x  @                    @  x",
	"xxxxxxxxxxxxxxxxxxxxxxxxxxxx",
}

var ErrEmptyMapFile = errors.New("map file has no rows")

// readMapRows reads a block map file. Lines starting with ';' are
// comments.
func readMapRows(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), blockmap.MaxBlocks+2)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, ";") {
			continue
		}
		rows = append(rows, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	for len(rows) > 0 && strings.TrimSpace(rows[len(rows)-1]) == "" {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyMapFile)
	}
	return rows, nil
}

// MapBuild is a parsed map with the geometry its engine needs, ready to
// be started any number of times.
type MapBuild struct {
	Name    string
	Engine  string
	BuildID string
	// CacheHit tells whether the polygon index came from the snapshot
	// cache.
	CacheHit bool
	Grid     *blockmap.Grid
	snapshot []byte
}

// LoadMap parses the map at path (the built-in map when path is empty)
// and prepares it for engine.
func LoadMap(path, engine string, rules arena.Rules, cache *IndexCache) (*MapBuild, error) {
	rows, name := builtinMap, builtinMapName
	if path != "" {
		var err error
		if rows, err = readMapRows(path); err != nil {
			return nil, err
		}
		name = filepath.Base(path)
	}

	g, err := blockmap.Parse(rows, blockmap.Options{
		Wrap:        rules.EdgeWrap,
		TeamPlay:    rules.TeamPlay,
		TeamCannons: rules.TeamCannons,
	})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	if engine == EngineAuto {
		engine = EnginePolygon
	}
	m := &MapBuild{Name: name, Engine: engine, BuildID: uuid.NewString(), Grid: g}
	if engine == EnginePolygon {
		ix, hit, err := cache.Index(g.Polygons(rules))
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", name, err)
		}
		// Every start gets its own copy since the engine toggles group
		// masks as structures die.
		if m.snapshot, err = ix.Snapshot(); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", name, err)
		}
		m.CacheHit = hit
	}
	return m, nil
}

// Start creates fresh structure state and an integrator for one run of
// the map.
func (m *MapBuild) Start(host arena.Host, rules arena.Rules, rnd *rand.Rand, log logrus.FieldLogger) (*physics.Integrator, error) {
	st := m.Grid.NewState()
	st.TeamPlay = rules.TeamPlay
	res := physics.NewResolver(log, host, rules, st, rnd)

	var engine physics.MotionEngine
	switch m.Engine {
	case EngineGrid:
		engine = physics.NewGridEngine(m.Grid, res)
	default:
		ix, err := walls.LoadSnapshot(m.snapshot)
		if err != nil {
			return nil, err
		}
		engine = physics.NewPolygonEngine(ix, res)
	}
	return physics.NewIntegrator(engine, res), nil
}
