package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"arena-server/geom"
	"arena-server/walls"
)

// IndexCache keeps built polygon indexes on disk keyed by the fingerprint
// of the geometry they were built from. A nil cache or one without a
// directory always builds.
type IndexCache struct {
	dir string
	log logrus.FieldLogger
}

func NewIndexCache(dir string, log logrus.FieldLogger) *IndexCache {
	return &IndexCache{dir: dir, log: log}
}

func (c *IndexCache) path(key uint64) string {
	return filepath.Join(c.dir, fmt.Sprintf("%016x.idx", key))
}

// Index returns the index for w and whether it was loaded from disk.
func (c *IndexCache) Index(w *geom.World) (*walls.Index, bool, error) {
	if c == nil || c.dir == "" {
		ix, err := walls.Build(w)
		return ix, false, err
	}

	key, err := walls.WorldFingerprint(w)
	if err != nil {
		return nil, false, err
	}
	log := c.log.WithField("key", fmt.Sprintf("%016x", key))

	if data, err := os.ReadFile(c.path(key)); err == nil {
		ix, err := walls.LoadSnapshot(data)
		if err == nil {
			log.Debug("index loaded from cache")
			return ix, true, nil
		}
		log.WithError(err).Warn("discarding bad cached index")
	}

	ix, err := walls.Build(w)
	if err != nil {
		return nil, false, err
	}
	if err := c.store(key, ix); err != nil {
		log.WithError(err).Warn("could not cache index")
	}
	return ix, false, nil
}

// store writes the snapshot under a unique temporary name, then renames
// it to its key.
func (c *IndexCache) store(key uint64, ix *walls.Index) error {
	data, err := ix.Snapshot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(c.dir, uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.path(key)); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
