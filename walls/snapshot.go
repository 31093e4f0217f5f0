package walls

import (
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/vmihailenco/msgpack/v5"

	"arena-server/geom"
)

const snapshotVersion = 1

var ErrSnapshot = errors.New("bad index snapshot")

type snapshot struct {
	Version  int            `msgpack:"v"`
	Bounds   geom.Bounds    `msgpack:"bounds"`
	MapX     int            `msgpack:"mx"`
	MapY     int            `msgpack:"my"`
	Segments []geom.Segment `msgpack:"segs"`
	Groups   []geom.Group   `msgpack:"groups"`
	Cells    []cell         `msgpack:"cells"`
	Inside   [][]insideNode `msgpack:"inside"`
}

// Snapshot encodes the built index so a later run can load it without
// rebuilding.
func (ix *Index) Snapshot() ([]byte, error) {
	return msgpack.Marshal(&snapshot{
		Version:  snapshotVersion,
		Bounds:   ix.bounds,
		MapX:     ix.mapX,
		MapY:     ix.mapY,
		Segments: ix.segs,
		Groups:   ix.groups,
		Cells:    ix.cells,
		Inside:   ix.inside,
	})
}

// LoadSnapshot decodes an index written by Snapshot.
func LoadSnapshot(data []byte) (*Index, error) {
	var s snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrSnapshot, s.Version)
	}
	if s.MapX <= 0 || s.MapY <= 0 || len(s.Cells) != s.MapX*s.MapY || len(s.Inside) != len(s.Cells) {
		return nil, fmt.Errorf("%w: %dx%d with %d cells", ErrSnapshot, s.MapX, s.MapY, len(s.Cells))
	}
	for _, c := range s.Cells {
		for _, l := range c.Lines {
			if l < 0 || int(l) >= len(s.Segments) {
				return nil, fmt.Errorf("%w: line %d out of range", ErrSnapshot, l)
			}
		}
		for _, l := range c.Corners {
			if l < 0 || int(l) >= len(s.Segments) {
				return nil, fmt.Errorf("%w: corner %d out of range", ErrSnapshot, l)
			}
		}
	}
	for _, seg := range s.Segments {
		if seg.Group < 0 || seg.Group >= len(s.Groups) {
			return nil, fmt.Errorf("%w: group %d out of range", ErrSnapshot, seg.Group)
		}
	}
	return &Index{
		bounds: s.Bounds,
		mapX:   s.MapX,
		mapY:   s.MapY,
		segs:   s.Segments,
		groups: s.Groups,
		cells:  s.Cells,
		inside: s.Inside,
	}, nil
}

// Fingerprint is a stable hash of the whole index. Two builds of the same
// geometry have the same fingerprint.
func (ix *Index) Fingerprint() (uint64, error) {
	data, err := ix.Snapshot()
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64(), nil
}

// WorldFingerprint hashes map geometry before it is built, for use as a
// snapshot cache key.
func WorldFingerprint(w *geom.World) (uint64, error) {
	data, err := msgpack.Marshal(w)
	if err != nil {
		return 0, err
	}
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64(), nil
}
