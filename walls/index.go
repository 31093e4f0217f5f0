// Package walls indexes polygon map geometry and sweeps points and ship
// outlines through it.
package walls

import (
	"errors"
	"fmt"

	"arena-server/geom"
)

const (
	BlockShift  = 11
	BlockClicks = 1 << BlockShift
	blockMask   = BlockClicks - 1

	// MaxMove is the longest distance anything travels in one frame.
	MaxMove = 32000

	// SeparationDist is how near a line end must be to count as a corner.
	SeparationDist = 64

	cutoff      = 2 * BlockClicks
	closeDist   = 5 * geom.Click
	lineSlots   = 100
	nearSlots   = 10 + 1
	cornerSlots = 200

	maxSegmentDelta = 30000
	maxSweep        = 45000
)

var (
	ErrEmptyWorld   = errors.New("world has no area")
	ErrOpenPolygon  = errors.New("polygon does not close")
	ErrBadGroup     = errors.New("polygon references unknown group")
	ErrCellCapacity = errors.New("cell capacity exceeded")
	ErrInsideTrace  = errors.New("polygon trace lost its cell")
)

type cell struct {
	Distance int
	Clear    int
	Lines    []int32
	Corners  []int32
}

// Index is the collision structure for one loaded map. Only group hit
// masks change after Build.
type Index struct {
	bounds geom.Bounds
	mapX   int
	mapY   int
	segs   []geom.Segment
	groups []geom.Group
	cells  []cell
	inside [][]insideNode
}

// Build extracts wall segments from w and builds the line, corner and
// containment tables. Any error means the map cannot be used.
func Build(w *geom.World) (*Index, error) {
	if w.Width <= 0 || w.Height <= 0 {
		return nil, ErrEmptyWorld
	}
	ix := &Index{
		bounds: w.Bounds,
		mapX:   (w.Width + blockMask) >> BlockShift,
		mapY:   (w.Height + blockMask) >> BlockShift,
		groups: append([]geom.Group(nil), w.Groups...),
	}
	if len(ix.groups) == 0 {
		ix.groups = append(ix.groups, geom.WallGroup)
	}
	ix.groups[0].Kind = geom.KindWall
	ix.groups[0].HitMask = 0

	if err := ix.extractSegments(w.Polygons); err != nil {
		return nil, err
	}
	if err := ix.buildDistances(); err != nil {
		return nil, err
	}
	if err := ix.buildCorners(); err != nil {
		return nil, err
	}
	if err := ix.buildInside(w.Polygons); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *Index) extractSegments(polys []geom.Polygon) error {
	ix.segs = ix.segs[:0]
	for pi := range polys {
		p := &polys[pi]
		if p.Decor {
			continue
		}
		if p.Group < 0 || p.Group >= len(ix.groups) {
			return fmt.Errorf("polygon %d group %d: %w", pi, p.Group, ErrBadGroup)
		}
		if !p.Closed() {
			return fmt.Errorf("polygon %d (%d points): %w", pi, len(p.Edges), ErrOpenPolygon)
		}
		pos := p.Start
		for _, e := range p.Edges {
			if !e.Hidden && !e.Delta.IsZero() {
				ix.addSegment(pos, e.Delta, p.Group)
			}
			pos = pos.Add(e.Delta)
		}
	}
	return nil
}

// pieces is how many parts an edge of length delta is cut into. No part
// may exceed maxSegmentDelta, and every part must stay within half the
// world of the cell it starts in, less one cell, or the wrapped cell
// offsets of the builders would turn round.
func (ix *Index) pieces(delta geom.Vec) int {
	limX := max(min(maxSegmentDelta, ix.bounds.Width/2-BlockClicks), 1)
	limY := max(min(maxSegmentDelta, ix.bounds.Height/2-BlockClicks), 1)
	return 1 + max(geom.Abs(delta.X)/limX, geom.Abs(delta.Y)/limY)
}

// addSegment stores a wall, split into pieces.
func (ix *Index) addSegment(start, delta geom.Vec, group int) {
	n := ix.pieces(delta)
	prev := geom.Vec{}
	for k := 1; k <= n; k++ {
		cur := geom.Vec{X: delta.X * k / n, Y: delta.Y * k / n}
		s := start.Add(prev)
		if ix.bounds.Wrap {
			s = ix.bounds.Tile(s)
		}
		ix.segs = append(ix.segs, geom.NewSegment(s, cur.Sub(prev), group))
		prev = cur
	}
}

// cellIndex returns the table slot for a click position. Positions off a
// non-wrapping map use the nearest edge cell.
func (ix *Index) cellIndex(x, y int) int {
	bx := min(max(x>>BlockShift, 0), ix.mapX-1)
	by := min(max(y>>BlockShift, 0), ix.mapY-1)
	return bx + ix.mapX*by
}

func (ix *Index) masked(group int, mask uint32) bool {
	return group != 0 && ix.groups[group].HitMask&mask != 0
}

func (ix *Index) Bounds() geom.Bounds { return ix.bounds }

// Size returns the table dimensions in cells.
func (ix *Index) Size() (int, int) { return ix.mapX, ix.mapY }

func (ix *Index) NumSegments() int { return len(ix.segs) }

func (ix *Index) Segment(i int) geom.Segment { return ix.segs[i] }

func (ix *Index) NumGroups() int { return len(ix.groups) }

func (ix *Index) Group(g int) geom.Group { return ix.groups[g] }

// SetHitMask changes the hit mask of group g. It is how destroyed
// structures are taken out of play and put back. Group 0 is always
// solid.
func (ix *Index) SetHitMask(g int, mask uint32) {
	if g <= 0 || g >= len(ix.groups) {
		return
	}
	ix.groups[g].HitMask = mask
}

// CellInfo describes one table cell.
type CellInfo struct {
	// Distance is how far anything in the cell may travel before a line
	// missing from Lines could be reached.
	Distance int
	// Clear is how far anything in the cell may travel before any line
	// at all could be reached.
	Clear   int
	Lines   []int32
	Corners []int32
}

// CellAt returns the cell holding (x, y). The slices are shared.
func (ix *Index) CellAt(x, y int) CellInfo {
	c := &ix.cells[ix.cellIndex(x, y)]
	return CellInfo{Distance: c.Distance, Clear: c.Clear, Lines: c.Lines, Corners: c.Corners}
}

// ClearDistance is the travel allowed from (x, y) without any line check.
func (ix *Index) ClearDistance(x, y int) int {
	return ix.cells[ix.cellIndex(x, y)].Clear
}
