package walls

import (
	"fmt"

	"arena-server/geom"
)

// insideNode is the containment data of one group within one cell.
// Base is the parity just below the cell's lower right corner. Ys lists
// the heights at which outline vertices right of the cell fall inside
// the cell's rows. Lines holds x1, y1, x2, y2 quads in cell coordinates.
type insideNode struct {
	Group int
	Base  int
	Ys    []int32
	Lines []int32
}

type fragment struct {
	x1, y1, x2, y2 int
}

type insideTemp struct {
	distance float64
	inside   int
	ys       []int
	lines    []fragment
}

const (
	farAway  = 1e20
	unknown  = 2
	edgeNone = -1.0
)

type insideBuilder struct {
	ix   *Index
	tb   geom.Bounds
	temp []insideTemp
}

// buildInside traces every group's outlines through the cells they touch,
// then sweeps each row of the group's bounding cells to give every cell a
// base parity.
func (ix *Index) buildInside(polys []geom.Polygon) error {
	n := ix.mapX * ix.mapY
	b := &insideBuilder{ix: ix, tb: ix.bounds, temp: make([]insideTemp, n)}
	b.tb.Wrap = true
	for i := range b.temp {
		b.temp[i].distance = farAway
		b.temp[i].inside = unknown
	}
	ix.inside = make([][]insideNode, n)

	for group := range ix.groups {
		minx, maxx, miny, maxy := 0, 0, 0, 0
		seen := false
		for pi := range polys {
			p := &polys[pi]
			if p.Decor || p.Group != group {
				continue
			}
			start := b.tb.Tile(p.Start)
			bx2, by2 := start.X>>BlockShift, start.Y>>BlockShift
			if !seen {
				minx, maxx, miny, maxy = bx2, bx2, by2, by2
				seen = true
			}
			bx, by := bx2, by2
			b.closest(bx, by, 1e10, 0)
			for _, e := range p.Edges {
				n := ix.pieces(e.Delta)
				prev := geom.Vec{}
				for k := 1; k <= n; k++ {
					if start.X>>BlockShift != bx || start.Y>>BlockShift != by {
						return fmt.Errorf("polygon %d at (%d,%d): %w", pi, start.X, start.Y, ErrInsideTrace)
					}
					cur := geom.Vec{X: e.Delta.X * k / n, Y: e.Delta.Y * k / n}
					dx, dy := cur.X-prev.X, cur.Y-prev.Y
					prev = cur
					for {
						b.storeLine(bx, by, start.X, start.Y, dx, dy)
						end := b.tb.WrapVec(geom.Vec{X: start.X + dx, Y: start.Y + dy})
						if d, _ := b.edgeDistance(bx, by, end.X, end.Y, -dx, -dy); d != edgeNone {
							b.closest(bx, by, d, 1)
						}
						d, dir := b.edgeDistance(bx, by, start.X, start.Y, dx, dy)
						if d == edgeNone {
							break
						}
						b.closest(bx, by, d, 0)
						if dir == 1 || dir == 3 {
							if dx > 0 {
								bx2++
							} else {
								bx2--
							}
						}
						maxx, minx = max(maxx, bx2), min(minx, bx2)
						bx = geom.Mod(bx2, ix.mapX)
						if dir == 2 || dir == 3 {
							if dy > 0 {
								by2++
							} else {
								by2--
							}
						}
						maxy, miny = max(maxy, by2), min(miny, by2)
						by = geom.Mod(by2, ix.mapY)
					}
					start = b.tb.WrapVec(geom.Vec{X: start.X + dx, Y: start.Y + dy})
				}
			}
		}
		if !seen {
			continue
		}
		cols := min(maxx-minx+1, 2*ix.mapX)
		rows := min(maxy-miny+1, ix.mapY)
		i := geom.Mod(miny, ix.mapY)
		for ; rows > 0; rows-- {
			inside := false
			j := geom.Mod(minx, ix.mapX)
			for left := cols - 1; left >= 0; left-- {
				t := &b.temp[j+ix.mapX*i]
				if t.inside < unknown {
					inside = t.distance > BlockClicks && t.inside == 1
				} else if inside {
					t.inside = 1
				}
				if left < ix.mapX {
					b.finish(j+ix.mapX*i, group)
				}
				j = nextWrap(j, ix.mapX)
			}
			i = nextWrap(i, ix.mapY)
		}
	}
	return nil
}

func (b *insideBuilder) closest(bx, by int, dist float64, inside int) {
	t := &b.temp[bx+b.ix.mapX*by]
	if dist <= t.distance {
		if dist == t.distance {
			// The same line runs both ways: joined polygons, both
			// sides are inside.
			inside = 1
		}
		t.distance = dist
		t.inside = inside
	}
}

// insertY toggles y in the sorted crossing list of a cell.
func (b *insideBuilder) insertY(block, y int) {
	t := &b.temp[block]
	k := 0
	for k < len(t.ys) && t.ys[k] < y {
		k++
	}
	if k < len(t.ys) && t.ys[k] == y {
		t.ys = append(t.ys[:k], t.ys[k+1:]...)
		return
	}
	t.ys = append(t.ys, 0)
	copy(t.ys[k+1:], t.ys[k:])
	t.ys[k] = y
}

func (b *insideBuilder) storeLine(bx, by, ox, oy, dx, dy int) {
	block := bx + b.ix.mapX*by
	ox = b.tb.CenterX(ox - bx*BlockClicks)
	oy = b.tb.CenterY(oy - by*BlockClicks)
	if oy >= 0 && oy < BlockClicks && ox >= BlockClicks {
		b.insertY(block, oy)
	}
	if oy+dy >= 0 && oy+dy < BlockClicks && ox+dx >= BlockClicks {
		b.insertY(block, oy+dy)
	}
	t := &b.temp[block]
	t.lines = append(t.lines, fragment{ox, oy, ox + dx, oy + dy})
}

// edgeDistance measures where a line leaves the cell, counter-clockwise
// along the cell border from the lower right corner. Only the ordering of
// the values matters. dir is 1 for a vertical side, 2 for a horizontal
// one and 3 for a corner. edgeNone means the line stays inside.
func (b *insideBuilder) edgeDistance(bx, by, ox, oy, dx, dy int) (float64, int) {
	lastWidth := (b.tb.Width-1)%BlockClicks + 1
	lastHeight := (b.tb.Height-1)%BlockClicks + 1
	ox = b.tb.CenterX(ox - bx*BlockClicks)
	oy = b.tb.CenterY(oy - by*BlockClicks)

	var xdist, ydist float64
	switch {
	case dx > 0:
		w := BlockClicks
		if bx == b.ix.mapX-1 {
			w = lastWidth
		}
		xdist = float64(w) - .5 - float64(ox)
	case dx < 0:
		xdist = float64(ox) + .5
	default:
		xdist = farAway
	}
	switch {
	case dy > 0:
		h := BlockClicks
		if by == b.ix.mapY-1 {
			h = lastHeight
		}
		ydist = float64(h) - .5 - float64(oy)
	case dy < 0:
		ydist = float64(oy) + .5
	default:
		ydist = farAway
	}
	adx, ady := float64(geom.Abs(dx)), float64(geom.Abs(dy))
	if xdist > adx && ydist > ady {
		return edgeNone, 0
	}
	var dir int
	switch {
	case ady*xdist == adx*ydist:
		dir = 3
	case ady*xdist < adx*ydist:
		dir = 1
	default:
		dir = 2
	}
	fx, fy := float64(dx), float64(dy)
	if dir == 1 {
		if dx > 0 {
			return float64(oy) + fy*xdist/fx, dir
		}
		return 5*BlockClicks - float64(oy) + fy*xdist/fx, dir
	}
	if dy > 0 {
		return 3*BlockClicks - float64(ox) - fx*ydist/fy, dir
	}
	return 6*BlockClicks + float64(ox) - fx*ydist/fy, dir
}

// finish moves a cell's traced data into its containment chain.
func (b *insideBuilder) finish(block, group int) {
	t := &b.temp[block]
	node := insideNode{Group: group}
	if len(t.ys) > 0 {
		node.Ys = make([]int32, len(t.ys))
		for k, y := range t.ys {
			node.Ys[k] = int32(y)
		}
	}
	if len(t.lines) > 0 {
		node.Lines = make([]int32, 0, 4*len(t.lines))
		for k := len(t.lines) - 1; k >= 0; k-- {
			f := t.lines[k]
			node.Lines = append(node.Lines, int32(f.x1), int32(f.y1), int32(f.x2), int32(f.y2))
		}
	}

	inside := t.inside
	for k := 0; k+3 < len(node.Lines); k += 4 {
		// Test from just below the lower right corner.
		x1 := int(node.Lines[k])*2 - BlockClicks*2 + 1
		y1 := int(node.Lines[k+1])*2 + 1
		x2 := int(node.Lines[k+2])*2 - BlockClicks*2 + 1
		y2 := int(node.Lines[k+3])*2 + 1
		if y1 < 0 {
			if y2 >= 0 {
				if x1 > 0 && x2 >= 0 {
					inside++
				} else if (x1 >= 0 || x2 >= 0) && y1*(x1-x2)-x1*(y1-y2) > 0 {
					inside++
				}
			}
		} else if y2 <= 0 {
			if x1 > 0 && x2 >= 0 {
				inside++
			} else if (x1 >= 0 || x2 >= 0) && y1*(x1-x2)-x1*(y1-y2) < 0 {
				inside++
			}
		}
	}
	node.Base = inside & 1
	b.ix.inside[block] = append(b.ix.inside[block], node)

	t.ys = nil
	t.lines = nil
	t.inside = unknown
	t.distance = farAway
}

// PointInside returns the group whose area contains (x, y), skipping
// groups whose hit mask intersects excludeMask. Points on an outline
// count as inside. It returns geom.NoGroup when nothing contains the
// point.
func (ix *Index) PointInside(x, y int, excludeMask uint32) int {
	if ix.bounds.Wrap {
		x, y = ix.bounds.WrapX(x), ix.bounds.WrapY(y)
	} else if !ix.bounds.Contains(geom.Vec{X: x, Y: y}) {
		return geom.NoGroup
	}
	chain := ix.inside[(x>>BlockShift)+ix.mapX*(y>>BlockShift)]
	cx, cy := x&blockMask, y&blockMask
	for k := range chain {
		node := &chain[k]
		if ix.masked(node.Group, excludeMask) {
			continue
		}
		inside := node.Base
		if len(node.Lines) == 0 {
			if inside != 0 {
				return node.Group
			}
			continue
		}
		for _, yy := range node.Ys {
			if cy <= int(yy) {
				break
			}
			inside++
		}
		for i := 0; i+3 < len(node.Lines); i += 4 {
			cx1 := int(node.Lines[i]) - cx
			cy1 := int(node.Lines[i+1]) - cy
			cx2 := int(node.Lines[i+2]) - cx
			cy2 := int(node.Lines[i+3]) - cy
			if crossing(cy1, cx1, cy2, cx2, &inside) {
				return node.Group
			}
		}
		if inside&1 != 0 {
			return node.Group
		}
	}
	return geom.NoGroup
}

// crossing counts in n whether the edge from (x1, y1) to (x2, y2) crosses
// the ray from the origin along positive y, and reports an edge that
// passes through the origin itself.
func crossing(x1, y1, x2, y2 int, n *int) bool {
	if x1 < 0 {
		if x2 >= 0 {
			if y1 > 0 && y2 >= 0 {
				*n++
			} else if y1 >= 0 || y2 >= 0 {
				s := x1*(y1-y2) - y1*(x1-x2)
				if s == 0 {
					return true
				}
				if s > 0 {
					*n++
				}
			}
		}
		return false
	}
	if x2 > 0 {
		return false
	}
	if x2 == 0 {
		return y2 == 0 || (x1 == 0 && ((y1 <= 0 && y2 >= 0) || (y1 >= 0 && y2 <= 0)))
	}
	if y1 > 0 && y2 >= 0 {
		*n++
	} else if y1 >= 0 || y2 >= 0 {
		s := x1*(y1-y2) - y1*(x1-x2)
		if s == 0 {
			return true
		}
		if s < 0 {
			*n++
		}
	}
	return false
}
