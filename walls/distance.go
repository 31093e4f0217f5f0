package walls

import (
	"fmt"
	"math"

	"arena-server/geom"
)

const emptySlot = -1

// buildDistances fills every cell with its nearest lines. A cell keeps the
// nearSlots-1 closest lines within cutoff, plus every line closer than
// closeDist to the cell edge however many there are. Slot 0 of each cell
// holds the distance of the nearest line that was not kept.
func (ix *Index) buildDistances() error {
	n := ix.mapX * ix.mapY
	dis := make([]int, n*lineSlots)
	lineno := make([]int32, n*lineSlots)
	for i := range dis {
		dis[i] = MaxMove + BlockClicks/2
		lineno[i] = emptySlot
	}

	for i := range ix.segs {
		seg := &ix.segs[i]
		bx, by := seg.Start.X, seg.Start.Y
		width, height := seg.Delta.X, seg.Delta.Y
		if width < 0 {
			bx = ix.bounds.WrapX(bx + width)
			width = -width
		}
		if height < 0 {
			by = ix.bounds.WrapY(by + height)
			height = -height
		}
		width = min((width+2*MaxMove)/BlockClicks+5, ix.mapX)
		height = min((height+2*MaxMove)/BlockClicks+5, ix.mapY)
		bx = geom.Mod((bx-MaxMove)/BlockClicks-2, ix.mapX)
		by0 := geom.Mod((by-MaxMove)/BlockClicks-2, ix.mapY)

		for w := 0; w < width; w++ {
			by = by0
			for h := 0; h < height; h++ {
				if err := ix.offerLine(dis, lineno, i, bx, by); err != nil {
					return err
				}
				by = nextWrap(by, ix.mapY)
			}
			bx = nextWrap(bx, ix.mapX)
		}
	}

	ix.cells = make([]cell, n)
	for by := 0; by < ix.mapY; by++ {
		for bx := 0; bx < ix.mapX; bx++ {
			k := bx + ix.mapX*by
			base := k * lineSlots
			c := &ix.cells[k]
			c.Distance = dis[base] - BlockClicks/2
			nearest := dis[base]
			for j := 1; j < lineSlots && lineno[base+j] != emptySlot; j++ {
				c.Lines = append(c.Lines, lineno[base+j])
				nearest = min(nearest, dis[base+j])
			}
			c.Clear = max(nearest-BlockClicks/2-1, 0)
		}
	}
	return nil
}

func nextWrap(i, n int) int {
	if i == n-1 {
		return 0
	}
	return i + 1
}

func (ix *Index) offerLine(dis []int, lineno []int32, i, bx, by int) error {
	seg := &ix.segs[i]
	cx := bx*BlockClicks + BlockClicks/2
	cy := by*BlockClicks + BlockClicks/2
	base := (by*ix.mapX + bx) * lineSlots

	lsx := ix.bounds.CenterX(seg.Start.X - cx)
	if geom.Abs(lsx) > 32767+MaxMove+BlockClicks/2 {
		return nil
	}
	lsy := ix.bounds.CenterY(seg.Start.Y - cy)
	if geom.Abs(lsy) > 32767+MaxMove+BlockClicks/2 {
		return nil
	}
	dist := lineDistance(lsx, lsy, seg.Delta.X, seg.Delta.Y)

	if dist < cutoff+BlockClicks/2 {
		bound := nearSlots
		if dist < BlockClicks/2+closeDist {
			bound = lineSlots
		}
		for j := 1; j < bound; j++ {
			if dis[base+j] <= dist {
				continue
			}
			// Replace the worst kept line at or after j.
			n, worst := j, dis[base+j]
			for k := j + 1; k < bound; k++ {
				if dis[base+k] > worst {
					n, worst = k, dis[base+k]
				}
			}
			dis[base] = min(dis[base], dis[base+n])
			dis[base+n] = dist
			lineno[base+n] = int32(i)
			return nil
		}
	}
	dis[base] = min(dis[base], dist)
	if dist < BlockClicks/2+closeDist {
		return fmt.Errorf("cell (%d,%d) line %d: %w", bx, by, i, ErrCellCapacity)
	}
	return nil
}

// lineDistance estimates how far a point at the origin can travel in any
// direction before touching the line, measured in the max norm. The
// result is only used to rank and bound lines, never to move things.
func lineDistance(lsx, lsy, ldx, ldy int) int {
	if max(geom.Abs(lsx), geom.Abs(lsy)) > max(geom.Abs(lsx+ldx), geom.Abs(lsy+ldy)) {
		lsx += ldx
		ldx = -ldx
		lsy += ldy
		ldy = -ldy
	}
	if geom.Abs(lsx) < geom.Abs(lsy) {
		lsx, lsy = lsy, lsx
		ldx, ldy = ldy, ldx
	}
	if lsx < 0 {
		lsx = -lsx
		ldx = -ldx
	}
	var dist int
	if ldx >= 0 {
		dist = lsx - 1
	} else {
		if lsy+ldy < 0 {
			lsy = -lsy
			ldy = -ldy
		}
		if ldy == ldx {
			// Parallel to the diagonal: the rotated form divides by zero.
			return chebyshev(lsx, lsy, ldx, ldy) - 4
		}
		// Rotate 45 degrees without normalising.
		lsx, lsy = lsx+lsy, lsy-lsx
		ldx, ldy = ldx+ldy, ldy-ldx
		dist = lsx - ldx*lsy/ldy
		if lsx+ldx < 0 && ldx != 0 {
			dist = min(geom.Abs(dist), geom.Abs(lsy-ldy*lsx/ldx))
		}
		dist = dist/2 - 3
	}
	return dist - 1
}

// chebyshev is the exact max-norm distance from the origin to a segment.
// The minimum of the convex piecewise linear norm lies at an end point or
// where a coordinate or the diagonal crosses zero.
func chebyshev(sx, sy, dx, dy int) int {
	x0, y0, fx, fy := float64(sx), float64(sy), float64(dx), float64(dy)
	norm := func(t float64) float64 {
		return math.Max(math.Abs(x0+t*fx), math.Abs(y0+t*fy))
	}
	best := math.Min(norm(0), norm(1))
	try := func(num, den float64) {
		if den == 0 {
			return
		}
		if t := num / den; t > 0 && t < 1 {
			best = math.Min(best, norm(t))
		}
	}
	try(-x0, fx)
	try(-y0, fy)
	try(y0-x0, fx-fy)
	try(-x0-y0, fx+fy)
	return int(best)
}

// buildCorners records, for every cell, the line start points a ship
// centred in that cell could touch before any unlisted line.
func (ix *Index) buildCorners() error {
	span := 2*MaxMove/BlockClicks + 7
	width := min(span, ix.mapX)
	height := min(span, ix.mapY)
	lists := make([][]int32, ix.mapX*ix.mapY)

	for i := range ix.segs {
		start := ix.segs[i].Start
		bx := geom.Mod((start.X-MaxMove)/BlockClicks-3, ix.mapX)
		by0 := geom.Mod((start.Y-MaxMove)/BlockClicks-3, ix.mapY)
		for w := 0; w < width; w++ {
			by := by0
			for h := 0; h < height; h++ {
				k := bx + ix.mapX*by
				reach := ix.cells[k].Distance + geom.MaxShapeOffset + BlockClicks/2
				cx := bx*BlockClicks + BlockClicks/2
				cy := by*BlockClicks + BlockClicks/2
				if geom.Abs(ix.bounds.CenterX(start.X-cx)) <= reach &&
					geom.Abs(ix.bounds.CenterY(start.Y-cy)) <= reach {
					if len(lists[k]) >= cornerSlots-1 {
						return fmt.Errorf("cell (%d,%d) corners: %w", bx, by, ErrCellCapacity)
					}
					lists[k] = append(lists[k], int32(i))
				}
				by = nextWrap(by, ix.mapY)
			}
			bx = nextWrap(bx, ix.mapX)
		}
	}

	for k, l := range lists {
		// Newest first.
		c := make([]int32, len(l))
		for j := range l {
			c[j] = l[len(l)-1-j]
		}
		ix.cells[k].Corners = c
	}
	return nil
}
