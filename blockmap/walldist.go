package blockmap

import "arena-server/arena"

const wallDistMask = 1<<KindFilled | 1<<KindRecLU | 1<<KindRecRU | 1<<KindRecLD | 1<<KindRecRD |
	1<<KindFuel | 1<<KindCannon | 1<<KindTreasure | 1<<KindTarget | 1<<KindCheck | 1<<KindWormhole

// initWalldist fills the table of distances to the nearest solid block in
// half block units, by breadth first search from every solid block. In a
// world without wrap the border counts as two half blocks away.
func (g *Grid) initWalldist() {
	n := g.W * g.H
	maxdist := min(2*min(g.W, g.H), 255)
	g.walldist = make([]uint8, n)
	q := make([]int, 0, n)

	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			k := x + y*g.W
			b := g.blocks[k]
			if w, ok := b.(Wormhole); ok && w.Type == arena.WormOut {
				g.walldist[k] = uint8(maxdist)
				continue
			}
			if wallDistMask&b.Kind().bit() != 0 {
				g.walldist[k] = 0
				q = append(q, k)
			} else {
				g.walldist[k] = uint8(maxdist)
			}
		}
	}
	if !g.Wrap {
		for x := 0; x < g.W; x++ {
			step := 1
			if x != 0 && x != g.W-1 && g.H > 1 {
				step = g.H - 1
			}
			for y := 0; y < g.H; y += step {
				k := x + y*g.W
				if g.walldist[k] > 1 {
					g.walldist[k] = 2
					q = append(q, k)
				}
			}
		}
	}

	for head := 0; head < len(q); head++ {
		x, y := q[head]%g.W, q[head]/g.W
		dist := int(g.walldist[q[head]])
		mindist := dist + 2
		if mindist >= 255 {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			if !g.Wrap && (x+dx < 0 || x+dx >= g.W) {
				continue
			}
			wx := (x + dx + g.W) % g.W
			for dy := -1; dy <= 1; dy++ {
				if !g.Wrap && (y+dy < 0 || y+dy >= g.H) {
					continue
				}
				wy := (y + dy + g.H) % g.H
				k := wx + wy*g.W
				if int(g.walldist[k]) <= mindist {
					continue
				}
				newdist := mindist
				if dist == 0 && openDiagonal(g.blocks[q[head]].Kind(), dx, dy) {
					newdist++
				}
				if newdist < int(g.walldist[k]) {
					g.walldist[k] = uint8(newdist)
					q = append(q, k)
				}
			}
		}
	}
}

// openDiagonal reports whether (dx, dy) leaves a wedge through the corner
// of its open half.
func openDiagonal(k Kind, dx, dy int) bool {
	switch k {
	case KindRecLD:
		return dx == 1 && dy == 1
	case KindRecRD:
		return dx == -1 && dy == 1
	case KindRecLU:
		return dx == 1 && dy == -1
	case KindRecRU:
		return dx == -1 && dy == -1
	}
	return false
}

// Walldist returns the distance of block (x, y) to the nearest solid
// block in half block units.
func (g *Grid) Walldist(x, y int) int {
	return int(g.walldist[x+y*g.W])
}

// WalldistAt is Walldist for the block holding a click position.
func (g *Grid) WalldistAt(x, y int) int {
	bx, by := x/B, y/B
	bx = min(max(bx, 0), g.W-1)
	by = min(max(by, 0), g.H-1)
	return g.Walldist(bx, by)
}
