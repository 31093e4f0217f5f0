package blockmap

import (
	"math"

	"arena-server/arena"
	"arena-server/geom"
)

// treasureArcPoints is how many vertices the treasure's upper arc gets.
const treasureArcPoints = 12

// Polygons converts the block map into polygon geometry so the polygon
// engine can run it. Every solid block becomes its own polygon; sides
// shared with a neighbour's solid side are hidden. Structures get a group
// each with Item set to their index.
func (g *Grid) Polygons(rules arena.Rules) *geom.World {
	w := geom.NewWorld(g.Bounds())
	st := &g.state
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			ox, oy := x*B, y*B
			switch b := g.At(x, y).(type) {
			case Filled, Fuel:
				w.AddPolygon(g.squarePoly(0, x, y))
			case Wedge:
				w.AddPolygon(g.wedgePoly(b.Solid, x, y))
			case Target:
				t := st.Targets[b.ID]
				grp := geom.Group{Kind: geom.KindTarget, Team: t.Team, Item: b.ID}
				if !rules.TargetTeamCollision {
					grp.HitMask = geom.TeamBit(t.Team)
				}
				w.AddPolygon(geom.Rect(w.AddGroup(grp), ox, oy, B, B))
			case Cannon:
				cn := st.Cannons[b.ID]
				grp := geom.Group{Kind: geom.KindCannon, Team: cn.Team, Item: b.ID}
				if rules.TeamPlay && rules.TeamImmunity && cn.Team != geom.TeamNone {
					grp.HitMask = geom.TeamBit(cn.Team)
				}
				w.AddPolygon(cannonPoly(w.AddGroup(grp), cn.Dir, ox, oy))
			case Treasure:
				tr := st.Treasures[b.ID]
				grp := geom.Group{Kind: geom.KindTreasure, Team: tr.Team, Item: b.ID}
				w.AddPolygon(treasurePoly(w.AddGroup(grp), ox, oy))
			case Wormhole:
				if b.Type == arena.WormOut {
					continue
				}
				grp := geom.Group{Kind: geom.KindWormhole, Team: geom.TeamNone, Item: b.ID}
				w.AddPolygon(geom.Rect(w.AddGroup(grp), ox, oy, B, B))
			}
		}
	}
	return w
}

// solidToward reports whether the block next to (x, y) in direction
// (dx, dy) has a full side facing it. Off-map neighbours count as open
// unless the map wraps.
func (g *Grid) solidToward(x, y, dx, dy int) bool {
	nx, ny := x+dx, y+dy
	if !g.Wrap && (nx < 0 || nx >= g.W || ny < 0 || ny >= g.H) {
		return false
	}
	sides := fullSides(g.At(nx, ny).Kind())
	switch {
	case dx < 0:
		return sides&sideRight != 0
	case dx > 0:
		return sides&sideLeft != 0
	case dy < 0:
		return sides&sideTop != 0
	}
	return sides&sideBottom != 0
}

// squarePoly is a filled block, counter-clockwise from its lower left
// corner.
func (g *Grid) squarePoly(group, x, y int) geom.Polygon {
	p := geom.Rect(group, x*B, y*B, B, B)
	p.Edges[0].Hidden = g.solidToward(x, y, 0, -1)
	p.Edges[1].Hidden = g.solidToward(x, y, 1, 0)
	p.Edges[2].Hidden = g.solidToward(x, y, 0, 1)
	p.Edges[3].Hidden = g.solidToward(x, y, -1, 0)
	return p
}

// wedgePoly is the solid triangle of a half block. The diagonal is never
// hidden.
func (g *Grid) wedgePoly(k Kind, x, y int) geom.Polygon {
	ox, oy := x*B, y*B
	ll := geom.Vec{X: ox, Y: oy}
	lr := geom.Vec{X: ox + B, Y: oy}
	ur := geom.Vec{X: ox + B, Y: oy + B}
	ul := geom.Vec{X: ox, Y: oy + B}
	var p geom.Polygon
	switch k {
	case KindRecLD:
		p = geom.PolygonFrom(0, ll, lr, ul)
		p.Edges[0].Hidden = g.solidToward(x, y, 0, -1)
		p.Edges[2].Hidden = g.solidToward(x, y, -1, 0)
	case KindRecRD:
		p = geom.PolygonFrom(0, ll, lr, ur)
		p.Edges[0].Hidden = g.solidToward(x, y, 0, -1)
		p.Edges[1].Hidden = g.solidToward(x, y, 1, 0)
	case KindRecRU:
		p = geom.PolygonFrom(0, lr, ur, ul)
		p.Edges[0].Hidden = g.solidToward(x, y, 1, 0)
		p.Edges[1].Hidden = g.solidToward(x, y, 0, 1)
	case KindRecLU:
		p = geom.PolygonFrom(0, ll, ur, ul)
		p.Edges[1].Hidden = g.solidToward(x, y, 0, 1)
		p.Edges[2].Hidden = g.solidToward(x, y, -1, 0)
	}
	return p
}

// cannonPoly is the cannon's triangle: its base on the wall it is
// mounted on and its tip a third of a block out.
func cannonPoly(group, dir, ox, oy int) geom.Polygon {
	v := func(x, y int) geom.Vec { return geom.Vec{X: ox + x, Y: oy + y} }
	switch dir {
	case arena.DirDown:
		return geom.PolygonFrom(group, v(0, B), v(B/2, B-B/3), v(B, B))
	case arena.DirRight:
		return geom.PolygonFrom(group, v(0, 0), v(B/3, B/2), v(0, B))
	case arena.DirLeft:
		return geom.PolygonFrom(group, v(B, 0), v(B, B), v(B-B/3, B/2))
	}
	return geom.PolygonFrom(group, v(0, 0), v(B, 0), v(B/2, B/3))
}

// treasurePoly is the treasure nest: the lower half of the block topped
// by a half circle spanning the block width.
func treasurePoly(group, ox, oy int) geom.Polygon {
	pts := make([]geom.Vec, 0, treasureArcPoints+2)
	pts = append(pts, geom.Vec{X: ox, Y: oy}, geom.Vec{X: ox + B, Y: oy})
	r := float64(B) / 2
	for i := 0; i < treasureArcPoints; i++ {
		a := math.Pi * float64(i) / float64(treasureArcPoints-1)
		pts = append(pts, geom.Vec{
			X: ox + int(math.Round(r+r*math.Cos(a))),
			Y: oy + int(math.Round(r+r*math.Sin(a))),
		})
	}
	return geom.PolygonFrom(group, pts...)
}
