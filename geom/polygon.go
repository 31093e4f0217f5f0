package geom

// Edge is one polygon side. Hidden edges close the outline without
// producing a wall.
type Edge struct {
	Delta  Vec
	Hidden bool
}

type Polygon struct {
	Group int
	Start Vec
	Edges []Edge
	Decor bool
}

// PolygonFrom builds a closed polygon through pts.
func PolygonFrom(group int, pts ...Vec) Polygon {
	p := Polygon{Group: group}
	if len(pts) == 0 {
		return p
	}
	p.Start = pts[0]
	p.Edges = make([]Edge, 0, len(pts))
	for i := range pts {
		next := pts[(i+1)%len(pts)]
		p.Edges = append(p.Edges, Edge{Delta: next.Sub(pts[i])})
	}
	return p
}

// Rect is an axis aligned rectangle polygon with its corner at (x, y).
func Rect(group, x, y, w, h int) Polygon {
	return PolygonFrom(group, Vec{x, y}, Vec{x + w, y}, Vec{x + w, y + h}, Vec{x, y + h})
}

// Closed reports whether the edges sum to zero.
func (p *Polygon) Closed() bool {
	var d Vec
	for _, e := range p.Edges {
		d = d.Add(e.Delta)
	}
	return d.IsZero()
}

// World is parsed map geometry ready for indexing.
type World struct {
	Bounds
	Groups   []Group
	Polygons []Polygon
}

// NewWorld returns a world with group 0 already defined as plain wall.
func NewWorld(b Bounds) *World {
	return &World{Bounds: b, Groups: []Group{WallGroup}}
}

func (w *World) AddGroup(g Group) int {
	w.Groups = append(w.Groups, g)
	return len(w.Groups) - 1
}

func (w *World) AddPolygon(p Polygon) {
	w.Polygons = append(w.Polygons, p)
}
