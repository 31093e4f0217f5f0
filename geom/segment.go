package geom

// Segment is a directed wall line. C and S are the reflection terms
// cos(2a) and sin(2a) for the segment angle a.
type Segment struct {
	Start Vec
	Delta Vec
	C, S  float64
	Group int
}

func NewSegment(start, delta Vec, group int) Segment {
	s := Segment{Start: start, Delta: delta, Group: group}
	s.C, s.S = ReflectTerms(delta)
	return s
}

// ReflectTerms returns the reflection coefficients for a line direction.
func ReflectTerms(d Vec) (c, s float64) {
	x, y := float64(d.X), float64(d.Y)
	l2 := x*x + y*y
	if l2 == 0 {
		return 1, 0
	}
	return (x*x - y*y) / l2, 2 * x * y / l2
}

// Side is positive on one side of the segment direction, negative on the
// other and zero on the line through it.
func (s *Segment) Side(x, y int) int { return s.Delta.Y*x - s.Delta.X*y }

// SideVel is Side for a velocity.
func (s *Segment) SideVel(v Vel) float64 {
	return float64(s.Delta.Y)*v.X - float64(s.Delta.X)*v.Y
}

// Reflect mirrors (x, y) across the segment direction.
func (s *Segment) Reflect(x, y float64) (float64, float64) {
	return x*s.C + y*s.S, x*s.S - y*s.C
}

// End is Start + Delta, not wrapped.
func (s *Segment) End() Vec { return s.Start.Add(s.Delta) }
