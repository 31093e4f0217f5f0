package geom

import (
	"errors"
	"fmt"
	"math"
)

// MaxShapeOffset bounds how far any ship vertex may sit from the centre.
const MaxShapeOffset = 15 * Click

// BallRadius is in pixels.
const BallRadius = 10

var ErrShapeTooLarge = errors.New("shape point too far from centre")

// Shape is a convex outline with its vertices precomputed for every
// facing direction. Rotation invariant shapes keep a single orientation.
type Shape struct {
	Name string
	pts  [][]Vec
}

// Point is a pixel-space vertex used to define shapes.
type Point struct {
	X, Y float64
}

// NewShape rotates the pixel outline to all Res directions.
func NewShape(name string, outline []Point) (*Shape, error) {
	if len(outline) == 0 {
		return nil, fmt.Errorf("shape %q: no points", name)
	}
	s := &Shape{Name: name, pts: make([][]Vec, len(outline))}
	for i, p := range outline {
		if math.Hypot(p.X, p.Y)*Click > MaxShapeOffset {
			return nil, fmt.Errorf("shape %q point %d: %w", name, i, ErrShapeTooLarge)
		}
		s.pts[i] = make([]Vec, Res)
		for dir := 0; dir < Res; dir++ {
			x := p.X*Tcos(dir) - p.Y*Tsin(dir)
			y := p.X*Tsin(dir) + p.Y*Tcos(dir)
			s.pts[i][dir] = Vec{int(math.Round(x * Click)), int(math.Round(y * Click))}
		}
	}
	return s, nil
}

func (s *Shape) NumPoints() int { return len(s.pts) }

// Point returns vertex p at facing dir, relative to the shape centre.
func (s *Shape) Point(p, dir int) Vec {
	d := s.pts[p]
	if len(d) == 1 {
		return d[0]
	}
	return d[Mod(dir, Res)]
}

// BallWire is the 24 point circle balls are swept as.
func BallWire() *Shape {
	s := &Shape{Name: "ball", pts: make([][]Vec, 24)}
	for i := range s.pts {
		a := float64(i) * math.Pi / 12
		s.pts[i] = []Vec{{int(math.Cos(a) * BallRadius * Click), int(math.Sin(a) * BallRadius * Click)}}
	}
	return s
}

// PointShape is a single vertex at the centre.
func PointShape() *Shape {
	return &Shape{Name: "point", pts: [][]Vec{{{}}}}
}

// DefaultShip is the stock triangular hull.
var DefaultShip = mustShape("default", []Point{{15, 0}, {-9, 8}, {-9, -8}})

func mustShape(name string, outline []Point) *Shape {
	s, err := NewShape(name, outline)
	if err != nil {
		panic(err)
	}
	return s
}
