package geom

import "math"

const (
	ClickShift = 6
	Click      = 1 << ClickShift // clicks per pixel

	// Res is the number of discrete facing directions.
	Res = 128

	BlockSize   = 35 // pixels per legacy map block
	BlockClicks = BlockSize * Click
)

// Vec is a position or displacement in clicks.
type Vec struct {
	X, Y int
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Neg() Vec      { return Vec{-v.X, -v.Y} }
func (v Vec) IsZero() bool  { return v.X == 0 && v.Y == 0 }

// Vel is a velocity in pixels per frame.
type Vel struct {
	X, Y float64
}

func (v Vel) Len() float64 { return math.Hypot(v.X, v.Y) }

func (v Vel) Scale(f float64) Vel { return Vel{v.X * f, v.Y * f} }

// ToClick converts a pixel distance to clicks, truncating toward zero.
func ToClick(px float64) int { return int(px * Click) }

// ToPixel converts clicks to pixels.
func ToPixel(c int) float64 { return float64(c) / Click }

// Delta returns the click displacement produced by v over timeStep frames.
func (v Vel) Delta(timeStep float64) Vec {
	return Vec{ToClick(v.X * timeStep), ToClick(v.Y * timeStep)}
}

func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func Sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// Mod is x modulo m with a non-negative result.
func Mod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}

// The tables are variable initialisers, not init(), because package
// level shapes such as DefaultShip are rotated through them.
var cosTable, sinTable = trigTables()

func trigTables() (cos, sin [Res]float64) {
	for i := 0; i < Res; i++ {
		a := 2 * math.Pi * float64(i) / Res
		cos[i] = math.Cos(a)
		sin[i] = math.Sin(a)
	}
	return cos, sin
}

// Tcos is the cosine of facing direction dir.
func Tcos(dir int) float64 { return cosTable[Mod(dir, Res)] }

// Tsin is the sine of facing direction dir.
func Tsin(dir int) float64 { return sinTable[Mod(dir, Res)] }

// DirOf returns the facing direction closest to the angle of (x, y).
func DirOf(x, y float64) int {
	if x == 0 && y == 0 {
		return 0
	}
	a := math.Atan2(y, x)
	return Mod(int(math.Floor(a*Res/(2*math.Pi)+0.5)), Res)
}
