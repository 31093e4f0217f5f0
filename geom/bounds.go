package geom

// Bounds is the world rectangle in clicks. With Wrap set, positions are
// taken modulo the size and displacements are measured the short way round.
type Bounds struct {
	Width  int
	Height int
	Wrap   bool
}

func (b Bounds) WrapX(x int) int {
	if !b.Wrap {
		return x
	}
	return Mod(x, b.Width)
}

func (b Bounds) WrapY(y int) int {
	if !b.Wrap {
		return y
	}
	return Mod(y, b.Height)
}

func (b Bounds) WrapVec(v Vec) Vec { return Vec{b.WrapX(v.X), b.WrapY(v.Y)} }

// CenterX maps a horizontal displacement into [-Width/2, Width/2).
func (b Bounds) CenterX(dx int) int {
	if !b.Wrap {
		return dx
	}
	half := b.Width >> 1
	if dx < -half {
		return dx + b.Width
	}
	if dx >= half {
		return dx - b.Width
	}
	return dx
}

// CenterY maps a vertical displacement into [-Height/2, Height/2).
func (b Bounds) CenterY(dy int) int {
	if !b.Wrap {
		return dy
	}
	half := b.Height >> 1
	if dy < -half {
		return dy + b.Height
	}
	if dy >= half {
		return dy - b.Height
	}
	return dy
}

// Tile wraps v into the world rectangle regardless of the wrap mode.
// Polygon vertices use it so a shape may straddle the seam.
func (b Bounds) Tile(v Vec) Vec { return Vec{Mod(v.X, b.Width), Mod(v.Y, b.Height)} }

func (b Bounds) Contains(v Vec) bool {
	return v.X >= 0 && v.X < b.Width && v.Y >= 0 && v.Y < b.Height
}
