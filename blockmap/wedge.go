package blockmap

import (
	"arena-server/arena"
	"arena-server/geom"
)

// wedge finds how far a point may travel through a half filled block.
// It returns the bounce to make when the point is on the solid side's
// border, or the shortened travel up to the diagonal. A point starting
// inside the solid half crashes.
func wedge(kind Kind, off, delta geom.Vec, v geom.Vel, todo, sign geom.Vec) (Bounce, geom.Vec, bool) {
	var wb Bounce
	xMajor := sign.X*todo.X >= sign.Y*todo.Y
	sum := off.X + off.Y

	switch kind {
	case KindRecLD:
		if off.X == 0 {
			if v.X > 0 {
				wb |= BounceHorLo
			}
			if off.Y == B && v.X+v.Y < 0 {
				wb |= BounceLeftDown
			}
		}
		if off.Y == 0 {
			if v.Y > 0 {
				wb |= BounceVerLo
			}
			if off.X == B && v.X+v.Y < 0 {
				wb |= BounceLeftDown
			}
		}
		if wb != 0 {
			return wb, delta, false
		}
		if sum < B {
			return 0, delta, true
		}
		if sum+delta.X+delta.Y >= B {
			return 0, delta, false
		}
		past := func(d geom.Vec) bool { return sum+d.X+d.Y < B }
		return diagonal(xMajor, todo, float64(B-sum), 1, past, 1, BounceLeftDown)

	case KindRecLU:
		if off.X == 0 {
			if v.X > 0 {
				wb |= BounceHorLo
			}
			if off.Y == 0 && v.X < v.Y {
				wb |= BounceLeftUp
			}
		}
		if off.Y == B {
			if v.Y < 0 {
				wb |= BounceVerHi
			}
			if off.X == B && v.X < v.Y {
				wb |= BounceLeftUp
			}
		}
		if wb != 0 {
			return wb, delta, false
		}
		if off.X < off.Y {
			return 0, delta, true
		}
		if off.X+delta.X >= off.Y+delta.Y {
			return 0, delta, false
		}
		past := func(d geom.Vec) bool { return off.X+d.X < off.Y+d.Y }
		if xMajor {
			return diagonal(true, todo, float64(off.Y-off.X), -1, past, 1, BounceLeftUp)
		}
		return diagonal(false, todo, float64(off.X-off.Y), -1, past, -1, BounceLeftUp)

	case KindRecRD:
		if off.X == B {
			if v.X < 0 {
				wb |= BounceHorHi
			}
			if off.Y == B && v.X > v.Y {
				wb |= BounceRightDown
			}
		}
		if off.Y == 0 {
			if v.Y > 0 {
				wb |= BounceVerLo
			}
			if off.X == 0 && v.X > v.Y {
				wb |= BounceRightDown
			}
		}
		if wb != 0 {
			return wb, delta, false
		}
		if off.X > off.Y {
			return 0, delta, true
		}
		if off.X+delta.X <= off.Y+delta.Y {
			return 0, delta, false
		}
		past := func(d geom.Vec) bool { return off.X+d.X > off.Y+d.Y }
		if xMajor {
			return diagonal(true, todo, float64(off.Y-off.X), -1, past, -1, BounceRightDown)
		}
		return diagonal(false, todo, float64(off.X-off.Y), -1, past, 1, BounceRightDown)

	case KindRecRU:
		if off.X == B {
			if v.X < 0 {
				wb |= BounceHorHi
			}
			if off.Y == 0 && v.X+v.Y > 0 {
				wb |= BounceRightUp
			}
		}
		if off.Y == B {
			if v.Y < 0 {
				wb |= BounceVerHi
			}
			if off.X == 0 && v.X+v.Y > 0 {
				wb |= BounceRightUp
			}
		}
		if wb != 0 {
			return wb, delta, false
		}
		if sum > B {
			return 0, delta, true
		}
		if sum+delta.X+delta.Y <= B {
			return 0, delta, false
		}
		past := func(d geom.Vec) bool { return sum+d.X+d.Y > B }
		return diagonal(xMajor, todo, float64(B-sum), 1, past, -1, BounceRightUp)
	}
	return 0, delta, false
}

// diagonal solves for the travel along the major axis that reaches a
// wedge diagonal: gap / (1 + k*w) where w is the minor to major ratio.
// If the result still lands past the diagonal the major travel is
// nudged by step. No travel at all means the point bounces.
func diagonal(xMajor bool, todo geom.Vec, gap, k float64, past func(geom.Vec) bool, step int, b Bounce) (Bounce, geom.Vec, bool) {
	major, minor := todo.X, todo.Y
	if !xMajor {
		major, minor = minor, major
	}
	w := float64(minor) / float64(major)
	m := int(gap / (1 + k*w))
	d := axisVec(xMajor, m, int(float64(m)*w))
	if past(d) {
		m += step
		d = axisVec(xMajor, m, int(float64(m)*w))
	}
	if m == 0 {
		return b, d, false
	}
	return 0, d, false
}

func axisVec(xMajor bool, major, minor int) geom.Vec {
	if xMajor {
		return geom.Vec{X: major, Y: minor}
	}
	return geom.Vec{X: minor, Y: major}
}

// cannonTravel finds how far a point may travel through a cannon block
// before touching the cannon's triangle. Each facing is mapped onto the
// upward one, solved there and mapped back.
func cannonTravel(facing int, off, delta, sign, todo geom.Vec) (geom.Vec, bool) {
	var mx, my, mirx, miry geom.Vec
	switch facing {
	case arena.DirUp:
		mx, my = geom.Vec{X: 1}, geom.Vec{Y: 1}
	case arena.DirDown:
		mx, my = geom.Vec{X: 1}, geom.Vec{Y: -1}
		miry.Y = B
	case arena.DirRight:
		mx, my = geom.Vec{Y: 1}, geom.Vec{X: -1}
		miry.X = B
	case arena.DirLeft:
		mx, my = geom.Vec{Y: -1}, geom.Vec{X: 1}
		mirx.Y = B
	}
	xf := func(a geom.Vec) geom.Vec {
		return geom.Vec{X: mx.X*a.X + my.X*a.Y, Y: mx.Y*a.X + my.Y*a.Y}
	}
	start := xf(off).Add(mirx).Add(miry)
	diff := xf(delta)
	dir := xf(sign)
	td := xf(todo)
	end := start.Add(diff)

	const half = B / 2
	if start.X <= half {
		if 3*start.Y <= 2*start.X {
			return delta, true
		}
		if end.X <= half && 3*end.Y > 2*end.X {
			return delta, false
		}
	} else {
		if 3*start.Y <= 2*(B-start.X) {
			return delta, true
		}
		if end.X > half && 3*end.Y > 2*(B-end.X) {
			return delta, false
		}
	}

	done := diff
	// try replaces done with a shorter travel that stays in the lower
	// third of the block. A zero travel is a crash.
	try := func(a geom.Vec, along int, dirSign int, doneAlong int) bool {
		if dirSign*along < dirSign*doneAlong && dirSign*along >= 0 && start.Y+a.Y <= B/3 {
			done = a
			return done.IsZero()
		}
		return false
	}
	if dir.X*diff.X >= dir.Y*diff.Y {
		w := float64(td.Y) / float64(td.X)
		if 3*td.Y != 2*td.X {
			d := float64(3*start.Y-2*start.X) / (2 - 3*w)
			a := geom.Vec{X: roundInt(d)}
			a.Y = int(float64(a.X) * w)
			if try(a, a.X, dir.X, done.X) {
				return delta, true
			}
		}
		if -3*td.Y != 2*td.X {
			d := float64(2*B-2*start.X-3*start.Y) / (2 + 3*w)
			b := geom.Vec{X: roundInt(d)}
			b.Y = int(float64(b.X) * w)
			if try(b, b.X, dir.X, done.X) {
				return delta, true
			}
		}
	} else {
		w := float64(td.X) / float64(td.Y)
		d := float64(2*start.X-3*start.Y) / (3 - 2*w)
		a := geom.Vec{Y: roundInt(d)}
		a.X = int(float64(a.Y) * w)
		if try(a, a.Y, dir.Y, done.Y) {
			return delta, true
		}
		d = float64(2*B-2*start.X-3*start.Y) / (3 + 2*w)
		b := geom.Vec{Y: roundInt(d)}
		b.X = int(float64(b.Y) * w)
		if try(b, b.Y, dir.Y, done.Y) {
			return delta, true
		}
	}
	return geom.Vec{X: mx.X*done.X + mx.Y*done.Y, Y: my.X*done.X + my.Y*done.Y}, false
}
