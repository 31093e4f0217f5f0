package geom

import (
	"errors"
	"testing"
)

func TestDefaultShipOutline(t *testing.T) {
	cases := []struct {
		point, dir int
		want       Vec
	}{
		{0, 0, Vec{15 * Click, 0}},
		{0, Res / 4, Vec{0, 15 * Click}},
		{0, Res / 2, Vec{-15 * Click, 0}},
		{1, 0, Vec{-9 * Click, 8 * Click}},
		{2, 0, Vec{-9 * Click, -8 * Click}},
		{1, Res / 2, Vec{9 * Click, -8 * Click}},
	}
	for _, c := range cases {
		if got := DefaultShip.Point(c.point, c.dir); got != c.want {
			t.Errorf("point %d at dir %d: got %+v, want %+v", c.point, c.dir, got, c.want)
		}
	}
	for dir := 0; dir < Res; dir++ {
		if DefaultShip.Point(0, dir).IsZero() {
			t.Fatalf("nose collapsed onto the centre at dir %d", dir)
		}
	}
}

func TestNewShapeRejectsLargeOutline(t *testing.T) {
	if _, err := NewShape("big", []Point{{16, 0}, {-9, 8}}); !errors.Is(err, ErrShapeTooLarge) {
		t.Errorf("expected ErrShapeTooLarge, got %v", err)
	}
	if _, err := NewShape("empty", nil); err == nil {
		t.Error("an empty outline should be rejected")
	}
}

func TestSingleOrientationShape(t *testing.T) {
	ball := BallWire()
	if ball.NumPoints() != 24 {
		t.Fatalf("expected 24 ball points, got %d", ball.NumPoints())
	}
	if ball.Point(0, 0) != ball.Point(0, 77) {
		t.Error("ball outline should not turn with facing")
	}
	if p := ball.Point(0, 0); p != (Vec{BallRadius * Click, 0}) {
		t.Errorf("first ball point %+v", p)
	}
}
