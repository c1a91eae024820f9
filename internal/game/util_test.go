package game

import (
	"math"
	"testing"
)

func TestDirectionRoundTrip(t *testing.T) {
	for raw := 0; raw < directionUnits; raw++ {
		back := DirToShort(ShortToDir(int16(raw)))
		if d := int(back) - raw; d < -1 || d > 1 {
			t.Fatalf("raw %d came back as %d", raw, back)
		}
	}
	if got := DirToShort(fullCircle); got != directionUnits {
		t.Errorf("full circle = %d units, want %d", got, directionUnits)
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi / 2, math.Pi / 2},
	}
	for _, c := range cases {
		if got := NormalizeAngle(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestAngleIsMathematical(t *testing.T) {
	from := Point{100, 100}
	if a := Angle(from, Point{200, 100}); a != 0 {
		t.Errorf("right should be 0, got %v", a)
	}
	if a := Angle(from, Point{100, 0}); math.Abs(a-math.Pi/2) > 1e-9 {
		t.Errorf("up (smaller y) should be pi/2, got %v", a)
	}
}

func TestClampIntent(t *testing.T) {
	for _, c := range []struct{ in, want int8 }{{-5, -1}, {-1, -1}, {0, 0}, {1, 1}, {100, 1}} {
		if got := clampIntent(c.in); got != c.want {
			t.Errorf("clampIntent(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRandIntRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if v := randInt(5, 7); v < 5 || v > 11 {
			t.Fatalf("randInt(5,7) = %d", v)
		}
	}
}
