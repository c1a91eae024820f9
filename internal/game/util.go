package game

import (
	"math"
	"math/rand/v2"
)

const fullCircle = 2 * math.Pi

// directionUnits is the number of wire direction steps in a full turn.
const directionUnits = 32000

// NormalizeAngle wraps a to [0, 2*PI).
func NormalizeAngle(a float64) float64 {
	a = math.Remainder(a, fullCircle)
	if a < 0 {
		a += fullCircle
	}
	return a
}

// DirToShort converts radians to the wire direction unit.
func DirToShort(dir float64) int16 {
	return int16(dir / fullCircle * directionUnits)
}

// ShortToDir converts the wire direction unit to radians.
func ShortToDir(raw int16) float64 {
	return float64(raw) * fullCircle / directionUnits
}

// Angle returns the visual angle from one point to another: 0 is right,
// PI/2 is up. The result is in [0, 2*PI).
func Angle(from, to Point) float64 {
	dx := float64(to.X - from.X)
	dy := float64(from.Y - to.Y)
	if dx == 0 && dy == 0 {
		return 0
	}
	return NormalizeAngle(math.Atan2(dy, dx))
}

// DeltaAngle returns the signed shortest turn from a to b, in [-PI, PI].
func DeltaAngle(a, b float64) float64 {
	return math.Remainder(b-a, fullCircle)
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampIntent(v int8) int8 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// randomDirection returns a heading anywhere on the circle.
func randomDirection() float64 {
	return rand.Float64() * 1.99999 * math.Pi
}

// randInt returns a value in [lo, lo+n).
func randInt(lo, n int) int {
	return lo + int(rand.Float64()*float64(n))
}
