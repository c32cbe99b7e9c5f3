package mathhelp

import (
	"math"

	"golang.org/x/exp/constraints"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// BetweenInc reports whether f lies in the closed interval spanned by p and q (in any order).
func BetweenInc[T Number](f, p, q T) bool {
	if p <= q {
		return p <= f && f <= q
	}
	return q <= f && f <= p
}

func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// FloatMod returns the remainder of d/m with the sign of m. The result is always in [0, m) for positive m.
func FloatMod(d, m float64) float64 {
	r := math.Mod(d, m)
	if (r < 0 && m > 0) || (r > 0 && m < 0) {
		r += m
	}
	if r == m {
		// r was a tiny negative number that got absorbed
		return 0
	}
	return r
}

// RoundTo rounds f to the nearest multiple of step.
func RoundTo(f, step float64) float64 {
	return math.Round(f/step) * step
}
