package vplanet

import (
	"math"

	"github.com/gonum/floats"
	"github.com/gonum/matrix/mat64"
)

// Sign returns the sign of a given number, treating values within
// floating-point tolerance of zero as positive. Adapted from the teacher's
// math.go helper of the same name.
func Sign(v float64) float64 {
	if floats.EqualWithinAbs(v, 0, 1e-12) {
		return 1
	}
	return v / math.Abs(v)
}

// SumMasses reduces a set of body masses via gonum/floats. Nothing in this
// repository calls it; System.TotalMass calls floats.Sum directly.
func SumMasses(masses []float64) float64 {
	return floats.Sum(masses)
}

// DenseIdentity returns an identity matrix of the given size. Adapted from
// the teacher's math.go. The stellar track's spline solver (track.go) does
// not use it; it builds its own mat64.Dense.
func DenseIdentity(n int) *mat64.Dense {
	return ScaledDenseIdentity(n, 1)
}

// ScaledDenseIdentity returns a scaled identity matrix of the given size.
func ScaledDenseIdentity(n int, s float64) *mat64.Dense {
	vals := make([]float64, n*n)
	for j := 0; j < n*n; j++ {
		if j%(n+1) == 0 {
			vals[j] = s
		}
	}
	return mat64.NewDense(n, n, vals)
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
