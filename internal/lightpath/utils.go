package lightpath

import (
	"math"
)

func isFinite(x Real) bool { return !math.IsInf(x, 0) && !math.IsNaN(x) }

func clamp01(x Real) Real {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// clampAbs1 clamps x into [-1, 1] for safe arcsine/arccosine arguments.
func clampAbs1(x Real) Real {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}
