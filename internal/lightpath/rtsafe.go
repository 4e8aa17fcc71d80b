package lightpath

import "math"

// rtSafe finds a root of f on [x1, x2] using Newton-Raphson steps demoted
// to bisection whenever a step would leave the bracket or convergence
// slows. Accuracy is xAcc on the abscissa; maxIter bounds the iterations.
// ok is false when f(x1) and f(x2) do not straddle zero or the ceiling is
// reached without convergence.
func rtSafe(f, df func(Real) Real, x1, x2, xAcc Real, maxIter int) (Real, bool) {
	fl := f(x1)
	fh := f(x2)
	if (fl > 0 && fh > 0) || (fl < 0 && fh < 0) {
		return math.NaN(), false
	}
	if fl == 0 {
		return x1, true
	}
	if fh == 0 {
		return x2, true
	}
	// orient so that f(xl) < 0
	xl, xh := x1, x2
	if fl > 0 {
		xl, xh = x2, x1
	}
	rts := 0.5 * (x1 + x2)
	dxOld := math.Abs(x2 - x1)
	dx := dxOld
	fv := f(rts)
	dfv := df(rts)
	for i := 0; i < maxIter; i++ {
		outside := ((rts-xh)*dfv-fv)*((rts-xl)*dfv-fv) > 0
		slow := math.Abs(2*fv) > math.Abs(dxOld*dfv)
		if outside || slow {
			dxOld = dx
			dx = 0.5 * (xh - xl)
			rts = xl + dx
			if xl == rts {
				return rts, true
			}
		} else {
			dxOld = dx
			dx = fv / dfv
			tmp := rts
			rts -= dx
			if tmp == rts {
				return rts, true
			}
		}
		if math.Abs(dx) < xAcc {
			return rts, true
		}
		fv = f(rts)
		dfv = df(rts)
		if fv < 0 {
			xl = rts
		} else {
			xh = rts
		}
	}
	return math.NaN(), false
}
