package lightpath

import (
	"math"
)

// PathType is the ordered sequence of media a light path traverses.
type PathType int

const (
	SAW   PathType = iota // innerAV -> AV -> water -> PMT
	AW                    // AV -> water -> PMT
	ASAW                  // AV -> innerAV -> AV -> water -> PMT
	WASAW                 // water -> AV -> innerAV -> AV -> water -> PMT
	WAW                   // water -> AV -> water -> PMT
	W                     // water -> PMT
	WRefl                 // water -> reflection off the AV -> PMT
	Null                  // uninitialised / invalid inputs
)

func (t PathType) String() string {
	switch t {
	case SAW:
		return "SAW"
	case AW:
		return "AW"
	case ASAW:
		return "ASAW"
	case WASAW:
		return "WASAW"
	case WAW:
		return "WAW"
	case W:
		return "W"
	case WRefl:
		return "WRefl"
	}
	return "Null"
}

type medium int

const (
	medInnerAV medium = iota
	medAV
	medWater
	medUpper
	medLower
)

// thetaTerm is one sign*asin(coeff*sin(theta)) contribution to the chain
// sum. snell marks coefficients that carry a refractive-index ratio: when
// such a term limits the bracket, a failed solve means total internal
// reflection rather than a geometric miss.
type thetaTerm struct {
	coeff Real
	sign  int
	snell bool
}

type segKind int

const (
	segSphereOut segKind = iota // outward leg ending on a sphere, then refract
	segSphereIn                 // inward leg ending on a sphere, then refract
	segChordExit                // chord across the current sphere, then refract
	segMirror                   // inward leg ending on a sphere, then reflect
	segFinal                    // leg out to the end radius, no interface
)

// segment is one leg of the reconstruction program: travel through med,
// stop at the sphere of the given radius and couple n1 -> n2 there.
type segment struct {
	kind   segKind
	radius Real
	n1, n2 Real
	med    medium
}

// thetaChain is the per-topology descriptor: the angular width of the path
// as seen from the origin, expressed as
//
//	Theta(theta) = constTerm + thetaSign*theta + sum_i sign_i*asin(K_i*sin(theta))
//
// together with the 3D reconstruction program. The launch angle theta is
// measured in the path plane from the outward radial for inside starts
// (thetaSign=+1) and from the inward radial for outside starts
// (thetaSign=-1).
type thetaChain struct {
	typ       PathType
	inward    bool
	thetaSign Real
	constTerm Real
	terms     []thetaTerm
	segments  []segment
}

// sum evaluates the total angular width at the trial launch angle.
func (ch *thetaChain) sum(theta Real) Real {
	s := math.Sin(theta)
	total := ch.constTerm + ch.thetaSign*theta
	for _, t := range ch.terms {
		total += Real(t.sign) * math.Asin(clampAbs1(t.coeff*s))
	}
	return total
}

// dsum is the analytic derivative of sum. Near-singular arcsine arguments
// contribute a large finite slope of the correct sign so the bisection
// fallback is steered away from the edge.
func (ch *thetaChain) dsum(theta Real) Real {
	s, c := math.Sin(theta), math.Cos(theta)
	total := ch.thetaSign
	for _, t := range ch.terms {
		arg := t.coeff * s
		den2 := 1 - arg*arg
		if den2 < epsDenom {
			dir := c
			if dir == 0 {
				dir = 1
			}
			total += math.Copysign(bigSlope, Real(t.sign)*t.coeff*dir)
			continue
		}
		total += Real(t.sign) * t.coeff * c / math.Sqrt(den2)
	}
	return total
}

// residual is thetaTarget - sum(theta); its root is the launch angle that
// lands the path on the PMT.
func (ch *thetaChain) residual(target Real) (f, df func(Real) Real) {
	f = func(theta Real) Real { return target - ch.sum(theta) }
	df = func(theta Real) Real { return -ch.dsum(theta) }
	return f, df
}

// bracket returns the theta domain on which every arcsine argument stays
// below one. snellLimited reports whether the limiting coefficient carries
// a refractive-index ratio (a failed solve then means TIR).
func (ch *thetaChain) bracket() (lo, hi Real, snellLimited bool) {
	maxK := Real(0)
	for _, t := range ch.terms {
		if t.coeff > maxK {
			maxK = t.coeff
			snellLimited = t.snell
		}
	}
	if maxK <= 1 {
		return 0, math.Pi - epsEdge, false
	}
	return 0, math.Asin(1/maxK) - epsEdge, snellLimited
}

// bracket2 is the second monotone branch (theta > pi/2) available to
// inside starts whose first branch is cut short by a coefficient above one.
func (ch *thetaChain) bracket2() (lo, hi Real, ok bool) {
	if ch.inward {
		return 0, 0, false
	}
	maxK := Real(0)
	for _, t := range ch.terms {
		if t.coeff > maxK {
			maxK = t.coeff
		}
	}
	if maxK <= 1 {
		return 0, 0, false
	}
	return math.Pi - math.Asin(1/maxK) + epsEdge, math.Pi - epsEdge, true
}

// chainSAW: start inside the inner AV, outward through both spheres.
func chainSAW(r0, ra, rb, re, nt, na, nw Real) *thetaChain {
	k1 := r0 / ra
	k2 := (nt / na) * k1
	k3 := (ra / rb) * k2
	k4 := (na / nw) * k3
	k5 := (rb / re) * k4
	return &thetaChain{
		typ: SAW, thetaSign: 1,
		terms: []thetaTerm{
			{k1, -1, false},
			{k2, +1, true},
			{k3, -1, false},
			{k4, +1, true},
			{k5, -1, false},
		},
		segments: []segment{
			{segSphereOut, ra, nt, na, medInnerAV},
			{segSphereOut, rb, na, nw, medAV},
			{segFinal, re, nw, nw, medWater},
		},
	}
}

// chainAW: start inside the AV acrylic, outward.
func chainAW(r0, rb, re, na, nw Real) *thetaChain {
	k1 := r0 / rb
	k2 := (na / nw) * k1
	k3 := (rb / re) * k2
	return &thetaChain{
		typ: AW, thetaSign: 1,
		terms: []thetaTerm{
			{k1, -1, false},
			{k2, +1, true},
			{k3, -1, false},
		},
		segments: []segment{
			{segSphereOut, rb, na, nw, medAV},
			{segFinal, re, nw, nw, medWater},
		},
	}
}

// chainASAW: start inside the AV acrylic, inward through the target first.
func chainASAW(r0, ra, rb, re, nt, na, nw Real) *thetaChain {
	k1 := r0 / ra
	k2 := (na / nt) * k1
	k4 := r0 / rb
	k5 := (na / nw) * k4
	k6 := (rb / re) * k5
	return &thetaChain{
		typ: ASAW, inward: true, thetaSign: -1, constTerm: math.Pi,
		terms: []thetaTerm{
			{k1, +1, false},
			{k2, -2, true},
			{k1, +1, false},
			{k4, -1, false},
			{k5, +1, true},
			{k6, -1, false},
		},
		segments: []segment{
			{segSphereIn, ra, na, nt, medAV},
			{segChordExit, ra, nt, na, medInnerAV},
			{segSphereOut, rb, na, nw, medAV},
			{segFinal, re, nw, nw, medWater},
		},
	}
}

// chainWAW: start in the water, chord through the acrylic shell only.
func chainWAW(r0, rb, re, na, nw Real) *thetaChain {
	k1 := r0 / rb
	k2 := (nw / na) * k1
	k4 := (rb / re) * k1
	return &thetaChain{
		typ: WAW, inward: true, thetaSign: -1, constTerm: math.Pi,
		terms: []thetaTerm{
			{k1, +1, false},
			{k2, -2, true},
			{k1, +1, false},
			{k4, -1, false},
		},
		segments: []segment{
			{segSphereIn, rb, nw, na, medWater},
			{segChordExit, rb, na, nw, medAV},
			{segFinal, re, nw, nw, medWater},
		},
	}
}

// chainWASAW: start in the water, straight through the whole detector.
func chainWASAW(r0, ra, rb, re, nt, na, nw Real) *thetaChain {
	k1 := r0 / rb
	k2 := (nw / na) * k1
	k3 := (rb / ra) * k2
	k4 := (na / nt) * k3
	k6 := (rb / re) * k1
	return &thetaChain{
		typ: WASAW, inward: true, thetaSign: -1, constTerm: math.Pi,
		terms: []thetaTerm{
			{k1, +1, false},
			{k3, +1, false},
			{k2, -1, true},
			{k4, -2, true},
			{k3, +1, false},
			{k2, -1, true},
			{k1, +1, false},
			{k6, -1, false},
		},
		segments: []segment{
			{segSphereIn, rb, nw, na, medWater},
			{segSphereIn, ra, na, nt, medAV},
			{segChordExit, ra, nt, na, medInnerAV},
			{segSphereOut, rb, na, nw, medAV},
			{segFinal, re, nw, nw, medWater},
		},
	}
}

// chainWRefl: start in the water, single mirror bounce off the AV outer
// sphere, no refraction.
func chainWRefl(r0, rb, re, nw Real) *thetaChain {
	k1 := r0 / rb
	k2 := (rb / re) * k1
	return &thetaChain{
		typ: WRefl, inward: true, thetaSign: -1,
		terms: []thetaTerm{
			{k1, +1, false},
			{k1, +1, false},
			{k2, -1, false},
		},
		segments: []segment{
			{segMirror, rb, nw, nw, medWater},
			{segFinal, re, nw, nw, medWater},
		},
	}
}
