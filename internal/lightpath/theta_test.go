package lightpath

import (
	"math"
	"testing"
)

// numeric derivative cross-check for the analytic chain derivatives
func TestThetaChain_DerivativeMatchesNumeric(t *testing.T) {
	chains := []*thetaChain{
		chainSAW(1000, 6005, 6060, 8390, 1.50, 1.49, 1.33),
		chainAW(6030, 6060, 8390, 1.49, 1.33),
		chainWRefl(7000, 6060, 8390, 1.33),
	}
	const h = 1e-7
	for _, ch := range chains {
		lo, hi, _ := ch.bracket()
		for _, frac := range []Real{0.2, 0.5, 0.8} {
			theta := lo + frac*(hi-lo)
			num := (ch.sum(theta+h) - ch.sum(theta-h)) / (2 * h)
			ana := ch.dsum(theta)
			if math.Abs(num-ana) > 1e-4*math.Max(1, math.Abs(ana)) {
				t.Fatalf("%s: dsum(%.6g)=%.9g, numeric %.9g", ch.typ, theta, ana, num)
			}
		}
	}
}

func TestThetaChain_BracketSnellLimited(t *testing.T) {
	// start just under the inner radius: the water-exit coefficient exceeds
	// one, so the bracket is cut short by a refractive index ratio
	ch := chainSAW(6000, 6005, 6060, 8390, 1.50, 1.49, 1.33)
	lo, hi, snell := ch.bracket()
	if !snell {
		t.Fatalf("bracket should be limited by a Snell coefficient")
	}
	if lo != 0 || hi >= math.Pi/2 {
		t.Fatalf("bracket [%.6g, %.6g] unexpected", lo, hi)
	}
	// deep start: every coefficient is small and the full domain is usable
	ch = chainSAW(100, 6005, 6060, 8390, 1.50, 1.49, 1.33)
	_, hi, snell = ch.bracket()
	if snell || !nearly(hi, math.Pi-epsEdge, 1e-12) {
		t.Fatalf("deep start should use the full domain, hi=%.6g snell=%v", hi, snell)
	}
}

func TestThetaChain_SecondBranchOnlyForOutwardStarts(t *testing.T) {
	out := chainSAW(6000, 6005, 6060, 8390, 1.50, 1.49, 1.33)
	if _, _, ok := out.bracket2(); !ok {
		t.Fatalf("outward chain with a large coefficient should expose branch 2")
	}
	in := chainWAW(7000, 6060, 8390, 1.49, 1.33)
	if _, _, ok := in.bracket2(); ok {
		t.Fatalf("inward chains have no second branch")
	}
}

// with equal indices everywhere the chains must describe plain straight
// chords: the angular width of a chord at launch angle theta from radius r0
// to radius re has the closed form below
func TestThetaChain_EqualIndicesReduceToChords(t *testing.T) {
	r0, ra, rb, re := Real(3000), Real(6005), Real(6060), Real(8390)
	ch := chainSAW(r0, ra, rb, re, 1, 1, 1)
	for _, theta := range []Real{0.2, 0.6, 1.0} {
		want := theta - math.Asin((r0/re)*math.Sin(theta))
		if !nearly(ch.sum(theta), want, 1e-12) {
			t.Fatalf("SAW chord reduction: sum(%.3g)=%.12g want %.12g", theta, ch.sum(theta), want)
		}
	}
}

func TestSiblingPairs(t *testing.T) {
	if sibling(AW) != ASAW || sibling(ASAW) != AW {
		t.Fatalf("AW / ASAW must alternate")
	}
	if sibling(WAW) != WASAW || sibling(WASAW) != WAW {
		t.Fatalf("WAW / WASAW must alternate")
	}
	if sibling(SAW) != Null || sibling(WRefl) != Null {
		t.Fatalf("SAW and WRefl have no alternate topology")
	}
}

func TestPathTypeString(t *testing.T) {
	for typ, want := range map[PathType]string{
		SAW: "SAW", AW: "AW", ASAW: "ASAW", WASAW: "WASAW",
		WAW: "WAW", W: "W", WRefl: "WRefl", Null: "Null",
	} {
		if typ.String() != want {
			t.Fatalf("String(%d)=%q", typ, typ.String())
		}
	}
}
