package lightpath

import "testing"

func TestFresnel_NormalIncidence(t *testing.T) {
	c := newTestCalc(t, testConfig())
	// radial path: normal incidence at both AV surfaces
	c.CalcByPosition(Vector3{0, 0, 0}, Vector3{8390, 0, 0}, 0, 0)

	T, R := c.CalculateFresnelTRCoeff()
	norm := func(n1, n2 Real) Real { return 4 * n1 * n2 / ((n1 + n2) * (n1 + n2)) }
	want := norm(1.50, 1.49) * norm(1.49, 1.33)
	if !nearly(T, want, 1e-9) {
		t.Fatalf("normal transmission %.12g want %.12g", T, want)
	}
	if !nearly(T+R, 1, 1e-12) {
		t.Fatalf("T+R=%.15g", T+R)
	}
	if !nearly(c.Path().FresnelT, T, 0) {
		t.Fatalf("result not stored on the path")
	}
}

func TestFresnel_ObliquePathBounds(t *testing.T) {
	c := newTestCalc(t, testConfig())
	p := c.CalcByPosition(Vector3{0, 0, 1000}, Vector3{6000, 0, 5000}, 0, 0.5)
	if p.StraightLine {
		t.Fatalf("need a refracted path")
	}
	T, R := c.CalculateFresnelTRCoeff()
	if T <= 0 || T > 1 {
		t.Fatalf("transmission %.12g out of range", T)
	}
	if !nearly(T+R, 1, 1e-12) {
		t.Fatalf("T+R=%.15g", T+R)
	}
	// oblique incidence transmits less than normal incidence
	normT := 4 * 1.50 * 1.49 / (2.99 * 2.99) * 4 * 1.49 * 1.33 / (2.82 * 2.82)
	if T > normT {
		t.Fatalf("oblique transmission %.12g above the normal-incidence bound %.12g", T, normT)
	}
}

func TestFresnel_NoInterfaces(t *testing.T) {
	c := newTestCalc(t, testConfig())
	// water-only path: no refractive surfaces along the way
	c.CalcByPosition(Vector3{7000, 0, 0}, Vector3{7000, 500, 0}, 0, 0)
	T, R := c.CalculateFresnelTRCoeff()
	if T != 1 || R != 0 {
		t.Fatalf("water-only path: T=%.12g R=%.12g", T, R)
	}
}
