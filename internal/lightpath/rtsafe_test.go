package lightpath

import (
	"math"
	"testing"
)

func TestRTSafe_Cubic(t *testing.T) {
	f := func(x Real) Real { return x*x*x - 2*x - 5 }
	df := func(x Real) Real { return 3*x*x - 2 }
	x, ok := rtSafe(f, df, 1, 3, 1e-12, RTSafeMaxIter)
	if !ok {
		t.Fatalf("root not found")
	}
	if !nearly(f(x), 0, 1e-9) {
		t.Fatalf("f(root)=%.15g at x=%.15g", f(x), x)
	}
}

func TestRTSafe_Unbracketed(t *testing.T) {
	f := func(x Real) Real { return x*x + 1 }
	df := func(x Real) Real { return 2 * x }
	if _, ok := rtSafe(f, df, -1, 1, 1e-12, RTSafeMaxIter); ok {
		t.Fatalf("unbracketed interval must fail")
	}
}

func TestRTSafe_EndpointRoot(t *testing.T) {
	f := func(x Real) Real { return x }
	df := func(x Real) Real { return 1 }
	x, ok := rtSafe(f, df, 0, 1, 1e-12, RTSafeMaxIter)
	if !ok || x != 0 {
		t.Fatalf("endpoint root missed: x=%.15g ok=%v", x, ok)
	}
}

func TestRTSafe_SteepDerivativeFallsBackToBisection(t *testing.T) {
	// Newton from the flat region would overshoot; the bracket keeps it in
	f := func(x Real) Real { return math.Tanh(50 * (x - 0.7)) }
	df := func(x Real) Real {
		c := math.Cosh(50 * (x - 0.7))
		return 50 / (c * c)
	}
	x, ok := rtSafe(f, df, 0, 1, 1e-12, RTSafeMaxIter)
	if !ok {
		t.Fatalf("root not found")
	}
	if !nearly(x, 0.7, 1e-9) {
		t.Fatalf("root=%.15g, want 0.7", x)
	}
}

func TestFillZFromFraction(t *testing.T) {
	R := Real(6005)
	z, err := fillZFromFraction(0.5, R)
	if err != nil {
		t.Fatalf("half fill: %v", err)
	}
	if !nearly(z, 0, 1e-6*R) {
		t.Fatalf("half fill plane at z=%.6g, want 0", z)
	}
	z, err = fillZFromFraction(0.75, R)
	if err != nil {
		t.Fatalf("3/4 fill: %v", err)
	}
	if z <= 0 || z >= R {
		t.Fatalf("3/4 fill plane at z=%.6g, want inside (0, R)", z)
	}
	// forward check of the cap volume at the returned height
	vol := math.Pi * (2*R*R*R/3 + R*R*z - z*z*z/3)
	if !nearly(vol/(4*math.Pi*R*R*R/3), 0.75, 1e-9) {
		t.Fatalf("volume fraction at z=%.6g is %.12g", z, vol/(4*math.Pi*R*R*R/3))
	}
}
