package lightpath

import (
	"math"
	"testing"
)

const eps = 1e-10

func nearly(a, b Real, tol Real) bool { return math.Abs(a-b) <= tol }

func vecNearly(a, b Vector3, tol Real) bool { return a.Sub(b).Len() <= tol }

// build a unit vector orthogonal to unit N
func anyTangent(N Vector3) Vector3 {
	e := Vector3{1, 0, 0}
	if math.Abs(N.X) > 0.9 {
		e = Vector3{0, 1, 0}
	}
	T := e.Sub(N.Mul(e.Dot(N)))
	return T.Norm()
}

func TestReflect3_Properties(t *testing.T) {
	normals := []Vector3{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		Vector3{1, 2, 3}.Norm(),
	}
	angles := []Real{math.Pi / 6, math.Pi / 3}

	for _, N := range normals {
		for _, a := range angles {
			Tt := anyTangent(N)
			I := N.Mul(-math.Cos(a)).Add(Tt.Mul(math.Sin(a)))

			R := reflect3(I, N)

			if !nearly(R.Len(), 1, 1e-12) {
				t.Fatalf("reflect length != 1, got %.15g", R.Len())
			}
			if !nearly(R.Dot(N), -I.Dot(N), eps) {
				t.Fatalf("R.N != -I.N: %.15g vs %.15g", R.Dot(N), -I.Dot(N))
			}
			It := I.Sub(N.Mul(I.Dot(N)))
			Rt := R.Sub(N.Mul(R.Dot(N)))
			if !vecNearly(It, Rt, 1e-12) {
				t.Fatalf("tangential component not preserved")
			}
		}
	}
}

func TestPathRefraction_SnellLaw(t *testing.T) {
	N := Vector3{0, 0, 1}
	n1, n2 := 1.33, 1.49
	for _, a := range []Real{0.1, 0.5, 1.0} {
		I := Vector3{math.Sin(a), 0, -math.Cos(a)} // onto the surface from +z
		T, ok := pathRefraction(I, N, n1, n2)
		if !ok {
			t.Fatalf("unexpected TIR at %.3g", a)
		}
		sinI := math.Sin(a)
		sinT := math.Hypot(T.X, T.Y)
		if !nearly(n1*sinI, n2*sinT, 1e-12) {
			t.Fatalf("Snell violated: n1 sinI=%.15g n2 sinT=%.15g", n1*sinI, n2*sinT)
		}
		if T.Z >= 0 {
			t.Fatalf("refracted ray should continue into -z, got %.15g", T.Z)
		}
	}
}

func TestPathRefraction_TIR(t *testing.T) {
	N := Vector3{0, 0, 1}
	n1, n2 := 1.49, 1.33
	crit := math.Asin(n2 / n1)
	a := crit + 0.05
	I := Vector3{math.Sin(a), 0, -math.Cos(a)}
	R, ok := pathRefraction(I, N, n1, n2)
	if ok {
		t.Fatalf("expected TIR above the critical angle")
	}
	// sentinel is the specular reflection
	if !vecNearly(R, reflect3(I, N), 1e-12) {
		t.Fatalf("TIR sentinel is not the reflected ray")
	}
}

func TestVectorToSphereEdge(t *testing.T) {
	// from inside, far root
	p := Vector3{1000, 0, 0}
	hit := vectorToSphereEdge(p, Vector3{1, 0, 0}, 6005, false)
	if !vecNearly(hit, Vector3{6005, 0, 0}, 1e-9) {
		t.Fatalf("inside hit: got %+v", hit)
	}
	// from outside, near root
	p = Vector3{8000, 0, 0}
	hit = vectorToSphereEdge(p, Vector3{-1, 0, 0}, 6060, true)
	if !vecNearly(hit, Vector3{6060, 0, 0}, 1e-9) {
		t.Fatalf("outside hit: got %+v", hit)
	}
	// miss fails silent
	p = Vector3{8000, 0, 0}
	hit = vectorToSphereEdge(p, Vector3{0, 1, 0}, 6060, true)
	if hit != p {
		t.Fatalf("miss should return the input point")
	}
}

func TestVectorToCylinderEdge(t *testing.T) {
	p := Vector3{2000, 0, 7000}
	hit := vectorToCylinderEdge(p, Vector3{-1, 0, 0}, Vector3{}, 730)
	if !vecNearly(hit, Vector3{730, 0, 7000}, 1e-9) {
		t.Fatalf("cylinder hit: got %+v", hit)
	}
	// parallel to the axis fails silent
	hit = vectorToCylinderEdge(p, Vector3{0, 0, 1}, Vector3{}, 730)
	if hit != p {
		t.Fatalf("axis-parallel ray should return the input point")
	}
}

func TestSphereCrossings_Ordering(t *testing.T) {
	t0, t1, ok := sphereCrossings(Vector3{-8000, 0, 0}, Vector3{1, 0, 0}, 6005)
	if !ok {
		t.Fatalf("expected two crossings")
	}
	if !nearly(t0, 8000-6005, 1e-9) || !nearly(t1, 8000+6005, 1e-9) {
		t.Fatalf("crossings: %.15g %.15g", t0, t1)
	}
}

func TestClosestAndReflectionAngle(t *testing.T) {
	pos := Vector3{2 * 6060, 0, 0}
	if !nearly(closestAngle(pos, 6060), math.Asin(0.5), 1e-12) {
		t.Fatalf("closestAngle: %.15g", closestAngle(pos, 6060))
	}
	if !nearly(reflectionAngle(pos, 6060), math.Pi-2*math.Asin(0.5), 1e-12) {
		t.Fatalf("reflectionAngle: %.15g", reflectionAngle(pos, 6060))
	}
	if reflectionAngle(Vector3{100, 0, 0}, 6060) != 0 {
		t.Fatalf("no reflection from inside the mirror")
	}
}

func TestPathPlane(t *testing.T) {
	plane, ok := newPathPlane(Vector3{0, 0, 1000}, Vector3{6000, 0, 5000})
	if !ok {
		t.Fatalf("plane should exist")
	}
	if !nearly(plane.xhat.Dot(plane.yhat), 0, eps) || !nearly(plane.xhat.Dot(plane.zhat), 0, eps) {
		t.Fatalf("basis not orthogonal")
	}
	// end must have a non-negative yhat component
	if plane.yhat.Dot(Vector3{6000, 0, 5000}) < 0 {
		t.Fatalf("yhat points away from the end position")
	}
	if _, ok := newPathPlane(Vector3{1000, 0, 0}, Vector3{5000, 0, 0}); ok {
		t.Fatalf("colinear points must not define a plane")
	}
}
