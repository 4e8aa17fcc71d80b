package lightpath

import "math"

// Vector3 is a position or direction in detector coordinates [mm].
type Vector3 struct {
	X, Y, Z Real
}

// Vector functions
func (a Vector3) Add(b Vector3) Vector3 { return Vector3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vector3) Sub(b Vector3) Vector3 { return Vector3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (v Vector3) Mul(s Real) Vector3    { return Vector3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product between two vectors.
func (a Vector3) Dot(b Vector3) Real {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a x b.
func (a Vector3) Cross(b Vector3) Vector3 {
	return Vector3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the Euclidean length of the vector.
func (v Vector3) Len() Real { return math.Sqrt(v.Dot(v)) }

// Norm returns a unit-length version of the vector.
// If the vector is (near) zero, it returns the input unchanged.
func (v Vector3) Norm() Vector3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return Vector3{v.X / l, v.Y / l, v.Z / l}
}

// IsFinite reports whether all components are finite.
func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// pathPlane is the 2D frame the refracted path is solved in.
// xhat points from the detector origin to the start position, zhat is the
// plane normal (start x end) and yhat = zhat x xhat completes the triad so
// that the end position has a non-negative yhat component.
type pathPlane struct {
	xhat, yhat, zhat Vector3
}

// newPathPlane builds the frame. ok is false when start and end are
// (anti-)parallel as seen from the origin and no plane is defined.
func newPathPlane(start, end Vector3) (pathPlane, bool) {
	z := start.Cross(end)
	if z.Len() < 1e-9 {
		return pathPlane{}, false
	}
	x := start.Norm()
	zh := z.Norm()
	return pathPlane{xhat: x, yhat: zh.Cross(x), zhat: zh}, true
}

// dir maps an in-plane direction (cx along xhat, cy along yhat) to 3D.
func (p pathPlane) dir(cx, cy Real) Vector3 {
	return p.xhat.Mul(cx).Add(p.yhat.Mul(cy)).Norm()
}
