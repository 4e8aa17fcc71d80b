package lightpath

import "math"

// reflect3 mirrors I about the plane with unit normal N.
func reflect3(I, N Vector3) Vector3 {
	return I.Sub(N.Mul(2 * I.Dot(N)))
}

// pathRefraction applies Snell's law at a surface with unit normal N.
// The normal may point to either side; it is flipped so the incident cosine
// is positive. On total internal reflection the reflected vector is
// returned as a sentinel together with ok=false.
//
// I and N must be unit; n1 is the incident medium index, n2 the refracted.
func pathRefraction(I, N Vector3, n1, n2 Real) (Vector3, bool) {
	n := N
	cosi := I.Dot(N)
	if cosi > 0 {
		n = N.Mul(-1)
	} else {
		cosi = -cosi
	}
	cosi = clamp01(cosi)
	eta := n1 / n2
	k := 1 - eta*eta*(1-cosi*cosi)
	if k < 0 {
		return reflect3(I, n), false // total internal reflection
	}
	T := I.Mul(eta).Add(n.Mul(eta*cosi - math.Sqrt(k)))
	return T.Norm(), true
}

// vectorToSphereEdge intersects the ray p + t*dir (t > 0) with the sphere of
// radius R centred at the origin and returns the intersection point.
// fromOutside selects the near root, otherwise the far root is used.
// Fails silent: returns p when the discriminant is negative or no positive
// root exists; the caller validates against the topological regime.
func vectorToSphereEdge(p, dir Vector3, R Real, fromOutside bool) Vector3 {
	d := dir.Norm()
	b := p.Dot(d)
	c := p.Dot(p) - R*R
	disc := b*b - c
	if disc < 0 {
		return p
	}
	sq := math.Sqrt(disc)
	tNear := -b - sq
	tFar := -b + sq
	t := tFar
	if fromOutside {
		t = tNear
	}
	if t <= 0 {
		t = tFar
		if t <= 0 {
			return p
		}
	}
	return p.Add(d.Mul(t))
}

// vectorToCylinderEdge intersects the ray p + t*dir (t > 0) with an infinite
// cylinder of radius R along +Z through baseOrigin, returning the first
// positive intersection. Fails silent like vectorToSphereEdge.
func vectorToCylinderEdge(p, dir, baseOrigin Vector3, R Real) Vector3 {
	d := dir.Norm()
	px := p.X - baseOrigin.X
	py := p.Y - baseOrigin.Y
	a := d.X*d.X + d.Y*d.Y
	if a < epsDenom {
		return p // parallel to the cylinder axis
	}
	b := 2 * (px*d.X + py*d.Y)
	c := px*px + py*py - R*R
	disc := b*b - 4*a*c
	if disc < 0 {
		return p
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	t := t0
	if t <= 0 {
		t = t1
		if t <= 0 {
			return p
		}
	}
	return p.Add(d.Mul(t))
}

// cylinderCrossings returns the ray parameters of both intersections with
// the infinite +Z cylinder of radius R centred on the Z axis, in ascending
// order. ok is false when the ray misses or runs parallel to the axis.
func cylinderCrossings(p, d Vector3, R Real) (t0, t1 Real, ok bool) {
	a := d.X*d.X + d.Y*d.Y
	if a < epsDenom {
		return 0, 0, false
	}
	b := 2 * (p.X*d.X + p.Y*d.Y)
	c := p.X*p.X + p.Y*p.Y - R*R
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	t0 = (-b - sq) / (2 * a)
	t1 = (-b + sq) / (2 * a)
	return t0, t1, true
}

// sphereCrossings returns the ray parameters of both intersections with the
// origin-centred sphere of radius R, ascending. ok is false on a miss.
func sphereCrossings(p, d Vector3, R Real) (t0, t1 Real, ok bool) {
	b := p.Dot(d)
	c := p.Dot(p) - R*R
	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	return -b - sq, -b + sq, true
}

// closestAngle is the maximum angle between the radial direction at pos and
// a launch direction for the ray to still intersect the sphere of radius
// edgeRadius lying inside |pos|.
func closestAngle(pos Vector3, edgeRadius Real) Real {
	r := pos.Len()
	if r <= edgeRadius {
		return math.Pi / 2
	}
	return math.Asin(clampAbs1(edgeRadius / r))
}

// reflectionAngle is the maximum central angle between pos and an end point
// at the same radius for a single reflection off the sphere of radius
// edgeRadius to exist.
func reflectionAngle(pos Vector3, edgeRadius Real) Real {
	r := pos.Len()
	if r <= edgeRadius {
		return 0
	}
	return math.Pi - 2*math.Asin(clampAbs1(edgeRadius/r))
}
