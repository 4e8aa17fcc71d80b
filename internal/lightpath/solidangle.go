package lightpath

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// angleBetween is the arc between two unit vectors.
func angleBetween(a, b Vector3) Real {
	return math.Acos(clampAbs1(a.Dot(b)))
}

// sphericalTriangleExcess is the solid angle of the spherical triangle with
// arc sides a, b, c (L'Huilier's theorem).
func sphericalTriangleExcess(a, b, c Real) Real {
	s := 0.5 * (a + b + c)
	t := math.Tan(0.5*s) * math.Tan(0.5*(s-a)) * math.Tan(0.5*(s-b)) * math.Tan(0.5*(s-c))
	if t <= 0 {
		return 0
	}
	return 4 * math.Atan(math.Sqrt(t))
}

// discBasis returns two unit vectors spanning the plane normal to n.
func discBasis(n Vector3) (u, v Vector3) {
	axis := Vector3{1, 0, 0}
	if math.Abs(n.X) > 0.9 {
		axis = Vector3{0, 1, 0}
	}
	u = n.Cross(axis).Norm()
	v = n.Cross(u).Norm()
	return u, v
}

// CalculateSolidAngle computes the solid angle subtended at the start point
// of the most recent path by the PMT bucket disc centred on its end point.
// pmtNorm is the bucket face normal pointing back toward the detector, so a
// head-on hit has incidence cosine +1. For nPoints >= 5 the disc rim is
// sampled by a regular nPoints-gon, a refracted path is solved to every
// vertex and the launch directions are fanned into spherical triangles
// around the central path. Fewer points (or any failed vertex path) falls
// back to the flat ellipse estimate. The mean incidence cosine over the
// sampled paths is stored alongside.
func (c *Calculator) CalculateSolidAngle(pmtNorm Vector3, nPoints int) (solidAngle, cosThetaAvg Real) {
	p := &c.path
	norm := pmtNorm.Norm()

	sep := p.End.Sub(p.Start)
	d := sep.Len()
	if d < epsDenom {
		return 0, 0
	}

	if nPoints >= 5 && !p.StraightLine && !p.IsTIR && !p.ResvHit {
		if sa, ca, ok := c.polygonSolidAngle(p, norm, nPoints); ok {
			p.SolidAngle, p.CosThetaAvg = sa, ca
			return sa, ca
		}
	}

	// flat ellipse estimate
	cosTheta := math.Abs(sep.Mul(1 / d).Dot(norm))
	sa := math.Pi * c.pmtRadius * c.pmtRadius * cosTheta / (d * d)
	if sa > 2*math.Pi {
		sa = 2 * math.Pi
	}
	p.SolidAngle, p.CosThetaAvg = sa, cosTheta
	return sa, cosTheta
}

func (c *Calculator) polygonSolidAngle(p *Path, norm Vector3, nPoints int) (solidAngle, cosThetaAvg Real, ok bool) {
	u, v := discBasis(norm)

	centre := c.calcSub(p, p.Start, p.End)
	if centre.IsTIR || centre.ResvHit || centre.StraightLine {
		return 0, 0, false
	}
	w0 := centre.InitialLightVec

	launches := make([]Vector3, nPoints)
	cosines := make([]float64, 0, nPoints+1)
	cosines = append(cosines, -centre.IncidentVecOnPMT.Dot(norm))
	for i := 0; i < nPoints; i++ {
		phi := 2 * math.Pi * Real(i) / Real(nPoints)
		rim := p.End.Add(u.Mul(c.pmtRadius * math.Cos(phi))).Add(v.Mul(c.pmtRadius * math.Sin(phi)))
		vp := c.calcSub(p, p.Start, rim)
		if vp.IsTIR || vp.ResvHit || vp.StraightLine {
			return 0, 0, false
		}
		launches[i] = vp.InitialLightVec
		cosines = append(cosines, -vp.IncidentVecOnPMT.Dot(norm))
	}

	total := Real(0)
	for i := 0; i < nPoints; i++ {
		wa := launches[i]
		wb := launches[(i+1)%nPoints]
		total += sphericalTriangleExcess(
			angleBetween(w0, wa),
			angleBetween(w0, wb),
			angleBetween(wa, wb),
		)
	}
	if total > 2*math.Pi {
		total = 2 * math.Pi
	}
	return total, stat.Mean(cosines, nil), true
}

// calcSub solves a secondary path with the same energy, tolerance and fill
// mode as the primary one, without publishing it.
func (c *Calculator) calcSub(p *Path, start, end Vector3) Path {
	if p.partial {
		q := c.newPath(start, end, p.Energy, p.Tolerance, true)
		c.shoot(&q, c.toFrame(start), c.toFrame(end))
		return q
	}
	return c.calc(start, end, p.Energy, p.Tolerance, false)
}
