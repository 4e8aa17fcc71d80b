package lightpath

import "math"

// CalculateFresnelTRCoeff returns the combined Fresnel transmission and
// reflection coefficients over every refractive interface of the most
// recent path, for unpolarised light (equal s and p weights). The
// reflection coefficient is the complement of the transmission product, so
// a path with no interfaces transmits fully.
func (c *Calculator) CalculateFresnelTRCoeff() (T, R Real) {
	p := &c.path
	T = 1
	for _, x := range p.crossings {
		T *= fresnelTransmission(x)
	}
	p.FresnelT, p.FresnelR = T, 1-T
	return T, 1 - T
}

// fresnelTransmission is the power transmittance of one interface.
func fresnelTransmission(x ifaceCrossing) Real {
	if x.n1 == x.n2 {
		return 1
	}
	cosI := math.Abs(x.dir.Dot(x.normal))
	cosI = clamp01(cosI)
	if cosI < epsDenom {
		return 0 // grazing incidence
	}
	sinT2 := (x.n1 / x.n2) * (x.n1 / x.n2) * (1 - cosI*cosI)
	if sinT2 >= 1 {
		return 0 // total internal reflection
	}
	cosT := math.Sqrt(1 - sinT2)

	ts := 2 * x.n1 * cosI / (x.n1*cosI + x.n2*cosT)
	tp := 2 * x.n1 * cosI / (x.n2*cosI + x.n1*cosT)
	return (x.n2 * cosT) / (x.n1 * cosI) * 0.5 * (ts*ts + tp*tp)
}
