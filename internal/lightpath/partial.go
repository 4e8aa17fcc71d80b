package lightpath

import "math"

// minStep rejects interface hits closer than this along the ray [mm], so a
// leg starting on a surface does not re-find it.
const minStep = 1e-6

// CalcByPositionPartial computes the path through the partially filled
// detector: the inner AV volume is split at the fill plane into an upper
// and a lower target medium. tolerance == 0 requests the straight-line
// partition; otherwise the refracted path is found by a 3D shooting walk,
// since the fill plane breaks the spherical symmetry the angular chains
// rely on.
func (c *Calculator) CalcByPositionPartial(start, end Vector3, energy, tolerance Real) Path {
	p := c.newPath(start, end, energy, tolerance, true)
	if c.innerAVRI == nil || !start.IsFinite() || !end.IsFinite() || !isFinite(tolerance) || tolerance < 0 {
		logStep(Null.String(), Published, 0, 0, 0)
		c.path = p
		return p
	}
	fs, fe := c.toFrame(start), c.toFrame(end)

	if tolerance == 0 {
		c.straightPath(&p, fs, fe)
		c.neckPass(&p)
		logStep(p.Type.String(), Published, 0, 0, 0)
		c.path = p
		return p
	}

	c.shoot(&p, fs, fe)
	c.neckPass(&p)
	logStep(p.Type.String(), Published, 0, 0, p.FinalLoop)
	c.path = p
	return p
}

// shoot iterates the launch direction until the walked path lands within
// the tolerance of the requested end point. The aim point is corrected by
// the full miss vector each round.
func (c *Calculator) shoot(p *Path, fs, fe Vector3) {
	aim := fe
	for i := 0; i < LoopCeiling; i++ {
		d0 := aim.Sub(fs)
		if d0.Len() < epsDenom {
			break
		}
		d0 = d0.Norm()
		endPt, tir, ok := c.walk(p, fs, fe, d0)
		if tir {
			p.IsTIR = true
			logStep(p.Type.String(), TIRDetected, 0, 0, i)
			c.straightPath(p, fs, fe)
			return
		}
		if !ok {
			break
		}
		miss := endPt.Sub(fe)
		if miss.Len() <= p.Tolerance {
			p.FinalLoop = i
			logStep(p.Type.String(), RootFound, 0, miss.Len(), i)
			return
		}
		logStep(p.Type.String(), Retried, 0, miss.Len(), i)
		aim = aim.Sub(miss)
	}
	p.ResvHit = true
	c.straightPath(p, fs, fe)
}

// walk traces one ray through the spheres and the fill plane until it
// reaches the end radius in the water, refracting at every interface.
// It fills the path record as it goes and returns the AV-frame end point.
func (c *Calculator) walk(p *Path, fs, fe, d0 Vector3) (endPt Vector3, tir, ok bool) {
	p.resetDistances()
	p.InitialLightVec = d0

	re := fe.Len()
	pos, dir := fs, d0
	var regions []medium
	p.polyline = append(p.polyline, c.fromFrame(pos))

	for step := 0; step < maxWalkSegments; step++ {
		med := c.regionAt(p, pos.Add(dir.Mul(minStep)))
		if len(regions) == 0 || regions[len(regions)-1] != med {
			regions = append(regions, med)
		}

		// nearest interface along the ray
		tBest := math.Inf(1)
		kind := -1 // 0 inner sphere, 1 outer sphere, 2 fill plane, 3 end radius
		consider := func(t Real, k int) {
			if t > minStep && t < tBest {
				tBest = t
				kind = k
			}
		}
		for _, t := range sphereHits(pos, dir, c.avInnerRadius) {
			consider(t, 0)
		}
		for _, t := range sphereHits(pos, dir, c.avOuterRadius) {
			consider(t, 1)
		}
		if (med == medUpper || med == medLower) && math.Abs(dir.Z) > epsDenom {
			t := (c.fillZ - pos.Z) / dir.Z
			if t > minStep && pos.Add(dir.Mul(t)).Len() < c.avInnerRadius {
				consider(t, 2)
			}
		}
		if med == medWater {
			for _, t := range sphereHits(pos, dir, re) {
				consider(t, 3)
			}
		}
		if kind < 0 {
			return Vector3{}, false, false
		}

		next := pos.Add(dir.Mul(tBest))
		p.addDist(med, tBest)
		p.polyline = append(p.polyline, c.fromFrame(next))

		if kind == 3 {
			p.IncidentVecOnPMT = dir
			p.CalcEnd = c.fromFrame(next)
			p.Type = classifySequence(regions)
			return next, false, true
		}

		after := c.regionAt(p, next.Add(dir.Mul(minStep)))
		n1, n2 := p.mediumIndex(med), p.mediumIndex(after)
		normal := next.Norm()
		if kind == 2 {
			normal = Vector3{0, 0, 1}
		}
		p.crossings = append(p.crossings, ifaceCrossing{
			point:  c.fromFrame(next),
			dir:    dir,
			normal: normal,
			n1:     n1,
			n2:     n2,
		})
		if kind != 2 {
			p.pushAVPoint(c.fromFrame(next))
		}
		refr, okRefr := pathRefraction(dir, normal, n1, n2)
		if !okRefr {
			return Vector3{}, true, false
		}
		dir = refr
		pos = next
	}
	return Vector3{}, false, false
}

// sphereHits returns the forward crossings of the origin-centred sphere.
func sphereHits(pos, dir Vector3, R Real) []Real {
	t0, t1, ok := sphereCrossings(pos, dir, R)
	if !ok {
		return nil
	}
	out := make([]Real, 0, 2)
	if t0 > 0 {
		out = append(out, t0)
	}
	if t1 > 0 {
		out = append(out, t1)
	}
	return out
}
