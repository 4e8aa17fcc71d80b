package lightpath

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ifaceCrossing is one refractive interface met along the path, recorded
// for the Fresnel coefficient chain.
type ifaceCrossing struct {
	point  Vector3 // detector frame
	dir    Vector3 // incident unit direction
	normal Vector3 // unit surface normal (outward for spheres, +Z for the fill plane)
	n1, n2 Real
}

// Path is the per-call result record. All fields are reset to their
// zero sentinel at the start of every calculation; flags indicate which
// parts carry physical values.
type Path struct {
	Type PathType

	Start, End Vector3
	CalcEnd    Vector3 // end point actually reached by the solved path

	InitialLightVec  Vector3
	IncidentVecOnPMT Vector3

	PointOnAV1, PointOnAV2, PointOnAV3, PointOnAV4 Vector3
	PointOnNeck1, PointOnNeck2                     Vector3

	DistInInnerAV, DistInAV, DistInWater             Real
	DistInUpperTarget, DistInLowerTarget             Real
	DistInNeckInnerAV, DistInNeckAV, DistInNeckWater Real

	IsTIR        bool
	ResvHit      bool
	XAVNeck      bool
	StraightLine bool
	ELLIEReflect bool

	Energy    Real
	Tolerance Real
	FinalLoop int

	// computed on demand, see CalculateSolidAngle / CalculateFresnelTRCoeff
	SolidAngle  Real
	CosThetaAvg Real
	FresnelT    Real
	FresnelR    Real

	nInnerAV, nAV, nWater, nUpper, nLower Real

	partial   bool
	avPoints  int
	crossings []ifaceCrossing
	polyline  []Vector3 // detector frame vertices, start..end
}

// TotalDist is the full-fill path length.
func (p *Path) TotalDist() Real {
	return p.DistInInnerAV + p.DistInAV + p.DistInWater
}

// TotalDistPartial is the partial-fill path length.
func (p *Path) TotalDistPartial() Real {
	return p.DistInUpperTarget + p.DistInLowerTarget + p.DistInAV + p.DistInWater
}

// PolylineLength is the arc length of the reconstructed polyline.
func (p *Path) PolylineLength() Real {
	if len(p.polyline) < 2 {
		return 0
	}
	segs := make([]float64, len(p.polyline)-1)
	for i := 1; i < len(p.polyline); i++ {
		segs[i-1] = p.polyline[i].Sub(p.polyline[i-1]).Len()
	}
	return floats.Sum(segs)
}

// IncidentVecOn1stSurf is the unit vector incident on the first AV surface.
func (p *Path) IncidentVecOn1stSurf() Vector3 { return p.PointOnAV1.Sub(p.Start).Norm() }

// IncidentVecOn2ndSurf is the unit vector incident on the second AV surface.
func (p *Path) IncidentVecOn2ndSurf() Vector3 { return p.PointOnAV2.Sub(p.PointOnAV1).Norm() }

// IncidentVecOn3rdSurf is the unit vector incident on the third AV surface.
func (p *Path) IncidentVecOn3rdSurf() Vector3 { return p.PointOnAV3.Sub(p.PointOnAV2).Norm() }

// IncidentVecOn4thSurf is the unit vector incident on the fourth AV surface.
func (p *Path) IncidentVecOn4thSurf() Vector3 { return p.PointOnAV4.Sub(p.PointOnAV3).Norm() }

func (p *Path) addDist(med medium, d Real) {
	switch med {
	case medInnerAV:
		p.DistInInnerAV += d
	case medAV:
		p.DistInAV += d
	case medWater:
		p.DistInWater += d
	case medUpper:
		p.DistInUpperTarget += d
	case medLower:
		p.DistInLowerTarget += d
	}
}

func (p *Path) resetDistances() {
	p.DistInInnerAV, p.DistInAV, p.DistInWater = 0, 0, 0
	p.DistInUpperTarget, p.DistInLowerTarget = 0, 0
	p.DistInNeckInnerAV, p.DistInNeckAV, p.DistInNeckWater = 0, 0, 0
	p.avPoints = 0
	p.PointOnAV1, p.PointOnAV2, p.PointOnAV3, p.PointOnAV4 = Vector3{}, Vector3{}, Vector3{}, Vector3{}
	p.crossings = p.crossings[:0]
	p.polyline = p.polyline[:0]
}

func (p *Path) pushAVPoint(pt Vector3) {
	p.avPoints++
	switch p.avPoints {
	case 1:
		p.PointOnAV1 = pt
	case 2:
		p.PointOnAV2 = pt
	case 3:
		p.PointOnAV3 = pt
	case 4:
		p.PointOnAV4 = pt
	}
}

// mediumIndex returns the refractive index the path used for one medium.
func (p *Path) mediumIndex(med medium) Real {
	switch med {
	case medInnerAV:
		return p.nInnerAV
	case medAV:
		return p.nAV
	case medUpper:
		return p.nUpper
	case medLower:
		return p.nLower
	}
	return p.nWater
}

// regionAt classifies a point in the AV frame by radius (and by the fill
// plane when the path is a partial-fill one).
func (c *Calculator) regionAt(p *Path, pt Vector3) medium {
	r := pt.Len()
	if r < c.avInnerRadius {
		if p.partial {
			if pt.Z >= c.fillZ {
				return medUpper
			}
			return medLower
		}
		return medInnerAV
	}
	if r < c.avOuterRadius {
		return medAV
	}
	return medWater
}

// classifySequence maps the ordered media sequence of a straight segment to
// the path type.
func classifySequence(regions []medium) PathType {
	if len(regions) == 0 {
		return Null
	}
	isInner := func(m medium) bool { return m == medInnerAV || m == medUpper || m == medLower }
	hasInner, hasAV := false, false
	for _, m := range regions {
		if isInner(m) {
			hasInner = true
		}
		if m == medAV {
			hasAV = true
		}
	}
	switch {
	case isInner(regions[0]):
		return SAW
	case regions[0] == medAV && hasInner:
		return ASAW
	case regions[0] == medAV:
		return AW
	case hasInner:
		return WASAW
	case hasAV:
		return WAW
	}
	return W
}

// straightPath partitions the straight segment between the frame start and
// end by the AV spheres (and the fill plane for partial paths), filling the
// per-region distances, interface points and Fresnel crossings.
// fs and fe are in the AV frame; published points are translated back.
func (c *Calculator) straightPath(p *Path, fs, fe Vector3) {
	p.resetDistances()
	p.StraightLine = true

	d := fe.Sub(fs)
	L := d.Len()
	if L < epsDenom {
		p.Type = Null
		return
	}
	d = d.Mul(1 / L)
	p.InitialLightVec = d
	p.IncidentVecOnPMT = d
	p.CalcEnd = c.fromFrame(fe)

	cuts := []Real{0, L}
	for _, R := range []Real{c.avInnerRadius, c.avOuterRadius} {
		if t0, t1, ok := sphereCrossings(fs, d, R); ok {
			for _, t := range []Real{t0, t1} {
				if t > epsDenom && t < L-epsDenom {
					cuts = append(cuts, t)
				}
			}
		}
	}
	if p.partial && math.Abs(d.Z) > epsDenom {
		t := (c.fillZ - fs.Z) / d.Z
		if t > epsDenom && t < L-epsDenom {
			if fs.Add(d.Mul(t)).Len() < c.avInnerRadius {
				cuts = append(cuts, t)
			}
		}
	}
	sort.Float64s(cuts)

	var regions []medium
	p.polyline = append(p.polyline, c.fromFrame(fs))
	for i := 1; i < len(cuts); i++ {
		ta, tb := cuts[i-1], cuts[i]
		if tb-ta < epsDenom {
			continue
		}
		mid := fs.Add(d.Mul(0.5 * (ta + tb)))
		med := c.regionAt(p, mid)
		p.addDist(med, tb-ta)
		if len(regions) == 0 || regions[len(regions)-1] != med {
			regions = append(regions, med)
		}
		if i < len(cuts)-1 {
			cut := fs.Add(d.Mul(tb))
			next := c.regionAt(p, fs.Add(d.Mul(0.5*(tb+cuts[min(i+1, len(cuts)-1)]))))
			normal := cut.Norm()
			onSphere := math.Abs(cut.Len()-c.avInnerRadius) < 1e-6 || math.Abs(cut.Len()-c.avOuterRadius) < 1e-6
			if !onSphere {
				normal = Vector3{0, 0, 1} // fill plane cut
			}
			p.crossings = append(p.crossings, ifaceCrossing{
				point:  c.fromFrame(cut),
				dir:    d,
				normal: normal,
				n1:     p.mediumIndex(med),
				n2:     p.mediumIndex(next),
			})
			if onSphere {
				p.pushAVPoint(c.fromFrame(cut))
			}
			p.polyline = append(p.polyline, c.fromFrame(cut))
		}
	}
	p.polyline = append(p.polyline, c.fromFrame(fe))

	p.Type = classifySequence(regions)
}

// reconstruct rebuilds the 3D polyline for a converged launch angle and
// fills distances, interface points and crossings. It reports TIR detected
// at any interface; ok is false when a leg failed to meet its sphere.
func (c *Calculator) reconstruct(ch *thetaChain, theta Real, plane pathPlane, fs Vector3, p *Path) (tir, ok bool) {
	p.resetDistances()

	var dir Vector3
	if ch.inward {
		dir = plane.dir(-math.Cos(theta), math.Sin(theta))
	} else {
		dir = plane.dir(math.Cos(theta), math.Sin(theta))
	}
	p.InitialLightVec = dir
	pos := fs
	p.polyline = append(p.polyline, c.fromFrame(pos))

	for _, seg := range ch.segments {
		var next Vector3
		switch seg.kind {
		case segSphereOut, segFinal:
			next = vectorToSphereEdge(pos, dir, seg.radius, false)
		case segSphereIn, segMirror:
			next = vectorToSphereEdge(pos, dir, seg.radius, true)
		case segChordExit:
			next = vectorToSphereEdge(pos, dir, seg.radius, false)
		}
		if next == pos {
			return false, false // missed the sphere: wrong regime for this theta
		}
		p.addDist(seg.med, next.Sub(pos).Len())
		p.polyline = append(p.polyline, c.fromFrame(next))

		switch seg.kind {
		case segFinal:
			p.IncidentVecOnPMT = dir
			p.CalcEnd = c.fromFrame(next)
		case segMirror:
			normal := next.Norm()
			dir = reflect3(dir, normal)
			p.pushAVPoint(c.fromFrame(next))
		default:
			normal := next.Norm()
			p.crossings = append(p.crossings, ifaceCrossing{
				point:  c.fromFrame(next),
				dir:    dir,
				normal: normal,
				n1:     seg.n1,
				n2:     seg.n2,
			})
			refr, okRefr := pathRefraction(dir, normal, seg.n1, seg.n2)
			if !okRefr {
				return true, false
			}
			dir = refr
			p.pushAVPoint(c.fromFrame(next))
		}
		pos = next
	}
	return false, true
}
