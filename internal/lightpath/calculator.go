package lightpath

import (
	"fmt"
	"math"
)

// Calculator solves refraction-aware light paths through the layered
// detector. Configure it once with BeginOfRun, then call CalcByPosition /
// CalcByPositionPartial per photon. A Calculator is not safe for
// concurrent use; share the RICurves and give each goroutine its own.
type Calculator struct {
	avInnerRadius   Real
	avOuterRadius   Real
	neckInnerRadius Real
	neckOuterRadius Real
	pmtRadius       Real

	fillZ   Real
	hasFill bool

	innerAVRI, avRI, waterRI *RICurve
	upperRI, lowerRI         *RICurve

	ellieReflect bool
	avOffset     Real

	path Path
}

func NewCalculator() *Calculator { return &Calculator{} }

// BeginOfRun loads the detector geometry and the refractive index curves
// from the provider. The upper and lower target tables are optional: a
// missing upper target falls back to the water curve (gas above the fill
// line behaves like the external medium for bookkeeping) and a missing
// lower target falls back to the inner AV curve.
func (c *Calculator) BeginOfRun(p Provider) error {
	g, err := p.Geometry()
	if err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	c.avInnerRadius = g.AVInnerRadius
	c.avOuterRadius = g.AVOuterRadius
	c.neckInnerRadius = g.NeckInnerRadius
	c.neckOuterRadius = g.NeckOuterRadius
	c.pmtRadius = g.PMTRadius

	if c.innerAVRI, err = loadCurve(p, "innerav"); err != nil {
		return err
	}
	if c.avRI, err = loadCurve(p, "av"); err != nil {
		return err
	}
	if c.waterRI, err = loadCurve(p, "water"); err != nil {
		return err
	}
	if c.upperRI, err = loadCurve(p, "upper_target"); err != nil {
		c.upperRI = c.waterRI
	}
	if c.lowerRI, err = loadCurve(p, "lower_target"); err != nil {
		c.lowerRI = c.innerAVRI
	}

	switch {
	case g.HasFillZ:
		c.fillZ = g.FillZ
		c.hasFill = true
	case g.FillFraction > 0 && g.FillFraction < 1:
		z, err := fillZFromFraction(g.FillFraction, c.avInnerRadius)
		if err != nil {
			return err
		}
		c.fillZ = z
		c.hasFill = true
	default:
		c.fillZ = c.avInnerRadius
		c.hasFill = false
	}
	DebugLogOnce("BeginOfRun: Ra=%v Rb=%v fillZ=%v", c.avInnerRadius, c.avOuterRadius, c.fillZ)
	return nil
}

// fillZFromFraction inverts the spherical cap volume
//
//	V(z) = pi*(2R^3/3 + R^2*z - z^3/3)
//
// for the fill plane height giving the requested volume fraction.
func fillZFromFraction(frac, R Real) (Real, error) {
	total := 4 * math.Pi * R * R * R / 3
	f := func(z Real) Real {
		return math.Pi*(2*R*R*R/3+R*R*z-z*z*z/3) - frac*total
	}
	df := func(z Real) Real { return math.Pi * (R*R - z*z) }
	z, ok := rtSafe(f, df, -R, R, 1e-9*R, RTSafeMaxIter)
	if !ok {
		return 0, fmt.Errorf("fill fraction %g: cap volume inversion failed", frac)
	}
	return z, nil
}

// SetELLIEReflect toggles reflected-path mode: start and end both in the
// water, single specular bounce off the AV outer surface.
func (c *Calculator) SetELLIEReflect(on bool) { c.ellieReflect = on }

// SetAVOffset sets the vertical AV displacement from the PSUP centre [mm].
func (c *Calculator) SetAVOffset(z Real) { c.avOffset = z }

func (c *Calculator) AVOffset() Real      { return c.avOffset }
func (c *Calculator) AVInnerRadius() Real { return c.avInnerRadius }
func (c *Calculator) AVOuterRadius() Real { return c.avOuterRadius }
func (c *Calculator) PMTRadius() Real     { return c.pmtRadius }

// FillZ is the fill plane height in the AV frame [mm].
func (c *Calculator) FillZ() Real { return c.fillZ }

// Path returns the most recent result record.
func (c *Calculator) Path() *Path { return &c.path }

// toFrame translates a detector-frame point into the AV-centred frame.
func (c *Calculator) toFrame(v Vector3) Vector3 {
	return Vector3{v.X, v.Y, v.Z - c.avOffset}
}

// fromFrame translates an AV-frame point back to the detector frame.
func (c *Calculator) fromFrame(v Vector3) Vector3 {
	return Vector3{v.X, v.Y, v.Z + c.avOffset}
}

// CalcByPosition computes the full-fill path from start to end.
// tolerance [mm] is the accepted distance between the solved end point and
// the requested one; tolerance == 0 requests plain straight-line
// partitioning without refraction.
func (c *Calculator) CalcByPosition(start, end Vector3, energy, tolerance Real) Path {
	p := c.calc(start, end, energy, tolerance, false)
	c.path = p
	return p
}

func (c *Calculator) newPath(start, end Vector3, energy, tolerance Real, partial bool) Path {
	if energy <= 0 || !isFinite(energy) {
		energy = DefaultEnergyMeV
	}
	p := Path{
		Type:         Null,
		Start:        start,
		End:          end,
		Energy:       energy,
		Tolerance:    tolerance,
		ELLIEReflect: c.ellieReflect,
		partial:      partial,
	}
	if c.innerAVRI == nil {
		return p // BeginOfRun not called, served as Null
	}
	p.nInnerAV = c.innerAVRI.Eval(energy)
	p.nAV = c.avRI.Eval(energy)
	p.nWater = c.waterRI.Eval(energy)
	p.nUpper = c.upperRI.Eval(energy)
	p.nLower = c.lowerRI.Eval(energy)
	return p
}

func (c *Calculator) calc(start, end Vector3, energy, tolerance Real, partial bool) Path {
	p := c.newPath(start, end, energy, tolerance, partial)
	if c.innerAVRI == nil || !start.IsFinite() || !end.IsFinite() || !isFinite(tolerance) || tolerance < 0 {
		logStep(Null.String(), Published, 0, 0, 0)
		return p
	}
	fs, fe := c.toFrame(start), c.toFrame(end)

	if tolerance == 0 {
		c.straightPath(&p, fs, fe)
		c.neckPass(&p)
		logStep(p.Type.String(), Published, 0, 0, 0)
		return p
	}

	r0, re := fs.Len(), fe.Len()
	if c.ellieReflect && r0 > c.avOuterRadius && re > c.avOuterRadius {
		p.Type = WRefl
		target := math.Acos(clampAbs1(fs.Norm().Dot(fe.Norm())))
		maxSep := 0.5 * (reflectionAngle(fs, c.avOuterRadius) + reflectionAngle(fe, c.avOuterRadius))
		if target >= maxSep {
			// end point lies in the mirror's shadow: no grazing bounce
			// can span this separation
			p.ResvHit = true
			logStep(p.Type.String(), RootFailed, 0, target, 0)
			c.straightPath(&p, fs, fe)
			p.Type = WRefl
		} else {
			c.solve(&p, fs, fe)
		}
		c.neckPass(&p)
		logStep(p.Type.String(), Published, 0, 0, p.FinalLoop)
		return p
	}

	p.Type = c.classify(fs, fe)
	logStep(p.Type.String(), Classified, 0, 0, 0)
	if p.Type == W {
		c.straightPath(&p, fs, fe)
	} else {
		c.solve(&p, fs, fe)
	}
	c.neckPass(&p)
	logStep(p.Type.String(), Published, 0, 0, p.FinalLoop)
	return p
}

// classify picks the topology from the straight probe between the frame
// start and end.
func (c *Calculator) classify(fs, fe Vector3) PathType {
	r0 := fs.Len()
	seg := fe.Sub(fs)
	L := seg.Len()
	d := seg.Mul(1 / L)
	crossesInner := segmentHitsSphere(fs, d, L, c.avInnerRadius)
	crossesOuter := segmentHitsSphere(fs, d, L, c.avOuterRadius)
	switch {
	case r0 < c.avInnerRadius:
		return SAW
	case r0 < c.avOuterRadius:
		if crossesInner {
			return ASAW
		}
		return AW
	case crossesInner:
		return WASAW
	case crossesOuter:
		return WAW
	}
	return W
}

func segmentHitsSphere(p, d Vector3, L, R Real) bool {
	t0, t1, ok := sphereCrossings(p, d, R)
	if !ok {
		return false
	}
	return (t0 > epsDenom && t0 < L) || (t1 > epsDenom && t1 < L)
}

func (c *Calculator) buildChain(typ PathType, r0, re Real, p *Path) *thetaChain {
	nt, na, nw := p.nInnerAV, p.nAV, p.nWater
	ra, rb := c.avInnerRadius, c.avOuterRadius
	switch typ {
	case SAW:
		return chainSAW(r0, ra, rb, re, nt, na, nw)
	case AW:
		return chainAW(r0, rb, re, na, nw)
	case ASAW:
		return chainASAW(r0, ra, rb, re, nt, na, nw)
	case WAW:
		return chainWAW(r0, rb, re, na, nw)
	case WASAW:
		return chainWASAW(r0, ra, rb, re, nt, na, nw)
	case WRefl:
		return chainWRefl(r0, rb, re, nw)
	}
	return nil
}

// sibling is the alternate topology sharing the same start region: a path
// classified by the straight probe can land on the other side of the
// inner-sphere grazing angle once refraction bends it.
func sibling(typ PathType) PathType {
	switch typ {
	case AW:
		return ASAW
	case ASAW:
		return AW
	case WAW:
		return WASAW
	case WASAW:
		return WAW
	}
	return Null
}

// solveChain runs the bracketed root find for one chain. On the primary
// branch failure it retries the second monotone branch when the chain has
// one. snellLimited reports that the bracket was cut short by a
// refractive-index coefficient, so no root means total internal reflection.
func solveChain(ch *thetaChain, target, xAcc Real) (theta Real, ok, snellLimited bool) {
	f, df := ch.residual(target)
	lo, hi, snell := ch.bracket()
	theta, ok = rtSafe(f, df, lo, hi, xAcc, RTSafeMaxIter)
	if ok {
		return theta, true, snell
	}
	if lo2, hi2, has2 := ch.bracket2(); has2 {
		theta, ok = rtSafe(f, df, lo2, hi2, xAcc, RTSafeMaxIter)
		if ok {
			return theta, true, snell
		}
	}
	return math.NaN(), false, snell
}

// solve finds the launch angle for the classified topology, reconstructs
// the 3D path and iterates until the solved end point lands within the
// tolerance of the requested one. Failures fall back to the straight-line
// partition with IsTIR or ResvHit raised.
func (c *Calculator) solve(p *Path, fs, fe Vector3) {
	plane, okPlane := newPathPlane(fs, fe)
	if !okPlane {
		// start, end and centre are colinear: the path is radial and
		// refraction cannot bend it
		c.straightPath(p, fs, fe)
		return
	}
	r0, re := fs.Len(), fe.Len()
	target := math.Acos(clampAbs1(fs.Norm().Dot(fe.Norm())))

	ch := c.buildChain(p.Type, r0, re, p)
	triedSibling := false
	converged := false

	for i := 0; i < LoopCeiling; i++ {
		xAcc := p.Tolerance / (re * Real(i+1))
		if xAcc < 1e-14 {
			xAcc = 1e-14
		}
		theta, ok, snell := solveChain(ch, target, xAcc)
		if !ok {
			if sib := sibling(ch.typ); sib != Null && !triedSibling {
				triedSibling = true
				logStep(ch.typ.String(), Fallback, 0, 0, i)
				ch = c.buildChain(sib, r0, re, p)
				continue
			}
			logStep(ch.typ.String(), RootFailed, 0, 0, i)
			if snell {
				p.IsTIR = true
				logStep(ch.typ.String(), TIRDetected, 0, 0, i)
			} else {
				p.ResvHit = true
			}
			c.straightPath(p, fs, fe)
			p.Type = ch.typ
			return
		}

		tir, okRecon := c.reconstruct(ch, theta, plane, fs, p)
		if tir {
			p.IsTIR = true
			logStep(ch.typ.String(), TIRDetected, theta, 0, i)
			c.straightPath(p, fs, fe)
			p.Type = ch.typ
			return
		}
		if !okRecon {
			if sib := sibling(ch.typ); sib != Null && !triedSibling {
				triedSibling = true
				logStep(ch.typ.String(), Fallback, theta, 0, i)
				ch = c.buildChain(sib, r0, re, p)
				continue
			}
			p.ResvHit = true
			c.straightPath(p, fs, fe)
			p.Type = ch.typ
			return
		}

		miss := p.CalcEnd.Sub(p.End).Len()
		if miss <= p.Tolerance {
			p.Type = ch.typ
			p.FinalLoop = i
			converged = true
			logStep(ch.typ.String(), RootFound, theta, miss, i)
			break
		}
		logStep(ch.typ.String(), Retried, theta, miss, i)
	}
	if !converged {
		// best effort path kept: distances are populated but the end
		// point stayed outside the tolerance
		p.Type = ch.typ
		p.FinalLoop = LoopCeiling - 1
		p.ResvHit = true
	}
}
