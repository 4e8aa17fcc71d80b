package lightpath

import (
	"math"
	"sort"
)

// neckPass walks the finished polyline through the neck region and books
// the extra per-medium distances. The neck is the vertical cylinder pair
// above the sphere cap z > sqrt(Ra^2 - rNeckInner^2): inside the inner
// cylinder is target medium, between the cylinders is acrylic, outside is
// water. Neck distances are additive bookkeeping on top of the spherical
// partition and the cylinder stays anchored to the detector axis.
func (c *Calculator) neckPass(p *Path) {
	if c.neckInnerRadius <= 0 || len(p.polyline) < 2 {
		return
	}
	zNeck := math.Sqrt(c.avInnerRadius*c.avInnerRadius - c.neckInnerRadius*c.neckInnerRadius)

	first := true
	for i := 1; i < len(p.polyline); i++ {
		a, b := p.polyline[i-1], p.polyline[i]
		d := b.Sub(a)
		L := d.Len()
		if L < epsDenom {
			continue
		}
		d = d.Mul(1 / L)

		cuts := []Real{0, L}
		if math.Abs(d.Z) > epsDenom {
			if t := (zNeck - a.Z) / d.Z; t > epsDenom && t < L-epsDenom {
				cuts = append(cuts, t)
			}
		}
		for _, R := range []Real{c.neckInnerRadius, c.neckOuterRadius} {
			if t0, t1, ok := cylinderCrossings(a, d, R); ok {
				for _, t := range []Real{t0, t1} {
					if t > epsDenom && t < L-epsDenom {
						cuts = append(cuts, t)
					}
				}
			}
		}
		sort.Float64s(cuts)

		segHasNeck := false
		for j := 1; j < len(cuts); j++ {
			ta, tb := cuts[j-1], cuts[j]
			if tb-ta < epsDenom {
				continue
			}
			mid := a.Add(d.Mul(0.5 * (ta + tb)))
			if mid.Z <= zNeck {
				continue
			}
			rho := math.Hypot(mid.X, mid.Y)
			if rho >= c.neckOuterRadius {
				continue
			}
			if rho < c.neckInnerRadius {
				p.DistInNeckInnerAV += tb - ta
			} else {
				p.DistInNeckAV += tb - ta
			}
			segHasNeck = true
			p.XAVNeck = true
			entry := a.Add(d.Mul(ta))
			exit := a.Add(d.Mul(tb))
			if first {
				p.PointOnNeck1 = entry
				first = false
				logStep(p.Type.String(), NeckCrossed, 0, 0, 0)
			}
			p.PointOnNeck2 = exit
		}

		// water above the cap booked only between cylinder contacts of a
		// segment that actually met the neck
		if segHasNeck {
			for j := 2; j < len(cuts)-1; j++ {
				ta, tb := cuts[j-1], cuts[j]
				if tb-ta < epsDenom {
					continue
				}
				mid := a.Add(d.Mul(0.5 * (ta + tb)))
				if mid.Z <= zNeck {
					continue
				}
				if math.Hypot(mid.X, mid.Y) >= c.neckOuterRadius {
					p.DistInNeckWater += tb - ta
				}
			}
		}
	}
}
