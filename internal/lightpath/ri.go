package lightpath

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// RICurve is an immutable refractive-index curve n(E) built from ordered
// (energy, n) samples. Lookups interpolate linearly and clamp at the table
// endpoints. Curves are loaded once and shared between solver instances.
type RICurve struct {
	eMin, eMax Real
	pl         interp.PiecewiseLinear
}

// NewRICurve builds a curve from parallel energy [MeV] and index samples.
// Samples are sorted by energy; duplicate energies are rejected.
func NewRICurve(energies, indices []float64) (*RICurve, error) {
	if len(energies) != len(indices) {
		return nil, fmt.Errorf("refractive index samples mismatched: %d energies vs %d indices", len(energies), len(indices))
	}
	if len(energies) < 2 {
		return nil, fmt.Errorf("refractive index curve needs at least 2 samples, got %d", len(energies))
	}
	type sample struct{ e, n float64 }
	ss := make([]sample, len(energies))
	for i := range energies {
		ss[i] = sample{energies[i], indices[i]}
	}
	sort.Slice(ss, func(i, j int) bool { return ss[i].e < ss[j].e })
	es := make([]float64, len(ss))
	ns := make([]float64, len(ss))
	for i, s := range ss {
		es[i] = s.e
		ns[i] = s.n
	}
	c := &RICurve{eMin: es[0], eMax: es[len(es)-1]}
	if err := c.pl.Fit(es, ns); err != nil {
		return nil, fmt.Errorf("refractive index curve fit: %w", err)
	}
	return c, nil
}

// Eval returns the interpolated index at the given energy [MeV], clamped to
// the table endpoints.
func (c *RICurve) Eval(energy Real) Real {
	if energy < c.eMin {
		energy = c.eMin
	} else if energy > c.eMax {
		energy = c.eMax
	}
	return c.pl.Predict(energy)
}

// EnergyToWavelength converts a photon energy [MeV] to a wavelength [nm].
func EnergyToWavelength(energy Real) Real {
	if energy <= 0 {
		return 0
	}
	return 1.24e3 / (energy * 1e6)
}

// WavelengthToEnergy converts a wavelength [nm] to a photon energy [MeV].
func WavelengthToEnergy(wavelength Real) Real {
	if wavelength <= 0 {
		return 0
	}
	return 1.24e3 / wavelength / 1e6
}

// TableLink exposes the field arrays of one provider table.
type TableLink interface {
	// DArray returns the float array stored under the given field name.
	// Refractive index tables carry the fields "energy" and "RI".
	DArray(field string) ([]float64, error)
}

// Provider hands out optics tables and the detector geometry at BeginOfRun.
type Provider interface {
	// Link resolves a table by name. Medium tables are named
	// "innerav", "av", "water", "upper_target" and "lower_target".
	Link(table string) (TableLink, error)
	// Geometry returns the detector geometry scalars.
	Geometry() (Geometry, error)
}

// Geometry holds the detector scalars loaded at BeginOfRun. Lengths in mm.
type Geometry struct {
	AVInnerRadius   Real
	AVOuterRadius   Real
	NeckInnerRadius Real
	NeckOuterRadius Real
	PMTRadius       Real
	FillZ           Real
	FillFraction    Real // used to derive FillZ when FillZ is not given
	HasFillZ        bool
}

// Validate checks the geometry invariants.
func (g Geometry) Validate() error {
	if !(g.AVInnerRadius > 0 && g.AVInnerRadius < g.AVOuterRadius) {
		return fmt.Errorf("AV radii must satisfy 0 < inner < outer, got %g / %g", g.AVInnerRadius, g.AVOuterRadius)
	}
	if !(g.NeckInnerRadius > 0 && g.NeckInnerRadius < g.NeckOuterRadius) {
		return fmt.Errorf("neck radii must satisfy 0 < inner < outer, got %g / %g", g.NeckInnerRadius, g.NeckOuterRadius)
	}
	if g.PMTRadius <= 0 {
		return fmt.Errorf("PMT radius must be > 0, got %g", g.PMTRadius)
	}
	if g.HasFillZ && (g.FillZ < -g.AVInnerRadius || g.FillZ > g.AVInnerRadius) {
		return fmt.Errorf("fill plane z=%g outside the inner AV radius %g", g.FillZ, g.AVInnerRadius)
	}
	if g.FillFraction < 0 || g.FillFraction > 1 {
		return fmt.Errorf("fill fraction must be in [0,1], got %g", g.FillFraction)
	}
	return nil
}

func loadCurve(p Provider, table string) (*RICurve, error) {
	link, err := p.Link(table)
	if err != nil {
		return nil, err
	}
	es, err := link.DArray("energy")
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", table, err)
	}
	ns, err := link.DArray("RI")
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", table, err)
	}
	return NewRICurve(es, ns)
}
