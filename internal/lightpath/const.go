package lightpath

// Real is the scalar type used throughout the solver.
type Real = float64

const (
	// DefaultEnergyMeV is the photon energy used when the caller does not
	// specify one. It corresponds to a 400 nm wavelength.
	DefaultEnergyMeV = 3.103125e-6

	// RTSafeMaxIter bounds the inner Newton-Raphson/bisection loop.
	RTSafeMaxIter = 50
	// LoopCeiling bounds the outer locality-retry loop.
	LoopCeiling = 20

	// hot-loop guards shared by the angle functions and their derivatives
	epsDenom = 1e-12
	bigSlope = 1e12

	// epsEdge keeps theta brackets strictly inside the domain where every
	// arcsine argument stays below one.
	epsEdge = 1e-9

	// maxWalkSegments bounds the partial-fill interface walker.
	maxWalkSegments = 16
)
