package lightpath

import (
	"encoding/json"
	"fmt"
	"os"
)

// MediumCfg carries the interpolation samples of one optical medium.
type MediumCfg struct {
	Energy []float64 `json:"energy"` // MeV
	RI     []float64 `json:"ri"`
}

// GeometryCfg mirrors the Geometry scalars in the JSON detector file.
type GeometryCfg struct {
	AVInnerRadius   Real  `json:"avInnerRadius"`
	AVOuterRadius   Real  `json:"avOuterRadius"`
	NeckInnerRadius Real  `json:"neckInnerRadius"`
	NeckOuterRadius Real  `json:"neckOuterRadius"`
	PMTRadius       Real  `json:"pmtRadius"`
	FillZ           *Real `json:"fillZ,omitempty"`
	FillFraction    Real  `json:"fillFraction,omitempty"`
}

// PathRequestCfg is one light path to solve from the CLI.
type PathRequestCfg struct {
	Start            [3]Real  `json:"start"`
	End              [3]Real  `json:"end"`
	Energy           Real     `json:"energy,omitempty"`    // MeV, 0 selects the default
	Tolerance        Real     `json:"tolerance"`           // mm, 0 selects straight-line mode
	Partial          bool     `json:"partial,omitempty"`   // use the fill plane
	PMTNormal        *[3]Real `json:"pmtNormal,omitempty"` // enables solid angle / Fresnel output
	SolidAnglePoints int      `json:"solidAnglePoints,omitempty"`
}

// Config is the JSON detector description consumed by the CLI and tests.
// Media are keyed by the provider table names ("innerav", "av", "water",
// "upper_target", "lower_target"). When Database is set the optics and
// geometry are read from that SQLite file instead of the JSON tables.
type Config struct {
	Geometry     GeometryCfg          `json:"geometry"`
	Media        map[string]MediumCfg `json:"media"`
	Database     string               `json:"database,omitempty"`
	AVOffset     Real                 `json:"avOffset,omitempty"`
	ELLIEReflect bool                 `json:"ellieReflect,omitempty"`
	Paths        []PathRequestCfg     `json:"paths"`
}

func loadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// memLink adapts one MediumCfg to the TableLink contract.
type memLink struct {
	name string
	cfg  MediumCfg
}

func (l memLink) DArray(field string) ([]float64, error) {
	switch field {
	case "energy":
		return l.cfg.Energy, nil
	case "RI":
		return l.cfg.RI, nil
	}
	return nil, fmt.Errorf("table %q has no field %q", l.name, field)
}

// MemProvider serves optics tables and geometry from an in-memory Config.
type MemProvider struct {
	cfg *Config
}

// NewMemProvider wraps a parsed Config.
func NewMemProvider(cfg *Config) *MemProvider { return &MemProvider{cfg: cfg} }

// LoadConfigProvider reads a JSON detector file and wraps it as a Provider.
func LoadConfigProvider(path string) (*MemProvider, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewMemProvider(cfg), nil
}

func (p *MemProvider) Link(table string) (TableLink, error) {
	m, ok := p.cfg.Media[table]
	if !ok {
		return nil, fmt.Errorf("no such table %q", table)
	}
	return memLink{name: table, cfg: m}, nil
}

func (p *MemProvider) Geometry() (Geometry, error) {
	gc := p.cfg.Geometry
	g := Geometry{
		AVInnerRadius:   gc.AVInnerRadius,
		AVOuterRadius:   gc.AVOuterRadius,
		NeckInnerRadius: gc.NeckInnerRadius,
		NeckOuterRadius: gc.NeckOuterRadius,
		PMTRadius:       gc.PMTRadius,
		FillFraction:    gc.FillFraction,
	}
	if gc.FillZ != nil {
		g.FillZ = *gc.FillZ
		g.HasFillZ = true
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}
