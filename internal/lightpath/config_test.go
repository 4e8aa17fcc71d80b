package lightpath

import (
	"os"
	"path/filepath"
	"testing"
)

const testDetectorJSON = `{
  "geometry": {
    "avInnerRadius": 6005,
    "avOuterRadius": 6060,
    "neckInnerRadius": 730,
    "neckOuterRadius": 760,
    "pmtRadius": 137,
    "fillZ": 0
  },
  "media": {
    "innerav": {"energy": [1e-6, 1e-5], "ri": [1.50, 1.50]},
    "av":      {"energy": [1e-6, 1e-5], "ri": [1.49, 1.49]},
    "water":   {"energy": [1e-6, 1e-5], "ri": [1.33, 1.33]}
  },
  "paths": [
    {"start": [0, 0, 0], "end": [8390, 0, 0], "tolerance": 0}
  ]
}`

func TestLoadConfigProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detector.json")
	if err := os.WriteFile(path, []byte(testDetectorJSON), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := LoadConfigProvider(path)
	if err != nil {
		t.Fatalf("LoadConfigProvider: %v", err)
	}
	g, err := p.Geometry()
	if err != nil {
		t.Fatalf("Geometry: %v", err)
	}
	if g.AVInnerRadius != 6005 || g.AVOuterRadius != 6060 {
		t.Fatalf("geometry: %+v", g)
	}
	if !g.HasFillZ || g.FillZ != 0 {
		t.Fatalf("explicit fillZ=0 lost: %+v", g)
	}

	link, err := p.Link("water")
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	ri, err := link.DArray("RI")
	if err != nil {
		t.Fatalf("DArray: %v", err)
	}
	if len(ri) != 2 || ri[0] != 1.33 {
		t.Fatalf("water RI: %v", ri)
	}
	if _, err := link.DArray("absorption"); err == nil {
		t.Fatalf("unknown field accepted")
	}
	if _, err := p.Link("mud"); err == nil {
		t.Fatalf("unknown table accepted")
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	if _, err := LoadConfigProvider(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("missing file accepted")
	}
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfigProvider(path); err == nil {
		t.Fatalf("broken JSON accepted")
	}
}

func TestMemProvider_RejectsBadGeometry(t *testing.T) {
	cfg := &Config{
		Geometry: GeometryCfg{AVInnerRadius: 6060, AVOuterRadius: 6005,
			NeckInnerRadius: 730, NeckOuterRadius: 760, PMTRadius: 137},
	}
	if _, err := NewMemProvider(cfg).Geometry(); err == nil {
		t.Fatalf("inverted radii accepted")
	}
}
