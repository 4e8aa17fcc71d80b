package lightpath

import (
	"database/sql"
	"fmt"
)

const opticsSchema = `
CREATE TABLE IF NOT EXISTS optics (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    medium  TEXT NOT NULL,
    energy  REAL NOT NULL,
    ri      REAL NOT NULL
);
`

const opticsIndex = `
CREATE INDEX IF NOT EXISTS idx_optics_medium
ON optics(medium, energy);
`

const geometrySchema = `
CREATE TABLE IF NOT EXISTS geometry (
    key    TEXT PRIMARY KEY,
    value  REAL NOT NULL
);
`

// DBProvider serves optics tables and geometry from SQLite. Open the
// database with the modernc.org/sqlite driver:
//
//	db, err := sql.Open("sqlite", path)
type DBProvider struct {
	db *sql.DB
}

// NewDBProvider initializes the optics and geometry tables and returns a
// provider backed by db.
func NewDBProvider(db *sql.DB) (*DBProvider, error) {
	for _, stmt := range []string{opticsSchema, opticsIndex, geometrySchema} {
		if _, err := db.Exec(stmt); err != nil {
			return nil, err
		}
	}
	return &DBProvider{db: db}, nil
}

// PutMedium stores the interpolation samples for one medium, replacing any
// previous rows.
func (p *DBProvider) PutMedium(medium string, energies, indices []float64) error {
	if len(energies) != len(indices) {
		return fmt.Errorf("medium %q: %d energies vs %d indices", medium, len(energies), len(indices))
	}
	tx, err := p.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM optics WHERE medium = ?`, medium); err != nil {
		tx.Rollback()
		return err
	}
	for i := range energies {
		if _, err := tx.Exec(
			`INSERT INTO optics (medium, energy, ri) VALUES (?, ?, ?)`,
			medium, energies[i], indices[i],
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// PutGeometry stores one geometry scalar.
func (p *DBProvider) PutGeometry(key string, value float64) error {
	_, err := p.db.Exec(
		`INSERT INTO geometry (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

type dbLink struct {
	p      *DBProvider
	medium string
}

func (l dbLink) DArray(field string) ([]float64, error) {
	var col string
	switch field {
	case "energy":
		col = "energy"
	case "RI":
		col = "ri"
	default:
		return nil, fmt.Errorf("table %q has no field %q", l.medium, field)
	}
	rows, err := l.p.db.Query(
		`SELECT `+col+` FROM optics WHERE medium = ? ORDER BY energy ASC`, l.medium)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no such table %q", l.medium)
	}
	return out, nil
}

func (p *DBProvider) Link(table string) (TableLink, error) {
	var n int
	err := p.db.QueryRow(`SELECT COUNT(*) FROM optics WHERE medium = ?`, table).Scan(&n)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("no such table %q", table)
	}
	return dbLink{p: p, medium: table}, nil
}

func (p *DBProvider) Geometry() (Geometry, error) {
	rows, err := p.db.Query(`SELECT key, value FROM geometry`)
	if err != nil {
		return Geometry{}, err
	}
	defer rows.Close()

	var g Geometry
	for rows.Next() {
		var key string
		var v float64
		if err := rows.Scan(&key, &v); err != nil {
			return Geometry{}, err
		}
		switch key {
		case "av_inner_radius":
			g.AVInnerRadius = v
		case "av_outer_radius":
			g.AVOuterRadius = v
		case "neck_inner_radius":
			g.NeckInnerRadius = v
		case "neck_outer_radius":
			g.NeckOuterRadius = v
		case "pmt_radius":
			g.PMTRadius = v
		case "fill_z":
			g.FillZ = v
			g.HasFillZ = true
		case "fill_fraction":
			g.FillFraction = v
		}
	}
	if err := rows.Err(); err != nil {
		return Geometry{}, err
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}
