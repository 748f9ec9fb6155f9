// Package persistence provides SQLite-based terrain storage. Elevation is
// stored 16-bit quantized alongside the originating seed and the manual
// modification flag; when that flag is set the stored grid is
// authoritative and regeneration from the seed is known to be
// insufficient.
package persistence

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/terragen/internal/grid"
	"github.com/talgya/terragen/internal/resources"
	"github.com/talgya/terragen/internal/terrain"
)

// DB wraps a SQLite connection for terrain persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS maps (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		preset TEXT NOT NULL,
		sea_level REAL NOT NULL,
		modified INTEGER NOT NULL,
		surgery INTEGER NOT NULL,
		elevation BLOB NOT NULL,
		discovered BLOB NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS deposits (
		map_id TEXT NOT NULL,
		cell INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		amount REAL NOT NULL,
		max_amount REAL NOT NULL,
		PRIMARY KEY (map_id, cell)
	);

	CREATE INDEX IF NOT EXISTS idx_deposits_map ON deposits(map_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveTerrain writes the result's persistent state: quantized elevation,
// seed, flags, deposits, and discovery bits. Derived grids are not stored;
// they are recomputed from elevation on load.
func (db *DB) SaveTerrain(res *terrain.Result) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	elevBlob := packUint16(terrain.Quantize(res.Elevation))
	discBlob := packUint64(res.Deposits.DiscoveredBits())

	_, err = tx.Exec(`INSERT OR REPLACE INTO maps
		(id, seed, width, height, preset, sea_level, modified, surgery, elevation, discovered, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID.String(), res.Seed, res.W, res.H, res.Preset.Name, res.SeaLevel,
		boolInt(res.Modified), boolInt(res.SurgeryApplied),
		elevBlob, discBlob, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert map: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM deposits WHERE map_id = ?", res.ID.String()); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO deposits
		(map_id, cell, kind, amount, max_amount) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	// Deposits are written in sorted cell order so save files are
	// byte-stable across runs.
	for _, cell := range res.Deposits.SortedCells() {
		d := res.Deposits.Deposits[cell]
		if _, err := stmt.Exec(res.ID.String(), cell, d.Kind, d.Amount, d.MaxAmount); err != nil {
			return fmt.Errorf("insert deposit at cell %d: %w", cell, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("terrain saved",
		"id", res.ID,
		"seed", res.Seed,
		"elevation_bytes", humanize.Bytes(uint64(len(elevBlob))),
		"deposits", len(res.Deposits.Deposits),
		"modified", res.Modified,
	)
	return nil
}

// StoredTerrain is the persisted snapshot of a map. When Modified is
// false the seed can regenerate everything; when true the elevation grid
// here is the only source of truth.
type StoredTerrain struct {
	ID       string
	Seed     int64
	W, H     int
	Preset   string
	SeaLevel float64
	Modified bool
	Surgery  bool

	Elevation  *grid.Grid[float64]
	Deposits   *resources.Map
	Discovered []uint64
}

// LoadTerrain reads a stored map by id.
func (db *DB) LoadTerrain(id string) (*StoredTerrain, error) {
	var row struct {
		ID         string  `db:"id"`
		Seed       int64   `db:"seed"`
		Width      int     `db:"width"`
		Height     int     `db:"height"`
		Preset     string  `db:"preset"`
		SeaLevel   float64 `db:"sea_level"`
		Modified   int     `db:"modified"`
		Surgery    int     `db:"surgery"`
		Elevation  []byte  `db:"elevation"`
		Discovered []byte  `db:"discovered"`
	}
	err := db.conn.Get(&row,
		`SELECT id, seed, width, height, preset, sea_level, modified, surgery, elevation, discovered
		 FROM maps WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", id, err)
	}

	quant, err := unpackUint16(row.Elevation, row.Width*row.Height)
	if err != nil {
		return nil, fmt.Errorf("decode elevation for %s: %w", id, err)
	}

	st := &StoredTerrain{
		ID:         row.ID,
		Seed:       row.Seed,
		W:          row.Width,
		H:          row.Height,
		Preset:     row.Preset,
		SeaLevel:   row.SeaLevel,
		Modified:   row.Modified != 0,
		Surgery:    row.Surgery != 0,
		Elevation:  terrain.Dequantize(quant, row.Width, row.Height),
		Deposits:   resources.NewMap(row.Width, row.Height),
		Discovered: unpackUint64(row.Discovered),
	}
	st.Deposits.SetDiscoveredBits(st.Discovered)

	type depositRow struct {
		Cell      int     `db:"cell"`
		Kind      uint8   `db:"kind"`
		Amount    float64 `db:"amount"`
		MaxAmount float64 `db:"max_amount"`
	}
	var deps []depositRow
	err = db.conn.Select(&deps,
		"SELECT cell, kind, amount, max_amount FROM deposits WHERE map_id = ? ORDER BY cell", id)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("load deposits for %s: %w", id, err)
	}
	for _, d := range deps {
		st.Deposits.Deposits[d.Cell] = resources.Deposit{
			Kind:      resources.Kind(d.Kind),
			Amount:    d.Amount,
			MaxAmount: d.MaxAmount,
		}
	}

	return st, nil
}

// ListMaps returns the ids of all stored maps, newest first.
func (db *DB) ListMaps() ([]string, error) {
	var ids []string
	err := db.conn.Select(&ids, "SELECT id FROM maps ORDER BY saved_at DESC")
	return ids, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func packUint16(vals []uint16) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return out
}

func unpackUint16(b []byte, n int) ([]uint16, error) {
	if len(b) != 2*n {
		return nil, fmt.Errorf("elevation blob is %d bytes, want %d", len(b), 2*n)
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return out, nil
}

func packUint64(vals []uint64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(out[8*i:], v)
	}
	return out
}

func unpackUint64(b []byte) []uint64 {
	out := make([]uint64, len(b)/8)
	for i := range out {
		out[i] = binary.LittleEndian.Uint64(b[8*i:])
	}
	return out
}
