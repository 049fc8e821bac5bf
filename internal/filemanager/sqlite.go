package filemanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/schematic/internal/item"
	"github.com/zjrosen/schematic/internal/log"
	"github.com/zjrosen/schematic/internal/schematic"
)

// SQLiteExtension is claimed by SQLite in Default.
const SQLiteExtension = ".schdb"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS designators (
	prefix      TEXT PRIMARY KEY,
	next_number INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS parts (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	prefix TEXT NOT NULL DEFAULT '',
	refdes TEXT NOT NULL DEFAULT '',
	value  TEXT NOT NULL DEFAULT '',
	x      REAL NOT NULL,
	y      REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS pins (
	part_id TEXT NOT NULL REFERENCES parts(id) ON DELETE CASCADE,
	idx     INTEGER NOT NULL,
	dx      REAL NOT NULL,
	dy      REAL NOT NULL,
	PRIMARY KEY (part_id, idx)
);
CREATE TABLE IF NOT EXISTS wires (
	id TEXT PRIMARY KEY,
	x1 REAL NOT NULL,
	y1 REAL NOT NULL,
	x2 REAL NOT NULL,
	y2 REAL NOT NULL
);
`

// SQLite stores a document in a single-file SQLite database. Each save
// rewrites the whole sheet in one transaction.
type SQLite struct{}

var _ schematic.FileHandler = SQLite{}

// sheetDSN builds a file: URI for path. The path is escaped so '?' and '#'
// in file names are not read as the query or fragment.
func sheetDSN(path, mode string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("mode", mode)
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: q.Encode()}
	return u.String(), nil
}

func openSheetDB(path, mode string) (*sql.DB, error) {
	dsn, err := sheetDSN(path, mode)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (SQLite) Load(doc *schematic.Document, path string) error {
	db, err := openSheetDB(path, "ro")
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	s, err := readSheet(context.Background(), db)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	log.Debug(log.CatFile, "Read sqlite sheet", "path", path, "parts", len(s.Parts), "wires", len(s.Wires))
	return restore(doc, s)
}

func (SQLite) Save(doc *schematic.Document, path string) error {
	db, err := openSheetDB(path, "rwc")
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	if err := writeSheet(context.Background(), db, snapshot(doc)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

var metaKeys = []string{"version", "title", "author", "comments", "netlist", "zoom",
	"sim.analysis", "sim.transient_start", "sim.transient_stop", "sim.transient_step"}

func writeSheet(ctx context.Context, db *sql.DB, s sheet) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, table := range []string{"pins", "parts", "wires", "designators", "meta"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil { // #nosec G202 -- fixed table names
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	values := []any{s.Version, s.Title, s.Author, s.Comments, s.Netlist, s.Zoom,
		string(s.Sim.Analysis), s.Sim.TransientStart, s.Sim.TransientStop, s.Sim.TransientStep}
	for i, key := range metaKeys {
		if _, err = tx.ExecContext(ctx, "INSERT INTO meta(key, value) VALUES (?, ?)", key, fmt.Sprint(values[i])); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}

	for prefix, next := range s.Designators {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO designators(prefix, next_number) VALUES (?, ?)", prefix, next); err != nil {
			return fmt.Errorf("insert designator %s: %w", prefix, err)
		}
	}

	for _, p := range s.Parts {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO parts(id, name, prefix, refdes, value, x, y) VALUES (?, ?, ?, ?, ?, ?, ?)",
			p.ID, p.Name, p.Prefix, p.RefDes, p.Value, p.At.X, p.At.Y); err != nil {
			return fmt.Errorf("insert part %s: %w", p.ID, err)
		}
		for i, pin := range p.Pins {
			if _, err = tx.ExecContext(ctx,
				"INSERT INTO pins(part_id, idx, dx, dy) VALUES (?, ?, ?, ?)",
				p.ID, i, pin.X, pin.Y); err != nil {
				return fmt.Errorf("insert pin %d of %s: %w", i, p.ID, err)
			}
		}
	}

	for _, w := range s.Wires {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO wires(id, x1, y1, x2, y2) VALUES (?, ?, ?, ?, ?)",
			w.ID, w.From.X, w.From.Y, w.To.X, w.To.Y); err != nil {
			return fmt.Errorf("insert wire %s: %w", w.ID, err)
		}
	}

	return tx.Commit()
}

func readSheet(ctx context.Context, db *sql.DB) (sheet, error) {
	var s sheet

	meta := make(map[string]string)
	rows, err := db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return s, fmt.Errorf("query meta: %w", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			_ = rows.Close()
			return s, err
		}
		meta[k] = v
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return s, err
	}
	if err := decodeMeta(meta, &s); err != nil {
		return s, err
	}

	rows, err = db.QueryContext(ctx, "SELECT prefix, next_number FROM designators")
	if err != nil {
		return s, fmt.Errorf("query designators: %w", err)
	}
	for rows.Next() {
		var prefix string
		var next int
		if err := rows.Scan(&prefix, &next); err != nil {
			_ = rows.Close()
			return s, err
		}
		if s.Designators == nil {
			s.Designators = make(map[string]int)
		}
		s.Designators[prefix] = next
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return s, err
	}

	pins := make(map[string][]item.Coord)
	rows, err = db.QueryContext(ctx, "SELECT part_id, dx, dy FROM pins ORDER BY part_id, idx")
	if err != nil {
		return s, fmt.Errorf("query pins: %w", err)
	}
	for rows.Next() {
		var id string
		var c item.Coord
		if err := rows.Scan(&id, &c.X, &c.Y); err != nil {
			_ = rows.Close()
			return s, err
		}
		pins[id] = append(pins[id], c)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return s, err
	}

	rows, err = db.QueryContext(ctx, "SELECT id, name, prefix, refdes, value, x, y FROM parts ORDER BY rowid")
	if err != nil {
		return s, fmt.Errorf("query parts: %w", err)
	}
	for rows.Next() {
		var p partRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.Prefix, &p.RefDes, &p.Value, &p.At.X, &p.At.Y); err != nil {
			_ = rows.Close()
			return s, err
		}
		p.Pins = pins[p.ID]
		s.Parts = append(s.Parts, p)
	}
	if err := errors.Join(rows.Err(), rows.Close()); err != nil {
		return s, err
	}

	rows, err = db.QueryContext(ctx, "SELECT id, x1, y1, x2, y2 FROM wires ORDER BY rowid")
	if err != nil {
		return s, fmt.Errorf("query wires: %w", err)
	}
	for rows.Next() {
		var w wireRecord
		if err := rows.Scan(&w.ID, &w.From.X, &w.From.Y, &w.To.X, &w.To.Y); err != nil {
			_ = rows.Close()
			return s, err
		}
		s.Wires = append(s.Wires, w)
	}
	return s, errors.Join(rows.Err(), rows.Close())
}

func decodeMeta(meta map[string]string, s *sheet) error {
	if _, ok := meta["version"]; !ok {
		return errors.New("not a schematic database: missing version")
	}
	s.Title = meta["title"]
	s.Author = meta["author"]
	s.Comments = meta["comments"]
	s.Netlist = meta["netlist"]
	s.Sim.Analysis = schematic.Analysis(meta["sim.analysis"])

	scan := []struct {
		key string
		dst any
	}{
		{"version", &s.Version},
		{"zoom", &s.Zoom},
		{"sim.transient_start", &s.Sim.TransientStart},
		{"sim.transient_stop", &s.Sim.TransientStop},
		{"sim.transient_step", &s.Sim.TransientStep},
	}
	for _, f := range scan {
		v, ok := meta[f.key]
		if !ok {
			continue
		}
		if _, err := fmt.Sscan(v, f.dst); err != nil {
			return fmt.Errorf("meta %s: %w", f.key, err)
		}
	}
	return nil
}
