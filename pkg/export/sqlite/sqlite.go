// Package sqlite writes a network into a standalone SQLite database.
//
// The schema (schema.sql, embedded) has one table per entity plus a stops
// table holding every line's path in order. Waypoints appear only as stops
// with a NULL station. The station_lines view answers "which lines serve
// this station" the same way Station.Lines does.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"io/fs"
	"os"

	_ "modernc.org/sqlite"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/network"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the embedded DDL.
func Schema() string { return schemaSQL }

// Export writes net to a new database at path, replacing any existing file.
func Export(ctx context.Context, net *network.Network, path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "replace %s", path)
	}
	db, err := Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()
	return Write(ctx, db, net)
}

// Open opens (creating if needed) a database at path with foreign keys on
// and the schema applied.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "open %s", path)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "open %s", path)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "create schema")
	}
	return db, nil
}

// Write inserts net into db in one transaction.
func Write(ctx context.Context, db *sql.DB, net *network.Network) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "begin export")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = writeNetwork(ctx, tx, net); err != nil {
		return err
	}
	if err = writeStations(ctx, tx, net); err != nil {
		return err
	}
	if err = writeLines(ctx, tx, net); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "commit export")
	}
	return nil
}

func writeNetwork(ctx context.Context, tx *sql.Tx, net *network.Network) error {
	var xmin, xmax, zmin, zmax sql.NullInt64
	if r, ok := net.XRange(); ok {
		xmin, xmax = nullInt(r.Min), nullInt(r.Max)
	}
	if r, ok := net.ZRange(); ok {
		zmin, zmax = nullInt(r.Min), nullInt(r.Max)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO network (name, x_min, x_max, z_min, z_max) VALUES (?, ?, ?, ?, ?)`,
		net.Name(), xmin, xmax, zmin, zmax)
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "insert network")
	}
	return nil
}

func writeStations(ctx context.Context, tx *sql.Tx, net *network.Network) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stations (name, slug, x, z, notes) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "prepare stations")
	}
	defer stmt.Close()

	for st := range net.Stations() {
		if _, err := stmt.ExecContext(ctx, st.Name(), st.Slug(), st.X(), st.Z(), nullString(st.Notes())); err != nil {
			return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "insert station %q", st.Name())
		}
	}
	return nil
}

func writeLines(ctx context.Context, tx *sql.Tx, net *network.Network) error {
	lineStmt, err := tx.PrepareContext(ctx, `INSERT INTO lines
		(number, name, direction, flow, level, type, color, down_label, up_label, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "prepare lines")
	}
	defer lineStmt.Close()
	stopStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stops (line, position, station, landing, x, z) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "prepare stops")
	}
	defer stopStmt.Close()

	for line := range net.Lines() {
		color, err := line.Color()
		if err != nil {
			return err
		}
		down, err := line.DownDirection()
		if err != nil {
			return err
		}
		up, err := line.UpDirection()
		if err != nil {
			return err
		}
		if _, err := lineStmt.ExecContext(ctx, line.Number(), line.Name(),
			line.Direction().String(), line.Flow().String(), line.Level().String(), line.Type().String(),
			color, down, up, nullString(line.Notes())); err != nil {
			return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "insert line %d", line.Number())
		}

		position := 0
		for st, landing := range line.Stops() {
			var station sql.NullString
			if !st.IsWaypoint() {
				station = nullString(st.Name())
			}
			if _, err := stopStmt.ExecContext(ctx, line.Number(), position, station,
				nullString(landing), st.X(), st.Z()); err != nil {
				return rgerrors.Wrap(rgerrors.ErrCodeStorage, err, "insert stop %d of line %d", position, line.Number())
			}
			position++
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
