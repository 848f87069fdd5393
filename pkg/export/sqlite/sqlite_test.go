package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leafstorm/railgen/internal/testnet"
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

func exported(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metro.db")
	if err := Export(ctx, testnet.Metro(t), path); err != nil {
		t.Fatalf("Export error: %v", err)
	}
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("%s: %v", query, err)
	}
	return n
}

func TestExportCounts(t *testing.T) {
	db := exported(t)
	tests := []struct {
		query string
		want  int
	}{
		{"SELECT COUNT(*) FROM network", 1},
		{"SELECT COUNT(*) FROM stations", 3},
		{"SELECT COUNT(*) FROM lines", 3},
		{"SELECT COUNT(*) FROM stops", 9},
		{"SELECT COUNT(*) FROM stops WHERE station IS NULL", 1},
	}
	for _, tt := range tests {
		if got := count(t, db, tt.query); got != tt.want {
			t.Errorf("%s = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestExportNetwork(t *testing.T) {
	db := exported(t)
	var name string
	var xmin, zmax int
	err := db.QueryRow("SELECT name, x_min, z_max FROM network").Scan(&name, &xmin, &zmax)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Metro" || xmin != -500 || zmax != 400 {
		t.Errorf("network row = %q %d %d", name, xmin, zmax)
	}
}

func TestExportLineOrder(t *testing.T) {
	db := exported(t)
	rows, err := db.Query(`SELECT COALESCE(station, '(waypoint)'), COALESCE(landing, '')
		FROM stops WHERE line = 1 ORDER BY position`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var station, landing string
		if err := rows.Scan(&station, &landing); err != nil {
			t.Fatal(err)
		}
		got = append(got, station+"|"+landing)
	}
	want := []string{"Old Town|Platform 2", "Central|Platform 1", "(waypoint)|", "Harbour|"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("line 1 stops = %v, want %v", got, want)
	}

	var color, down, level string
	if err := db.QueryRow("SELECT color, down_label, level FROM lines WHERE number = 2").Scan(&color, &down, &level); err != nil {
		t.Fatal(err)
	}
	if color != "#d35400" || down != "Outbound" || level != "el" {
		t.Errorf("line 2 = %s %s %s", color, down, level)
	}
}

func TestStationLinesView(t *testing.T) {
	db := exported(t)
	if got := count(t, db, "SELECT COUNT(*) FROM station_lines WHERE station = ?", "Central"); got != 3 {
		t.Errorf("Central served by %d line entries, want 3", got)
	}
}

func TestExportReplacesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "metro.db")
	if err := os.WriteFile(path, []byte("not a database"), 0o644); err != nil {
		t.Fatal(err)
	}
	net := testnet.Metro(t)
	for range 2 {
		if err := Export(ctx, net, path); err != nil {
			t.Fatalf("Export error: %v", err)
		}
	}
	db, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if got := count(t, db, "SELECT COUNT(*) FROM stations"); got != 3 {
		t.Errorf("stations = %d after re-export, want 3", got)
	}
}

func TestExportUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "metro.db")
	err := Export(context.Background(), testnet.Metro(t), path)
	if !rgerrors.Is(err, rgerrors.ErrCodeStorage) {
		t.Errorf("error = %v, want STORAGE_ERROR", err)
	}
}
