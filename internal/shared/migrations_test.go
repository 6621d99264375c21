package shared

import (
	"database/sql"
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n); err != nil {
		t.Fatalf("sqlite_master: %v", err)
	}
	return n == 1
}

func TestSchemaMigrations(t *testing.T) {
	t.Run("scripts are paired and ordered", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("loadMigrations: %v", err)
		}
		names := make([]string, 0, len(migrations))
		for _, m := range migrations {
			names = append(names, m.Name)
		}
		if !slices.Equal(names, []string{"create_songs", "create_conversions"}) {
			t.Errorf("names = %v", names)
		}
		if !slices.IsSortedFunc(migrations, func(a, b Migration) int { return a.Version - b.Version }) {
			t.Error("migrations not sorted by version")
		}
	})

	t.Run("fresh library has no version", func(t *testing.T) {
		db := openMemory(t)
		v, err := SchemaVersion(db)
		if err != nil || v != -1 {
			t.Errorf("SchemaVersion = %d, %v; want -1", v, err)
		}
		if err := RollbackMigration(db); !errors.Is(err, ErrNothingToRollback) {
			t.Errorf("rollback on empty schema: err = %v", err)
		}
	})

	t.Run("apply then roll back", func(t *testing.T) {
		db := openMemory(t)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations: %v", err)
		}
		for _, table := range []string{"songs", "songs_sequence", "conversions", "conversions_sequence"} {
			if !tableExists(t, db, table) {
				t.Errorf("missing table %s", table)
			}
		}
		if v, _ := SchemaVersion(db); v != 1 {
			t.Errorf("version = %d, want 1", v)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("RollbackMigration: %v", err)
		}
		if tableExists(t, db, "conversions") {
			t.Error("conversions should be dropped")
		}
		if !tableExists(t, db, "songs") {
			t.Error("songs should survive rolling back the newest migration")
		}
		if v, _ := SchemaVersion(db); v != 0 {
			t.Errorf("version after rollback = %d, want 0", v)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("second rollback: %v", err)
		}
		if v, _ := SchemaVersion(db); v != -1 {
			t.Errorf("version after full rollback = %d, want -1", v)
		}
	})

	t.Run("rerunning is a no-op", func(t *testing.T) {
		db := openMemory(t)
		for range 2 {
			if err := RunMigrations(db); err != nil {
				t.Fatalf("RunMigrations: %v", err)
			}
		}
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatal(err)
		}
		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("applied %d, want %d", count, len(migrations))
		}
		var seq int
		if err := db.QueryRow("SELECT COUNT(*) FROM songs_sequence").Scan(&seq); err != nil || seq != 1 {
			t.Errorf("songs_sequence rows = %d, %v; want 1", seq, err)
		}
	})

	t.Run("file library in a new directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "chordx.db")
		db, err := NewDatabase(path)
		if err != nil {
			t.Fatalf("NewDatabase: %v", err)
		}
		defer db.Close()
		if err := RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations: %v", err)
		}
		var mode string
		if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil || mode != "wal" {
			t.Errorf("journal_mode = %q, %v; want wal", mode, err)
		}
	})
}

func TestSplitStatements(t *testing.T) {
	script := `-- header
CREATE TABLE a (x TEXT); -- trailing

INSERT INTO a (x) VALUES ('b');
;`
	got := splitStatements(script)
	want := []string{"CREATE TABLE a (x TEXT)", "INSERT INTO a (x) VALUES ('b')"}
	if !slices.Equal(got, want) {
		t.Errorf("splitStatements = %q, want %q", got, want)
	}
}
