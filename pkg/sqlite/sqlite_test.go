package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func TestDriverPragmas(t *testing.T) {
	db, err := sql.Open("sqlite3_app", filepath.Join(t.TempDir(), "pragmas.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("Failed to query foreign_keys pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("Failed to query journal_mode pragma: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}

	var busy int
	if err := db.QueryRow("PRAGMA busy_timeout").Scan(&busy); err != nil {
		t.Fatalf("Failed to query busy_timeout pragma: %v", err)
	}
	if busy != 5000 {
		t.Errorf("busy_timeout = %d, want 5000", busy)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := sql.Open("sqlite3_app", filepath.Join(t.TempDir(), "fk.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE parents (id TEXT PRIMARY KEY)`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`CREATE TABLE children (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id TEXT NOT NULL REFERENCES parents(id)
	)`)
	if err != nil {
		t.Fatal(err)
	}

	// A dangling reference must be rejected, otherwise the hook did not run.
	if _, err := db.Exec(`INSERT INTO children (parent_id) VALUES ('missing')`); err == nil {
		t.Fatal("Expected foreign key violation, insert succeeded")
	}
}
