package database

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

func TestNewDB_SuccessAndTableCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_newdb.db")
	db, err := NewDB(dbPath, DefaultConfig())
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	if db == nil {
		t.Fatalf("NewDB() returned nil DB instance")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("db.Ping() failed: %v", err)
	}

	for _, table := range []string{"settings", "ingest_runs"} {
		var count int
		err := db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		if err != nil {
			t.Fatalf("Error checking for table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("Table %s was not created. Expected count 1, got %d", table, count)
		}
	}
}

func TestNewDB_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen.db")

	db, err := NewDB(dbPath, DefaultConfig())
	if err != nil {
		t.Fatalf("first NewDB() error = %v", err)
	}
	db.Close()

	db, err = NewDB(dbPath, DefaultConfig())
	if err != nil {
		t.Fatalf("second NewDB() error = %v", err)
	}
	defer db.Close()

	exists, err := columnExists(t.Context(), db.DB, "ingest_runs", "error")
	if err != nil {
		t.Fatalf("columnExists() error = %v", err)
	}
	if !exists {
		t.Error("expected ingest_runs.error column")
	}
}

func TestNewDB_InvalidPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing", "dir", "test.db")
	if _, err := NewDB(dbPath, DefaultConfig()); err == nil {
		t.Error("expected error for unwritable path")
	}
}
