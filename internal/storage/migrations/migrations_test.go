package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// A single connection keeps the in-memory database alive across calls.
	db.SetMaxOpenConns(1)
	return db
}

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	for _, table := range []string{"client_storage", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	err := CheckStatus(db)
	if err == nil {
		t.Fatal("CheckStatus() expected error for fresh database, got nil")
	}
	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}
	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after double migration returned error: %v", err)
	}
}
