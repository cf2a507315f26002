package storage

import (
	"database/sql"
	"sort"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names, excluding SQLite internals.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getSchemaSQL returns sorted, whitespace-normalized CREATE statements.
func getSchemaSQL(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT sql FROM sqlite_master WHERE name NOT LIKE 'sqlite_%' AND sql IS NOT NULL")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("failed to scan sql: %v", err)
		}
		out = append(out, strings.Join(strings.Fields(s), " "))
	}
	sort.Strings(out)
	return out
}

var expectedTables = []string{
	"audit_entry",
	"contact_message",
	"content_section",
	"event",
	"outbox",
	"schema_version",
	"subscription",
}

// TestMigrateDB_Fresh tests that all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}

	tables := getTableNames(t, db)
	if strings.Join(tables, ",") != strings.Join(expectedTables, ",") {
		t.Errorf("tables = %v, want %v", tables, expectedTables)
	}
}

// TestMigrateDB_Idempotent tests that a second run is a no-op.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	before := getSchemaSQL(t, db)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}
	after := getSchemaSQL(t, db)
	if strings.Join(before, "\n") != strings.Join(after, "\n") {
		t.Error("schema changed on idempotent run")
	}

	var rows int
	db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows)
	if rows != LatestSchemaVersion() {
		t.Errorf("schema_version rows = %d, want %d", rows, LatestSchemaVersion())
	}
}

// TestMigrateDB_VersionProgression tests version reporting before and after migrating.
func TestMigrateDB_VersionProgression(t *testing.T) {
	db := openTestDB(t)
	if v, err := SchemaVersion(db); err != nil || v != 0 {
		t.Fatalf("initial version = %d, %v; want 0", v, err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	if v, _ := SchemaVersion(db); v != LatestSchemaVersion() {
		t.Errorf("post-migration version = %d, want %d", v, LatestSchemaVersion())
	}
}

// TestMigrateDB_DataSurvival tests that rows written at an earlier version survive later migrations.
func TestMigrateDB_DataSurvival(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	// Rewind to version 1 so migration 2 runs over existing data.
	if _, err := db.Exec("DELETE FROM schema_version WHERE version > 1"); err != nil {
		t.Fatalf("rewind: %v", err)
	}
	_, err := db.Exec(`INSERT INTO event (title, description, month, day, time, location, color, created_at)
		VALUES ('Tasting', 'Cheese', 'OCT', '3', 'noon', 'Deli', 'primary', '2026-10-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB from v1 failed: %v", err)
	}
	var title string
	if err := db.QueryRow("SELECT title FROM event WHERE id = 1").Scan(&title); err != nil || title != "Tasting" {
		t.Errorf("event lost after migration: %q, %v", title, err)
	}
}
