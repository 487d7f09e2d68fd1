package shared

import (
	"database/sql"
	"testing"
	"testing/fstest"
)

func TestMigrationRunner(t *testing.T) {
	openMemory := func(t *testing.T) *sql.DB {
		t.Helper()
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		ConfigureDatabase(db, 1, 1)
		t.Cleanup(func() { db.Close() })
		return db
	}

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		if migrations[0].Name != "create_requests" {
			t.Errorf("expected first migration name create_requests, got %s", migrations[0].Name)
		}
	})

	t.Run("readMigrations rejects incomplete pairs", func(t *testing.T) {
		fsys := fstest.MapFS{
			"sql/0001_a_up.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		}
		if _, err := readMigrations(fsys, "sql"); err == nil {
			t.Error("expected error for migration without down SQL")
		}
	})

	t.Run("readMigrations ignores unrelated files", func(t *testing.T) {
		fsys := fstest.MapFS{
			"sql/0002_b_up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER);")},
			"sql/0002_b_down.sql": {Data: []byte("DROP TABLE b;")},
			"sql/README.md":       {Data: []byte("notes")},
			"sql/x_up.sql":        {Data: []byte("SELECT 1;")},
		}
		migrations, err := readMigrations(fsys, "sql")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(migrations) != 1 || migrations[0].Version != 2 {
			t.Errorf("expected a single version 2 migration, got %+v", migrations)
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db := openMemory(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		if _, err := db.Exec("SELECT 1 FROM requests LIMIT 1"); err != nil {
			t.Errorf("requests table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var newCount int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount); err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount >= count {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", newCount, count)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db := openMemory(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})

	t.Run("OpenDatabase", func(t *testing.T) {
		db, err := OpenDatabase(DatabaseConfig{Enabled: true, Path: ":memory:"})
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := db.Exec("SELECT 1 FROM requests_sequence WHERE id = 1"); err != nil {
			t.Errorf("requests_sequence should exist: %v", err)
		}
	})
}
