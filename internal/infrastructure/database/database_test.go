package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// openTestDB opens a fresh SQLite database in a temp directory.
func openTestDB(t *testing.T, driver string) *DB {
	t.Helper()

	db, err := Open(context.Background(), Config{
		Driver:      driver,
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open(%q) error = %v", driver, err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	return db
}

func TestOpen(t *testing.T) {
	for _, driver := range []string{DriverMattn, DriverModernc} {
		t.Run(driver, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

			db, err := Open(context.Background(), Config{
				Driver:      driver,
				Path:        dbPath,
				WALMode:     true,
				BusyTimeout: 5,
			})
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer db.Close() //nolint:errcheck // Test cleanup

			if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
				t.Error("database directory was not created")
			}
			if db.Path() != dbPath {
				t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
			}
			if db.Driver() != driver {
				t.Errorf("Driver() = %v, want %v", db.Driver(), driver)
			}

			var fk int
			if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
				t.Fatalf("PRAGMA foreign_keys error = %v", err)
			}
			if fk != 1 {
				t.Errorf("foreign_keys = %d, want 1", fk)
			}
		})
	}
}

func TestOpen_DefaultDriver(t *testing.T) {
	db := openTestDB(t, "")
	if db.Driver() != DriverMattn {
		t.Errorf("Driver() = %q, want %q", db.Driver(), DriverMattn)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{
		Driver: "postgres",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err == nil {
		t.Fatal("Open() expected error for unsupported driver")
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t, DriverMattn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() on closed database expected error")
	}
}
