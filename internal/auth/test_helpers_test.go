package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nerrad567/gadgetd/internal/infrastructure/database"
	"github.com/nerrad567/gadgetd/migrations"
)

const testSecret = "test-secret-key-at-least-32-chars!"

// testDB creates a temporary SQLite database with the gadgetd schema applied.
// The database is closed when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "auth-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	return db.DB
}

// testService builds a Service over a fresh database using the cheapest bcrypt cost.
func testService(t *testing.T) (*Service, *SQLiteUserRepository) {
	t.Helper()

	repo := NewUserRepository(testDB(t))
	svc := NewService(repo, NewHasher(4), NewTokenService(testSecret, 0))
	return svc, repo
}
