package gadget

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gadgetd/internal/infrastructure/database"
	"github.com/nerrad567/gadgetd/migrations"
)

// testRepo returns a repository over a fresh migrated SQLite database.
func testRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "gadget-test.db"),
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
	return NewSQLiteRepository(db.DB)
}

// fixedRandom is a deterministic Randomizer.
type fixedRandom struct {
	name        string
	status      Status
	probability int
	code        string
}

func (f fixedRandom) Codename() string                  { return f.name }
func (f fixedRandom) Status() Status                    { return f.status }
func (f fixedRandom) Probability() int                  { return f.probability }
func (f fixedRandom) ConfirmationCode() (string, error) { return f.code, nil }

// recordingNotifier captures emitted events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}

// manualClock is a controllable time source.
type manualClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
