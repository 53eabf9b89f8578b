package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/chat-assistant/internal/persistence/sqlite"
)

// SQLiteHarness provisions a throwaway SQLite database with the full schema
// applied and exposes the repositories backed by it.
type SQLiteHarness struct {
	Pool    *sqlite.ConnectionPool
	Events  *sqlite.EventRepository
	Members *sqlite.MemberRepository
	Plans   *sqlite.PlanRepository
}

// NewSQLiteHarness opens a database file under tb's temporary directory,
// applies migrations, and registers cleanup to close the pool.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dsn := "file:" + filepath.Join(tb.TempDir(), "assistant.db")
	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(dsn))
	if err != nil {
		tb.Fatalf("open connection pool: %v", err)
	}
	tb.Cleanup(func() {
		if err := pool.Close(); err != nil {
			tb.Errorf("close connection pool: %v", err)
		}
	})

	if err := pool.Migrate(context.Background()); err != nil {
		tb.Fatalf("apply migrations: %v", err)
	}

	return &SQLiteHarness{
		Pool:    pool,
		Events:  sqlite.NewEventRepository(pool),
		Members: sqlite.NewMemberRepository(pool),
		Plans:   sqlite.NewPlanRepository(pool),
	}
}
