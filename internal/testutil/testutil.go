// Package testutil provides shared test helpers for setting up journals and databases.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/starford/okrtrack/internal/clock"
	"github.com/starford/okrtrack/internal/journal"
	"github.com/starford/okrtrack/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "okrtrack-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestJournal creates a temporary reflection journal.
func TestJournal(t *testing.T) (string, *journal.FS) {
	t.Helper()
	j, err := journal.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return j.Root(), j
}

// Date returns midnight UTC of the given day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FixedClock returns an override clock frozen at noon UTC of the given day.
func FixedClock(y int, m time.Month, d int) *clock.Override {
	return clock.NewOverride(clock.Fixed{T: time.Date(y, m, d, 12, 0, 0, 0, time.UTC)})
}
