package store

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/okrtrack/internal/journal"
)

// watcherTestEnv sets up a journal dir, provider, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, journal.Provider, *DB) {
	t.Helper()
	dir := t.TempDir()
	j, err := journal.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return j.Root(), j, testDB(t)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestSync_IndexesAndRemoves(t *testing.T) {
	root, j, db := watcherTestEnv(t)
	_ = os.MkdirAll(filepath.Join(root, "q1"), 0o755)
	_ = os.WriteFile(filepath.Join(root, "q1", "week-03.md"), []byte("---\nconfidence: 7\n---\n# Third week\nShipped #launch\n"), 0o644)

	if err := Sync(db, j, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	r, err := db.GetReflection("q1/week-03.md")
	if err != nil {
		t.Fatalf("GetReflection: %v", err)
	}
	if r.PeriodID != "q1" || r.Week != 3 || r.Confidence != 7 || r.Title != "Third week" {
		t.Errorf("reflection = %+v", r)
	}
	if len(r.Tags) != 1 || r.Tags[0] != "launch" {
		t.Errorf("tags = %v", r.Tags)
	}

	_ = os.Remove(filepath.Join(root, "q1", "week-03.md"))
	if err := Sync(db, j, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := db.ReflectionChecksum("q1/week-03.md"); cs != "" {
		t.Error("stale reflection not removed")
	}
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	root, j, db := watcherTestEnv(t)
	_ = os.MkdirAll(filepath.Join(root, "q1"), 0o755)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, j, root, quietLogger(), func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "q1", "week-01.md"), []byte("# Kickoff"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.ReflectionChecksum("q1/week-01.md")
		return cs != ""
	}, "new reflection not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:q1/week-01.md" {
				return true
			}
		}
		return false
	}, "expected created:q1/week-01.md callback")
}

func TestWatcher_NewPeriodDirWatched(t *testing.T) {
	root, j, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, j, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.MkdirAll(filepath.Join(root, "q2"), 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(root, "q2", "week-02.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.ReflectionChecksum("q2/week-02.md")
		return cs != ""
	}, "reflection in new period dir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	root, j, db := watcherTestEnv(t)
	_ = os.MkdirAll(filepath.Join(root, "q1"), 0o755)
	_ = os.WriteFile(filepath.Join(root, "q1", "week-04.md"), []byte("# Delete Me"), 0o644)
	_ = Sync(db, j, quietLogger())

	if cs, _ := db.ReflectionChecksum("q1/week-04.md"); cs == "" {
		t.Fatal("precondition: reflection should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, j, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(root, "q1", "week-04.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.ReflectionChecksum("q1/week-04.md")
		return cs == ""
	}, "deleted reflection still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	root, j, db := watcherTestEnv(t)
	_ = os.MkdirAll(filepath.Join(root, "q1"), 0o755)
	_ = os.WriteFile(filepath.Join(root, "q1", "week-05.md"), []byte("# Rename"), 0o644)
	_ = Sync(db, j, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, j, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(root, "q1", "week-05.md"), filepath.Join(root, "q1", "week-06.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.ReflectionChecksum("q1/week-05.md")
		r, err := db.GetReflection("q1/week-06.md")
		return oldCS == "" && err == nil && r.Week == 6
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
