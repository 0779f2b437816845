//go:build sqlite_fts5

package store

import (
	"testing"
	"time"

	"github.com/starford/okrtrack/internal/models"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM okr_fts`).Scan(&count); err != nil {
		t.Fatalf("okr_fts table missing: %v", err)
	}
}

func TestFTS5_SearchReflectionWithSnippet(t *testing.T) {
	db := testDB(t)
	r := models.Reflection{Path: "p/week-01.md", PeriodID: "p", Week: 1, Title: "Kickoff", Checksum: "c", UpdatedAt: time.Now()}
	if err := db.UpsertReflection(r, "Momentum feels surprisingly strong this week."); err != nil {
		t.Fatalf("UpsertReflection: %v", err)
	}
	results, err := db.Search("surprisingly", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Ref != "p/week-01.md" || results[0].Kind != kindReflection {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_CascadeDeletePurges(t *testing.T) {
	db := testDB(t)
	_, o, kr := seed(t, db)
	if err := db.DeleteObjective(o.ID); err != nil {
		t.Fatalf("DeleteObjective: %v", err)
	}
	results, _ := db.Search("signups", 10)
	for _, r := range results {
		if r.Ref == kr.ID || r.Ref == o.ID {
			t.Errorf("deleted row still indexed: %+v", r)
		}
	}
}

func TestFTS5_UpsertReplacesContent(t *testing.T) {
	db := testDB(t)
	_, o, _ := seed(t, db)
	o.Title = "Replacement headline"
	if err := db.UpsertObjective(o); err != nil {
		t.Fatalf("UpsertObjective: %v", err)
	}
	if results, _ := db.Search("Grow", 10); len(results) != 0 {
		t.Errorf("old FTS content should be gone: %+v", results)
	}
	if results, _ := db.Search("headline", 10); len(results) != 1 {
		t.Errorf("FTS not updated: %+v", results)
	}
}
