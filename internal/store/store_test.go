package store

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/okrtrack/internal/apperr"
	"github.com/starford/okrtrack/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "okrtrack-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seed stores one period with one objective and one key result.
func seed(t *testing.T, db *DB) (models.Period, models.Objective, models.KeyResult) {
	t.Helper()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	p := models.Period{ID: "p1", Name: "Q1", StartDate: day(2025, 1, 1), EndDate: day(2025, 3, 31), CreatedAt: now}
	o := models.Objective{ID: "o1", PeriodID: p.ID, Title: "Grow the newsletter", CreatedAt: now}
	kr := models.KeyResult{ID: "k1", ObjectiveID: o.ID, Title: "Weekly signups", TargetValue: 100, Unit: "signups", TargetMode: models.TargetModeLinear, CreatedAt: now}
	if err := db.InsertPeriod(p); err != nil {
		t.Fatalf("InsertPeriod: %v", err)
	}
	if err := db.UpsertObjective(o); err != nil {
		t.Fatalf("UpsertObjective: %v", err)
	}
	if err := db.UpsertKeyResult(kr); err != nil {
		t.Fatalf("UpsertKeyResult: %v", err)
	}
	return p, o, kr
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"periods", "objectives", "key_results", "weekly_progress", "settings", "reflections"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestPeriodRoundTrip(t *testing.T) {
	db := testDB(t)
	p, _, _ := seed(t, db)

	got, err := db.GetPeriod(p.ID)
	if err != nil {
		t.Fatalf("GetPeriod: %v", err)
	}
	if got.Name != "Q1" || !got.StartDate.Equal(p.StartDate) || !got.EndDate.Equal(p.EndDate) || got.IsActive {
		t.Errorf("period = %+v", got)
	}

	if _, err := db.GetPeriod("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing period err = %v, want ErrNotFound", err)
	}
}

func TestActivatePeriod_ExactlyOneActive(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	p2 := models.Period{ID: "p2", Name: "Q2", StartDate: day(2025, 4, 1), EndDate: day(2025, 6, 30), CreatedAt: time.Now()}
	if err := db.InsertPeriod(p2); err != nil {
		t.Fatal(err)
	}

	if _, err := db.ActivePeriod(); !errors.Is(err, apperr.ErrNoActivePeriod) {
		t.Errorf("err = %v, want ErrNoActivePeriod", err)
	}
	if err := db.ActivatePeriod("p1"); err != nil {
		t.Fatal(err)
	}
	if err := db.ActivatePeriod("p2"); err != nil {
		t.Fatal(err)
	}

	periods, err := db.ListPeriods()
	if err != nil {
		t.Fatal(err)
	}
	active := 0
	for _, p := range periods {
		if p.IsActive {
			active++
			if p.ID != "p2" {
				t.Errorf("wrong active period %s", p.ID)
			}
		}
	}
	if active != 1 {
		t.Errorf("active periods = %d, want 1", active)
	}
	if err := db.ActivatePeriod("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("activate missing err = %v", err)
	}
}

func TestKeyResultWeeklyTargetsRoundTrip(t *testing.T) {
	db := testDB(t)
	_, _, kr := seed(t, db)
	kr.TargetMode = models.TargetModeManual
	kr.WeeklyTargets = []float64{1, 2, 3.5}
	if err := db.UpsertKeyResult(kr); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetKeyResult(kr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TargetMode != models.TargetModeManual || len(got.WeeklyTargets) != 3 || got.WeeklyTargets[2] != 3.5 {
		t.Errorf("key result = %+v", got)
	}
}

func TestProgressAndLoadObjectives(t *testing.T) {
	db := testDB(t)
	p, o, kr := seed(t, db)
	at := time.Date(2025, 1, 29, 9, 30, 0, 0, time.UTC)
	entries := []models.WeeklyProgress{
		{ID: "w1", KeyResultID: kr.ID, WeekStartDate: day(2025, 1, 27), Value: 30, RecordedAt: at},
		{ID: "w2", KeyResultID: kr.ID, WeekStartDate: day(2025, 1, 27), Value: 40, Status: models.StatusOnTrack, RecordedAt: at.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := db.InsertProgress(e); err != nil {
			t.Fatalf("InsertProgress: %v", err)
		}
	}

	objs, err := db.LoadObjectives(p.ID)
	if err != nil {
		t.Fatalf("LoadObjectives: %v", err)
	}
	if len(objs) != 1 || objs[0].ID != o.ID || len(objs[0].KeyResults) != 1 {
		t.Fatalf("objectives = %+v", objs)
	}
	got := objs[0].KeyResults[0].Progress
	if len(got) != 2 {
		t.Fatalf("progress len = %d, want 2", len(got))
	}
	if got[1].Status != models.StatusOnTrack || !got[1].RecordedAt.Equal(at.Add(time.Minute)) {
		t.Errorf("progress[1] = %+v", got[1])
	}
	if !got[0].WeekStartDate.Equal(day(2025, 1, 27)) {
		t.Errorf("week start = %v", got[0].WeekStartDate)
	}
}

func TestPeriodOfKeyResult(t *testing.T) {
	db := testDB(t)
	p, _, kr := seed(t, db)
	got, err := db.PeriodOfKeyResult(kr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != p.ID {
		t.Errorf("period = %s, want %s", got.ID, p.ID)
	}
}

func TestDeletePeriodCascades(t *testing.T) {
	db := testDB(t)
	p, o, kr := seed(t, db)
	_ = db.InsertProgress(models.WeeklyProgress{ID: "w", KeyResultID: kr.ID, WeekStartDate: day(2025, 1, 6), Value: 1, RecordedAt: time.Now()})
	_ = db.UpsertReflection(models.Reflection{Path: "p1/week-01.md", PeriodID: p.ID, Week: 1, UpdatedAt: time.Now()}, "body")

	if err := db.DeletePeriod(p.ID); err != nil {
		t.Fatalf("DeletePeriod: %v", err)
	}
	if _, err := db.GetObjective(o.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("objective survived: %v", err)
	}
	if progress, _ := db.ListProgress(kr.ID); len(progress) != 0 {
		t.Errorf("progress survived: %v", progress)
	}
	if refs, _ := db.ListReflections(p.ID); len(refs) != 0 {
		t.Errorf("reflections survived: %v", refs)
	}
	if err := db.DeletePeriod(p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestSettings(t *testing.T) {
	db := testDB(t)
	if _, ok, _ := db.GetSetting(SettingClockOverride); ok {
		t.Fatal("setting should not exist yet")
	}
	_ = db.SetSetting(SettingClockOverride, "2025-02-10")
	_ = db.SetSetting(SettingClockOverride, "2025-02-17")
	v, ok, err := db.GetSetting(SettingClockOverride)
	if err != nil || !ok || v != "2025-02-17" {
		t.Errorf("setting = %q, %v, %v", v, ok, err)
	}
	_ = db.DeleteSetting(SettingClockOverride)
	if _, ok, _ := db.GetSetting(SettingClockOverride); ok {
		t.Error("setting should be deleted")
	}
}

func TestReflectionIndex(t *testing.T) {
	db := testDB(t)
	r := models.Reflection{Path: "p1/week-02.md", PeriodID: "p1", Week: 2, Title: "Week 2", Confidence: 6, Tags: []string{"focus"}, Checksum: "abc", UpdatedAt: time.Now()}
	if err := db.UpsertReflection(r, "text"); err != nil {
		t.Fatal(err)
	}
	cs, _ := db.ReflectionChecksum(r.Path)
	if cs != "abc" {
		t.Errorf("checksum = %q", cs)
	}
	list, _ := db.ListReflections("p1")
	if len(list) != 1 || list[0].Confidence != 6 || list[0].Tags[0] != "focus" {
		t.Errorf("list = %+v", list)
	}
	_ = db.DeleteReflection(r.Path)
	if cs, _ := db.ReflectionChecksum(r.Path); cs != "" {
		t.Errorf("deleted reflection still has checksum %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	seed(t, db)
	results, err := db.Search("newsletter", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Ref != "o1" || results[0].Kind != kindObjective {
		t.Errorf("results = %+v, want objective o1", results)
	}
}
