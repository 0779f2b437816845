package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/starford/okrtrack/internal/models"
	"github.com/starford/okrtrack/internal/okrservice"
	"github.com/starford/okrtrack/internal/testutil"
)

// testEnv sets up a temp journal, SQLite DB, service, and router for testing.
// An empty authToken means disabled mode. The clock sits in week 5 of Q1 2025.
func testEnv(t *testing.T, authToken string) (*okrservice.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) (*okrservice.Service, http.Handler) {
	t.Helper()
	db := testutil.TestDB(t)
	_, j := testutil.TestJournal(t)
	svc := okrservice.New(db, j, testutil.FixedClock(2025, time.January, 29))
	return svc, NewRouter(svc, authEnabled, token, sseHandler)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

// seedQ1 creates the Q1 2025 period with one objective and a key result
// targeting 100, returning their IDs.
func seedQ1(t *testing.T, router http.Handler) (periodID, objectiveID, krID string) {
	t.Helper()
	w := do(t, router, http.MethodPost, "/periods", map[string]string{
		"name": "Q1 2025", "start_date": "2025-01-01", "end_date": "2025-03-31",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create period = %d, body = %s", w.Code, w.Body.String())
	}
	periodID = decode[models.Period](t, w).ID

	w = do(t, router, http.MethodPost, "/periods/"+periodID+"/objectives", map[string]string{"title": "Grow the newsletter"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create objective = %d, body = %s", w.Code, w.Body.String())
	}
	objectiveID = decode[models.Objective](t, w).ID

	w = do(t, router, http.MethodPost, "/objectives/"+objectiveID+"/key-results", map[string]any{
		"title": "Subscribers", "target_value": 100, "unit": "subs",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create key result = %d, body = %s", w.Code, w.Body.String())
	}
	krID = decode[models.KeyResult](t, w).ID
	return periodID, objectiveID, krID
}

func TestPeriodLifecycle(t *testing.T) {
	_, router := testEnv(t, "")
	periodID, _, _ := seedQ1(t, router)

	w := do(t, router, http.MethodGet, "/periods/"+periodID+"/context", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("context = %d", w.Code)
	}
	var pc struct {
		TotalWeeks  int `json:"total_weeks"`
		CurrentWeek int `json:"current_week"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &pc)
	if pc.TotalWeeks != 13 || pc.CurrentWeek != 5 {
		t.Errorf("context = %+v", pc)
	}

	w = do(t, router, http.MethodPut, "/periods/"+periodID, map[string]string{
		"name": "Q1", "start_date": "2025-01-01", "end_date": "2025-03-31",
	})
	if w.Code != http.StatusOK || decode[models.Period](t, w).Name != "Q1" {
		t.Errorf("update = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodDelete, "/periods/"+periodID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/periods/"+periodID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", w.Code)
	}
}

func TestCreatePeriod_Validation(t *testing.T) {
	_, router := testEnv(t, "")
	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing name", map[string]string{"start_date": "2025-01-01", "end_date": "2025-03-31"}},
		{"bad date", map[string]string{"name": "Q", "start_date": "01/01/2025", "end_date": "2025-03-31"}},
		{"inverted", map[string]string{"name": "Q", "start_date": "2025-03-31", "end_date": "2025-01-01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/periods", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestRecordProgressAndDashboard(t *testing.T) {
	_, router := testEnv(t, "")
	_, _, krID := seedQ1(t, router)

	w := do(t, router, http.MethodPost, "/key-results/"+krID+"/progress", map[string]any{"value": 20})
	if w.Code != http.StatusCreated {
		t.Fatalf("progress = %d, body = %s", w.Code, w.Body.String())
	}
	entry := decode[models.WeeklyProgress](t, w)
	if entry.Status != models.StatusBehind {
		t.Errorf("cached status = %s, want behind", entry.Status)
	}

	w = do(t, router, http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard = %d", w.Code)
	}
	d := decode[okrservice.Dashboard](t, w)
	if d.Status != models.StatusBehind || len(d.Objectives) != 1 {
		t.Errorf("dashboard = %+v", d)
	}

	w = do(t, router, http.MethodGet, "/key-results/"+krID+"/series", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("series = %d", w.Code)
	}
	if s := decode[okrservice.Series](t, w); len(s.Points) != 13 {
		t.Errorf("series points = %d, want 13", len(s.Points))
	}
}

func TestRecordProgress_Validation(t *testing.T) {
	_, router := testEnv(t, "")
	_, _, krID := seedQ1(t, router)

	w := do(t, router, http.MethodPost, "/key-results/"+krID+"/progress", map[string]any{"note": "no value"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing value = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodPost, "/key-results/"+krID+"/progress", map[string]any{"value": 5, "week_start": "2025-06-02"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("week outside period = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodPost, "/key-results/missing/progress", map[string]any{"value": 0})
	if w.Code != http.StatusNotFound {
		t.Errorf("missing key result = %d, want 404", w.Code)
	}
}

func TestUpdateKeyResult_ManualTargets(t *testing.T) {
	_, router := testEnv(t, "")
	_, _, krID := seedQ1(t, router)

	w := do(t, router, http.MethodPut, "/key-results/"+krID, map[string]any{"target_mode": "manual"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	if kr := decode[models.KeyResult](t, w); len(kr.WeeklyTargets) != 13 {
		t.Errorf("weekly targets = %v", kr.WeeklyTargets)
	}

	w = do(t, router, http.MethodPut, "/key-results/"+krID, map[string]any{"weekly_targets": []float64{1, 2, 3}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("short targets = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodPut, "/key-results/"+krID, map[string]any{"target_mode": "exponential"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown mode = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodGet, "/key-results/"+krID+"/targets", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("targets = %d", w.Code)
	}
	if tg := decode[okrservice.KeyResultTargets](t, w); tg.TargetMode != models.TargetModeManual || tg.Targets[12] != 100 {
		t.Errorf("targets = %+v", tg)
	}
}

func TestObjectiveCRUD(t *testing.T) {
	_, router := testEnv(t, "")
	periodID, objectiveID, _ := seedQ1(t, router)

	w := do(t, router, http.MethodGet, "/objectives/"+objectiveID, nil)
	if o := decode[models.Objective](t, w); w.Code != http.StatusOK || len(o.KeyResults) != 1 {
		t.Errorf("get objective = %d, %+v", w.Code, o)
	}
	w = do(t, router, http.MethodPut, "/objectives/"+objectiveID, map[string]any{"title": "Grow faster", "position": 2})
	if w.Code != http.StatusOK {
		t.Errorf("update objective = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/periods/"+periodID+"/objectives", nil)
	var list struct {
		Objectives []models.Objective `json:"objectives"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Objectives) != 1 || list.Objectives[0].Title != "Grow faster" {
		t.Errorf("objectives = %+v", list.Objectives)
	}
	w = do(t, router, http.MethodDelete, "/objectives/"+objectiveID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete objective = %d", w.Code)
	}
}

func TestReflectionsEndpoints(t *testing.T) {
	_, router := testEnv(t, "")
	periodID, _, _ := seedQ1(t, router)

	w := do(t, router, http.MethodPost, "/periods/"+periodID+"/reflections", map[string]any{
		"week": 4, "confidence": 6, "body": "Slow week, but the funnel is fixed.",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/periods/"+periodID+"/reflections/4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get = %d", w.Code)
	}
	if r := decode[okrservice.ReflectionDetail](t, w); r.Confidence != 6 || r.Week != 4 {
		t.Errorf("reflection = %+v", r)
	}
	w = do(t, router, http.MethodGet, "/periods/"+periodID+"/reflections/x", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad week = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodPost, "/periods/"+periodID+"/reflections", map[string]any{"week": 2, "confidence": 12, "body": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("confidence 12 = %d, want 400", w.Code)
	}
}

func TestClockSettings(t *testing.T) {
	_, router := testEnv(t, "")
	periodID, _, _ := seedQ1(t, router)

	w := do(t, router, http.MethodPut, "/settings/clock", map[string]string{"date": "2025-02-12"})
	if w.Code != http.StatusOK {
		t.Fatalf("set clock = %d, body = %s", w.Code, w.Body.String())
	}
	w = do(t, router, http.MethodGet, "/periods/"+periodID+"/context", nil)
	var pc struct {
		CurrentWeek int `json:"current_week"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &pc)
	if pc.CurrentWeek != 7 {
		t.Errorf("current week = %d, want 7", pc.CurrentWeek)
	}

	w = do(t, router, http.MethodPut, "/settings/clock", map[string]any{"date": "2025-02-12", "offset_days": 3})
	if w.Code != http.StatusBadRequest {
		t.Errorf("both forms = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodPut, "/settings/clock", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty = %d, want 400", w.Code)
	}

	w = do(t, router, http.MethodDelete, "/settings/clock", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("clear clock = %d", w.Code)
	}
	w = do(t, router, http.MethodGet, "/settings/clock", nil)
	if st := decode[okrservice.ClockState](t, w); st.Overridden || st.Today != "2025-01-29" {
		t.Errorf("clock state = %+v", st)
	}
}

func TestDashboard_NoActivePeriod(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("dashboard = %d, want 404", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	seedQ1(t, router)

	w := do(t, router, http.MethodGet, "/search?q=newsletter", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	if resp := decode[SearchResponse](t, w); len(resp.Results) != 1 {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	w := do(t, router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search no query = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/periods", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := do(t, router, http.MethodGet, "/periods", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/periods", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/periods", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// blockingSSE writes headers and blocks until the request context is done.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "secret", blockingSSE)

	w := do(t, router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}
