package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/studentplanner/planner/internal/config"
	"github.com/studentplanner/planner/internal/database"
	"github.com/studentplanner/planner/internal/queue"
	"github.com/studentplanner/planner/internal/server"
)

// 2026-10-14 is a Wednesday.
var today = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.UserRegisteredEvent
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, ev queue.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type app struct {
	t   *testing.T
	e   *echo.Echo
	pub *recordingPublisher
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(context.Background(), db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := config.Defaults()
	cfg.DBDriver = "sqlite3"
	cfg.PublicDir = ""
	cfg.BcryptCost = 4

	pub := &recordingPublisher{}
	e, err := server.New(cfg, server.Deps{
		DB:        db,
		Publisher: pub,
		Now:       func() time.Time { return today },
		Quiet:     true,
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return &app{t: t, e: e, pub: pub}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

func (a *app) raw(method, path, contentType, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// api sends a JSON request and decodes the envelope.
func (a *app) api(method, path string, body any, cookie *http.Cookie) (int, envelope) {
	a.t.Helper()
	var s string
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatal(err)
		}
		s = string(b)
	}
	rec := a.raw(method, path, echo.MIMEApplicationJSON, s, cookie)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		a.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func (a *app) form(path string, vals url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.raw(http.MethodPost, path, echo.MIMEApplicationForm, vals.Encode(), cookie)
}

// signup registers and logs in a user, returning the session cookie.
func (a *app) signup(email, first string) *http.Cookie {
	a.t.Helper()
	rec := a.form("/register", url.Values{
		"email":     {email},
		"password":  {"secret1"},
		"password2": {"secret1"},
		"firstName": {first},
		"lastName":  {"Test"},
	}, nil)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login" {
		a.t.Fatalf("register %s: %d %s", email, rec.Code, rec.Body.String())
	}
	rec = a.form("/login", url.Values{"email": {email}, "password": {"secret1"}}, nil)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
		a.t.Fatalf("login %s: %d %s", email, rec.Code, rec.Body.String())
	}
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "planner_session" && ck.Value != "" {
			return ck
		}
	}
	a.t.Fatalf("login %s: no session cookie", email)
	return nil
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

type taskJSON struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	DueDate     *string `json:"dueDate"`
}

type habitJSON struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	Frequency      string `json:"frequency"`
	FrequencyLabel string `json:"frequencyLabel"`
	StreakDays     int    `json:"streakDays"`
	PointsPerDay   int    `json:"pointsPerDay"`
	Week           []struct {
		Day  string `json:"day"`
		Date string `json:"date"`
		Done bool   `json:"done"`
	} `json:"week"`
}

type eventJSON struct {
	ID            uint64  `json:"id"`
	Title         string  `json:"title"`
	Category      string  `json:"category"`
	CategoryColor string  `json:"categoryColor"`
	EventDate     string  `json:"eventDate"`
	StartTime     *string `json:"startTime"`
	TimeRange     string  `json:"timeRange"`
}

func (a *app) createTask(ck *http.Cookie, body map[string]any) taskJSON {
	a.t.Helper()
	code, env := a.api(http.MethodPost, "/api/tasks", body, ck)
	if code != http.StatusCreated || !env.Success {
		a.t.Fatalf("create task: %d %+v", code, env)
	}
	return decode[taskJSON](a.t, env.Data)
}

func TestUnauthenticated(t *testing.T) {
	a := newApp(t)

	rec := a.raw(http.MethodGet, "/api/tasks", "", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body) != 2 || body["success"] != false || body["message"] != "Login required" {
		t.Errorf("body = %s", rec.Body.String())
	}

	for _, page := range []string{"/dashboard", "/tasks", "/settings"} {
		rec := a.raw(http.MethodGet, page, "", "", nil)
		if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login" {
			t.Errorf("GET %s = %d %q, want redirect to /login", page, rec.Code, rec.Header().Get(echo.HeaderLocation))
		}
	}
}

func TestRouting(t *testing.T) {
	a := newApp(t)
	ck := a.signup("anna@example.com", "Anna")

	tests := []struct {
		name, method, path string
		want               int
		message            string
	}{
		{"unknown endpoint", http.MethodGet, "/api/unknownpath", http.StatusNotFound, "Endpoint not found"},
		{"static path wrong method", http.MethodPut, "/api/tasks", http.StatusMethodNotAllowed, "Method not allowed"},
		{"dynamic path wrong method", http.MethodPatch, "/api/tasks/1", http.StatusMethodNotAllowed, "Method not allowed"},
		{"non numeric id", http.MethodGet, "/api/tasks/abc", http.StatusNotFound, "Endpoint not found"},
		{"unknown subaction", http.MethodPost, "/api/tasks/1/archive", http.StatusNotFound, "Endpoint not found"},
		{"zero id", http.MethodGet, "/api/tasks/0", http.StatusBadRequest, "ID required"},
		{"search wrong method", http.MethodGet, "/api/search", http.StatusMethodNotAllowed, "Method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := a.api(tt.method, tt.path, nil, ck)
			if code != tt.want || env.Success || env.Message != tt.message {
				t.Errorf("%s %s = %d %+v, want %d %q", tt.method, tt.path, code, env, tt.want, tt.message)
			}
		})
	}

	t.Run("method check precedes auth", func(t *testing.T) {
		code, _ := a.api(http.MethodPut, "/api/tasks", nil, nil)
		if code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", code)
		}
	})

	t.Run("unknown page", func(t *testing.T) {
		rec := a.raw(http.MethodGet, "/nope", "", "", ck)
		if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "404") {
			t.Errorf("GET /nope = %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("id is passed and query ignored", func(t *testing.T) {
		task := a.createTask(ck, map[string]any{"title": "Routing"})
		code, env := a.api(http.MethodGet, "/api/tasks/"+itoa(task.ID)+"?id=999&x=1", nil, ck)
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if got := decode[taskJSON](t, env.Data); got.ID != task.ID {
			t.Errorf("id = %d, want %d", got.ID, task.ID)
		}
	})

	t.Run("root redirects", func(t *testing.T) {
		rec := a.raw(http.MethodGet, "/", "", "", ck)
		if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
			t.Errorf("GET / = %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
		}
	})

	t.Run("healthz", func(t *testing.T) {
		rec := a.raw(http.MethodGet, "/healthz", "", "", nil)
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Errorf("GET /healthz = %d %q", rec.Code, rec.Body.String())
		}
	})
}

func TestTaskLifecycle(t *testing.T) {
	a := newApp(t)
	ck := a.signup("anna@example.com", "Anna")

	t.Run("enums clamp to defaults", func(t *testing.T) {
		got := a.createTask(ck, map[string]any{"title": "  Essay  ", "category": "hobby", "priority": "urgent", "status": "blocked"})
		if got.Title != "Essay" || got.Category != "osobiste" || got.Priority != "sredni" || got.Status != "todo" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("empty title persists nothing", func(t *testing.T) {
		_, before := a.api(http.MethodGet, "/api/tasks", nil, ck)
		code, env := a.api(http.MethodPost, "/api/tasks", map[string]any{"title": "   ", "category": "studia"}, ck)
		if code != http.StatusBadRequest || env.Success {
			t.Fatalf("got %d %+v", code, env)
		}
		_, after := a.api(http.MethodGet, "/api/tasks", nil, ck)
		if len(decode[[]taskJSON](t, before.Data)) != len(decode[[]taskJSON](t, after.Data)) {
			t.Error("task was persisted")
		}
	})

	t.Run("create then get round trip", func(t *testing.T) {
		created := a.createTask(ck, map[string]any{
			"title": "Kolokwium", "description": "rozdział 3", "category": "studia", "priority": "wysoki", "dueDate": "2026-10-20",
		})
		code, env := a.api(http.MethodGet, "/api/tasks/"+itoa(created.ID), nil, ck)
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		got := decode[taskJSON](t, env.Data)
		if got.Title != "Kolokwium" || got.Category != "studia" || got.Priority != "wysoki" ||
			got.DueDate == nil || *got.DueDate != "2026-10-20" || got.Description == nil || *got.Description != "rozdział 3" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("malformed due date", func(t *testing.T) {
		code, _ := a.api(http.MethodPost, "/api/tasks", map[string]any{"title": "x", "dueDate": "jutro"}, ck)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		task := a.createTask(ck, map[string]any{"title": "Draft", "priority": "niski", "dueDate": "2026-10-15", "description": "notes"})

		code, env := a.api(http.MethodPut, "/api/tasks/"+itoa(task.ID), map[string]any{"title": "Final", "dueDate": nil}, ck)
		if code != http.StatusOK {
			t.Fatalf("status = %d %+v", code, env)
		}
		got := decode[taskJSON](t, env.Data)
		if got.Title != "Final" || got.Priority != "niski" || got.DueDate != nil || got.Description == nil {
			t.Errorf("got %+v", got)
		}

		code, _ = a.api(http.MethodPut, "/api/tasks/"+itoa(task.ID), map[string]any{"title": ""}, ck)
		if code != http.StatusBadRequest {
			t.Errorf("empty title update = %d, want 400", code)
		}
	})

	t.Run("status toggles", func(t *testing.T) {
		task := a.createTask(ck, map[string]any{"title": "Flip"})
		for _, want := range []string{"done", "todo"} {
			code, env := a.api(http.MethodPatch, "/api/tasks/"+itoa(task.ID)+"/status", nil, ck)
			if code != http.StatusOK {
				t.Fatalf("status = %d", code)
			}
			got := decode[struct {
				ID     uint64 `json:"id"`
				Status string `json:"status"`
			}](t, env.Data)
			if got.ID != task.ID || got.Status != want {
				t.Errorf("got %+v, want status %s", got, want)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		task := a.createTask(ck, map[string]any{"title": "Gone"})
		if code, _ := a.api(http.MethodDelete, "/api/tasks/"+itoa(task.ID), nil, ck); code != http.StatusOK {
			t.Fatalf("delete = %d", code)
		}
		if code, _ := a.api(http.MethodGet, "/api/tasks/"+itoa(task.ID), nil, ck); code != http.StatusNotFound {
			t.Errorf("get after delete = %d, want 404", code)
		}
	})
}

func TestTaskListOrderAndStats(t *testing.T) {
	a := newApp(t)
	ck := a.signup("anna@example.com", "Anna")

	a.createTask(ck, map[string]any{"title": "undated"})
	a.createTask(ck, map[string]any{"title": "later low", "dueDate": "2026-10-20", "priority": "niski"})
	a.createTask(ck, map[string]any{"title": "later high", "dueDate": "2026-10-20", "priority": "wysoki"})
	overdue := a.createTask(ck, map[string]any{"title": "overdue", "dueDate": "2026-10-01"})
	a.createTask(ck, map[string]any{"title": "today", "dueDate": "2026-10-14"})
	done := a.createTask(ck, map[string]any{"title": "old done", "dueDate": "2026-10-02", "status": "done"})

	_, env := a.api(http.MethodGet, "/api/tasks", nil, ck)
	var titles []string
	for _, task := range decode[[]taskJSON](t, env.Data) {
		titles = append(titles, task.Title)
	}
	want := []string{"overdue", "old done", "today", "later high", "later low", "undated"}
	if strings.Join(titles, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", titles, want)
	}

	_, env = a.api(http.MethodGet, "/api/tasks/stats", nil, ck)
	st := decode[map[string]int](t, env.Data)
	wantStats := map[string]int{"total": 6, "todo": 5, "done": 1, "today": 1, "overdue": 1}
	for k, v := range wantStats {
		if st[k] != v {
			t.Errorf("stats[%s] = %d, want %d (ids %d/%d)", k, st[k], v, overdue.ID, done.ID)
		}
	}
}

func TestOwnership(t *testing.T) {
	a := newApp(t)
	anna := a.signup("anna@example.com", "Anna")
	bart := a.signup("bartek@example.com", "Bartek")

	task := a.createTask(anna, map[string]any{"title": "Anna's"})
	_, env := a.api(http.MethodPost, "/api/events", map[string]any{"title": "Wykład", "eventDate": "2026-10-15"}, anna)
	event := decode[eventJSON](t, env.Data)

	t.Run("foreign looks missing", func(t *testing.T) {
		fcode, foreign := a.api(http.MethodGet, "/api/tasks/"+itoa(task.ID), nil, bart)
		mcode, missing := a.api(http.MethodGet, "/api/tasks/999999", nil, bart)
		if fcode != http.StatusNotFound || fcode != mcode || foreign.Message != missing.Message {
			t.Errorf("foreign %d %+v vs missing %d %+v", fcode, foreign, mcode, missing)
		}
	})

	t.Run("foreign writes rejected", func(t *testing.T) {
		checks := []struct{ method, path string }{
			{http.MethodPut, "/api/tasks/" + itoa(task.ID)},
			{http.MethodDelete, "/api/tasks/" + itoa(task.ID)},
			{http.MethodPatch, "/api/tasks/" + itoa(task.ID) + "/status"},
			{http.MethodDelete, "/api/events/" + itoa(event.ID)},
		}
		for _, c := range checks {
			if code, _ := a.api(c.method, c.path, map[string]any{"title": "hijack"}, bart); code != http.StatusNotFound {
				t.Errorf("%s %s = %d, want 404", c.method, c.path, code)
			}
		}
		_, env := a.api(http.MethodGet, "/api/tasks/"+itoa(task.ID), nil, anna)
		if got := decode[taskJSON](t, env.Data); got.Title != "Anna's" || got.Status != "todo" {
			t.Errorf("task changed: %+v", got)
		}
		if code, _ := a.api(http.MethodGet, "/api/events/"+itoa(event.ID), nil, anna); code != http.StatusOK {
			t.Errorf("event lost: %d", code)
		}
	})

	t.Run("lists are scoped", func(t *testing.T) {
		_, env := a.api(http.MethodGet, "/api/tasks", nil, bart)
		if got := decode[[]taskJSON](t, env.Data); len(got) != 0 {
			t.Errorf("bart sees %d tasks", len(got))
		}
	})
}

func TestHabits(t *testing.T) {
	a := newApp(t)
	ck := a.signup("anna@example.com", "Anna")

	code, env := a.api(http.MethodPost, "/api/habits", map[string]any{"title": "Read", "frequency": "weekly"}, ck)
	if code != http.StatusCreated {
		t.Fatalf("create = %d %+v", code, env)
	}
	habit := decode[habitJSON](t, env.Data)
	if habit.Frequency != "daily" || habit.FrequencyLabel != "Codziennie" || habit.PointsPerDay != 10 || len(habit.Week) != 7 {
		t.Fatalf("got %+v", habit)
	}
	if habit.Week[0].Date != "2026-10-12" || habit.Week[0].Day != "pon" {
		t.Errorf("week starts %+v", habit.Week[0])
	}

	path := "/api/habits/" + itoa(habit.ID) + "/toggle"

	t.Run("toggle today twice", func(t *testing.T) {
		_, env := a.api(http.MethodPost, path, nil, ck)
		on := decode[habitJSON](t, env.Data)
		if !on.Week[2].Done || on.StreakDays != 1 {
			t.Errorf("after first toggle %+v", on)
		}
		_, env = a.api(http.MethodPost, path, nil, ck)
		off := decode[habitJSON](t, env.Data)
		if off.Week[2].Done || off.StreakDays != 0 {
			t.Errorf("after second toggle %+v", off)
		}
	})

	t.Run("streak over explicit dates", func(t *testing.T) {
		for _, d := range []string{"2026-10-12", "2026-10-13"} {
			if code, _ := a.api(http.MethodPost, path, map[string]any{"date": d}, ck); code != http.StatusOK {
				t.Fatalf("toggle %s = %d", d, code)
			}
		}
		_, env := a.api(http.MethodGet, "/api/habits/"+itoa(habit.ID), nil, ck)
		got := decode[habitJSON](t, env.Data)
		if got.StreakDays != 2 || !got.Week[0].Done || !got.Week[1].Done {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		code, _ := a.api(http.MethodPost, path, map[string]any{"date": "14/10/2026"}, ck)
		if code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", code)
		}
	})

	t.Run("stats", func(t *testing.T) {
		_, env := a.api(http.MethodGet, "/api/habits/stats", nil, ck)
		st := decode[map[string]int](t, env.Data)
		if st["totalHabits"] != 1 || st["todayCompleted"] != 0 || st["maxStreak"] != 2 || st["totalPoints"] != 20 {
			t.Errorf("stats = %v", st)
		}
	})

	t.Run("foreign toggle", func(t *testing.T) {
		other := a.signup("celina@example.com", "Celina")
		if code, _ := a.api(http.MethodPost, path, nil, other); code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", code)
		}
	})

	t.Run("delete removes completions", func(t *testing.T) {
		if code, _ := a.api(http.MethodDelete, "/api/habits/"+itoa(habit.ID), nil, ck); code != http.StatusOK {
			t.Fatalf("delete = %d", code)
		}
		_, env := a.api(http.MethodGet, "/api/habits/stats", nil, ck)
		if st := decode[map[string]int](t, env.Data); st["totalHabits"] != 0 || st["totalPoints"] != 0 {
			t.Errorf("stats after delete = %v", st)
		}
		if code, _ := a.api(http.MethodPost, path, nil, ck); code != http.StatusNotFound {
			t.Errorf("toggle after delete = %d, want 404", code)
		}
	})
}

func TestEvents(t *testing.T) {
	a := newApp(t)
	ck := a.signup("anna@example.com", "Anna")

	create := func(body map[string]any) (int, eventJSON) {
		code, env := a.api(http.MethodPost, "/api/events", body, ck)
		if code != http.StatusCreated {
			return code, eventJSON{}
		}
		return code, decode[eventJSON](t, env.Data)
	}

	if code, _ := create(map[string]any{"title": "No date"}); code != http.StatusBadRequest {
		t.Errorf("missing eventDate = %d, want 400", code)
	}
	_, lecture := create(map[string]any{"title": "Wykład", "eventDate": "2026-10-14", "startTime": "10:15", "endTime": "11:45", "category": "uczelnia"})
	if lecture.TimeRange != "10:15 - 11:45" || lecture.CategoryColor != "blue" {
		t.Errorf("lecture = %+v", lecture)
	}
	_, trip := create(map[string]any{"title": "Wyjazd", "eventDate": "2026-10-14", "allDay": true, "category": "wakacje"})
	if trip.TimeRange != "Cały dzień" || trip.Category != "prywatne" {
		t.Errorf("trip = %+v", trip)
	}
	create(map[string]any{"title": "Trening", "eventDate": "2026-10-19", "category": "sport"})
	create(map[string]any{"title": "Listopad", "eventDate": "2026-11-03"})

	t.Run("today", func(t *testing.T) {
		_, env := a.api(http.MethodGet, "/api/events/today", nil, ck)
		got := decode[[]eventJSON](t, env.Data)
		if len(got) != 2 || got[0].Title != "Wyjazd" {
			t.Errorf("today = %+v", got)
		}
	})

	t.Run("upcoming", func(t *testing.T) {
		_, env := a.api(http.MethodGet, "/api/events/upcoming", nil, ck)
		if got := decode[[]eventJSON](t, env.Data); len(got) != 3 {
			t.Errorf("upcoming = %d events, want 3", len(got))
		}
		_, env = a.api(http.MethodGet, "/api/events/upcoming?days=30", nil, ck)
		if got := decode[[]eventJSON](t, env.Data); len(got) != 4 {
			t.Errorf("upcoming 30 = %d events, want 4", len(got))
		}
	})

	t.Run("month grouped", func(t *testing.T) {
		_, env := a.api(http.MethodGet, "/api/events/month", nil, ck)
		grouped := decode[map[string][]eventJSON](t, env.Data)
		if len(grouped["2026-10-14"]) != 2 || len(grouped["2026-10-19"]) != 1 || len(grouped) != 2 {
			t.Errorf("grouped = %v", grouped)
		}
		meta := decode[map[string]int](t, env.Meta)
		if meta["year"] != 2026 || meta["month"] != 10 {
			t.Errorf("meta = %v", meta)
		}
		_, env = a.api(http.MethodGet, "/api/events/month?year=2026&month=11", nil, ck)
		if grouped := decode[map[string][]eventJSON](t, env.Data); len(grouped["2026-11-03"]) != 1 {
			t.Errorf("november = %v", grouped)
		}
	})

	t.Run("list filters", func(t *testing.T) {
		_, env := a.api(http.MethodGet, "/api/events?date=2026-10-19", nil, ck)
		if got := decode[[]eventJSON](t, env.Data); len(got) != 1 || got[0].Title != "Trening" {
			t.Errorf("by date = %+v", got)
		}
		_, env = a.api(http.MethodGet, "/api/events?year=2026&month=11", nil, ck)
		if got := decode[[]eventJSON](t, env.Data); len(got) != 1 {
			t.Errorf("by month = %+v", got)
		}
		_, env = a.api(http.MethodGet, "/api/events", nil, ck)
		if got := decode[[]eventJSON](t, env.Data); len(got) != 4 {
			t.Errorf("all = %d", len(got))
		}
	})

	t.Run("update clears start time", func(t *testing.T) {
		code, env := a.api(http.MethodPut, "/api/events/"+itoa(lecture.ID), map[string]any{"startTime": nil, "endTime": nil}, ck)
		if code != http.StatusOK {
			t.Fatalf("update = %d %+v", code, env)
		}
		if got := decode[eventJSON](t, env.Data); got.StartTime != nil || got.TimeRange != "" || got.Title != "Wykład" {
			t.Errorf("got %+v", got)
		}
	})
}

func TestSearch(t *testing.T) {
	a := newApp(t)
	ck := a.signup("anna@example.com", "Anna")
	a.createTask(ck, map[string]any{"title": "Read Go book"})
	a.createTask(ck, map[string]any{"title": "Laundry"})
	a.api(http.MethodPost, "/api/habits", map[string]any{"title": "Reading"}, ck)

	rec := a.raw(http.MethodPost, "/api/search", "text/plain", `{"search":"read"}`, ck)
	if rec.Code != http.StatusUnsupportedMediaType || !strings.Contains(rec.Body.String(), "Content type not allowed") {
		t.Errorf("text/plain = %d %s", rec.Code, rec.Body.String())
	}

	code, env := a.api(http.MethodPost, "/api/search", map[string]any{"search": "READ"}, ck)
	if code != http.StatusOK {
		t.Fatalf("search = %d", code)
	}
	got := decode[struct {
		Tasks  []taskJSON  `json:"tasks"`
		Habits []habitJSON `json:"habits"`
		Events []eventJSON `json:"events"`
	}](t, env.Data)
	if len(got.Tasks) != 1 || len(got.Habits) != 1 || len(got.Events) != 0 {
		t.Errorf("got %+v", got)
	}
}

func TestSettings(t *testing.T) {
	a := newApp(t)
	ck := a.signup("anna@example.com", "Anna")
	a.signup("bartek@example.com", "Bartek")

	t.Run("profile", func(t *testing.T) {
		code, env := a.api(http.MethodGet, "/api/settings/profile", nil, ck)
		if code != http.StatusOK || strings.Contains(string(env.Data), "password") {
			t.Fatalf("profile = %d %s", code, env.Data)
		}
		code, env = a.api(http.MethodPut, "/api/settings/profile", map[string]any{"firstname": "Ania", "lastname": "", "university": "PK"}, ck)
		if code != http.StatusOK {
			t.Fatalf("update = %d %+v", code, env)
		}
		got := decode[map[string]any](t, env.Data)
		if got["firstname"] != "Ania" || got["lastname"] != "Test" || got["university"] != "PK" || got["fullName"] != "Ania Test" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("email taken", func(t *testing.T) {
		code, env := a.api(http.MethodPut, "/api/settings/profile", map[string]any{"email": "Bartek@example.com"}, ck)
		if code != http.StatusBadRequest || env.Success {
			t.Errorf("got %d %+v", code, env)
		}
	})

	t.Run("preferences keep absent keys", func(t *testing.T) {
		_, env := a.api(http.MethodPut, "/api/settings/preferences", map[string]any{"darkMode": true}, ck)
		got := decode[map[string]bool](t, env.Data)
		if !got["darkMode"] || !got["emailNotifications"] {
			t.Errorf("got %v", got)
		}
		_, env = a.api(http.MethodPut, "/api/settings/preferences", map[string]any{"emailNotifications": false}, ck)
		got = decode[map[string]bool](t, env.Data)
		if !got["darkMode"] || got["emailNotifications"] {
			t.Errorf("got %v", got)
		}
	})

	t.Run("password", func(t *testing.T) {
		bad := []map[string]any{
			{"newPassword": "abcdef"},
			{"currentPassword": "secret1"},
			{"currentPassword": "secret1", "newPassword": "abc"},
			{"currentPassword": "secret1", "newPassword": "abcdef", "confirmPassword": "abcdeg"},
			{"currentPassword": "wrong!", "newPassword": "abcdef"},
		}
		for _, body := range bad {
			if code, _ := a.api(http.MethodPut, "/api/settings/password", body, ck); code != http.StatusBadRequest {
				t.Errorf("%v = %d, want 400", body, code)
			}
		}
		code, _ := a.api(http.MethodPut, "/api/settings/password", map[string]any{
			"currentPassword": "secret1", "newPassword": "nowehaslo", "confirmPassword": "nowehaslo",
		}, ck)
		if code != http.StatusOK {
			t.Fatalf("change = %d", code)
		}
		rec := a.form("/login", url.Values{"email": {"anna@example.com"}, "password": {"nowehaslo"}}, nil)
		if rec.Code != http.StatusFound {
			t.Errorf("login with new password = %d", rec.Code)
		}
	})
}

func TestAuthPages(t *testing.T) {
	a := newApp(t)

	t.Run("register validation", func(t *testing.T) {
		rec := a.form("/register", url.Values{"email": {"x@example.com"}, "password": {"secret1"}, "password2": {"other12"}, "firstName": {"X"}, "lastName": {"Y"}}, nil)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Passwords do not match") {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	ck := a.signup("anna@example.com", "Anna")

	t.Run("duplicate email", func(t *testing.T) {
		rec := a.form("/register", url.Values{"email": {"ANNA@example.com"}, "password": {"secret1"}, "password2": {"secret1"}, "firstName": {"A"}, "lastName": {"B"}}, nil)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Email already registered") {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := a.form("/login", url.Values{"email": {"anna@example.com"}, "password": {"nope"}}, nil)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Wrong password") {
			t.Errorf("got %d", rec.Code)
		}
	})

	t.Run("dashboard greets", func(t *testing.T) {
		rec := a.raw(http.MethodGet, "/dashboard", "", "", ck)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Anna") {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("registration is published", func(t *testing.T) {
		deadline := time.Now().Add(2 * time.Second)
		for a.pub.count() < 1 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		if a.pub.count() < 1 {
			t.Error("no user.registered event published")
		}
	})

	t.Run("logout ends session", func(t *testing.T) {
		rec := a.raw(http.MethodGet, "/logout", "", "", ck)
		if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/login" {
			t.Fatalf("logout = %d", rec.Code)
		}
		if code, _ := a.api(http.MethodGet, "/api/tasks", nil, ck); code != http.StatusUnauthorized {
			t.Errorf("old cookie after logout = %d, want 401", code)
		}
	})

	t.Run("forged cookie", func(t *testing.T) {
		forged := &http.Cookie{Name: "planner_session", Value: "eyJhbGciOiJIUzI1NiJ9.e30.x"}
		if code, _ := a.api(http.MethodGet, "/api/tasks", nil, forged); code != http.StatusUnauthorized {
			t.Errorf("forged cookie = %d, want 401", code)
		}
	})
}

func itoa(n uint64) string { return strconv.FormatUint(n, 10) }
