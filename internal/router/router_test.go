package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"studytimer/backend/internal/db"
	"studytimer/backend/internal/handler"
	"studytimer/backend/internal/reporter"
	"studytimer/backend/internal/repository"
	"studytimer/backend/internal/router"
	"studytimer/backend/internal/service"
	"studytimer/backend/internal/timer"
)

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type stateEnvelope struct {
	State struct {
		Mode                string `json:"mode"`
		RemainingSeconds    int    `json:"remainingSeconds"`
		Running             bool   `json:"running"`
		CompletedFocusCount int    `json:"completedFocusCount"`
		TaskLabel           string `json:"taskLabel"`
	} `json:"state"`
}

type reportEnvelope struct {
	Report struct {
		WeekStart string `json:"weekStart"`
		Days      []struct {
			DayOfWeek      int    `json:"dayOfWeek"`
			CompletedCount int    `json:"completedCount"`
			TargetCount    int    `json:"targetCount"`
			SubjectLabel   string `json:"subjectLabel"`
		} `json:"days"`
		TotalCompleted int      `json:"totalCompleted"`
		Suggestions    []string `json:"suggestions"`
	} `json:"report"`
}

type taskEnvelope struct {
	Task struct {
		ID    string `json:"id"`
		Day   string `json:"day"`
		Label string `json:"label"`
		Done  bool   `json:"done"`
	} `json:"task"`
}

type tasksEnvelope struct {
	Tasks []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Done  bool   `json:"done"`
	} `json:"tasks"`
}

func TestTimerLifecycleAndReporting(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "student@example.com", "123456")

	// Fresh engine: full focus countdown, stopped.
	state := getState(t, engine, user.Token)
	if state.State.Mode != "focus" || state.State.Running {
		t.Fatalf("unexpected initial state: %+v", state.State)
	}
	if state.State.RemainingSeconds != 1500 {
		t.Fatalf("expected 1500s initial countdown, got %d", state.State.RemainingSeconds)
	}

	// Start, then pause twice; the second pause must be a no-op.
	status, _ := requestJSON(t, engine, http.MethodPost, "/api/timer/start", user.Token, struct{}{})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on start, got %d", status)
	}
	status, firstPause := requestJSON(t, engine, http.MethodPost, "/api/timer/pause", user.Token, struct{}{})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on pause, got %d", status)
	}
	status, secondPause := requestJSON(t, engine, http.MethodPost, "/api/timer/pause", user.Token, struct{}{})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on repeated pause, got %d", status)
	}
	var pause1, pause2 stateEnvelope
	mustUnmarshal(t, firstPause, &pause1)
	mustUnmarshal(t, secondPause, &pause2)
	if pause1.State.Running || pause2.State.Running {
		t.Fatal("expected paused state")
	}
	if pause1.State.RemainingSeconds != pause2.State.RemainingSeconds {
		t.Fatalf("repeated pause changed remaining: %d vs %d",
			pause1.State.RemainingSeconds, pause2.State.RemainingSeconds)
	}

	// Attach a task label, then skip the focus interval: it counts as
	// completed and lands in the session history.
	status, _ = requestJSON(t, engine, http.MethodPost, "/api/timer/task", user.Token, map[string]string{
		"label": "chapter 4 notes",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on set task, got %d", status)
	}

	status, skipped := requestJSON(t, engine, http.MethodPost, "/api/timer/skip", user.Token, struct{}{})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on skip, got %d", status)
	}
	var afterSkip stateEnvelope
	mustUnmarshal(t, skipped, &afterSkip)
	if afterSkip.State.Mode != "short_break" || afterSkip.State.Running {
		t.Fatalf("expected stopped short break after skip, got %+v", afterSkip.State)
	}
	if afterSkip.State.CompletedFocusCount != 1 {
		t.Fatalf("expected 1 completed focus session, got %d", afterSkip.State.CompletedFocusCount)
	}

	// The write is fire and forget, so poll the report briefly.
	report := waitForReportTotal(t, engine, user.Token, 1)
	if len(report.Report.Days) != 7 {
		t.Fatalf("expected 7 day summaries, got %d", len(report.Report.Days))
	}

	// Releasing the engine discards in-flight state; the next request
	// gets a fresh countdown with a zero completion count.
	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/timer", user.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 on release, got %d", status)
	}
	state = getState(t, engine, user.Token)
	if state.State.CompletedFocusCount != 0 || state.State.RemainingSeconds != 1500 {
		t.Fatalf("expected fresh engine after release, got %+v", state.State)
	}

	// History survives the release: it lives in the database, not in
	// the engine.
	report = waitForReportTotal(t, engine, user.Token, 1)

	// Another user sees none of it.
	other := registerUser(t, engine, "other@example.com", "123456")
	status, otherRaw := requestJSON(t, engine, http.MethodGet, "/api/report/week", other.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for other user report, got %d", status)
	}
	var otherReport reportEnvelope
	mustUnmarshal(t, otherRaw, &otherReport)
	if otherReport.Report.TotalCompleted != 0 {
		t.Fatalf("expected empty report for other user, got %d", otherReport.Report.TotalCompleted)
	}
}

func TestSwitchModeValidation(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "student@example.com", "123456")

	status, _ := requestJSON(t, engine, http.MethodPost, "/api/timer/mode", user.Token, map[string]string{
		"mode": "nap",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid mode, got %d", status)
	}

	status, raw := requestJSON(t, engine, http.MethodPost, "/api/timer/mode", user.Token, map[string]string{
		"mode": "long_break",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 for valid mode, got %d", status)
	}
	var state stateEnvelope
	mustUnmarshal(t, raw, &state)
	if state.State.Mode != "long_break" || state.State.RemainingSeconds != 900 {
		t.Fatalf("unexpected state after mode switch: %+v", state.State)
	}
	// A manual switch never counts as a completion.
	if state.State.CompletedFocusCount != 0 {
		t.Fatalf("mode switch incremented completions: %d", state.State.CompletedFocusCount)
	}
}

func TestGoalsUpsertAndReportTargets(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "student@example.com", "123456")

	status, _ := requestJSON(t, engine, http.MethodPut, "/api/report/goals", user.Token, map[string]interface{}{
		"dayOfWeek":    1,
		"targetCount":  3,
		"subjectLabel": "math",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on goal upsert, got %d", status)
	}

	// Upserting the same weekday replaces, not duplicates.
	status, _ = requestJSON(t, engine, http.MethodPut, "/api/report/goals", user.Token, map[string]interface{}{
		"dayOfWeek":    1,
		"targetCount":  5,
		"subjectLabel": "math",
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200 on repeated upsert, got %d", status)
	}

	status, _ = requestJSON(t, engine, http.MethodPut, "/api/report/goals", user.Token, map[string]interface{}{
		"dayOfWeek":   9,
		"targetCount": 1,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid weekday, got %d", status)
	}

	status, raw := requestJSON(t, engine, http.MethodGet, "/api/report/week", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for report, got %d", status)
	}
	var report reportEnvelope
	mustUnmarshal(t, raw, &report)

	found := false
	for _, day := range report.Report.Days {
		if day.DayOfWeek == 1 {
			found = true
			if day.TargetCount != 5 || day.SubjectLabel != "math" {
				t.Fatalf("unexpected goal in report: %+v", day)
			}
		}
	}
	if !found {
		t.Fatal("expected Monday summary in report")
	}
}

func TestTaskListRoundTrip(t *testing.T) {
	engine := setupTestEngine(t)
	user := registerUser(t, engine, "student@example.com", "123456")

	day := time.Now().Local().Format("2006-01-02")
	status, createdRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]string{
		"day":   day,
		"label": "review flashcards",
	})
	if status != http.StatusCreated {
		t.Fatalf("expected 201 on task create, got %d", status)
	}
	var created taskEnvelope
	mustUnmarshal(t, createdRaw, &created)
	if created.Task.Done {
		t.Fatal("new task must start not done")
	}

	status, _ = requestJSON(t, engine, http.MethodPost, "/api/tasks", user.Token, map[string]string{
		"day":   day,
		"label": "   ",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank label, got %d", status)
	}

	status, toggledRaw := requestJSON(t, engine, http.MethodPost, "/api/tasks/"+created.Task.ID+"/toggle", user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on toggle, got %d", status)
	}
	var toggled taskEnvelope
	mustUnmarshal(t, toggledRaw, &toggled)
	if !toggled.Task.Done {
		t.Fatal("expected task done after toggle")
	}

	status, listRaw := requestJSON(t, engine, http.MethodGet, "/api/tasks?day="+day, user.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", status)
	}
	var list tasksEnvelope
	mustUnmarshal(t, listRaw, &list)
	if len(list.Tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(list.Tasks))
	}

	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/tasks/"+created.Task.ID, user.Token, nil)
	if status != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", status)
	}
	status, _ = requestJSON(t, engine, http.MethodDelete, "/api/tasks/"+created.Task.ID, user.Token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", status)
	}
}

func TestAuthRequired(t *testing.T) {
	engine := setupTestEngine(t)

	status, _ := requestJSON(t, engine, http.MethodGet, "/api/timer/state", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := setupTestEngine(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	recorder := httptest.NewRecorder()

	engine.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected allow-origin header: %s", recorder.Header().Get("Access-Control-Allow-Origin"))
	}
}

func setupTestEngine(t *testing.T) http.Handler {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	_, currentFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(currentFile), "..", "..", "migrations")
	if err := db.RunMigrations(database, migrationsDir); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(database)
	sessionRepo := repository.NewSessionRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	taskRepo := repository.NewTaskRepository(database)

	sessionReporter := reporter.New(reporter.ContextIdentity{}, sessionRepo)

	authService := service.NewAuthService(userRepo, "test-secret", 24*time.Hour)
	timerService := service.NewTimerService(timer.DefaultDurations(), nil, sessionReporter)
	taskService := service.NewTaskService(taskRepo, nil)
	reportService := service.NewReportService(sessionRepo, goalRepo, nil)

	authHandler := handler.NewAuthHandler(authService)
	timerHandler := handler.NewTimerHandler(timerService)
	taskHandler := handler.NewTaskHandler(taskService)
	reportHandler := handler.NewReportHandler(reportService)

	return router.New(authService, authHandler, timerHandler, taskHandler, reportHandler, []string{"http://localhost:5173"})
}

func registerUser(t *testing.T, server http.Handler, email, password string) authResponse {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s failed with status %d: %s", email, status, string(body))
	}
	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("empty token for user %s", email)
	}
	return resp
}

func getState(t *testing.T, server http.Handler, token string) stateEnvelope {
	t.Helper()
	status, body := requestJSON(t, server, http.MethodGet, "/api/timer/state", token, nil)
	if status != http.StatusOK {
		t.Fatalf("get state failed with status %d: %s", status, string(body))
	}
	var stateResp stateEnvelope
	if err := json.Unmarshal(body, &stateResp); err != nil {
		t.Fatalf("unmarshal state response: %v", err)
	}
	return stateResp
}

// waitForReportTotal polls the weekly report until the expected number
// of completed sessions shows up. Session writes happen on a separate
// goroutine, so the first read can race the insert.
func waitForReportTotal(t *testing.T, server http.Handler, token string, want int) reportEnvelope {
	t.Helper()

	var report reportEnvelope
	deadline := time.Now().Add(2 * time.Second)
	for {
		status, raw := requestJSON(t, server, http.MethodGet, "/api/report/week", token, nil)
		if status != http.StatusOK {
			t.Fatalf("get report failed with status %d: %s", status, string(raw))
		}
		mustUnmarshal(t, raw, &report)
		if report.Report.TotalCompleted == want {
			return report
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d completed sessions in report, got %d", want, report.Report.TotalCompleted)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func mustUnmarshal(t *testing.T, raw []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("unmarshal response: %v (%s)", err, string(raw))
	}
}

func requestJSON(
	t *testing.T,
	server http.Handler,
	method, path, token string,
	body interface{},
) (int, []byte) {
	t.Helper()

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		payload = raw
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder.Code, recorder.Body.Bytes()
}
