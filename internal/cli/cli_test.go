package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"classboard/internal/domain"
)

// fakeAPI serves the subset of the HTTP API the commands use.
type fakeAPI struct {
	mu            sync.Mutex
	token         string
	refreshToken  string
	students      []domain.Student
	timeline      []domain.Timeline
	pageSize      int
	failArchive   bool
	archiveCalls  []string
	deleteCalls   []string
	tagQueries    [][]string
	expireOnce    bool
	refreshCalled bool
}

func boolPtr(b bool) *bool { return &b }

func (f *fakeAPI) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+f.token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": v})
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func page[T any](all []T, r *http.Request, size int) []T {
	p, _ := strconv.Atoi(r.URL.Query().Get("page"))
	start := p * size
	if start >= len(all) {
		return []T{}
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req domain.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret123" {
			fail(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		ok(w, domain.LoginResponse{
			Instructor:   &domain.Instructor{ID: "inst-1", Name: "Coach Kim", Email: req.Email},
			AccessToken:  f.token,
			RefreshToken: f.refreshToken,
			ExpiresIn:    900,
		})
	})

	mux.HandleFunc("POST /api/v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var req domain.RefreshTokenRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.RefreshToken != f.refreshToken {
			fail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		f.refreshCalled = true
		ok(w, domain.TokenResponse{AccessToken: f.token, ExpiresIn: 900})
	})

	mux.HandleFunc("GET /api/v1/instructors/me", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			fail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ok(w, domain.Instructor{ID: "inst-1", Name: "Coach Kim", Email: "kim@example.com"})
	})

	mux.HandleFunc("GET /api/v1/students", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.authorized(r) {
			fail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		writeJSON(w, http.StatusOK, page(f.students, r, f.pageSize))
	})

	mux.HandleFunc("PATCH /api/v1/students/{id}/archive", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		f.archiveCalls = append(f.archiveCalls, id)
		if f.failArchive {
			fail(w, http.StatusInternalServerError, "database unavailable")
			return
		}
		for i, s := range f.students {
			if s.ID == id {
				f.students[i] = domain.ToggleArchived(s)
				ok(w, f.students[i])
				return
			}
		}
		fail(w, http.StatusNotFound, "student not found")
	})

	mux.HandleFunc("DELETE /api/v1/students/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deleteCalls = append(f.deleteCalls, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/v1/timeline", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.expireOnce {
			f.expireOnce = false
			fail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if tags := r.URL.Query()["tags"]; len(tags) > 0 {
			f.tagQueries = append(f.tagQueries, tags)
			var out []domain.Timeline
			for _, e := range f.timeline {
				if e.HasTags(tags) {
					out = append(out, e)
				}
			}
			if out == nil {
				out = []domain.Timeline{}
			}
			writeJSON(w, http.StatusOK, out)
			return
		}
		writeJSON(w, http.StatusOK, page(f.timeline, r, f.pageSize))
	})

	mux.HandleFunc("DELETE /api/v1/timeline/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deleteCalls = append(f.deleteCalls, r.PathValue("id"))
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

type harness struct {
	t      *testing.T
	api    *fakeAPI
	server *httptest.Server
	config string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := &fakeAPI{
		token:        "access-1",
		refreshToken: "refresh-1",
		pageSize:     2,
		students: []domain.Student{
			{ID: "stu-0001", Name: "Ada Lovelace", Tags: []string{"math"}},
			{ID: "stu-0002", Name: "Grace Hopper", Tags: []string{"cs"}, IsArchived: boolPtr(true)},
			{ID: "stu-0003", Name: "Alan Turing", Tags: []string{"math", "cs"}},
		},
		timeline: []domain.Timeline{
			{ID: "tl-0001", AuthorID: "inst-1", AuthorName: "Coach Kim", MainText: "Hill repeats", Tags: []string{"run"}},
			{ID: "tl-0002", AuthorID: "inst-1", AuthorName: "Coach Kim", MainText: "Proof practice", Tags: []string{"math", "advanced"}},
			{ID: "tl-0003", AuthorID: "inst-1", AuthorName: "Coach Kim", MainText: "Long run", Tags: []string{"run"}},
		},
	}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	return &harness{
		t:      t,
		api:    api,
		server: srv,
		config: filepath.Join(t.TempDir(), "config.yaml"),
	}
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	cmd := NewRootCmd()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(append([]string{"--config", h.config, "--server", h.server.URL}, args...))
	err := cmd.Execute()
	return out.String(), errBuf.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, stderr, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("classboard %v: %v\nstderr:\n%s", args, err, stderr)
	}
	return out
}

func (h *harness) login() {
	h.t.Helper()
	h.mustRun("login", "--email", "kim@example.com", "--password", "secret123")
}

func TestLoginStoresSession(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "--email", "kim@example.com", "--password", "secret123")
	if !strings.Contains(out, "Coach Kim") {
		t.Errorf("login output = %q", out)
	}

	cfg, err := LoadConfig(h.config)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.AccessToken != "access-1" || cfg.RefreshToken != "refresh-1" || cfg.InstructorID != "inst-1" {
		t.Errorf("stored config = %+v", cfg)
	}

	info, err := os.Stat(h.config)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	if out := h.mustRun("whoami"); !strings.Contains(out, "kim@example.com") {
		t.Errorf("whoami output = %q", out)
	}

	h.mustRun("logout")
	if _, _, err := h.run("whoami"); err == nil {
		t.Error("whoami after logout should fail")
	}
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("login", "--email", "kim@example.com", "--password", "wrong")
	if err == nil {
		t.Fatal("expected login to fail")
	}
	if !strings.Contains(stderr, "invalid credentials") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestStudentsList(t *testing.T) {
	h := newHarness(t)
	h.login()

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "first page hides archived",
			args:    []string{"students", "list"},
			want:    []string{"Ada Lovelace", "More students available"},
			notWant: []string{"Grace Hopper", "Alan Turing"},
		},
		{
			name:    "all pages",
			args:    []string{"students", "list", "--all"},
			want:    []string{"Ada Lovelace", "Alan Turing", "tags: #cs #math"},
			notWant: []string{"Grace Hopper", "More students available"},
		},
		{
			name:    "archived only",
			args:    []string{"students", "list", "--archived"},
			want:    []string{"Grace Hopper", "[archived]"},
			notWant: []string{"Ada Lovelace"},
		},
		{
			name:    "tag filter includes archived",
			args:    []string{"students", "list", "--tag", "cs"},
			want:    []string{"Grace Hopper", "Alan Turing"},
			notWant: []string{"Ada Lovelace"},
		},
		{
			name: "name filter without match",
			args: []string{"students", "list", "--name", "zzz"},
			want: []string{"No students match"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := h.mustRun(tt.args...)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestStudentsListJSONOrder(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("--json", "students", "list", "--tag", "cs")
	var env struct {
		Data []domain.Student `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(env.Data) != 2 || env.Data[0].Name != "Alan Turing" || env.Data[1].Name != "Grace Hopper" {
		t.Errorf("archived students should sort last: %+v", env.Data)
	}
}

func TestStudentsArchive(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("students", "archive", "stu-0003")
	if !strings.Contains(out, "Archived") || !strings.Contains(out, "Alan Turing") {
		t.Errorf("archive output = %q", out)
	}

	out = h.mustRun("students", "archive", "stu-0002")
	if !strings.Contains(out, "Restored") {
		t.Errorf("restore output = %q", out)
	}

	if got := h.api.archiveCalls; len(got) != 2 {
		t.Errorf("archive calls = %v", got)
	}
}

func TestStudentsArchiveFailure(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.api.failArchive = true

	_, stderr, err := h.run("students", "archive", "stu-0001")
	if err == nil {
		t.Fatal("expected archive to fail")
	}
	if !strings.Contains(stderr, "database unavailable") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestStudentsMutationUnknownTarget(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, stderr, err := h.run("students", "delete", "stu-9999")
	if err == nil {
		t.Fatal("expected delete of unknown student to fail")
	}
	if !strings.Contains(stderr, "student not found") {
		t.Errorf("stderr = %q", stderr)
	}
	if len(h.api.deleteCalls) != 0 {
		t.Errorf("no request should be sent, got %v", h.api.deleteCalls)
	}

	h.mustRun("students", "delete", "stu-0001")
	if len(h.api.deleteCalls) != 1 || h.api.deleteCalls[0] != "stu-0001" {
		t.Errorf("delete calls = %v", h.api.deleteCalls)
	}
}

func TestTimelineList(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("timeline", "list")
	if !strings.Contains(out, "Hill repeats") || strings.Contains(out, "Long run") {
		t.Errorf("first page:\n%s", out)
	}
	if !strings.Contains(out, "--pages 2") {
		t.Errorf("missing paging hint:\n%s", out)
	}

	out = h.mustRun("timeline", "list", "--all")
	if !strings.Contains(out, "Long run") || strings.Contains(out, "More entries") {
		t.Errorf("all pages:\n%s", out)
	}

	if _, _, err := h.run("timeline", "list", "--pages", "0"); err == nil {
		t.Error("--pages 0 should be rejected")
	}
}

func TestTimelineSearch(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("timeline", "search", "math", "advanced")
	if !strings.Contains(out, "Proof practice") || strings.Contains(out, "Hill repeats") {
		t.Errorf("search output:\n%s", out)
	}
	if got := h.api.tagQueries; len(got) != 1 || strings.Join(got[0], ",") != "math,advanced" {
		t.Errorf("tag queries = %v", got)
	}

	out = h.mustRun("timeline", "search", "swimming")
	if !strings.Contains(out, `No results for "swimming"`) {
		t.Errorf("empty search output:\n%s", out)
	}
}

func TestTimelineDelete(t *testing.T) {
	h := newHarness(t)
	h.login()

	out := h.mustRun("timeline", "delete", "tl-0003")
	if !strings.Contains(out, "Deleted tl-0003") {
		t.Errorf("output = %q", out)
	}
	if _, _, err := h.run("timeline", "delete", "tl-9999"); err == nil {
		t.Error("deleting an unknown entry should fail")
	}
}

func TestExpiredTokenIsRefreshed(t *testing.T) {
	h := newHarness(t)
	h.login()

	h.api.token = "access-2"
	h.api.expireOnce = true

	out := h.mustRun("timeline", "list")
	if !strings.Contains(out, "Hill repeats") {
		t.Errorf("output after refresh:\n%s", out)
	}
	if !h.api.refreshCalled {
		t.Error("refresh endpoint not called")
	}
	cfg, _ := LoadConfig(h.config)
	if cfg.AccessToken != "access-2" {
		t.Errorf("stored access token = %q, want access-2", cfg.AccessToken)
	}
}

func TestNotLoggedIn(t *testing.T) {
	h := newHarness(t)
	_, stderr, err := h.run("students", "list")
	if err == nil || !strings.Contains(stderr, "classboard login") {
		t.Errorf("err = %v, stderr = %q", err, stderr)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(missing) error = %v", err)
	}
	if cfg.Server != DefaultServer {
		t.Errorf("default server = %q", cfg.Server)
	}

	cfg.Debounce = 150 * time.Millisecond
	cfg.Email = "kim@example.com"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "debounce: 150ms") {
		t.Errorf("config file:\n%s", data)
	}

	os.WriteFile(path, []byte("server: [oops\n"), 0o600)
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed yaml should fail")
	}
}
