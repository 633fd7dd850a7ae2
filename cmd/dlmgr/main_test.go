package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pkt.systems/dlmgr/schema"
)

const testToken = "cli-token"

func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer "+testToken
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, schema.Health{Status: "healthy"})
	})
	mux.HandleFunc("/api/v1/system/version", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, http.StatusOK, schema.Version{Version: "2.4.0"})
	})
	mux.HandleFunc("/api/v1/system/check", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
			return
		}
		writeTestJSON(w, http.StatusOK, schema.SystemCheck{YtDlpInstalled: true, YtDlpVersion: "2024.01.01"})
	})
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("username") != "alice" || r.PostForm.Get("password") != "secret" {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Incorrect username or password"})
			return
		}
		writeTestJSON(w, http.StatusOK, schema.Token{AccessToken: testToken, TokenType: "bearer"})
	})
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Could not validate credentials"})
			return
		}
		writeTestJSON(w, http.StatusOK, schema.User{ID: 1, Username: "alice", Email: "alice@example.com", IsActive: true})
	})
	mux.HandleFunc("/api/v1/downloads/", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Not authenticated"})
			return
		}
		writeTestJSON(w, http.StatusOK, []schema.NamedItem{{Name: "music"}, {Name: "podcasts"}})
	})
	mux.HandleFunc("/api/v1/downloads/running", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != testToken {
			writeTestJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token"})
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, `data: [{"id":5,"name":"podcasts","user_id":1,"started_at":"2024-01-01T00:00:00","create_symlinks":false}]`+"\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeTestJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeTestConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	content := "config_version: 1\n" +
		"base_url: " + baseURL + "\n" +
		"state_dir: " + filepath.Join(dir, "state") + "\n" +
		"download_dir: " + filepath.Join(dir, "downloads") + "\n" +
		"credential:\n  encrypt: false\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	err := root.Execute()
	return out.String(), err
}

// cancelWriter collects output and cancels once needle has been written.
type cancelWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	needle string
	cancel context.CancelFunc
}

func (w *cancelWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.buf.Write(p)
	if strings.Contains(w.buf.String(), w.needle) {
		w.cancel()
	}
	return n, err
}

func (w *cancelWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"login", "logout", "whoami", "register", "status", "watch", "account", "users",
		"configs", "urls", "jobs", "files", "logs", "system", "tasks", "config", "version"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected %q command", name)
		}
	}
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv := newTestBackend(t)
	cfgPath := writeTestConfig(t, srv.URL)

	if _, err := runCLI(t, "wrong\n", "-c", cfgPath, "login", "alice", "--password-from-stdin"); err == nil || err.Error() != "Incorrect username or password" {
		t.Fatalf("expected login failure message, got %v", err)
	}
	out, err := runCLI(t, "secret\n", "-c", cfgPath, "login", "alice", "--password-from-stdin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if strings.TrimSpace(out) != "logged in as alice" {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = runCLI(t, "", "-c", cfgPath, "-o", "json", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	var user schema.User
	if err := json.Unmarshal([]byte(out), &user); err != nil {
		t.Fatalf("decode whoami: %v (%s)", err, out)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := runCLI(t, "", "-c", cfgPath, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := runCLI(t, "", "-c", cfgPath, "whoami"); err == nil {
		t.Fatalf("expected whoami to fail after logout")
	}
}

func TestEnvTokenQuery(t *testing.T) {
	srv := newTestBackend(t)
	cfgPath := writeTestConfig(t, srv.URL)
	t.Setenv("DLMGR_TOKEN", testToken)

	out, err := runCLI(t, "", "-c", cfgPath, "-o", "json", "-q", "[].name", "jobs", "sources")
	if err != nil {
		t.Fatalf("jobs sources: %v", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(out), &names); err != nil {
		t.Fatalf("decode output: %v (%s)", err, out)
	}
	if len(names) != 2 || names[0] != "music" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	srv := newTestBackend(t)
	cfgPath := writeTestConfig(t, srv.URL)
	if _, err := runCLI(t, "", "-c", cfgPath, "jobs", "sources"); err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("expected login requirement, got %v", err)
	}
}

func TestStatusCombinesResults(t *testing.T) {
	srv := newTestBackend(t)
	cfgPath := writeTestConfig(t, srv.URL)
	t.Setenv("DLMGR_TOKEN", testToken)

	out, err := runCLI(t, "", "-c", cfgPath, "-o", "json", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var report statusReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode status: %v (%s)", err, out)
	}
	if report.Health != "healthy" || report.Version != "2.4.0" || report.User != "alice" {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Tools == nil || !report.Tools.YtDlpInstalled {
		t.Fatalf("expected tool check in report, got %+v", report)
	}
}

func TestStatusServerDown(t *testing.T) {
	srv := newTestBackend(t)
	cfgPath := writeTestConfig(t, srv.URL)
	srv.Close()
	if _, err := runCLI(t, "", "-c", cfgPath, "status"); err == nil || err.Error() != "Server not available" {
		t.Fatalf("expected server not available, got %v", err)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := runCLI(t, "", "-c", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if _, err := runCLI(t, "", "-c", path, "config", "init"); err == nil {
		t.Fatalf("expected existing config to be kept")
	}
}

func TestJobsRunningReadsStreamSnapshot(t *testing.T) {
	srv := newTestBackend(t)
	t.Setenv("DLMGR_TOKEN", testToken)
	cfgPath := writeTestConfig(t, srv.URL)

	out, err := runCLI(t, "", "-c", cfgPath, "-o", "json", "jobs", "running")
	if err != nil {
		t.Fatalf("jobs running: %v", err)
	}
	var jobs []schema.RunningJob
	if err := json.Unmarshal([]byte(out), &jobs); err != nil {
		t.Fatalf("decode jobs: %v (%s)", err, out)
	}
	if len(jobs) != 1 || jobs[0].Name != "podcasts" {
		t.Fatalf("unexpected jobs %+v", jobs)
	}
}

func TestWatchPrintsOnlyFeedSnapshots(t *testing.T) {
	srv := newTestBackend(t)
	t.Setenv("DLMGR_TOKEN", testToken)
	cfgPath := writeTestConfig(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out := &cancelWriter{needle: "podcasts", cancel: cancel}
	root := newRootCmd()
	root.SetArgs([]string{"-c", cfgPath, "-o", "json", "watch"})
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Fatalf("watch: %v", err)
	}
	var jobs []schema.RunningJob
	if err := json.Unmarshal([]byte(out.String()), &jobs); err != nil {
		t.Fatalf("expected a single job snapshot, got %q: %v", out.String(), err)
	}
	if len(jobs) != 1 || jobs[0].ID != 5 {
		t.Fatalf("unexpected snapshot %+v", jobs)
	}
}

func TestParseAssignments(t *testing.T) {
	values, err := parseAssignments([]string{"MAX_JOBS=3", "DEBUG=true"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if values["MAX_JOBS"] != "3" || values["DEBUG"] != true {
		t.Fatalf("unexpected values %v", values)
	}
	if _, err := parseAssignments([]string{"=x"}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
