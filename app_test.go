package dlmgr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pkt.systems/dlmgr/apiclient"
	"pkt.systems/dlmgr/internal/appconfig"
	"pkt.systems/dlmgr/internal/sse"
	"pkt.systems/dlmgr/internal/timer"
	"pkt.systems/dlmgr/jobfeed"
	"pkt.systems/dlmgr/schema"
	"pkt.systems/dlmgr/toast"
)

const goodToken = "good-token"

type backend struct {
	srv       *httptest.Server
	snapshots chan string

	mu      sync.Mutex
	streams int
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{snapshots: make(chan string, 8)}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token"})
			return
		}
		writeJSON(w, http.StatusOK, schema.User{ID: 7, Username: "alice", IsActive: true})
	})
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("password") != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Incorrect username or password"})
			return
		}
		writeJSON(w, http.StatusOK, schema.Token{AccessToken: goodToken, TokenType: "bearer"})
	})
	mux.HandleFunc("/api/v1/downloads/running", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != goodToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token"})
			return
		}
		b.mu.Lock()
		b.streams++
		b.mu.Unlock()
		w.Header().Set("Content-Type", sse.ContentType)
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		for {
			select {
			case data := <-b.snapshots:
				_ = sse.Write(w, sse.Event{Data: data})
				w.(http.Flusher).Flush()
			case <-r.Context().Done():
				return
			}
		}
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) streamCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.streams
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(t *testing.T, baseURL, token string) appconfig.Config {
	t.Helper()
	dir := t.TempDir()
	return appconfig.Config{
		ConfigVersion: appconfig.CurrentConfigVersion,
		BaseURL:       baseURL,
		StateDir:      dir,
		DownloadDir:   filepath.Join(dir, "downloads"),
		Credential: appconfig.CredentialConfig{
			TokenFile:    filepath.Join(dir, "credentials.json"),
			KeyStorePath: filepath.Join(dir, "keys.bundle"),
		},
		HTTP:  appconfig.HTTPConfig{TimeoutSeconds: 5},
		Feed:  appconfig.FeedConfig{RetryDelayMS: 5000},
		Toast: appconfig.ToastConfig{DurationMS: 4000},
		Token: token,
	}
}

func newTestApp(t *testing.T, cfg appconfig.Config, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithScheduler(timer.NewManual())}, opts...)
	app, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func hasToast(app *App, severity toast.Severity, message string) bool {
	for _, item := range app.Toasts.Toasts().Get() {
		if item.Severity == severity && item.Message == message {
			return true
		}
	}
	return false
}

func TestStartRestoresSessionAndRunsFeed(t *testing.T) {
	b := newBackend(t)
	app := newTestApp(t, testConfig(t, b.srv.URL, goodToken))

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	user := app.Session.User().Get()
	if user == nil || user.Username != "alice" {
		t.Fatalf("expected restored user, got %+v", user)
	}
	waitFor(t, "feed stream", func() bool { return b.streamCount() == 1 })

	b.snapshots <- `[{"id":1,"name":"music","user_id":7,"started_at":"2024-01-01T00:00:00","create_symlinks":false}]`
	waitFor(t, "job snapshot", func() bool { return len(app.Feed.Jobs().Get()) == 1 })

	app.Session.Logout()
	if app.Feed.State() != jobfeed.StateClosed {
		t.Fatalf("expected feed closed after logout, got %s", app.Feed.State())
	}
	if len(app.Feed.Jobs().Get()) != 0 {
		t.Fatalf("expected empty job list after logout")
	}
	if app.Credentials.Has() {
		t.Fatalf("expected credential cleared")
	}
}

func TestStartTwiceRejected(t *testing.T) {
	b := newBackend(t)
	app := newTestApp(t, testConfig(t, b.srv.URL, ""))
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := app.Start(context.Background()); err == nil {
		t.Fatalf("expected second start to fail")
	}
}

func TestStartWithRejectedTokenReportsError(t *testing.T) {
	b := newBackend(t)
	app := newTestApp(t, testConfig(t, b.srv.URL, "stale"))

	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if app.Session.Authenticated().Get() {
		t.Fatalf("expected signed out session")
	}
	if app.Credentials.Has() {
		t.Fatalf("expected rejected credential cleared")
	}
	if !hasToast(app, toast.SeverityError, "Invalid token") {
		t.Fatalf("expected error toast, got %+v", app.Toasts.Toasts().Get())
	}
	if app.Feed.State() != jobfeed.StateClosed {
		t.Fatalf("expected closed feed, got %s", app.Feed.State())
	}
}

func TestLoginStartsFeed(t *testing.T) {
	b := newBackend(t)
	app := newTestApp(t, testConfig(t, b.srv.URL, ""))
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if app.Feed.State() != jobfeed.StateClosed {
		t.Fatalf("expected closed feed before login")
	}
	if err := app.Session.Login(context.Background(), "alice", "wrong"); err == nil {
		t.Fatalf("expected login failure")
	}
	if err := app.Session.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	waitFor(t, "feed stream", func() bool { return b.streamCount() == 1 })
	if !app.Session.Authenticated().Get() {
		t.Fatalf("expected authenticated session")
	}
}

func TestJobNotices(t *testing.T) {
	b := newBackend(t)
	app := newTestApp(t, testConfig(t, b.srv.URL, goodToken), WithJobNotices())
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "feed stream", func() bool { return b.streamCount() == 1 })

	job := func(id int, name string) string {
		return fmt.Sprintf(`{"id":%d,"name":%q,"user_id":7,"started_at":"2024-01-01T00:00:00","create_symlinks":false}`, id, name)
	}
	b.snapshots <- "[" + job(1, "music") + "]"
	waitFor(t, "baseline", func() bool { return len(app.Feed.Jobs().Get()) == 1 })
	if got := app.Toasts.Toasts().Get(); len(got) != 0 {
		t.Fatalf("expected no toast for baseline, got %+v", got)
	}

	b.snapshots <- "[" + job(1, "music") + "," + job(2, "video") + "]"
	waitFor(t, "started toast", func() bool { return hasToast(app, toast.SeverityInfo, "Download started: video") })

	b.snapshots <- "[" + job(2, "video") + "]"
	waitFor(t, "finished toast", func() bool { return hasToast(app, toast.SeveritySuccess, "Download finished: music") })

	app.Session.Logout()
	for _, item := range app.Toasts.Toasts().Get() {
		if strings.Contains(item.Message, "video") && item.Severity == toast.SeveritySuccess {
			t.Fatalf("logout must not report jobs as finished")
		}
	}
}

func TestReportUsesRequestMessage(t *testing.T) {
	b := newBackend(t)
	app := newTestApp(t, testConfig(t, b.srv.URL, ""))
	app.Report(&apiclient.RequestError{Status: http.StatusBadRequest, Message: "name: field required"})
	app.Report(context.Canceled)
	app.Report(nil)
	got := app.Toasts.Toasts().Get()
	if len(got) != 1 || got[0].Message != "name: field required" || got[0].Severity != toast.SeverityError {
		t.Fatalf("unexpected toasts %+v", got)
	}
}

func TestEncryptedCredentialFileSurvivesRestart(t *testing.T) {
	b := newBackend(t)
	cfg := testConfig(t, b.srv.URL, "")
	cfg.Credential.Encrypt = true

	first := newTestApp(t, cfg)
	if err := first.Credentials.Set(goodToken); err != nil {
		t.Fatalf("set credential: %v", err)
	}
	second := newTestApp(t, cfg)
	got, ok := second.Credentials.Get()
	if !ok || got != goodToken {
		t.Fatalf("expected persisted credential, got %q", got)
	}
}
