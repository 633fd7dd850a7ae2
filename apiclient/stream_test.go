package apiclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pkt.systems/dlmgr/internal/sse"
	"pkt.systems/dlmgr/schema"
)

func TestOpenRunningJobsPassesTokenQuery(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token"})
			return
		}
		w.Header().Set("Content-Type", sse.ContentType)
		_ = sse.Write(w, sse.Event{Data: `[{"id":1,"name":"music","user_id":2,"started_at":"2024-01-01T00:00:00","create_symlinks":true}]`})
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })
	client := newTestClient(t, srv.URL)

	_, err := client.OpenRunningJobs(context.Background())
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	require.True(t, reqErr.Unauthorized())
	require.Equal(t, "Invalid token", reqErr.Error())

	require.NoError(t, client.Credentials().Set("tok"))
	stream, err := client.OpenRunningJobs(context.Background())
	require.NoError(t, err)
	ev, err := stream.Next()
	require.NoError(t, err)
	require.Contains(t, ev.Data, `"name":"music"`)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	_, err = stream.Next()
	require.ErrorIs(t, err, schema.ErrFeedClosed)
}

func TestRedactedPathHidesToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/downloads/running?token=secret", nil)
	require.Equal(t, "/api/v1/downloads/running?token=redacted", redactedPath(req.URL))
}

func TestRunningJobsTakesFirstEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/downloads/running" || r.URL.Query().Get("token") != "tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token"})
			return
		}
		w.Header().Set("Content-Type", sse.ContentType)
		_ = sse.Write(w, sse.Event{Data: `[{"id":3,"name":"podcasts","user_id":2,"started_at":"2024-01-01T00:00:00","create_symlinks":false}]`})
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	client := newTestClient(t, srv.URL)
	require.NoError(t, client.Credentials().Set("tok"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	jobs, err := client.RunningJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, schema.JobID(3), jobs[0].ID)
	require.Equal(t, "podcasts", jobs[0].Name)
	require.NoError(t, ctx.Err())
}

func TestRunningJobsEmptyAndEndedStream(t *testing.T) {
	serve := func(body string) *Client {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", sse.ContentType)
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(srv.Close)
		client := newTestClient(t, srv.URL)
		require.NoError(t, client.Credentials().Set("tok"))
		return client
	}

	jobs, err := serve("data: []\n\n").RunningJobs(context.Background())
	require.NoError(t, err)
	require.NotNil(t, jobs)
	require.Empty(t, jobs)

	_, err = serve(": keepalive\n\n").RunningJobs(context.Background())
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
