package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"

	"pkt.systems/dlmgr/internal/sse"
	"pkt.systems/dlmgr/schema"
)

// JobStream is an open running-jobs event stream.
type JobStream struct {
	body   io.ReadCloser
	reader *sse.Reader
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// OpenRunningJobs subscribes to the running-jobs event stream. The credential
// travels as the token query parameter because event streams cannot carry an
// Authorization header. The stream lives until Close or until ctx ends.
func (c *Client) OpenRunningJobs(ctx context.Context) (*JobStream, error) {
	var query url.Values
	if token, ok := c.creds.Get(); ok {
		query = url.Values{"token": {token}}
	}
	endpoint, err := op{route: routeRunningJobs, query: query}.endpoint()
	if err != nil {
		return nil, &RequestError{Message: err.Error(), Err: err}
	}
	streamCtx, cancel := context.WithCancel(ctx)
	req, err := c.newRequest(streamCtx, routeRunningJobs.Method, endpoint, nil, http.Header{
		"Accept":        {sse.ContentType},
		"Cache-Control": {"no-cache"},
	})
	if err != nil {
		cancel()
		return nil, &RequestError{Message: err.Error(), Err: err}
	}
	req.Header.Del("Content-Type")
	resp, err := c.stream.Do(req)
	if err != nil {
		cancel()
		return nil, transportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := responseError(resp, fallbackDefault)
		_ = resp.Body.Close()
		cancel()
		return nil, reqErr
	}
	return &JobStream{
		body:   resp.Body,
		reader: sse.NewReader(resp.Body),
		cancel: cancel,
	}, nil
}

// RunningJobs returns one snapshot of the running jobs. The backend only
// serves the list as an event stream, so the first event is taken and the
// stream closed.
func (c *Client) RunningJobs(ctx context.Context) ([]schema.RunningJob, error) {
	stream, err := c.OpenRunningJobs(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = stream.Close() }()
	ev, err := stream.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, transportError(io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	jobs := []schema.RunningJob{}
	if err := json.Unmarshal([]byte(ev.Data), &jobs); err != nil {
		return nil, &RequestError{Message: fallbackDefault, Err: err}
	}
	if jobs == nil {
		jobs = []schema.RunningJob{}
	}
	return jobs, nil
}

// Next blocks for the next event. It returns io.EOF when the server ends the
// stream and schema.ErrFeedClosed after Close.
func (s *JobStream) Next() (sse.Event, error) {
	ev, err := s.reader.Next()
	if err != nil {
		if s.isClosed() {
			return sse.Event{}, schema.ErrFeedClosed
		}
		if errors.Is(err, io.EOF) {
			return sse.Event{}, io.EOF
		}
		return sse.Event{}, transportError(err)
	}
	return ev, nil
}

// Close ends the stream. It is safe to call more than once and concurrently
// with Next.
func (s *JobStream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	return s.body.Close()
}

func (s *JobStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
