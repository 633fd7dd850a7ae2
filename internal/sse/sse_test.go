package sse

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestReaderParsesFrames(t *testing.T) {
	stream := ": keepalive\n" +
		"data: [1,2]\n\n" +
		"id: 7\nevent: jobs\nretry: 1500\ndata: first\ndata: second\r\n\r\n" +
		"event: empty\n\n" +
		"data:nospace\n\n"
	r := NewReader(strings.NewReader(stream))

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("first event: %v", err)
	}
	if ev.Data != "[1,2]" {
		t.Fatalf("unexpected data %q", ev.Data)
	}

	ev, err = r.Next()
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	if ev.ID != "7" || ev.Type != "jobs" || ev.Data != "first\nsecond" || ev.Retry != 1500*time.Millisecond {
		t.Fatalf("unexpected event %+v", ev)
	}

	ev, err = r.Next()
	if err != nil {
		t.Fatalf("third event: %v", err)
	}
	if ev.Data != "nospace" || ev.Type != "" {
		t.Fatalf("unexpected event %+v", ev)
	}

	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReaderDropsUnterminatedFrame(t *testing.T) {
	r := NewReader(strings.NewReader("data: partial\n"))
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Event{ID: "3", Data: "a\nb"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "id: 3\ndata: a\ndata: b\n\n" {
		t.Fatalf("unexpected frame %q", buf.String())
	}
	ev, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if ev.ID != "3" || ev.Data != "a\nb" {
		t.Fatalf("unexpected event %+v", ev)
	}
}
