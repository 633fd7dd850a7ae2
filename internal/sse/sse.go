// Package sse reads and writes text/event-stream frames.
package sse

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ContentType is the media type of an event stream.
const ContentType = "text/event-stream"

// Event is one dispatched event-stream frame.
type Event struct {
	ID    string
	Type  string
	Data  string
	Retry time.Duration
}

// Reader decodes events from a stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next blocks until a complete event has been read. Frames without data are
// skipped. At end of stream it returns io.EOF; a trailing frame that was not
// terminated by a blank line is discarded.
func (r *Reader) Next() (Event, error) {
	var (
		event   Event
		data    []string
		hasData bool
	)
	for {
		line, err := r.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return Event{}, io.EOF
			}
			return Event{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if hasData {
				event.Data = strings.Join(data, "\n")
				return event, nil
			}
			event = Event{}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
			hasData = true
		case "event":
			event.Type = value
		case "id":
			event.ID = value
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				event.Retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

// Write encodes event as a frame. Multi-line data is split across data lines.
func Write(w io.Writer, event Event) error {
	var b strings.Builder
	if event.ID != "" {
		fmt.Fprintf(&b, "id: %s\n", event.ID)
	}
	if event.Type != "" {
		fmt.Fprintf(&b, "event: %s\n", event.Type)
	}
	for _, line := range strings.Split(event.Data, "\n") {
		fmt.Fprintf(&b, "data: %s\n", line)
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}
