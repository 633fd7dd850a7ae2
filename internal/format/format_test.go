package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"pkt.systems/dlmgr/schema"
	"pkt.systems/dlmgr/toast"
)

func TestParseOutput(t *testing.T) {
	for input, want := range map[string]Output{"": OutputTable, "JSON": OutputJSON, " yaml ": OutputYAML} {
		got, err := ParseOutput(input)
		if err != nil || got != want {
			t.Fatalf("ParseOutput(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseOutput("xml"); err == nil {
		t.Fatalf("expected error for unsupported output")
	}
}

func TestPrintTableUsesWireNames(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, OutputTable, "")
	if err != nil {
		t.Fatalf("new printer: %v", err)
	}
	jobs := []schema.RunningJob{{ID: 3, Name: "music"}}
	if err := p.Print(jobs); err != nil {
		t.Fatalf("print: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "ID") || !strings.Contains(lines[0], "NAME") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[1], "3") || !strings.Contains(lines[1], "music") {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestPrintJSONWithQuery(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewPrinter(&buf, OutputJSON, "[].name")
	if err != nil {
		t.Fatalf("new printer: %v", err)
	}
	items := []schema.NamedItem{{Name: "a"}, {Name: "b"}}
	if err := p.Print(items); err != nil {
		t.Fatalf("print: %v", err)
	}
	var got []string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v (%s)", err, buf.String())
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected query result %v", got)
	}
}

func TestNewPrinterRejectsBadQuery(t *testing.T) {
	if _, err := NewPrinter(&bytes.Buffer{}, OutputJSON, "[?"); err == nil {
		t.Fatalf("expected invalid query error")
	}
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	p, _ := NewPrinter(&buf, OutputYAML, "")
	if err := p.Print(map[string]any{"status": "ok"}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "status: ok" {
		t.Fatalf("unexpected yaml %q", buf.String())
	}
}

func TestPrintStringVerbatim(t *testing.T) {
	var buf bytes.Buffer
	p, _ := NewPrinter(&buf, OutputTable, "")
	if err := p.Print("line one\nline two\n"); err != nil {
		t.Fatalf("print: %v", err)
	}
	if buf.String() != "line one\nline two\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestMessageStructured(t *testing.T) {
	var buf bytes.Buffer
	p, _ := NewPrinter(&buf, OutputJSON, "")
	p.Message("done")
	if !strings.Contains(buf.String(), `"message": "done"`) {
		t.Fatalf("unexpected message output %q", buf.String())
	}
}

func TestToastLinePlain(t *testing.T) {
	line := ToastLine(toast.Toast{Message: "Login failed", Severity: toast.SeverityError}, false)
	if line != "[error] Login failed" {
		t.Fatalf("unexpected toast line %q", line)
	}
	colored := ToastLine(toast.Toast{Message: "saved", Severity: toast.SeveritySuccess}, true)
	if !strings.Contains(colored, "saved") {
		t.Fatalf("expected message in coloured line, got %q", colored)
	}
}
