package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	jmespath "github.com/jmespath-community/go-jmespath"
	"gopkg.in/yaml.v3"
)

// Output selects how values are rendered.
type Output string

const (
	OutputTable Output = "table"
	OutputJSON  Output = "json"
	OutputYAML  Output = "yaml"
)

// ParseOutput validates an output name. Empty selects the table renderer.
func ParseOutput(value string) (Output, error) {
	switch Output(strings.ToLower(strings.TrimSpace(value))) {
	case "", OutputTable:
		return OutputTable, nil
	case OutputJSON:
		return OutputJSON, nil
	case OutputYAML:
		return OutputYAML, nil
	default:
		return "", fmt.Errorf("unsupported output %q (use table, json or yaml)", value)
	}
}

// Printer renders API values to a writer.
type Printer struct {
	out    io.Writer
	output Output
	query  string
}

// NewPrinter returns a printer. A non-empty query is a JMESPath expression
// applied before rendering.
func NewPrinter(out io.Writer, output Output, query string) (*Printer, error) {
	query = strings.TrimSpace(query)
	if query != "" {
		if _, err := jmespath.Compile(query); err != nil {
			return nil, fmt.Errorf("invalid query: %w", err)
		}
	}
	if output == "" {
		output = OutputTable
	}
	return &Printer{out: out, output: output, query: query}, nil
}

// Print renders v. Strings are written verbatim in table mode.
func (p *Printer) Print(v any) error {
	data, err := normalize(v)
	if err != nil {
		return err
	}
	if p.query != "" {
		data, err = jmespath.Search(p.query, data)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
	}
	switch p.output {
	case OutputJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case OutputYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	default:
		return writeTable(p.out, data)
	}
}

// Message prints a one-line status unless a structured output was requested.
func (p *Printer) Message(text string) {
	if p.output != OutputTable {
		_ = p.Print(map[string]string{"message": text})
		return
	}
	_, _ = fmt.Fprintln(p.out, text)
}

// normalize converts v into the generic JSON shape so that field names match
// the wire format in every renderer.
func normalize(v any) (any, error) {
	if raw, ok := v.(json.RawMessage); ok {
		if len(raw) == 0 {
			return nil, nil
		}
		var out any
		if err := json.Unmarshal(raw, &out); err != nil {
			return string(raw), nil
		}
		return out, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeTable(w io.Writer, data any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch value := data.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(w, strings.TrimRight(value, "\n"))
		return err
	case []any:
		if len(value) == 0 {
			return nil
		}
		columns := columnsOf(value)
		if len(columns) == 0 {
			for _, item := range value {
				fmt.Fprintln(tw, cell(item))
			}
			return tw.Flush()
		}
		fmt.Fprintln(tw, strings.ToUpper(strings.Join(columns, "\t")))
		for _, item := range value {
			row, _ := item.(map[string]any)
			cells := make([]string, len(columns))
			for i, col := range columns {
				cells[i] = cell(row[col])
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		return tw.Flush()
	case map[string]any:
		keys := make([]string, 0, len(value))
		for key := range value {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(tw, "%s:\t%s\n", key, cell(value[key]))
		}
		return tw.Flush()
	default:
		_, err := fmt.Fprintln(w, cell(value))
		return err
	}
}

// columnsOf returns the sorted union of object keys. Non-object rows yield no
// columns.
func columnsOf(rows []any) []string {
	seen := map[string]struct{}{}
	for _, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			return nil
		}
		for key := range obj {
			seen[key] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

func cell(v any) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case string:
		return strings.ReplaceAll(value, "\n", " ")
	case float64:
		if value == float64(int64(value)) {
			return fmt.Sprintf("%d", int64(value))
		}
		return fmt.Sprintf("%g", value)
	case map[string]any, []any:
		data, _ := json.Marshal(value)
		return string(data)
	default:
		return fmt.Sprint(value)
	}
}
