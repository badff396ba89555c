package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/mrzor/tracelog/internal/config"
	"github.com/mrzor/tracelog/internal/stats"
)

// Write renders reports in format (one of the config.Format* values).
func Write(w io.Writer, format string, reports []*Report) error {
	switch format {
	case config.FormatText:
		return WriteText(w, reports)
	case config.FormatJSON:
		return WriteJSON(w, reports)
	case config.FormatYAML:
		return WriteYAML(w, reports)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteJSON writes reports as an indented JSON array.
func WriteJSON(w io.Writer, reports []*Report) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(nonNil(reports)); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteYAML writes reports as a YAML sequence.
func WriteYAML(w io.Writer, reports []*Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(nonNil(reports)); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

func nonNil(reports []*Report) []*Report {
	if reports == nil {
		return []*Report{}
	}
	return reports
}

// WriteText writes reports as aligned plain text, separated by blank lines.
func WriteText(w io.Writer, reports []*Report) error {
	var buf bytes.Buffer
	for i, r := range reports {
		if i > 0 {
			buf.WriteByte('\n')
		}
		writeReportText(&buf, r)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeReportText(buf *bytes.Buffer, r *Report) {
	fmt.Fprintf(buf, "%s: format %s, name width %d, %d events", r.Source, r.Version, r.MaxTaskNameLen, r.Events)
	if r.Span != nil {
		fmt.Fprintf(buf, ", %dus..%dus", r.Span.First, r.Span.Last)
	}
	buf.WriteString("\n\n")

	nameWidth := runewidth.StringWidth("NAME")
	for _, t := range r.Tasks {
		nameWidth = max(nameWidth, runewidth.StringWidth(displayName(t.Name)))
	}

	fmt.Fprintf(buf, "%6s  %s  %10s  %6s  %10s\n", "TASK", padRight("NAME", nameWidth), "CREATED", "RUNS", "BUSY")
	for _, t := range r.Tasks {
		created := "-"
		if t.Created {
			created = fmt.Sprintf("%d", t.CreatedAt)
		}
		fmt.Fprintf(buf, "%6d  %s  %10s  %6d  %10s\n",
			t.Number, padRight(displayName(t.Name), nameWidth), created, t.Count, formatDuration(t.Busy))

		keys := make([]string, 0, len(t.Attributes))
		for k := range t.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(buf, "%8s%s=%s\n", "", k, t.Attributes[k])
		}
	}
	buf.WriteByte('\n')

	if !hasExecutions(r) {
		buf.WriteString("no completed executions\n")
	} else {
		fmt.Fprintf(buf, "min execution:  %s\n", r.describe(r.Stats.MinExecution))
		fmt.Fprintf(buf, "max execution:  %s\n", r.describe(r.Stats.MaxExecution))
		fmt.Fprintf(buf, "mean execution: %s\n", formatDuration(r.Stats.MeanExecution))
		fmt.Fprintf(buf, "min idle:       %s\n", formatDuration(r.Stats.MinIdle))
		fmt.Fprintf(buf, "max idle:       %s\n", formatDuration(r.Stats.MaxIdle))
	}

	for _, o := range r.Open {
		fmt.Fprintf(buf, "open: task %d (%s) since %dus\n", o.Number, displayName(r.TaskName(o.Number)), o.Since)
	}
}

func (r *Report) describe(td stats.TaskDuration) string {
	return fmt.Sprintf("%s by task %d (%s)", formatDuration(td.Duration), td.Task, displayName(r.TaskName(td.Task)))
}

func hasExecutions(r *Report) bool {
	for _, t := range r.Tasks {
		if t.Count > 0 {
			return true
		}
	}
	return false
}

func displayName(name string) string {
	if name == "" {
		return "?"
	}
	return name
}

func formatDuration(d stats.Duration) string {
	return fmt.Sprintf("%dus", d)
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
