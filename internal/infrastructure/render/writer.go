// Package render turns a resolved VersionInfo into one of the output
// formats CI consumes. All formats emit the same fields in the same order.
package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/felixgeelhaar/verctl/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatEnv  Format = "env"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
)

// Options tune the individual formats.
type Options struct {
	// Fields restricts output to a subset of field names; nil means all.
	Fields []string
	// JSONPretty switches JSON to indented multi-line output.
	JSONPretty bool
	// EnvPrefix is prepended (uppercased) to every env variable key.
	EnvPrefix string
	// CSVHeader emits a header row naming the fields before the data row.
	CSVHeader bool
}

type Writer struct{}

func (Writer) Write(w io.Writer, info domain.VersionInfo, format Format, opts Options) error {
	fields, err := info.Select(opts.Fields)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON:
		return writeJSON(w, fields, opts.JSONPretty)
	case FormatEnv:
		return writeEnv(w, fields, opts.EnvPrefix)
	case FormatCSV:
		return writeCSV(w, fields, opts.CSVHeader)
	case FormatText:
		return writeText(w, fields)
	default:
		return fmt.Errorf("%w: unknown output format %q", domain.ErrFormat, format)
	}
}

// writeJSON assembles the object by hand so the fixed field order survives;
// a map would lose it.
func writeJSON(w io.Writer, fields []domain.Field, pretty bool) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if pretty {
			buf.WriteString("\n  ")
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return err
		}
		buf.Write(key)
		if pretty {
			buf.WriteString(": ")
		} else {
			buf.WriteByte(':')
		}
		buf.Write(value)
	}
	if pretty && len(fields) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func writeEnv(w io.Writer, fields []domain.Field, prefix string) error {
	prefix = strings.ToUpper(prefix)
	for _, f := range fields {
		value := ""
		switch v := f.Value.(type) {
		case string:
			value = fmt.Sprintf("%q", v)
		default:
			value = fmt.Sprint(v)
		}
		if _, err := fmt.Fprintf(w, "%s%s=%s\n", prefix, strings.ToUpper(f.Name), value); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(w io.Writer, fields []domain.Field, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		names := make([]string, len(fields))
		for i, f := range fields {
			names[i] = f.Name
		}
		if err := cw.Write(names); err != nil {
			return err
		}
	}
	row := make([]string, len(fields))
	for i, f := range fields {
		row[i] = fmt.Sprint(f.Value)
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func writeText(w io.Writer, fields []domain.Field) error {
	colorize := colorEnabled(w)
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	tagStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A")).Bold(true)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range fields {
		name := f.Name
		value := fmt.Sprint(f.Value)
		if colorize {
			name = keyStyle.Render(name)
			if f.Name == "tag" || f.Name == "semver" {
				value = tagStyle.Render(value)
			}
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", name, value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
