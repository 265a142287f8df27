package output

import (
	"fmt"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/table"
)

// Format selects how results are rendered.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	YAML  Format = "yaml"
	CSV   Format = "csv"
)

// ParseFormat validates a --output value. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Table, nil
	case Table, JSON, YAML, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json, yaml or csv)", s)
	}
}

// Write renders t in format f.
func Write(w io.Writer, f Format, t *table.Table) error {
	switch f {
	case JSON:
		enc := gojson.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t.Maps())
	case YAML:
		return writeYAML(w, t)
	case CSV:
		return t.WriteCSV(w)
	default:
		return t.WriteText(w)
	}
}

// WriteRows renders statement rows, which carry no column names.
func WriteRows(w io.Writer, f Format, rows []connector.Row) error {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	t := &table.Table{}
	for i := range cols {
		t.Columns = append(t.Columns, fmt.Sprintf("column_%d", i+1))
	}
	for _, r := range rows {
		row := make([]any, cols)
		copy(row, r)
		t.Append(row)
	}
	return Write(w, f, t)
}

// writeYAML emits one mapping per row with keys in column order.
func writeYAML(w io.Writer, t *table.Table) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for i, c := range t.Columns {
			var val yaml.Node
			if err := val.Encode(row[i]); err != nil {
				return fmt.Errorf("failed to encode %s: %w", c, err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c}, &val)
		}
		seq.Content = append(seq.Content, m)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}
