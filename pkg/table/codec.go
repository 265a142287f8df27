package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// CSVOptions controls CSV decoding.
type CSVOptions struct {
	// FieldDelimiter separates cells. Defaults to ','.
	FieldDelimiter rune
	// RecordDelimiter separates rows. Anything other than "\n" or "\r\n" is
	// rewritten to a newline before parsing.
	RecordDelimiter string
	// InferTypes converts columns whose cells all parse as int64 or float64.
	InferTypes bool
}

// ReadCSV parses CSV data whose first row is the header.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	if opts.RecordDelimiter != "" && opts.RecordDelimiter != "\n" && opts.RecordDelimiter != "\r\n" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		r = strings.NewReader(strings.ReplaceAll(string(data), opts.RecordDelimiter, "\n"))
	}

	cr := csv.NewReader(r)
	if opts.FieldDelimiter != 0 {
		cr.Comma = opts.FieldDelimiter
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	t := &Table{Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row %d: %w", len(t.Rows)+1, err)
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		t.Append(row)
	}

	if opts.InferTypes {
		inferColumns(t)
	}
	return t, nil
}

// inferColumns converts string columns to int64 or float64 when every
// non-empty cell parses; empty cells become nil.
func inferColumns(t *Table) {
	for c := range t.Columns {
		isInt, isFloat := true, true
		for _, row := range t.Rows {
			s, _ := row[c].(string)
			if s == "" {
				continue
			}
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		for _, row := range t.Rows {
			s, _ := row[c].(string)
			switch {
			case s == "" && (isInt || isFloat):
				row[c] = nil
			case isInt:
				row[c], _ = strconv.ParseInt(s, 10, 64)
			case isFloat:
				row[c], _ = strconv.ParseFloat(s, 64)
			}
		}
	}
}

// WriteCSV writes the header and rows as CSV.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = FormatValue(v)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeJSONRecords decodes a JSON array (or a single object) into records,
// keeping object keys in document order.
func DecodeJSONRecords(data []byte) ([]*Record, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	v, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("failed to decode json records: %w", err)
	}

	switch x := v.(type) {
	case *Record:
		return []*Record{x}, nil
	case []any:
		out := make([]*Record, 0, len(x))
		for i, item := range x {
			rec, ok := item.(*Record)
			if !ok {
				return nil, fmt.Errorf("json record %d is %T, not an object", i, item)
			}
			out = append(out, rec)
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("json document is %T, not an array of objects", v)
	}
}

func decodeValue(dec *gojson.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case gojson.Delim:
		switch v {
		case '{':
			rec := NewRecord()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				rec.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return rec, nil
		case '[':
			arr := []any{}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", v)
		}
	case float64:
		return normalizeNumber(v), nil
	case gojson.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		return v.Float64()
	default:
		return v, nil
	}
}

// normalizeNumber turns integral floats into int64 so that ids survive a round trip.
func normalizeNumber(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f)
	}
	return f
}
