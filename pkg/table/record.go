package table

import "sort"

// Record is a key-ordered object, as decoded from JSON or returned by record APIs.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// RecordFromMap builds a record from a map with keys in sorted order.
func RecordFromMap(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := NewRecord()
	for _, k := range keys {
		r.Set(k, m[k])
	}
	return r
}

// Set stores a value, keeping the position of an existing key.
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Delete removes key.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return len(r.keys)
}

// Map returns a plain map copy of the record.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		m[k] = r.values[k]
	}
	return m
}

// Flatten lifts nested records into dotted keys: {"a":{"b":1}} becomes {"a.b":1}.
// Nil nested values stay as a single nil cell.
func Flatten(r *Record) *Record {
	out := NewRecord()
	flattenInto(out, "", r)
	return out
}

func flattenInto(out *Record, prefix string, r *Record) {
	for _, k := range r.keys {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch v := r.values[k].(type) {
		case *Record:
			flattenInto(out, key, v)
		case map[string]any:
			flattenInto(out, key, RecordFromMap(v))
		default:
			out.Set(key, v)
		}
	}
}

// FromRecords builds a table from records. When columns is nil the columns
// are the union of record keys in first-seen order.
func FromRecords(records []*Record, columns []string) *Table {
	if columns == nil {
		seen := make(map[string]bool)
		for _, r := range records {
			for _, k := range r.keys {
				if !seen[k] {
					seen[k] = true
					columns = append(columns, k)
				}
			}
		}
	}
	t := &Table{Columns: append([]string(nil), columns...)}
	for _, r := range records {
		row := make([]any, len(columns))
		for i, c := range columns {
			row[i] = r.values[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
