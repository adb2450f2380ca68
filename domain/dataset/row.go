package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Row is an ordered mapping from column name to cell value.
// Set and Delete mutate in place; transforms must Clone before editing.
type Row struct {
	keys  []string
	cells map[string]Value
}

// NewRow builds a row from parallel name/value slices
func NewRow(names []string, values []Value) Row {
	r := Row{
		keys:  make([]string, 0, len(names)),
		cells: make(map[string]Value, len(names)),
	}
	for i, name := range names {
		v := Null()
		if i < len(values) {
			v = values[i]
		}
		r.Set(name, v)
	}
	return r
}

// With returns a copy of the row with name set to v
func (r Row) With(name string, v Value) Row {
	c := r.Clone()
	c.Set(name, v)
	return c
}

// Set assigns a cell, appending the key if it is new
func (r *Row) Set(name string, v Value) {
	if r.cells == nil {
		r.cells = make(map[string]Value)
	}
	if _, ok := r.cells[name]; !ok {
		r.keys = append(r.keys, name)
	}
	r.cells[name] = v
}

// Delete removes a cell if present
func (r *Row) Delete(name string) {
	if _, ok := r.cells[name]; !ok {
		return
	}
	delete(r.cells, name)
	for i, k := range r.keys {
		if k == name {
			r.keys = append(r.keys[:i:i], r.keys[i+1:]...)
			break
		}
	}
}

// Get returns the cell and whether the key is present
func (r Row) Get(name string) (Value, bool) {
	v, ok := r.cells[name]
	return v, ok
}

// Value returns the cell, or a missing value when the key is absent
func (r Row) Value(name string) Value {
	return r.cells[name]
}

// Has reports whether the key is present
func (r Row) Has(name string) bool {
	_, ok := r.cells[name]
	return ok
}

// Keys returns column names in insertion order
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys
func (r Row) Len() int { return len(r.keys) }

// Clone deep-copies the row
func (r Row) Clone() Row {
	if r.keys == nil && r.cells == nil {
		return Row{}
	}
	c := Row{
		keys:  make([]string, len(r.keys)),
		cells: make(map[string]Value, len(r.cells)),
	}
	copy(c.keys, r.keys)
	for k, v := range r.cells {
		c.cells[k] = v
	}
	return c
}

// HasMissing reports whether any present cell is missing
func (r Row) HasMissing() bool {
	for _, k := range r.keys {
		if r.cells[k].IsMissing() {
			return true
		}
	}
	return false
}

// Equal compares key sets and values, ignoring key order
func (r Row) Equal(other Row) bool {
	if len(r.cells) != len(other.cells) {
		return false
	}
	for k, v := range r.cells {
		ov, ok := other.cells[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// CanonicalKey encodes the row content independent of key order
func (r Row) CanonicalKey() string {
	keys := r.Keys()
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strconvQuote(k))
		b.WriteByte('=')
		b.WriteString(strconvQuote(r.cells[k].Key()))
		b.WriteByte(';')
	}
	return b.String()
}

func strconvQuote(s string) string {
	q, _ := json.Marshal(s)
	return string(q)
}

// MarshalJSON writes the row as an object in key order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.cells[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object, keeping the document's key order
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row must be a JSON object")
	}

	*r = Row{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row key must be a string")
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("column %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// RowsFromMaps converts loosely typed maps into rows. Key order follows
// the order argument; keys missing from order are appended sorted.
func RowsFromMaps(maps []map[string]interface{}, order []string) []Row {
	rows := make([]Row, 0, len(maps))
	for _, m := range maps {
		var r Row
		seen := make(map[string]bool, len(m))
		for _, k := range order {
			if raw, ok := m[k]; ok {
				r.Set(k, ValueOf(raw))
				seen[k] = true
			}
		}
		var rest []string
		for k := range m {
			if !seen[k] {
				rest = append(rest, k)
			}
		}
		sort.Strings(rest)
		for _, k := range rest {
			r.Set(k, ValueOf(m[k]))
		}
		rows = append(rows, r)
	}
	return rows
}
