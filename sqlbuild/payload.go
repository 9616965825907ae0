package sqlbuild

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one logical-name/new-value pair of a partial update.
type Field struct {
	Name  string
	Value any
}

// Payload is an ordered partial update. Order is significant: it fixes the
// placeholder ordinals and the order of bound values, so the same payload
// always compiles to the same SQL.
type Payload []Field

// FieldNameMap maps logical field names to storage column names. Fields
// missing from the map are stored under their logical name.
type FieldNameMap map[string]string

// Column resolves the storage column for a logical field name.
func (m FieldNameMap) Column(name string) string {
	if col, ok := m[name]; ok && col != "" {
		return col
	}
	return name
}

// Names returns the field names in payload order.
func (p Payload) Names() []string {
	names := make([]string, len(p))
	for i, f := range p {
		names[i] = f.Name
	}
	return names
}

// Get returns the value stored for name.
func (p Payload) Get(name string) (any, bool) {
	for _, f := range p {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a copy of p with name set to value. An existing field keeps
// its position; a new field is appended.
func (p Payload) With(name string, value any) Payload {
	out := make(Payload, len(p), len(p)+1)
	copy(out, p)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = value
			return out
		}
	}
	return append(out, Field{Name: name, Value: value})
}

// UnmarshalJSON decodes a JSON object keeping the document's key order.
// Numbers decode as json.Number so callers can choose the Go type. Duplicate
// keys are rejected.
func (p *Payload) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("sqlbuild: payload: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return inputErrorf("", "payload must be a JSON object")
	}

	out := make(Payload, 0)
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("sqlbuild: payload: %w", err)
		}
		key, _ := tok.(string)
		if _, dup := seen[key]; dup {
			return inputErrorf(key, "duplicate field %q", key)
		}
		seen[key] = struct{}{}

		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("sqlbuild: payload field %q: %w", key, err)
		}
		out = append(out, Field{Name: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("sqlbuild: payload: %w", err)
	}

	*p = out
	return nil
}
