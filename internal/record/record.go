// Package record models the schema-less documents returned by the platform.
//
// A Record keeps its keys in the order they appeared in the source document.
// Field lookups by pattern depend on that order, so it is preserved
// explicitly rather than left to map iteration.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Pair is a single key/value entry of a Record.
type Pair struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Record is an ordered list of key/value pairs.
//
// Values hold the natural decoded JSON shapes: string, float64, bool, nil,
// nested Record and []any.
type Record []Pair

// New builds a Record from alternating key/value arguments.
// It panics on an odd argument count or a non-string key.
func New(kv ...any) Record {
	if len(kv)%2 != 0 {
		panic("record: odd number of arguments")
	}
	r := make(Record, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("record: key at position %d is %T, not string", i, kv[i]))
		}
		r = r.Set(key, kv[i+1])
	}
	return r
}

// Get returns the value stored under the exact key.
func (r Record) Get(key string) (any, bool) {
	for _, p := range r {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Has reports whether the exact key is present, even with a nil value.
func (r Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// String returns the value under key rendered with Stringify, or "".
func (r Record) String(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Set replaces the value of an existing key in place or appends a new pair.
func (r Record) Set(key string, value any) Record {
	for i := range r {
		if r[i].Key == key {
			r[i].Value = value
			return r
		}
	}
	return append(r, Pair{Key: key, Value: value})
}

// Keys returns the keys in insertion order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, p := range r {
		keys[i] = p.Key
	}
	return keys
}

// ID returns the record identity: _id, falling back to _userItemId.
func (r Record) ID() string {
	if id := r.String("_id"); id != "" {
		return id
	}
	return r.String("_userItemId")
}

// Lookup follows a dotted path through nested records,
// e.g. "_tsMetadata._sourceId".
func (r Record) Lookup(path string) (any, bool) {
	cur := r
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		v, ok := cur.Get(path[start:i])
		if !ok {
			return nil, false
		}
		if i == len(path) {
			return v, true
		}
		next, ok := v.(Record)
		if !ok {
			return nil, false
		}
		cur = next
		start = i + 1
	}
	return nil, false
}

// MarshalJSON encodes the record as a JSON object with keys in order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("record: failed to encode %q: %w", p.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record: expected JSON object, got %v", tok)
	}
	rec, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func decodeObject(dec *json.Decoder) (Record, error) {
	rec := Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("record: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("record: expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		rec = rec.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	return rec, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	out := []any{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	return out, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("record: unexpected delimiter %v", t)
	default:
		return t, nil
	}
}

// Stringify renders a value for display: numbers without trailing zeros,
// nested values as compact JSON and nil as the empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
