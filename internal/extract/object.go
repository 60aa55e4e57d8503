package extract

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Object is a JSON object that remembers the order of its keys. Values are
// kept as raw JSON, so nested key order and number precision are untouched.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]json.RawMessage)}
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Get returns the raw value stored under key.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores value under key. An existing key keeps its position and its old
// value is returned.
func (o *Object) Set(key string, value json.RawMessage) (prev json.RawMessage, replaced bool) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	prev, replaced = o.values[key]
	if !replaced {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return prev, replaced
}

// SetString stores s as a JSON string.
func (o *Object) SetString(key, s string) (prev json.RawMessage, replaced bool) {
	b, _ := json.Marshal(s)
	return o.Set(key, b)
}

// Map decodes the object into plain Go values, numbers as json.Number.
func (o *Object) Map() (map[string]any, error) {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		dec := json.NewDecoder(bytes.NewReader(o.values[k]))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// MarshalJSON writes the keys in document order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		v := o.values[k]
		if len(v) == 0 {
			v = json.RawMessage("null")
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order. A repeated key keeps
// its first position and its last value.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return ErrNotObject
	}

	o.keys = nil
	o.values = make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return ErrNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		o.Set(key, raw)
	}
	_, err = dec.Token()
	return err
}

// String renders the object as compact JSON.
func (o *Object) String() string {
	b, err := o.MarshalJSON()
	if err != nil {
		return strings.Join(o.keys, ",")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return string(b)
	}
	return buf.String()
}
