package shaping

import (
	"bytes"
	"encoding/json"
)

// Resource is an insertion-ordered string-keyed map that marshals to a JSON
// object with keys in insertion order.
type Resource struct {
	keys   []string
	values map[string]any
}

func NewResource(capacity int) *Resource {
	return &Resource{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

// Set adds key at the end, or replaces its value in place if present.
func (r *Resource) Set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r *Resource) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Resource) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Resource) Len() int { return len(r.keys) }

func (r *Resource) MarshalJSON() ([]byte, error) {
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
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
