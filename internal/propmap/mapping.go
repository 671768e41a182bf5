// Package propmap translates client-facing sort clauses into storage
// columns through per (source, destination) shape mapping tables.
package propmap

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Target is one storage column a public property sorts by. Reverse flips
// the requested direction, e.g. "age" sorting by date of birth.
type Target struct {
	Column  string
	Reverse bool
}

func Col(column string) Target { return Target{Column: column} }

func Reversed(column string) Target { return Target{Column: column, Reverse: true} }

type Entry struct {
	Key     string
	Targets []Target
}

// Map declares that sorting by key sorts by targets, in order.
func Map(key string, targets ...Target) Entry {
	return Entry{Key: key, Targets: targets}
}

// Mapping is an immutable, case-insensitive table of sortable properties.
type Mapping struct {
	keys    []string
	entries map[string][]Target
}

// NewMapping panics on duplicate keys or keys without targets.
func NewMapping(entries ...Entry) Mapping {
	m := Mapping{
		keys:    make([]string, 0, len(entries)),
		entries: make(map[string][]Target, len(entries)),
	}
	for _, e := range entries {
		k := foldKey(e.Key)
		if k == "" || len(e.Targets) == 0 {
			panic(fmt.Sprintf("propmap: mapping %q needs a key and at least one target", e.Key))
		}
		if _, dup := m.entries[k]; dup {
			panic(fmt.Sprintf("propmap: duplicate key %q", e.Key))
		}
		ts := make([]Target, len(e.Targets))
		copy(ts, e.Targets)
		m.entries[k] = ts
		m.keys = append(m.keys, e.Key)
	}
	return m
}

func (m Mapping) Lookup(key string) ([]Target, bool) {
	ts, ok := m.entries[foldKey(key)]
	return ts, ok
}

func (m Mapping) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
