// Package shaping projects typed transfer objects onto caller-selected
// subsets of their declared properties.
package shaping

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ShapeID names a declared shape, e.g. "AuthorDto".
type ShapeID string

var ErrUnknownProperty = errors.New("unknown property")

// fold returns the case-insensitive match key for a property name.
// Caser values keep state, so one is created per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// PropertySet is the ordered list of a shape's declared property names with
// a folded-name index. The zero value is an empty set.
type PropertySet struct {
	names []string
	index map[string]int
}

// NewPropertySet panics on empty or duplicate names; sets are declared once
// at start-up.
func NewPropertySet(names ...string) PropertySet {
	s := PropertySet{
		names: make([]string, 0, len(names)),
		index: make(map[string]int, len(names)),
	}
	for _, n := range names {
		key := fold(n)
		if key == "" {
			panic("shaping: empty property name")
		}
		if _, dup := s.index[key]; dup {
			panic(fmt.Sprintf("shaping: duplicate property %q", n))
		}
		s.index[key] = len(s.names)
		s.names = append(s.names, n)
	}
	return s
}

func (s PropertySet) Len() int { return len(s.names) }

func (s PropertySet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Lookup matches name after trimming, ignoring case.
func (s PropertySet) Lookup(name string) (int, bool) {
	i, ok := s.index[fold(name)]
	return i, ok
}

// Resolve turns a comma-separated field list into declared property
// positions, in requested order and without duplicates. A blank clause
// selects every property in declared order.
func (s PropertySet) Resolve(clause string) ([]int, error) {
	if strings.TrimSpace(clause) == "" {
		all := make([]int, len(s.names))
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	parts := strings.Split(clause, ",")
	out := make([]int, 0, len(parts))
	seen := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if name == "" {
			return nil, fmt.Errorf("%w: empty field name in %q", ErrUnknownProperty, clause)
		}
		i, ok := s.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
	}
	return out, nil
}

// Has reports whether every name in clause resolves.
func (s PropertySet) Has(clause string) bool {
	_, err := s.Resolve(clause)
	return err == nil
}
