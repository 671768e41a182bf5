package propmap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/5w1tchy/course-library-api/internal/shaping"
)

var (
	ErrDuplicateMapping = errors.New("duplicate property mapping")
	ErrMappingNotFound  = errors.New("property mapping not found")
	ErrInvalidOrderBy   = errors.New("invalid orderBy clause")
)

type pair struct {
	src, dst shaping.ShapeID
}

// Builder collects mappings during start-up. It is not safe for concurrent
// use; Build hands out the frozen Registry.
type Builder struct {
	mappings map[pair]Mapping
}

func NewBuilder() *Builder {
	return &Builder{mappings: map[pair]Mapping{}}
}

func (b *Builder) Register(src, dst shaping.ShapeID, m Mapping) error {
	k := pair{src, dst}
	if _, dup := b.mappings[k]; dup {
		return fmt.Errorf("%w: %s -> %s", ErrDuplicateMapping, src, dst)
	}
	b.mappings[k] = m
	return nil
}

func (b *Builder) Build() *Registry {
	cp := make(map[pair]Mapping, len(b.mappings))
	for k, v := range b.mappings {
		cp[k] = v
	}
	return &Registry{mappings: cp}
}

// Registry is read-only and safe for concurrent use.
type Registry struct {
	mappings map[pair]Mapping
}

func (r *Registry) Resolve(src, dst shaping.ShapeID) (Mapping, error) {
	m, ok := r.mappings[pair{src, dst}]
	if !ok {
		return Mapping{}, fmt.Errorf("%w: %s -> %s", ErrMappingNotFound, src, dst)
	}
	return m, nil
}

// IsValid reports whether every term of clause names a mapped property.
// A blank clause is valid.
func (r *Registry) IsValid(src, dst shaping.ShapeID, clause string) bool {
	_, err := r.Translate(src, dst, clause)
	return err == nil
}

// SortKey is one storage-level ordering term.
type SortKey struct {
	Column     string
	Descending bool
}

// Translate expands clause ("name, age desc") into storage sort keys.
// Each property expands to its targets in declared order; reverse targets
// flip the requested direction. Blank clauses yield no keys.
func (r *Registry) Translate(src, dst shaping.ShapeID, clause string) ([]SortKey, error) {
	m, err := r.Resolve(src, dst)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(clause) == "" {
		return nil, nil
	}

	var keys []SortKey
	for _, term := range strings.Split(clause, ",") {
		name, desc, ok := parseTerm(term)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOrderBy, strings.TrimSpace(term))
		}
		targets, ok := m.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown property %q", ErrInvalidOrderBy, name)
		}
		for _, t := range targets {
			keys = append(keys, SortKey{Column: t.Column, Descending: desc != t.Reverse})
		}
	}
	return keys, nil
}

// parseTerm splits "name" or "name asc|desc".
func parseTerm(term string) (name string, desc bool, ok bool) {
	f := strings.Fields(term)
	switch len(f) {
	case 1:
		return f[0], false, true
	case 2:
		switch {
		case strings.EqualFold(f[1], "asc"):
			return f[0], false, true
		case strings.EqualFold(f[1], "desc"):
			return f[0], true, true
		}
	}
	return "", false, false
}

// OrderBy renders keys as a SQL ORDER BY list. Columns come from the
// registry, never from the client.
func OrderBy(keys []SortKey) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		dir := "ASC"
		if k.Descending {
			dir = "DESC"
		}
		parts = append(parts, k.Column+" "+dir)
	}
	return strings.Join(parts, ", ")
}

// WithTieBreaker appends column ascending unless keys already sort by it.
func WithTieBreaker(keys []SortKey, column string) []SortKey {
	for _, k := range keys {
		if k.Column == column {
			return keys
		}
	}
	return append(keys, SortKey{Column: column})
}
