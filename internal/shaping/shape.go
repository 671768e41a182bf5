package shaping

import "fmt"

// Property is a named accessor on T.
type Property[T any] struct {
	Name string
	Get  func(T) any
}

func Prop[T any](name string, get func(T) any) Property[T] {
	return Property[T]{Name: name, Get: get}
}

// Shape is the declared, immutable property table of one transfer type.
type Shape[T any] struct {
	id    ShapeID
	props []Property[T]
	set   PropertySet
}

// NewShape panics on duplicate names or nil accessors.
func NewShape[T any](id ShapeID, props ...Property[T]) *Shape[T] {
	names := make([]string, len(props))
	for i, p := range props {
		if p.Get == nil {
			panic(fmt.Sprintf("shaping: %s.%s has no accessor", id, p.Name))
		}
		names[i] = p.Name
	}
	cp := make([]Property[T], len(props))
	copy(cp, props)
	return &Shape[T]{id: id, props: cp, set: NewPropertySet(names...)}
}

func (s *Shape[T]) ID() ShapeID { return s.id }

func (s *Shape[T]) Properties() PropertySet { return s.set }

func (s *Shape[T]) HasProperties(clause string) bool { return s.set.Has(clause) }

// Shape projects v onto the fields named in clause, keyed by declared name.
// Callers are expected to have checked clause; an unknown name is an error.
func (s *Shape[T]) Shape(v T, clause string) (*Resource, error) {
	idx, err := s.set.Resolve(clause)
	if err != nil {
		return nil, fmt.Errorf("shape %s: %w", s.id, err)
	}
	res := NewResource(len(idx) + 1)
	for _, i := range idx {
		p := s.props[i]
		res.Set(p.Name, p.Get(v))
	}
	return res, nil
}

// ShapeAll shapes each element of vs with the same clause, keeping order.
func (s *Shape[T]) ShapeAll(vs []T, clause string) ([]*Resource, error) {
	idx, err := s.set.Resolve(clause)
	if err != nil {
		return nil, fmt.Errorf("shape %s: %w", s.id, err)
	}
	out := make([]*Resource, 0, len(vs))
	for _, v := range vs {
		res := NewResource(len(idx) + 1)
		for _, i := range idx {
			p := s.props[i]
			res.Set(p.Name, p.Get(v))
		}
		out = append(out, res)
	}
	return out, nil
}
