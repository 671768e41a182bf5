package shaping

import "fmt"

// Declared is implemented by *Shape[T] for any T.
type Declared interface {
	ID() ShapeID
	Properties() PropertySet
}

// Checker answers field-selection questions for registered shapes without
// knowing their Go types. It is read-only after NewChecker.
type Checker struct {
	sets map[ShapeID]PropertySet
}

func NewChecker(shapes ...Declared) *Checker {
	c := &Checker{sets: make(map[ShapeID]PropertySet, len(shapes))}
	for _, s := range shapes {
		if _, dup := c.sets[s.ID()]; dup {
			panic(fmt.Sprintf("shaping: shape %s registered twice", s.ID()))
		}
		c.sets[s.ID()] = s.Properties()
	}
	return c
}

// HasProperties reports whether every field in clause is a declared
// property of the shape. A blank clause always passes; an unregistered
// shape never does.
func (c *Checker) HasProperties(id ShapeID, clause string) bool {
	set, ok := c.sets[id]
	if !ok {
		return false
	}
	return set.Has(clause)
}
