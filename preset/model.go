package preset

import "errors"

// Definition is a named slider configuration bound to one dimension.
type Definition struct {
	Name            string  `json:"name"`
	TargetDimension string  `json:"target_dimension"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Step            float64 `json:"step"`
	Current         float64 `json:"current"`
}

var (
	ErrUnknownPreset = errors.New("unknown preset")
	ErrDuplicateName = errors.New("preset name already in use")
	ErrInvalidRange  = errors.New("invalid preset range")
	ErrOutOfRange    = errors.New("value outside preset range")
)

// Validate checks the slider invariants: min <= max, step > 0 and the
// current position inside [min, max].
func (d Definition) Validate() error {
	if d.Min > d.Max {
		return ErrInvalidRange
	}
	if d.Step <= 0 {
		return ErrInvalidRange
	}
	if d.Current < d.Min || d.Current > d.Max {
		return ErrInvalidRange
	}
	return nil
}

// Collection is an ordered set of definitions with unique names. Order is
// insertion order and drives both display and serialization.
type Collection struct {
	defs  []*Definition
	index map[string]*Definition
}

func NewCollection() *Collection {
	return &Collection{index: make(map[string]*Definition)}
}

// Add validates def and appends it. The name must be unused.
func (c *Collection) Add(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if _, ok := c.index[def.Name]; ok {
		return ErrDuplicateName
	}
	d := def
	c.defs = append(c.defs, &d)
	c.index[def.Name] = &d
	return nil
}

// Get returns a copy of the named definition.
func (c *Collection) Get(name string) (Definition, bool) {
	d, ok := c.index[name]
	if !ok {
		return Definition{}, false
	}
	return *d, true
}

// Remove deletes the named definition, preserving the order of the rest.
func (c *Collection) Remove(name string) error {
	if _, ok := c.index[name]; !ok {
		return ErrUnknownPreset
	}
	delete(c.index, name)
	for i, d := range c.defs {
		if d.Name == name {
			c.defs = append(c.defs[:i], c.defs[i+1:]...)
			break
		}
	}
	return nil
}

// SetCurrent moves the slider position. The value must lie inside the
// definition's range; a failed call leaves the definition unchanged.
func (c *Collection) SetCurrent(name string, value float64) error {
	d, ok := c.index[name]
	if !ok {
		return ErrUnknownPreset
	}
	if value < d.Min || value > d.Max {
		return ErrOutOfRange
	}
	d.Current = value
	return nil
}

// List returns copies of all definitions in insertion order.
func (c *Collection) List() []Definition {
	out := make([]Definition, len(c.defs))
	for i, d := range c.defs {
		out[i] = *d
	}
	return out
}

func (c *Collection) Len() int {
	return len(c.defs)
}
