package tool

import (
	"slices"
)

// Collection is the shape a plugin module exports: either a mapping of
// name to descriptor or an ordered sequence of descriptors. The variant is
// normalized at extraction time and never propagates further.
type Collection struct {
	named   map[string]Descriptor
	ordered []Descriptor
}

// Named wraps a mapping-shaped collection.
func Named(descs map[string]Descriptor) Collection {
	return Collection{named: descs}
}

// Ordered wraps a sequence-shaped collection.
func Ordered(descs ...Descriptor) Collection {
	return Collection{ordered: descs}
}

// Descriptors normalizes the collection to a flat sequence. Sequence
// collections keep element order; mapping collections are iterated in
// lexical key order so extraction is deterministic.
func (c Collection) Descriptors() []Descriptor {
	if c.named == nil {
		return slices.Clone(c.ordered)
	}
	keys := make([]string, 0, len(c.named))
	for key := range c.named {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	out := make([]Descriptor, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.named[key])
	}
	return out
}

// Len returns the number of descriptors in the collection.
func (c Collection) Len() int {
	if c.named != nil {
		return len(c.named)
	}
	return len(c.ordered)
}
