package tool

import (
	"log/slog"
)

// RegistryBuilder folds descriptors from scanned modules into one ordered
// registry, enforcing first-write-wins deduplication on function name.
type RegistryBuilder struct {
	seen  map[string]string
	descs []Descriptor
}

// NewRegistryBuilder creates an empty builder.
func NewRegistryBuilder() *RegistryBuilder {
	return &RegistryBuilder{seen: make(map[string]string)}
}

// Add appends a descriptor unless its name was already seen, reporting
// whether the descriptor was kept. Duplicates are discarded apart from a
// debug log line and an observer event; the first writer always wins. The
// module argument records provenance for the duplicate observation.
func (b *RegistryBuilder) Add(module string, d Descriptor) bool {
	name := d.Name()
	if first, dup := b.seen[name]; dup {
		slog.Debug("pollen: duplicate tool name discarded",
			"tool", name, "module", module, "kept_from", first)
		emitDuplicateObservation(DuplicateObservation{
			ToolName:   name,
			Module:     module,
			KeptModule: first,
		})
		return false
	}
	b.seen[name] = module
	b.descs = append(b.descs, d.clone())
	return true
}

// AddAll folds every descriptor of a normalized collection.
func (b *RegistryBuilder) AddAll(module string, descs []Descriptor) {
	for _, d := range descs {
		b.Add(module, d)
	}
}

// Build seals the builder into an immutable registry. The builder must not
// be reused afterwards.
func (b *RegistryBuilder) Build() *Registry {
	index := make(map[string]int, len(b.descs))
	for i, d := range b.descs {
		index[d.Name()] = i
	}
	return &Registry{descs: b.descs, index: index}
}

// Registry is the deduplicated, first-seen-ordered collection of descriptors
// available for dispatch after a load. It is read-only after Build and safe
// for concurrent readers; picking up new modules means rebuilding wholesale.
type Registry struct {
	descs []Descriptor
	index map[string]int
}

// EmptyRegistry returns a registry with no descriptors.
func EmptyRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return r.descs[i].clone(), true
}

// All returns every descriptor in first-seen order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.descs))
	for i := range r.descs {
		out[i] = r.descs[i].clone()
	}
	return out
}

// Names returns registered tool names in first-seen order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.descs))
	for i := range r.descs {
		names[i] = r.descs[i].Name()
	}
	return names
}

// Definitions returns the LLM-facing definition blocks in first-seen order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, len(r.descs))
	for i := range r.descs {
		defs[i] = r.descs[i].Definition
	}
	return defs
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	return len(r.descs)
}

// Has reports whether a tool name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}
