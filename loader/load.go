package loader

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/petal-labs/pollen/tool"
)

// collectionSuffix is the naming convention marking a top-level manifest key
// as a tool collection.
const collectionSuffix = "_tools"

// Options controls one registry load.
type Options struct {
	// Dir is the plugin manifest directory. Empty means no directory scan.
	Dir string
	// Filter restricts the load to the named modules. Nil loads everything;
	// an empty non-nil slice loads nothing.
	Filter []string
	// SkipRegistered excludes in-process registered modules from the load.
	SkipRegistered bool
}

// ModuleError reports a single module that failed to load. It never aborts
// the scan: a broken plugin must not take down discovery of the others.
type ModuleError struct {
	Module string
	Err    error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("loader: module %s: %v", e.Module, e.Err)
}

// Report summarizes one load: which modules contributed and which failed.
type Report struct {
	Modules  []string
	Failures []ModuleError
}

// registeredModule is a Go-native plugin registered at init time.
type registeredModule struct {
	name        string
	collections []tool.Collection
}

var registered = struct {
	sync.Mutex
	modules []registeredModule
	byName  map[string]bool
}{byName: make(map[string]bool)}

// RegisterModule registers an in-process plugin module under a name.
// Registered modules load before directory modules, in registration order,
// and honor the same filter. Call it from the plugin package's init.
func RegisterModule(name string, collections ...tool.Collection) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("loader: module name is empty")
	}
	registered.Lock()
	defer registered.Unlock()
	if registered.byName[name] {
		return fmt.Errorf("loader: module %q is already registered", name)
	}
	registered.byName[name] = true
	registered.modules = append(registered.modules, registeredModule{name: name, collections: collections})
	return nil
}

// MustRegisterModule is RegisterModule for package init blocks.
func MustRegisterModule(name string, collections ...tool.Collection) {
	if err := RegisterModule(name, collections...); err != nil {
		panic(err)
	}
}

func registeredSnapshot() []registeredModule {
	registered.Lock()
	defer registered.Unlock()
	out := make([]registeredModule, len(registered.modules))
	copy(out, registered.modules)
	return out
}

// moduleCache caches successfully parsed manifest modules process-wide,
// keyed by cleaned absolute path, so re-scanning never re-reads a module.
// Failed parses are not cached and retry on the next load.
var moduleCache = struct {
	sync.Mutex
	descs map[string][]tool.Descriptor
}{descs: make(map[string][]tool.Descriptor)}

// Load builds a registry from the registered modules and the manifest
// directory named in opts. Per-module failures are collected in the report;
// a missing or empty directory yields an empty registry, not an error.
func Load(opts Options) (*tool.Registry, Report) {
	var report Report
	builder := tool.NewRegistryBuilder()
	wanted := filterSet(opts.Filter)

	if !opts.SkipRegistered {
		for _, mod := range registeredSnapshot() {
			if strings.HasPrefix(mod.name, privatePrefix) {
				continue
			}
			if wanted != nil && !wanted[mod.name] {
				continue
			}
			report.Modules = append(report.Modules, mod.name)
			for _, coll := range mod.collections {
				builder.AddAll(mod.name, extractDescriptors(mod.name, coll.Descriptors()))
			}
		}
	}

	if opts.Dir != "" {
		files, err := scanDir(opts.Dir, opts.Filter)
		if err != nil {
			report.Failures = append(report.Failures, discoveryFailure(opts.Dir, err))
		}
		for _, file := range files {
			descs, err := importModule(file)
			if err != nil {
				report.Failures = append(report.Failures, discoveryFailure(file.Name, err))
				continue
			}
			report.Modules = append(report.Modules, file.Name)
			builder.AddAll(file.Name, descs)
		}
	}

	return builder.Build(), report
}

func discoveryFailure(module string, err error) ModuleError {
	slog.Warn("pollen: module failed to load", "module", module, "error", err)
	tool.EmitDiscoveryFailure(tool.DiscoveryObservation{Module: module, Error: err.Error()})
	return ModuleError{Module: module, Err: err}
}

// importModule parses a manifest file once per process and extracts its
// descriptors.
func importModule(file moduleFile) ([]tool.Descriptor, error) {
	key := file.Path
	if abs, err := filepath.Abs(file.Path); err == nil {
		key = abs
	}

	moduleCache.Lock()
	cached, ok := moduleCache.descs[key]
	moduleCache.Unlock()
	if ok {
		return cached, nil
	}

	descs, err := parseModule(file)
	if err != nil {
		return nil, err
	}

	moduleCache.Lock()
	moduleCache.descs[key] = descs
	moduleCache.Unlock()
	return descs, nil
}

func parseModule(file moduleFile) ([]tool.Descriptor, error) {
	data, err := readModuleBytes(file.Path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	// Manifest documents lose key order in Go maps; collections iterate in
	// lexical key order so extraction stays deterministic across loads.
	keys := make([]string, 0, len(doc))
	for key := range doc {
		if strings.HasSuffix(key, collectionSuffix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var descs []tool.Descriptor
	for _, key := range keys {
		descs = append(descs, extractCollectionValue(file.Name, doc[key])...)
	}
	return descs, nil
}

// readModuleBytes loads a manifest file, normalizing YAML to JSON bytes
// (YAML -> any -> JSON) so the rest of the pipeline sees one format.
func readModuleBytes(path string) ([]byte, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if !isYAML(path) {
		return data, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return json.Marshal(raw)
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// extractCollectionValue accepts the two recognized collection shapes: a
// mapping of name to descriptor or a sequence of descriptors. Any other
// shape is ignored, not an error.
func extractCollectionValue(module string, value any) []tool.Descriptor {
	switch shaped := value.(type) {
	case []any:
		descs := make([]tool.Descriptor, 0, len(shaped))
		for _, element := range shaped {
			if d, ok := decodeDescriptor(module, element); ok {
				descs = append(descs, d)
			}
		}
		return descs
	case map[string]any:
		keys := make([]string, 0, len(shaped))
		for key := range shaped {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		descs := make([]tool.Descriptor, 0, len(keys))
		for _, key := range keys {
			if d, ok := decodeDescriptor(module, shaped[key]); ok {
				descs = append(descs, d)
			}
		}
		return descs
	default:
		return nil
	}
}

// manifestDescriptor is the plugin-author-facing descriptor shape in a
// manifest file. Implementation is a reference into the process-wide
// callable table.
type manifestDescriptor struct {
	Definition     tool.Definition `json:"definition"`
	Implementation string          `json:"implementation"`
	Attributes     map[string]any  `json:"attributes"`
}

// decodeDescriptor converts one collection element. Extraction fails softly:
// an element whose function name cannot be read is skipped, never aborting
// the module.
func decodeDescriptor(module string, element any) (tool.Descriptor, bool) {
	data, err := json.Marshal(element)
	if err != nil {
		slog.Debug("pollen: descriptor skipped", "module", module, "error", err)
		return tool.Descriptor{}, false
	}
	var md manifestDescriptor
	if err := json.Unmarshal(data, &md); err != nil {
		slog.Debug("pollen: descriptor skipped", "module", module, "error", err)
		return tool.Descriptor{}, false
	}

	d := tool.Descriptor{
		Definition: md.Definition,
		Attributes: md.Attributes,
	}
	if err := d.Validate(); err != nil {
		slog.Debug("pollen: descriptor skipped", "module", module, "error", err)
		return tool.Descriptor{}, false
	}

	if md.Implementation != "" {
		impl, ok := tool.LookupFunc(md.Implementation)
		if !ok {
			// Schema stays visible to the catalog; dispatch will fail with
			// ErrNoImplementation until the ref is registered.
			slog.Warn("pollen: implementation ref not registered",
				"module", module, "tool", d.Name(), "ref", md.Implementation)
		}
		d.Implementation = impl
	}
	return d, true
}

// extractDescriptors validates descriptors coming from an in-process
// collection, applying the same soft-skip policy as manifest extraction.
func extractDescriptors(module string, descs []tool.Descriptor) []tool.Descriptor {
	out := make([]tool.Descriptor, 0, len(descs))
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			slog.Debug("pollen: descriptor skipped", "module", module, "error", err)
			continue
		}
		out = append(out, d)
	}
	return out
}
