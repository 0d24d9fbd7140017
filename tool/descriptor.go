// Package tool defines the tool descriptor data model, the deduplicating
// registry, and the invocation dispatcher used by Pollen agent loops.
package tool

import (
	"errors"
	"fmt"
	"strings"
)

// Descriptor schema constants for the initial descriptor contract version.
const (
	DefinitionTypeFunction = "function"
	ParametersTypeObject   = "object"
)

// AttrIsAsync is the advisory attribute flag marking an implementation as
// asynchronous. Dispatch decides by the implementation's concrete type; the
// flag exists so schema-only consumers can see the declared nature.
const AttrIsAsync = "is_async"

var errMissingFunctionName = errors.New("tool: descriptor is missing function name")

// Descriptor bundles one tool: its JSON-schema definition, an opaque
// implementation reference, and pass-through metadata.
type Descriptor struct {
	Definition     Definition     `json:"definition"`
	Implementation any            `json:"-"`
	Attributes     map[string]any `json:"attributes,omitempty"`
}

// Definition is the function-calling surface handed to an LLM.
type Definition struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec describes the callable's name, description, and parameters.
type FunctionSpec struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Parameters  Parameters `json:"parameters"`
}

// Parameters is the object-typed parameter schema for a function.
type Parameters struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single named parameter.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// Name returns the descriptor's function name, the key under which it is
// registered.
func (d Descriptor) Name() string {
	return d.Definition.Function.Name
}

// IsAsync reports whether the descriptor declares an asynchronous
// implementation, either by construction or via the is_async attribute.
func (d Descriptor) IsAsync() bool {
	if _, ok := d.Implementation.(AsyncFunc); ok {
		return true
	}
	flag, ok := d.Attributes[AttrIsAsync].(bool)
	return ok && flag
}

// Validate checks the structural invariants of a descriptor: a non-empty
// function name and required parameters that are a subset of the declared
// properties.
func (d Descriptor) Validate() error {
	name := strings.TrimSpace(d.Name())
	if name == "" {
		return errMissingFunctionName
	}
	for _, req := range d.Definition.Function.Parameters.Required {
		if _, ok := d.Definition.Function.Parameters.Properties[req]; !ok {
			return fmt.Errorf("tool %s: required parameter %q is not declared in properties", name, req)
		}
	}
	return nil
}

// clone copies the descriptor with its own attributes map so registry
// readers cannot mutate each other's view. Enum slices are shared and
// treated as read-only.
func (d Descriptor) clone() Descriptor {
	out := d
	if d.Attributes != nil {
		out.Attributes = make(map[string]any, len(d.Attributes))
		for k, v := range d.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}
