// Package irisbridge exposes Pollen descriptors as iris tools so an agent
// loop can hand a built registry straight to an iris chat request.
package irisbridge

import (
	"context"
	"encoding/json"
	"fmt"

	iristools "github.com/petal-labs/iris/tools"

	"github.com/petal-labs/pollen/tool"
)

// DescriptorTool adapts a tool.Descriptor to the iris tools.Tool interface.
type DescriptorTool struct {
	desc tool.Descriptor
}

// Wrap adapts one descriptor.
func Wrap(desc tool.Descriptor) *DescriptorTool {
	return &DescriptorTool{desc: desc}
}

// FromRegistry adapts every descriptor of a built registry, preserving
// registry order.
func FromRegistry(reg *tool.Registry) []iristools.Tool {
	descs := reg.All()
	out := make([]iristools.Tool, len(descs))
	for i, desc := range descs {
		out[i] = Wrap(desc)
	}
	return out
}

// Name returns the descriptor's function name.
func (t *DescriptorTool) Name() string {
	return t.desc.Name()
}

// Description returns the descriptor's human-readable description.
func (t *DescriptorTool) Description() string {
	return t.desc.Definition.Function.Description
}

// Schema returns the parameter schema as raw JSON Schema.
func (t *DescriptorTool) Schema() iristools.ToolSchema {
	raw, err := json.Marshal(t.desc.Definition.Function.Parameters)
	if err != nil {
		raw = json.RawMessage(`{"type":"object"}`)
	}
	return iristools.ToolSchema{JSONSchema: raw}
}

// Call decodes the model-provided arguments and dispatches through the
// Pollen invoker.
func (t *DescriptorTool) Call(ctx context.Context, args json.RawMessage) (any, error) {
	arguments := map[string]any{}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &arguments); err != nil {
			return nil, fmt.Errorf("irisbridge: decoding arguments for %s: %w", t.desc.Name(), err)
		}
	}
	return tool.Invoke(ctx, t.desc, arguments)
}

var _ iristools.Tool = (*DescriptorTool)(nil)
