package loader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/petal-labs/pollen/tool"
)

var registerTestFuncs = sync.OnceFunc(func() {
	tool.MustRegisterFunc("loadtest.echo", tool.Func(
		func(ctx context.Context, args map[string]any) (any, error) {
			return fmt.Sprintf("echo: %v", args["text"]), nil
		}))
	tool.MustRegisterFunc("loadtest.async_echo", tool.Go(
		func(ctx context.Context, args map[string]any) (any, error) {
			return fmt.Sprintf("async echo: %v", args["text"]), nil
		}))
})

func echoModuleJSON(toolName, description string) string {
	return fmt.Sprintf(`{
  "demo_tools": [
    {
      "definition": {
        "type": "function",
        "function": {
          "name": %q,
          "description": %q,
          "parameters": {
            "type": "object",
            "properties": {
              "text": {"type": "string", "description": "text to echo"}
            },
            "required": ["text"]
          }
        }
      },
      "implementation": "loadtest.echo",
      "attributes": {"category": "test"}
    }
  ]
}`, toolName, description)
}

func TestLoadMissingDirectoryReturnsEmptyRegistry(t *testing.T) {
	reg, report := Load(Options{Dir: "/definitely/not/here", SkipRegistered: true})
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v, want none", report.Failures)
	}
}

func TestLoadEmptyDirectoryReturnsEmptyRegistry(t *testing.T) {
	reg, report := Load(Options{Dir: t.TempDir(), SkipRegistered: true})
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v, want none", report.Failures)
	}
}

func TestLoadDeduplicatesAcrossModules(t *testing.T) {
	registerTestFuncs()
	dir := t.TempDir()
	writeModuleFile(t, dir, "alpha.json", echoModuleJSON("shared_tool", "from alpha"))
	writeModuleFile(t, dir, "beta.json", echoModuleJSON("shared_tool", "from beta"))

	reg, report := Load(Options{Dir: dir, SkipRegistered: true})
	if len(report.Failures) != 0 {
		t.Fatalf("Failures = %v", report.Failures)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", reg.Len())
	}
	desc, _ := reg.Get("shared_tool")
	if desc.Definition.Function.Description != "from alpha" {
		t.Errorf("kept %q, want descriptor from the module scanned first", desc.Definition.Function.Description)
	}
}

func TestLoadYAMLAndJSONExtractIdentically(t *testing.T) {
	registerTestFuncs()
	yamlModule := `
demo_tools:
  - definition:
      type: function
      function:
        name: yaml_tool
        description: declared in yaml
        parameters:
          type: object
          properties:
            text:
              type: string
          required:
            - text
    implementation: loadtest.echo
`
	jsonDir := t.TempDir()
	yamlDir := t.TempDir()
	writeModuleFile(t, jsonDir, "mod.json", echoModuleJSON("yaml_tool", "declared in yaml"))
	writeModuleFile(t, yamlDir, "mod.yaml", yamlModule)

	fromJSON, _ := Load(Options{Dir: jsonDir, SkipRegistered: true})
	fromYAML, _ := Load(Options{Dir: yamlDir, SkipRegistered: true})

	jd, ok := fromJSON.Get("yaml_tool")
	if !ok {
		t.Fatal("JSON module did not produce yaml_tool")
	}
	yd, ok := fromYAML.Get("yaml_tool")
	if !ok {
		t.Fatal("YAML module did not produce yaml_tool")
	}
	if jd.Definition.Function.Description != yd.Definition.Function.Description {
		t.Errorf("descriptions differ: %q vs %q",
			jd.Definition.Function.Description, yd.Definition.Function.Description)
	}
	if len(jd.Definition.Function.Parameters.Required) != len(yd.Definition.Function.Parameters.Required) {
		t.Errorf("required lists differ")
	}
}

func TestLoadBrokenModuleDoesNotAbortScan(t *testing.T) {
	registerTestFuncs()
	dir := t.TempDir()
	writeModuleFile(t, dir, "broken.json", "{not valid json")
	writeModuleFile(t, dir, "working.json", echoModuleJSON("working_tool", "ok"))

	reg, report := Load(Options{Dir: dir, SkipRegistered: true})

	if !reg.Has("working_tool") {
		t.Error("working module suppressed by broken sibling")
	}
	if len(report.Failures) != 1 {
		t.Fatalf("Failures = %v, want exactly one", report.Failures)
	}
	if report.Failures[0].Module != "broken" {
		t.Errorf("failed module = %q, want broken", report.Failures[0].Module)
	}
	if !strings.Contains(report.Failures[0].Error(), "broken") {
		t.Errorf("failure text = %q, want module name included", report.Failures[0].Error())
	}
}

func TestLoadMappingCollection(t *testing.T) {
	registerTestFuncs()
	dir := t.TempDir()
	writeModuleFile(t, dir, "mapped.json", `{
  "mapped_tools": {
    "zeta": {
      "definition": {"type": "function", "function": {"name": "zeta_tool", "parameters": {"type": "object"}}},
      "implementation": "loadtest.echo"
    },
    "alpha": {
      "definition": {"type": "function", "function": {"name": "alpha_tool", "parameters": {"type": "object"}}},
      "implementation": "loadtest.echo"
    }
  }
}`)

	reg, _ := Load(Options{Dir: dir, SkipRegistered: true})

	want := []string{"alpha_tool", "zeta_tool"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q (lexical key order)", i, got[i], want[i])
		}
	}
}

func TestLoadIgnoresUnrecognizedShapesAndKeys(t *testing.T) {
	registerTestFuncs()
	dir := t.TempDir()
	writeModuleFile(t, dir, "odd.json", `{
  "scalar_tools": 42,
  "string_tools": "nope",
  "unsuffixed": [
    {"definition": {"type": "function", "function": {"name": "hidden", "parameters": {"type": "object"}}}}
  ],
  "real_tools": [
    {
      "definition": {"type": "function", "function": {"name": "visible", "parameters": {"type": "object"}}},
      "implementation": "loadtest.echo"
    }
  ]
}`)

	reg, report := Load(Options{Dir: dir, SkipRegistered: true})
	if len(report.Failures) != 0 {
		t.Fatalf("Failures = %v", report.Failures)
	}
	if reg.Has("hidden") {
		t.Error("key without collection suffix was extracted")
	}
	if !reg.Has("visible") || reg.Len() != 1 {
		t.Errorf("Names() = %v, want only visible", reg.Names())
	}
}

func TestLoadSkipsDescriptorMissingName(t *testing.T) {
	registerTestFuncs()
	dir := t.TempDir()
	writeModuleFile(t, dir, "partial.json", `{
  "partial_tools": [
    {"definition": {"type": "function", "function": {"parameters": {"type": "object"}}}},
    {
      "definition": {"type": "function", "function": {"name": "survivor", "parameters": {"type": "object"}}},
      "implementation": "loadtest.echo"
    }
  ]
}`)

	reg, report := Load(Options{Dir: dir, SkipRegistered: true})
	if len(report.Failures) != 0 {
		t.Fatalf("Failures = %v, want none (soft skip)", report.Failures)
	}
	if !reg.Has("survivor") || reg.Len() != 1 {
		t.Errorf("Names() = %v, want only survivor", reg.Names())
	}
}

func TestLoadCachesParsedModules(t *testing.T) {
	registerTestFuncs()
	dir := t.TempDir()
	writeModuleFile(t, dir, "cached.json", echoModuleJSON("cached_tool", "v1"))

	first, _ := Load(Options{Dir: dir, SkipRegistered: true})
	if !first.Has("cached_tool") {
		t.Fatal("first load missing cached_tool")
	}

	// Rewriting the module must not change a reloaded registry: module
	// import happens at most once per process.
	writeModuleFile(t, dir, "cached.json", echoModuleJSON("cached_tool", "v2"))

	second, _ := Load(Options{Dir: dir, SkipRegistered: true})
	desc, _ := second.Get("cached_tool")
	if desc.Definition.Function.Description != "v1" {
		t.Errorf("description = %q, want cached v1", desc.Definition.Function.Description)
	}
}

func TestLoadRetriesFailedModules(t *testing.T) {
	registerTestFuncs()
	dir := t.TempDir()
	writeModuleFile(t, dir, "flaky.json", "{broken")

	_, report := Load(Options{Dir: dir, SkipRegistered: true})
	if len(report.Failures) != 1 {
		t.Fatalf("Failures = %v, want one", report.Failures)
	}

	writeModuleFile(t, dir, "flaky.json", echoModuleJSON("flaky_tool", "fixed"))

	reg, report := Load(Options{Dir: dir, SkipRegistered: true})
	if len(report.Failures) != 0 {
		t.Fatalf("Failures after fix = %v", report.Failures)
	}
	if !reg.Has("flaky_tool") {
		t.Error("fixed module still failing: failures must not be cached")
	}
}

func TestLoadUnresolvedImplementationKeepsSchema(t *testing.T) {
	dir := t.TempDir()
	writeModuleFile(t, dir, "unbound.json", `{
  "unbound_tools": [
    {
      "definition": {"type": "function", "function": {"name": "unbound_tool", "parameters": {"type": "object"}}},
      "implementation": "loadtest.not_registered"
    }
  ]
}`)

	reg, _ := Load(Options{Dir: dir, SkipRegistered: true})
	desc, ok := reg.Get("unbound_tool")
	if !ok {
		t.Fatal("descriptor with unresolved ref dropped from catalog")
	}

	_, err := tool.Invoke(context.Background(), desc, nil)
	if err == nil {
		t.Fatal("Invoke() on unbound descriptor = nil error")
	}
}

func TestRegisteredModulesLoadBeforeDirectoryModules(t *testing.T) {
	registerTestFuncs()
	MustRegisterModule("regmod_precedence",
		tool.Ordered(testDescriptor("precedence_tool", "from registered module")))

	dir := t.TempDir()
	writeModuleFile(t, dir, "aaa.json", echoModuleJSON("precedence_tool", "from directory module"))

	reg, _ := Load(Options{
		Dir:    dir,
		Filter: []string{"regmod_precedence", "aaa"},
	})
	desc, ok := reg.Get("precedence_tool")
	if !ok {
		t.Fatal("precedence_tool missing")
	}
	if desc.Definition.Function.Description != "from registered module" {
		t.Errorf("kept %q, want registered module to win", desc.Definition.Function.Description)
	}
}

func TestRegisterModuleRejectsDuplicateNames(t *testing.T) {
	if err := RegisterModule("regmod_dup"); err != nil {
		t.Fatalf("first RegisterModule() error = %v", err)
	}
	if err := RegisterModule("regmod_dup"); err == nil {
		t.Error("second RegisterModule() = nil, want error")
	}
	if err := RegisterModule("  "); err == nil {
		t.Error("blank module name accepted")
	}
}

func testDescriptor(name, description string) tool.Descriptor {
	return tool.Descriptor{
		Definition: tool.Definition{
			Type: tool.DefinitionTypeFunction,
			Function: tool.FunctionSpec{
				Name:        name,
				Description: description,
				Parameters:  tool.Parameters{Type: tool.ParametersTypeObject},
			},
		},
		Implementation: tool.Func(func(ctx context.Context, args map[string]any) (any, error) {
			return description, nil
		}),
	}
}
