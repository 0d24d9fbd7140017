// Package builtins ships the sample tools bundled with Pollen. Importing the
// package registers them as the in-process module "sample_tools" and binds
// their implementations in the callable table so manifest modules can
// reference them by name.
package builtins

import (
	"context"
	"fmt"
	"strings"

	"github.com/petal-labs/pollen/loader"
	"github.com/petal-labs/pollen/tool"
)

// ModuleName is the in-process module the sample tools register under.
const ModuleName = "sample_tools"

// Implementation refs resolvable through tool.LookupFunc.
const (
	RefGetWeather = "builtins.get_weather"
	RefCalculate  = "builtins.calculate"
)

// weatherByCity is canned demo data; unknown cities fall through to a
// generic reading.
var weatherByCity = map[string]string{
	"tokyo":         "Cloudy, 25°C",
	"london":        "Rainy, 14°C",
	"san francisco": "Foggy, 17°C",
	"sydney":        "Sunny, 22°C",
}

// getWeather reports canned conditions for a location. It is asynchronous
// to exercise the dispatcher's await path.
func getWeather(ctx context.Context, args map[string]any) (any, error) {
	location, _ := args["location"].(string)
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("location is required")
	}
	conditions, ok := weatherByCity[strings.ToLower(strings.TrimSpace(location))]
	if !ok {
		conditions = "Clear, 20°C"
	}
	return fmt.Sprintf("Weather in %s: %s", location, conditions), nil
}

// calculate evaluates a restricted arithmetic expression. Evaluation errors
// are reported as a descriptive result string rather than propagated; that
// is this tool's own policy, not dispatcher behavior.
func calculate(ctx context.Context, args map[string]any) (any, error) {
	expression, _ := args["expression"].(string)
	if strings.TrimSpace(expression) == "" {
		return "error: expression is required", nil
	}
	value, err := evalArithmetic(expression)
	if err != nil {
		return fmt.Sprintf("error evaluating %q: %v", expression, err), nil
	}
	return fmt.Sprintf("%s = %s", expression, formatNumber(value)), nil
}

// GetWeatherDescriptor returns the sample weather tool descriptor.
func GetWeatherDescriptor() tool.Descriptor {
	return tool.Descriptor{
		Definition: tool.Definition{
			Type: tool.DefinitionTypeFunction,
			Function: tool.FunctionSpec{
				Name:        "get_weather",
				Description: "Get the current weather conditions for a location.",
				Parameters: tool.Parameters{
					Type: tool.ParametersTypeObject,
					Properties: map[string]tool.Property{
						"location": {
							Type:        "string",
							Description: "City name, e.g. Tokyo",
						},
						"unit": {
							Type:        "string",
							Description: "Temperature unit",
							Enum:        []any{"celsius", "fahrenheit"},
							Default:     "celsius",
						},
					},
					Required: []string{"location"},
				},
			},
		},
		Implementation: tool.Go(getWeather),
		Attributes: map[string]any{
			"category":       "demo",
			"version":        "1.0",
			tool.AttrIsAsync: true,
		},
	}
}

// CalculateDescriptor returns the sample calculator tool descriptor.
func CalculateDescriptor() tool.Descriptor {
	return tool.Descriptor{
		Definition: tool.Definition{
			Type: tool.DefinitionTypeFunction,
			Function: tool.FunctionSpec{
				Name:        "calculate",
				Description: "Evaluate an arithmetic expression (+, -, *, /, %, parentheses).",
				Parameters: tool.Parameters{
					Type: tool.ParametersTypeObject,
					Properties: map[string]tool.Property{
						"expression": {
							Type:        "string",
							Description: "Arithmetic expression, e.g. 2+2",
						},
					},
					Required: []string{"expression"},
				},
			},
		},
		Implementation: tool.Func(calculate),
		Attributes: map[string]any{
			"category": "demo",
			"version":  "1.0",
		},
	}
}

func init() {
	tool.MustRegisterFunc(RefGetWeather, tool.Go(getWeather))
	tool.MustRegisterFunc(RefCalculate, tool.Func(calculate))
	loader.MustRegisterModule(ModuleName,
		tool.Ordered(GetWeatherDescriptor(), CalculateDescriptor()))
}
