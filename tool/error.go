package tool

import (
	"errors"
	"fmt"
)

// ErrNoImplementation indicates a descriptor carries no dispatchable
// implementation (nil, unresolved manifest ref, or an unsupported type).
var ErrNoImplementation = errors.New("tool: descriptor has no dispatchable implementation")

// InvocationError is the structured failure produced when an implementation
// errors during dispatch. It carries the tool name, the arguments attempted,
// and the underlying cause so an agent loop can feed the failure back into
// the conversation instead of crashing.
type InvocationError struct {
	Tool string
	Args map[string]any
	Err  error
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("tool %s: invocation failed: %v", e.Tool, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *InvocationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newInvocationError(name string, args map[string]any, cause error) *InvocationError {
	copied := make(map[string]any, len(args))
	for k, v := range args {
		copied[k] = v
	}
	return &InvocationError{Tool: name, Args: copied, Err: cause}
}
