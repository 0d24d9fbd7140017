package tool

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Func is a synchronous tool implementation. It runs on the caller's
// goroutine and may block; callers needing non-blocking behavior must
// register an AsyncFunc instead.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Result carries one asynchronous implementation outcome.
type Result struct {
	Value any
	Err   error
}

// AsyncFunc is an asynchronous tool implementation. The dispatcher awaits
// the returned channel on the caller's context; the implementation owns the
// goroutine that produces the result.
type AsyncFunc func(ctx context.Context, args map[string]any) <-chan Result

// Go adapts a synchronous function into an AsyncFunc by running it on its
// own goroutine and delivering the outcome over a buffered channel.
func Go(fn Func) AsyncFunc {
	return func(ctx context.Context, args map[string]any) <-chan Result {
		out := make(chan Result, 1)
		go func() {
			value, err := fn(ctx, args)
			out <- Result{Value: value, Err: err}
		}()
		return out
	}
}

// funcTable is the process-wide callable table. Manifest modules reference
// implementations by name; native Go plugin packages populate the table at
// init via RegisterFunc.
var funcTable = struct {
	mu    sync.RWMutex
	funcs map[string]any
}{funcs: make(map[string]any)}

// RegisterFunc binds an implementation to a reference name. The
// implementation must be a Func or AsyncFunc. Registering a name twice is
// an error so plugin packages cannot silently shadow each other.
func RegisterFunc(ref string, impl any) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return fmt.Errorf("tool: implementation ref is empty")
	}
	switch impl.(type) {
	case Func, AsyncFunc:
	default:
		return fmt.Errorf("tool: implementation %q is %T, want tool.Func or tool.AsyncFunc", ref, impl)
	}

	funcTable.mu.Lock()
	defer funcTable.mu.Unlock()
	if _, exists := funcTable.funcs[ref]; exists {
		return fmt.Errorf("tool: implementation %q is already registered", ref)
	}
	funcTable.funcs[ref] = impl
	return nil
}

// MustRegisterFunc is RegisterFunc for package init blocks.
func MustRegisterFunc(ref string, impl any) {
	if err := RegisterFunc(ref, impl); err != nil {
		panic(err)
	}
}

// LookupFunc resolves a registered implementation by reference name.
func LookupFunc(ref string) (any, bool) {
	funcTable.mu.RLock()
	defer funcTable.mu.RUnlock()
	impl, ok := funcTable.funcs[ref]
	return impl, ok
}
