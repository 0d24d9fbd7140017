package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Invoke dispatches one tool call. Synchronous implementations run directly
// on the caller's goroutine and may block; asynchronous implementations are
// awaited, racing the caller's context. The dispatcher starts no execution
// context of its own and imposes no timeout: a tool that can hang must be
// bounded by the implementation or the surrounding agent loop.
//
// On success the implementation's return value is passed through unmodified.
// On failure the error is an *InvocationError carrying the tool name, the
// attempted arguments, and the cause. Schema-declared required/type/enum
// constraints are documentation for the caller, not a runtime gate here.
func Invoke(ctx context.Context, d Descriptor, args map[string]any) (any, error) {
	name := d.Name()
	requestID := uuid.NewString()
	start := time.Now()

	value, err := dispatch(ctx, d, args)

	emitInvokeObservation(InvokeObservation{
		ToolName:   name,
		RequestID:  requestID,
		Async:      d.IsAsync(),
		DurationMS: time.Since(start).Milliseconds(),
		Success:    err == nil,
	})

	if err != nil {
		return nil, newInvocationError(name, args, err)
	}
	return value, nil
}

func dispatch(ctx context.Context, d Descriptor, args map[string]any) (any, error) {
	switch impl := d.Implementation.(type) {
	case Func:
		return impl(ctx, args)
	case AsyncFunc:
		return await(ctx, impl(ctx, args))
	case func(ctx context.Context, args map[string]any) (any, error):
		return Func(impl)(ctx, args)
	case func(ctx context.Context, args map[string]any) <-chan Result:
		return await(ctx, impl(ctx, args))
	case nil:
		return nil, ErrNoImplementation
	default:
		return nil, fmt.Errorf("%w: unsupported implementation type %T", ErrNoImplementation, impl)
	}
}

// await suspends the calling goroutine until the implementation delivers a
// result or the context is done.
func await(ctx context.Context, results <-chan Result) (any, error) {
	select {
	case res := <-results:
		return res.Value, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
