package tool

import (
	"context"
	"testing"
)

func TestRegisterFuncAndLookup(t *testing.T) {
	fn := Func(func(ctx context.Context, args map[string]any) (any, error) {
		return "hi", nil
	})
	if err := RegisterFunc("funcs_test.greet", fn); err != nil {
		t.Fatalf("RegisterFunc() error = %v", err)
	}

	impl, ok := LookupFunc("funcs_test.greet")
	if !ok {
		t.Fatal("LookupFunc() did not find registered func")
	}
	if _, ok := impl.(Func); !ok {
		t.Errorf("LookupFunc() type = %T, want Func", impl)
	}
}

func TestRegisterFuncRejectsDuplicates(t *testing.T) {
	fn := Func(func(ctx context.Context, args map[string]any) (any, error) {
		return nil, nil
	})
	if err := RegisterFunc("funcs_test.dup", fn); err != nil {
		t.Fatalf("first RegisterFunc() error = %v", err)
	}
	if err := RegisterFunc("funcs_test.dup", fn); err == nil {
		t.Error("second RegisterFunc() = nil, want error")
	}
}

func TestRegisterFuncRejectsBadShapes(t *testing.T) {
	if err := RegisterFunc("", Func(nil)); err == nil {
		t.Error("empty ref accepted")
	}
	if err := RegisterFunc("funcs_test.bad", "not a func"); err == nil {
		t.Error("non-callable implementation accepted")
	}
}

func TestLookupFuncMissing(t *testing.T) {
	if _, ok := LookupFunc("funcs_test.never_registered"); ok {
		t.Error("LookupFunc() found an unregistered ref")
	}
}

func TestGoAdapterDeliversResult(t *testing.T) {
	async := Go(func(ctx context.Context, args map[string]any) (any, error) {
		return 7, nil
	})
	res := <-async(context.Background(), nil)
	if res.Err != nil {
		t.Fatalf("result error = %v", res.Err)
	}
	if res.Value != 7 {
		t.Errorf("result = %v, want 7", res.Value)
	}
}
