package weft

import (
	"testing"
)

func TestCallbackSet_Options(t *testing.T) {
	cs := NewCallbackSet(
		WithEnter(func(cs *CallbackSet) (any, error) { return nil, nil }),
		WithExit(func(cs *CallbackSet) (any, error) { return nil, nil }),
		WithHook("h", func(cs *CallbackSet) (any, error) { return nil, nil }),
		WithLabeledHook("h", LabelRet, func(cs *CallbackSet) (any, error) { return nil, nil }),
	)

	if !cs.HasHook(HookEnter) {
		t.Error("expected enter hook")
	}
	if !cs.HasHook(HookExit) {
		t.Error("expected exit hook")
	}
	if !cs.HasHook("h") {
		t.Error("expected h hook")
	}
	if cs.HasHook("absent") {
		t.Error("did not expect absent hook")
	}
	if cs.HandlerCount("h") != 2 {
		t.Errorf("expected 2 handlers for h, got %d", cs.HandlerCount("h"))
	}
}

func TestCallbackSet_BuilderChaining(t *testing.T) {
	cs := NewCallbackSet().
		On("a", func(cs *CallbackSet) (any, error) { return 1, nil }).
		OnLabeled("a", "metrics", func(cs *CallbackSet) (any, error) { return 2, nil })

	if cs.HandlerCount("a") != 2 {
		t.Errorf("expected 2 handlers, got %d", cs.HandlerCount("a"))
	}

	// A labelled (non-ret) handler never supplies the return value.
	res, err := cs.Trigger("a")
	if err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	if res != 1 {
		t.Errorf("expected unlabelled result 1, got %v", res)
	}
}

func TestCallbackSet_StampAndRestore(t *testing.T) {
	cs := NewCallbackSet()

	memos := cs.stampArgs([]string{"x", "y"}, []any{1, "two"})
	if v, _ := cs.Arg("x"); v != 1 {
		t.Errorf("expected x=1, got %v", v)
	}
	if v, _ := cs.Arg("y"); v != "two" {
		t.Errorf("expected y=two, got %v", v)
	}

	cs.restoreArgs(memos)
	if _, ok := cs.Arg("x"); ok {
		t.Error("expected x removed after restore")
	}
	if _, ok := cs.Arg("y"); ok {
		t.Error("expected y removed after restore")
	}
}

func TestCallbackSet_StampMissingArgIsNil(t *testing.T) {
	cs := NewCallbackSet()

	memos := cs.stampArgs([]string{"x", "y"}, []any{1})
	v, ok := cs.Arg("y")
	if !ok || v != nil {
		t.Errorf("expected y stamped as nil, got %v (ok=%v)", v, ok)
	}
	cs.restoreArgs(memos)
}

func TestCallbackSet_NestedStampRestoresPrior(t *testing.T) {
	cs := NewCallbackSet()

	outer := cs.stampArgs([]string{"x"}, []any{1})
	inner := cs.stampArgs([]string{"x"}, []any{2})

	if v, _ := Arg[int](cs, "x"); v != 2 {
		t.Errorf("expected innermost x=2, got %v", v)
	}

	cs.restoreArgs(inner)
	if v, _ := Arg[int](cs, "x"); v != 1 {
		t.Errorf("expected outer x=1 after inner restore, got %v", v)
	}

	cs.restoreArgs(outer)
	if _, ok := cs.Arg("x"); ok {
		t.Error("expected x absent after full restore")
	}
}

func TestCallbackSet_ArgsReturnsCopy(t *testing.T) {
	cs := NewCallbackSet()
	memos := cs.stampArgs([]string{"x"}, []any{1})

	snapshot := cs.Args()
	snapshot["x"] = 99

	if v, _ := Arg[int](cs, "x"); v != 1 {
		t.Errorf("mutating the snapshot must not affect the live fields, got %v", v)
	}
	cs.restoreArgs(memos)
}

func TestCallbackSet_TypedArgHelpers(t *testing.T) {
	cs := NewCallbackSet()
	memos := cs.stampArgs([]string{"n", "s"}, []any{42, "hello"})
	defer cs.restoreArgs(memos)

	n, ok := Arg[int](cs, "n")
	if !ok || n != 42 {
		t.Errorf("expected 42, got %v (ok=%v)", n, ok)
	}

	if _, ok := Arg[string](cs, "n"); ok {
		t.Error("expected type mismatch to report !ok")
	}

	if got := ArgOrDefault(cs, "missing", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %v", got)
	}
	if got := ArgOrDefault(cs, "s", "fallback"); got != "hello" {
		t.Errorf("expected hello, got %v", got)
	}
}
