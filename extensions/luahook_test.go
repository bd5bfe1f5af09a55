package extensions

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
	weft "github.com/weft-fn/weft-go"
)

func loadLuaFunc(t *testing.T, L *lua.LState, script, name string) *lua.LFunction {
	t.Helper()
	if err := L.DoString(script); err != nil {
		t.Fatalf("lua load failed: %v", err)
	}
	fn, ok := L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		t.Fatalf("%s is not a function", name)
	}
	return fn
}

func TestLuaHandler_ReadsArgsAndReturns(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	fn := loadLuaFunc(t, L, `function validate(args) return args.itemId ~= "" end`, "validate")

	r := weft.NewRegistry()
	m := weft.WrapAsHost(func(c *counter, args []any) weft.Continuation {
		return func(cs *weft.CallbackSet) (any, error) {
			return cs.Trigger("validate")
		}
	}, "pick", []string{"itemId"}, nil, weft.WithRegistry(r))

	c := &counter{}
	sets := map[string]*weft.CallbackSet{
		"pick": weft.NewCallbackSet(weft.WithHook("validate", LuaHandler(L, fn))),
	}
	if err := r.Install(c, sets); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	got, err := m(c, "item-7")
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if got != true {
		t.Errorf("expected true, got %v (%T)", got, got)
	}

	got, err = m(c, "")
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if got != false {
		t.Errorf("expected false, got %v (%T)", got, got)
	}
}

func TestLuaHandler_ScriptError(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	fn := loadLuaFunc(t, L, `function boom(args) error("rejected") end`, "boom")

	cs := weft.NewCallbackSet(weft.WithHook("audit", LuaHandler(L, fn)))
	if _, err := cs.Trigger("audit"); err == nil {
		t.Fatalf("expected error from lua handler")
	}
}

func TestToGoValue_Roundtrip(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if got := ToGoValue(toLuaValue(L, int64(42))); got != int64(42) {
		t.Errorf("int64 roundtrip: got %v (%T)", got, got)
	}
	if got := ToGoValue(toLuaValue(L, 1.5)); got != 1.5 {
		t.Errorf("float roundtrip: got %v (%T)", got, got)
	}
	if got := ToGoValue(toLuaValue(L, "id-1")); got != "id-1" {
		t.Errorf("string roundtrip: got %v (%T)", got, got)
	}
	if got := ToGoValue(toLuaValue(L, true)); got != true {
		t.Errorf("bool roundtrip: got %v (%T)", got, got)
	}

	arr, ok := ToGoValue(toLuaValue(L, []string{"a", "b"})).([]any)
	if !ok || len(arr) != 2 || arr[0] != "a" || arr[1] != "b" {
		t.Errorf("slice roundtrip: got %#v", arr)
	}

	m, ok := ToGoValue(toLuaValue(L, map[string]any{"k": "v"})).(map[string]any)
	if !ok || m["k"] != "v" {
		t.Errorf("map roundtrip: got %#v", m)
	}

	type opaque struct{ n int }
	o := &opaque{n: 3}
	if got := ToGoValue(toLuaValue(L, o)); got != o {
		t.Errorf("userdata roundtrip: got %v", got)
	}
}
