package extensions

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	weft "github.com/weft-fn/weft-go"
)

// LuaHandler adapts a Lua function into a hook handler. The current
// invocation's arguments are passed to the function as a table; the
// function's single return value is converted back to a Go value.
//
//	L := lua.NewState()
//	defer L.Close()
//	if err := L.DoString(`function validate(args) return args.itemId ~= "" end`); err != nil { ... }
//	fn := L.GetGlobal("validate").(*lua.LFunction)
//	cs.On("validate", extensions.LuaHandler(L, fn))
//
// The Lua state is not goroutine-safe; handlers created from one state must
// stay on the logical thread driving the host instance.
func LuaHandler(L *lua.LState, fn *lua.LFunction) weft.Handler {
	return func(cs *weft.CallbackSet) (any, error) {
		tbl := L.NewTable()
		for name, val := range cs.Args() {
			L.SetField(tbl, name, toLuaValue(L, val))
		}

		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, tbl); err != nil {
			return nil, fmt.Errorf("lua hook handler: %w", err)
		}

		ret := L.Get(-1)
		L.Pop(1)
		return ToGoValue(ret), nil
	}
}

// toLuaValue converts a Go value to a Lua value. Unconvertible values are
// wrapped as userdata so they round-trip through ToGoValue.
func toLuaValue(L *lua.LState, val any) lua.LValue {
	switch v := val.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []any:
		tbl := L.NewTable()
		for _, item := range v {
			tbl.Append(toLuaValue(L, item))
		}
		return tbl
	case []string:
		tbl := L.NewTable()
		for _, item := range v {
			tbl.Append(lua.LString(item))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for key, item := range v {
			L.SetField(tbl, key, toLuaValue(L, item))
		}
		return tbl
	default:
		ud := L.NewUserData()
		ud.Value = val
		return ud
	}
}

// ToGoValue converts a Lua value to a Go value
func ToGoValue(lv lua.LValue) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		return tableToGo(v)
	case *lua.LUserData:
		return v.Value
	default:
		return nil
	}
}

// tableToGo converts a Lua table to either a Go map or slice
func tableToGo(t *lua.LTable) any {
	maxN := t.MaxN()
	if maxN > 0 {
		arr := make([]any, 0, maxN)
		for i := 1; i <= maxN; i++ {
			arr = append(arr, ToGoValue(t.RawGetInt(i)))
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			m[string(ks)] = ToGoValue(v)
		}
	})
	return m
}
