package weft

import "testing"

func BenchmarkHostInvocation(b *testing.B) {
	r := NewRegistry()

	m := WrapAsHost(func(s *selection, args []any) Continuation {
		return func(cs *CallbackSet) (any, error) {
			return cs.Trigger("h", Optional())
		}
	}, "select", []string{"itemId"}, nil, WithRegistry(r))

	sel := &selection{}
	err := r.Install(sel, map[string]*CallbackSet{
		"select": NewCallbackSet(WithHook("h", func(cs *CallbackSet) (any, error) {
			return nil, nil
		})),
	})
	if err != nil {
		b.Fatalf("install failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m(sel, "a"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTriggerFanOut(b *testing.B) {
	cs := NewCallbackSet(
		WithHook("h", func(cs *CallbackSet) (any, error) { return 1, nil }),
		WithLabeledHook("h", LabelRet, func(cs *CallbackSet) (any, error) { return 2, nil }),
		WithHook("h", func(cs *CallbackSet) (any, error) { return 3, nil }),
	)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cs.Trigger("h"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStampRestore(b *testing.B) {
	cs := NewCallbackSet()
	names := []string{"x", "y", "z"}
	args := []any{1, 2, 3}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		memos := cs.stampArgs(names, args)
		cs.restoreArgs(memos)
	}
}
