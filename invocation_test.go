package weft

import (
	"errors"
	"testing"
)

func TestInvocationTree_RecordsNestedCalls(t *testing.T) {
	r := NewRegistry()

	inner := WrapAsHost(func(s *selection, args []any) Continuation {
		return Done("inner", nil)
	}, "inner", nil, nil, WithRegistry(r))

	outer := WrapAsHost(func(s *selection, args []any) Continuation {
		return func(cs *CallbackSet) (any, error) {
			return inner(s)
		}
	}, "outer", nil, nil, WithRegistry(r))

	sel := &selection{}
	err := r.Install(sel, map[string]*CallbackSet{
		"outer": NewCallbackSet(),
		"inner": NewCallbackSet(),
	})
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}

	if _, err := outer(sel); err != nil {
		t.Fatalf("outer failed: %v", err)
	}

	roots := r.Tree().GetRoots()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root invocation, got %d", len(roots))
	}
	root := roots[0]
	if root.Method != "outer" {
		t.Errorf("expected root method outer, got %s", root.Method)
	}

	status, ok := Status().GetFromNode(root)
	if !ok || status != InvocationStatusSuccess {
		t.Errorf("expected success status, got %v (ok=%v)", status, ok)
	}

	children := r.Tree().GetChildren(root.ID)
	if len(children) != 1 {
		t.Fatalf("expected 1 nested invocation, got %d", len(children))
	}
	if children[0].Method != "inner" {
		t.Errorf("expected nested method inner, got %s", children[0].Method)
	}
}

func TestInvocationTree_FailureTags(t *testing.T) {
	r := NewRegistry()
	bodyErr := errors.New("nope")

	m := WrapAsHost(func(s *selection, args []any) Continuation {
		return Done(nil, bodyErr)
	}, "select", []string{"itemId"}, nil, WithRegistry(r))

	sel := &selection{}
	if err := r.Install(sel, map[string]*CallbackSet{"select": NewCallbackSet()}); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	if _, err := m(sel, "a"); !errors.Is(err, bodyErr) {
		t.Fatalf("expected body error, got %v", err)
	}

	failed := r.Tree().Filter(func(n *InvocationNode) bool {
		status, ok := Status().GetFromNode(n)
		return ok && status == InvocationStatusFailed
	})
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed node, got %d", len(failed))
	}

	tagged, ok := ErrorTag().GetFromNode(failed[0])
	if !ok || !errors.Is(tagged, bodyErr) {
		t.Errorf("expected error tag with body error, got %v (ok=%v)", tagged, ok)
	}

	args, ok := ArgsSnapshot().GetFromNode(failed[0])
	if !ok || args["itemId"] != "a" {
		t.Errorf("expected args snapshot with itemId=a, got %v (ok=%v)", args, ok)
	}
}

func TestInvocationTree_EvictsOldestRoot(t *testing.T) {
	r := NewRegistry(WithTreeLimit(2))

	m := WrapAsHost(func(s *selection, args []any) Continuation {
		return Done(nil, nil)
	}, "select", nil, nil, WithRegistry(r))

	sel := &selection{}
	if err := r.Install(sel, map[string]*CallbackSet{"select": NewCallbackSet()}); err != nil {
		t.Fatalf("install failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := m(sel); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}

	roots := r.Tree().GetRoots()
	if len(roots) > 2 {
		t.Errorf("expected at most 2 retained roots, got %d", len(roots))
	}
}

func TestInvocation_LookupWalksParents(t *testing.T) {
	r := NewRegistry()
	marker := NewTag[string]("test.marker")
	var found string

	inner := WrapAsHost(func(s *selection, args []any) Continuation {
		return func(cs *CallbackSet) (any, error) {
			inv := r.currentFrame()
			if v, ok := marker.Get(inv); ok {
				found = "own:" + v
			} else if v, ok := inv.Lookup(marker); ok {
				found = "parent:" + v.(string)
			}
			return nil, nil
		}
	}, "inner", nil, nil, WithRegistry(r))

	outer := WrapAsHost(func(s *selection, args []any) Continuation {
		return func(cs *CallbackSet) (any, error) {
			marker.Set(r.currentFrame(), "from-outer")
			return inner(s)
		}
	}, "outer", nil, nil, WithRegistry(r))

	sel := &selection{}
	err := r.Install(sel, map[string]*CallbackSet{
		"outer": NewCallbackSet(),
		"inner": NewCallbackSet(),
	})
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}

	if _, err := outer(sel); err != nil {
		t.Fatalf("outer failed: %v", err)
	}
	if found != "parent:from-outer" {
		t.Errorf("expected parent lookup to find the outer tag, got %q", found)
	}
}

func TestInvocationTree_Walk(t *testing.T) {
	r := NewRegistry()

	inner := WrapAsHost(func(s *selection, args []any) Continuation {
		return Done(nil, nil)
	}, "inner", nil, nil, WithRegistry(r))

	outer := WrapAsHost(func(s *selection, args []any) Continuation {
		return func(cs *CallbackSet) (any, error) {
			return inner(s)
		}
	}, "outer", nil, nil, WithRegistry(r))

	sel := &selection{}
	err := r.Install(sel, map[string]*CallbackSet{
		"outer": NewCallbackSet(),
		"inner": NewCallbackSet(),
	})
	if err != nil {
		t.Fatalf("install failed: %v", err)
	}
	if _, err := outer(sel); err != nil {
		t.Fatalf("outer failed: %v", err)
	}

	roots := r.Tree().GetRoots()
	if len(roots) != 1 {
		t.Fatalf("expected 1 root, got %d", len(roots))
	}

	var visited []string
	r.Tree().Walk(roots[0].ID, func(n *InvocationNode) bool {
		visited = append(visited, n.Method)
		return true
	})

	if len(visited) != 2 || visited[0] != "outer" || visited[1] != "inner" {
		t.Errorf("expected walk [outer inner], got %v", visited)
	}
}
