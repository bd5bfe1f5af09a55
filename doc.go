// Package weft provides restricted, auditable callback injection for host
// methods: cross-cutting behavior (logging, validation, side effects) lives
// in one installed callback map per instance instead of being scattered
// across call sites.
//
// # Overview
//
// Weft organizes code around three core concepts:
//
//  1. Host methods: methods wrapped once so every call runs against an
//     installed set of callbacks
//  2. CallbackSets: the hook handlers for one method plus a live copy of
//     the current call's arguments
//  3. Registries: per-instance side tables, the extension chain, and the
//     invocation tree
//
// # Basic Usage
//
// Wrap a method body as a host. The body returns a continuation; the
// wrapper calls it with the resolved CallbackSet once the call's arguments
// are stamped onto it:
//
//	type Selection struct {
//	    SelectableIDs []string
//	    SelectedIDs   []string
//	}
//
//	var selectItem = weft.Host1[*Selection, string, []string](
//	    func(s *Selection, itemID string) weft.Continuation {
//	        return func(cs *weft.CallbackSet) (any, error) {
//	            if _, err := cs.Trigger("validate"); err != nil {
//	                return nil, err
//	            }
//	            s.SelectedIDs = append(s.SelectedIDs, itemID)
//	            return s.SelectedIDs, nil
//	        }
//	    },
//	    "select",
//	    []string{"itemId"},
//	    nil,
//	)
//
// Install the callbacks once per instance, then call the wrapped method:
//
//	sel := &Selection{SelectableIDs: []string{"a", "b"}}
//	weft.Install(sel, map[string]*weft.CallbackSet{
//	    "select": weft.NewCallbackSet(
//	        weft.WithHook("validate", func(cs *weft.CallbackSet) (any, error) {
//	            id, _ := weft.Arg[string](cs, "itemId")
//	            if !slices.Contains(sel.SelectableIDs, id) {
//	                return nil, fmt.Errorf("unselectable item %q", id)
//	            }
//	            return nil, nil
//	        }),
//	    ),
//	})
//
//	ids, err := selectItem(sel, "a")
//
// # Resolution
//
// Each call resolves its CallbackSet from exactly one source, never merged
// field-by-field:
//
//   - the explicit map set by Install, when present
//   - else the default map, materialized at most once per instance per
//     method from the factory passed at wrap time
//
// With neither available the call fails fast with MissingCallbackError
// before the body runs. Installing an explicit map with only some hooks
// does not fall back per-hook to the default set: absent hooks are absent,
// subject to Optional().
//
// # Arguments and restore
//
// For the duration of a call, the call's arguments are visible as named
// fields on the CallbackSet (Arg, Args, the generic Arg[T]). Prior field
// values are memoized at entry and restored on every exit path, including
// error returns and panics, so nested and re-entrant calls through the same
// shared set see only their own arguments while on the stack.
//
// The stamp/restore protocol brackets the synchronous call frame only.
// A handler that schedules deferred work must copy argument values out with
// Args() first; the live fields will have been restored by the time the
// continuation runs.
//
// # Named hooks
//
// Method bodies dispatch ad hoc trigger points through the active set:
//
//	res, err := cs.Trigger("selectItem")
//	res, err := weft.Trigger("selectItem")           // ambient form
//	res, err := weft.Trigger("audit", weft.Optional())
//
// Multiple handlers may be registered per hook; all run in registration
// order. The trigger returns the result of the last handler labelled
// weft.LabelRet, or of the last unlabelled handler when none is. Phased
// triggering fires "<hook>_pre", "<hook>", "<hook>_post" in sequence;
// WithLazyPost restores the historical behavior of deferring the post hook
// until the next trigger or exit.
//
// # Enter and exit
//
// A set's enter hook runs before the body. The exit hook runs after it on
// every path, including error and panic unwind, mirroring scoped-resource
// release. Method-body errors and panics propagate unchanged once the
// wrapper has restored its state.
//
// # Extensions
//
// Registries accept extensions that wrap host invocations middleware-style
// and observe errors and panics:
//
//	registry := weft.NewRegistry(
//	    weft.WithExtension(extensions.NewLoggingExtension(handler)),
//	)
//
// Completed invocations finalize into a bounded InvocationTree on the
// registry, queryable by ID, parent, or predicate.
//
// # Policies
//
// A YAML Policy declares parameter names and required hooks per method; it
// doubles as the registry's ParamNameResolver and can verify an assembled
// callback map before first use. See Policy.
//
// # Concurrency
//
// Synchronous execution per instance: a host instance's invocations must be
// confined to one logical thread of control. Distinct instances may be
// driven from distinct goroutines; the registry's own bookkeeping is
// guarded, but ambient lookup across goroutines is not supported.
package weft
