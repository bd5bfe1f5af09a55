package weft

import (
	"runtime/debug"
	"time"
)

// Continuation is the injection point a method body returns. The host
// wrapper invokes it with the resolved CallbackSet once the set is fully
// stamped with the call's arguments, keeping the body readable as "the
// logic, then the callbacks".
type Continuation func(cs *CallbackSet) (any, error)

// Done returns a continuation that ignores the callback set and yields the
// given result. Bodies written in the ambient style use it to hand their
// result back to the wrapper.
func Done(result any, err error) Continuation {
	return func(*CallbackSet) (any, error) {
		return result, err
	}
}

// Body is the underlying logic of a host method. It receives the instance
// and the call's arguments and returns the continuation to run against the
// resolved callback set. A nil continuation means a nil result.
type Body[S comparable] func(self S, args []any) Continuation

// Factory creates the default CallbackSet for an instance. It runs at most
// once per instance per method; the result is memoized into the instance's
// default map.
type Factory[S comparable] func(self S) *CallbackSet

// Method is a wrapped host method
type Method[S comparable] func(self S, args ...any) (any, error)

type hostConfig struct {
	registry *Registry
}

// HostOption is a modifier for host wrapping
type HostOption func(*hostConfig)

// WithRegistry binds the wrapped method to a registry other than
// DefaultRegistry
func WithRegistry(r *Registry) HostOption {
	return func(cfg *hostConfig) {
		cfg.registry = r
	}
}

// WrapAsHost wraps a method body so that each call resolves the instance's
// callback set, stamps the call's arguments onto it, brackets the body with
// the enter and exit hooks, and restores all shared state on every exit
// path.
//
// Resolution order per call: the installed explicit map, else the memoized
// default map, else defaultFactory (memoized for all future calls on the
// instance). With none of the three, the call fails with
// MissingCallbackError before the body runs.
//
// paramNames gives the ordered names under which arguments appear as fields
// on the callback set. When nil, the registry's ParamNameResolver is
// consulted once and the answer cached.
func WrapAsHost[S comparable](body Body[S], methodName string, paramNames []string, defaultFactory Factory[S], opts ...HostOption) Method[S] {
	cfg := &hostConfig{registry: DefaultRegistry}
	for _, opt := range opts {
		opt(cfg)
	}
	r := cfg.registry

	return func(self S, args ...any) (any, error) {
		st := r.tableFor(self)

		var factory func() *CallbackSet
		if defaultFactory != nil {
			factory = func() *CallbackSet { return defaultFactory(self) }
		}

		cs, err := st.resolveSet(methodName, self, factory)
		if err != nil {
			return nil, err
		}

		names := st.paramNamesFor(methodName, paramNames, r.resolver)

		op := &Operation{
			Kind:     OpInvoke,
			Method:   methodName,
			Instance: self,
			Registry: r,
		}

		next := func() (any, error) {
			return r.runInvocation(st, methodName, self, cs, names, args, func(cs *CallbackSet) (any, error) {
				cont := body(self, args)
				if cont == nil {
					return nil, nil
				}
				return cont(cs)
			})
		}

		return r.applyExtensions(next, op)
	}
}

// runInvocation executes the argument stamp/restore protocol around one
// host-method call. The unwind path runs on every exit, including panics:
// pending post-hook, exit hook, active-context pop, argument restore, then
// the panic re-raises.
func (r *Registry) runInvocation(st *sideTable, method string, instance any, cs *CallbackSet, names []string, args []any, call func(*CallbackSet) (any, error)) (result any, err error) {
	parent := r.currentFrame()
	inv := newInvocation(r, method, instance, cs, parent)

	memos := cs.stampArgs(names, args)
	st.pushActive(cs)
	r.pushFrame(inv)

	inv.Set(methodTag, method)
	inv.Set(startTimeTag, time.Now())
	inv.Set(statusTag, InvocationStatusRunning)
	inv.Set(argsTag, cs.Args())

	defer func() {
		recovered := recover()
		if recovered != nil {
			stack := debug.Stack()
			inv.Set(statusTag, InvocationStatusPanicked)
			inv.Set(panicStackTag, stack)
			for _, ext := range r.snapshotExtensions() {
				ext.OnPanic(inv, recovered, stack)
			}
		}

		if postErr := r.flushPendingPost(inv); postErr != nil && err == nil && recovered == nil {
			err = newInvocationError(method, instance, postErr, "post")
		}

		// exit runs unconditionally, mirroring scoped-resource release
		if cs.exit != nil {
			if _, exitErr := cs.exit(cs); exitErr != nil && err == nil && recovered == nil {
				err = newInvocationError(method, instance, exitErr, "exit")
			}
		}

		r.popFrame(inv)
		st.popActive(cs)
		cs.restoreArgs(memos)

		inv.Set(endTimeTag, time.Now())
		if recovered == nil {
			if err != nil {
				inv.Set(statusTag, InvocationStatusFailed)
				inv.Set(errorTag, err)
			} else {
				inv.Set(statusTag, InvocationStatusSuccess)
				inv.Set(outputTag, result)
			}
		}
		r.tree.addNode(inv.finalize())

		if recovered != nil {
			panic(recovered)
		}
	}()

	if cs.enter != nil {
		if _, enterErr := cs.enter(cs); enterErr != nil {
			err = newInvocationError(method, instance, enterErr, "enter")
			return
		}
	}

	result, err = call(cs)
	return
}
