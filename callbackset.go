package weft

// LabelRet marks a handler whose result becomes the trigger's return value
// regardless of its position in the handler sequence.
const LabelRet = "ret"

// HookEnter and HookExit are the reserved hook names bracketing every
// host-method invocation.
const (
	HookEnter = "enter"
	HookExit  = "exit"
)

// Handler is a hook function. It receives the CallbackSet it is registered
// on, through which it can read the current invocation's arguments.
type Handler func(cs *CallbackSet) (any, error)

type handlerEntry struct {
	label string
	fn    Handler
}

// CallbackSet holds the hook handlers installed for one host method plus a
// live copy of the current invocation's arguments. The same CallbackSet
// object is reused across invocations on an instance; argument fields are
// stamped at call entry and restored on every exit path.
type CallbackSet struct {
	enter Handler
	exit  Handler
	hooks map[string][]handlerEntry
	args  map[string]any
}

// SetOption is a modifier for callback sets
type SetOption func(*CallbackSet)

// WithEnter sets the enter hook, invoked before the method body
func WithEnter(fn Handler) SetOption {
	return func(cs *CallbackSet) {
		cs.enter = fn
	}
}

// WithExit sets the exit hook, invoked after the method body on every exit
// path, including error and panic unwind
func WithExit(fn Handler) SetOption {
	return func(cs *CallbackSet) {
		cs.exit = fn
	}
}

// WithHook appends an unlabelled handler for the named hook
func WithHook(name string, fn Handler) SetOption {
	return func(cs *CallbackSet) {
		cs.On(name, fn)
	}
}

// WithLabeledHook appends a labelled handler for the named hook
func WithLabeledHook(name, label string, fn Handler) SetOption {
	return func(cs *CallbackSet) {
		cs.OnLabeled(name, label, fn)
	}
}

// NewCallbackSet creates a callback set with optional configuration
func NewCallbackSet(opts ...SetOption) *CallbackSet {
	cs := &CallbackSet{
		hooks: make(map[string][]handlerEntry),
	}

	for _, opt := range opts {
		opt(cs)
	}

	return cs
}

// On appends an unlabelled handler for the named hook. Handlers run in
// registration order when the hook is triggered.
func (cs *CallbackSet) On(name string, fn Handler) *CallbackSet {
	cs.hooks[name] = append(cs.hooks[name], handlerEntry{fn: fn})
	return cs
}

// OnLabeled appends a labelled handler for the named hook. A handler
// labelled LabelRet supplies the trigger's return value.
func (cs *CallbackSet) OnLabeled(name, label string, fn Handler) *CallbackSet {
	cs.hooks[name] = append(cs.hooks[name], handlerEntry{label: label, fn: fn})
	return cs
}

// HasHook reports whether at least one handler is registered for the hook
func (cs *CallbackSet) HasHook(name string) bool {
	switch name {
	case HookEnter:
		return cs.enter != nil
	case HookExit:
		return cs.exit != nil
	}
	return len(cs.hooks[name]) > 0
}

// HandlerCount returns the number of handlers registered for the hook
func (cs *CallbackSet) HandlerCount(name string) int {
	return len(cs.hooks[name])
}

// Arg retrieves a named argument of the current invocation
func (cs *CallbackSet) Arg(name string) (any, bool) {
	val, ok := cs.args[name]
	return val, ok
}

// Args returns a copy of the current invocation's argument fields.
// Asynchronous continuations must copy values out this way before yielding;
// the live fields are restored when the synchronous call frame unwinds.
func (cs *CallbackSet) Args() map[string]any {
	out := make(map[string]any, len(cs.args))
	for name, val := range cs.args {
		out[name] = val
	}
	return out
}

// Arg retrieves a typed argument of the current invocation
func Arg[T any](cs *CallbackSet, name string) (T, bool) {
	val, ok := cs.args[name]
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := val.(T)
	return typed, ok
}

// ArgOrDefault retrieves a typed argument or returns a default value
func ArgOrDefault[T any](cs *CallbackSet, name string, defaultVal T) T {
	if val, ok := Arg[T](cs, name); ok {
		return val
	}
	return defaultVal
}

type argMemo struct {
	name    string
	prior   any
	present bool
}

// stampArgs overwrites the argument fields named in paramNames with the
// current call's values, memoizing prior values for restoreArgs. Extra
// arguments beyond paramNames are ignored; missing arguments stamp nil.
func (cs *CallbackSet) stampArgs(paramNames []string, args []any) []argMemo {
	if len(paramNames) == 0 {
		return nil
	}

	if cs.args == nil {
		cs.args = make(map[string]any, len(paramNames))
	}

	memos := make([]argMemo, 0, len(paramNames))
	for i, name := range paramNames {
		prior, present := cs.args[name]
		memos = append(memos, argMemo{name: name, prior: prior, present: present})

		if i < len(args) {
			cs.args[name] = args[i]
		} else {
			cs.args[name] = nil
		}
	}
	return memos
}

// restoreArgs undoes stampArgs. Memos are applied in reverse order so a
// parameter name repeated in the list restores to its original value.
func (cs *CallbackSet) restoreArgs(memos []argMemo) {
	for i := len(memos) - 1; i >= 0; i-- {
		memo := memos[i]
		if memo.present {
			cs.args[memo.name] = memo.prior
		} else {
			delete(cs.args, memo.name)
		}
	}
}
