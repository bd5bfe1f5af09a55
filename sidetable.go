package weft

import (
	"context"
	"sort"
	"sync"
)

// sideTable holds the per-instance state the host wrapper needs: the
// installed callback map, the lazily materialized default map, the cached
// parameter names, and the stack of callback sets active on the instance.
type sideTable struct {
	mu         sync.Mutex
	explicit   map[string]*CallbackSet
	defaults   map[string]*CallbackSet
	paramNames map[string][]string
	active     []*CallbackSet
}

func newSideTable() *sideTable {
	return &sideTable{
		defaults:   make(map[string]*CallbackSet),
		paramNames: make(map[string][]string),
	}
}

// resolveSet picks the callback set for one invocation: the explicit map
// entry when installed, else the default map entry, else a set created by
// the factory and memoized into the default map. The two maps are never
// merged.
func (st *sideTable) resolveSet(method string, instance any, factory func() *CallbackSet) (*CallbackSet, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if cs, ok := st.explicit[method]; ok {
		return cs, nil
	}
	if cs, ok := st.defaults[method]; ok {
		return cs, nil
	}
	if factory != nil {
		cs := factory()
		if cs != nil {
			st.defaults[method] = cs
			return cs, nil
		}
	}
	return nil, &MissingCallbackError{Method: method, Instance: instance}
}

// paramNamesFor memoizes the ordered parameter names for a method. Declared
// names win; otherwise the resolver is consulted exactly once.
func (st *sideTable) paramNamesFor(method string, declared []string, resolver ParamNameResolver) []string {
	st.mu.Lock()
	defer st.mu.Unlock()

	if names, ok := st.paramNames[method]; ok {
		return names
	}

	names := declared
	if names == nil {
		names = resolver.ParamNames(method)
	}
	st.paramNames[method] = names
	return names
}

func (st *sideTable) pushActive(cs *CallbackSet) {
	st.mu.Lock()
	st.active = append(st.active, cs)
	st.mu.Unlock()
}

func (st *sideTable) popActive(cs *CallbackSet) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for i := len(st.active) - 1; i >= 0; i-- {
		if st.active[i] == cs {
			st.active = append(st.active[:i], st.active[i+1:]...)
			return
		}
	}
}

func (st *sideTable) activeSet() (*CallbackSet, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.active) == 0 {
		return nil, false
	}
	return st.active[len(st.active)-1], true
}

// Registry owns the side tables of all host instances wrapped against it,
// the extension chain, and the invocation tree. Most programs use
// DefaultRegistry; tests and embedded uses create their own.
type Registry struct {
	tables     typedCache[*sideTable]
	mu         sync.RWMutex
	extensions []Extension
	resolver   ParamNameResolver
	lazyPost   bool
	tree       *InvocationTree

	frameMu sync.Mutex
	frames  []*Invocation
}

// RegistryOption is a modifier for registries
type RegistryOption func(*Registry)

// WithExtension returns an option that registers an extension to a registry
func WithExtension(ext Extension) RegistryOption {
	return func(r *Registry) {
		if err := r.UseExtension(ext); err != nil {
			panic(err)
		}
	}
}

// WithParamResolver sets the resolver consulted for methods wrapped without
// declared parameter names
func WithParamResolver(resolver ParamNameResolver) RegistryOption {
	return func(r *Registry) {
		r.resolver = resolver
	}
}

// WithLazyPost defers phased post-hooks: "<hook>_post" fires right before
// the next triggered hook, or at exit when nothing triggers after it. The
// default is immediate firing.
func WithLazyPost() RegistryOption {
	return func(r *Registry) {
		r.lazyPost = true
	}
}

// WithTreeLimit bounds the number of retained invocation nodes
func WithTreeLimit(limit int) RegistryOption {
	return func(r *Registry) {
		r.tree = newInvocationTree(limit)
	}
}

// NewRegistry creates a new registry with optional configuration
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		extensions: []Extension{},
		resolver:   noopResolver{},
		tree:       newInvocationTree(1000),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// DefaultRegistry backs the package-level Install, Trigger, and ActiveSet
// functions and is the registry hosts bind to unless WithRegistry is given.
var DefaultRegistry = NewRegistry()

func (r *Registry) tableFor(instance any) *sideTable {
	if st, ok := r.tables.Load(instance); ok {
		return st
	}
	st, _ := r.tables.LoadOrStore(instance, newSideTable())
	return st
}

// Install sets the explicit callback map for an instance, wholesale. It
// does not touch the default map and never merges with a previous explicit
// map. Calls made after installation use the new map; in-flight calls are
// unaffected.
func (r *Registry) Install(instance any, callbackMap map[string]*CallbackSet) error {
	op := &Operation{
		Kind:     OpInstall,
		Instance: instance,
		Registry: r,
	}

	next := func() (any, error) {
		st := r.tableFor(instance)
		st.mu.Lock()
		st.explicit = callbackMap
		st.mu.Unlock()
		return nil, nil
	}

	_, err := r.applyExtensions(next, op)
	return err
}

// Install sets the explicit callback map for an instance on DefaultRegistry
func Install(instance any, callbackMap map[string]*CallbackSet) error {
	return DefaultRegistry.Install(instance, callbackMap)
}

// ActiveSet returns the callback set bound to the instance's innermost
// in-progress host-method invocation. Method bodies written in the ambient
// style use this instead of receiving the set as a parameter.
func (r *Registry) ActiveSet(instance any) (*CallbackSet, error) {
	st, ok := r.tables.Load(instance)
	if !ok {
		return nil, &NoActiveContextError{Instance: instance}
	}
	cs, ok := st.activeSet()
	if !ok {
		return nil, &NoActiveContextError{Instance: instance}
	}
	return cs, nil
}

// ActiveSet returns the instance's active callback set on DefaultRegistry
func ActiveSet(instance any) (*CallbackSet, error) {
	return DefaultRegistry.ActiveSet(instance)
}

// UseExtension registers an extension to the registry
func (r *Registry) UseExtension(ext Extension) error {
	r.mu.Lock()
	r.extensions = append(r.extensions, ext)
	sort.SliceStable(r.extensions, func(i, j int) bool {
		return r.extensions[i].Order() < r.extensions[j].Order()
	})
	r.mu.Unlock()

	return ext.Init(r)
}

func (r *Registry) snapshotExtensions() []Extension {
	r.mu.RLock()
	exts := make([]Extension, len(r.extensions))
	copy(exts, r.extensions)
	r.mu.RUnlock()
	return exts
}

// applyExtensions chains the extension middleware around an operation,
// last registered wrapping first
func (r *Registry) applyExtensions(next func() (any, error), op *Operation) (any, error) {
	exts := r.snapshotExtensions()

	for i := len(exts) - 1; i >= 0; i-- {
		ext := exts[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(context.Background(), currentNext, op)
		}
	}

	result, err := next()
	if err != nil {
		for _, ext := range exts {
			ext.OnError(err, op, r)
		}
	}
	return result, err
}

// Tree returns the invocation tree for querying
func (r *Registry) Tree() *InvocationTree {
	return r.tree
}

// Dispose disposes all registered extensions
func (r *Registry) Dispose() error {
	exts := r.snapshotExtensions()
	for _, ext := range exts {
		if err := ext.Dispose(r); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) pushFrame(inv *Invocation) {
	r.frameMu.Lock()
	r.frames = append(r.frames, inv)
	r.frameMu.Unlock()
}

// popFrame removes the frame by identity rather than popping the top, so
// instances confined to distinct goroutines each unwind their own frames
// correctly even when pushes interleave.
func (r *Registry) popFrame(inv *Invocation) {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	for i := len(r.frames) - 1; i >= 0; i-- {
		if r.frames[i] == inv {
			r.frames = append(r.frames[:i], r.frames[i+1:]...)
			return
		}
	}
}

func (r *Registry) currentFrame() *Invocation {
	r.frameMu.Lock()
	defer r.frameMu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}
