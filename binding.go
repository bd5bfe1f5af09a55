package weft

// Binding provides lifecycle control over one instance's callback state
type Binding struct {
	registry *Registry
	instance any
}

// Bind creates a binding for an instance against a registry
func Bind(r *Registry, instance any) *Binding {
	return &Binding{
		registry: r,
		instance: instance,
	}
}

// Install sets the instance's explicit callback map, wholesale
func (b *Binding) Install(callbackMap map[string]*CallbackSet) error {
	return b.registry.Install(b.instance, callbackMap)
}

// Installed returns the explicit callback set for a method, if one is
// installed
func (b *Binding) Installed(method string) (*CallbackSet, bool) {
	st, ok := b.registry.tables.Load(b.instance)
	if !ok {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	cs, ok := st.explicit[method]
	return cs, ok
}

// Default returns the memoized default callback set for a method without
// materializing one
func (b *Binding) Default(method string) (*CallbackSet, bool) {
	st, ok := b.registry.tables.Load(b.instance)
	if !ok {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	cs, ok := st.defaults[method]
	return cs, ok
}

// ClearDefault drops the memoized default set for a method, so the default
// factory runs again on the next uninstalled call
func (b *Binding) ClearDefault(method string) {
	st, ok := b.registry.tables.Load(b.instance)
	if !ok {
		return
	}
	st.mu.Lock()
	delete(st.defaults, method)
	st.mu.Unlock()
}

// Active returns the callback set of the instance's innermost in-progress
// invocation
func (b *Binding) Active() (*CallbackSet, error) {
	return b.registry.ActiveSet(b.instance)
}
