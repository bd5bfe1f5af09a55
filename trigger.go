package weft

import "errors"

type triggerConfig struct {
	optional bool
}

// TriggerOption is a modifier for hook triggering
type TriggerOption func(*triggerConfig)

// Optional makes a trigger on an unregistered hook yield (nil, nil) instead
// of MissingCallbackError
func Optional() TriggerOption {
	return func(cfg *triggerConfig) {
		cfg.optional = true
	}
}

func newTriggerConfig(opts []TriggerOption) *triggerConfig {
	cfg := &triggerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Trigger dispatches the named hook on this callback set directly, outside
// any invocation frame. Handlers run in registration order; the result of
// the last LabelRet-labelled handler wins, else the last unlabelled one.
func (cs *CallbackSet) Trigger(name string, opts ...TriggerOption) (any, error) {
	cfg := newTriggerConfig(opts)
	return cs.dispatch(name, cfg.optional)
}

func (cs *CallbackSet) dispatch(name string, optional bool) (any, error) {
	entries := cs.hooks[name]
	if len(entries) == 0 {
		if optional {
			return nil, nil
		}
		return nil, &MissingCallbackError{Hook: name}
	}

	var labelled any
	haveLabelled := false
	var plain any

	for _, entry := range entries {
		val, err := entry.fn(cs)
		if err != nil {
			return nil, err
		}
		switch entry.label {
		case LabelRet:
			labelled = val
			haveLabelled = true
		case "":
			plain = val
		}
	}

	if haveLabelled {
		return labelled, nil
	}
	return plain, nil
}

// Trigger dispatches the named hook on the callback set of the registry's
// innermost in-progress invocation. Method bodies call this (or the
// package-level Trigger) for ad hoc trigger points without threading the
// set through their own signatures.
func (r *Registry) Trigger(name string, opts ...TriggerOption) (any, error) {
	cfg := newTriggerConfig(opts)

	inv := r.currentFrame()
	if inv == nil {
		return nil, &NoActiveContextError{Hook: name}
	}
	return r.dispatchOn(inv, name, cfg.optional)
}

// Trigger dispatches the named hook on DefaultRegistry's innermost
// in-progress invocation
func Trigger(name string, opts ...TriggerOption) (any, error) {
	return DefaultRegistry.Trigger(name, opts...)
}

// TriggerPhased fires "<name>_pre", then "<name>", then "<name>_post". The
// pre and post hooks are optional; the main hook honors the given options.
// Under WithLazyPost the post hook is not fired immediately: it is held in
// the invocation frame and flushed right before the next triggered hook, or
// at exit when nothing triggers after it.
func (r *Registry) TriggerPhased(name string, opts ...TriggerOption) (any, error) {
	cfg := newTriggerConfig(opts)

	inv := r.currentFrame()
	if inv == nil {
		return nil, &NoActiveContextError{Hook: name}
	}

	if _, err := r.dispatchOn(inv, name+"_pre", true); err != nil {
		return nil, err
	}

	result, err := r.dispatchOn(inv, name, cfg.optional)
	if err != nil {
		return nil, err
	}

	if r.lazyPost {
		inv.pendingPost = name + "_post"
		return result, nil
	}

	if _, err := r.dispatchOn(inv, name+"_post", true); err != nil {
		return nil, err
	}
	return result, nil
}

// TriggerPhased fires the phased hook sequence on DefaultRegistry's
// innermost in-progress invocation
func TriggerPhased(name string, opts ...TriggerOption) (any, error) {
	return DefaultRegistry.TriggerPhased(name, opts...)
}

// dispatchOn flushes a held lazy post-hook, then dispatches the named hook
// on the frame's callback set, notifying extensions on failure
func (r *Registry) dispatchOn(inv *Invocation, name string, optional bool) (any, error) {
	if inv.pendingPost != "" {
		pending := inv.pendingPost
		inv.pendingPost = ""
		if pending != name {
			if _, err := inv.set.dispatch(pending, true); err != nil {
				return nil, r.notifyTriggerError(inv, pending, err)
			}
		}
	}

	result, err := inv.set.dispatch(name, optional)
	if err != nil {
		return nil, r.notifyTriggerError(inv, name, err)
	}
	return result, nil
}

func (r *Registry) notifyTriggerError(inv *Invocation, name string, err error) error {
	var missing *MissingCallbackError
	if errors.As(err, &missing) && missing.Method == "" {
		missing.Method = inv.method
		missing.Instance = inv.instance
	}

	op := &Operation{
		Kind:     OpTrigger,
		Method:   inv.method,
		Hook:     name,
		Instance: inv.instance,
		Registry: r,
	}
	for _, ext := range r.snapshotExtensions() {
		ext.OnError(err, op, r)
	}
	return err
}

// flushPendingPost fires a held lazy post-hook at invocation exit
func (r *Registry) flushPendingPost(inv *Invocation) error {
	if inv.pendingPost == "" {
		return nil
	}
	pending := inv.pendingPost
	inv.pendingPost = ""
	if _, err := inv.set.dispatch(pending, true); err != nil {
		return r.notifyTriggerError(inv, pending, err)
	}
	return nil
}
