package weft

import "context"

// Extension provides hooks into the host-invocation lifecycle
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = earlier)
	Order() int

	// Init is called when the extension is registered to a registry
	Init(r *Registry) error

	// Wrap intercepts operations (invoke, install)
	Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error)

	// OnError handles errors surfaced by invocations and triggers
	OnError(err error, op *Operation, r *Registry)

	// OnPanic observes a panic unwinding out of a method body. The panic is
	// re-raised after restore, so this is a notification, not a handler.
	OnPanic(inv *Invocation, recovered any, stack []byte)

	// Dispose is called when the registry is disposed
	Dispose(r *Registry) error
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(r *Registry) error {
	return nil
}

func (e *BaseExtension) Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnError(err error, op *Operation, r *Registry) {
}

func (e *BaseExtension) OnPanic(inv *Invocation, recovered any, stack []byte) {
}

func (e *BaseExtension) Dispose(r *Registry) error {
	return nil
}

// Operation describes what operation is happening
type Operation struct {
	Kind     OperationKind
	Method   string
	Hook     string
	Instance any
	Registry *Registry
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpInvoke indicates a wrapped host-method call
	OpInvoke OperationKind = "invoke"
	// OpTrigger indicates a named-hook dispatch
	OpTrigger OperationKind = "trigger"
	// OpInstall indicates installation of an explicit callback map
	OpInstall OperationKind = "install"
)
