package weft

import (
	"fmt"
	"runtime/debug"
)

// MissingCallbackError is returned when a host method has no installed or
// default CallbackSet, or when a required named hook has no handlers.
type MissingCallbackError struct {
	Method   string
	Hook     string
	Instance any
}

func (e *MissingCallbackError) Error() string {
	if e.Hook != "" {
		if e.Method != "" {
			return fmt.Sprintf("no handler registered for hook %q in method %q", e.Hook, e.Method)
		}
		return fmt.Sprintf("no handler registered for hook %q", e.Hook)
	}
	return fmt.Sprintf("no callback set available for method %q on %T", e.Method, e.Instance)
}

// NoActiveContextError is returned when ambient lookup is used outside any
// in-progress host-method invocation.
type NoActiveContextError struct {
	Instance any
	Hook     string
}

func (e *NoActiveContextError) Error() string {
	if e.Hook != "" {
		return fmt.Sprintf("cannot trigger hook %q: no host method invocation is active", e.Hook)
	}
	if e.Instance != nil {
		return fmt.Sprintf("no active callback set for instance %T", e.Instance)
	}
	return "no host method invocation is active"
}

// InvocationError wraps a failure raised by the enter or exit hook of a
// host-method invocation. Errors returned by the method body itself
// propagate unchanged.
type InvocationError struct {
	Method     string
	Instance   any
	Cause      error
	Context    string
	StackTrace []byte
}

func (e *InvocationError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("invocation error in method %q during %s: %v", e.Method, e.Context, e.Cause)
	}
	return fmt.Sprintf("invocation error in method %q: %v", e.Method, e.Cause)
}

func (e *InvocationError) Unwrap() error {
	return e.Cause
}

func newInvocationError(method string, instance any, cause error, context string) *InvocationError {
	return &InvocationError{
		Method:     method,
		Instance:   instance,
		Cause:      cause,
		Context:    context,
		StackTrace: debug.Stack(),
	}
}

// SafeTypeAssertion performs safe type assertion with proper error
func SafeTypeAssertion[T any](value any) (T, error) {
	if value == nil {
		var zero T
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("type assertion error: expected %T, got %T (value: %v)", zero, value, value)
	}

	return typed, nil
}
