package weft

// Typed host wrappers. Each HostN preserves the method body's call
// signature exactly, delegating to the type-erased WrapAsHost engine and
// asserting the result back to R.

func Host0[S comparable, R any](
	body func(self S) Continuation,
	methodName string,
	defaultFactory Factory[S],
	opts ...HostOption,
) func(self S) (R, error) {
	m := WrapAsHost(func(self S, args []any) Continuation {
		return body(self)
	}, methodName, []string{}, defaultFactory, opts...)

	return func(self S) (R, error) {
		result, err := m(self)
		if err != nil {
			var zero R
			return zero, err
		}
		return SafeTypeAssertion[R](result)
	}
}

func Host1[S comparable, A1 any, R any](
	body func(self S, a1 A1) Continuation,
	methodName string,
	paramNames []string,
	defaultFactory Factory[S],
	opts ...HostOption,
) func(self S, a1 A1) (R, error) {
	m := WrapAsHost(func(self S, args []any) Continuation {
		a1, _ := args[0].(A1)
		return body(self, a1)
	}, methodName, paramNames, defaultFactory, opts...)

	return func(self S, a1 A1) (R, error) {
		result, err := m(self, a1)
		if err != nil {
			var zero R
			return zero, err
		}
		return SafeTypeAssertion[R](result)
	}
}

func Host2[S comparable, A1 any, A2 any, R any](
	body func(self S, a1 A1, a2 A2) Continuation,
	methodName string,
	paramNames []string,
	defaultFactory Factory[S],
	opts ...HostOption,
) func(self S, a1 A1, a2 A2) (R, error) {
	m := WrapAsHost(func(self S, args []any) Continuation {
		a1, _ := args[0].(A1)
		a2, _ := args[1].(A2)
		return body(self, a1, a2)
	}, methodName, paramNames, defaultFactory, opts...)

	return func(self S, a1 A1, a2 A2) (R, error) {
		result, err := m(self, a1, a2)
		if err != nil {
			var zero R
			return zero, err
		}
		return SafeTypeAssertion[R](result)
	}
}

func Host3[S comparable, A1 any, A2 any, A3 any, R any](
	body func(self S, a1 A1, a2 A2, a3 A3) Continuation,
	methodName string,
	paramNames []string,
	defaultFactory Factory[S],
	opts ...HostOption,
) func(self S, a1 A1, a2 A2, a3 A3) (R, error) {
	m := WrapAsHost(func(self S, args []any) Continuation {
		a1, _ := args[0].(A1)
		a2, _ := args[1].(A2)
		a3, _ := args[2].(A3)
		return body(self, a1, a2, a3)
	}, methodName, paramNames, defaultFactory, opts...)

	return func(self S, a1 A1, a2 A2, a3 A3) (R, error) {
		result, err := m(self, a1, a2, a3)
		if err != nil {
			var zero R
			return zero, err
		}
		return SafeTypeAssertion[R](result)
	}
}
