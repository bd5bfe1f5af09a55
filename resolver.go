package weft

// ParamNameResolver supplies the ordered parameter names of a host method
// when they are not declared at wrap time. The registry consults a resolver
// at most once per method per instance and caches the result in the side
// table, so resolvers must be idempotent. A resolver that knows nothing
// about a method returns an empty list; resolvers never fail.
//
// Policy values loaded from configuration implement this interface, letting
// parameter names live next to the hook requirements they belong to.
type ParamNameResolver interface {
	ParamNames(method string) []string
}

// ParamNameResolverFunc is a function adapter for ParamNameResolver
type ParamNameResolverFunc func(method string) []string

// ParamNames implements ParamNameResolver
func (f ParamNameResolverFunc) ParamNames(method string) []string {
	return f(method)
}

// StaticParamNames returns a resolver that answers with the same names for
// every method it is asked about
func StaticParamNames(names ...string) ParamNameResolver {
	return ParamNameResolverFunc(func(string) []string {
		return names
	})
}

type noopResolver struct{}

func (noopResolver) ParamNames(string) []string { return nil }
