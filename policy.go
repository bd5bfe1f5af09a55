package weft

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy declares, per host method, the ordered parameter names and the
// hooks an installed callback map is expected to carry. Policies are loaded
// from YAML so the cross-cutting wiring of a program stays auditable in one
// document:
//
//	lazyPost: false
//	methods:
//	  select:
//	    params: [itemId]
//	    hooks:
//	      - name: validate
//	      - name: audit
//	        optional: true
//
// A Policy implements ParamNameResolver, so methods wrapped without
// declared parameter names can take them from the policy.
type Policy struct {
	LazyPost bool                    `yaml:"lazyPost"`
	Methods  map[string]MethodPolicy `yaml:"methods"`
}

// MethodPolicy describes one host method
type MethodPolicy struct {
	Params []string     `yaml:"params"`
	Hooks  []HookPolicy `yaml:"hooks"`
}

// HookPolicy describes one named hook of a method
type HookPolicy struct {
	Name     string `yaml:"name"`
	Optional bool   `yaml:"optional"`
}

// PolicyError reports a policy file that could not be read or parsed
type PolicyError struct {
	Path string
	Err  error
}

func (e *PolicyError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("hook policy %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("hook policy: %v", e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

// ParsePolicy parses a YAML policy document
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, &PolicyError{Err: err}
	}
	return &p, nil
}

// LoadPolicy reads and parses a YAML policy file
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PolicyError{Path: path, Err: err}
	}
	p, err := ParsePolicy(data)
	if err != nil {
		return nil, &PolicyError{Path: path, Err: err.(*PolicyError).Err}
	}
	return p, nil
}

// ParamNames implements ParamNameResolver
func (p *Policy) ParamNames(method string) []string {
	mp, ok := p.Methods[method]
	if !ok {
		return nil
	}
	return mp.Params
}

// Options returns the registry options a policy implies
func (p *Policy) Options() []RegistryOption {
	opts := []RegistryOption{WithParamResolver(p)}
	if p.LazyPost {
		opts = append(opts, WithLazyPost())
	}
	return opts
}

// Verify checks a callback map against the policy before first use: every
// non-optional hook of every declared method must have a handler in the
// map's set for that method. The first gap is reported as
// MissingCallbackError.
func (p *Policy) Verify(callbackMap map[string]*CallbackSet) error {
	for method, mp := range p.Methods {
		cs, ok := callbackMap[method]
		if !ok {
			if len(mp.Hooks) == 0 {
				continue
			}
			for _, hp := range mp.Hooks {
				if !hp.Optional {
					return &MissingCallbackError{Method: method}
				}
			}
			continue
		}

		for _, hp := range mp.Hooks {
			if hp.Optional {
				continue
			}
			if !cs.HasHook(hp.Name) {
				return &MissingCallbackError{Method: method, Hook: hp.Name}
			}
		}
	}
	return nil
}
