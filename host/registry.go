package host

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound is returned by a Resolver for a name with no callable.
var ErrNotFound = errors.New("host: callable not found")

// Callable is a host function invocable from engine code.
type Callable func(args []Value) (Value, error)

// Resolver maps callable names to live callables.
type Resolver interface {
	Resolve(name string) (Callable, error)
}

// Registry is a concurrency-safe Resolver. Definitions may change at any
// time; the bridge resolves by name on every call, so a redefinition is
// visible to the very next invocation from engine code.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Callable
}

// Default is the process-wide registry used when no resolver is given.
var Default = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Callable)}
}

// Define binds name to fn, replacing any previous definition.
func (r *Registry) Define(name string, fn Callable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// DefineFunc adapts an ordinary Go function with Wrap and binds it.
func (r *Registry) DefineFunc(name string, fn any) error {
	c, err := Wrap(fn)
	if err != nil {
		return fmt.Errorf("defining %q: %w", name, err)
	}
	r.Define(name, c)
	return nil
}

// Undefine removes name. It reports whether name was defined.
func (r *Registry) Undefine(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.funcs[name]
	delete(r.funcs, name)
	return ok
}

// Resolve implements Resolver.
func (r *Registry) Resolve(name string) (Callable, error) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	if !ok || fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return fn, nil
}

// Names lists the defined names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
