package space

import (
	"fmt"
	"sort"
	"sync"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
)

// Factory builds a Space instance from a parameter set. Concrete spaces
// register a Factory under their name so callers never need to import
// the builtin package directly (the factory/param-manager wiring lives
// in pkg/factory; Registry here is the name -> constructor map it uses).
type Factory func(params map[string]string) (Space, error)

// Registry is a plain, explicitly-constructed name -> Factory map. The
// source used a process-wide global registry keyed by name + distance
// type (§9 "Global state"); here that's replaced by a struct a caller
// constructs and passes around (or keeps behind one package-level
// DefaultRegistry for convenience registration from builtin spaces'
// init()).
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Factory)}
}

// Register adds (or replaces) the Factory for name.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[name] = f
}

// Build constructs the named space with the given parameters.
func (r *Registry) Build(name string, params map[string]string) (Space, error) {
	r.mu.RLock()
	f, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &simerrors.ConfigError{Key: "space", Reason: fmt.Sprintf("unknown space %q", name)}
	}
	return f(params)
}

// Names returns the sorted list of registered space names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for n := range r.builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the package-level registry builtin spaces register
// themselves into from their init() functions.
var DefaultRegistry = NewRegistry()
