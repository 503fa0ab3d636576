package backend

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps backend names to implementations
type Registry struct {
	backends sync.Map
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds or replaces a backend under its name
func (r *Registry) Register(b Backend) error {
	if b == nil {
		return fmt.Errorf("backend: cannot register nil backend")
	}
	if b.Name() == "" {
		return fmt.Errorf("backend: name cannot be empty")
	}

	r.backends.Store(b.Name(), b)
	return nil
}

// Unregister removes a backend
func (r *Registry) Unregister(name string) {
	r.backends.Delete(name)
}

// Get retrieves a backend by name
func (r *Registry) Get(name string) (Backend, error) {
	val, ok := r.backends.Load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotFound, name)
	}
	return val.(Backend), nil
}

// List returns the registered names in sorted order
func (r *Registry) List() []string {
	var names []string
	r.backends.Range(func(key, _ any) bool {
		names = append(names, key.(string))
		return true
	})
	slices.Sort(names)
	return names
}

var global = NewRegistry()

func init() {
	for _, b := range []Backend{Sequential{}, Gonum{}, NewParallel(0, 0)} {
		if err := global.Register(b); err != nil {
			panic(err)
		}
	}
}

// Register adds a backend to the process-wide registry
func Register(b Backend) error {
	return global.Register(b)
}

// Unregister removes a backend from the process-wide registry
func Unregister(name string) {
	global.Unregister(name)
}

// Get looks a backend up in the process-wide registry
func Get(name string) (Backend, error) {
	return global.Get(name)
}

// List returns the names in the process-wide registry
func List() []string {
	return global.List()
}
