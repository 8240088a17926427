package userland

import "sync"

// Registry maps program names to their bodies.
type Registry struct {
	mu sync.Mutex
	m  map[string]Program
}

// NewRegistry creates an empty program registry.
func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Program)}
}

// Register installs prog under name, replacing any previous registration.
func (r *Registry) Register(name string, prog Program) {
	r.mu.Lock()
	r.m[name] = prog
	r.mu.Unlock()
}

func (r *Registry) lookup(name string) Program {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.m[name]
}
