// Package tasks binds task names to the handlers the worker loop runs.
package tasks

import (
	"sync"

	"signet/internal/platform/kafka"
)

// Registry is a name → handler table satisfying kafka.Handlers. Registration
// happens during startup; lookups happen on the consumer goroutine.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]kafka.HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]kafka.HandlerFunc)}
}

// Register binds a handler to a task name, replacing any previous binding.
func (r *Registry) Register(name string, handler kafka.HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Handler looks up the handler for a task name.
func (r *Registry) Handler(name string) (kafka.HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}
