// Package tools holds the tool registry, the keyword selector, and the
// web-facing tool implementations.
package tools

import (
	"sort"
	"sync"

	"github.com/rahul/agentctl/internal/task"
)

// Registry manages the set of available tools.
type Registry struct {
	mu    sync.Mutex
	tools map[string]task.Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]task.Tool{}}
}

// Register adds or replaces a tool definition.
func (r *Registry) Register(t task.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
}

// Remove deletes a tool by name. Removing an unknown name is a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (task.Tool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns tools sorted by name, optionally filtered by category.
func (r *Registry) List(category task.Category) []task.Tool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []task.Tool
	for _, t := range r.tools {
		if category == "" || t.Category == category {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Alternatives returns other tools in the same category.
func (r *Registry) Alternatives(t task.Tool) []task.Tool {
	var out []task.Tool
	for _, cand := range r.List(t.Category) {
		if cand.Name != t.Name {
			out = append(out, cand)
		}
	}
	return out
}

// Len reports how many tools are registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tools)
}
