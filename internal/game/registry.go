package game

import (
	"fmt"
	"sync"
)

// Registry holds all registered game types, keyed by header name.
type Registry struct {
	mu    sync.RWMutex
	games map[string]Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Type)}
}

// Register adds a game type. Panics on duplicate names.
func (r *Registry) Register(t Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Info().Name
	if _, exists := r.games[name]; exists {
		panic(fmt.Sprintf("game %q already registered", name))
	}
	r.games[name] = t
}

// Get returns a game type by its header name.
func (r *Registry) Get(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.games[name]
	return t, ok
}

// ByCommand returns a game type by its command name.
func (r *Registry) ByCommand(command string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.games {
		if t.Info().Command == command {
			return t, true
		}
	}
	return nil, false
}

// List returns info for all registered games.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.games))
	for _, t := range r.games {
		infos = append(infos, t.Info())
	}
	return infos
}
