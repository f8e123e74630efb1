package engine

import (
	"strings"
	"sync"
)

// DefaultSessionID is used when a caller does not identify its session.
const DefaultSessionID = "default"

// Registry hands out one Session per session id, creating it on first use.
type Registry struct {
	opts Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id.
func (r *Registry) Get(id string) *Session {
	id = strings.TrimSpace(id)
	if id == "" {
		id = DefaultSessionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return s
	}
	s := NewSession(id, r.opts)
	r.sessions[id] = s
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
