// Package session defines the external session-store collaborator API
// plus a reference in-memory implementation for tests and
// examples.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is an opaque per-client store. The core never inspects its
// contents; handlers do.
type Session interface {
	ID() string
	Get(key string) (any, bool)
	Set(key string, value any)
	Touch()
}

// Manager finds or creates a Session given the candidate session-ID cookie
// values present on a request.
type Manager interface {
	FindOrCreate(candidateIDs []string) Session
}

// memSession is the reference Session implementation.
type memSession struct {
	mu       sync.Mutex
	id       string
	values   map[string]any
	lastUsed time.Time
}

func (s *memSession) ID() string { return s.id }

func (s *memSession) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *memSession) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *memSession) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
}

// InMemoryManager is a reference Manager backed by a map, with TTL
// eviction. It exists for tests and examples; production hosts are
// expected to supply their own.
type InMemoryManager struct {
	mu       sync.Mutex
	sessions map[string]*memSession
	ttl      time.Duration
}

// NewInMemoryManager returns a Manager that evicts sessions idle longer
// than ttl. A ttl of 0 disables eviction.
func NewInMemoryManager(ttl time.Duration) *InMemoryManager {
	return &InMemoryManager{sessions: make(map[string]*memSession), ttl: ttl}
}

// FindOrCreate returns the first session matching candidateIDs, or creates
// a fresh one with a new uuid if none match.
func (m *InMemoryManager) FindOrCreate(candidateIDs []string) Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictLocked()

	for _, id := range candidateIDs {
		if s, ok := m.sessions[id]; ok {
			s.Touch()
			return s
		}
	}

	s := &memSession{id: uuid.NewString(), values: make(map[string]any), lastUsed: time.Now()}
	m.sessions[s.id] = s
	return s
}

func (m *InMemoryManager) evictLocked() {
	if m.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.ttl)
	for id, s := range m.sessions {
		s.mu.Lock()
		expired := s.lastUsed.Before(cutoff)
		s.mu.Unlock()
		if expired {
			delete(m.sessions, id)
		}
	}
}
