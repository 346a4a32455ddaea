package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const maxIDAttempts = 16

// Registry maps session ids to live sessions. Its lock only guards the map;
// session state is serialized by each session on its own.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	newID      func() (string, error)
	dispatcher Dispatcher
}

type Option func(*Registry)

// WithDispatcher sets where every session sends its events.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(r *Registry) {
		r.dispatcher = dispatcher
	}
}

// WithIDGenerator replaces the invite code generator.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(r *Registry) {
		r.newID = fn
	}
}

func NewRegistry(opts ...Option) *Registry {
	registry := &Registry{
		sessions: make(map[string]*Session),
		newID:    GenerateSessionID,
	}

	for _, opt := range opts {
		opt(registry)
	}

	return registry
}

// Create - stores a new empty session under a fresh id.
func (that *Registry) Create() (*Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := that.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session id: %w", err)
		}

		if _, exists := that.sessions[id]; exists {
			continue
		}

		created := newSession(id, that.dispatcher)
		that.sessions[id] = created

		return created, nil
	}

	return nil, apperror.ErrIDSpaceExhausted
}

func (that *Registry) Get(id string) (*Session, error) {
	that.mu.RLock()
	found, ok := that.sessions[id]
	that.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return found, nil
}

// Remove - drops the session and stops it. Removing an unknown id is a no-op.
func (that *Registry) Remove(id string) {
	that.mu.Lock()
	found, ok := that.sessions[id]
	delete(that.sessions, id)
	that.mu.Unlock()

	if ok {
		found.Close()
	}
}

// Reap - removes the sessions that no connection attached to since cutoff
// and returns their ids.
func (that *Registry) Reap(cutoff time.Time) []string {
	that.mu.RLock()
	sessions := make([]*Session, 0, len(that.sessions))
	for _, s := range that.sessions {
		sessions = append(sessions, s)
	}
	that.mu.RUnlock()

	var reaped []string
	for _, s := range sessions {
		expired, err := s.Expire(cutoff)
		if err != nil || !expired {
			continue
		}

		that.mu.Lock()
		if that.sessions[s.id] == s {
			delete(that.sessions, s.id)
		}
		that.mu.Unlock()

		reaped = append(reaped, s.id)
	}

	return reaped
}

func (that *Registry) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.sessions)
}

// List - summarizes every live session, ordered by id.
func (that *Registry) List() []entity.SessionSummary {
	that.mu.RLock()
	sessions := make([]*Session, 0, len(that.sessions))
	for _, s := range that.sessions {
		sessions = append(sessions, s)
	}
	that.mu.RUnlock()

	summaries := make([]entity.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		// a session retired between the copy and now is skipped
		summary, err := s.Summary()
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID < summaries[j].ID
	})

	return summaries
}

// Close - stops every session and empties the registry.
func (that *Registry) Close() {
	that.mu.Lock()
	sessions := that.sessions
	that.sessions = make(map[string]*Session)
	that.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
