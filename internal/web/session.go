package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/Veraticus/foodsales/internal/filter"
	"github.com/google/uuid"
)

const sessionCookie = "foodsales_session"

type sessionEntry struct {
	session  *filter.Session
	lastSeen time.Time
	mu       sync.Mutex
}

// SessionStore keeps one filter session per browser. Sessions never share
// state; each is locked while a request uses it.
type SessionStore struct {
	now      func() time.Time
	initial  func() *filter.Session
	sessions map[string]*sessionEntry
	ttl      time.Duration
	mu       sync.Mutex
}

// NewSessionStore creates a store whose new sessions come from initial.
// Sessions idle for longer than ttl are dropped by Prune.
func NewSessionStore(initial func() *filter.Session, ttl time.Duration) *SessionStore {
	return &SessionStore{
		initial:  initial,
		sessions: make(map[string]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// With runs fn with the caller's session, creating one and setting its
// cookie when the request carries none or an unknown id.
func (s *SessionStore) With(w http.ResponseWriter, r *http.Request, fn func(*filter.Session)) {
	entry := s.lookup(w, r)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(entry.session)
}

func (s *SessionStore) lookup(w http.ResponseWriter, r *http.Request) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if entry, ok := s.sessions[c.Value]; ok {
			entry.lastSeen = s.now()
			return entry
		}
	}

	id := uuid.NewString()
	entry := &sessionEntry{session: s.initial(), lastSeen: s.now()}
	s.sessions[id] = entry

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return entry
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops sessions idle for longer than the store's ttl and returns how
// many were removed.
func (s *SessionStore) Prune() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
