package http

import (
	"sync"

	"github.com/google/uuid"
	"github.com/robertarktes/sponsored-events/internal/engine"
)

// Sessions maps bearer tokens to engine sessions.
type Sessions struct {
	mu      sync.Mutex
	byToken map[string]*engine.Session
}

func NewSessions() *Sessions {
	return &Sessions{byToken: make(map[string]*engine.Session)}
}

func (s *Sessions) Issue(sess *engine.Session) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.byToken[token] = sess
	s.mu.Unlock()
	return token
}

func (s *Sessions) Lookup(token string) (*engine.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byToken[token]
	return sess, ok
}

func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	delete(s.byToken, token)
	s.mu.Unlock()
}
