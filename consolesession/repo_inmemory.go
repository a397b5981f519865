package consolesession

import (
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

var (
	ErrSessionNotFound = apperrors.ErrSessionNotFound
	ErrSessionExpired  = apperrors.ErrSessionExpired
)

// InMemoryRepo keeps console sessions in process memory.
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		sessions: make(map[string]*Session),
	}
}

func (r *InMemoryRepo) Upsert(session *Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("[InMemoryRepo Upsert] session ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

// Get returns the session, dropping it if it has expired.
func (r *InMemoryRepo) Get(sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	if session.Expired() {
		_ = r.Delete(sessionID)
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (r *InMemoryRepo) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// PurgeExpired drops every expired session and returns how many went.
func (r *InMemoryRepo) PurgeExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sessions {
		if s.Expired() {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
