package storage

import (
	"context"
	"sync"
	"time"

	"github.com/aliskhannn/nihonngo-exam/internal/exam"
)

// Session is a running exam controller bound to a chat.
type Session struct {
	Controller *exam.Controller
	Cancel     context.CancelFunc
	StartedAt  time.Time
}

// SessionStorage provides in-memory storage for running sessions by chat ID.
type SessionStorage struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewSessionStorage creates a new SessionStorage.
func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions: make(map[int64]*Session),
	}
}

// StoreIfAbsent saves s for chatID unless a session is already running there.
// It reports whether s was stored.
func (s *SessionStorage) StoreIfAbsent(chatID int64, sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.sessions[chatID]; ok && !finished(prev) {
		return false
	}
	s.sessions[chatID] = sess
	return true
}

// Get retrieves the running session for chatID.
func (s *SessionStorage) Get(chatID int64) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[chatID]
	if !ok || finished(sess) {
		return nil, false
	}
	return sess, true
}

// Delete removes the session for chatID if it is still sess.
func (s *SessionStorage) Delete(chatID int64, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessions[chatID] == sess {
		delete(s.sessions, chatID)
	}
}

// Stop cancels and removes the session for chatID.
func (s *SessionStorage) Stop(chatID int64) bool {
	s.mu.Lock()
	sess, ok := s.sessions[chatID]
	delete(s.sessions, chatID)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.Cancel()
	return true
}

// StopAll cancels every session.
func (s *SessionStorage) StopAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[int64]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Cancel()
	}
}

func finished(sess *Session) bool {
	select {
	case <-sess.Controller.Done():
		return true
	default:
		return false
	}
}
