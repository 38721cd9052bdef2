package memory

import (
	"context"
	"sync"

	"realtime-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.QuizSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.QuizSession)}
}

func (s *SessionStore) Create(_ context.Context, session domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.QuizID]; ok {
		return domain.ErrDuplicateSession
	}
	s.sessions[session.QuizID] = session
	return nil
}

func (s *SessionStore) Get(_ context.Context, quizID string) (domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[quizID]
	if !ok {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) SetStatus(_ context.Context, quizID string, status domain.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[quizID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Status = status
	s.sessions[quizID] = session
	return nil
}

// TransitionStatus checks and swaps the status under one mutex hold.
func (s *SessionStore) TransitionStatus(_ context.Context, quizID string, from, to domain.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[quizID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if session.Status != from {
		return domain.ErrQuizNotActive
	}
	session.Status = to
	s.sessions[quizID] = session
	return nil
}
