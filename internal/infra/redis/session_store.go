package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/domain"
)

// SessionStore decorates another app.SessionStore with Redis liveness
// markers so operators can see which sessions exist and where they are in
// their lifecycle. The inner store remains the source of truth; marker
// writes are best-effort.
type SessionStore struct {
	inner  app.SessionStore
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(inner app.SessionStore, client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{inner: inner, client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, session domain.QuizSession) error {
	if err := s.inner.Create(ctx, session); err != nil {
		return err
	}
	_ = s.client.Set(ctx, s.key(session.QuizID), string(session.Status), s.ttl).Err()
	return nil
}

func (s *SessionStore) Get(ctx context.Context, quizID string) (domain.QuizSession, error) {
	return s.inner.Get(ctx, quizID)
}

func (s *SessionStore) SetStatus(ctx context.Context, quizID string, status domain.SessionStatus) error {
	if err := s.inner.SetStatus(ctx, quizID, status); err != nil {
		return err
	}
	s.mark(ctx, quizID, status)
	return nil
}

func (s *SessionStore) TransitionStatus(ctx context.Context, quizID string, from, to domain.SessionStatus) error {
	if err := s.inner.TransitionStatus(ctx, quizID, from, to); err != nil {
		return err
	}
	s.mark(ctx, quizID, to)
	return nil
}

func (s *SessionStore) mark(ctx context.Context, quizID string, status domain.SessionStatus) {
	if status == domain.StatusCompleted {
		_ = s.client.Del(ctx, s.key(quizID)).Err()
	} else {
		_ = s.client.Set(ctx, s.key(quizID), string(status), s.ttl).Err()
	}
}

func (s *SessionStore) key(quizID string) string {
	return "quiz:session:" + quizID
}
