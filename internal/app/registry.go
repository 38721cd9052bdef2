package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"realtime-quiz-service/internal/domain"
)

// SessionRegistry tracks quiz sessions and their lifecycle. It is consulted
// as a guard before every scoring and broadcast operation.
type SessionRegistry struct {
	sessions SessionStore
	now      func() time.Time
}

func NewSessionRegistry(sessions SessionStore) *SessionRegistry {
	return &SessionRegistry{sessions: sessions, now: time.Now}
}

// Create registers a new quiz session in the active state. An empty quizID
// gets a generated identifier. Fails with ErrDuplicateSession if taken.
func (r *SessionRegistry) Create(ctx context.Context, quizID string, creatorID int64) (domain.QuizSession, error) {
	if quizID == "" {
		quizID = uuid.NewString()
	}
	session := domain.QuizSession{
		QuizID:    quizID,
		CreatorID: creatorID,
		Status:    domain.StatusActive,
		CreatedAt: r.now(),
	}
	if err := r.sessions.Create(ctx, session); err != nil {
		return domain.QuizSession{}, err
	}
	return session, nil
}

// Get fails with ErrSessionNotFound if the session does not exist.
func (r *SessionRegistry) Get(ctx context.Context, quizID string) (domain.QuizSession, error) {
	return r.sessions.Get(ctx, quizID)
}

func (r *SessionRegistry) Exists(ctx context.Context, quizID string) (bool, error) {
	_, err := r.sessions.Get(ctx, quizID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Start transitions active -> started. The store applies the transition as
// a compare-and-swap, so of two concurrent starts exactly one succeeds and
// the other fails with ErrQuizNotActive.
func (r *SessionRegistry) Start(ctx context.Context, quizID string) (domain.QuizSession, error) {
	if err := r.sessions.TransitionStatus(ctx, quizID, domain.StatusActive, domain.StatusStarted); err != nil {
		return domain.QuizSession{}, err
	}
	return r.sessions.Get(ctx, quizID)
}

// Complete transitions a started session to completed.
func (r *SessionRegistry) Complete(ctx context.Context, quizID string) error {
	if _, err := r.sessions.Get(ctx, quizID); err != nil {
		return err
	}
	return r.sessions.SetStatus(ctx, quizID, domain.StatusCompleted)
}
