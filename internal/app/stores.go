package app

import (
	"context"

	"realtime-quiz-service/internal/domain"
)

// SessionStore persists quiz sessions (in-memory, Postgres).
type SessionStore interface {
	Create(ctx context.Context, session domain.QuizSession) error
	Get(ctx context.Context, quizID string) (domain.QuizSession, error)
	SetStatus(ctx context.Context, quizID string, status domain.SessionStatus) error
	// TransitionStatus sets the status to "to" only if it currently equals
	// "from", as one atomic compare-and-swap. Fails with ErrQuizNotActive
	// when the session is in any other state and ErrSessionNotFound when it
	// does not exist.
	TransitionStatus(ctx context.Context, quizID string, from, to domain.SessionStatus) error
}

// ParticipantStore persists per-(quiz, user) score rows. Increment must be
// an atomic read-modify-write: concurrent increments to the same
// participant are all reflected in the final score.
type ParticipantStore interface {
	Get(ctx context.Context, quizID string, userID int64) (domain.Participant, error)
	Create(ctx context.Context, participant domain.Participant) error
	Increment(ctx context.Context, quizID string, userID int64, delta int) (int, error)
	// ListByQuiz returns all participants in join order.
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Participant, error)
}

// QuestionStore persists quiz questions.
type QuestionStore interface {
	Add(ctx context.Context, question domain.Question) (domain.Question, error)
	Get(ctx context.Context, quizID string, questionID int64) (domain.Question, error)
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// UserStore persists registered users.
type UserStore interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

// AnswerKey is the minimal data needed to grade one submission. Caches can
// hold just this instead of full question content.
type AnswerKey struct {
	CorrectOption int `json:"c"`
	Points        int `json:"p"`
	OptionCount   int `json:"n"`
}

// AnswerSource resolves answer keys for grading. Implemented directly by
// question stores and by the Redis cache layered over them.
type AnswerSource interface {
	AnswerKey(ctx context.Context, quizID string, questionID int64) (AnswerKey, error)
}
