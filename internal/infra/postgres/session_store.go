package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realtime-quiz-service/internal/domain"
)

const uniqueViolation = "23505"

// SessionStore is a Postgres implementation of app.SessionStore.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) Create(ctx context.Context, session domain.QuizSession) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO quiz_sessions (quiz_id, creator_user_id, status, created_at) VALUES ($1, $2, $3, $4)`,
		session.QuizID, session.CreatorID, string(session.Status), session.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateSession
	}
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, quizID string) (domain.QuizSession, error) {
	var session domain.QuizSession
	var status string
	err := s.pool.QueryRow(ctx,
		`SELECT quiz_id, creator_user_id, status, created_at FROM quiz_sessions WHERE quiz_id=$1`,
		quizID).Scan(&session.QuizID, &session.CreatorID, &status, &session.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.QuizSession{}, fmt.Errorf("get session: %w", err)
	}
	session.Status = domain.SessionStatus(status)
	return session, nil
}

func (s *SessionStore) SetStatus(ctx context.Context, quizID string, status domain.SessionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE quiz_sessions SET status=$2 WHERE quiz_id=$1`, quizID, string(status))
	if err != nil {
		return fmt.Errorf("set session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// TransitionStatus compare-and-swaps the status in a single UPDATE so
// concurrent callers serialize on the row.
func (s *SessionStore) TransitionStatus(ctx context.Context, quizID string, from, to domain.SessionStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE quiz_sessions SET status=$3 WHERE quiz_id=$1 AND status=$2`,
		quizID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("transition session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.Get(ctx, quizID); err != nil {
			return err
		}
		return domain.ErrQuizNotActive
	}
	return nil
}
