package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realtime-quiz-service/internal/domain"
)

// ParticipantStore is a Postgres implementation of app.ParticipantStore.
// Increments run as a single UPDATE so concurrent submissions for the same
// participant serialize on the row without lost updates.
type ParticipantStore struct {
	pool *pgxpool.Pool
}

func NewParticipantStore(pool *pgxpool.Pool) *ParticipantStore {
	return &ParticipantStore{pool: pool}
}

func (s *ParticipantStore) Get(ctx context.Context, quizID string, userID int64) (domain.Participant, error) {
	var p domain.Participant
	err := s.pool.QueryRow(ctx,
		`SELECT quiz_id, user_id, score, joined_at FROM participants WHERE quiz_id=$1 AND user_id=$2`,
		quizID, userID).Scan(&p.QuizID, &p.UserID, &p.Score, &p.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (s *ParticipantStore) Create(ctx context.Context, participant domain.Participant) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO participants (quiz_id, user_id, score, joined_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (quiz_id, user_id) DO NOTHING`,
		participant.QuizID, participant.UserID, participant.Score, participant.JoinedAt)
	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (s *ParticipantStore) Increment(ctx context.Context, quizID string, userID int64, delta int) (int, error) {
	var score int
	err := s.pool.QueryRow(ctx,
		`UPDATE participants SET score = score + $3 WHERE quiz_id=$1 AND user_id=$2 RETURNING score`,
		quizID, userID, delta).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrParticipantNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment score: %w", err)
	}
	return score, nil
}

func (s *ParticipantStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.Participant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT quiz_id, user_id, score, joined_at FROM participants WHERE quiz_id=$1 ORDER BY joined_at, user_id`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.QuizID, &p.UserID, &p.Score, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
