package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/domain"
)

// QuestionStore is a Postgres implementation of app.QuestionStore and
// app.AnswerSource. Options are stored as JSONB.
type QuestionStore struct {
	pool *pgxpool.Pool
}

func NewQuestionStore(pool *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{pool: pool}
}

func (s *QuestionStore) Add(ctx context.Context, question domain.Question) (domain.Question, error) {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO questions (quiz_id, text, options, correct_option, points) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		question.QuizID, question.Text, options, question.CorrectOption, question.Points).Scan(&question.ID)
	if err != nil {
		return domain.Question{}, fmt.Errorf("add question: %w", err)
	}
	return question, nil
}

func (s *QuestionStore) Get(ctx context.Context, quizID string, questionID int64) (domain.Question, error) {
	var q domain.Question
	var options []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, quiz_id, text, options, correct_option, points FROM questions WHERE quiz_id=$1 AND id=$2`,
		quizID, questionID).Scan(&q.ID, &q.QuizID, &q.Text, &options, &q.CorrectOption, &q.Points)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("get question: %w", err)
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return q, nil
}

func (s *QuestionStore) ListByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, text, options, correct_option, points FROM questions WHERE quiz_id=$1 ORDER BY id`,
		quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var options []byte
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &options, &q.CorrectOption, &q.Points); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *QuestionStore) AnswerKey(ctx context.Context, quizID string, questionID int64) (app.AnswerKey, error) {
	question, err := s.Get(ctx, quizID, questionID)
	if err != nil {
		return app.AnswerKey{}, err
	}
	return app.AnswerKey{
		CorrectOption: question.CorrectOption,
		Points:        question.Points,
		OptionCount:   len(question.Options),
	}, nil
}
