package memory

import (
	"context"
	"sync"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/domain"
)

// QuestionStore is an in-memory implementation of app.QuestionStore and
// app.AnswerSource.
type QuestionStore struct {
	mu     sync.RWMutex
	nextID int64
	byQuiz map[string][]domain.Question
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{byQuiz: make(map[string][]domain.Question)}
}

func (s *QuestionStore) Add(_ context.Context, question domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	question.ID = s.nextID
	s.byQuiz[question.QuizID] = append(s.byQuiz[question.QuizID], question)
	return question, nil
}

func (s *QuestionStore) Get(_ context.Context, quizID string, questionID int64) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.byQuiz[quizID] {
		if q.ID == questionID {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (s *QuestionStore) ListByQuiz(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions := make([]domain.Question, len(s.byQuiz[quizID]))
	copy(questions, s.byQuiz[quizID])
	return questions, nil
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
