package memory

import (
	"context"
	"sync"

	"realtime-quiz-service/internal/domain"
)

// ParticipantStore is an in-memory implementation of app.ParticipantStore.
// The store mutex serializes increments, so concurrent score updates to the
// same participant never lose writes.
type ParticipantStore struct {
	mu      sync.RWMutex
	quizzes map[string]*quizParticipants
}

type quizParticipants struct {
	order  []int64 // user IDs in join order, for deterministic tie-breaks
	byUser map[int64]*domain.Participant
}

func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{quizzes: make(map[string]*quizParticipants)}
}

func (s *ParticipantStore) Get(_ context.Context, quizID string, userID int64) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	participant, ok := quiz.byUser[userID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return *participant, nil
}

func (s *ParticipantStore) Create(_ context.Context, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[participant.QuizID]
	if !ok {
		quiz = &quizParticipants{byUser: make(map[int64]*domain.Participant)}
		s.quizzes[participant.QuizID] = quiz
	}
	if _, ok := quiz.byUser[participant.UserID]; ok {
		return nil
	}
	p := participant
	quiz.byUser[participant.UserID] = &p
	quiz.order = append(quiz.order, participant.UserID)
	return nil
}

func (s *ParticipantStore) Increment(_ context.Context, quizID string, userID int64, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return 0, domain.ErrParticipantNotFound
	}
	participant, ok := quiz.byUser[userID]
	if !ok {
		return 0, domain.ErrParticipantNotFound
	}
	participant.Score += delta
	return participant.Score, nil
}

func (s *ParticipantStore) ListByQuiz(_ context.Context, quizID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return nil, nil
	}
	participants := make([]domain.Participant, 0, len(quiz.order))
	for _, userID := range quiz.order {
		participants = append(participants, *quiz.byUser[userID])
	}
	return participants, nil
}
