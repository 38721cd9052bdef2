package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"realtime-quiz-service/internal/domain"
)

// ScoreLedger owns per-(quiz, participant) score state: it applies
// increments through the participant store's serialized read-modify-write
// and produces ranked snapshots. Every operation is gated on session
// existence via the registry.
type ScoreLedger struct {
	registry     *SessionRegistry
	participants ParticipantStore
	users        UserStore
	now          func() time.Time
}

func NewScoreLedger(registry *SessionRegistry, participants ParticipantStore, users UserStore) *ScoreLedger {
	return &ScoreLedger{
		registry:     registry,
		participants: participants,
		users:        users,
		now:          time.Now,
	}
}

// AddParticipant creates a participant row with score 0, or returns the
// existing one unchanged (a second join never resets the score).
func (l *ScoreLedger) AddParticipant(ctx context.Context, quizID string, userID int64) (domain.Participant, error) {
	if _, err := l.registry.Get(ctx, quizID); err != nil {
		return domain.Participant{}, err
	}

	participant, err := l.participants.Get(ctx, quizID, userID)
	if err == nil {
		return participant, nil
	}
	if !errors.Is(err, domain.ErrParticipantNotFound) {
		return domain.Participant{}, err
	}

	participant = domain.Participant{
		QuizID:   quizID,
		UserID:   userID,
		Score:    0,
		JoinedAt: l.now(),
	}
	if err := l.participants.Create(ctx, participant); err != nil {
		return domain.Participant{}, err
	}
	return participant, nil
}

// UpdateScore atomically increments the participant's score by delta and
// returns the new value. A missing participant fails with
// ErrParticipantNotFound rather than silently doing nothing.
func (l *ScoreLedger) UpdateScore(ctx context.Context, quizID string, userID int64, delta int) (int, error) {
	if _, err := l.registry.Get(ctx, quizID); err != nil {
		return 0, err
	}
	return l.participants.Increment(ctx, quizID, userID, delta)
}

// Leaderboard returns all participants for the session sorted by score
// descending. Ties keep join order, so repeated calls over unchanged data
// return entries in the same order.
func (l *ScoreLedger) Leaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	if _, err := l.registry.Get(ctx, quizID); err != nil {
		return domain.Leaderboard{}, err
	}

	participants, err := l.participants.ListByQuiz(ctx, quizID)
	if err != nil {
		return domain.Leaderboard{}, err
	}

	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].Score > participants[j].Score
	})

	entries := make([]domain.LeaderboardEntry, 0, len(participants))
	for _, p := range participants {
		entries = append(entries, domain.LeaderboardEntry{
			Username: l.username(ctx, p.UserID),
			Score:    p.Score,
		})
	}
	return domain.Leaderboard{QuizID: quizID, Entries: entries}, nil
}

func (l *ScoreLedger) username(ctx context.Context, userID int64) string {
	user, err := l.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Sprintf("user-%d", userID)
	}
	return user.Username
}
