package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"realtime-quiz-service/internal/domain"
)

func TestLeaderboardSortedWithStableTies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Join order: bob (2), carol (3), alice (1). Carol takes the lead.
	for _, userID := range []int64{2, 3, 1} {
		if _, err := env.service.Join(ctx, "quiz-1", userID); err != nil {
			t.Fatalf("join %d: %v", userID, err)
		}
	}
	if _, err := env.service.Ledger().UpdateScore(ctx, "quiz-1", 3, 10); err != nil {
		t.Fatalf("update: %v", err)
	}

	want := []domain.LeaderboardEntry{
		{Username: "carol", Score: 10},
		{Username: "bob", Score: 0},
		{Username: "alice", Score: 0},
	}
	lb, err := env.service.Leaderboard(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if !reflect.DeepEqual(lb.Entries, want) {
		t.Fatalf("expected %+v, got %+v", want, lb.Entries)
	}

	// Unchanged data must yield the same order every time.
	for i := 0; i < 5; i++ {
		again, err := env.service.Leaderboard(ctx, "quiz-1")
		if err != nil {
			t.Fatalf("leaderboard: %v", err)
		}
		if !reflect.DeepEqual(again.Entries, lb.Entries) {
			t.Fatalf("order changed between calls: %+v vs %+v", again.Entries, lb.Entries)
		}
	}
}

func TestLeaderboardUnknownSession(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.service.Leaderboard(context.Background(), "quiz-unknown"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session error, got %v", err)
	}
}

func TestUpdateScoreMissingParticipantFailsLoudly(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.service.Ledger().UpdateScore(context.Background(), "quiz-1", 2, 10); !errors.Is(err, domain.ErrParticipantNotFound) {
		t.Fatalf("expected participant error, got %v", err)
	}
}

// The exact scenario from the scoring contract: two participants, +10 each
// for carol and a second +10 for bob concurrently, final state must be
// bob=20, carol=10 in that order.
func TestScoringScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, userID := range []int64{2, 3} {
		if _, err := env.service.Join(ctx, "quiz-1", userID); err != nil {
			t.Fatalf("join %d: %v", userID, err)
		}
	}

	if _, err := env.service.Ledger().UpdateScore(ctx, "quiz-1", 2, 10); err != nil {
		t.Fatalf("update: %v", err)
	}
	lb, _ := env.service.Leaderboard(ctx, "quiz-1")
	want := []domain.LeaderboardEntry{{Username: "bob", Score: 10}, {Username: "carol", Score: 0}}
	if !reflect.DeepEqual(lb.Entries, want) {
		t.Fatalf("expected %+v, got %+v", want, lb.Entries)
	}

	done := make(chan error, 2)
	go func() {
		_, err := env.service.Ledger().UpdateScore(ctx, "quiz-1", 3, 10)
		done <- err
	}()
	go func() {
		_, err := env.service.Ledger().UpdateScore(ctx, "quiz-1", 2, 10)
		done <- err
	}()
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent update: %v", err)
		}
	}

	lb, _ = env.service.Leaderboard(ctx, "quiz-1")
	want = []domain.LeaderboardEntry{{Username: "bob", Score: 20}, {Username: "carol", Score: 10}}
	if !reflect.DeepEqual(lb.Entries, want) {
		t.Fatalf("expected %+v, got %+v", want, lb.Entries)
	}
}
