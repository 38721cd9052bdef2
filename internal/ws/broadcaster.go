package ws

import (
	"context"
	"encoding/json"
	"log"

	"realtime-quiz-service/internal/domain"
)

// LeaderboardSource computes the current ranking for a quiz session.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error)
}

// Broadcaster fans leaderboard updates out to every connection subscribed
// to a quiz. A send failure drops only that peer: it is logged, the peer is
// unregistered and closed, and the broadcast continues. Counts are returned
// for observability only.
type Broadcaster struct {
	hub    *Hub
	source LeaderboardSource
}

func NewBroadcaster(hub *Hub, source LeaderboardSource) *Broadcaster {
	return &Broadcaster{hub: hub, source: source}
}

// Broadcast recomputes the leaderboard and pushes it to all subscribers.
func (b *Broadcaster) Broadcast(ctx context.Context, quizID string) (sent, failed int) {
	leaderboard, err := b.source.Leaderboard(ctx, quizID)
	if err != nil {
		log.Printf("ws: leaderboard for quiz %s: %v", quizID, err)
		return 0, 0
	}
	return b.Push(quizID, Outbound{Type: TypeLeaderboardUpdate, Data: leaderboard})
}

// Push sends an arbitrary message to all subscribers of a quiz.
func (b *Broadcaster) Push(quizID string, msg Outbound) (sent, failed int) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("ws: marshal broadcast for quiz %s: %v", quizID, err)
		return 0, 0
	}

	for _, peer := range b.hub.Subscribers(quizID) {
		if err := peer.SendRaw(data); err != nil {
			log.Printf("ws: send to subscriber of quiz %s: %v", quizID, err)
			b.hub.Unregister(quizID, peer)
			_ = peer.Close()
			failed++
			continue
		}
		sent++
	}
	return sent, failed
}
