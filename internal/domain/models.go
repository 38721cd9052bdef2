package domain

import "time"

// SessionStatus tracks the lifecycle of a quiz session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusStarted   SessionStatus = "started"
	StatusCompleted SessionStatus = "completed"
)

// QuizSession is one instance of a quiz with a creator and lifecycle status.
type QuizSession struct {
	QuizID    string        `json:"quiz_id"`
	CreatorID int64         `json:"creator_user_id"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Participant is a user's membership and score within one quiz session.
// At most one participant exists per (quiz_id, user_id) pair.
type Participant struct {
	QuizID   string    `json:"quiz_id"`
	UserID   int64     `json:"user_id"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// Question is an MCQ belonging to exactly one quiz session. CorrectOption
// indexes into Options. Immutable after creation.
type Question struct {
	ID            int64    `json:"id"`
	QuizID        string   `json:"quiz_id"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Points        int      `json:"points"` // defaults to the configured award if zero
}

// LeaderboardEntry is one row of the ranked view pushed to clients.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Leaderboard is the derived ranking for a quiz session, recomputed on
// demand and never stored. Entries are sorted by score descending with a
// deterministic tie-break (join order).
type Leaderboard struct {
	QuizID  string             `json:"quiz_id"`
	Entries []LeaderboardEntry `json:"entries"`
}

// AnswerResult summarizes one submission back to its sender.
type AnswerResult struct {
	QuestionID int64  `json:"question_id"`
	Result     string `json:"result"` // "correct" or "incorrect"
}
