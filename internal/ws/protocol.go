package ws

// Inbound is the client message envelope. One JSON object per text message.
type Inbound struct {
	Action         string `json:"action"`
	UserID         int64  `json:"user_id,omitempty"`
	QuestionID     int64  `json:"question_id,omitempty"`
	SelectedOption *int   `json:"selected_option,omitempty"`
}

const (
	ActionJoin         = "join"
	ActionSubmitAnswer = "submit_answer"
	ActionStartQuiz    = "start_quiz"
)

// Outbound is the server message envelope.
type Outbound struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const (
	TypeStatus            = "status"
	TypeError             = "error"
	TypeAnswerResult      = "answer_result"
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeNewQuestion       = "new_question"
	TypeQuizEnd           = "quiz_end"
)

// QuestionView is the client-facing shape of a question pushed during a
// running quiz. The correct option is never sent.
type QuestionView struct {
	ID      int64    `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}
