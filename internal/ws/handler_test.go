package ws

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/auth"
	"realtime-quiz-service/internal/domain"
	"realtime-quiz-service/internal/infra/memory"
)

type wsTestEnv struct {
	service *app.QuizService
	users   *memory.UserStore
	server  *httptest.Server
}

func newWSTestEnv(t *testing.T, validator auth.Validator, interval time.Duration) *wsTestEnv {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUserStore()
	for _, name := range []string{"alice", "bob"} {
		if _, err := users.Create(ctx, domain.User{Username: name, PasswordHash: "x"}); err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
	}

	registry := app.NewSessionRegistry(memory.NewSessionStore())
	ledger := app.NewScoreLedger(registry, memory.NewParticipantStore(), users)
	questions := memory.NewQuestionStore()
	service := app.NewQuizService(registry, ledger, questions, questions, 10)

	if _, err := service.CreateQuiz(ctx, "quiz-1", 1); err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if _, err := service.AddQuestion(ctx, "quiz-1", "What is 2 + 2?", []string{"3", "4", "5"}, 1, 10); err != nil {
		t.Fatalf("add question: %v", err)
	}

	hub := NewHub()
	broadcaster := NewBroadcaster(hub, service)
	runner := NewQuestionRunner(service, broadcaster, interval)
	handler := NewHandler(service, users, hub, broadcaster, runner, validator, 5*time.Second, 5*time.Second)

	router := chi.NewRouter()
	router.Get("/ws/{quizID}", handler.ServeWS)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &wsTestEnv{service: service, users: users, server: server}
}

func (e *wsTestEnv) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + e.server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readNext(t *testing.T, conn *websocket.Conn) (string, string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Message, msg.Data
}

func TestWebSocketJoinAndAnswerFlow(t *testing.T) {
	env := newWSTestEnv(t, nil, time.Minute)
	conn := env.dial(t, "/ws/quiz-1")

	if err := conn.WriteJSON(map[string]any{"action": "join", "user_id": 1}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	typ, message, _ := readNext(t, conn)
	if typ != TypeStatus {
		t.Fatalf("expected status, got %s (%s)", typ, message)
	}

	if err := conn.WriteJSON(map[string]any{
		"action":          "submit_answer",
		"user_id":         1,
		"question_id":     1,
		"selected_option": 1,
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	// A correct answer produces a leaderboard broadcast and an answer
	// result; the relative order depends on goroutine scheduling.
	resultSeen, leaderboardSeen := false, false
	for i := 0; i < 2; i++ {
		typ, _, data := readNext(t, conn)
		switch typ {
		case TypeAnswerResult:
			resultSeen = true
			if data["result"] != "correct" {
				t.Fatalf("expected correct, got %v", data["result"])
			}
		case TypeLeaderboardUpdate:
			leaderboardSeen = true
			entries, ok := data["entries"].([]any)
			if !ok || len(entries) != 1 {
				t.Fatalf("expected one leaderboard entry, got %v", data["entries"])
			}
			entry := entries[0].(map[string]any)
			if entry["username"] != "alice" || entry["score"] != float64(10) {
				t.Fatalf("unexpected leaderboard entry %v", entry)
			}
		}
	}
	if !resultSeen || !leaderboardSeen {
		t.Fatalf("expected answer_result and leaderboard_update, got result=%v leaderboard=%v", resultSeen, leaderboardSeen)
	}
}

func TestWebSocketIncorrectAnswerSkipsBroadcast(t *testing.T) {
	env := newWSTestEnv(t, nil, time.Minute)
	conn := env.dial(t, "/ws/quiz-1")

	if err := conn.WriteJSON(map[string]any{"action": "join", "user_id": 1}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readNext(t, conn)

	if err := conn.WriteJSON(map[string]any{
		"action":          "submit_answer",
		"user_id":         1,
		"question_id":     1,
		"selected_option": 0,
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	typ, _, data := readNext(t, conn)
	if typ != TypeAnswerResult {
		t.Fatalf("expected answer_result, got %s", typ)
	}
	if data["result"] != "incorrect" {
		t.Fatalf("expected incorrect, got %v", data["result"])
	}
}

func TestWebSocketBroadcastReachesOtherClients(t *testing.T) {
	env := newWSTestEnv(t, nil, time.Minute)
	viewer := env.dial(t, "/ws/quiz-1")
	player := env.dial(t, "/ws/quiz-1")

	if err := player.WriteJSON(map[string]any{"action": "join", "user_id": 2}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readNext(t, player)

	if err := player.WriteJSON(map[string]any{
		"action":          "submit_answer",
		"user_id":         2,
		"question_id":     1,
		"selected_option": 1,
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	typ, _, data := readNext(t, viewer)
	if typ != TypeLeaderboardUpdate {
		t.Fatalf("expected leaderboard_update on viewer, got %s", typ)
	}
	entries := data["entries"].([]any)
	if len(entries) != 1 || entries[0].(map[string]any)["username"] != "bob" {
		t.Fatalf("unexpected entries %v", entries)
	}
}

func TestWebSocketProtocolErrors(t *testing.T) {
	env := newWSTestEnv(t, nil, time.Minute)
	conn := env.dial(t, "/ws/quiz-1")

	// Malformed JSON.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	typ, message, _ := readNext(t, conn)
	if typ != TypeError || message != "invalid message" {
		t.Fatalf("expected invalid message error, got %s %q", typ, message)
	}

	// Unknown action.
	if err := conn.WriteJSON(map[string]any{"action": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	typ, message, _ = readNext(t, conn)
	if typ != TypeError || message != "invalid action" {
		t.Fatalf("expected invalid action error, got %s %q", typ, message)
	}

	// Missing fields on submit_answer.
	if err := conn.WriteJSON(map[string]any{"action": "submit_answer", "user_id": 1}); err != nil {
		t.Fatalf("write: %v", err)
	}
	typ, _, _ = readNext(t, conn)
	if typ != TypeError {
		t.Fatalf("expected error for missing fields, got %s", typ)
	}

	// Scoring without joining first.
	if err := conn.WriteJSON(map[string]any{
		"action":          "submit_answer",
		"user_id":         1,
		"question_id":     1,
		"selected_option": 1,
	}); err != nil {
		t.Fatalf("write: %v", err)
	}
	typ, message, _ = readNext(t, conn)
	if typ != TypeError || message != domain.ErrParticipantNotFound.Error() {
		t.Fatalf("expected participant not found, got %s %q", typ, message)
	}

	// The connection survives all of the above.
	if err := conn.WriteJSON(map[string]any{"action": "join", "user_id": 1}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	typ, _, _ = readNext(t, conn)
	if typ != TypeStatus {
		t.Fatalf("expected status after recovering, got %s", typ)
	}
}

func TestWebSocketDisconnectBroadcastsToSurvivors(t *testing.T) {
	env := newWSTestEnv(t, nil, time.Minute)
	survivor := env.dial(t, "/ws/quiz-1")
	leaver := env.dial(t, "/ws/quiz-1")

	if err := leaver.WriteJSON(map[string]any{"action": "join", "user_id": 2}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readNext(t, leaver)

	// The survivor triggered nothing; closing the other connection is what
	// produces its leaderboard snapshot.
	leaver.Close()

	typ, _, data := readNext(t, survivor)
	if typ != TypeLeaderboardUpdate {
		t.Fatalf("expected leaderboard_update after disconnect, got %s", typ)
	}
	entries, ok := data["entries"].([]any)
	if !ok || len(entries) != 1 || entries[0].(map[string]any)["username"] != "bob" {
		t.Fatalf("unexpected entries %v", data["entries"])
	}
}

func TestWebSocketRejectsUnknownQuiz(t *testing.T) {
	env := newWSTestEnv(t, nil, time.Minute)
	conn := env.dial(t, "/ws/quiz-404")

	typ, message, _ := readNext(t, conn)
	if typ != TypeError || message != domain.ErrSessionNotFound.Error() {
		t.Fatalf("expected session not found, got %s %q", typ, message)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the server to close the connection")
	}
}

func TestWebSocketAuthentication(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	env := newWSTestEnv(t, tokens, time.Minute)

	// Missing or garbage token is rejected before admission.
	conn := env.dial(t, "/ws/quiz-1?token=garbage")
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close for invalid token")
	}

	token, err := tokens.Issue(1, "alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	authed := env.dial(t, "/ws/quiz-1?token="+token)

	// The principal fills in user_id when omitted.
	if err := authed.WriteJSON(map[string]any{"action": "join"}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	typ, message, _ := readNext(t, authed)
	if typ != TypeStatus {
		t.Fatalf("expected status, got %s (%s)", typ, message)
	}

	// Impersonating another user is refused.
	if err := authed.WriteJSON(map[string]any{"action": "join", "user_id": 2}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	typ, message, _ = readNext(t, authed)
	if typ != TypeError || message != "user_id does not match credentials" {
		t.Fatalf("expected credential mismatch error, got %s %q", typ, message)
	}
}

func TestWebSocketStartQuizStreamsQuestions(t *testing.T) {
	env := newWSTestEnv(t, nil, 10*time.Millisecond)
	conn := env.dial(t, "/ws/quiz-1")

	if err := conn.WriteJSON(map[string]any{"action": "join", "user_id": 1}); err != nil {
		t.Fatalf("write join: %v", err)
	}
	readNext(t, conn)

	if err := conn.WriteJSON(map[string]any{"action": "start_quiz"}); err != nil {
		t.Fatalf("write start: %v", err)
	}

	questionSeen, endSeen := false, false
	for i := 0; i < 4 && !endSeen; i++ {
		typ, _, data := readNext(t, conn)
		switch typ {
		case TypeNewQuestion:
			questionSeen = true
			if data["text"] != "What is 2 + 2?" {
				t.Fatalf("unexpected question %v", data)
			}
			if _, hidden := data["correct_option"]; hidden {
				t.Fatalf("correct option must never reach clients")
			}
		case TypeQuizEnd:
			endSeen = true
		}
	}
	if !questionSeen || !endSeen {
		t.Fatalf("expected new_question and quiz_end, got question=%v end=%v", questionSeen, endSeen)
	}

	waitForStatus(t, env.service, "quiz-1", domain.StatusCompleted)

	// A second start on a completed quiz is refused.
	if err := conn.WriteJSON(map[string]any{"action": "start_quiz"}); err != nil {
		t.Fatalf("write start: %v", err)
	}
	typ, message, _ := readNext(t, conn)
	if typ != TypeError || message != domain.ErrQuizNotActive.Error() {
		t.Fatalf("expected quiz not active, got %s %q", typ, message)
	}
}

type downSessionStore struct{}

var errStoreDown = errors.New("connection refused")

func (downSessionStore) Create(context.Context, domain.QuizSession) error {
	return errStoreDown
}
func (downSessionStore) Get(context.Context, string) (domain.QuizSession, error) {
	return domain.QuizSession{}, errStoreDown
}
func (downSessionStore) SetStatus(context.Context, string, domain.SessionStatus) error {
	return errStoreDown
}
func (downSessionStore) TransitionStatus(context.Context, string, domain.SessionStatus, domain.SessionStatus) error {
	return errStoreDown
}

func TestWebSocketStoreFailureIsNotUnknownQuiz(t *testing.T) {
	users := memory.NewUserStore()
	registry := app.NewSessionRegistry(downSessionStore{})
	ledger := app.NewScoreLedger(registry, memory.NewParticipantStore(), users)
	questions := memory.NewQuestionStore()
	service := app.NewQuizService(registry, ledger, questions, questions, 10)

	hub := NewHub()
	broadcaster := NewBroadcaster(hub, service)
	runner := NewQuestionRunner(service, broadcaster, time.Minute)
	handler := NewHandler(service, users, hub, broadcaster, runner, nil, 5*time.Second, 5*time.Second)

	router := chi.NewRouter()
	router.Get("/ws/{quizID}", handler.ServeWS)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+server.URL[len("http"):]+"/ws/quiz-1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	typ, message, _ := readNext(t, conn)
	if typ != TypeError {
		t.Fatalf("expected error, got %s", typ)
	}
	if message == domain.ErrSessionNotFound.Error() {
		t.Fatalf("a store failure must not be reported as a missing session")
	}
	if message != "internal error" {
		t.Fatalf("expected opaque internal error, got %q", message)
	}
}

func waitForStatus(t *testing.T, service *app.QuizService, quizID string, want domain.SessionStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		session, err := service.GetQuiz(context.Background(), quizID)
		if err != nil {
			t.Fatalf("get quiz: %v", err)
		}
		if session.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("quiz %s never reached status %s", quizID, want)
}
