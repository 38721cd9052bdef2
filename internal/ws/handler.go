package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/auth"
	"realtime-quiz-service/internal/domain"
)

// Handler runs the per-connection protocol: it admits and registers the
// connection, processes inbound messages strictly in arrival order, and
// unregisters on disconnect with one final broadcast to the remaining
// subscribers.
type Handler struct {
	service     *app.QuizService
	users       app.UserStore
	hub         *Hub
	broadcaster *Broadcaster
	runner      *QuestionRunner
	validator   auth.Validator // nil disables authentication
	upgrader    websocket.Upgrader

	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewHandler(service *app.QuizService, users app.UserStore, hub *Hub, broadcaster *Broadcaster, runner *QuestionRunner, validator auth.Validator, readTimeout, writeTimeout time.Duration) *Handler {
	return &Handler{
		service:     service,
		users:       users,
		hub:         hub,
		broadcaster: broadcaster,
		runner:      runner,
		validator:   validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// ServeWS upgrades the request and runs the connection loop until the
// client disconnects. The quiz session ID is the final path segment; an
// optional token query parameter is validated before the connection is
// admitted.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	if quizID == "" {
		http.Error(w, "missing quiz id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}
	client := NewClient(conn, h.writeTimeout)

	var principal *auth.Principal
	if h.validator != nil {
		p, err := h.validator.Validate(r.URL.Query().Get("token"))
		if err != nil {
			log.Printf("ws: auth failed for quiz %s: %v", quizID, err)
			client.ClosePolicy("authentication failed")
			return
		}
		principal = &p
	}

	exists, err := h.service.Registry().Exists(r.Context(), quizID)
	if err != nil {
		log.Printf("ws: session lookup for quiz %s: %v", quizID, err)
		_ = client.Send(Outbound{Type: TypeError, Message: "internal error"})
		client.ClosePolicy("internal error")
		return
	}
	if !exists {
		_ = client.Send(Outbound{Type: TypeError, Message: domain.ErrSessionNotFound.Error()})
		client.ClosePolicy("unknown quiz session")
		return
	}

	h.hub.Register(quizID, client)
	log.Printf("ws: client connected to quiz %s (subscribers: %d)", quizID, h.hub.Count(quizID))

	defer func() {
		h.hub.Unregister(quizID, client)
		_ = client.Close()
		// Remaining viewers observe the departure through a fresh snapshot.
		h.broadcaster.Broadcast(context.Background(), quizID)
		log.Printf("ws: client disconnected from quiz %s", quizID)
	}()

	for {
		if h.readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		h.handleMessage(r.Context(), client, quizID, principal, data)
	}
}

// handleMessage processes one inbound message. Failures are confined to
// this message: the sender gets an error reply and the loop continues.
func (h *Handler) handleMessage(ctx context.Context, client *Client, quizID string, principal *auth.Principal, data []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("ws: panic handling message on quiz %s: %v", quizID, rec)
			_ = client.Send(Outbound{Type: TypeError, Message: "internal error"})
		}
	}()

	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		_ = client.Send(Outbound{Type: TypeError, Message: "invalid message"})
		return
	}

	userID := msg.UserID
	if principal != nil {
		if userID == 0 {
			userID = principal.UserID
		} else if userID != principal.UserID {
			_ = client.Send(Outbound{Type: TypeError, Message: "user_id does not match credentials"})
			return
		}
	}

	switch msg.Action {
	case ActionJoin:
		h.handleJoin(ctx, client, quizID, userID)
	case ActionSubmitAnswer:
		h.handleSubmitAnswer(ctx, client, quizID, userID, msg)
	case ActionStartQuiz:
		if err := h.runner.Run(ctx, quizID); err != nil {
			h.sendError(client, quizID, err)
		}
	default:
		_ = client.Send(Outbound{Type: TypeError, Message: "invalid action"})
	}
}

func (h *Handler) handleJoin(ctx context.Context, client *Client, quizID string, userID int64) {
	if userID == 0 {
		_ = client.Send(Outbound{Type: TypeError, Message: "missing user_id"})
		return
	}
	if _, err := h.users.GetByID(ctx, userID); err != nil {
		h.sendError(client, quizID, err)
		return
	}
	if _, err := h.service.Join(ctx, quizID, userID); err != nil {
		h.sendError(client, quizID, err)
		return
	}
	_ = client.Send(Outbound{
		Type:    TypeStatus,
		Message: fmt.Sprintf("User %d joined quiz %s.", userID, quizID),
	})
}

func (h *Handler) handleSubmitAnswer(ctx context.Context, client *Client, quizID string, userID int64, msg Inbound) {
	if userID == 0 || msg.QuestionID == 0 || msg.SelectedOption == nil {
		_ = client.Send(Outbound{Type: TypeError, Message: "missing user_id, question_id, or selected_option"})
		return
	}

	correct, _, err := h.service.SubmitAnswer(ctx, quizID, userID, msg.QuestionID, *msg.SelectedOption)
	if err != nil {
		h.sendError(client, quizID, err)
		return
	}

	result := "incorrect"
	if correct {
		// Only a correct answer changed the leaderboard.
		h.broadcaster.Broadcast(ctx, quizID)
		result = "correct"
	}
	_ = client.Send(Outbound{Type: TypeAnswerResult, Data: domain.AnswerResult{
		QuestionID: msg.QuestionID,
		Result:     result,
	}})
}

// sendError maps known domain errors to their message and hides anything
// unexpected behind an opaque reply.
func (h *Handler) sendError(client *Client, quizID string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrQuizNotActive),
		errors.Is(err, domain.ErrUserNotFound):
		_ = client.Send(Outbound{Type: TypeError, Message: err.Error()})
	default:
		log.Printf("ws: unexpected error on quiz %s: %v", quizID, err)
		_ = client.Send(Outbound{Type: TypeError, Message: "internal error"})
	}
}
