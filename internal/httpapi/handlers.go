package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"realtime-quiz-service/internal/domain"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createQuizRequest struct {
	QuizID string `json:"quiz_id"`
}

type addQuestionRequest struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
	Points        int      `json:"points"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := a.users.Register(r.Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrUserExists) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("api: register %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeSuccess(w, "User registered successfully.", map[string]any{
		"id":       user.ID,
		"username": user.Username,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := a.users.Authenticate(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found.")
		return
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	case err != nil:
		log.Printf("api: login %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeSuccess(w, "Login successful.", map[string]any{
		"id":       user.ID,
		"username": user.Username,
	})
}

func (a *API) handleToken(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := a.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := a.tokens.Issue(user.ID, user.Username)
	if err != nil {
		log.Printf("api: issue token for %s: %v", req.Username, err)
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	writeSuccess(w, "Token generated successfully.", map[string]any{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (a *API) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	var req createQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := a.service.CreateQuiz(r.Context(), req.QuizID, principal.UserID)
	if errors.Is(err, domain.ErrDuplicateSession) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log.Printf("api: create quiz %s: %v", req.QuizID, err)
		writeError(w, http.StatusInternalServerError, "quiz creation failed")
		return
	}
	writeSuccess(w, "Quiz created successfully.", session)
}

func (a *API) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	session, err := a.service.GetQuiz(r.Context(), quizID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("api: get quiz %s: %v", quizID, err)
		writeError(w, http.StatusInternalServerError, "quiz lookup failed")
		return
	}
	writeSuccess(w, "Quiz retrieved successfully.", session)
}

func (a *API) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	var req addQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" || len(req.Options) == 0 {
		writeError(w, http.StatusBadRequest, "text and options required")
		return
	}

	question, err := a.service.AddQuestion(r.Context(), quizID, req.Text, req.Options, req.CorrectOption, req.Points)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrInvalidAnswer):
		writeError(w, http.StatusBadRequest, "correct_option out of range")
		return
	case err != nil:
		log.Printf("api: add question to %s: %v", quizID, err)
		writeError(w, http.StatusInternalServerError, "question creation failed")
		return
	}
	writeSuccess(w, "Question added successfully.", question)
}

func (a *API) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	quizID := chi.URLParam(r, "quizID")

	participant, err := a.service.Join(r.Context(), quizID, principal.UserID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("api: add participant to %s: %v", quizID, err)
		writeError(w, http.StatusInternalServerError, "join failed")
		return
	}
	writeSuccess(w, "Participant added successfully.", participant)
}

func (a *API) handleGetParticipants(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	participants, err := a.service.Participants(r.Context(), quizID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("api: participants of %s: %v", quizID, err)
		writeError(w, http.StatusInternalServerError, "participant lookup failed")
		return
	}
	writeSuccess(w, "Participants retrieved successfully.", participants)
}

func (a *API) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	leaderboard, err := a.service.Leaderboard(r.Context(), quizID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		log.Printf("api: leaderboard of %s: %v", quizID, err)
		writeError(w, http.StatusInternalServerError, "leaderboard lookup failed")
		return
	}
	writeSuccess(w, "Leaderboard retrieved successfully.", leaderboard)
}
