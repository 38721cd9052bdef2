package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/auth"
)

// API exposes the request/response surface: registration, login, token
// issue, and quiz resource management. These are thin wrappers over the
// stores; all real-time behavior lives in the ws package.
type API struct {
	users   *app.UserService
	service *app.QuizService
	tokens  *auth.TokenManager
}

func New(users *app.UserService, service *app.QuizService, tokens *auth.TokenManager) *API {
	return &API{users: users, service: service, tokens: tokens}
}

// Routes mounts the public and authenticated endpoints.
func (a *API) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", a.handleRegister)
	r.Post("/login", a.handleLogin)
	r.Post("/auth/token", a.handleToken)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(a.tokens))
		r.Post("/quiz", a.handleCreateQuiz)
		r.Get("/quiz/{quizID}", a.handleGetQuiz)
		r.Post("/quiz/{quizID}/questions", a.handleAddQuestion)
		r.Post("/quiz/{quizID}/participants", a.handleAddParticipant)
		r.Get("/quiz/{quizID}/participants", a.handleGetParticipants)
		r.Get("/quiz/{quizID}/leaderboard", a.handleGetLeaderboard)
	})

	return r
}

// response is the uniform reply envelope.
type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, response{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, response{Status: "error", Message: message})
}
