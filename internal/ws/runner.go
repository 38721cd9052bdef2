package ws

import (
	"context"
	"log"
	"time"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/domain"
)

// QuestionRunner drives a started quiz: it broadcasts the leaderboard,
// then pushes each question to all subscribers at a fixed interval and
// finally marks the session completed. The active -> started transition in
// the registry guards against double starts.
type QuestionRunner struct {
	service     *app.QuizService
	broadcaster *Broadcaster
	interval    time.Duration
}

func NewQuestionRunner(service *app.QuizService, broadcaster *Broadcaster, interval time.Duration) *QuestionRunner {
	return &QuestionRunner{service: service, broadcaster: broadcaster, interval: interval}
}

// Run starts the quiz and returns once the transition succeeded; question
// delivery continues in the background independent of the connection that
// triggered it.
func (r *QuestionRunner) Run(ctx context.Context, quizID string) error {
	questions, err := r.service.StartQuiz(ctx, quizID)
	if err != nil {
		return err
	}

	r.broadcaster.Broadcast(ctx, quizID)
	go r.deliver(quizID, questions)
	return nil
}

func (r *QuestionRunner) deliver(quizID string, questions []domain.Question) {
	ctx := context.Background()
	for _, q := range questions {
		r.broadcaster.Push(quizID, Outbound{Type: TypeNewQuestion, Data: QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		}})
		time.Sleep(r.interval)
	}
	r.broadcaster.Push(quizID, Outbound{Type: TypeQuizEnd, Message: "Quiz has ended!"})
	if err := r.service.CompleteQuiz(ctx, quizID); err != nil {
		log.Printf("ws: complete quiz %s: %v", quizID, err)
	}
}
