package app

import (
	"context"

	"realtime-quiz-service/internal/domain"
)

// DefaultAnswerPoints is awarded for a correct answer when neither the
// question nor the configuration specifies a value.
const DefaultAnswerPoints = 10

// QuizService composes the session registry, score ledger, and question
// stores into the quiz use cases.
type QuizService struct {
	registry     *SessionRegistry
	ledger       *ScoreLedger
	questions    QuestionStore
	answers      AnswerSource
	answerPoints int
}

func NewQuizService(registry *SessionRegistry, ledger *ScoreLedger, questions QuestionStore, answers AnswerSource, answerPoints int) *QuizService {
	if answerPoints <= 0 {
		answerPoints = DefaultAnswerPoints
	}
	return &QuizService{
		registry:     registry,
		ledger:       ledger,
		questions:    questions,
		answers:      answers,
		answerPoints: answerPoints,
	}
}

func (s *QuizService) Registry() *SessionRegistry { return s.registry }
func (s *QuizService) Ledger() *ScoreLedger       { return s.ledger }

// CreateQuiz registers a new session; an empty quizID gets a generated one.
func (s *QuizService) CreateQuiz(ctx context.Context, quizID string, creatorID int64) (domain.QuizSession, error) {
	return s.registry.Create(ctx, quizID, creatorID)
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.QuizSession, error) {
	return s.registry.Get(ctx, quizID)
}

// AddQuestion appends an MCQ to a quiz after validating the session exists
// and the correct option is within range.
func (s *QuizService) AddQuestion(ctx context.Context, quizID, text string, options []string, correctOption, points int) (domain.Question, error) {
	if _, err := s.registry.Get(ctx, quizID); err != nil {
		return domain.Question{}, err
	}
	if correctOption < 0 || correctOption >= len(options) {
		return domain.Question{}, domain.ErrInvalidAnswer
	}
	return s.questions.Add(ctx, domain.Question{
		QuizID:        quizID,
		Text:          text,
		Options:       options,
		CorrectOption: correctOption,
		Points:        points,
	})
}

func (s *QuizService) Questions(ctx context.Context, quizID string) ([]domain.Question, error) {
	if _, err := s.registry.Get(ctx, quizID); err != nil {
		return nil, err
	}
	return s.questions.ListByQuiz(ctx, quizID)
}

// Join registers the user as a participant (idempotent).
func (s *QuizService) Join(ctx context.Context, quizID string, userID int64) (domain.Participant, error) {
	return s.ledger.AddParticipant(ctx, quizID, userID)
}

func (s *QuizService) Participants(ctx context.Context, quizID string) ([]domain.Participant, error) {
	if _, err := s.registry.Get(ctx, quizID); err != nil {
		return nil, err
	}
	return s.ledger.participants.ListByQuiz(ctx, quizID)
}

func (s *QuizService) Leaderboard(ctx context.Context, quizID string) (domain.Leaderboard, error) {
	return s.ledger.Leaderboard(ctx, quizID)
}

// SubmitAnswer grades a submission against the stored correct option and
// increments the participant's score only on a match. An incorrect answer
// mutates nothing; the sender still must be a joined participant.
func (s *QuizService) SubmitAnswer(ctx context.Context, quizID string, userID, questionID int64, selectedOption int) (correct bool, total int, err error) {
	if _, err := s.registry.Get(ctx, quizID); err != nil {
		return false, 0, err
	}

	key, err := s.answers.AnswerKey(ctx, quizID, questionID)
	if err != nil {
		return false, 0, err
	}
	if selectedOption < 0 || selectedOption >= key.OptionCount {
		return false, 0, domain.ErrInvalidAnswer
	}

	if selectedOption != key.CorrectOption {
		participant, err := s.ledger.participants.Get(ctx, quizID, userID)
		if err != nil {
			return false, 0, err
		}
		return false, participant.Score, nil
	}

	points := key.Points
	if points <= 0 {
		points = s.answerPoints
	}
	total, err = s.ledger.UpdateScore(ctx, quizID, userID, points)
	if err != nil {
		return false, 0, err
	}
	return true, total, nil
}

// StartQuiz transitions the session active -> started and returns its
// questions for sequential delivery to subscribers.
func (s *QuizService) StartQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	if _, err := s.registry.Start(ctx, quizID); err != nil {
		return nil, err
	}
	return s.questions.ListByQuiz(ctx, quizID)
}

// CompleteQuiz marks the session completed once all questions have run.
func (s *QuizService) CompleteQuiz(ctx context.Context, quizID string) error {
	return s.registry.Complete(ctx, quizID)
}
