package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"realtime-quiz-service/internal/app"
	"realtime-quiz-service/internal/domain"
)

// QuestionLoader lists quiz questions from a backing store.
type QuestionLoader interface {
	ListByQuiz(ctx context.Context, quizID string) ([]domain.Question, error)
}

// QuestionCache caches grading keys in Redis (one hash per quiz) and falls
// back to the loader on a cache miss. The hash maps question ID to a JSON
// answer key: HSET quiz:{quizID}:answerkeys {questionID} {key}.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (c *QuestionCache) AnswerKey(ctx context.Context, quizID string, questionID int64) (app.AnswerKey, error) {
	key := c.keysKey(quizID)
	field := strconv.FormatInt(questionID, 10)

	cached, err := c.client.HGetAll(ctx, key).Result()
	if err == nil && len(cached) > 0 {
		return keyFromCache(cached, field)
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the hash.
		cached, err := c.client.HGetAll(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			return cached, nil
		}

		questions, err := c.loader.ListByQuiz(ctx, quizID)
		if err != nil {
			return nil, err
		}

		filled := make(map[string]string, len(questions))
		pipe := c.client.Pipeline()
		for _, q := range questions {
			encoded, err := json.Marshal(app.AnswerKey{
				CorrectOption: q.CorrectOption,
				Points:        q.Points,
				OptionCount:   len(q.Options),
			})
			if err != nil {
				return nil, fmt.Errorf("marshal answer key: %w", err)
			}
			qField := strconv.FormatInt(q.ID, 10)
			filled[qField] = string(encoded)
			pipe.HSet(ctx, key, qField, encoded)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 && len(questions) > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return filled, nil
	})
	if err != nil {
		return app.AnswerKey{}, err
	}
	return keyFromCache(result.(map[string]string), field)
}

func (c *QuestionCache) keysKey(quizID string) string {
	return "quiz:" + quizID + ":answerkeys"
}

func keyFromCache(cached map[string]string, field string) (app.AnswerKey, error) {
	raw, ok := cached[field]
	if !ok {
		return app.AnswerKey{}, domain.ErrQuestionNotFound
	}
	var key app.AnswerKey
	if err := json.Unmarshal([]byte(raw), &key); err != nil {
		return app.AnswerKey{}, fmt.Errorf("unmarshal answer key: %w", err)
	}
	return key, nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
