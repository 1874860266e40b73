package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"moodslots/internal/domain"
)

// RedisJobQueue реализует очередь задач на базе Redis lists.
type RedisJobQueue struct {
	client *redis.Client
	key    string
}

var _ domain.JobQueue = (*RedisJobQueue)(nil)

// NewRedisJobQueue создаёт очередь по указанному ключу.
func NewRedisJobQueue(client *redis.Client, key string) *RedisJobQueue {
	return &RedisJobQueue{client: client, key: key}
}

// Enqueue публикует задачу в очередь.
func (q *RedisJobQueue) Enqueue(ctx context.Context, job domain.RecommendationJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push job: %w", err)
	}
	return nil
}

// Pop блокирующе читает задачу из очереди.
func (q *RedisJobQueue) Pop(ctx context.Context) (domain.RecommendationJob, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.RecommendationJob{}, err
		}

		res, err := q.client.BRPop(ctx, time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				if ctx.Err() != nil {
					return domain.RecommendationJob{}, ctx.Err()
				}
				continue
			}
			if errors.Is(err, redis.Nil) {
				continue
			}
			return domain.RecommendationJob{}, err
		}
		if len(res) != 2 {
			return domain.RecommendationJob{}, errors.New("redis queue: unexpected response")
		}
		var job domain.RecommendationJob
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return domain.RecommendationJob{}, fmt.Errorf("decode job: %w", err)
		}
		return job, nil
	}
}
