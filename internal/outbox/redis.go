package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"transfers/internal/logger"
)

// RedisQueue keeps tasks in a Redis list so they survive an API restart.
type RedisQueue struct {
	rdb  redis.Cmdable
	key  string
	poll time.Duration
	log  logger.Logger
}

func NewRedisQueue(rdb redis.Cmdable, key string, poll time.Duration, log logger.Logger) *RedisQueue {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &RedisQueue{rdb: rdb, key: key, poll: poll, log: log}
}

func (q *RedisQueue) Enqueue(ctx context.Context, t Task) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("push task: %w", err)
	}
	return nil
}

func (q *RedisQueue) Run(ctx context.Context, h Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		res, err := q.rdb.BLPop(ctx, q.poll, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			q.log.Warning("outbox pop failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(q.poll):
			}
			continue
		}
		if len(res) != 2 {
			continue
		}

		var t Task
		if err := json.Unmarshal([]byte(res[1]), &t); err != nil {
			q.log.Error("outbox task dropped", logger.String("payload", res[1]), logger.Error(err))
			continue
		}
		handle(ctx, q.log, h, t)
	}
}
