// Package tasks is the deferred-execution layer: a Redis-brokered queue with
// immediate and delayed delivery, and a worker that dispatches queued tasks
// to registered handlers. Delivery is at least once, so handlers must be
// idempotent.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

const (
	readyKey     = "tasks:ready"
	scheduledKey = "tasks:scheduled"

	// promoteBatch bounds how many due tasks one poll moves to the ready
	// list.
	promoteBatch = 100
)

// Envelope is the wire form of one queued task.
type Envelope struct {
	ID         string          `json:"id"`
	Task       string          `json:"task"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt int64           `json:"enqueued_at"`
}

// Queue implements core.TaskQueue on Redis: a list holds ready tasks, and a
// sorted set scored by due time holds delayed ones until the worker promotes
// them.
type Queue struct {
	client *redis.Client
}

var _ core.TaskQueue = (*Queue)(nil)

func NewQueue(client *redis.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Enqueue(ctx context.Context, task string, payload any) error {
	data, err := seal(task, payload)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, readyKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", task, err)
	}
	return nil
}

func (q *Queue) EnqueueIn(ctx context.Context, task string, payload any, delay time.Duration) error {
	data, err := seal(task, payload)
	if err != nil {
		return err
	}
	due := float64(time.Now().Add(delay).Unix())
	if err := q.client.ZAdd(ctx, scheduledKey, redis.Z{Score: due, Member: data}).Err(); err != nil {
		return fmt.Errorf("schedule %s: %w", task, err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next ready task. A nil envelope with
// a nil error means the wait timed out. A message that fails to decode is
// dropped; it has already left the list and redelivering it cannot help.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Envelope, error) {
	res, err := q.client.BRPop(ctx, timeout, readyKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal([]byte(res[1]), &env); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("dropping malformed task envelope")
		return nil, nil
	}
	return &env, nil
}

// PromoteDue moves scheduled tasks whose time has come onto the ready list
// and reports how many moved. The watch makes the read-remove-push atomic;
// when concurrent workers race on the batch the losers see a failed
// transaction and pick up whatever is left on their next poll.
func (q *Queue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	var moved int
	err := q.client.Watch(ctx, func(tx *redis.Tx) error {
		due, err := tx.ZRangeByScore(ctx, scheduledKey, &redis.ZRangeBy{
			Min:   "-inf",
			Max:   strconv.FormatInt(now.Unix(), 10),
			Count: promoteBatch,
		}).Result()
		if err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}

		members := make([]any, len(due))
		for i, m := range due {
			members[i] = m
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZRem(ctx, scheduledKey, members...)
			pipe.LPush(ctx, readyKey, members...)
			return nil
		})
		if err != nil {
			return err
		}
		moved = len(due)
		return nil
	}, scheduledKey)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("promote due tasks: %w", err)
	}
	return moved, nil
}

func seal(task string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", task, err)
	}
	data, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Task:       task,
		Payload:    raw,
		EnqueuedAt: time.Now().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope for %s: %w", task, err)
	}
	return data, nil
}
