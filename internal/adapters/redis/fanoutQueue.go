package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"socialfeed/internal/core/fanout"

	"github.com/go-redis/redis/v8"
)

// FanoutQueueRedis is a FIFO list: producers LPUSH, the worker BRPOPs.
type FanoutQueueRedis struct {
	Client redis.Cmdable
	Key    string
}

func NewFanoutQueueRedis(client redis.Cmdable, key string) *FanoutQueueRedis {
	if key == "" {
		key = "fanout:queue"
	}
	return &FanoutQueueRedis{
		Client: client,
		Key:    key,
	}
}

func (q *FanoutQueueRedis) Enqueue(ctx context.Context, event fanout.Event) error {
	payload, err := fanout.Marshal(event)
	if err != nil {
		return err
	}
	if err := q.Client.LPush(ctx, q.Key, payload).Err(); err != nil {
		return fmt.Errorf("enqueue %s event %s: %w", event.Kind, event.ID, err)
	}
	return nil
}

type popResult struct {
	payload []byte
	err     error
}

// Dequeue waits up to timeout for the oldest event. Cancelling ctx returns
// at once; a value popped after that is pushed back to the head of the queue.
func (q *FanoutQueueRedis) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		abandoned bool
		ch        = make(chan popResult, 1)
	)

	go func() {
		vals, err := q.Client.BRPop(context.WithoutCancel(ctx), timeout, q.Key).Result()
		res := popResult{err: err}
		if errors.Is(err, redis.Nil) {
			res.err = nil
		} else if err == nil && len(vals) == 2 {
			res.payload = []byte(vals[1])
		}

		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			if res.payload != nil {
				// RPUSH puts it back where BRPOP will see it first
				_ = q.Client.RPush(context.WithoutCancel(ctx), q.Key, vals[1]).Err()
			}
			return
		}
		ch <- res
	}()

	select {
	case res := <-ch:
		return res.payload, res.err
	case <-ctx.Done():
		mu.Lock()
		defer mu.Unlock()
		abandoned = true
		select {
		case res := <-ch:
			if res.payload != nil {
				return res.payload, nil
			}
		default:
		}
		return nil, ctx.Err()
	}
}
