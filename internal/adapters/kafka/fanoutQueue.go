package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialfeed/internal/core/fanout"

	k "github.com/segmentio/kafka-go"
	"github.com/zeebo/errs"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (k.Message, error)
	CommitMessages(ctx context.Context, msgs ...k.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...k.Message) error
	Close() error
}

// FanoutQueueKafka publishes events keyed by PartitionKey so one author's or
// follower's events stay in order on a partition. Offsets are committed as
// soon as a message is handed out, matching the drop-on-failure worker.
type FanoutQueueKafka struct {
	reader messageReader
	writer messageWriter
}

func NewFanoutQueueKafka(brokers []string, topic, groupID string) *FanoutQueueKafka {
	return &FanoutQueueKafka{
		reader: k.NewReader(k.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          topic,
			MinBytes:       1,
			MaxBytes:       10e6,
			MaxWait:        500 * time.Millisecond,
			CommitInterval: time.Second,
		}),
		writer: &k.Writer{
			Addr:         k.TCP(brokers...),
			Topic:        topic,
			Balancer:     &k.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: k.RequireAll,
		},
	}
}

func (q *FanoutQueueKafka) Enqueue(ctx context.Context, event fanout.Event) error {
	payload, err := fanout.Marshal(event)
	if err != nil {
		return err
	}
	err = q.writer.WriteMessages(ctx, k.Message{
		Key:   []byte(event.PartitionKey()),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish %s event %s: %w", event.Kind, event.ID, err)
	}
	return nil
}

func (q *FanoutQueueKafka) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m, err := q.reader.FetchMessage(fetchCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch fanout event: %w", err)
	}

	if err := q.reader.CommitMessages(context.WithoutCancel(ctx), m); err != nil {
		return nil, fmt.Errorf("commit offset %d: %w", m.Offset, err)
	}
	return m.Value, nil
}

func (q *FanoutQueueKafka) Close() error {
	return errs.Combine(q.writer.Close(), q.reader.Close())
}
