package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"socialfeed/internal/core/fanout"
	"socialfeed/internal/metrics"
	fanoutPort "socialfeed/internal/ports/fanout"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// ErrWorker is returned for lifecycle misuse such as starting twice.
var ErrWorker = errs.Class("fanout worker")

const (
	defaultPoolSize        = 10
	defaultPollTimeout     = 3 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	dequeueErrorBackoff    = time.Second
	// abandonGrace is how long Stop still waits once in-flight tasks are cancelled.
	abandonGrace = time.Second
)

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Dispatcher runs the handler for one raw queue payload.
type Dispatcher interface {
	Dispatch(ctx context.Context, raw []byte) (fanout.Event, error)
}

// FanoutWorker drains the fan-out queue with one consumer goroutine feeding a
// fixed pool of task goroutines. Failed events are logged and dropped.
type FanoutWorker struct {
	Queue           fanoutPort.Queue
	Dispatcher      Dispatcher
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
	PoolSize        int
	PollTimeout     time.Duration
	ShutdownTimeout time.Duration

	mu           sync.Mutex
	state        State
	tasks        chan []byte
	stopConsume  context.CancelFunc
	cancelTasks  context.CancelFunc
	consumerDone chan struct{}
	pool         *sync.WaitGroup
}

func NewFanoutWorker(
	queue fanoutPort.Queue,
	dispatcher Dispatcher,
	poolSize int,
	pollTimeout, shutdownTimeout time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *FanoutWorker {
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &FanoutWorker{
		Queue:           queue,
		Dispatcher:      dispatcher,
		Logger:          logger,
		Metrics:         m,
		PoolSize:        poolSize,
		PollTimeout:     pollTimeout,
		ShutdownTimeout: shutdownTimeout,
	}
}

func (w *FanoutWorker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Start launches the consumer and the task pool and returns immediately.
// It fails unless the worker is stopped.
func (w *FanoutWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateStopped {
		return ErrWorker.New("start while %s", w.state)
	}
	w.state = StateStarting

	consumeCtx, stopConsume := context.WithCancel(ctx)
	taskCtx, cancelTasks := context.WithCancel(ctx)
	// each run owns its tasks channel and pool
	tasks := make(chan []byte, w.PoolSize)
	pool := &sync.WaitGroup{}
	w.stopConsume = stopConsume
	w.cancelTasks = cancelTasks
	w.tasks = tasks
	w.pool = pool
	w.consumerDone = make(chan struct{})

	for i := 0; i < w.PoolSize; i++ {
		pool.Add(1)
		go func() {
			defer pool.Done()
			for raw := range tasks {
				w.process(taskCtx, raw)
			}
		}()
	}
	go w.consume(consumeCtx, taskCtx, w.tasks, w.consumerDone)

	w.state = StateRunning
	w.Logger.Info("fanout worker started",
		zap.Int("poolSize", w.PoolSize),
		zap.Duration("pollTimeout", w.PollTimeout))
	return nil
}

// Stop interrupts the consumer, lets queued tasks finish for up to
// ShutdownTimeout and then cancels them. Tasks that still have not returned
// after a short grace period are abandoned. Stopping a worker that is not
// running does nothing.
func (w *FanoutWorker) Stop() {
	w.mu.Lock()
	if w.state != StateRunning {
		w.mu.Unlock()
		return
	}
	w.state = StateStopping
	tasks, consumerDone, pool := w.tasks, w.consumerDone, w.pool
	stopConsume, cancelTasks := w.stopConsume, w.cancelTasks
	w.mu.Unlock()

	w.Logger.Info("fanout worker stopping")
	stopConsume()

	drained := make(chan struct{})
	go func() {
		<-consumerDone
		// only the consumer sends, so closing after it exits is safe
		close(tasks)
		pool.Wait()
		close(drained)
	}()

	timer := time.NewTimer(w.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-drained:
	case <-timer.C:
		w.Logger.Warn("fanout worker shutdown timed out, cancelling in-flight tasks",
			zap.Duration("timeout", w.ShutdownTimeout))
		cancelTasks()
		grace := time.NewTimer(abandonGrace)
		defer grace.Stop()
		select {
		case <-drained:
		case <-grace.C:
			w.Logger.Error("fanout worker abandoned tasks that ignored cancellation",
				zap.Duration("grace", abandonGrace))
		}
	}
	cancelTasks()

	w.mu.Lock()
	w.state = StateStopped
	w.mu.Unlock()
	w.Logger.Info("fanout worker stopped")
}

func (w *FanoutWorker) consume(ctx, taskCtx context.Context, tasks chan<- []byte, done chan<- struct{}) {
	defer close(done)
	for {
		if ctx.Err() != nil {
			return
		}

		raw, err := w.Queue.Dequeue(ctx, w.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.Logger.Error("dequeue fanout event", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(dequeueErrorBackoff):
			}
			continue
		}
		if raw == nil {
			continue
		}

		select {
		case tasks <- raw:
		case <-taskCtx.Done():
			w.Logger.Error("fanout event dropped on shutdown", zap.ByteString("payload", raw))
			w.Metrics.EventDropped("")
			return
		}
	}
}

// panicLabel counts events whose handler panicked, decoded or not.
const panicLabel = "panic"

// process never lets a handler failure or panic escape the task goroutine.
func (w *FanoutWorker) process(ctx context.Context, raw []byte) {
	var event fanout.Event
	defer func() {
		if r := recover(); r != nil {
			w.Logger.Error("fanout handler panicked",
				zap.String("kind", string(event.Kind)),
				zap.String("eventID", event.ID),
				zap.Any("panic", r))
			w.Metrics.EventDropped(panicLabel)
		}
	}()

	event, err := w.Dispatcher.Dispatch(ctx, raw)
	if err != nil {
		kind := string(event.Kind)
		if fanout.ErrUnknownKind.Has(err) {
			kind = "unknown"
		}
		w.Logger.Error("fanout event dropped",
			zap.String("kind", string(event.Kind)),
			zap.String("eventID", event.ID),
			zap.Error(err))
		w.Metrics.EventDropped(kind)
		return
	}
	w.Metrics.EventProcessed(string(event.Kind))
}
