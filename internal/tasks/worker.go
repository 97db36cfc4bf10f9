package tasks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/retry"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/srv"
)

const (
	dequeueTimeout  = 2 * time.Second
	promoteInterval = time.Second
	beatInterval    = time.Hour

	// taskTimeout caps one dispatch including its in-process retries. It has
	// to cover three one-minute retry delays plus the provider calls.
	taskTimeout = 10 * time.Minute
)

type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

type handlerEntry struct {
	fn      HandlerFunc
	retrier *retry.Retrier
}

// Worker consumes the queue and runs one task at a time. It also owns the
// poller that promotes delayed tasks and the beat ticker that enqueues
// periodic ones. Register everything before Start; the handler map is not
// guarded.
type Worker struct {
	queue     *Queue
	handlers  map[string]handlerEntry
	beatTasks []string

	stop chan struct{}
	wg   sync.WaitGroup
}

var _ srv.Service = (*Worker)(nil)

func NewWorker(queue *Queue) *Worker {
	return &Worker{
		queue:    queue,
		handlers: make(map[string]handlerEntry),
		stop:     make(chan struct{}),
	}
}

// Register binds a task name to a handler. A nil retryCfg means a single
// attempt.
func (w *Worker) Register(task string, fn HandlerFunc, retryCfg *retry.Config) {
	entry := handlerEntry{fn: fn}
	if retryCfg != nil {
		entry.retrier = retry.NewRetrier(retryCfg)
	}
	w.handlers[task] = entry
}

// RegisterPeriodic additionally enqueues the task on every beat tick. Every
// worker runs the beat, so periodic handlers must tolerate overlapping runs.
func (w *Worker) RegisterPeriodic(task string, fn HandlerFunc) {
	w.Register(task, fn, nil)
	w.beatTasks = append(w.beatTasks, task)
}

// Start blocks consuming the queue until the context is canceled or Shutdown
// is called.
func (w *Worker) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().
		Int("handlers", len(w.handlers)).
		Msg("task worker started")

	w.wg.Add(3)
	go w.promoteLoop(ctx)
	go w.beatLoop(ctx)
	w.consumeLoop(ctx)
	return nil
}

// Shutdown stops the loops and waits for them; an in-flight task finishes on
// its own deadline first.
func (w *Worker) Shutdown(context.Context) error {
	close(w.stop)
	w.wg.Wait()
	return nil
}

func (w *Worker) consumeLoop(ctx context.Context) {
	defer w.wg.Done()
	logger := log.FromCtx(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		env, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("task dequeue failed")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			case <-w.stop:
				return
			}
			continue
		}
		if env == nil {
			continue
		}
		w.dispatch(ctx, env)
	}
}

func (w *Worker) dispatch(ctx context.Context, env *Envelope) {
	logger := log.FromCtx(ctx).With().
		Str("task", env.Task).
		Str("task_id", env.ID).
		Logger()

	entry, ok := w.handlers[env.Task]
	if !ok {
		logger.Error().Msg("no handler registered for task")
		return
	}

	// A shutdown signal must not kill the running task; it gets its own
	// deadline instead.
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), taskTimeout)
	defer cancel()
	taskCtx = logger.WithContext(taskCtx)

	started := time.Now()
	run := func() error { return entry.fn(taskCtx, env.Payload) }

	var err error
	if entry.retrier != nil {
		err = entry.retrier.Do(taskCtx, run)
	} else {
		err = run()
	}
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("task failed")
		return
	}
	logger.Info().Dur("elapsed", time.Since(started)).Msg("task done")
}

func (w *Worker) promoteLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(promoteInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			moved, err := w.queue.PromoteDue(ctx, time.Now())
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.FromCtx(ctx).Error().Err(err).Msg("failed to promote scheduled tasks")
				continue
			}
			if moved > 0 {
				log.FromCtx(ctx).Debug().Int("count", moved).Msg("promoted scheduled tasks")
			}
		}
	}
}

func (w *Worker) beatLoop(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(beatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			for _, task := range w.beatTasks {
				if err := w.queue.Enqueue(ctx, task, nil); err != nil {
					log.FromCtx(ctx).Error().Err(err).Str("task", task).Msg("failed to enqueue periodic task")
				}
			}
		}
	}
}
