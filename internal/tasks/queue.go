// Package tasks runs best-effort background work off the request path.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Task is one unit of background work. Its error is logged, never returned to the submitter.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue is a bounded queue drained by a fixed set of workers.
// Submit never blocks: when the buffer is full the task is dropped.
type Queue struct {
	tasks       chan Task
	log         zerolog.Logger
	taskTimeout time.Duration
	onDrop      func(Task)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts workers goroutines consuming a buffer of size entries.
func NewQueue(size, workers int, taskTimeout time.Duration, log zerolog.Logger) *Queue {
	if size <= 0 {
		size = 1
	}
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		tasks:       make(chan Task, size),
		log:         log,
		taskTimeout: taskTimeout,
		ctx:         ctx,
		cancel:      cancel,
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

// OnDrop registers a callback invoked for every task rejected by Submit.
func (q *Queue) OnDrop(fn func(Task)) {
	q.onDrop = fn
}

// Submit enqueues t and reports whether it was accepted.
func (q *Queue) Submit(t Task) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(t, "queue closed")
		return false
	}
	select {
	case q.tasks <- t:
		return true
	default:
		q.drop(t, "queue full")
		return false
	}
}

func (q *Queue) drop(t Task, reason string) {
	q.log.Warn().Str("task", t.Name).Str("reason", reason).Msg("background task dropped")
	if q.onDrop != nil {
		q.onDrop(t)
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
// If ctx expires first, in-flight tasks are cancelled and Close returns ctx.Err().
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for t := range q.tasks {
		q.run(t)
	}
}

func (q *Queue) run(t Task) {
	ctx := q.ctx
	if q.taskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.taskTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Str("task", t.Name).Interface("panic", r).Msg("background task panicked")
		}
	}()

	if err := t.Run(ctx); err != nil {
		q.log.Warn().Err(err).Str("task", t.Name).Msg("background task failed")
	}
}
