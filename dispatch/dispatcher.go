package dispatch

import (
	"context"
	"sync"

	"github.com/wizarding-anonymous/cryo-sub004/log"
)

// Task is a unit of background work. Errors are logged, never propagated:
// callers of Enqueue have already moved on.
type Task func(ctx context.Context) error

type job struct {
	name string
	task Task
}

// Dispatcher is a bounded fire-and-forget task queue.
type Dispatcher struct {
	queue   chan job
	workers int
	logger  log.Logger
	wg      sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// New creates a dispatcher with the given worker count and queue capacity.
func New(workers, queueSize int, logger log.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}

	if queueSize < 1 {
		queueSize = 1
	}

	if logger == nil {
		logger = &log.NoneLogger{}
	}

	return &Dispatcher{
		queue:   make(chan job, queueSize),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)

		go d.worker()
	}

	d.logger.Infof("Dispatcher started with %d workers (queue capacity %d)", d.workers, cap(d.queue))
}

// Enqueue submits a task without blocking. Returns false when the task was
// dropped, either because the queue is full or the dispatcher has stopped.
func (d *Dispatcher) Enqueue(name string, task Task) bool {
	// The read lock holds off Stop so the queue cannot be closed between the
	// stopped check and the send.
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.logger.Warnf("Dispatcher stopped, dropping task: %s", name)

		return false
	}

	select {
	case d.queue <- job{name: name, task: task}:
		return true
	default:
		d.logger.Warnf("Dispatcher queue full, dropping task: %s", name)

		return false
	}
}

// Stop closes the queue and waits for the workers to drain outstanding
// tasks. Tasks enqueued after Stop are dropped.
func (d *Dispatcher) Stop() {
	d.mu.Lock()

	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}

	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Dispatcher stopped")
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for j := range d.queue {
		d.run(j)
	}
}

func (d *Dispatcher) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Errorf("Background task %s panicked: %v", j.name, r)
		}
	}()

	if err := j.task(context.Background()); err != nil {
		d.logger.Warnf("Background task %s failed: %v", j.name, err)
	}
}
