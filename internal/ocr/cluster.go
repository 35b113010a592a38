// Package ocr provides the recognition cluster: a fixed-size pool of
// isolated OCR workers fed from a FIFO queue. Each submitted job completes
// exactly once with recognized text or a failure.
package ocr

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/draftlens/draftlens/internal/errors"
)

// DefaultWorkers is the pool size used when the caller passes zero.
const DefaultWorkers = 4

// Job is one unit of OCR work. Params are passed opaquely to the engine.
type Job struct {
	Image  []byte
	Lang   string
	Params map[string]string
}

// Result of one recognition job.
type Result struct {
	Text string
}

// Outcome is delivered exactly once per submitted job.
type Outcome struct {
	Result Result
	Err    error
}

// Engine performs a single blocking recognition call. Implementations must
// honor context cancellation at least between calls.
type Engine interface {
	Recognize(ctx context.Context, job Job) (Result, error)
	Close() error
}

type pending struct {
	ctx  context.Context
	job  Job
	done chan Outcome
}

type worker struct {
	id     int
	engine Engine
	jobs   chan *pending
	busy   bool
}

// Cluster dispatches jobs to the first idle worker, queueing when all are
// busy. The logical queue is unbounded; callers throttle naturally because
// one detection pass emits at most a few dozen jobs.
type Cluster struct {
	mu      sync.Mutex
	workers []*worker
	queue   []*pending
	timeout time.Duration
	closed  bool
	wg      sync.WaitGroup
}

// New builds a cluster of size workers, creating one engine per worker so a
// wedged engine never affects its siblings. timeout bounds each job; zero
// disables the bound.
func New(size int, timeout time.Duration, factory func() (Engine, error)) (*Cluster, error) {
	if size <= 0 {
		size = DefaultWorkers
	}
	c := &Cluster{timeout: timeout}
	for i := 0; i < size; i++ {
		engine, err := factory()
		if err != nil {
			c.Close()
			return nil, errors.Wrapf(err, errors.CodeRecognitionFailure, "creating ocr engine %d", i)
		}
		w := &worker{id: i, engine: engine, jobs: make(chan *pending, 1)}
		c.workers = append(c.workers, w)
		c.wg.Add(1)
		go c.run(w)
	}
	return c, nil
}

// Submit enqueues a job and returns a future holding its single outcome.
func (c *Cluster) Submit(ctx context.Context, job Job) <-chan Outcome {
	p := &pending{ctx: ctx, job: job, done: make(chan Outcome, 1)}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		p.done <- Outcome{Err: errors.New(errors.CodeRecognitionFailure, "cluster closed")}
		return p.done
	}
	for _, w := range c.workers {
		if !w.busy {
			w.busy = true
			c.mu.Unlock()
			w.jobs <- p
			return p.done
		}
	}
	c.queue = append(c.queue, p)
	c.mu.Unlock()
	return p.done
}

// run is one worker's loop: execute the assigned job, then drain the queue
// until empty before going idle.
func (c *Cluster) run(w *worker) {
	defer c.wg.Done()
	for p := range w.jobs {
		for p != nil {
			p.done <- c.execute(w, p)
			p = c.next(w)
		}
	}
}

// next pops the oldest queued job for a worker that just finished, or marks
// the worker idle when the queue is empty.
func (c *Cluster) next(w *worker) *pending {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) > 0 {
		p := c.queue[0]
		c.queue = c.queue[1:]
		return p
	}
	w.busy = false
	return nil
}

func (c *Cluster) execute(w *worker, p *pending) Outcome {
	ctx := p.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := w.engine.Recognize(ctx, p.job)
	if err != nil {
		slog.Debug("ocr job failed", "worker", w.id, "error", err)
		return Outcome{Err: errors.Wrap(err, errors.CodeRecognitionFailure, "ocr job failed")}
	}
	return Outcome{Result: result}
}

// QueueLen reports the number of jobs waiting for a worker.
func (c *Cluster) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Close stops all workers and releases their engines. Queued jobs that were
// never dispatched fail with a closed-cluster error.
func (c *Cluster) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	stranded := c.queue
	c.queue = nil
	workers := c.workers
	c.mu.Unlock()

	for _, p := range stranded {
		p.done <- Outcome{Err: errors.New(errors.CodeRecognitionFailure, "cluster closed")}
	}
	for _, w := range workers {
		close(w.jobs)
	}
	c.wg.Wait()
	for _, w := range workers {
		if w.engine != nil {
			_ = w.engine.Close()
		}
	}
}
