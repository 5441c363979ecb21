package queue

import (
	"context"
	"errors"
	"runtime"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stashly/stash-api/internal/api/metrics"
)

const channelBuffer = 256

var ErrPoolStopped = errors.New("worker pool stopped")

type job struct {
	fn   func()
	done chan struct{}
}

// WorkerPool runs CPU-bound jobs on a fixed set of goroutines so that bursts
// of password hashing cannot fan out to one goroutine per request.
type WorkerPool struct {
	name string
	jobs chan job
	log  zerolog.Logger

	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// NewWorkerPool creates a pool with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewWorkerPool(name string, numWorkers int, log zerolog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	p := &WorkerPool{
		name:    name,
		jobs:    make(chan job, channelBuffer),
		log:     log,
		stopped: make(chan struct{}),
	}
	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(i)
	}
	return p
}

// Do runs fn on a pool worker and blocks until it finishes or ctx is done.
// When ctx ends first, fn may still run later; its result must be discarded.
func (p *WorkerPool) Do(ctx context.Context, fn func()) error {
	select {
	case <-p.stopped:
		return ErrPoolStopped
	default:
	}

	j := job{fn: fn, done: make(chan struct{})}
	select {
	case <-p.stopped:
		return ErrPoolStopped
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- j:
		metrics.WorkerQueueDepth.WithLabelValues(p.name).Set(float64(len(p.jobs)))
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop signals workers to exit and waits for in-flight jobs to finish.
// Jobs still queued are dropped; their callers see ErrPoolStopped or ctx errors.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
	})
	p.wg.Wait()
}

func (p *WorkerPool) runWorker(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopped:
			return
		case j := <-p.jobs:
			metrics.WorkerQueueDepth.WithLabelValues(p.name).Set(float64(len(p.jobs)))
			p.run(id, j)
		}
	}
}

func (p *WorkerPool) run(id int, j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Str("pool", p.name).
				Str("worker_id", strconv.Itoa(id)).
				Interface("panic", r).
				Msg("worker job panicked")
		}
	}()
	j.fn()
}
