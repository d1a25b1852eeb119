// Package notify runs side effects (logging, fan-out to API subscribers)
// on a small fixed pool of background workers so they never block the
// event path.
package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrWaitTimeout is returned by Close when workers outlive the join wait.
var ErrWaitTimeout = errors.New("notify workers did not finish in time")

// Job is one unit of background work.
type Job func(ctx context.Context) error

// PoolConfig configures the pool.
type PoolConfig struct {
	Workers int // fixed number of workers (default: 2)
	Queue   int // pending jobs before Submit drops (default: 64)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Workers: 2, Queue: 64}
}

// Pool is a fire-and-forget worker pool.
type Pool struct {
	jobs   chan Job
	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	submitted int64
	dropped   int64
	failed    int64
	done      int64
	workers   int
}

// NewPool starts the workers.
func NewPool(config PoolConfig) *Pool {
	def := DefaultPoolConfig()
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.Queue <= 0 {
		config.Queue = def.Queue
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:    make(chan Job, config.Queue),
		ctx:     ctx,
		cancel:  cancel,
		workers: config.Workers,
	}
	for i := 0; i < config.Workers; i++ {
		p.group.Go(p.work)
	}
	return p
}

func (p *Pool) work() error {
	for job := range p.jobs {
		if err := job(p.ctx); err != nil {
			atomic.AddInt64(&p.failed, 1)
			log.Debug().Err(err).Msg("notify-job-failed")
		}
		atomic.AddInt64(&p.done, 1)
	}
	return nil
}

// Submit queues a job without blocking. It returns false if the queue is
// full or the pool is closed.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		atomic.AddInt64(&p.dropped, 1)
		return false
	}

	select {
	case p.jobs <- job:
		atomic.AddInt64(&p.submitted, 1)
		return true
	default:
		atomic.AddInt64(&p.dropped, 1)
		return false
	}
}

// Close stops accepting jobs and waits up to wait for queued ones to
// finish. Jobs still running after that see their context cancelled.
func (p *Pool) Close(wait time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	finished := make(chan error, 1)
	go func() { finished <- p.group.Wait() }()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case err := <-finished:
		p.cancel()
		return err
	case <-timer.C:
		p.cancel()
		return ErrWaitTimeout
	}
}

// PoolStats reports pool counters.
type PoolStats struct {
	Workers   int   `json:"workers"`
	Queued    int   `json:"queued"`
	Submitted int64 `json:"submitted"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
	Done      int64 `json:"done"`
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:   p.workers,
		Queued:    len(p.jobs),
		Submitted: atomic.LoadInt64(&p.submitted),
		Dropped:   atomic.LoadInt64(&p.dropped),
		Failed:    atomic.LoadInt64(&p.failed),
		Done:      atomic.LoadInt64(&p.done),
	}
}
