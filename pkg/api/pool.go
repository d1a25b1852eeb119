package api

import (
	"context"
	"sync/atomic"
	"time"
)

// WorkerPool limits concurrent request processing. Fast operations (codecs,
// parsing, simulation) and gnubg operations (hints, events) draw from
// separate slots; gnubg slots bound the number of live subprocesses.
type WorkerPool struct {
	fastSem     chan struct{}
	gnubgSem    chan struct{}
	queuedFast  int64
	queuedGnubg int64
	activeFast  int64
	activeGnubg int64
	totalFast   int64
	totalGnubg  int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxFastWorkers  int // Max concurrent fast operations (default: 100)
	MaxGnubgWorkers int // Max concurrent gnubg subprocesses (default: 2)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxFastWorkers:  100,
		MaxGnubgWorkers: 2,
	}
}

// NewWorkerPool creates a new worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	def := DefaultPoolConfig()
	if config.MaxFastWorkers <= 0 {
		config.MaxFastWorkers = def.MaxFastWorkers
	}
	if config.MaxGnubgWorkers <= 0 {
		config.MaxGnubgWorkers = def.MaxGnubgWorkers
	}

	return &WorkerPool{
		fastSem:  make(chan struct{}, config.MaxFastWorkers),
		gnubgSem: make(chan struct{}, config.MaxGnubgWorkers),
	}
}

func acquire(ctx context.Context, sem chan struct{}, queued, active *int64) error {
	atomic.AddInt64(queued, 1)
	defer atomic.AddInt64(queued, -1)

	select {
	case sem <- struct{}{}:
		atomic.AddInt64(active, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func release(sem chan struct{}, active, total *int64) {
	atomic.AddInt64(active, -1)
	atomic.AddInt64(total, 1)
	<-sem
}

// AcquireFast acquires a slot for a fast operation.
// Returns an error if the context is cancelled while waiting.
func (p *WorkerPool) AcquireFast(ctx context.Context) error {
	return acquire(ctx, p.fastSem, &p.queuedFast, &p.activeFast)
}

// ReleaseFast releases a fast operation slot.
func (p *WorkerPool) ReleaseFast() {
	release(p.fastSem, &p.activeFast, &p.totalFast)
}

// AcquireGnubg acquires a slot for a gnubg run.
func (p *WorkerPool) AcquireGnubg(ctx context.Context) error {
	return acquire(ctx, p.gnubgSem, &p.queuedGnubg, &p.activeGnubg)
}

// ReleaseGnubg releases a gnubg slot.
func (p *WorkerPool) ReleaseGnubg() {
	release(p.gnubgSem, &p.activeGnubg, &p.totalGnubg)
}

// TryAcquireGnubg acquires a gnubg slot without blocking.
func (p *WorkerPool) TryAcquireGnubg() bool {
	select {
	case p.gnubgSem <- struct{}{}:
		atomic.AddInt64(&p.activeGnubg, 1)
		return true
	default:
		return false
	}
}

// AcquireGnubgWithTimeout tries to acquire a gnubg slot within timeout.
func (p *WorkerPool) AcquireGnubgWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.AcquireGnubg(ctx)
}

// PoolStats reports pool usage.
type PoolStats struct {
	ActiveFast  int64 `json:"active_fast"`
	ActiveGnubg int64 `json:"active_gnubg"`
	QueuedFast  int64 `json:"queued_fast"`
	QueuedGnubg int64 `json:"queued_gnubg"`
	TotalFast   int64 `json:"total_fast"`
	TotalGnubg  int64 `json:"total_gnubg"`
	MaxFast     int   `json:"max_fast"`
	MaxGnubg    int   `json:"max_gnubg"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveFast:  atomic.LoadInt64(&p.activeFast),
		ActiveGnubg: atomic.LoadInt64(&p.activeGnubg),
		QueuedFast:  atomic.LoadInt64(&p.queuedFast),
		QueuedGnubg: atomic.LoadInt64(&p.queuedGnubg),
		TotalFast:   atomic.LoadInt64(&p.totalFast),
		TotalGnubg:  atomic.LoadInt64(&p.totalGnubg),
		MaxFast:     cap(p.fastSem),
		MaxGnubg:    cap(p.gnubgSem),
	}
}
