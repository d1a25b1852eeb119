package api

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolFast(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 2, MaxGnubgWorkers: 1})

	require.NoError(t, pool.AcquireFast(context.Background()))
	assert.Equal(t, int64(1), pool.Stats().ActiveFast)

	pool.ReleaseFast()
	stats := pool.Stats()
	assert.Equal(t, int64(0), stats.ActiveFast)
	assert.Equal(t, int64(1), stats.TotalFast)
}

func TestWorkerPoolGnubgSlots(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 10, MaxGnubgWorkers: 2})
	ctx := context.Background()

	require.NoError(t, pool.AcquireGnubg(ctx))
	require.NoError(t, pool.AcquireGnubg(ctx))
	assert.Equal(t, int64(2), pool.Stats().ActiveGnubg)
	assert.False(t, pool.TryAcquireGnubg(), "third gnubg slot")

	pool.ReleaseGnubg()
	assert.True(t, pool.TryAcquireGnubg())
	pool.ReleaseGnubg()
	pool.ReleaseGnubg()

	assert.Equal(t, int64(3), pool.Stats().TotalGnubg)
}

func TestWorkerPoolContextCancellation(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 1, MaxGnubgWorkers: 1})
	require.NoError(t, pool.AcquireFast(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pool.AcquireFast(ctx), context.Canceled)

	pool.ReleaseFast()
}

func TestWorkerPoolConcurrency(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 5, MaxGnubgWorkers: 2})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := pool.AcquireFast(context.Background()); err != nil {
				t.Errorf("acquire: %v", err)
				return
			}
			time.Sleep(10 * time.Millisecond)
			pool.ReleaseFast()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), pool.Stats().TotalFast)
}

func TestWorkerPoolTimeout(t *testing.T) {
	pool := NewWorkerPool(PoolConfig{MaxFastWorkers: 1, MaxGnubgWorkers: 1})
	require.NoError(t, pool.AcquireGnubg(context.Background()))

	assert.ErrorIs(t, pool.AcquireGnubgWithTimeout(10*time.Millisecond), context.DeadlineExceeded)
	pool.ReleaseGnubg()
}

func TestWorkerPoolDefaults(t *testing.T) {
	stats := NewWorkerPool(PoolConfig{}).Stats()
	assert.Equal(t, 100, stats.MaxFast)
	assert.Equal(t, 2, stats.MaxGnubg)
}
