package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsJobs(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 2, Queue: 8})

	var n int64
	for i := 0; i < 5; i++ {
		require.True(t, p.Submit(func(context.Context) error {
			atomic.AddInt64(&n, 1)
			return nil
		}))
	}
	require.NoError(t, p.Close(time.Second))

	assert.Equal(t, int64(5), atomic.LoadInt64(&n))
	stats := p.Stats()
	assert.Equal(t, int64(5), stats.Submitted)
	assert.Equal(t, int64(5), stats.Done)
	assert.Equal(t, 2, stats.Workers)
}

func TestPoolDropsWhenFull(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1, Queue: 1})
	release := make(chan struct{})
	started := make(chan struct{})

	require.True(t, p.Submit(func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started
	require.True(t, p.Submit(func(context.Context) error { return nil }))
	require.False(t, p.Submit(func(context.Context) error { return nil }))

	close(release)
	require.NoError(t, p.Close(time.Second))
	assert.Equal(t, int64(1), p.Stats().Dropped)

	require.False(t, p.Submit(func(context.Context) error { return nil }), "closed pool")
}

func TestPoolCloseTimesOut(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1})
	cancelled := make(chan struct{})

	p.Submit(func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})

	err := p.Close(50 * time.Millisecond)
	require.ErrorIs(t, err, ErrWaitTimeout)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled")
	}
	require.NoError(t, p.Close(time.Second), "second close is a no-op")
}

func TestPoolCountsFailures(t *testing.T) {
	p := NewPool(PoolConfig{Workers: 1})
	p.Submit(func(context.Context) error { return errors.New("boom") })
	require.NoError(t, p.Close(time.Second))
	assert.Equal(t, int64(1), p.Stats().Failed)
}

func TestNotifierFansOut(t *testing.T) {
	pool := NewPool(DefaultPoolConfig())

	var mu sync.Mutex
	var got []string
	record := func(tag string) Sink {
		return SinkFunc(func(_ context.Context, n Notice) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, tag+":"+n.Kind)
			return nil
		})
	}

	n := NewNotifier(pool, record("a"), LogSink{Level: zerolog.DebugLevel})
	n.AddSink(record("b"))
	n.Publish(Notice{Kind: KindPlan, Text: "24-18, 13-11"})
	require.NoError(t, pool.Close(time.Second))

	assert.ElementsMatch(t, []string{"a:plan", "b:plan"}, got)
}

func TestNotifierSynchronousWithoutPool(t *testing.T) {
	var at time.Time
	n := NewNotifier(nil, SinkFunc(func(_ context.Context, notice Notice) error {
		at = notice.At
		return nil
	}))
	n.Publish(Notice{Kind: KindRoll})
	assert.False(t, at.IsZero())

	var nilNotifier *Notifier
	nilNotifier.Publish(Notice{Kind: KindRoll})
}
