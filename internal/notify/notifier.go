package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notice kinds.
const (
	KindPlan     = "plan"
	KindCube     = "cube"
	KindRoll     = "roll"
	KindSimError = "sim_error"
	KindEngine   = "engine_error"
)

// Notice is one message about a decision.
type Notice struct {
	Kind   string            `json:"kind"`
	Game   string            `json:"game,omitempty"`
	Text   string            `json:"text"`
	Fields map[string]string `json:"fields,omitempty"`
	At     time.Time         `json:"at"`
}

// Sink receives notices.
type Sink interface {
	Notify(ctx context.Context, n Notice) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, n Notice) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, n Notice) error { return f(ctx, n) }

// LogSink writes notices to the global logger.
type LogSink struct {
	Level zerolog.Level
}

// Notify logs n.
func (s LogSink) Notify(_ context.Context, n Notice) error {
	ev := log.WithLevel(s.Level).Str("kind", n.Kind).Str("game", n.Game)
	for k, v := range n.Fields {
		ev = ev.Str(k, v)
	}
	ev.Msg(n.Text)
	return nil
}

// Notifier fans notices out to sinks through a pool.
type Notifier struct {
	pool  *Pool
	mu    sync.RWMutex
	sinks []Sink
}

// NewNotifier creates a notifier. A nil pool delivers synchronously.
func NewNotifier(pool *Pool, sinks ...Sink) *Notifier {
	return &Notifier{pool: pool, sinks: sinks}
}

// AddSink registers another sink.
func (n *Notifier) AddSink(s Sink) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sinks = append(n.sinks, s)
}

// Publish delivers a notice to every sink without waiting.
func (n *Notifier) Publish(notice Notice) {
	if n == nil {
		return
	}
	if notice.At.IsZero() {
		notice.At = time.Now()
	}

	n.mu.RLock()
	sinks := append([]Sink(nil), n.sinks...)
	n.mu.RUnlock()

	for _, s := range sinks {
		job := func(ctx context.Context) error { return s.Notify(ctx, notice) }
		if n.pool == nil {
			_ = job(context.Background())
			continue
		}
		if !n.pool.Submit(job) {
			log.Debug().Str("kind", notice.Kind).Msg("notice-dropped")
		}
	}
}
