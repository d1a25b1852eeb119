// Package engine runs one game-state event through the whole pipeline:
// identifiers, gnubg, reply parsing, plan normalization, simulation and the
// turn gate, producing a Decision for the automation layer.
package engine

import (
	"context"
	"time"

	"github.com/yourusername/bgpilot/internal/notify"
	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/gnubg"
	"github.com/yourusername/bgpilot/pkg/turn"
)

// Debounce kinds.
const (
	GateCubeRespond = "cube_respond"
	GateCubeOffer   = "cube_offer"
	GateRoll        = "roll"
	GatePlan        = "plan"
	GateHint        = "hint"
)

// Hinter asks gnubg for a recommendation.
type Hinter interface {
	Hint(ctx context.Context, req gnubg.Request) gnubg.Response
}

// Dispatcher performs one move on the table. It is called once per
// elementary move, in order, while the turn is still live.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Dispatch) error
}

// EngineOptions configures the pipeline.
type EngineOptions struct {
	HeroID      game.PlayerID // player we act for; empty advises whoever is on roll
	DebounceTTL time.Duration // per-gate debounce window
}

// DefaultEngineOptions returns sensible defaults.
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{DebounceTTL: 450 * time.Millisecond}
}

// Engine is the event pipeline. Events must be fed from a single goroutine.
type Engine struct {
	hinter     Hinter
	turns      *turn.Coordinator
	notifier   *notify.Notifier
	dispatcher Dispatcher
	options    EngineOptions
}

// NewEngine creates an engine. notifier and dispatcher may be nil.
func NewEngine(h Hinter, turns *turn.Coordinator, notifier *notify.Notifier, opts EngineOptions) *Engine {
	if turns == nil {
		turns = turn.NewCoordinator()
	}
	return &Engine{
		hinter:   h,
		turns:    turns,
		notifier: notifier,
		options:  opts,
	}
}

// SetDispatcher installs the automation collaborator.
func (e *Engine) SetDispatcher(d Dispatcher) { e.dispatcher = d }

// Turns returns the turn coordinator.
func (e *Engine) Turns() *turn.Coordinator { return e.turns }

// Options returns the engine options.
func (e *Engine) Options() EngineOptions { return e.options }

func (e *Engine) hero(ev *game.Event) game.PlayerID {
	if e.options.HeroID != "" {
		return e.options.HeroID
	}
	return ev.Mover()
}

func (e *Engine) publish(kind string, ev *game.Event, text string, fields map[string]string) {
	e.notifier.Publish(notify.Notice{Kind: kind, Game: ev.GameKey(), Text: text, Fields: fields})
}
