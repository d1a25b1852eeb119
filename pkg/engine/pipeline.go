package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgpilot/internal/notify"
	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/gnubg"
	"github.com/yourusername/bgpilot/pkg/move"
	"github.com/yourusername/bgpilot/pkg/sim"
	"github.com/yourusername/bgpilot/pkg/turn"
)

// ProcessEvent runs one game-state event through the pipeline. Events the
// pipeline does not act on yield DecisionNone with a reason.
func (e *Engine) ProcessEvent(ctx context.Context, ev *game.Event) Decision {
	if ev == nil {
		return Decision{Kind: DecisionNone, Reason: "no event"}
	}
	hero := e.hero(ev)
	d := Decision{Kind: DecisionNone, Game: ev.GameKey()}

	switch {
	case ev.IsRespondState():
		return e.respondToDouble(ctx, ev, hero, d)
	case ev.CanRoll() && ev.Mover() == hero:
		return e.beforeRoll(ctx, ev, hero, d)
	case e.isPlayTurn(ev, hero):
		return e.playTurn(ctx, ev, hero, d)
	}
	d.Reason = "nothing to do"
	return d
}

func (e *Engine) isPlayTurn(ev *game.Event, hero game.PlayerID) bool {
	if hero == "" || ev.Mover() != hero {
		return false
	}
	switch ev.EventName() {
	case game.EventDiceRolled, game.EventGameStarted:
		return true
	}
	return ev.Has(game.ActionMoveChecker)
}

func gateKey(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = fmt.Sprint(p)
	}
	return strings.Join(s, "|")
}

func (e *Engine) respondToDouble(ctx context.Context, ev *game.Event, hero game.PlayerID, d Decision) Decision {
	posID, matchID, err := game.IDs(ev)
	if err != nil {
		return e.idFailure(ev, d, err)
	}
	d.PosID, d.MatchID = posID, matchID

	if !e.turns.ShouldFire(GateCubeRespond, gateKey(posID, matchID, hero, true), e.options.DebounceTTL) {
		d.Reason = "debounced"
		return d
	}

	resp := e.hinter.Hint(ctx, gnubg.Request{PosID: posID, MatchID: matchID, ReceivingDouble: true})
	d.Response = &resp
	d.Human = resp.Human
	d.Cube = resp.Cube
	d.CubeVerbose = resp.CubeVerbose

	d.Kind = DecisionTake
	if resp.Cube == gnubg.CubePass || resp.Cube == gnubg.CubeDoublePass {
		d.Kind = DecisionPass
	}
	if !resp.OK() {
		d.Reason = "engine failed; taking"
		e.publish(notify.KindEngine, ev, resp.Human, map[string]string{"pos": posID, "match": matchID})
	}

	log.Info().Str("game", d.Game).Str("pos", posID).Str("cube", string(resp.Cube)).Str("decision", string(d.Kind)).Msg("cube-respond")
	e.publish(notify.KindCube, ev, resp.CubeVerbose, map[string]string{"decision": string(d.Kind), "pos": posID, "match": matchID})
	return d
}

func (e *Engine) beforeRoll(ctx context.Context, ev *game.Event, hero game.PlayerID, d Decision) Decision {
	posID, matchID, err := game.IDs(ev)
	if err == nil {
		d.PosID, d.MatchID = posID, matchID
	}

	if ev.CanOfferDouble() && err == nil {
		if !e.turns.ShouldFire(GateCubeOffer, gateKey(posID, matchID, hero, false), e.options.DebounceTTL) {
			d.Reason = "debounced"
			return d
		}
		resp := e.hinter.Hint(ctx, gnubg.Request{PosID: posID, MatchID: matchID})
		d.Response = &resp
		d.Human = resp.Human
		d.Cube = resp.Cube
		d.CubeVerbose = resp.CubeVerbose

		d.Kind = DecisionRoll
		switch {
		case !resp.OK():
			d.Reason = "engine failed; rolling"
			e.publish(notify.KindEngine, ev, resp.Human, map[string]string{"pos": posID, "match": matchID})
		case resp.Cube == gnubg.CubeDoubleTake || resp.Cube == gnubg.CubeDoublePass:
			d.Kind = DecisionDouble
		}
		log.Info().Str("game", d.Game).Str("pos", posID).Str("cube", string(resp.Cube)).Str("decision", string(d.Kind)).Msg("cube-offer")
		e.publish(notify.KindCube, ev, resp.CubeVerbose, map[string]string{"decision": string(d.Kind), "pos": posID, "match": matchID})
		return d
	}

	if !e.turns.ShouldFire(GateRoll, gateKey(posID, hero), e.options.DebounceTTL) {
		d.Reason = "debounced"
		return d
	}
	d.Kind = DecisionRoll
	if err != nil {
		d.Reason = err.Error()
	}
	log.Info().Str("game", d.Game).Str("pos", posID).Msg("roll")
	e.publish(notify.KindRoll, ev, "Roll the dice", map[string]string{"pos": posID})
	return d
}

// ensureTurn returns the live token for hero's roll, starting a new turn on
// a fresh roll or when the live token names another owner or other dice.
func (e *Engine) ensureTurn(ev *game.Event, hero game.PlayerID, d1, d2 int) turn.Token {
	cur := e.turns.Current()
	switch {
	case ev.EventName() == game.EventDiceRolled, ev.EventName() == game.EventGameStarted,
		cur.Nonce == 0, cur.Owner != string(hero), cur.Dice != [2]int{d1, d2}:
		return e.turns.NewTurn(string(hero), d1, d2)
	}
	return cur
}

func (e *Engine) playTurn(ctx context.Context, ev *game.Event, hero game.PlayerID, d Decision) Decision {
	d1, d2 := ev.Data.CurrentTurn.Dice.Values()
	if d1 == 0 || d2 == 0 {
		d.Reason = "dice not rolled"
		return d
	}

	tok := e.ensureTurn(ev, hero, d1, d2)
	d.Turn = tok.String()
	if moves, _ := e.turns.Counters(); moves > 0 {
		d.Reason = "turn already played"
		return d
	}

	posID, matchID, err := game.IDs(ev)
	if err != nil {
		return e.idFailure(ev, d, err)
	}
	d.PosID, d.MatchID = posID, matchID

	if !e.turns.ShouldFire(GatePlan, gateKey(posID, d1, d2), e.options.DebounceTTL) ||
		!e.turns.ShouldFire(GateHint, gateKey(posID, matchID), e.options.DebounceTTL) {
		d.Reason = "debounced"
		return d
	}

	resp := e.hinter.Hint(ctx, gnubg.Request{PosID: posID, MatchID: matchID})
	d.Response = &resp
	d.Human = resp.Human
	if _, live := e.turns.CountHint(tok); !live {
		return stale(d, "engine reply")
	}

	switch {
	case !resp.OK():
		d.Reason = "engine failed"
		e.publish(notify.KindEngine, ev, resp.Human, map[string]string{"pos": posID, "match": matchID})
		return d
	case resp.Kind == gnubg.KindNoLegalMoves:
		d.Reason = "no legal moves"
		return d
	case len(resp.Moves) == 0:
		d.Reason = "no move in engine reply"
		return d
	}

	gctx := ev.GameContext()
	flip := gctx.Direction(hero) == game.LowToHigh
	board := ev.Data.Board

	log.Debug().Str("pos", posID).Strs("moves", resp.MachineMoves()).Msg("engine-moves")
	plan := e.expandBar(resp.Moves, d1, d2, board, hero, flip)
	d.EnginePlan = move.Optimize(plan)
	d.Plan = d.EnginePlan
	if flip {
		d.Plan = move.Invert(d.EnginePlan)
	}
	d.Short = move.Short(d.Plan)

	s := sim.New(board, hero)
	steps := make([]sim.Step, 0, len(d.Plan))
	for _, t := range d.Plan {
		if !e.turns.IsCurrent(tok) {
			return stale(d, "simulation")
		}
		steps = append(steps, s.Step(t))
	}
	d.Steps = StepResults(steps)
	d.Board = s.Board()

	if s.Failed() {
		res := sim.Result{Steps: steps}
		d.Reason = res.Err().Error()
		log.Warn().Str("game", d.Game).Str("pos", posID).Str("plan", d.Short).Err(res.Err()).Msg("simulation-failed")
		e.publish(notify.KindSimError, ev, d.Reason, map[string]string{"plan": d.Short, "pos": posID})
		return d
	}

	d.Kind = DecisionMove
	d.Dispatch = dispatches(d.Plan)
	log.Info().Str("game", d.Game).Str("turn", d.Turn).Str("pos", posID).Str("plan", d.Short).Msg("plan")
	e.publish(notify.KindPlan, ev, d.Short, map[string]string{"human": resp.Human, "pos": posID, "turn": d.Turn})

	return e.dispatch(ctx, tok, d)
}

func (e *Engine) dispatch(ctx context.Context, tok turn.Token, d Decision) Decision {
	if e.dispatcher == nil {
		return d
	}
	for _, step := range d.Dispatch {
		if !e.turns.IsCurrent(tok) {
			return stale(d, "dispatch")
		}
		if err := e.dispatcher.Dispatch(ctx, step); err != nil {
			log.Warn().Err(err).Str("move", step.Label).Msg("dispatch-failed")
			d.Reason = "dispatch failed: " + err.Error()
			return d
		}
		d.Dispatched++
		if _, live := e.turns.CountMove(tok); !live {
			return stale(d, "dispatch")
		}
	}
	return d
}

func stale(d Decision, where string) Decision {
	log.Debug().Str("turn", d.Turn).Str("at", where).Msg("turn-superseded")
	d.Kind = DecisionStale
	d.Reason = "turn superseded during " + where
	return d
}

func (e *Engine) idFailure(ev *game.Event, d Decision, err error) Decision {
	log.Warn().Err(err).Str("game", d.Game).Str("event", ev.EventName()).Msg("ids-failed")
	d.Reason = err.Error()
	return d
}

// rollFaces returns the dice of a roll, four faces for a double.
func rollFaces(d1, d2 int) []int {
	if d1 == d2 {
		return []int{d1, d1, d1, d1}
	}
	return []int{d1, d2}
}

func takeFace(faces []int, pips int) ([]int, bool) {
	for i, f := range faces {
		if f == pips {
			return append(faces[:i:i], faces[i+1:]...), true
		}
	}
	return faces, false
}

// expandBar replaces bar entries that no single die covers with single-die
// hops. Plans are in engine numbering; flip maps them onto the physical board
// for the blocked-point check.
func (e *Engine) expandBar(plan []move.Token, d1, d2 int, board *game.Snapshot, mover game.PlayerID, flip bool) []move.Token {
	physical := func(p move.Point) int {
		if flip {
			return int(p.Invert())
		}
		return int(p)
	}
	check := func(_, to move.Point, _ int) bool {
		return board == nil || !sim.Blocked(board, mover, physical(to))
	}

	remaining := rollFaces(d1, d2)
	for _, t := range plan {
		if t.From != move.Bar {
			remaining, _ = takeFace(remaining, t.Pips())
		}
	}

	out := make([]move.Token, 0, len(plan))
	for _, t := range plan {
		if t.From != move.Bar {
			out = append(out, t)
			continue
		}
		var ok bool
		if remaining, ok = takeFace(remaining, t.Pips()); ok {
			out = append(out, t)
			continue
		}
		hops := move.DecomposeBar(t.To, remaining, check)
		if len(hops) > 1 {
			for _, h := range hops {
				remaining, _ = takeFace(remaining, h.Pips())
			}
			hops[len(hops)-1].Hit = t.Hit
		}
		out = append(out, hops...)
	}
	return out
}
