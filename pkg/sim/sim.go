// Package sim applies a move plan to a board snapshot, one checker at a
// time, reporting hits, blocked destinations and bear-offs.
package sim

import (
	"errors"
	"fmt"

	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/move"
)

var (
	// ErrSourceNotFound is returned when the source point holds no checkers
	ErrSourceNotFound = errors.New("source point not found")
	// ErrSourceNotOwned is returned when the source point belongs to the opponent
	ErrSourceNotOwned = errors.New("source point not owned by mover")
	// ErrBlocked is returned when two or more opponent checkers hold the destination
	ErrBlocked = errors.New("destination blocked")
	// ErrInterrupted marks steps skipped after an earlier failure
	ErrInterrupted = errors.New("interrupted by previous error")
)

// Step is the outcome of one token.
type Step struct {
	Move move.Token
	Hit  bool  // an opponent blot was sent to the bar
	Err  error // nil on success
}

// OK reports whether the step was applied.
func (s Step) OK() bool { return s.Err == nil }

// Result is the board after a plan and the per-token outcomes.
type Result struct {
	Board *game.Snapshot
	Steps []Step
}

// Err returns the first step error, or nil.
func (r *Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Err
		}
	}
	return nil
}

// Applied returns the tokens that were applied, hit flags recomputed.
func (r *Result) Applied() []move.Token {
	var out []move.Token
	for _, s := range r.Steps {
		if s.Err != nil {
			break
		}
		t := s.Move
		t.Hit = s.Hit
		out = append(out, t)
	}
	return out
}

// Simulator plays tokens one at a time on its own copy of a snapshot.
type Simulator struct {
	board  *game.Snapshot
	mover  game.PlayerID
	failed bool
}

// New copies snap for mover. Points are physical numbers.
func New(snap *game.Snapshot, mover game.PlayerID) *Simulator {
	board := snap.Clone()
	if board == nil {
		board = &game.Snapshot{}
	}
	if board.BarCounts == nil {
		board.BarCounts = make(map[game.PlayerID]int)
	}
	if board.OffCounts == nil {
		board.OffCounts = make(map[game.PlayerID]int)
	}
	return &Simulator{board: board, mover: mover}
}

// Board returns the simulated board.
func (s *Simulator) Board() *game.Snapshot { return s.board }

// Failed reports whether a step has failed.
func (s *Simulator) Failed() bool { return s.failed }

// Step plays one token. After a failure every later token is reported with
// ErrInterrupted and left unapplied.
func (s *Simulator) Step(tok move.Token) Step {
	if s.failed {
		return Step{Move: tok, Err: ErrInterrupted}
	}
	hit, err := step(s.board, tok, s.mover)
	if err != nil {
		s.failed = true
		return Step{Move: tok, Err: fmt.Errorf("%s: %w", tok, err)}
	}
	return Step{Move: tok, Hit: hit}
}

// Apply plays plan for mover on a copy of snap.
func Apply(snap *game.Snapshot, plan []move.Token, mover game.PlayerID) *Result {
	s := New(snap, mover)
	res := &Result{Steps: make([]Step, len(plan))}
	for i, tok := range plan {
		res.Steps[i] = s.Step(tok)
	}
	res.Board = s.Board()
	return res
}

func step(b *game.Snapshot, tok move.Token, mover game.PlayerID) (hit bool, err error) {
	if tok.From == move.Off || tok.To == move.Bar {
		return false, move.ErrInvalidToken
	}
	if tok.From != move.Bar {
		src := b.Point(int(tok.From))
		switch {
		case src == nil || src.CheckersCount <= 0:
			return false, ErrSourceNotFound
		case src.OccupiedBy != mover:
			return false, ErrSourceNotOwned
		}
	}
	if tok.To != move.Off {
		if dst := b.Point(int(tok.To)); dst != nil && dst.OccupiedBy != mover && dst.CheckersCount >= 2 {
			return false, ErrBlocked
		}
	}

	if tok.From == move.Bar {
		if b.BarCounts[mover] > 0 {
			b.BarCounts[mover]--
		}
	} else {
		src := b.Point(int(tok.From))
		src.CheckersCount--
		if src.CheckersCount == 0 {
			src.OccupiedBy = ""
		}
	}

	if tok.To == move.Off {
		b.OffCounts[mover]++
		return false, nil
	}

	dst := b.EnsurePoint(int(tok.To))
	if dst.CheckersCount == 1 && dst.OccupiedBy != "" && dst.OccupiedBy != mover {
		b.BarCounts[dst.OccupiedBy]++
		dst.CheckersCount = 0
		hit = true
	}
	dst.OccupiedBy = mover
	dst.CheckersCount++
	return hit, nil
}

// Blocked reports whether two or more of the mover's opponents' checkers
// hold a physical point.
func Blocked(b *game.Snapshot, mover game.PlayerID, point int) bool {
	p := b.Point(point)
	return p != nil && p.OccupiedBy != "" && p.OccupiedBy != mover && p.CheckersCount >= 2
}
