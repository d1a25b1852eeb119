package game

import (
	"errors"
	"fmt"

	"github.com/yourusername/bgpilot/internal/matchid"
	"github.com/yourusername/bgpilot/internal/positionid"
)

var (
	// ErrMissingBoard is returned when there is no snapshot to encode
	ErrMissingBoard = errors.New("missing board snapshot")
	// ErrMissingContext is returned when there is no game context
	ErrMissingContext = errors.New("missing game context")
	// ErrMissingMover is returned when the player on roll is unknown
	ErrMissingMover = errors.New("missing player on roll")
	// ErrMissingPlayers is returned when the two player ids cannot be resolved
	ErrMissingPlayers = errors.New("cannot resolve both player ids")
)

// Counts holds one player's checkers in engine numbering: index 0 is the
// bar and 1..24 are points counted toward that player's home.
type Counts [25]int

// EngineBoard orients a snapshot for gnubg: row 0 is the player not on
// roll, row 1 the mover, and both are renumbered so that the mover advances
// 24 -> 1. Exactly one side is renumbered n -> 25-n.
func EngineBoard(snap *Snapshot, ctx *Context, mover PlayerID) (positionid.Board, error) {
	var board positionid.Board

	switch {
	case snap == nil:
		return board, ErrMissingBoard
	case ctx == nil:
		return board, ErrMissingContext
	case mover == "":
		return board, ErrMissingMover
	}

	opponent, ok := ctx.Opponent(mover)
	if !ok {
		return board, ErrMissingPlayers
	}

	rows := map[PlayerID]int{opponent: 0, mover: 1}
	flipMover := ctx.Direction(mover) == LowToHigh

	for _, p := range snap.Points {
		row, ok := rows[p.OccupiedBy]
		if !ok || p.CheckersCount <= 0 {
			continue
		}
		if p.Number < 1 || p.Number > NumPoints {
			return board, fmt.Errorf("point %d out of range", p.Number)
		}
		number := p.Number
		if (row == 1) == flipMover {
			number = NumPoints + 1 - number
		}
		board[row][number-1] = uint8(p.CheckersCount)
	}
	for id, row := range rows {
		board[row][positionid.BarIndex] = uint8(snap.BarCounts[id])
	}

	return board, nil
}

// EncodePosition builds the gnubg position ID for a snapshot with mover on roll.
func EncodePosition(snap *Snapshot, ctx *Context, mover PlayerID) (string, error) {
	board, err := EngineBoard(snap, ctx, mover)
	if err != nil {
		return "", err
	}
	return positionid.PositionID(board)
}

// DecodePosition splits a position ID into per-player counts, non-mover
// first, in engine numbering.
func DecodePosition(posID string) (nonMover, mover Counts, err error) {
	board, err := positionid.Decode(posID)
	if err != nil {
		return nonMover, mover, err
	}
	return countsOf(board[0]), countsOf(board[1]), nil
}

// PositionLegal reports whether a position ID decodes to a board that can
// occur in play.
func PositionLegal(posID string) bool {
	_, err := positionid.BoardFromPositionID(posID)
	return err == nil
}

func countsOf(row [25]uint8) Counts {
	var c Counts
	c[0] = int(row[positionid.BarIndex])
	for i := 0; i < NumPoints; i++ {
		c[i+1] = int(row[i])
	}
	return c
}

// MatchFields derives match ID fields from an event. The first seat is
// player 0. A pending double is read from the available actions and hands
// the decision to the player not on roll.
func MatchFields(e *Event) (matchid.Fields, error) {
	var f matchid.Fields

	p0, p1, ok := e.GameContext().Players.IDs()
	if !ok {
		return f, ErrMissingPlayers
	}
	mover := e.Mover()
	if mover == "" {
		return f, ErrMissingMover
	}

	ms := e.Context.MatchState
	if ms == nil {
		ms = e.Data.MatchState
	}

	f.CubeValue = 1
	f.CubeOwner = matchid.CubeCentered
	if cube := e.Data.DoublingCube; cube != nil {
		if cube.Value > 0 {
			f.CubeValue = cube.Value
		}
		switch cube.OwnerID {
		case p0:
			f.CubeOwner = 0
		case p1:
			f.CubeOwner = 1
		}
	}

	if mover == p1 {
		f.PlayerOnRoll = 1
	}
	f.TurnOwner = f.PlayerOnRoll
	f.Crawford = e.Data.IsCrawfordGame
	f.DoubleOffered = e.Has(ActionDoublingRespond)
	if f.DoubleOffered {
		f.TurnOwner = 1 - f.PlayerOnRoll
	}
	f.Dice[0], f.Dice[1] = e.Data.CurrentTurn.Dice.Values()
	f.MatchLength = e.Context.GameParams.WinPointsCount
	f.Score = [2]int{ms.ScoreOf(p0), ms.ScoreOf(p1)}

	return f, nil
}

// EncodeMatch builds the gnubg match ID for an event.
func EncodeMatch(e *Event) (string, error) {
	f, err := MatchFields(e)
	if err != nil {
		return "", err
	}
	return matchid.MatchID(f), nil
}

// IDs builds both identifiers for an event.
func IDs(e *Event) (posID, matchID string, err error) {
	posID, err = EncodePosition(e.Data.Board, e.GameContext(), e.Mover())
	if err != nil {
		return "", "", fmt.Errorf("position id: %w", err)
	}
	matchID, err = EncodeMatch(e)
	if err != nil {
		return "", "", fmt.Errorf("match id: %w", err)
	}
	return posID, matchID, nil
}
