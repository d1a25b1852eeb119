package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field offsets in a FIBS board line, after the "board:" prefix.
// See http://www.fibs.com/fibs_interface.html#board_state
const (
	fibsBoardStart   = 5
	fibsTurn         = 31
	fibsDice         = 32
	fibsOppDice      = 34
	fibsCube         = 36
	fibsMayDouble    = 37
	fibsOppMayDouble = 38
	fibsWasDoubled   = 39
	fibsColor        = 40
	fibsDirection    = 41
	fibsOnHome       = 44
	fibsOppOnHome    = 45
	fibsOnBar        = 46
	fibsOppOnBar     = 47
	fibsMinFields    = fibsTurn + 1
	fibsCountFields  = fibsOppOnBar + 1
	checkersPerSide  = 15
)

// ErrGameOver is returned for a FIBS board with nobody on turn.
var ErrGameOver = errors.New("fibs board: game over")

// FIBSBoard is a parsed FIBS board line. Board values carry the sign of
// their owner's color; indexes 1..24 are physical points and 0 and 25 the
// bars.
type FIBSBoard struct {
	You          string
	Opponent     string
	MatchLength  int
	YourScore    int
	OppScore     int
	Board        [26]int
	Turn         int
	Dice         [2]int
	OppDice      [2]int
	Cube         int
	MayDouble    bool
	OppMayDouble bool
	WasDoubled   bool
	Color        int
	Direction    int

	// Borne-off and bar counts, set only when the line carries them.
	OnHome, OppOnHome int
	OnBar, OppOnBar   int
	HasCounts         bool
}

// ParseFIBSBoard parses a FIBS "board:" line. Fields past the turn are
// optional; a missing color reads as 1 and a missing direction as -1.
func ParseFIBSBoard(s string) (*FIBSBoard, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "board:")
	parts := strings.Split(s, ":")
	if len(parts) < fibsMinFields {
		return nil, fmt.Errorf("fibs board: expected at least %d fields, got %d", fibsMinFields, len(parts))
	}

	var perr error
	num := func(i int) int {
		if i >= len(parts) || perr != nil {
			return 0
		}
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			perr = fmt.Errorf("fibs board: field %d: %w", i, err)
		}
		return v
	}
	flag := func(i int) bool { return num(i) == 1 }

	fb := &FIBSBoard{
		You:          parts[0],
		Opponent:     parts[1],
		MatchLength:  num(2),
		YourScore:    num(3),
		OppScore:     num(4),
		Turn:         num(fibsTurn),
		Dice:         [2]int{num(fibsDice), num(fibsDice + 1)},
		OppDice:      [2]int{num(fibsOppDice), num(fibsOppDice + 1)},
		Cube:         num(fibsCube),
		MayDouble:    flag(fibsMayDouble),
		OppMayDouble: flag(fibsOppMayDouble),
		WasDoubled:   flag(fibsWasDoubled),
		Color:        num(fibsColor),
		Direction:    num(fibsDirection),
	}
	for i := range fb.Board {
		fb.Board[i] = num(fibsBoardStart + i)
	}
	if len(parts) >= fibsCountFields {
		fb.OnHome, fb.OppOnHome = num(fibsOnHome), num(fibsOppOnHome)
		fb.OnBar, fb.OppOnBar = num(fibsOnBar), num(fibsOppOnBar)
		fb.HasCounts = true
	}
	if perr != nil {
		return nil, perr
	}

	if fb.Color == 0 {
		fb.Color = 1
	}
	if fb.Direction == 0 {
		fb.Direction = -1
	}
	if fb.Cube == 0 {
		fb.Cube = 1
	}
	if fb.You == "" || fb.Opponent == "" || fb.You == fb.Opponent {
		return nil, fmt.Errorf("fibs board: need two distinct player names, got %q and %q", fb.You, fb.Opponent)
	}
	return fb, nil
}

func (fb *FIBSBoard) you() PlayerID      { return PlayerID(fb.You) }
func (fb *FIBSBoard) opponent() PlayerID { return PlayerID(fb.Opponent) }

// owner maps a signed board value to its player.
func (fb *FIBSBoard) owner(v int) PlayerID {
	if (v > 0) == (fb.Color > 0) {
		return fb.you()
	}
	return fb.opponent()
}

// Snapshot converts the board to physical points with bar and off counts.
func (fb *FIBSBoard) Snapshot() (*Snapshot, error) {
	you, opp := fb.you(), fb.opponent()
	s := &Snapshot{
		BarCounts: map[PlayerID]int{you: 0, opp: 0},
		OffCounts: map[PlayerID]int{you: 0, opp: 0},
	}
	onBoard := map[PlayerID]int{}
	for n := 1; n <= NumPoints; n++ {
		p := Point{Number: n}
		if v := fb.Board[n]; v != 0 {
			p.OccupiedBy = fb.owner(v)
			p.CheckersCount = abs(v)
			onBoard[p.OccupiedBy] += p.CheckersCount
		}
		s.Points = append(s.Points, p)
	}

	if fb.HasCounts {
		s.BarCounts[you], s.BarCounts[opp] = fb.OnBar, fb.OppOnBar
		s.OffCounts[you], s.OffCounts[opp] = fb.OnHome, fb.OppOnHome
	} else {
		for _, v := range []int{fb.Board[0], fb.Board[25]} {
			if v != 0 {
				s.BarCounts[fb.owner(v)] += abs(v)
			}
		}
		for _, id := range []PlayerID{you, opp} {
			s.OffCounts[id] = checkersPerSide - onBoard[id] - s.BarCounts[id]
		}
	}

	for _, id := range []PlayerID{you, opp} {
		if s.OffCounts[id] < 0 || s.Total(id) != checkersPerSide {
			return nil, fmt.Errorf("fibs board: %s has %d checkers", id, s.Total(id))
		}
	}
	return s, nil
}

// Event builds the game-state event the board describes. You sit first.
func (fb *FIBSBoard) Event() (*Event, error) {
	you, opp := fb.you(), fb.opponent()

	var mover PlayerID
	switch fb.Turn {
	case 0:
		return nil, ErrGameOver
	case fb.Color:
		mover = you
	default:
		mover = opp
	}

	board, err := fb.Snapshot()
	if err != nil {
		return nil, err
	}

	youStart, oppStart := startPositionHigh, startPositionLow
	if fb.Direction > 0 {
		youStart, oppStart = startPositionLow, startPositionHigh
	}
	players := &Players{First: &Seat{UserID: you}, Second: &Seat{UserID: opp}}
	score := &MatchState{
		Participant1:      you,
		Participant1Score: fb.YourScore,
		Participant2:      opp,
		Participant2Score: fb.OppScore,
	}

	e := &Event{
		Data: GameData{
			Context: Context{
				Players: players,
				PlayersStates: map[PlayerID]PlayerState{
					you: {BoardStartPosition: &youStart},
					opp: {BoardStartPosition: &oppStart},
				},
			},
			Board:          board,
			CurrentTurn:    CurrentTurn{OwnerID: mover},
			DoublingCube:   &DoublingCube{Value: fb.Cube, OwnerID: fb.cubeOwner()},
			IsCrawfordGame: fb.crawford(),
		},
		Context: EventContext{
			GameParams: GameParams{WinPointsCount: fb.MatchLength},
			MatchState: score,
			Players:    players,
		},
	}

	dice := fb.Dice
	if mover == opp {
		dice = fb.OppDice
	}
	if dice[0] > 0 && dice[1] > 0 {
		e.Data.CurrentTurn.Dice = Dice{First: &dice[0], Second: &dice[1]}
	}

	switch {
	case fb.WasDoubled:
		e.AvailableActions = []string{ActionDoublingRespond}
	case mover != you:
	case e.Data.CurrentTurn.Dice.First != nil:
		e.Name = EventDiceRolled
		e.AvailableActions = []string{ActionMoveChecker}
	default:
		e.AvailableActions = []string{ActionRollDice}
		if fb.MayDouble {
			e.AvailableActions = append(e.AvailableActions, ActionDoublingOffer)
		}
	}
	return e, nil
}

// cubeOwner reads ownership from who may double. A cube nobody may turn
// is reported centered.
func (fb *FIBSBoard) cubeOwner() PlayerID {
	switch {
	case fb.MayDouble && !fb.OppMayDouble:
		return fb.you()
	case fb.OppMayDouble && !fb.MayDouble:
		return fb.opponent()
	}
	return ""
}

// crawford guesses the Crawford game: someone at match point with an
// untouched cube that neither side may turn.
func (fb *FIBSBoard) crawford() bool {
	if fb.MatchLength <= 0 || fb.MayDouble || fb.OppMayDouble || fb.Cube != 1 {
		return false
	}
	return fb.YourScore == fb.MatchLength-1 || fb.OppScore == fb.MatchLength-1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
