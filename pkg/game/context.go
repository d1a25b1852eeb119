package game

// Direction is the physical numbering direction a player advances in.
type Direction int

const (
	// HighToLow moves from point 24 toward point 1, the direction gnubg
	// assumes for the player on roll.
	HighToLow Direction = iota
	// LowToHigh moves from point 1 toward point 24.
	LowToHigh
)

func (d Direction) String() string {
	if d == LowToHigh {
		return "1_to_24"
	}
	return "24_to_1"
}

// Board start positions reported in PlayerState.
const (
	startPositionLow  = 0
	startPositionHigh = 23
)

// Seat identifies one of the two players.
type Seat struct {
	UserID PlayerID `json:"userId"`
	User   struct {
		AccountID PlayerID `json:"accountId"`
	} `json:"user"`
	CheckerColor string `json:"checkerColor,omitempty"`
}

// ID returns the seat's player id, preferring userId over user.accountId.
func (s *Seat) ID() PlayerID {
	if s == nil {
		return ""
	}
	if s.UserID != "" {
		return s.UserID
	}
	return s.User.AccountID
}

// Players lists the two seats; First is player 0 in match IDs.
type Players struct {
	First  *Seat `json:"first,omitempty"`
	Second *Seat `json:"second,omitempty"`
}

// IDs returns both player ids, or ok=false if either is missing.
func (p *Players) IDs() (first, second PlayerID, ok bool) {
	if p == nil {
		return "", "", false
	}
	first, second = p.First.ID(), p.Second.ID()
	return first, second, first != "" && second != "" && first != second
}

// PlayerState carries per-player table state.
type PlayerState struct {
	BoardStartPosition *int `json:"boardStartPosition,omitempty"`
}

// Context is the per-game information needed to orient a snapshot.
type Context struct {
	Players       *Players                 `json:"players,omitempty"`
	PlayersStates map[PlayerID]PlayerState `json:"playersStates,omitempty"`
}

// Direction resolves which way a player moves. The player's board start
// position wins; without one the first seat is assumed to move 24->1.
func (c *Context) Direction(player PlayerID) Direction {
	if c == nil {
		return HighToLow
	}
	if st, ok := c.PlayersStates[player]; ok && st.BoardStartPosition != nil {
		switch *st.BoardStartPosition {
		case startPositionLow:
			return LowToHigh
		case startPositionHigh:
			return HighToLow
		}
	}
	if c.Players != nil {
		if first := c.Players.First.ID(); first != "" {
			if player == first {
				return HighToLow
			}
			return LowToHigh
		}
	}
	return HighToLow
}

// Opponent returns the other player's id.
func (c *Context) Opponent(player PlayerID) (PlayerID, bool) {
	if c == nil {
		return "", false
	}
	first, second, ok := c.Players.IDs()
	if !ok {
		return "", false
	}
	switch player {
	case first:
		return second, true
	case second:
		return first, true
	}
	return "", false
}
