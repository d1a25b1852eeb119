package game

// Action names offered by the table client in Event.AvailableActions.
const (
	ActionRollDice        = "RollDice"
	ActionMoveChecker     = "MoveChecker"
	ActionDoublingOffer   = "DoublingOffer"
	ActionDoublingRespond = "DoublingRespond"
	ActionDoublingAccept  = "DoublingAccept"
	ActionDoublingReject  = "DoublingReject"
)

// Event names the pipeline reacts to.
const (
	EventDiceRolled   = "DiceRolled"
	EventGameStarted  = "GameStarted"
	EventCheckerMoved = "TurnCheckerMovedV2"
)

// Dice is a roll as reported by the table client; nil faces are unrolled.
type Dice struct {
	First  *int `json:"first,omitempty"`
	Second *int `json:"second,omitempty"`
}

// Values returns both faces with 0 for a face not yet rolled.
func (d Dice) Values() (int, int) {
	var a, b int
	if d.First != nil {
		a = *d.First
	}
	if d.Second != nil {
		b = *d.Second
	}
	return a, b
}

// CurrentTurn names the player on roll and their dice.
type CurrentTurn struct {
	OwnerID PlayerID `json:"ownerId"`
	Dice    Dice     `json:"dice"`
}

// DoublingCube is the cube state.
type DoublingCube struct {
	Value   int      `json:"value"`
	OwnerID PlayerID `json:"ownerId,omitempty"`
}

// MatchState is the running match score keyed by participant.
type MatchState struct {
	Participant1      PlayerID `json:"participant1"`
	Participant1Score int      `json:"participant1Score"`
	Participant2      PlayerID `json:"participant2"`
	Participant2Score int      `json:"participant2Score"`
}

// ScoreOf returns a participant's score.
func (m *MatchState) ScoreOf(player PlayerID) int {
	if m == nil {
		return 0
	}
	switch player {
	case m.Participant1:
		return m.Participant1Score
	case m.Participant2:
		return m.Participant2Score
	}
	return 0
}

// GameParams are the match parameters.
type GameParams struct {
	WinPointsCount int `json:"winPointsCount"`
}

// GameData is the game-state part of an event.
type GameData struct {
	Context
	GameID         string        `json:"gameId,omitempty"`
	Board          *Snapshot     `json:"board,omitempty"`
	CurrentTurn    CurrentTurn   `json:"currentTurn"`
	DoublingCube   *DoublingCube `json:"doublingCube,omitempty"`
	MatchState     *MatchState   `json:"matchState,omitempty"`
	IsCrawfordGame bool          `json:"isCrawfordGame"`
}

// EventContext is the match-level part of an event.
type EventContext struct {
	GameMatchID string      `json:"gameMatchId,omitempty"`
	GameParams  GameParams  `json:"gameParams"`
	MatchState  *MatchState `json:"matchState,omitempty"`
	Players     *Players    `json:"players,omitempty"`
}

// Event is one game-state event from the table client.
type Event struct {
	Name             string       `json:"name,omitempty"`
	Type             string       `json:"type,omitempty"`
	Stage            string       `json:"stage,omitempty"`
	AvailableActions []string     `json:"availableActions,omitempty"`
	Data             GameData     `json:"data"`
	Context          EventContext `json:"context"`
}

// EventName returns name, falling back to type.
func (e *Event) EventName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Type
}

// GameContext returns the players and per-player states, taking players
// from the event context when the game data omits them.
func (e *Event) GameContext() *Context {
	c := e.Data.Context
	if _, _, ok := c.Players.IDs(); !ok {
		c.Players = e.Context.Players
	}
	return &c
}

// Mover returns the player on roll.
func (e *Event) Mover() PlayerID { return e.Data.CurrentTurn.OwnerID }

// Has reports whether an action is available.
func (e *Event) Has(action string) bool {
	for _, a := range e.AvailableActions {
		if a == action {
			return true
		}
	}
	return false
}

// CanMove reports whether hero is on roll and may move checkers.
func (e *Event) CanMove(hero PlayerID) bool {
	return hero != "" && e.Mover() == hero && e.Has(ActionMoveChecker)
}

// CanRoll reports whether a roll is available.
func (e *Event) CanRoll() bool { return e.Has(ActionRollDice) }

// CanOfferDouble reports whether a double may be offered.
func (e *Event) CanOfferDouble() bool { return e.Has(ActionDoublingOffer) }

// IsRespondState reports whether a double must be answered.
func (e *Event) IsRespondState() bool {
	return e.Has(ActionDoublingRespond) || e.Has(ActionDoublingAccept) || e.Has(ActionDoublingReject)
}

// GameKey identifies the game the event belongs to.
func (e *Event) GameKey() string {
	if e.Context.GameMatchID != "" {
		return e.Context.GameMatchID
	}
	return e.Data.GameID
}
