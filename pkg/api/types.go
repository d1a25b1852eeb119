// Package api provides the HTTP/JSON, WebSocket and SSE surface of the
// pilot: identifier codecs, reply parsing, plan tools, gnubg hints and the
// event pipeline.
package api

import (
	"github.com/yourusername/bgpilot/internal/matchid"
	"github.com/yourusername/bgpilot/internal/notify"
	"github.com/yourusername/bgpilot/pkg/engine"
	"github.com/yourusername/bgpilot/pkg/game"
)

// ============================================================================
// Request Types
// ============================================================================

// PositionRequest is the request body for position ID encoding.
type PositionRequest struct {
	Board   *game.Snapshot `json:"board"`             // Physical board
	Context *game.Context  `json:"context"`           // Players and start positions
	Mover   game.PlayerID  `json:"mover"`             // Player on roll
	Players *game.Players  `json:"players,omitempty"` // Shortcut for context.players
}

// MatchRequest is the request body for match ID encoding. Either an event
// or explicit fields must be given; the event wins.
type MatchRequest struct {
	Event  *game.Event  `json:"event,omitempty"`
	Fields *MatchFields `json:"fields,omitempty"`
}

// MatchFields mirrors matchid.Fields on the wire.
type MatchFields struct {
	CubeValue     int    `json:"cube_value"`
	CubeOwner     int    `json:"cube_owner"` // -1=centered, 0=player0, 1=player1
	PlayerOnRoll  int    `json:"player_on_roll"`
	TurnOwner     int    `json:"turn_owner"`
	Crawford      bool   `json:"crawford,omitempty"`
	DoubleOffered bool   `json:"double_offered,omitempty"`
	Resign        int    `json:"resign,omitempty"`
	Dice          [2]int `json:"dice"`
	MatchLength   int    `json:"match_length"`
	Score         [2]int `json:"score"`
	GameState     int    `json:"game_state,omitempty"`
}

// ParseRequest is the request body for parsing raw gnubg output.
type ParseRequest struct {
	Raw             string `json:"raw"`
	ReceivingDouble bool   `json:"receiving_double,omitempty"`
}

// PlanRequest is the request body for move-line expansion.
type PlanRequest struct {
	Line   string `json:"line"`             // e.g. "bar/22 13/7(2)"
	Invert bool   `json:"invert,omitempty"` // renumber 25-n
}

// SimulateRequest is the request body for plan simulation.
type SimulateRequest struct {
	Board *game.Snapshot `json:"board"`
	Mover game.PlayerID  `json:"mover"`
	Line  string         `json:"line"` // physical numbering
}

// HintRequest is the request body for a gnubg hint.
type HintRequest struct {
	PositionID      string `json:"position"`
	MatchID         string `json:"match_id"`
	ReceivingDouble bool   `json:"receiving_double,omitempty"`
	NewGame         bool   `json:"new_game,omitempty"`
}

// ============================================================================
// Response Types
// ============================================================================

// PositionResponse is the response for position ID encoding.
type PositionResponse struct {
	Position string `json:"position"`
}

// DecodeResponse is the response for position ID decoding. Index 0 of each
// count array is the bar, indexes 1..24 are points in the player's own
// numbering.
type DecodeResponse struct {
	Position string      `json:"position"`
	NonMover game.Counts `json:"non_mover"`
	Mover    game.Counts `json:"mover"`
	Checkers [2]int      `json:"checkers"` // non-mover, mover
	Legal    bool        `json:"legal"`
}

// MatchResponse is the response for match ID encoding and decoding.
type MatchResponse struct {
	MatchID string      `json:"match_id"`
	Fields  MatchFields `json:"fields"`
}

// FIBSRequest carries a raw FIBS "board:" line.
type FIBSRequest struct {
	Board string `json:"board"`
}

// FIBSResponse is the event a FIBS board describes, with its identifiers.
type FIBSResponse struct {
	Position string      `json:"position"`
	MatchID  string      `json:"match_id"`
	Event    *game.Event `json:"event"`
}

// PlanResponse is the response for move-line expansion.
type PlanResponse struct {
	Moves     []string `json:"moves"`     // elementary segments
	Optimized []string `json:"optimized"` // merged for display
	Short     string   `json:"short"`
}

// SimulateResponse is the response for plan simulation.
type SimulateResponse struct {
	OK    bool                `json:"ok"`
	Board *game.Snapshot      `json:"board"`
	Steps []engine.StepResult `json:"steps"`
	Error string              `json:"error,omitempty"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error   string `json:"error"`             // Error message
	Code    string `json:"code,omitempty"`    // Error code
	Details string `json:"details,omitempty"` // Additional details
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string            `json:"status"`           // "ok" or "error"
	Version string            `json:"version"`          // Server version
	Ready   bool              `json:"ready"`            // Whether the pipeline is wired
	Turn    string            `json:"turn,omitempty"`   // Live turn token
	Pool    *PoolStats        `json:"pool,omitempty"`   // Request pool statistics
	Notify  *notify.PoolStats `json:"notify,omitempty"` // Notification pool statistics
}

// ============================================================================
// Helper Functions
// ============================================================================

// FieldsToResponse converts match ID fields to their wire form.
func FieldsToResponse(f matchid.Fields) MatchFields {
	return MatchFields{
		CubeValue:     f.CubeValue,
		CubeOwner:     f.CubeOwner,
		PlayerOnRoll:  f.PlayerOnRoll,
		TurnOwner:     f.TurnOwner,
		Crawford:      f.Crawford,
		DoubleOffered: f.DoubleOffered,
		Resign:        f.Resign,
		Dice:          f.Dice,
		MatchLength:   f.MatchLength,
		Score:         f.Score,
		GameState:     f.GameState,
	}
}

// Fields converts wire fields back to match ID fields.
func (m MatchFields) Fields() matchid.Fields {
	f := matchid.Fields{
		CubeValue:     m.CubeValue,
		CubeOwner:     m.CubeOwner,
		PlayerOnRoll:  m.PlayerOnRoll,
		TurnOwner:     m.TurnOwner,
		Crawford:      m.Crawford,
		DoubleOffered: m.DoubleOffered,
		Resign:        m.Resign,
		Dice:          m.Dice,
		MatchLength:   m.MatchLength,
		Score:         m.Score,
	}
	if f.CubeValue <= 0 {
		f.CubeValue = 1
	}
	return f
}
