package engine

import (
	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/gnubg"
	"github.com/yourusername/bgpilot/pkg/move"
	"github.com/yourusername/bgpilot/pkg/sim"
)

// DecisionKind is what the automation layer should do.
type DecisionKind string

const (
	DecisionNone   DecisionKind = "none"
	DecisionRoll   DecisionKind = "roll"
	DecisionDouble DecisionKind = "double"
	DecisionTake   DecisionKind = "take"
	DecisionPass   DecisionKind = "pass"
	DecisionMove   DecisionKind = "move"
	DecisionStale  DecisionKind = "stale" // a newer turn superseded this one
)

// Dispatch is one physical move handed to the automation layer. From and
// To are physical point labels ("1".."24", "bar", "off"); resolving them to
// screen coordinates is the collaborator's job. Label never carries a hit
// marker.
type Dispatch struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// StepResult is the simulated outcome of one planned move.
type StepResult struct {
	Move  string `json:"move"`
	Hit   bool   `json:"hit,omitempty"`
	Error string `json:"error,omitempty"`
}

// Decision is the outcome of one event.
type Decision struct {
	Kind        DecisionKind    `json:"kind"`
	Reason      string          `json:"reason,omitempty"`
	Game        string          `json:"game,omitempty"`
	Turn        string          `json:"turn,omitempty"`
	PosID       string          `json:"posId,omitempty"`
	MatchID     string          `json:"matchId,omitempty"`
	Human       string          `json:"human,omitempty"`
	Cube        gnubg.Cube      `json:"cube,omitempty"`
	CubeVerbose string          `json:"cubeVerbose,omitempty"`
	EnginePlan  []move.Token    `json:"enginePlan,omitempty"` // gnubg numbering
	Plan        []move.Token    `json:"plan,omitempty"`       // physical numbering
	Short       string          `json:"short,omitempty"`
	Steps       []StepResult    `json:"steps,omitempty"`
	Dispatch    []Dispatch      `json:"dispatch,omitempty"`
	Dispatched  int             `json:"dispatched,omitempty"`
	Board       *game.Snapshot  `json:"board,omitempty"`
	Response    *gnubg.Response `json:"response,omitempty"`
}

// StepResults converts simulator steps to their reported form.
func StepResults(steps []sim.Step) []StepResult {
	out := make([]StepResult, len(steps))
	for i, s := range steps {
		out[i] = StepResult{Move: s.Move.String(), Hit: s.Hit}
		if s.Err != nil {
			out[i].Error = s.Err.Error()
		}
	}
	return out
}

func dispatches(plan []move.Token) []Dispatch {
	out := make([]Dispatch, len(plan))
	for i, t := range plan {
		out[i] = Dispatch{From: t.From.String(), To: t.To.String(), Label: t.StripHit().String()}
	}
	return out
}
