package gnubg

import (
	"strings"

	"github.com/yourusername/bgpilot/pkg/move"
)

// Kind classifies a reply.
type Kind string

const (
	KindNone         Kind = "none"
	KindHint         Kind = "hint"
	KindOffer        Kind = "offer"
	KindNoLegalMoves Kind = "no_legal_moves"
)

// Action is the recommended next action.
type Action string

const (
	ActionRoll Action = "roll"
	ActionMove Action = "move"
	ActionCube Action = "cube"
	ActionNone Action = "none"
)

// Cube is a machine cube label. The empty label means unrecognized.
type Cube string

const (
	CubeNone       Cube = ""
	CubeNoDouble   Cube = "no_double"
	CubeDoublePass Cube = "double_pass"
	CubeDoubleTake Cube = "double_take"
	CubeBeaver     Cube = "beaver"
	CubeTake       Cube = "take"
	CubePass       Cube = "pass"
)

// Status of a request.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Meta carries diagnostics about how a reply was read.
type Meta struct {
	RequestID string   `json:"requestId,omitempty"`
	Kind      Kind     `json:"kind"`
	Debug     string   `json:"debug,omitempty"`
	PosID     string   `json:"posId,omitempty"`
	MatchID   string   `json:"matchId,omitempty"`
	Commands  []string `json:"commands,omitempty"`
	MoveLine  string   `json:"moveLine,omitempty"`
	CubeLine  string   `json:"cubeLine,omitempty"`
}

// Response is a structured gnubg reply.
type Response struct {
	Status      string       `json:"status"`
	Kind        Kind         `json:"kind"`
	Action      Action       `json:"action"`
	Human       string       `json:"human"`
	Moves       []move.Token `json:"moves"`
	Cube        Cube         `json:"cube,omitempty"`
	CubeVerbose string       `json:"cubeVerbose,omitempty"`
	Raw         string       `json:"raw,omitempty"`
	Meta        Meta         `json:"meta"`
}

// OK reports whether gnubg answered.
func (r *Response) OK() bool { return r.Status == StatusOK }

// MoveStrings returns the moves in token form, hit markers included.
func (r *Response) MoveStrings() []string { return move.Strings(r.Moves) }

// MachineMoves returns the moves in token form without hit markers.
func (r *Response) MachineMoves() []string {
	out := make([]string, len(r.Moves))
	for i, t := range r.Moves {
		out[i] = t.StripHit().String()
	}
	return out
}

// NormalizeCube maps humanized cube text to a machine label.
func NormalizeCube(human string) Cube {
	t := strings.ToLower(human)
	switch {
	case t == "":
		return CubeNone
	case strings.Contains(t, "beaver"):
		return CubeBeaver
	case strings.Contains(t, "no double"):
		return CubeNoDouble
	case strings.Contains(t, "double, pass"):
		return CubeDoublePass
	case strings.Contains(t, "double, take"):
		return CubeDoubleTake
	case strings.HasPrefix(t, decisionPrefix):
		if strings.Contains(t, "pass") {
			return CubePass
		}
		if strings.Contains(t, "take") {
			return CubeTake
		}
	}
	return CubeNone
}

// CubeVerbose describes a cube label for display.
func CubeVerbose(c Cube, receivingDouble bool, kind Kind) string {
	if receivingDouble {
		if c == CubePass || c == CubeDoublePass {
			return "Double decision: pass"
		}
		return "Double decision: take"
	}

	switch c {
	case CubeNoDouble:
		return "Cube: no double"
	case CubeDoubleTake:
		return "Cube: double (opponent takes)"
	case CubeDoublePass:
		return "Cube: double (opponent passes)"
	case CubeBeaver:
		return "Cube: no double (beaver possible)"
	}
	if kind == KindHint {
		return "Cube: no recommendation (checker play)"
	}
	return "Cube: undecided"
}
