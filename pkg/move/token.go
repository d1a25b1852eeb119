// Package move implements the move token grammar used between gnubg and the
// automation layer, and the transformations applied to a move plan before it
// is simulated: chain expansion, merging, bar entry decomposition and
// perspective inversion.
//
// Grammar:
//
//	token = point ("/" point ["*"])+ ["(" digits ")"]
//	point = 1..24 | "bar" | "off"
package move

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Point is a board point as seen by the player moving 24 -> 1. Bar and Off
// sit just outside the numbered range.
type Point int

const (
	// Off is a borne-off checker
	Off Point = 0
	// Bar is the bar, one pip above point 24
	Bar Point = 25
)

// ErrInvalidToken is returned for text that does not match the token grammar.
var ErrInvalidToken = errors.New("invalid move token")

// ParsePoint parses "bar", "off" or a point number 1..24.
func ParsePoint(s string) (Point, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "bar":
		return Bar, nil
	case "off":
		return Off, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 24 {
		return 0, fmt.Errorf("%w: point %q", ErrInvalidToken, s)
	}
	return Point(n), nil
}

// IsBoard reports whether p is a numbered point.
func (p Point) IsBoard() bool { return p >= 1 && p <= 24 }

func (p Point) String() string {
	switch p {
	case Bar:
		return "bar"
	case Off:
		return "off"
	}
	return strconv.Itoa(int(p))
}

// Invert renumbers a point n -> 25-n. Bar and Off are unchanged.
func (p Point) Invert() Point {
	if !p.IsBoard() {
		return p
	}
	return 25 - p
}

// Token is one elementary move: a single checker from one point to another.
type Token struct {
	From Point
	To   Point
	Hit  bool
}

// Pips returns the distance travelled, counting Off as point 0.
func (t Token) Pips() int { return int(t.From - t.To) }

func (t Token) String() string {
	s := t.From.String() + "/" + t.To.String()
	if t.Hit {
		s += "*"
	}
	return s
}

// Invert returns the token as seen from the opposite direction.
func (t Token) Invert() Token {
	return Token{From: t.From.Invert(), To: t.To.Invert(), Hit: t.Hit}
}

// StripHit returns the token without its hit marker.
func (t Token) StripHit() Token {
	t.Hit = false
	return t
}

// Parse parses a single two-point token such as "13/11*" or "bar/22".
func Parse(s string) (Token, error) {
	toks, err := Expand(s)
	if err != nil {
		return Token{}, err
	}
	if len(toks) != 1 {
		return Token{}, fmt.Errorf("%w: %q is not a single move", ErrInvalidToken, s)
	}
	return toks[0], nil
}

// Invert inverts every token of a plan.
func Invert(plan []Token) []Token {
	out := make([]Token, len(plan))
	for i, t := range plan {
		out[i] = t.Invert()
	}
	return out
}

// Strings renders a plan in token form.
func Strings(plan []Token) []string {
	out := make([]string, len(plan))
	for i, t := range plan {
		out[i] = t.String()
	}
	return out
}

// Short renders a plan compactly, e.g. "24-18, 13-11*, bar-23".
func Short(plan []Token) string {
	parts := make([]string, len(plan))
	for i, t := range plan {
		parts[i] = t.From.String() + "-" + t.To.String()
		if t.Hit {
			parts[i] += "*"
		}
	}
	return strings.Join(parts, ", ")
}

// MarshalText encodes the token in its text form.
func (t Token) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText parses a single two-point token.
func (t *Token) UnmarshalText(b []byte) error {
	tok, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = tok
	return nil
}
