package gnubg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/yourusername/bgpilot/pkg/move"
)

const (
	noLegalMovesPhrase = "no legal moves"
	cubeAnalysisPhrase = "cube analysis"
	properCubePhrase   = "proper cube action"
	equityMarker       = "Eq.:"
	decisionPrefix     = "double decision:"
	decisionTitle      = "Double decision: "
)

var (
	cubePhrases   = []string{"no double", "double, pass", "double, take", properCubePhrase}
	bannedPhrases = []string{"position id", "match id", "gnu backgammon", "on roll", "rolled", "bar|"}

	pointPattern = `(?:bar|off|\d{1,2})\*?`
	moveTokenRe  = regexp.MustCompile(`(?i)\b` + pointPattern + `/` + pointPattern)
	moveIslandRe = regexp.MustCompile(`(?i)((?:\b` + pointPattern + `(?:/` + pointPattern + `)+(?:\(\d+\))?\s*)+)`)
	properRe     = regexp.MustCompile(`(?i)proper cube action:\s*(.+?)\s*(?:\(([\d.,]+)%\))?\s*$`)
	wideGapRe    = regexp.MustCompile(`\s{2,}`)
)

// Line classifiers.

func isNoLegalMoves(line string) bool {
	return strings.Contains(strings.ToLower(line), noLegalMovesPhrase)
}

func startsCubeAnalysis(line string) bool {
	return strings.HasPrefix(strings.ToLower(line), cubeAnalysisPhrase)
}

func isCubeLine(line string) bool {
	return containsAny(strings.ToLower(line), cubePhrases)
}

func isBanned(line string) bool {
	return containsAny(strings.ToLower(line), bannedPhrases)
}

func hasMoveToken(line string) bool {
	return moveTokenRe.MatchString(line)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// splitLines returns the trimmed non-empty lines of text.
func splitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Extraction.

// moveIsland returns the move tokens written before the equity marker.
func moveIsland(line string) string {
	i := strings.LastIndex(line, equityMarker)
	if i < 0 {
		return ""
	}
	left := strings.TrimRight(line[:i], " \t")
	return strings.TrimSpace(moveIslandRe.FindString(left))
}

// pickCubeLine returns the first line carrying a cube decision.
func pickCubeLine(lines []string) string {
	for _, l := range lines {
		if isCubeLine(l) {
			return l
		}
	}
	return ""
}

// pickMoveLine returns the move tokens of the best candidate line. Lines
// with an equity marker win; otherwise the last slash-bearing run of the
// first non-banned line with a move token is used.
func pickMoveLine(lines []string) string {
	for _, l := range lines {
		if isBanned(l) || !strings.Contains(l, equityMarker) || !hasMoveToken(l) {
			continue
		}
		if island := moveIsland(l); island != "" {
			return island
		}
	}

	for _, l := range lines {
		if isBanned(l) || !hasMoveToken(l) {
			continue
		}
		var runs []string
		for _, r := range wideGapRe.Split(l, -1) {
			if strings.Contains(r, "/") {
				runs = append(runs, strings.TrimSpace(r))
			}
		}
		if len(runs) > 0 {
			return runs[len(runs)-1]
		}
	}
	return ""
}

// TakeOrPass is the verdict for a player facing a double.
type TakeOrPass struct {
	Pass    bool
	Beaver  bool
	Percent string // beaver percentage when gnubg printed one
}

func (v TakeOrPass) String() string {
	if v.Pass {
		return "Pass"
	}
	if v.Beaver {
		if v.Percent != "" {
			return fmt.Sprintf("Take (beaver possible, ~%s%%)", v.Percent)
		}
		return "Take (beaver possible)"
	}
	return "Take"
}

// DecideTakePass reads a cube analysis block from the receiver's side.
// "Proper cube action" wins when present; otherwise the block is searched
// for double-pass, double-take and no-double in that order. The default is
// take.
func DecideTakePass(lines []string) TakeOrPass {
	for _, l := range lines {
		m := properRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		action := strings.ToLower(m[1])
		switch {
		case strings.Contains(action, "double, pass"):
			return TakeOrPass{Pass: true}
		case strings.Contains(action, "no double") && strings.Contains(action, "beaver"):
			return TakeOrPass{Beaver: true, Percent: m[2]}
		}
		return TakeOrPass{}
	}

	text := strings.ToLower(strings.Join(lines, "\n"))
	if strings.Contains(text, "double, pass") && !strings.Contains(text, "no double") {
		return TakeOrPass{Pass: true}
	}
	return TakeOrPass{}
}

// HumanizeCube renders a cube line for display.
func HumanizeCube(line string) string {
	t := strings.ToLower(strings.TrimSpace(line))
	proper := strings.Contains(t, properCubePhrase)

	switch {
	case strings.Contains(t, "no double") && strings.Contains(t, "beaver") && !proper:
		return "Cube: no double (beaver possible)"
	case strings.Contains(t, "no double") && !proper:
		return "Cube: no double"
	case strings.Contains(t, "double, pass") && !proper:
		return "Cube: double, pass"
	case strings.Contains(t, "double, take") && !proper:
		return "Cube: double, take"
	}
	if m := properRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
		action := strings.ToLower(m[1])
		if m[2] != "" {
			action += fmt.Sprintf(" (%s%%)", m[2])
		}
		return "Cube: " + action
	}
	return "Cube: " + strings.TrimSpace(line)
}

// HumanizeMove renders a move line for display, returning the parsed
// segments when the line is well formed.
func HumanizeMove(line string) (string, []move.Token) {
	plan, err := move.ParseLine(line)
	if err != nil || len(plan) == 0 {
		return "Move: " + strings.TrimSpace(line), nil
	}
	parts := make([]string, len(plan))
	for i, t := range plan {
		parts[i] = t.From.String() + " -> " + t.To.String()
	}
	return "Play: " + strings.Join(parts, ", "), plan
}

// Parse structures a gnubg reply. It never fails: text with nothing
// recognizable yields KindNone with a roll recommendation.
func Parse(raw string, receivingDouble bool) Response {
	resp := Response{Status: StatusOK, Raw: raw}
	lines := splitLines(raw)

	for _, l := range lines {
		if isNoLegalMoves(l) {
			resp.set(KindNoLegalMoves, ActionNone, "No legal moves", "detected no legal moves")
			return resp
		}
	}

	if receivingDouble {
		for i, l := range lines {
			if !startsCubeAnalysis(l) {
				continue
			}
			verdict := DecideTakePass(lines[i:])
			resp.set(KindOffer, ActionCube, decisionTitle+verdict.String(), "receiving double")
			resp.finishCube(receivingDouble)
			return resp
		}
	}

	cubeLine := pickCubeLine(lines)
	moveLine := pickMoveLine(lines)
	resp.Meta.CubeLine = cubeLine
	resp.Meta.MoveLine = moveLine

	switch {
	case cubeLine != "" && moveLine == "":
		resp.set(KindOffer, ActionCube, HumanizeCube(cubeLine), "detected cube decision")
	case cubeLine == "" && moveLine != "":
		human, plan := HumanizeMove(moveLine)
		resp.Moves = plan
		resp.set(KindHint, ActionMove, human, fmt.Sprintf("detected move line; parsed=%v", move.Strings(plan)))
	case cubeLine != "" && moveLine != "":
		human, plan := HumanizeMove(moveLine)
		resp.Moves = plan
		resp.set(KindOffer, ActionCube, HumanizeCube(cubeLine)+"; "+human, fmt.Sprintf("both found; parsed=%v", move.Strings(plan)))
	default:
		resp.set(KindNone, ActionRoll, "Roll the dice", "nothing matched; default to roll")
	}
	resp.finishCube(receivingDouble)
	return resp
}

func (r *Response) set(kind Kind, action Action, human, debug string) {
	r.Kind = kind
	r.Action = action
	r.Human = human
	r.Meta.Kind = kind
	r.Meta.Debug = debug
}

func (r *Response) finishCube(receivingDouble bool) {
	r.Cube = NormalizeCube(r.Human)
	r.CubeVerbose = CubeVerbose(r.Cube, receivingDouble, r.Kind)
}
