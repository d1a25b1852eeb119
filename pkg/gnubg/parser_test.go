package gnubg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bgpilot/pkg/move"
)

const asciiBoard = ` GNU Backgammon  Position ID: 4HPwATDgc/ABMA
                 Match ID   : cAkAAAAAAAAA
 +13-14-15-16-17-18------19-20-21-22-23-24-+     O: gnubg
 | X           O    |   | O              X |     0 points
 | X           O    |   | O              X |
 | X           O    |   | O                |
 | X                |   | O                |
 | X                |   | O                |
v|                  |BAR|                  |     (Cube: 1)
 | O                |   | X                |
 | O                |   | X                |
 | O           X    |   | X                |
 | O           X    |   | X              O |     0 points
 | O           X    |   | X              O |     X: user (on roll)
 +12-11-10--9--8--7-------6--5--4--3--2--1-+
 Pip counts: O 167, X 167
`

const hintReply = asciiBoard + `
    1. Cubeful 0-ply    8/5 6/5                      Eq.:  +0.158
       0.551 0.172 0.007 - 0.449 0.124 0.005
    2. Cubeful 0-ply    13/10 13/8                   Eq.:  -0.008 ( -0.166)
`

const cubeReply = asciiBoard + `
Cube analysis
0-ply cubeless equity  +0.567 (Money: +0.567)
  0.689 0.251 0.012 - 0.311 0.076 0.003
Cubeful equities:
1. No double            +0.682
2. Double, pass         +1.000  (+0.318)
3. Double, take         +0.595  (-0.087)
Proper cube action: No double, beaver (26.9%)
`

func TestParseDefaultsToRoll(t *testing.T) {
	resp := Parse(asciiBoard, false)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, KindNone, resp.Kind)
	assert.Equal(t, ActionRoll, resp.Action)
	assert.Empty(t, resp.Moves)
	assert.Equal(t, CubeNone, resp.Cube)
	assert.Equal(t, asciiBoard, resp.Raw)
}

func TestParseHint(t *testing.T) {
	resp := Parse(hintReply, false)

	require.Equal(t, KindHint, resp.Kind)
	assert.Equal(t, ActionMove, resp.Action)
	assert.Equal(t, []string{"8/5", "6/5"}, resp.MoveStrings())
	assert.Equal(t, "8/5 6/5", resp.Meta.MoveLine)
	assert.Equal(t, "Play: 8 -> 5, 6 -> 5", resp.Human)
	assert.Equal(t, "Cube: no recommendation (checker play)", resp.CubeVerbose)
}

func TestParseHintChainAndHits(t *testing.T) {
	reply := "    1. Cubeful 2-ply    bar/22* 13/7/4*(2)      Eq.:  +0.412\n"
	resp := Parse(reply, false)

	require.Equal(t, KindHint, resp.Kind)
	assert.Equal(t, []string{"bar/22*", "13/7", "7/4*", "7/4*"}, resp.MoveStrings())
	assert.Equal(t, []string{"bar/22", "13/7", "7/4", "7/4"}, resp.MachineMoves())
}

func TestParseFallbackMoveLine(t *testing.T) {
	reply := "Best move:   24/18 13/11\n"
	resp := Parse(reply, false)

	require.Equal(t, KindHint, resp.Kind)
	assert.Equal(t, []string{"24/18", "13/11"}, resp.MoveStrings())
}

func TestParseIgnoresBannedLines(t *testing.T) {
	reply := "X rolled 6/5 something\nPosition ID: 4HPwATDgc/ABMA 24/18 Eq.: 1\n"
	resp := Parse(reply, false)
	assert.Equal(t, KindNone, resp.Kind)
}

func TestParseNoLegalMoves(t *testing.T) {
	resp := Parse(hintReply+"\nThere are no legal moves.\n", false)

	assert.Equal(t, KindNoLegalMoves, resp.Kind)
	assert.Equal(t, ActionNone, resp.Action)
	assert.Empty(t, resp.Moves)
}

func TestParseCubeOffer(t *testing.T) {
	resp := Parse(cubeReply, false)

	require.Equal(t, KindOffer, resp.Kind)
	assert.Equal(t, "1. No double            +0.682", resp.Meta.CubeLine)
	assert.Equal(t, "Cube: no double", resp.Human)
	assert.Equal(t, CubeNoDouble, resp.Cube)
	assert.Equal(t, "Cube: no double", resp.CubeVerbose)
}

func TestParseCubeAndMove(t *testing.T) {
	resp := Parse("Proper cube action: Double, take\n 1. Cubeful 2-ply  24/18 13/11  Eq.: +0.1\n", false)

	require.Equal(t, KindOffer, resp.Kind)
	assert.Equal(t, "Cube: double, take; Play: 24 -> 18, 13 -> 11", resp.Human)
	assert.Equal(t, CubeDoubleTake, resp.Cube)
	assert.Len(t, resp.Moves, 2)
}

func TestParseReceivingDouble(t *testing.T) {
	resp := Parse(cubeReply, true)

	require.Equal(t, KindOffer, resp.Kind)
	assert.Equal(t, "Double decision: Take (beaver possible, ~26.9%)", resp.Human)
	assert.Equal(t, CubeBeaver, resp.Cube)
	assert.Equal(t, "Double decision: take", resp.CubeVerbose)

	// Without a cube analysis block the normal path runs.
	resp = Parse(hintReply, true)
	assert.Equal(t, KindHint, resp.Kind)
}

func TestDecideTakePass(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"proper pass", []string{"Cube analysis", "Proper cube action: Double, pass"}, "Pass"},
		{"proper too good", []string{"Proper cube action: Too good to double, pass"}, "Pass"},
		{"proper take", []string{"Proper cube action: Double, take"}, "Take"},
		{"proper no double", []string{"Proper cube action: No double"}, "Take"},
		{"proper beaver", []string{"Proper cube action: No double, beaver"}, "Take (beaver possible)"},
		{"only pass listed", []string{"Cube analysis", "1. Double, pass  +1.000"}, "Pass"},
		{"all listed", []string{"1. No double", "2. Double, pass", "3. Double, take"}, "Take"},
		{"nothing", []string{"Cube analysis"}, "Take"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, DecideTakePass(tc.lines).String())
		})
	}
}

func TestNormalizeCube(t *testing.T) {
	tests := []struct {
		human string
		want  Cube
	}{
		{"Cube: no double", CubeNoDouble},
		{"Cube: no double (beaver possible)", CubeBeaver},
		{"Cube: double, pass", CubeDoublePass},
		{"Cube: double, take", CubeDoubleTake},
		{"Double decision: Pass", CubePass},
		{"Double decision: Take", CubeTake},
		{"Play: 24 -> 18", CubeNone},
		{"", CubeNone},
	}

	for _, tc := range tests {
		t.Run(tc.human, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeCube(tc.human))
		})
	}
}

func TestCubeVerbose(t *testing.T) {
	assert.Equal(t, "Double decision: pass", CubeVerbose(CubeDoublePass, true, KindOffer))
	assert.Equal(t, "Double decision: take", CubeVerbose(CubeNone, true, KindOffer))
	assert.Equal(t, "Cube: double (opponent passes)", CubeVerbose(CubeDoublePass, false, KindOffer))
	assert.Equal(t, "Cube: undecided", CubeVerbose(CubeNone, false, KindNone))
}

func TestHumanizeMoveUnparsable(t *testing.T) {
	human, plan := HumanizeMove("30/20")
	assert.Equal(t, "Move: 30/20", human)
	assert.Nil(t, plan)

	_, plan = HumanizeMove("24/18")
	assert.Equal(t, []move.Token{{From: 24, To: 18}}, plan)
}
