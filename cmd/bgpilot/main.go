// bgpilot - backgammon position codecs, gnubg hints and move-plan tools
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yourusername/bgpilot/internal/config"
	"github.com/yourusername/bgpilot/internal/matchid"
	"github.com/yourusername/bgpilot/pkg/engine"
	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/gnubg"
	"github.com/yourusername/bgpilot/pkg/move"
	"github.com/yourusername/bgpilot/pkg/sim"
)

var cfg config.Config

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg = config.Load()
	cfg.SetupLogging(os.Stderr)

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "posid":
		cmdPosID(args)
	case "decode":
		cmdDecode(args)
	case "matchid":
		cmdMatchID(args)
	case "parse":
		cmdParse(args)
	case "expand":
		cmdExpand(args)
	case "simulate":
		cmdSimulate(args)
	case "hint":
		cmdHint(args)
	case "event":
		cmdEvent(args)
	case "fibs":
		cmdFIBS(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bgpilot - gnubg-backed backgammon assistant

Usage: bgpilot <command> [options]

Commands:
  posid     Encode a board snapshot as a gnubg position ID
  decode    Decode a position ID into per-point checker counts
  matchid   Decode a match ID, or encode one from a game event
  parse     Parse raw gnubg output into a recommendation
  expand    Expand and optimize a gnubg move line
  simulate  Apply a move line to a board snapshot
  hint      Ask gnubg for a hint on a position
  event     Run one game-state event through the pipeline
  fibs      Convert a FIBS board line into IDs or a game event

Use "bgpilot <command> -h" for command-specific help.

Configuration is read from .env and the environment (GNUBG_PATH,
GNUBG_TIMEOUT_SEC, GNUBG_DRY_RUN, BGPILOT_LOG_LEVEL, BGPILOT_HERO_ID, ...).`)
}

func fail(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", a...)
	os.Exit(1)
}

// readInput reads a named file, or stdin for "" and "-".
func readInput(name string) []byte {
	var (
		data []byte
		err  error
	)
	if name == "" || name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		fail("reading input: %v", err)
	}
	return data
}

func readJSON(name string, v any) {
	if err := json.Unmarshal(readInput(name), v); err != nil {
		fail("invalid JSON: %v", err)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fail("%v", err)
	}
}

// splitIDs accepts gnubg's "positionID:matchID" form.
func splitIDs(s string) (string, string) {
	if i := strings.Index(s, ":"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

func cmdPosID(args []string) {
	fs := flag.NewFlagSet("posid", flag.ExitOnError)
	in := fs.String("in", "-", "JSON file with {board, context, mover}")
	mover := fs.String("mover", "", "Player on roll (overrides the file)")
	fs.Parse(args)

	var req struct {
		Board   *game.Snapshot `json:"board"`
		Context *game.Context  `json:"context"`
		Mover   game.PlayerID  `json:"mover"`
	}
	readJSON(*in, &req)
	if *mover != "" {
		req.Mover = game.PlayerID(*mover)
	}

	id, err := game.EncodePosition(req.Board, req.Context, req.Mover)
	if err != nil {
		fail("%v", err)
	}
	fmt.Println(id)
}

func cmdDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	posFlag := fs.String("position", "", "Position ID (gnubg format)")
	posShort := fs.String("p", "", "Position ID (short form)")
	fs.Parse(args)

	pos := *posFlag
	if pos == "" {
		pos = *posShort
	}
	if pos == "" && fs.NArg() > 0 {
		pos = fs.Arg(0)
	}
	if pos == "" {
		fmt.Fprintln(os.Stderr, "Usage: bgpilot decode -position <positionID>")
		os.Exit(1)
	}
	pos, _ = splitIDs(pos)

	nonMover, mover, err := game.DecodePosition(pos)
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Position %s (mover's numbering, bar first)\n", pos)
	printCounts("Mover", mover)
	printCounts("Opponent", nonMover)
	if !game.PositionLegal(pos) {
		fmt.Println("  Warning: this position cannot occur in play")
	}
}

func printCounts(label string, c game.Counts) {
	total := 0
	var parts []string
	if c[0] > 0 {
		parts = append(parts, fmt.Sprintf("bar:%d", c[0]))
	}
	for p := game.NumPoints; p >= 1; p-- {
		if c[p] > 0 {
			parts = append(parts, fmt.Sprintf("%d:%d", p, c[p]))
		}
	}
	for _, n := range c {
		total += n
	}
	fmt.Printf("  %-9s %-50s (%d on board, %d off)\n", label+":", strings.Join(parts, " "), total, 15-total)
}

func cmdMatchID(args []string) {
	fs := flag.NewFlagSet("matchid", flag.ExitOnError)
	id := fs.String("m", "", "Match ID to decode")
	event := fs.String("event", "", "Game event JSON file to encode ('-' for stdin)")
	fs.Parse(args)

	if *event != "" {
		var ev game.Event
		readJSON(*event, &ev)
		f, err := game.MatchFields(&ev)
		if err != nil {
			fail("%v", err)
		}
		fmt.Println(matchid.MatchID(f))
		return
	}

	m := *id
	if m == "" && fs.NArg() > 0 {
		_, m = splitIDs(fs.Arg(0))
	}
	f, err := matchid.Decode(m)
	if err != nil {
		fail("%v", err)
	}
	cube := "centered"
	if f.CubeOwner != matchid.CubeCentered {
		cube = fmt.Sprintf("player %d", f.CubeOwner)
	}
	fmt.Printf("Match ID %s\n", m)
	fmt.Printf("  Cube:     %d (%s)\n", f.CubeValue, cube)
	fmt.Printf("  On roll:  player %d, decision: player %d\n", f.PlayerOnRoll, f.TurnOwner)
	fmt.Printf("  Dice:     %d-%d\n", f.Dice[0], f.Dice[1])
	fmt.Printf("  Match:    %d (score %d-%d)\n", f.MatchLength, f.Score[0], f.Score[1])
	fmt.Printf("  Crawford: %v, double offered: %v\n", f.Crawford, f.DoubleOffered)
}

func cmdParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	in := fs.String("in", "-", "File with raw gnubg output")
	receiving := fs.Bool("receiving", false, "The player on roll is answering a double")
	asJSON := fs.Bool("json", false, "Print the full response as JSON")
	fs.Parse(args)

	resp := gnubg.Parse(string(readInput(*in)), *receiving)
	if *asJSON {
		printJSON(resp)
		return
	}
	printResponse(resp)
}

func printResponse(resp gnubg.Response) {
	fmt.Printf("Kind:   %s\n", resp.Kind)
	fmt.Printf("Action: %s\n", resp.Action)
	fmt.Printf("Human:  %s\n", resp.Human)
	if len(resp.Moves) > 0 {
		fmt.Printf("Moves:  %s\n", strings.Join(resp.MoveStrings(), " "))
	}
	if resp.CubeVerbose != "" {
		fmt.Printf("Cube:   %s\n", resp.CubeVerbose)
	}
}

func cmdExpand(args []string) {
	fs := flag.NewFlagSet("expand", flag.ExitOnError)
	invert := fs.Bool("invert", false, "Renumber points 25-n")
	fs.Parse(args)

	line := strings.Join(fs.Args(), " ")
	if line == "" {
		fmt.Fprintln(os.Stderr, `Usage: bgpilot expand [-invert] "bar/22 13/7(2)"`)
		os.Exit(1)
	}

	plan, err := move.ParseLine(line)
	if err != nil {
		fail("%v", err)
	}
	if *invert {
		plan = move.Invert(plan)
	}
	opt := move.Optimize(plan)

	fmt.Printf("Segments:  %s\n", strings.Join(move.Strings(plan), " "))
	fmt.Printf("Optimized: %s\n", strings.Join(move.Strings(opt), " "))
	fmt.Printf("Short:     %s\n", move.Short(opt))
}

func cmdSimulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	in := fs.String("in", "-", "Board snapshot JSON file")
	mover := fs.String("mover", "", "Player making the moves")
	fs.Parse(args)

	line := strings.Join(fs.Args(), " ")
	if *mover == "" || line == "" {
		fmt.Fprintln(os.Stderr, `Usage: bgpilot simulate -in board.json -mover <id> "8/5 6/5"`)
		os.Exit(1)
	}

	var board game.Snapshot
	readJSON(*in, &board)
	plan, err := move.ParseLine(line)
	if err != nil {
		fail("%v", err)
	}

	res := sim.Apply(&board, plan, game.PlayerID(*mover))
	for _, s := range engine.StepResults(res.Steps) {
		status := "ok"
		if s.Error != "" {
			status = s.Error
		} else if s.Hit {
			status = "ok, hit"
		}
		fmt.Printf("  %-10s %s\n", s.Move, status)
	}
	printJSON(res.Board)
	if res.Err() != nil {
		os.Exit(2)
	}
}

func cmdHint(args []string) {
	fs := flag.NewFlagSet("hint", flag.ExitOnError)
	posFlag := fs.String("p", "", "Position ID, or positionID:matchID")
	matchFlag := fs.String("m", "", "Match ID")
	receiving := fs.Bool("receiving", false, "The player on roll is answering a double")
	newGame := fs.Bool("new-game", false, "Start a fresh gnubg game first")
	dryRun := fs.Bool("dry-run", cfg.DryRun, "Print the gnubg script instead of running it")
	asJSON := fs.Bool("json", false, "Print the full response as JSON")
	fs.Parse(args)

	pos, match := splitIDs(*posFlag)
	if *matchFlag != "" {
		match = *matchFlag
	}
	if pos == "" || match == "" {
		fmt.Fprintln(os.Stderr, "Usage: bgpilot hint -p <positionID> -m <matchID>")
		os.Exit(1)
	}

	c := cfg
	c.DryRun = *dryRun
	resp := c.Client().Hint(context.Background(), gnubg.Request{
		PosID:           pos,
		MatchID:         match,
		ReceivingDouble: *receiving,
		NewGame:         *newGame,
	})
	if *asJSON {
		printJSON(resp)
		return
	}
	if !resp.OK() {
		fail("%s", resp.Human)
	}
	printResponse(resp)
}

func cmdEvent(args []string) {
	fs := flag.NewFlagSet("event", flag.ExitOnError)
	in := fs.String("in", "-", "Game event JSON file")
	hero := fs.String("hero", cfg.HeroID, "Player to act for (default: whoever is on roll)")
	dryRun := fs.Bool("dry-run", cfg.DryRun, "Print the gnubg script instead of running it")
	fs.Parse(args)

	var ev game.Event
	readJSON(*in, &ev)

	c := cfg
	c.DryRun = *dryRun
	c.HeroID = *hero
	e := engine.NewEngine(c.Client(), nil, nil, c.EngineOptions())
	printJSON(e.ProcessEvent(context.Background(), &ev))
}

func cmdFIBS(args []string) {
	fs := flag.NewFlagSet("fibs", flag.ExitOnError)
	in := fs.String("in", "", "File with the board line ('-' for stdin)")
	asEvent := fs.Bool("event", false, "Print the game event as JSON")
	fs.Parse(args)

	line := strings.Join(fs.Args(), " ")
	if *in != "" {
		line = string(readInput(*in))
	}
	if line == "" {
		fmt.Fprintln(os.Stderr, `Usage: bgpilot fibs [-event] "board:You:Opponent:..."`)
		os.Exit(1)
	}

	fb, err := game.ParseFIBSBoard(line)
	if err != nil {
		fail("%v", err)
	}
	e, err := fb.Event()
	if err != nil {
		fail("%v", err)
	}
	if *asEvent {
		printJSON(e)
		return
	}
	posID, matchID, err := game.IDs(e)
	if err != nil {
		fail("%v", err)
	}
	fmt.Printf("%s:%s\n", posID, matchID)
}
