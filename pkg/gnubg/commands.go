package gnubg

import "fmt"

// CommandOptions selects the optional parts of a hint script.
type CommandOptions struct {
	NewGame bool   // start a fresh game first
	Variant string // e.g. "standard"; empty leaves gnubg's default
	Hints   int    // number of candidate moves to request
}

// Commands builds the hint script for a position and match context.
func Commands(posID, matchID string, opts CommandOptions) []string {
	var cmds []string
	if opts.NewGame {
		cmds = append(cmds, "new game")
	}
	if opts.Variant != "" {
		cmds = append(cmds, "set variation "+opts.Variant)
	}
	hints := opts.Hints
	if hints <= 0 {
		hints = 1
	}
	cmds = append(cmds,
		"clear turn",
		"set board "+posID,
		"set matchid "+matchID,
		fmt.Sprintf("hint %d", hints),
	)
	return cmds
}
