package gnubg

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Request asks for a recommendation in one position.
type Request struct {
	PosID           string
	MatchID         string
	ReceivingDouble bool // the player on roll is answering a double
	NewGame         bool
}

// Client sends hint requests through a Runner.
type Client struct {
	runner  Runner
	options CommandOptions
}

// NewClient creates a client.
func NewClient(runner Runner, opts CommandOptions) *Client {
	return &Client{runner: runner, options: opts}
}

// Hint runs gnubg on a position and parses its reply. A failed run is
// reported as an error-status response recommending a roll; it is never
// returned as an error.
func (c *Client) Hint(ctx context.Context, req Request) Response {
	opts := c.options
	opts.NewGame = req.NewGame
	cmds := Commands(req.PosID, req.MatchID, opts)
	reqID := uuid.NewString()

	start := time.Now()
	out, err := c.runner.Run(ctx, cmds)
	elapsed := time.Since(start)

	var resp Response
	if err != nil {
		log.Warn().Err(err).Str("request", reqID).Dur("elapsed", elapsed).Msg("gnubg-failed")
		resp = Response{
			Status: StatusError,
			Kind:   KindNone,
			Action: ActionRoll,
			Human:  "gnubg error: " + err.Error(),
			Raw:    out,
			Meta:   Meta{Kind: KindNone, Debug: err.Error()},
		}
	} else {
		resp = Parse(out, req.ReceivingDouble)
	}

	resp.Meta.RequestID = reqID
	resp.Meta.PosID = req.PosID
	resp.Meta.MatchID = req.MatchID
	resp.Meta.Commands = cmds

	log.Debug().
		Str("request", reqID).
		Str("pos", req.PosID).
		Str("match", req.MatchID).
		Str("kind", string(resp.Kind)).
		Str("cube", string(resp.Cube)).
		Strs("moves", resp.MoveStrings()).
		Dur("elapsed", elapsed).
		Msg("gnubg-hint")
	return resp
}
