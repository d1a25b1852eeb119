package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/gnubg"
	"github.com/yourusername/bgpilot/pkg/move"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the table client connects from its own origin
	},
}

// WSMessage is a generic WebSocket message.
type WSMessage struct {
	Type    string          `json:"type"`    // Message type: "event", "hint", "parse", "plan", "ping"
	ID      string          `json:"id"`      // Request ID for correlating responses
	Payload json.RawMessage `json:"payload"` // Type-specific payload
}

// WSResponse is a generic WebSocket response.
type WSResponse struct {
	Type    string `json:"type"`              // Response type: "decision", "result", "error", "pong"
	ID      string `json:"id,omitempty"`      // Request ID
	Payload any    `json:"payload,omitempty"` // Response data
	Error   string `json:"error,omitempty"`   // Error message if any
}

// WSClient is one connected table client. Game-state events arrive on the
// socket in order and decisions go back on it.
type WSClient struct {
	id       string
	conn     *websocket.Conn
	handlers *Handlers
	ctx      context.Context
	sendChan chan WSResponse
	done     chan struct{} // closed when writePump exits
}

// WebSocket handles WebSocket connections streaming game-state events.
func (h *Handlers) WebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws-upgrade")
		return
	}
	client := &WSClient{
		id:       uuid.NewString(),
		conn:     conn,
		handlers: h,
		ctx:      r.Context(),
		sendChan: make(chan WSResponse, 256),
		done:     make(chan struct{}),
	}
	log.Debug().Str("client", client.id).Msg("ws-connected")
	go client.writePump()
	client.readPump()
}

func (c *WSClient) writePump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()
	for msg := range c.sendChan {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (c *WSClient) readPump() {
	defer func() {
		close(c.sendChan)
		c.conn.Close()
		log.Debug().Str("client", c.id).Msg("ws-disconnected")
	}()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.handleMessage(msg)
	}
}

// send queues resp for the writer. Once the writer has gone the response
// is dropped.
func (c *WSClient) send(resp WSResponse) bool {
	select {
	case c.sendChan <- resp:
		return true
	case <-c.done:
		return false
	}
}

func (c *WSClient) fail(msg WSMessage, text string) {
	c.send(WSResponse{Type: "error", ID: msg.ID, Error: text})
}

func (c *WSClient) handleMessage(msg WSMessage) {
	switch msg.Type {
	case "event":
		c.handleEvent(msg)
	case "hint":
		c.handleHint(msg)
	case "parse":
		c.handleParse(msg)
	case "plan":
		c.handlePlan(msg)
	case "ping":
		c.send(WSResponse{Type: "pong", ID: msg.ID})
	default:
		c.fail(msg, "unknown message type")
	}
}

func (c *WSClient) handleEvent(msg WSMessage) {
	var ev game.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		c.fail(msg, "invalid payload")
		return
	}
	h := c.handlers
	if h.pipeline == nil {
		c.fail(msg, errNoPipeline.Error())
		return
	}
	h.eventMu.Lock()
	d := h.pipeline.ProcessEvent(c.ctx, &ev)
	h.eventMu.Unlock()
	c.send(WSResponse{Type: "decision", ID: msg.ID, Payload: d})
}

func (c *WSClient) handleHint(msg WSMessage) {
	var req HintRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.fail(msg, "invalid payload")
		return
	}
	if c.handlers.hinter == nil {
		c.fail(msg, "gnubg not configured")
		return
	}
	if req.PositionID == "" || req.MatchID == "" {
		c.fail(msg, "position and match_id are required")
		return
	}
	pool := c.handlers.pool
	if pool != nil {
		if err := pool.AcquireGnubg(c.ctx); err != nil {
			c.fail(msg, "server busy")
			return
		}
	}
	resp := c.handlers.hinter.Hint(c.ctx, gnubg.Request{
		PosID:           req.PositionID,
		MatchID:         req.MatchID,
		ReceivingDouble: req.ReceivingDouble,
		NewGame:         req.NewGame,
	})
	if pool != nil {
		pool.ReleaseGnubg()
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: resp})
}

func (c *WSClient) handleParse(msg WSMessage) {
	var req ParseRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.fail(msg, "invalid payload")
		return
	}
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: gnubg.Parse(req.Raw, req.ReceivingDouble)})
}

func (c *WSClient) handlePlan(msg WSMessage) {
	var req PlanRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.fail(msg, "invalid payload")
		return
	}
	plan, err := move.ParseLine(req.Line)
	if err != nil {
		c.fail(msg, "invalid move: "+err.Error())
		return
	}
	if req.Invert {
		plan = move.Invert(plan)
	}
	opt := move.Optimize(plan)
	c.send(WSResponse{Type: "result", ID: msg.ID, Payload: PlanResponse{
		Moves:     move.Strings(plan),
		Optimized: move.Strings(opt),
		Short:     move.Short(opt),
	}})
}
