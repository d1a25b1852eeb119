package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgpilot/internal/matchid"
	"github.com/yourusername/bgpilot/internal/notify"
	"github.com/yourusername/bgpilot/pkg/engine"
	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/gnubg"
	"github.com/yourusername/bgpilot/pkg/move"
	"github.com/yourusername/bgpilot/pkg/sim"
)

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	pipeline   *engine.Engine
	hinter     engine.Hinter
	version    string
	pool       *WorkerPool
	broker     *Broker
	notifyPool *notify.Pool

	// the pipeline expects events from one goroutine at a time
	eventMu sync.Mutex
}

// NewHandlers creates a new Handlers instance without a worker pool.
// pipeline and hinter may be nil; the endpoints needing them answer 503.
func NewHandlers(pipeline *engine.Engine, hinter engine.Hinter, version string) *Handlers {
	return &Handlers{
		pipeline: pipeline,
		hinter:   hinter,
		version:  version,
		broker:   NewBroker(),
	}
}

// NewHandlersWithPool creates a new Handlers instance with a worker pool.
func NewHandlersWithPool(pipeline *engine.Engine, hinter engine.Hinter, version string, pool *WorkerPool) *Handlers {
	h := NewHandlers(pipeline, hinter, version)
	h.pool = pool
	return h
}

// Broker returns the notice broadcaster backing the SSE stream.
func (h *Handlers) Broker() *Broker { return h.broker }

// SetNotifyPool reports the notification pool in health checks.
func (h *Handlers) SetNotifyPool(p *notify.Pool) { h.notifyPool = p }

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("write-json")
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// decode reads a JSON body, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return false
	}
	return true
}

// acquireFast takes a fast slot if a pool is configured. The returned
// function releases it.
func (h *Handlers) acquireFast(w http.ResponseWriter, r *http.Request) (func(), bool) {
	if h.pool == nil {
		return func() {}, true
	}
	if err := h.pool.AcquireFast(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return nil, false
	}
	return h.pool.ReleaseFast, true
}

func (h *Handlers) acquireGnubg(w http.ResponseWriter, r *http.Request) (func(), bool) {
	if h.pool == nil {
		return func() {}, true
	}
	if err := h.pool.AcquireGnubg(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "server busy", "SERVER_BUSY")
		return nil, false
	}
	return h.pool.ReleaseGnubg, true
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Ready:   h.pipeline != nil && h.hinter != nil,
	}
	if h.pipeline != nil {
		if tok := h.pipeline.Turns().Current(); tok.Nonce != 0 {
			resp.Turn = tok.String()
		}
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	if h.notifyPool != nil {
		stats := h.notifyPool.Stats()
		resp.Notify = &stats
	}

	writeJSON(w, http.StatusOK, resp)
}

// EncodePosition handles POST /api/posid
func (h *Handlers) EncodePosition(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	var req PositionRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Context == nil && req.Players != nil {
		req.Context = &game.Context{Players: req.Players}
	}

	id, err := game.EncodePosition(req.Board, req.Context, req.Mover)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}
	writeJSON(w, http.StatusOK, PositionResponse{Position: id})
}

// DecodePosition handles GET /api/posid?id=...
func (h *Handlers) DecodePosition(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required", "MISSING_POSITION")
		return
	}

	nonMover, mover, err := game.DecodePosition(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_POSITION")
		return
	}
	resp := DecodeResponse{Position: id, NonMover: nonMover, Mover: mover, Legal: game.PositionLegal(id)}
	for i := range nonMover {
		resp.Checkers[0] += nonMover[i]
		resp.Checkers[1] += mover[i]
	}
	writeJSON(w, http.StatusOK, resp)
}

// EncodeMatch handles POST /api/matchid
func (h *Handlers) EncodeMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if !decode(w, r, &req) {
		return
	}

	var f matchid.Fields
	switch {
	case req.Event != nil:
		var err error
		if f, err = game.MatchFields(req.Event); err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_EVENT")
			return
		}
	case req.Fields != nil:
		f = req.Fields.Fields()
		if f.CubeOwner < matchid.CubeCentered || f.CubeOwner > 1 {
			writeError(w, http.StatusBadRequest, "cube_owner must be -1, 0 or 1", "INVALID_FIELDS")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "event or fields is required", "MISSING_FIELDS")
		return
	}

	writeJSON(w, http.StatusOK, MatchResponse{MatchID: matchid.MatchID(f), Fields: FieldsToResponse(f)})
}

// DecodeMatch handles GET /api/matchid?id=...
func (h *Handlers) DecodeMatch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	f, err := matchid.Decode(id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_MATCH_ID")
		return
	}
	writeJSON(w, http.StatusOK, MatchResponse{MatchID: id, Fields: FieldsToResponse(f)})
}

// Parse handles POST /api/parse
func (h *Handlers) Parse(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	var req ParseRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, gnubg.Parse(req.Raw, req.ReceivingDouble))
}

// Plan handles POST /api/plan
func (h *Handlers) Plan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !decode(w, r, &req) {
		return
	}

	plan, err := move.ParseLine(req.Line)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_MOVE")
		return
	}
	if req.Invert {
		plan = move.Invert(plan)
	}
	opt := move.Optimize(plan)
	writeJSON(w, http.StatusOK, PlanResponse{
		Moves:     move.Strings(plan),
		Optimized: move.Strings(opt),
		Short:     move.Short(opt),
	})
}

// Simulate handles POST /api/simulate
func (h *Handlers) Simulate(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireFast(w, r)
	if !ok {
		return
	}
	defer release()

	var req SimulateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Board == nil || req.Mover == "" {
		writeError(w, http.StatusBadRequest, "board and mover are required", "MISSING_BOARD")
		return
	}
	plan, err := move.ParseLine(req.Line)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_MOVE")
		return
	}

	res := sim.Apply(req.Board, plan, req.Mover)
	resp := SimulateResponse{OK: true, Board: res.Board, Steps: engine.StepResults(res.Steps)}
	if err := res.Err(); err != nil {
		resp.OK = false
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// FIBSBoard handles POST /api/fibsboard
func (h *Handlers) FIBSBoard(w http.ResponseWriter, r *http.Request) {
	var req FIBSRequest
	if !decode(w, r, &req) {
		return
	}

	fb, err := game.ParseFIBSBoard(req.Board)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_BOARD")
		return
	}
	e, err := fb.Event()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_BOARD")
		return
	}
	posID, matchID, err := game.IDs(e)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_BOARD")
		return
	}
	writeJSON(w, http.StatusOK, FIBSResponse{Position: posID, MatchID: matchID, Event: e})
}

// Hint handles POST /api/hint
func (h *Handlers) Hint(w http.ResponseWriter, r *http.Request) {
	if h.hinter == nil {
		writeError(w, http.StatusServiceUnavailable, "gnubg not configured", "NO_ENGINE")
		return
	}
	release, ok := h.acquireGnubg(w, r)
	if !ok {
		return
	}
	defer release()

	var req HintRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PositionID == "" || req.MatchID == "" {
		writeError(w, http.StatusBadRequest, "position and match_id are required", "MISSING_POSITION")
		return
	}

	resp := h.hinter.Hint(r.Context(), gnubg.Request{
		PosID:           req.PositionID,
		MatchID:         req.MatchID,
		ReceivingDouble: req.ReceivingDouble,
		NewGame:         req.NewGame,
	})
	writeJSON(w, http.StatusOK, resp)
}

var errNoPipeline = errors.New("pipeline not configured")

// processEvent runs one event through the pipeline, one at a time.
func (h *Handlers) processEvent(r *http.Request, ev *game.Event) (engine.Decision, error) {
	if h.pipeline == nil {
		return engine.Decision{}, errNoPipeline
	}
	h.eventMu.Lock()
	defer h.eventMu.Unlock()
	return h.pipeline.ProcessEvent(r.Context(), ev), nil
}

// Event handles POST /api/event
func (h *Handlers) Event(w http.ResponseWriter, r *http.Request) {
	release, ok := h.acquireGnubg(w, r)
	if !ok {
		return
	}
	defer release()

	var ev game.Event
	if !decode(w, r, &ev) {
		return
	}
	d, err := h.processEvent(r, &ev)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error(), "NO_ENGINE")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
