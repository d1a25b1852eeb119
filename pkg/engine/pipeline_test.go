package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bgpilot/internal/notify"
	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/gnubg"
	"github.com/yourusername/bgpilot/pkg/move"
)

const (
	alice game.PlayerID = "alice"
	bob   game.PlayerID = "bob"
)

func intp(v int) *int { return &v }

type fakeHinter struct {
	resp   gnubg.Response
	reqs   []gnubg.Request
	during func()
}

func (f *fakeHinter) Hint(_ context.Context, req gnubg.Request) gnubg.Response {
	f.reqs = append(f.reqs, req)
	if f.during != nil {
		f.during()
	}
	return f.resp
}

type recordingDispatcher struct {
	got   []Dispatch
	after func(n int)
	err   error
}

func (r *recordingDispatcher) Dispatch(_ context.Context, d Dispatch) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, d)
	if r.after != nil {
		r.after(len(r.got))
	}
	return nil
}

func hintWith(t *testing.T, line string) gnubg.Response {
	t.Helper()
	plan, err := move.ParseLine(line)
	require.NoError(t, err)
	return gnubg.Response{Status: gnubg.StatusOK, Kind: gnubg.KindHint, Action: gnubg.ActionMove, Moves: plan}
}

func tableContext() game.Context {
	return game.Context{
		Players: &game.Players{First: &game.Seat{UserID: alice}, Second: &game.Seat{UserID: bob}},
		PlayersStates: map[game.PlayerID]game.PlayerState{
			alice: {BoardStartPosition: intp(23)},
			bob:   {BoardStartPosition: intp(0)},
		},
	}
}

func newEvent(name string, mover game.PlayerID, d1, d2 int, board *game.Snapshot, actions ...string) *game.Event {
	ev := &game.Event{
		Name:             name,
		AvailableActions: actions,
		Data: game.GameData{
			Context:     tableContext(),
			GameID:      "g-1",
			Board:       board,
			CurrentTurn: game.CurrentTurn{OwnerID: mover},
		},
		Context: game.EventContext{GameMatchID: "m-1", GameParams: game.GameParams{WinPointsCount: 5}},
	}
	if d1 > 0 {
		ev.Data.CurrentTurn.Dice = game.Dice{First: intp(d1), Second: intp(d2)}
	}
	return ev
}

type noticeLog struct{ kinds []string }

func (l *noticeLog) notifier() *notify.Notifier {
	return notify.NewNotifier(nil, notify.SinkFunc(func(_ context.Context, n notify.Notice) error {
		l.kinds = append(l.kinds, n.Kind)
		return nil
	}))
}

func newTestEngine(h Hinter, notices *noticeLog, hero game.PlayerID) *Engine {
	opts := DefaultEngineOptions()
	opts.HeroID = hero
	opts.DebounceTTL = 0
	var n *notify.Notifier
	if notices != nil {
		n = notices.notifier()
	}
	return NewEngine(h, nil, n, opts)
}

func TestPlayTurnDispatchesPlan(t *testing.T) {
	h := &fakeHinter{resp: hintWith(t, "8/5 6/5")}
	notices := &noticeLog{}
	e := newTestEngine(h, notices, alice)
	disp := &recordingDispatcher{}
	e.SetDispatcher(disp)

	ev := newEvent(game.EventDiceRolled, alice, 3, 1, game.StartingSnapshot(alice, bob), game.ActionMoveChecker)
	d := e.ProcessEvent(context.Background(), ev)

	require.Equal(t, DecisionMove, d.Kind, d.Reason)
	assert.Equal(t, "4HPwATDgc/ABMA", d.PosID)
	assert.Equal(t, "8-5, 6-5", d.Short)
	assert.Equal(t, []Dispatch{
		{From: "8", To: "5", Label: "8/5"},
		{From: "6", To: "5", Label: "6/5"},
	}, disp.got)
	assert.Equal(t, 2, d.Dispatched)
	assert.Equal(t, 2, d.Board.Count(alice, 5))
	assert.Equal(t, []string{notify.KindPlan}, notices.kinds)

	require.Len(t, h.reqs, 1)
	assert.False(t, h.reqs[0].ReceivingDouble)

	moves, hints := e.Turns().Counters()
	assert.Equal(t, 2, moves)
	assert.Equal(t, 1, hints)

	// a later event in the same turn is not replanned
	ev.Name = game.EventCheckerMoved
	d = e.ProcessEvent(context.Background(), ev)
	assert.Equal(t, DecisionNone, d.Kind)
	assert.Equal(t, "turn already played", d.Reason)
	assert.Len(t, h.reqs, 1)
}

func TestPlayTurnFlipsPlanForLowToHighMover(t *testing.T) {
	h := &fakeHinter{resp: hintWith(t, "8/5 6/5")}
	e := newTestEngine(h, nil, bob)

	ev := newEvent(game.EventDiceRolled, bob, 3, 1, game.StartingSnapshot(alice, bob), game.ActionMoveChecker)
	d := e.ProcessEvent(context.Background(), ev)

	require.Equal(t, DecisionMove, d.Kind, d.Reason)
	assert.Equal(t, []string{"8/5", "6/5"}, move.Strings(d.EnginePlan))
	assert.Equal(t, []string{"17/20", "19/20"}, move.Strings(d.Plan))
	assert.Equal(t, "17", d.Dispatch[0].From)
	assert.Equal(t, "20", d.Dispatch[1].To)
	assert.Equal(t, 2, d.Board.Count(bob, 20))
}

func TestPlayTurnDecomposesBarEntry(t *testing.T) {
	board := &game.Snapshot{
		Points: []game.Point{
			{Number: 1, OccupiedBy: bob, CheckersCount: 2},
			{Number: 6, OccupiedBy: alice, CheckersCount: 5},
			{Number: 8, OccupiedBy: alice, CheckersCount: 3},
			{Number: 12, OccupiedBy: bob, CheckersCount: 5},
			{Number: 13, OccupiedBy: alice, CheckersCount: 5},
			{Number: 19, OccupiedBy: bob, CheckersCount: 6},
			{Number: 22, OccupiedBy: bob, CheckersCount: 2},
			{Number: 24, OccupiedBy: alice, CheckersCount: 1},
		},
		BarCounts: map[game.PlayerID]int{alice: 1},
		OffCounts: map[game.PlayerID]int{},
	}
	h := &fakeHinter{resp: hintWith(t, "bar/17")}
	e := newTestEngine(h, nil, alice)

	d := e.ProcessEvent(context.Background(), newEvent(game.EventDiceRolled, alice, 3, 5, board, game.ActionMoveChecker))

	require.Equal(t, DecisionMove, d.Kind, d.Reason)
	assert.Equal(t, []string{"bar/20", "20/17"}, move.Strings(d.Plan))
	assert.Equal(t, 0, d.Board.Bar(alice))
	assert.Equal(t, 1, d.Board.Count(alice, 17))
}

func TestPlayTurnDispatchLabelsDropHitMarker(t *testing.T) {
	board := &game.Snapshot{
		Points: []game.Point{
			{Number: 1, OccupiedBy: bob, CheckersCount: 1},
			{Number: 5, OccupiedBy: bob, CheckersCount: 1},
			{Number: 6, OccupiedBy: alice, CheckersCount: 5},
			{Number: 8, OccupiedBy: alice, CheckersCount: 3},
			{Number: 12, OccupiedBy: bob, CheckersCount: 5},
			{Number: 13, OccupiedBy: alice, CheckersCount: 5},
			{Number: 17, OccupiedBy: bob, CheckersCount: 3},
			{Number: 19, OccupiedBy: bob, CheckersCount: 5},
			{Number: 24, OccupiedBy: alice, CheckersCount: 2},
		},
		BarCounts: map[game.PlayerID]int{},
		OffCounts: map[game.PlayerID]int{},
	}
	h := &fakeHinter{resp: hintWith(t, "8/5* 6/5")}
	e := newTestEngine(h, nil, alice)
	disp := &recordingDispatcher{}
	e.SetDispatcher(disp)

	d := e.ProcessEvent(context.Background(), newEvent(game.EventDiceRolled, alice, 3, 1, board, game.ActionMoveChecker))

	require.Equal(t, DecisionMove, d.Kind, d.Reason)
	assert.Equal(t, []string{"8/5*", "6/5"}, move.Strings(d.Plan))
	assert.Equal(t, []Dispatch{
		{From: "8", To: "5", Label: "8/5"},
		{From: "6", To: "5", Label: "6/5"},
	}, disp.got)
	assert.Equal(t, 1, d.Board.Bar(bob))
	assert.Equal(t, 2, d.Board.Count(alice, 5))
}

func TestPlayTurnSimulationFailure(t *testing.T) {
	h := &fakeHinter{resp: hintWith(t, "13/10 20/18")}
	notices := &noticeLog{}
	e := newTestEngine(h, notices, alice)
	disp := &recordingDispatcher{}
	e.SetDispatcher(disp)

	d := e.ProcessEvent(context.Background(), newEvent(game.EventDiceRolled, alice, 3, 2, game.StartingSnapshot(alice, bob), game.ActionMoveChecker))

	assert.Equal(t, DecisionNone, d.Kind)
	assert.Contains(t, d.Reason, "source point not found")
	require.Len(t, d.Steps, 2)
	assert.Empty(t, d.Steps[0].Error)
	assert.NotEmpty(t, d.Steps[1].Error)
	assert.Empty(t, d.Dispatch)
	assert.Empty(t, disp.got)
	assert.Equal(t, []string{notify.KindSimError}, notices.kinds)
}

func TestPlayTurnStaleAfterEngineReply(t *testing.T) {
	h := &fakeHinter{resp: hintWith(t, "8/5 6/5")}
	e := newTestEngine(h, nil, alice)
	h.during = func() { e.Turns().NewTurn(string(bob), 6, 6) }
	disp := &recordingDispatcher{}
	e.SetDispatcher(disp)

	d := e.ProcessEvent(context.Background(), newEvent(game.EventDiceRolled, alice, 3, 1, game.StartingSnapshot(alice, bob), game.ActionMoveChecker))

	assert.Equal(t, DecisionStale, d.Kind)
	assert.Empty(t, disp.got)
}

func TestPlayTurnStaleDuringDispatch(t *testing.T) {
	h := &fakeHinter{resp: hintWith(t, "8/5 6/5")}
	e := newTestEngine(h, nil, alice)
	disp := &recordingDispatcher{}
	disp.after = func(n int) {
		if n == 1 {
			e.Turns().NewTurn(string(bob), 4, 2)
		}
	}
	e.SetDispatcher(disp)

	d := e.ProcessEvent(context.Background(), newEvent(game.EventDiceRolled, alice, 3, 1, game.StartingSnapshot(alice, bob), game.ActionMoveChecker))

	assert.Equal(t, DecisionStale, d.Kind)
	assert.Equal(t, 1, d.Dispatched)
	assert.Len(t, disp.got, 1)
}

func TestPlayTurnDispatchError(t *testing.T) {
	h := &fakeHinter{resp: hintWith(t, "8/5 6/5")}
	e := newTestEngine(h, nil, alice)
	e.SetDispatcher(&recordingDispatcher{err: errors.New("no coordinates")})

	d := e.ProcessEvent(context.Background(), newEvent(game.EventDiceRolled, alice, 3, 1, game.StartingSnapshot(alice, bob), game.ActionMoveChecker))

	assert.Equal(t, DecisionMove, d.Kind)
	assert.Equal(t, 0, d.Dispatched)
	assert.Contains(t, d.Reason, "no coordinates")
}

func TestPlayTurnEngineOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		resp   gnubg.Response
		reason string
		kinds  []string
	}{
		{"error", gnubg.Response{Status: gnubg.StatusError, Kind: gnubg.KindNone, Action: gnubg.ActionRoll, Human: "gnubg error"}, "engine failed", []string{notify.KindEngine}},
		{"no legal moves", gnubg.Response{Status: gnubg.StatusOK, Kind: gnubg.KindNoLegalMoves, Action: gnubg.ActionNone}, "no legal moves", nil},
		{"empty", gnubg.Response{Status: gnubg.StatusOK, Kind: gnubg.KindNone, Action: gnubg.ActionRoll}, "no move in engine reply", nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			notices := &noticeLog{}
			e := newTestEngine(&fakeHinter{resp: tc.resp}, notices, alice)
			d := e.ProcessEvent(context.Background(), newEvent(game.EventDiceRolled, alice, 3, 1, game.StartingSnapshot(alice, bob), game.ActionMoveChecker))
			assert.Equal(t, DecisionNone, d.Kind)
			assert.Equal(t, tc.reason, d.Reason)
			assert.Equal(t, tc.kinds, notices.kinds)
		})
	}
}

func TestPlayTurnNeedsDice(t *testing.T) {
	h := &fakeHinter{}
	e := newTestEngine(h, nil, alice)
	d := e.ProcessEvent(context.Background(), newEvent(game.EventGameStarted, alice, 0, 0, game.StartingSnapshot(alice, bob)))
	assert.Equal(t, "dice not rolled", d.Reason)
	assert.Empty(t, h.reqs)
}

func TestRespondToDouble(t *testing.T) {
	tests := []struct {
		cube gnubg.Cube
		want DecisionKind
	}{
		{gnubg.CubePass, DecisionPass},
		{gnubg.CubeDoublePass, DecisionPass},
		{gnubg.CubeTake, DecisionTake},
		{gnubg.CubeBeaver, DecisionTake},
		{gnubg.CubeNone, DecisionTake},
	}

	for _, tc := range tests {
		t.Run(string(tc.want)+"/"+string(tc.cube), func(t *testing.T) {
			h := &fakeHinter{resp: gnubg.Response{Status: gnubg.StatusOK, Kind: gnubg.KindOffer, Action: gnubg.ActionCube, Cube: tc.cube}}
			notices := &noticeLog{}
			e := newTestEngine(h, notices, alice)

			ev := newEvent("DoublingOffered", bob, 0, 0, game.StartingSnapshot(alice, bob), game.ActionDoublingRespond)
			d := e.ProcessEvent(context.Background(), ev)

			assert.Equal(t, tc.want, d.Kind)
			require.Len(t, h.reqs, 1)
			assert.True(t, h.reqs[0].ReceivingDouble)
			assert.Equal(t, []string{notify.KindCube}, notices.kinds)
		})
	}
}

func TestBeforeRollCubeDecision(t *testing.T) {
	tests := []struct {
		name string
		resp gnubg.Response
		want DecisionKind
	}{
		{"double take", gnubg.Response{Status: gnubg.StatusOK, Cube: gnubg.CubeDoubleTake}, DecisionDouble},
		{"double pass", gnubg.Response{Status: gnubg.StatusOK, Cube: gnubg.CubeDoublePass}, DecisionDouble},
		{"no double", gnubg.Response{Status: gnubg.StatusOK, Cube: gnubg.CubeNoDouble}, DecisionRoll},
		{"engine error", gnubg.Response{Status: gnubg.StatusError}, DecisionRoll},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := &fakeHinter{resp: tc.resp}
			e := newTestEngine(h, nil, alice)
			ev := newEvent("TurnStarted", alice, 0, 0, game.StartingSnapshot(alice, bob), game.ActionRollDice, game.ActionDoublingOffer)

			d := e.ProcessEvent(context.Background(), ev)
			assert.Equal(t, tc.want, d.Kind)
			assert.Len(t, h.reqs, 1)
		})
	}
}

func TestBeforeRollWithoutCube(t *testing.T) {
	h := &fakeHinter{}
	notices := &noticeLog{}
	e := newTestEngine(h, notices, alice)

	d := e.ProcessEvent(context.Background(), newEvent("TurnStarted", alice, 0, 0, game.StartingSnapshot(alice, bob), game.ActionRollDice))
	assert.Equal(t, DecisionRoll, d.Kind)
	assert.Empty(t, h.reqs)
	assert.Equal(t, []string{notify.KindRoll}, notices.kinds)

	d = e.ProcessEvent(context.Background(), newEvent("TurnStarted", bob, 0, 0, game.StartingSnapshot(alice, bob), game.ActionRollDice))
	assert.Equal(t, DecisionNone, d.Kind, "not our roll")
}

func TestDebouncedEvents(t *testing.T) {
	h := &fakeHinter{resp: gnubg.Response{Status: gnubg.StatusOK, Cube: gnubg.CubeNoDouble}}
	opts := DefaultEngineOptions()
	opts.HeroID = alice
	opts.DebounceTTL = time.Hour
	e := NewEngine(h, nil, nil, opts)

	ev := newEvent("TurnStarted", alice, 0, 0, game.StartingSnapshot(alice, bob), game.ActionRollDice, game.ActionDoublingOffer)
	assert.Equal(t, DecisionRoll, e.ProcessEvent(context.Background(), ev).Kind)

	d := e.ProcessEvent(context.Background(), ev)
	assert.Equal(t, DecisionNone, d.Kind)
	assert.Equal(t, "debounced", d.Reason)
	assert.Len(t, h.reqs, 1)
}

func TestProcessEventIgnoresOthers(t *testing.T) {
	e := newTestEngine(&fakeHinter{}, nil, alice)

	d := e.ProcessEvent(context.Background(), nil)
	assert.Equal(t, DecisionNone, d.Kind)

	d = e.ProcessEvent(context.Background(), newEvent(game.EventDiceRolled, bob, 3, 1, game.StartingSnapshot(alice, bob), game.ActionMoveChecker))
	assert.Equal(t, DecisionNone, d.Kind)
	assert.Equal(t, "nothing to do", d.Reason)
}

func TestRollFacesAndTakeFace(t *testing.T) {
	assert.Equal(t, []int{3, 5}, rollFaces(3, 5))
	assert.Equal(t, []int{4, 4, 4, 4}, rollFaces(4, 4))

	faces, ok := takeFace([]int{3, 5}, 5)
	assert.True(t, ok)
	assert.Equal(t, []int{3}, faces)

	faces, ok = takeFace(faces, 6)
	assert.False(t, ok)
	assert.Equal(t, []int{3}, faces)
}
