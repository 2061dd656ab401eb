package server

import (
	"bytes"
	"encoding/json"
	"github.com/janpfeifer/fourGo/internal/ai/heuristics"
	"github.com/janpfeifer/fourGo/internal/players"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newDrop4Server(t *testing.T) *httptest.Server {
	p, err := players.New[*Drop4, int]("composite,depth=2,simple_depth=2", heuristics.NewSimple(), nil)
	require.NoError(t, err)
	ts := httptest.NewServer(NewDrop4Server(p).Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body any) (int, []byte) {
	var data []byte
	if s, ok := body.(string); ok {
		data = []byte(s)
	} else {
		var err error
		data, err = json.Marshal(body)
		require.NoError(t, err)
	}
	resp, err := http.Post(ts.URL+"/move", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, got
}

// drop4Cells returns the column-major cells of a Drop4 board with the given columns (bottom first).
func drop4Cells(columns map[int][]int) []int {
	cells := make([]int, Drop4Width*Drop4Height)
	for x, column := range columns {
		copy(cells[x*Drop4Height:], column)
	}
	return cells
}

func TestHealthz(t *testing.T) {
	ts := newDrop4Server(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestMoveDrop4(t *testing.T) {
	ts := newDrop4Server(t)

	// Yellow must block column 0.
	status, body := post(t, ts, MoveRequest{
		Board:        drop4Cells(map[int][]int{0: {1, 1, 1}, 6: {2, 2}}),
		PlayerToMove: 2,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var resp MoveResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, MoveResponse{X: 0, Y: 3, Player: Yellow}, resp)

	// Red wins on column 6 rather than blocking.
	status, body = post(t, ts, MoveRequest{
		Board:        drop4Cells(map[int][]int{0: {2, 2, 2}, 6: {1, 1, 1}}),
		PlayerToMove: 1,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, MoveResponse{X: 6, Y: 3, Player: Red}, resp)
}

func TestMoveInvalid(t *testing.T) {
	ts := newDrop4Server(t)
	for name, body := range map[string]any{
		"wrong length":    MoveRequest{Board: make([]int, 10), PlayerToMove: 1},
		"invalid code":    MoveRequest{Board: drop4Cells(map[int][]int{2: {3}}), PlayerToMove: 1},
		"negative code":   MoveRequest{Board: drop4Cells(map[int][]int{2: {-1}}), PlayerToMove: 1},
		"floating piece":  MoveRequest{Board: drop4Cells(map[int][]int{2: {0, 1}}), PlayerToMove: 2},
		"finished game":   MoveRequest{Board: drop4Cells(map[int][]int{0: {1, 1, 1, 1}, 6: {2, 2, 2}}), PlayerToMove: 2},
		"invalid player":  MoveRequest{Board: drop4Cells(nil), PlayerToMove: 3},
		"malformed json":  `{"board": [0, 0`,
		"unknown field":   `{"cells": [], "player_to_move": 1}`,
		"wrong json type": `{"board": "abc", "player_to_move": 1}`,
	} {
		status, got := post(t, ts, body)
		assert.Equal(t, http.StatusBadRequest, status, "case %q: %s", name, got)
		var errResp ErrorResponse
		require.NoError(t, json.Unmarshal(got, &errResp), "case %q", name)
		assert.NotEmpty(t, errResp.Error, "case %q", name)
	}
}

func TestMovePush4(t *testing.T) {
	p, err := players.New[*Push4, Pos]("minimax,depth=1", heuristics.NewLines(), nil)
	require.NoError(t, err)
	s := NewPush4Server(p)
	resp, err := s.Move(MoveRequest{Board: make([]int, Push4Size*Push4Size), PlayerToMove: 1})
	require.NoError(t, err)
	assert.Equal(t, Red, resp.Player)
	onEdge := resp.X == 0 || resp.Y == 0 || resp.X == Push4Size-1 || resp.Y == Push4Size-1
	assert.True(t, onEdge, "first move must land on an edge, got %+v", resp)

	_, err = s.Move(MoveRequest{Board: make([]int, Drop4Width*Drop4Height), PlayerToMove: 1})
	require.Error(t, err)
}

// flakyPlayer panics on its first move, and afterwards plays the first legal action.
type flakyPlayer struct {
	calls int
}

func (p *flakyPlayer) String() string { return "flaky" }

func (p *flakyPlayer) Play(board *Drop4) (int, bool) {
	p.calls++
	if p.calls == 1 {
		panic("backend failure")
	}
	return board.LegalActions()[0], false
}

func TestMoveRecoversFromPanic(t *testing.T) {
	player := &flakyPlayer{}
	ts := httptest.NewServer(NewDrop4Server(player).Router())
	defer ts.Close()

	req := MoveRequest{Board: drop4Cells(nil), PlayerToMove: 1}
	status, _ := post(t, ts, req)
	assert.Equal(t, http.StatusInternalServerError, status)

	// The server must still serve requests after the panic.
	status, body := post(t, ts, req)
	require.Equal(t, http.StatusOK, status, string(body))
	var resp MoveResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, MoveResponse{X: 0, Y: 0, Player: Red}, resp)
	assert.Equal(t, 2, player.calls)
}
