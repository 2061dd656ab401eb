// Package server implements the HTTP move endpoint: given a board and the player to move, it answers with
// the action chosen by the configured AI player.
package server

import (
	"encoding/json"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/janpfeifer/fourGo/internal/players"
	. "github.com/janpfeifer/fourGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"net/http"
	"sync"
	"time"
)

// MaxRequestBytes bounds the size of the request body.
const MaxRequestBytes = 64 << 10

// MoveRequest is the body of POST /move. Board holds Width*Height cell codes (0 empty, 1 red, 2 yellow)
// indexed column-major: cell i is at x=i/Height, y=i%Height.
type MoveRequest struct {
	Board        []int `json:"board"`
	PlayerToMove int   `json:"player_to_move"`
}

// MoveResponse is the answer of POST /move: the cell where the piece of Player lands.
// For Drop4, X is the column.
type MoveResponse struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Player Player `json:"player"`
}

// ErrorResponse is returned with any non-200 status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BoardFactory builds a board from the cell codes, validating them.
type BoardFactory[B any] func(cells []Player, toMove Player) (B, error)

// Server answers move requests for one game with one AI player.
//
// The AI players are not safe for concurrent use, so requests are served one at a time.
type Server[B Game[B, A], A comparable] struct {
	mu        sync.Mutex
	player    players.Player[B, A]
	fromCells BoardFactory[B]
}

// New creates a server for the game whose boards are built by fromCells.
func New[B Game[B, A], A comparable](player players.Player[B, A], fromCells BoardFactory[B]) *Server[B, A] {
	return &Server[B, A]{player: player, fromCells: fromCells}
}

// NewDrop4Server creates a server for Drop4.
func NewDrop4Server(player players.Player[*Drop4, int]) *Server[*Drop4, int] {
	return New(player, NewDrop4FromCells)
}

// NewPush4Server creates a server for Push4.
func NewPush4Server(player players.Player[*Push4, Pos]) *Server[*Push4, Pos] {
	return New(player, NewPush4FromCells)
}

// Router returns the HTTP handler with the routes of the server: POST /move and GET /healthz.
func (s *Server[B, A]) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: klogPrinter{}, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/move", s.handleMove)
	return r
}

// klogPrinter sends the request log lines of the chi middleware to klog.
type klogPrinter struct{}

func (klogPrinter) Print(v ...any) {
	if klog.V(1).Enabled() {
		klog.InfoDepth(1, fmt.Sprint(v...))
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		klog.Warningf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// Move validates the request and returns the chosen action.
func (s *Server[B, A]) Move(req MoveRequest) (MoveResponse, error) {
	cells := make([]Player, len(req.Board))
	for ii, code := range req.Board {
		if code < int(NoPlayer) || code > int(Yellow) {
			return MoveResponse{}, errors.Errorf("invalid code %d in cell #%d, valid codes are 0, 1 or 2", code, ii)
		}
		cells[ii] = Player(code)
	}
	if req.PlayerToMove != int(Red) && req.PlayerToMove != int(Yellow) {
		return MoveResponse{}, errors.Errorf("invalid player_to_move %d, valid values are 1 or 2", req.PlayerToMove)
	}
	board, err := s.fromCells(cells, Player(req.PlayerToMove))
	if err != nil {
		return MoveResponse{}, errors.WithMessage(err, "invalid board")
	}
	if state := board.GameState(); state.IsFinished() {
		return MoveResponse{}, errors.Errorf("game is already finished (%s)", state)
	}
	if len(board.LegalActions()) == 0 {
		return MoveResponse{}, errors.New("no legal actions")
	}

	start := time.Now()
	action := s.play(board)
	elapsed := time.Since(start)

	pos := board.ActionPos(action)
	klog.V(1).Infof("Move #%d for %s: %v (%s)", board.MoveNumber(), board.CurPlayer(), action, elapsed)
	return MoveResponse{X: int(pos.X), Y: int(pos.Y), Player: board.CurPlayer()}, nil
}

// play runs the AI player on board, one request at a time. The lock is released also if the player panics.
func (s *Server[B, A]) play(board B) A {
	s.mu.Lock()
	defer s.mu.Unlock()
	action, _ := s.player.Play(board)
	return action
}

func (s *Server[B, A]) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}
	resp, err := s.Move(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
