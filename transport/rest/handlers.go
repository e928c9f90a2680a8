package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

type uGame interface {
	CreateGame(ctx context.Context) (*entity.Snapshot, error)
	GetGame(ctx context.Context, id string) (*entity.Snapshot, error)
	DeleteGame(ctx context.Context, id string) error

	MakeTurn(ctx context.Context, id string, row, col int) (*entity.Snapshot, error)
	NewGame(ctx context.Context, id string) (*entity.Snapshot, error)
	SetMode(ctx context.Context, id string, mode entity.Mode) (*entity.Snapshot, error)
	SetDifficulty(ctx context.Context, id string, difficulty entity.Difficulty) (*entity.Snapshot, error)
	ToggleMode(ctx context.Context, id string) (*entity.Snapshot, error)
	ToggleDifficulty(ctx context.Context, id string) (*entity.Snapshot, error)
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type difficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

// Response carries the game and, when a request was refused, the reason.
type Response struct {
	Game  *entity.Snapshot `json:"game,omitempty"`
	Error string           `json:"error,omitempty"`
}

const maxBodyBytes = 1 << 10

var errBadRequest = errors.New("malformed request body")

type handlers struct {
	logger *slog.Logger
	uGame  uGame
}

func (that *handlers) createGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.CreateGame(r.Context())
	if err != nil {
		that.writeError(w, r, nil, err)
		return
	}

	writeJSON(w, http.StatusCreated, Response{Game: game})
}

func (that *handlers) getGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.GetGame(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, game, err)
}

func (that *handlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.uGame.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, r, nil, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) makeTurn(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeBody(w, r, &req); err != nil || req.Row == nil || req.Col == nil {
		that.writeError(w, r, nil, errBadRequest)
		return
	}

	game, err := that.uGame.MakeTurn(r.Context(), chi.URLParam(r, "id"), *req.Row, *req.Col)
	that.respond(w, r, game, err)
}

func (that *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.NewGame(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, game, err)
}

func (that *handlers) setMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeBody(w, r, &req); err != nil {
		that.writeError(w, r, nil, errBadRequest)
		return
	}

	game, err := that.uGame.SetMode(r.Context(), chi.URLParam(r, "id"), entity.Mode(req.Mode))
	that.respond(w, r, game, err)
}

func (that *handlers) setDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if err := decodeBody(w, r, &req); err != nil {
		that.writeError(w, r, nil, errBadRequest)
		return
	}

	game, err := that.uGame.SetDifficulty(r.Context(), chi.URLParam(r, "id"), entity.Difficulty(req.Difficulty))
	that.respond(w, r, game, err)
}

func (that *handlers) toggleMode(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.ToggleMode(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, game, err)
}

func (that *handlers) toggleDifficulty(w http.ResponseWriter, r *http.Request) {
	game, err := that.uGame.ToggleDifficulty(r.Context(), chi.URLParam(r, "id"))
	that.respond(w, r, game, err)
}

func (that *handlers) respond(w http.ResponseWriter, r *http.Request, game *entity.Snapshot, err error) {
	if err != nil {
		that.writeError(w, r, game, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Game: game})
}

// writeError maps err to a status code. A refused move still carries the unchanged game.
func (that *handlers) writeError(w http.ResponseWriter, r *http.Request, game *entity.Snapshot, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	writeJSON(w, status, Response{Game: game, Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNotYourTurn):
		return http.StatusConflict
	case errors.Is(err, errBadRequest),
		errors.Is(err, apperror.ErrOutOfRange),
		errors.Is(err, apperror.ErrInvalidMode),
		errors.Is(err, apperror.ErrInvalidDifficulty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads exactly one JSON value from a size-capped body.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.Join(errBadRequest, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after the JSON value", errBadRequest)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
