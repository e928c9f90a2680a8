package apperror

import "errors"

var (
	ErrOutOfRange        = errors.New("cell is out of range")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrNoMoveAvailable   = errors.New("no move available")
	ErrGameFinished      = errors.New("game is already finished")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrInvalidMode       = errors.New("invalid play mode")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrSessionNotFound   = errors.New("game session not found")
)
