package entity

import "errors"

var ErrUnknownPlayer = errors.New("unknown player")

// Player is the mark occupying a cell. EmptyCell marks a free cell.
type Player string

const (
	EmptyCell Player = ""
	PlayerX   Player = "X"
	PlayerO   Player = "O"

	// ComputerPlayer is the side played by the computer in human-vs-computer mode.
	ComputerPlayer = PlayerO
)

func (that Player) IsValid() bool {
	return that == PlayerX || that == PlayerO
}

func (that Player) Opponent() Player {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}
