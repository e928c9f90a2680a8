package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

type Mode string

const (
	ModeHumanVsHuman    Mode = "human_vs_human"
	ModeHumanVsComputer Mode = "human_vs_computer"
)

func ParseMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case ModeHumanVsHuman, ModeHumanVsComputer:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidMode, value)
	}
}

func (that Mode) Toggle() Mode {
	if that == ModeHumanVsComputer {
		return ModeHumanVsHuman
	}
	return ModeHumanVsComputer
}

type Difficulty string

const (
	DifficultyEasy Difficulty = "easy"
	DifficultyHard Difficulty = "hard"
)

func ParseDifficulty(value string) (Difficulty, error) {
	switch difficulty := Difficulty(value); difficulty {
	case DifficultyEasy, DifficultyHard:
		return difficulty, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, value)
	}
}

func (that Difficulty) Toggle() Difficulty {
	if that == DifficultyHard {
		return DifficultyEasy
	}
	return DifficultyHard
}

type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeWin        Outcome = "win"
	OutcomeDraw       Outcome = "draw"
)

// Result is derived from the board after every move and never stored independently of it.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Winner  Player  `json:"winner,omitempty"`
}

func InProgress() Result {
	return Result{Outcome: OutcomeInProgress}
}

func Win(player Player) Result {
	return Result{Outcome: OutcomeWin, Winner: player}
}

func Draw() Result {
	return Result{Outcome: OutcomeDraw}
}

func (that Result) IsTerminal() bool {
	return that.Outcome == OutcomeWin || that.Outcome == OutcomeDraw
}

// Snapshot is the read-only view of a game handed to the UI and stored per session.
type Snapshot struct {
	ID           string                       `json:"id,omitempty"`
	Board        [BoardSize][BoardSize]Player `json:"board"`
	Turn         Player                       `json:"turn"`
	Mode         Mode                         `json:"mode"`
	Difficulty   Difficulty                   `json:"difficulty"`
	Result       Result                       `json:"result"`
	Status       string                       `json:"status"`
	WinningLine  []Position                   `json:"winning_line,omitempty"`
	ComputerMove *Position                    `json:"computer_move,omitempty"`
}
