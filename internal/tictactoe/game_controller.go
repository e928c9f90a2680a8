package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

var ErrCorruptedSnapshot = errors.New("snapshot does not describe a reachable game")

type moveSelector interface {
	Select(board *entity.Board, player entity.Player, difficulty entity.Difficulty) (entity.Position, error)
}

// GameController owns one match: the board, whose turn it is, the play mode and difficulty.
// It is not safe for concurrent use.
type GameController struct {
	board      entity.Board
	turn       entity.Player
	mode       entity.Mode
	difficulty entity.Difficulty
	result     entity.Result

	// computerMove is the computer's reply to the last accepted human move, if any.
	computerMove *entity.Position

	selector moveSelector
}

func NewGameController(selector moveSelector, mode entity.Mode, difficulty entity.Difficulty) (*GameController, error) {
	if err := validateSettings(mode, difficulty); err != nil {
		return nil, err
	}

	controller := &GameController{
		mode:       mode,
		difficulty: difficulty,
		selector:   selector,
	}
	controller.NewGame()

	return controller, nil
}

// Restore rebuilds a controller from a stored snapshot. Turn and result are recomputed from the
// board rather than trusted.
func Restore(selector moveSelector, snapshot entity.Snapshot) (*GameController, error) {
	controller, err := NewGameController(selector, snapshot.Mode, snapshot.Difficulty)
	if err != nil {
		return nil, err
	}

	var marksX, marksO int
	for row, cells := range snapshot.Board {
		for col, cell := range cells {
			if cell == entity.EmptyCell {
				continue
			}

			if err = controller.board.SetCell(row, col, cell); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCorruptedSnapshot, err)
			}

			if cell == entity.PlayerX {
				marksX++
			} else {
				marksO++
			}
		}
	}

	if marksX != marksO && marksX != marksO+1 {
		return nil, fmt.Errorf("%w: %d X marks, %d O marks", ErrCorruptedSnapshot, marksX, marksO)
	}

	lastMover := entity.PlayerO
	if marksX > marksO {
		lastMover = entity.PlayerX
	}

	if controller.board.Winner(lastMover.Opponent()) {
		return nil, fmt.Errorf("%w: %s moved after %s won", ErrCorruptedSnapshot, lastMover, lastMover.Opponent())
	}

	controller.result = controller.board.DetermineResult(lastMover)
	controller.turn = lastMover
	if !controller.result.IsTerminal() {
		controller.turn = lastMover.Opponent()
	}

	if controller.isComputerTurn() {
		controller.playComputerMove()
	}

	return controller, nil
}

// ApplyMove plays the current player's mark at (row, col). A rejected move leaves the game
// untouched and the reason is returned alongside the unchanged snapshot. In human-vs-computer
// mode an accepted move is answered by the computer before ApplyMove returns.
func (that *GameController) ApplyMove(row, col int) (entity.Snapshot, error) {
	if that.result.IsTerminal() {
		return that.Snapshot(), apperror.ErrGameFinished
	}

	if that.isComputerTurn() {
		return that.Snapshot(), apperror.ErrNotYourTurn
	}

	if err := that.place(row, col); err != nil {
		return that.Snapshot(), fmt.Errorf("invalid move: %w", err)
	}

	that.computerMove = nil
	if that.isComputerTurn() {
		that.playComputerMove()
	}

	return that.Snapshot(), nil
}

// NewGame clears the board and gives the first move to X. Mode and difficulty are kept.
func (that *GameController) NewGame() entity.Snapshot {
	that.board.Clear()
	that.turn = entity.PlayerX
	that.result = entity.InProgress()
	that.computerMove = nil

	return that.Snapshot()
}

// SetMode switches the play mode and always restarts the match.
func (that *GameController) SetMode(mode entity.Mode) (entity.Snapshot, error) {
	if _, err := entity.ParseMode(string(mode)); err != nil {
		return that.Snapshot(), err
	}

	that.mode = mode

	return that.NewGame(), nil
}

// SetDifficulty only has an effect against the computer. The board is left as is and the new
// difficulty applies from the next computer move.
func (that *GameController) SetDifficulty(difficulty entity.Difficulty) (entity.Snapshot, error) {
	if _, err := entity.ParseDifficulty(string(difficulty)); err != nil {
		return that.Snapshot(), err
	}

	if that.mode == entity.ModeHumanVsComputer {
		that.difficulty = difficulty
	}

	return that.Snapshot(), nil
}

func (that *GameController) ToggleMode() entity.Snapshot {
	snapshot, _ := that.SetMode(that.mode.Toggle())
	return snapshot
}

func (that *GameController) ToggleDifficulty() entity.Snapshot {
	snapshot, _ := that.SetDifficulty(that.difficulty.Toggle())
	return snapshot
}

func (that *GameController) Board() entity.Board {
	return that.board
}

func (that *GameController) Turn() entity.Player {
	return that.turn
}

func (that *GameController) Mode() entity.Mode {
	return that.mode
}

func (that *GameController) Difficulty() entity.Difficulty {
	return that.difficulty
}

func (that *GameController) Result() entity.Result {
	return that.result
}

func (that *GameController) Snapshot() entity.Snapshot {
	snapshot := entity.Snapshot{
		Board:      that.board.Cells(),
		Turn:       that.turn,
		Mode:       that.mode,
		Difficulty: that.difficulty,
		Result:     that.result,
		Status:     that.status(),
	}

	if that.result.Outcome == entity.OutcomeWin {
		if line, ok := that.board.WinningLine(that.result.Winner); ok {
			snapshot.WinningLine = line[:]
		}
	}

	if that.computerMove != nil {
		move := *that.computerMove
		snapshot.ComputerMove = &move
	}

	return snapshot
}

// place sets the current player's mark, recomputes the result and passes the turn on if the
// game continues.
func (that *GameController) place(row, col int) error {
	mover := that.turn

	if err := that.board.SetCell(row, col, mover); err != nil {
		return err
	}

	that.result = that.board.DetermineResult(mover)
	if !that.result.IsTerminal() {
		that.turn = mover.Opponent()
	}

	return nil
}

func (that *GameController) playComputerMove() {
	move, err := that.selector.Select(&that.board, that.turn, that.difficulty)
	if err != nil {
		panic(fmt.Errorf("computer has no reply on an ongoing game: %w", err))
	}

	if err = that.place(move.Row, move.Col); err != nil {
		panic(fmt.Errorf("computer chose an illegal move: %w", err))
	}

	that.computerMove = &move
}

func (that *GameController) isComputerTurn() bool {
	return that.mode == entity.ModeHumanVsComputer &&
		that.turn == entity.ComputerPlayer &&
		!that.result.IsTerminal()
}

func (that *GameController) status() string {
	switch that.result.Outcome {
	case entity.OutcomeWin:
		if that.mode == entity.ModeHumanVsComputer && that.result.Winner == entity.ComputerPlayer {
			return "Computer Wins!"
		}
		return fmt.Sprintf("Player %s Wins!", that.result.Winner)
	case entity.OutcomeDraw:
		return "It's a Draw!"
	default:
		return fmt.Sprintf("Player %s's turn", that.turn)
	}
}

func validateSettings(mode entity.Mode, difficulty entity.Difficulty) error {
	if _, err := entity.ParseMode(string(mode)); err != nil {
		return err
	}

	if _, err := entity.ParseDifficulty(string(difficulty)); err != nil {
		return err
	}

	return nil
}
