package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/bot"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSelector struct {
	moves []entity.Position
	err   error

	difficulties []entity.Difficulty
}

func (that *scriptedSelector) Select(_ *entity.Board, _ entity.Player, difficulty entity.Difficulty) (entity.Position, error) {
	that.difficulties = append(that.difficulties, difficulty)

	if that.err != nil {
		return entity.Position{}, that.err
	}

	move := that.moves[0]
	that.moves = that.moves[1:]

	return move, nil
}

func newController(t *testing.T, mode entity.Mode, difficulty entity.Difficulty) *GameController {
	t.Helper()

	controller, err := NewGameController(bot.NewSelector(7, true), mode, difficulty)
	require.NoError(t, err)

	return controller
}

func play(t *testing.T, controller *GameController, moves ...entity.Position) entity.Snapshot {
	t.Helper()

	var snapshot entity.Snapshot
	for _, move := range moves {
		var err error
		snapshot, err = controller.ApplyMove(move.Row, move.Col)
		require.NoError(t, err)
	}

	return snapshot
}

func countMarks(board [entity.BoardSize][entity.BoardSize]entity.Player, player entity.Player) int {
	count := 0
	for _, cells := range board {
		for _, cell := range cells {
			if cell == player {
				count++
			}
		}
	}

	return count
}

func TestNewGameController(t *testing.T) {
	t.Run("Initial state", func(t *testing.T) {
		// When: a controller is created
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)

		// Then: the board is empty, X moves first and the game is in progress
		expected := entity.Snapshot{
			Turn:       entity.PlayerX,
			Mode:       entity.ModeHumanVsHuman,
			Difficulty: entity.DifficultyEasy,
			Result:     entity.InProgress(),
			Status:     "Player X's turn",
		}
		assert.Equal(t, expected, controller.Snapshot())
	})

	t.Run("Error on invalid settings", func(t *testing.T) {
		_, err := NewGameController(bot.NewSelector(1, true), "solo", entity.DifficultyEasy)
		require.ErrorIs(t, err, apperror.ErrInvalidMode)

		_, err = NewGameController(bot.NewSelector(1, true), entity.ModeHumanVsHuman, "nightmare")
		require.ErrorIs(t, err, apperror.ErrInvalidDifficulty)
	})
}

func TestGameController_ApplyMove(t *testing.T) {
	t.Run("Places the mark and passes the turn", func(t *testing.T) {
		// Given: a human-vs-human game
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)

		// When: X plays the center
		snapshot, err := controller.ApplyMove(1, 1)

		// Then: the center holds X and it is O's turn
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, snapshot.Board[1][1])
		assert.Equal(t, entity.PlayerO, snapshot.Turn)
		assert.Equal(t, entity.InProgress(), snapshot.Result)
		assert.Nil(t, snapshot.ComputerMove)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: X holds the center
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)
		before := play(t, controller, entity.Position{Row: 1, Col: 1})

		// When: O tries the center
		after, err := controller.ApplyMove(1, 1)

		// Then: ErrCellOccupied is returned and nothing changed
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, before, after)
		assert.Equal(t, entity.PlayerO, controller.Turn())
	})

	t.Run("Error on coordinates outside the grid", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)
		before := controller.Snapshot()

		after, err := controller.ApplyMove(-1, 3)

		require.ErrorIs(t, err, apperror.ErrOutOfRange)
		assert.Equal(t, before, after)
	})

	t.Run("Completing a line wins", func(t *testing.T) {
		// Given: X X _ / O O _ / _ _ _ with X to move
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)
		play(t, controller,
			entity.Position{Row: 0, Col: 0}, entity.Position{Row: 1, Col: 0},
			entity.Position{Row: 0, Col: 1}, entity.Position{Row: 1, Col: 1},
		)

		// When: X plays (0, 2)
		snapshot, err := controller.ApplyMove(0, 2)

		// Then: X wins along the top row
		require.NoError(t, err)
		assert.Equal(t, entity.Win(entity.PlayerX), snapshot.Result)
		assert.Equal(t, entity.PlayerX, snapshot.Turn)
		assert.Equal(t, "Player X Wins!", snapshot.Status)
		assert.Equal(t, []entity.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}, snapshot.WinningLine)
	})

	t.Run("Error on move after game finished", func(t *testing.T) {
		// Given: X has won
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)
		before := play(t, controller,
			entity.Position{Row: 0, Col: 0}, entity.Position{Row: 1, Col: 0},
			entity.Position{Row: 0, Col: 1}, entity.Position{Row: 1, Col: 1},
			entity.Position{Row: 0, Col: 2},
		)

		// When: O tries to keep playing
		after, err := controller.ApplyMove(1, 2)

		// Then: ErrGameFinished is returned and nothing changed
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, before, after)
	})

	t.Run("Full board without a line is a draw regardless of move order", func(t *testing.T) {
		orders := [][]entity.Position{
			{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 1, Col: 1}, {Row: 1, Col: 0}, {Row: 2, Col: 0}, {Row: 1, Col: 2}, {Row: 2, Col: 2}, {Row: 2, Col: 1}},
			{{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 0, Col: 0}, {Row: 2, Col: 0}, {Row: 0, Col: 2}, {Row: 0, Col: 1}, {Row: 2, Col: 1}, {Row: 2, Col: 2}, {Row: 1, Col: 2}},
		}

		var boards [][entity.BoardSize][entity.BoardSize]entity.Player
		for _, order := range orders {
			controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)

			snapshot := play(t, controller, order...)

			assert.Equal(t, entity.Draw(), snapshot.Result)
			assert.Equal(t, "It's a Draw!", snapshot.Status)
			assert.Empty(t, snapshot.WinningLine)
			boards = append(boards, snapshot.Board)
		}

		assert.Equal(t, boards[0], boards[1])
	})

	t.Run("Win on the last free cell beats draw", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)

		snapshot := play(t, controller,
			entity.Position{Row: 0, Col: 2}, entity.Position{Row: 0, Col: 1},
			entity.Position{Row: 2, Col: 1}, entity.Position{Row: 1, Col: 0},
			entity.Position{Row: 0, Col: 0}, entity.Position{Row: 2, Col: 0},
			entity.Position{Row: 1, Col: 1}, entity.Position{Row: 1, Col: 2},
			entity.Position{Row: 2, Col: 2},
		)

		board := controller.Board()
		assert.True(t, board.IsFull())
		assert.Equal(t, entity.Win(entity.PlayerX), snapshot.Result)
	})

	t.Run("Error when it is the computer's turn", func(t *testing.T) {
		controller := &GameController{
			mode:       entity.ModeHumanVsComputer,
			difficulty: entity.DifficultyEasy,
			turn:       entity.PlayerO,
			result:     entity.InProgress(),
			selector:   &scriptedSelector{},
		}

		_, err := controller.ApplyMove(0, 0)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		board := controller.Board()
		assert.Len(t, board.EmptyCells(), 9)
	})
}

func TestGameController_ComputerReply(t *testing.T) {
	t.Run("Easy computer answers with exactly one mark", func(t *testing.T) {
		// Given: a human-vs-computer game on easy
		controller := newController(t, entity.ModeHumanVsComputer, entity.DifficultyEasy)

		// When: the human plays the center
		snapshot, err := controller.ApplyMove(1, 1)

		// Then: one O appears on one of the 8 other cells and it is X's turn again
		require.NoError(t, err)
		assert.Equal(t, 1, countMarks(snapshot.Board, entity.PlayerX))
		assert.Equal(t, 1, countMarks(snapshot.Board, entity.PlayerO))
		require.NotNil(t, snapshot.ComputerMove)
		assert.NotEqual(t, entity.Position{Row: 1, Col: 1}, *snapshot.ComputerMove)
		assert.Equal(t, entity.PlayerO, snapshot.Board[snapshot.ComputerMove.Row][snapshot.ComputerMove.Col])
		assert.Equal(t, entity.PlayerX, snapshot.Turn)
	})

	t.Run("Computer win is reported", func(t *testing.T) {
		// Given: a scripted computer that completes the left column
		selector := &scriptedSelector{moves: []entity.Position{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 2, Col: 0}}}
		controller, err := NewGameController(selector, entity.ModeHumanVsComputer, entity.DifficultyHard)
		require.NoError(t, err)

		// When: the human plays elsewhere three times
		snapshot := play(t, controller,
			entity.Position{Row: 0, Col: 2}, entity.Position{Row: 1, Col: 2}, entity.Position{Row: 2, Col: 1},
		)

		// Then: the computer wins and further moves are rejected
		assert.Equal(t, entity.Win(entity.PlayerO), snapshot.Result)
		assert.Equal(t, "Computer Wins!", snapshot.Status)
		assert.Equal(t, []entity.Difficulty{entity.DifficultyHard, entity.DifficultyHard, entity.DifficultyHard}, selector.difficulties)

		_, err = controller.ApplyMove(2, 2)
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("No computer reply after the human ends the game", func(t *testing.T) {
		selector := &scriptedSelector{moves: []entity.Position{{Row: 1, Col: 0}, {Row: 1, Col: 1}}}
		controller, err := NewGameController(selector, entity.ModeHumanVsComputer, entity.DifficultyEasy)
		require.NoError(t, err)

		snapshot := play(t, controller,
			entity.Position{Row: 0, Col: 0}, entity.Position{Row: 0, Col: 1}, entity.Position{Row: 0, Col: 2},
		)

		assert.Equal(t, entity.Win(entity.PlayerX), snapshot.Result)
		assert.Nil(t, snapshot.ComputerMove)
		assert.Len(t, selector.difficulties, 2)
	})

	t.Run("Selector without a move aborts loudly", func(t *testing.T) {
		selector := &scriptedSelector{err: apperror.ErrNoMoveAvailable}
		controller, err := NewGameController(selector, entity.ModeHumanVsComputer, entity.DifficultyEasy)
		require.NoError(t, err)

		assert.Panics(t, func() {
			_, _ = controller.ApplyMove(0, 0)
		})
	})

	t.Run("Optimal play from the center ends in a draw", func(t *testing.T) {
		// Given: a hard computer and an X that also plays minimax
		controller := newController(t, entity.ModeHumanVsComputer, entity.DifficultyHard)
		human := bot.NewSelector(1, true)

		// When: X opens in the center and keeps playing optimally
		snapshot, err := controller.ApplyMove(1, 1)
		require.NoError(t, err)

		for !snapshot.Result.IsTerminal() {
			board := controller.Board()
			move, err := human.SelectHard(&board, entity.PlayerX)
			require.NoError(t, err)

			snapshot, err = controller.ApplyMove(move.Row, move.Col)
			require.NoError(t, err)
		}

		// Then: nobody wins
		assert.Equal(t, entity.Draw(), snapshot.Result)
	})
}

func TestGameController_NewGame(t *testing.T) {
	controller := newController(t, entity.ModeHumanVsComputer, entity.DifficultyHard)
	play(t, controller, entity.Position{Row: 0, Col: 0})

	snapshot := controller.NewGame()

	assert.Equal(t, entity.Snapshot{
		Turn:       entity.PlayerX,
		Mode:       entity.ModeHumanVsComputer,
		Difficulty: entity.DifficultyHard,
		Result:     entity.InProgress(),
		Status:     "Player X's turn",
	}, snapshot)
}

func TestGameController_SetMode(t *testing.T) {
	t.Run("Switching mode restarts the match", func(t *testing.T) {
		// Given: a human-vs-human game in progress
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)
		play(t, controller, entity.Position{Row: 0, Col: 0}, entity.Position{Row: 1, Col: 1})

		// When: switching to human-vs-computer
		snapshot, err := controller.SetMode(entity.ModeHumanVsComputer)

		// Then: the board is empty, X is to move and the game is in progress
		require.NoError(t, err)
		assert.Equal(t, entity.ModeHumanVsComputer, snapshot.Mode)
		assert.Equal(t, entity.PlayerX, snapshot.Turn)
		assert.Equal(t, entity.InProgress(), snapshot.Result)
		assert.Equal(t, [entity.BoardSize][entity.BoardSize]entity.Player{}, snapshot.Board)
	})

	t.Run("Error on unknown mode", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)
		before := play(t, controller, entity.Position{Row: 0, Col: 0})

		after, err := controller.SetMode("spectator")

		require.ErrorIs(t, err, apperror.ErrInvalidMode)
		assert.Equal(t, before, after)
	})

	t.Run("Toggle flips the mode and restarts", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)
		play(t, controller, entity.Position{Row: 0, Col: 0})

		snapshot := controller.ToggleMode()

		assert.Equal(t, entity.ModeHumanVsComputer, snapshot.Mode)
		assert.Equal(t, entity.PlayerX, snapshot.Turn)
		assert.Equal(t, [entity.BoardSize][entity.BoardSize]entity.Player{}, snapshot.Board)
	})
}

func TestGameController_SetDifficulty(t *testing.T) {
	t.Run("Ignored in human-vs-human mode", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsHuman, entity.DifficultyEasy)

		snapshot, err := controller.SetDifficulty(entity.DifficultyHard)

		require.NoError(t, err)
		assert.Equal(t, entity.DifficultyEasy, snapshot.Difficulty)
	})

	t.Run("Applies from the next computer move without a restart", func(t *testing.T) {
		// Given: a human-vs-computer game after one exchange on easy
		selector := &scriptedSelector{moves: []entity.Position{{Row: 2, Col: 2}, {Row: 2, Col: 0}}}
		controller, err := NewGameController(selector, entity.ModeHumanVsComputer, entity.DifficultyEasy)
		require.NoError(t, err)
		before := play(t, controller, entity.Position{Row: 1, Col: 1})

		// When: switching to hard
		snapshot, err := controller.SetDifficulty(entity.DifficultyHard)

		// Then: the board is kept and the next reply uses hard
		require.NoError(t, err)
		assert.Equal(t, entity.DifficultyHard, snapshot.Difficulty)
		assert.Equal(t, before.Board, snapshot.Board)

		play(t, controller, entity.Position{Row: 0, Col: 0})
		assert.Equal(t, []entity.Difficulty{entity.DifficultyEasy, entity.DifficultyHard}, selector.difficulties)
	})

	t.Run("Toggle flips the difficulty", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsComputer, entity.DifficultyEasy)

		assert.Equal(t, entity.DifficultyHard, controller.ToggleDifficulty().Difficulty)
		assert.Equal(t, entity.DifficultyEasy, controller.ToggleDifficulty().Difficulty)
	})

	t.Run("Error on unknown difficulty", func(t *testing.T) {
		controller := newController(t, entity.ModeHumanVsComputer, entity.DifficultyEasy)

		_, err := controller.SetDifficulty("impossible")

		require.ErrorIs(t, err, apperror.ErrInvalidDifficulty)
		assert.Equal(t, entity.DifficultyEasy, controller.Difficulty())
	})
}

func TestRestore(t *testing.T) {
	t.Run("Round trip through a snapshot", func(t *testing.T) {
		// Given: a finished human-vs-human game
		original := newController(t, entity.ModeHumanVsHuman, entity.DifficultyHard)
		snapshot := play(t, original,
			entity.Position{Row: 0, Col: 0}, entity.Position{Row: 1, Col: 0},
			entity.Position{Row: 0, Col: 1}, entity.Position{Row: 1, Col: 1},
			entity.Position{Row: 0, Col: 2},
		)

		// When: restoring it
		restored, err := Restore(bot.NewSelector(1, true), snapshot)

		// Then: the restored game reports the same state
		require.NoError(t, err)
		assert.Equal(t, snapshot, restored.Snapshot())
		assert.Equal(t, entity.ModeHumanVsHuman, restored.Mode())
		assert.Equal(t, entity.Win(entity.PlayerX), restored.Result())
	})

	t.Run("Computer moves when restored on its turn", func(t *testing.T) {
		selector := &scriptedSelector{moves: []entity.Position{{Row: 2, Col: 2}}}
		snapshot := entity.Snapshot{
			Mode:       entity.ModeHumanVsComputer,
			Difficulty: entity.DifficultyEasy,
		}
		snapshot.Board[1][1] = entity.PlayerX

		restored, err := Restore(selector, snapshot)

		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, restored.Turn())
		assert.Equal(t, entity.PlayerO, restored.Snapshot().Board[2][2])
	})

	t.Run("Error on impossible mark counts", func(t *testing.T) {
		snapshot := entity.Snapshot{Mode: entity.ModeHumanVsHuman, Difficulty: entity.DifficultyEasy}
		snapshot.Board[0][0] = entity.PlayerO

		_, err := Restore(bot.NewSelector(1, true), snapshot)

		require.ErrorIs(t, err, ErrCorruptedSnapshot)
	})

	t.Run("Error on unknown mark", func(t *testing.T) {
		snapshot := entity.Snapshot{Mode: entity.ModeHumanVsHuman, Difficulty: entity.DifficultyEasy}
		snapshot.Board[0][0] = "Z"

		_, err := Restore(bot.NewSelector(1, true), snapshot)

		require.ErrorIs(t, err, ErrCorruptedSnapshot)
		require.ErrorIs(t, err, entity.ErrUnknownPlayer)
	})
}
