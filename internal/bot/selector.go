package bot

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
)

// winScore is the leaf value of a win found at depth 0 when depth scoring is enabled.
const winScore = 10

// Selector picks the computer's move: uniformly at random on easy, full-depth minimax on hard.
type Selector struct {
	mu     sync.Mutex
	random *rand.Rand

	depthScoring bool
}

// NewSelector returns a Selector. A seed of 0 seeds from the clock. With depthScoring the search
// prefers faster wins and slower losses.
func NewSelector(seed int64, depthScoring bool) *Selector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Selector{
		random:       rand.New(rand.NewSource(seed)), //nolint: gosec // it's ok
		depthScoring: depthScoring,
	}
}

func (that *Selector) Select(board *entity.Board, player entity.Player, difficulty entity.Difficulty) (entity.Position, error) {
	if difficulty == entity.DifficultyHard {
		return that.SelectHard(board, player)
	}

	return that.SelectEasy(board, player)
}

func (that *Selector) SelectEasy(board *entity.Board, _ entity.Player) (entity.Position, error) {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return entity.Position{}, apperror.ErrNoMoveAvailable
	}

	that.mu.Lock()
	chosen := availableCells[that.random.Intn(len(availableCells))]
	that.mu.Unlock()

	return chosen, nil
}

// SelectHard searches the whole remaining game tree with player as the maximizing side.
// Ties go to the first best cell in row-major order. The board is never modified.
func (that *Selector) SelectHard(board *entity.Board, player entity.Player) (entity.Position, error) {
	if !player.IsValid() {
		return entity.Position{}, fmt.Errorf("%w: %q", entity.ErrUnknownPlayer, player)
	}

	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return entity.Position{}, apperror.ErrNoMoveAvailable
	}

	bestMove := availableCells[0]
	bestScore := math.MinInt

	for _, move := range availableCells {
		next := *board
		if err := next.SetCell(move.Row, move.Col, player); err != nil {
			return entity.Position{}, fmt.Errorf("failed to try move: %w", err)
		}

		if score := that.minimax(next, player.Opponent(), player, 0); score > bestScore {
			bestScore = score
			bestMove = move
		}
	}

	return bestMove, nil
}

func (that *Selector) minimax(board entity.Board, toMove, maximizer entity.Player, depth int) int {
	switch {
	case board.Winner(maximizer):
		return that.leafScore(depth)
	case board.Winner(maximizer.Opponent()):
		return -that.leafScore(depth)
	case board.IsFull():
		return 0
	}

	maximizing := toMove == maximizer

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for _, move := range board.EmptyCells() {
		next := board
		_ = next.SetCell(move.Row, move.Col, toMove) // move is free by construction

		score := that.minimax(next, toMove.Opponent(), maximizer, depth+1)
		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}

	return best
}

func (that *Selector) leafScore(depth int) int {
	if that.depthScoring {
		return winScore - depth
	}

	return 1
}
