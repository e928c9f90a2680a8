package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Snapshot) error
	GetByID(ctx context.Context, id string) (*entity.Snapshot, error)
	DeleteByID(ctx context.Context, id string) error
}

type moveSelector interface {
	Select(board *entity.Board, player entity.Player, difficulty entity.Difficulty) (entity.Position, error)
}

// Settings are the mode and difficulty a new session starts with.
type Settings struct {
	Mode       entity.Mode
	Difficulty entity.Difficulty
}

// GameManager runs engine operations against stored sessions: load the snapshot, rebuild the
// engine, apply one operation and store the result. Operations on one session are serialized.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	selector moveSelector
	defaults Settings

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is dropped from GameManager.locks once no request holds or waits on it.
type sessionLock struct {
	sync.Mutex
	refs int
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, selector moveSelector, defaults Settings) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game-manager"),
		gameRepo: gameRepo,
		selector: selector,
		defaults: defaults,

		locks: make(map[string]*sessionLock),
	}
}

func (that *GameManager) CreateGame(ctx context.Context) (*entity.Snapshot, error) {
	controller, err := tictactoe.NewGameController(that.selector, that.defaults.Mode, that.defaults.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	game := controller.Snapshot()
	game.ID = uuid.NewString()

	if err = that.gameRepo.CreateOrUpdate(ctx, &game); err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	that.logger.Debug("game created", "gameID", game.ID, "mode", game.Mode, "difficulty", game.Difficulty)

	return &game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Snapshot, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return game, nil
}

// MakeTurn applies a human move. A rejected move returns the unchanged game together with the
// reason, and nothing is stored.
func (that *GameManager) MakeTurn(ctx context.Context, id string, row, col int) (*entity.Snapshot, error) {
	return that.update(ctx, id, "MakeTurn", func(controller *tictactoe.GameController) (entity.Snapshot, error) {
		return controller.ApplyMove(row, col)
	})
}

func (that *GameManager) NewGame(ctx context.Context, id string) (*entity.Snapshot, error) {
	return that.update(ctx, id, "NewGame", func(controller *tictactoe.GameController) (entity.Snapshot, error) {
		return controller.NewGame(), nil
	})
}

func (that *GameManager) SetMode(ctx context.Context, id string, mode entity.Mode) (*entity.Snapshot, error) {
	return that.update(ctx, id, "SetMode", func(controller *tictactoe.GameController) (entity.Snapshot, error) {
		return controller.SetMode(mode)
	})
}

func (that *GameManager) SetDifficulty(ctx context.Context, id string, difficulty entity.Difficulty) (*entity.Snapshot, error) {
	return that.update(ctx, id, "SetDifficulty", func(controller *tictactoe.GameController) (entity.Snapshot, error) {
		return controller.SetDifficulty(difficulty)
	})
}

func (that *GameManager) ToggleMode(ctx context.Context, id string) (*entity.Snapshot, error) {
	return that.update(ctx, id, "ToggleMode", func(controller *tictactoe.GameController) (entity.Snapshot, error) {
		return controller.ToggleMode(), nil
	})
}

func (that *GameManager) ToggleDifficulty(ctx context.Context, id string) (*entity.Snapshot, error) {
	return that.update(ctx, id, "ToggleDifficulty", func(controller *tictactoe.GameController) (entity.Snapshot, error) {
		return controller.ToggleDifficulty(), nil
	})
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	defer that.unlock(id, that.lock(id))

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Debug("game deleted", "gameID", id)

	return nil
}

func (that *GameManager) update(
	ctx context.Context,
	id, method string,
	operation func(controller *tictactoe.GameController) (entity.Snapshot, error),
) (*entity.Snapshot, error) {
	log := that.logger.With("method", method, "gameID", id)

	defer that.unlock(id, that.lock(id))

	stored, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	controller, err := tictactoe.Restore(that.selector, *stored)
	if err != nil {
		log.Error("failed to restore game", "error", err)
		return nil, fmt.Errorf("failed to restore game: %w", err)
	}

	game, err := operation(controller)
	game.ID = id

	if err != nil {
		if isRejection(err) {
			log.Debug("operation rejected", "reason", err)
			return &game, err
		}

		return nil, err
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, &game); err != nil {
		log.Error("failed to save game", "error", err)
		return nil, fmt.Errorf("failed to save game: %w", err)
	}

	log.Debug("operation applied", "turn", game.Turn, "outcome", game.Result.Outcome, "computerMove", game.ComputerMove)

	return &game, nil
}

func (that *GameManager) lock(id string) *sessionLock {
	that.mu.Lock()
	lock, ok := that.locks[id]
	if !ok {
		lock = &sessionLock{}
		that.locks[id] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.Lock()

	return lock
}

func (that *GameManager) unlock(id string, lock *sessionLock) {
	lock.Unlock()

	that.mu.Lock()
	defer that.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(that.locks, id)
	}
}

// isRejection reports whether err leaves the game unchanged and is the caller's to show.
func isRejection(err error) bool {
	return errors.Is(err, apperror.ErrGameFinished) ||
		errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrOutOfRange) ||
		errors.Is(err, apperror.ErrInvalidMode) ||
		errors.Is(err, apperror.ErrInvalidDifficulty)
}
