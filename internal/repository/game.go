package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rocketscienceinc/checkers-backend/internal/apperror"
	"github.com/rocketscienceinc/checkers-backend/internal/entity"
	"github.com/rocketscienceinc/checkers-backend/internal/game"
)

var ErrGameNotFound = fmt.Errorf("%w: game", apperror.ErrNotFound)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *game.Game) error
	GetByID(ctx context.Context, id entity.GameID) (*game.Game, error)
	DeleteByID(ctx context.Context, id entity.GameID) error
	List(ctx context.Context) ([]*game.Game, error)
}

// memGame keeps live games in process memory. A Game owns its own lock, so values are shared, not copied.
type memGame struct {
	mu    sync.RWMutex
	games map[entity.GameID]*game.Game
}

func NewGameRepository() GameRepository {
	return &memGame{
		games: make(map[entity.GameID]*game.Game),
	}
}

func (that *memGame) CreateOrUpdate(_ context.Context, g *game.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.games[g.ID()] = g

	return nil
}

func (that *memGame) GetByID(_ context.Context, id entity.GameID) (*game.Game, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	g, ok := that.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	return g, nil
}

func (that *memGame) DeleteByID(_ context.Context, id entity.GameID) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	delete(that.games, id)

	return nil
}

// List returns the active games ordered by id, so callers see a stable order.
func (that *memGame) List(_ context.Context) ([]*game.Game, error) {
	that.mu.RLock()
	games := make([]*game.Game, 0, len(that.games))
	for _, g := range that.games {
		games = append(games, g)
	}
	that.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool {
		return games[i].ID() < games[j].ID()
	})

	return games, nil
}
