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

var (
	ErrReplayNotFound = fmt.Errorf("%w: replay", apperror.ErrNotFound)
	ErrReplayExists   = fmt.Errorf("%w: replay id is taken", apperror.ErrGameAlreadyExists)
)

type ReplayRepository interface {
	Save(ctx context.Context, replay *game.ReplayGame) error
	GetByID(ctx context.Context, id entity.ReplayID) (*game.ReplayGame, error)
	List(ctx context.Context) ([]*game.ReplayGame, error)
	Count(ctx context.Context) (int, error)
}

type memReplay struct {
	mu      sync.RWMutex
	replays map[entity.ReplayID]*game.ReplayGame
}

func NewReplayRepository() ReplayRepository {
	return &memReplay{
		replays: make(map[entity.ReplayID]*game.ReplayGame),
	}
}

// Save stores a replay once. Replays are immutable, so an id is never reused.
func (that *memReplay) Save(_ context.Context, replay *game.ReplayGame) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.replays[replay.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrReplayExists, replay.ID())
	}

	that.replays[replay.ID()] = replay

	return nil
}

func (that *memReplay) GetByID(_ context.Context, id entity.ReplayID) (*game.ReplayGame, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	replay, ok := that.replays[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReplayNotFound, id)
	}

	return replay, nil
}

// List returns replays in completion order.
func (that *memReplay) List(_ context.Context) ([]*game.ReplayGame, error) {
	that.mu.RLock()
	replays := make([]*game.ReplayGame, 0, len(that.replays))
	for _, replay := range that.replays {
		replays = append(replays, replay)
	}
	that.mu.RUnlock()

	sort.Slice(replays, func(i, j int) bool {
		return replays[i].ID() < replays[j].ID()
	})

	return replays, nil
}

func (that *memReplay) Count(_ context.Context) (int, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.replays), nil
}
