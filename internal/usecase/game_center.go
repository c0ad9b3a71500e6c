package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/checkers-backend/internal/apperror"
	"github.com/rocketscienceinc/checkers-backend/internal/checkers"
	"github.com/rocketscienceinc/checkers-backend/internal/entity"
	"github.com/rocketscienceinc/checkers-backend/internal/game"
)

var ErrSamePlayer = fmt.Errorf("%w: a player cannot play against themself", apperror.ErrInvalidPlayer)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *game.Game) error
	GetByID(ctx context.Context, id entity.GameID) (*game.Game, error)
	DeleteByID(ctx context.Context, id entity.GameID) error
	List(ctx context.Context) ([]*game.Game, error)
}

type replayRepo interface {
	Save(ctx context.Context, replay *game.ReplayGame) error
	GetByID(ctx context.Context, id entity.ReplayID) (*game.ReplayGame, error)
	List(ctx context.Context) ([]*game.ReplayGame, error)
	Count(ctx context.Context) (int, error)
}

// Publisher receives lifecycle events once the registry has changed state.
type Publisher interface {
	Publish(ctx context.Context, event *entity.GameEvent) error
}

// pairKey identifies two players regardless of who plays red.
type pairKey struct {
	low, high string
}

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{low: a, high: b}
}

// GameCenter is the registry of active and finished games.
type GameCenter struct {
	logger     *slog.Logger
	rules      checkers.Rules
	gameRepo   gameRepo
	replayRepo replayRepo
	publishers []Publisher
	now        func() time.Time

	// mu serializes creation, removal and archival.
	mu        sync.Mutex
	pairs     map[pairKey]entity.GameID
	completed uint64
}

func NewGameCenter(logger *slog.Logger, rules checkers.Rules, gameRepo gameRepo, replayRepo replayRepo, publishers ...Publisher) *GameCenter {
	return &GameCenter{
		logger: logger.With("component", "game_center"),
		rules:  rules,

		gameRepo:   gameRepo,
		replayRepo: replayRepo,
		publishers: publishers,
		now:        time.Now,

		pairs: make(map[pairKey]entity.GameID),
	}
}

// NewGame starts a game between red and white. Only one active game per pair is allowed.
func (that *GameCenter) NewGame(ctx context.Context, red, white entity.Player) (entity.GameID, error) {
	log := that.logger.With("method", "NewGame")

	if red.ID == "" || white.ID == "" {
		return "", fmt.Errorf("%w: player id is empty", apperror.ErrInvalidPlayer)
	}

	if red.ID == white.ID {
		return "", ErrSamePlayer
	}

	key := newPairKey(red.ID, white.ID)

	that.mu.Lock()
	if existing, ok := that.pairs[key]; ok {
		that.mu.Unlock()
		return "", fmt.Errorf("%w: %s and %s are already playing %s", apperror.ErrGameAlreadyExists, red.ID, white.ID, existing)
	}

	g := game.New(entity.NewGameID(), red, white, that.rules)
	if err := that.gameRepo.CreateOrUpdate(ctx, g); err != nil {
		that.mu.Unlock()
		return "", fmt.Errorf("failed to create game: %w", err)
	}

	that.pairs[key] = g.ID()
	that.mu.Unlock()

	log.Info("game created", "game_id", g.ID(), "red", red.ID, "white", white.ID)

	board := g.Board()
	that.publish(ctx, &entity.GameEvent{
		Kind:        entity.EventGameCreated,
		GameID:      g.ID(),
		Red:         red,
		White:       white,
		ActiveColor: entity.Red,
		Board:       &board,
	})

	return g.ID(), nil
}

func (that *GameCenter) GetGame(ctx context.Context, id entity.GameID) (*game.Game, error) {
	g, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return g, nil
}

// MustGetGame is for ids the caller obtained from NewGame and never released. A miss is a registry bug.
func (that *GameCenter) MustGetGame(ctx context.Context, id entity.GameID) *game.Game {
	g, err := that.GetGame(ctx, id)
	if err != nil {
		panic(fmt.Errorf("game %s must exist: %w", id, err))
	}

	return g
}

func (that *GameCenter) GetReplayGame(ctx context.Context, id entity.ReplayID) (*game.ReplayGame, error) {
	replay, err := that.replayRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get replay: %w", err)
	}

	return replay, nil
}

// RemoveGame evicts an active game without archiving it.
func (that *GameCenter) RemoveGame(ctx context.Context, id entity.GameID) error {
	log := that.logger.With("method", "RemoveGame")

	that.mu.Lock()
	g, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		that.mu.Unlock()
		return fmt.Errorf("failed to get game: %w", err)
	}

	if err = that.gameRepo.DeleteByID(ctx, id); err != nil {
		that.mu.Unlock()
		return fmt.Errorf("failed to delete game: %w", err)
	}

	delete(that.pairs, newPairKey(g.RedPlayer().ID, g.WhitePlayer().ID))
	that.mu.Unlock()

	log.Info("game removed", "game_id", id)

	that.publish(ctx, &entity.GameEvent{
		Kind:   entity.EventGameRemoved,
		GameID: id,
		Red:    g.RedPlayer(),
		White:  g.WhitePlayer(),
	})

	return nil
}

func (that *GameCenter) RequestMove(ctx context.Context, id entity.GameID, playerID string, move entity.Move) error {
	g, err := that.GetGame(ctx, id)
	if err != nil {
		return err
	}

	if err = g.MakeMove(playerID, move); err != nil {
		return fmt.Errorf("failed to make move: %w", err)
	}

	return nil
}

// SubmitTurn commits the pending moves and returns the game as it stands right after the commit.
func (that *GameCenter) SubmitTurn(ctx context.Context, id entity.GameID, playerID string) (game.Snapshot, error) {
	log := that.logger.With("method", "SubmitTurn")

	g, err := that.GetGame(ctx, id)
	if err != nil {
		return game.Snapshot{}, err
	}

	if err = g.SubmitTurn(playerID); err != nil {
		return game.Snapshot{}, fmt.Errorf("failed to submit turn: %w", err)
	}

	snapshot := g.Snapshot()
	log.Debug("turn submitted", "game_id", id, "player", playerID, "turns", len(snapshot.Turns))

	event := &entity.GameEvent{
		Kind:        entity.EventTurnSubmitted,
		GameID:      id,
		Red:         snapshot.Red,
		White:       snapshot.White,
		ActiveColor: snapshot.ActiveColor,
		Board:       &snapshot.Board,
	}
	if len(snapshot.Turns) > 0 {
		last := snapshot.Turns[len(snapshot.Turns)-1]
		event.Turn = &last
	}
	that.publish(ctx, event)

	return snapshot, nil
}

func (that *GameCenter) BackupMove(ctx context.Context, id entity.GameID, playerID string) error {
	g, err := that.GetGame(ctx, id)
	if err != nil {
		return err
	}

	if err = g.Backup(playerID); err != nil {
		return fmt.Errorf("failed to back up move: %w", err)
	}

	return nil
}

// HasGame reports whether the two players have an active game, in either color order.
func (that *GameCenter) HasGame(playerA, playerB string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, ok := that.pairs[newPairKey(playerA, playerB)]
	return ok
}

func (that *GameCenter) IsInAnyGame(ctx context.Context, playerID string) bool {
	log := that.logger.With("method", "IsInAnyGame")

	games, err := that.gameRepo.List(ctx)
	if err != nil {
		log.Error("failed to list games", "error", err)
		return false
	}

	for _, g := range games {
		if g.IsInGame(playerID) {
			return true
		}
	}

	return false
}

func (that *GameCenter) IsMyTurn(ctx context.Context, id entity.GameID, playerID string) (bool, error) {
	g, err := that.GetGame(ctx, id)
	if err != nil {
		return false, err
	}

	return g.ActivePlayer().Is(playerID), nil
}

// AddToPreviousGames archives g under a fresh replay id and evicts id from the active games if it is still there.
func (that *GameCenter) AddToPreviousGames(ctx context.Context, g *game.Game, id entity.GameID) (entity.ReplayID, error) {
	winner, _ := g.Result()

	return that.archive(ctx, g, id, winner, false)
}

// Resign ends the game in favor of the resigning player's opponent.
func (that *GameCenter) Resign(ctx context.Context, id entity.GameID, playerID string) (entity.ReplayID, error) {
	g, err := that.GetGame(ctx, id)
	if err != nil {
		return 0, err
	}

	color, ok := g.ColorOf(playerID)
	if !ok {
		return 0, fmt.Errorf("failed to resign: %w", game.ErrNotAParticipant)
	}

	return that.archive(ctx, g, id, color.Opponent(), true)
}

// SortPreviousGames returns the archived games in completion order.
func (that *GameCenter) SortPreviousGames(ctx context.Context) ([]*game.ReplayGame, error) {
	replays, err := that.replayRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list replays: %w", err)
	}

	return replays, nil
}

func (that *GameCenter) HasPreviousGames(ctx context.Context) bool {
	log := that.logger.With("method", "HasPreviousGames")

	count, err := that.replayRepo.Count(ctx)
	if err != nil {
		log.Error("failed to count replays", "error", err)
		return false
	}

	return count > 0
}

// CurrentGames returns a snapshot of every active game.
func (that *GameCenter) CurrentGames(ctx context.Context) ([]game.Snapshot, error) {
	games, err := that.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	snapshots := make([]game.Snapshot, 0, len(games))
	for _, g := range games {
		snapshots = append(snapshots, g.Snapshot())
	}

	return snapshots, nil
}

// archive freezes g into the replay store. With mustBeActive set, a game that was already evicted is reported as not found.
func (that *GameCenter) archive(ctx context.Context, g *game.Game, id entity.GameID, winner entity.Color, mustBeActive bool) (entity.ReplayID, error) {
	log := that.logger.With("method", "archive")

	that.mu.Lock()
	if mustBeActive {
		if _, err := that.gameRepo.GetByID(ctx, id); err != nil {
			that.mu.Unlock()
			return 0, fmt.Errorf("failed to get game: %w", err)
		}
	}

	that.completed++
	replay := game.NewReplayGame(entity.ReplayID(that.completed), g.Snapshot(), winner, that.now())

	if err := that.replayRepo.Save(ctx, replay); err != nil {
		that.completed--
		that.mu.Unlock()
		return 0, fmt.Errorf("failed to save replay: %w", err)
	}

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil && !errors.Is(err, apperror.ErrNotFound) {
		log.Error("failed to evict archived game", "game_id", id, "error", err)
	}

	key := newPairKey(g.RedPlayer().ID, g.WhitePlayer().ID)
	if that.pairs[key] == id {
		delete(that.pairs, key)
	}
	that.mu.Unlock()

	log.Info("game archived", "game_id", id, "replay_id", replay.ID(), "winner", winner)

	that.publish(ctx, &entity.GameEvent{
		Kind:     entity.EventGameArchived,
		GameID:   id,
		ReplayID: replay.ID(),
		Red:      replay.RedPlayer(),
		White:    replay.WhitePlayer(),
		Winner:   winner,
	})

	return replay.ID(), nil
}

func (that *GameCenter) publish(ctx context.Context, event *entity.GameEvent) {
	log := that.logger.With("method", "publish")

	event.At = that.now()
	for _, pub := range that.publishers {
		if err := pub.Publish(ctx, event); err != nil {
			log.Error("failed to publish event", "kind", event.Kind, "game_id", event.GameID, "error", err)
		}
	}
}
