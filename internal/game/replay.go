package game

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/checkers-backend/internal/apperror"
	"github.com/rocketscienceinc/checkers-backend/internal/checkers"
	"github.com/rocketscienceinc/checkers-backend/internal/entity"
)

var ErrTurnOutOfRange = fmt.Errorf("%w: turn index out of range", apperror.ErrNotFound)

// ReplayGame is the frozen record of a finished game. Nothing mutates it after construction.
type ReplayGame struct {
	id         entity.ReplayID
	gameID     entity.GameID
	red        entity.Player
	white      entity.Player
	turns      []entity.Turn
	winner     entity.Color
	finishedAt time.Time
}

// NewReplayGame freezes a snapshot under id. winner may be NoColor when the game was abandoned undecided.
func NewReplayGame(id entity.ReplayID, snapshot Snapshot, winner entity.Color, finishedAt time.Time) *ReplayGame {
	return &ReplayGame{
		id:         id,
		gameID:     snapshot.ID,
		red:        snapshot.Red,
		white:      snapshot.White,
		turns:      entity.CloneTurns(snapshot.Turns),
		winner:     winner,
		finishedAt: finishedAt,
	}
}

func (that *ReplayGame) ID() entity.ReplayID {
	return that.id
}

// GameID is the id the game had while it was active.
func (that *ReplayGame) GameID() entity.GameID {
	return that.gameID
}

func (that *ReplayGame) RedPlayer() entity.Player {
	return that.red
}

func (that *ReplayGame) WhitePlayer() entity.Player {
	return that.white
}

func (that *ReplayGame) Winner() entity.Color {
	return that.winner
}

func (that *ReplayGame) FinishedAt() time.Time {
	return that.finishedAt
}

func (that *ReplayGame) TurnCount() int {
	return len(that.turns)
}

// Turns returns a copy of the committed history.
func (that *ReplayGame) Turns() []entity.Turn {
	return entity.CloneTurns(that.turns)
}

// BoardAt rebuilds the board as it stood after the first n turns.
func (that *ReplayGame) BoardAt(n int) (entity.Board, error) {
	if n < 0 || n > len(that.turns) {
		return entity.Board{}, fmt.Errorf("%w: %d of %d", ErrTurnOutOfRange, n, len(that.turns))
	}

	board := entity.NewStartingBoard()
	for _, turn := range that.turns[:n] {
		for _, move := range turn.Moves {
			checkers.Apply(&board, move)
		}
	}

	return board, nil
}
