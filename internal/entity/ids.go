package entity

import (
	"strconv"

	"github.com/google/uuid"
)

// GameID is an opaque handle the registry hands out for an active game.
type GameID string

func NewGameID() GameID {
	return GameID(uuid.NewString())
}

func (that GameID) String() string {
	return string(that)
}

// ReplayID is minted from the count of completed games, starting at 1.
type ReplayID uint64

func (that ReplayID) String() string {
	return strconv.FormatUint(uint64(that), 10)
}

func ParseReplayID(s string) (ReplayID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ReplayID(n), nil
}
