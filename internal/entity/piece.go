package entity

import (
	"errors"
	"fmt"
)

// Color is the side a piece or player belongs to. The zero value marks an empty square.
type Color int

const (
	NoColor Color = iota
	Red
	White
)

// Rank tells men from kings.
type Rank int

const (
	Man Rank = iota
	King
)

var (
	ErrUnknownColor = errors.New("unknown color")
	ErrUnknownRank  = errors.New("unknown rank")
)

func (that Color) String() string {
	switch that {
	case Red:
		return "RED"
	case White:
		return "WHITE"
	default:
		return ""
	}
}

// Opponent returns the other side. NoColor has no opponent.
func (that Color) Opponent() Color {
	switch that {
	case Red:
		return White
	case White:
		return Red
	default:
		return NoColor
	}
}

// Forward is the row delta a man of this color advances by.
func (that Color) Forward() int {
	if that == White {
		return -1
	}
	return 1
}

// KingRow is the farthest row for the color, where its men are crowned.
func (that Color) KingRow() int {
	if that == White {
		return 0
	}
	return BoardSize - 1
}

func (that Color) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "RED":
		*that = Red
	case "WHITE":
		*that = White
	case "":
		*that = NoColor
	default:
		return fmt.Errorf("%w: %q", ErrUnknownColor, text)
	}
	return nil
}

func (that Rank) String() string {
	if that == King {
		return "KING"
	}
	return "MAN"
}

func (that Rank) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Rank) UnmarshalText(text []byte) error {
	switch string(text) {
	case "MAN":
		*that = Man
	case "KING":
		*that = King
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRank, text)
	}
	return nil
}

// Piece is a single checker.
type Piece struct {
	Color Color `json:"color"`
	Rank  Rank  `json:"rank"`
}

func NewMan(color Color) Piece {
	return Piece{Color: color, Rank: Man}
}

func NewKing(color Color) Piece {
	return Piece{Color: color, Rank: King}
}

func (that Piece) IsKing() bool {
	return that.Rank == King
}

// Crowned returns the piece promoted to king.
func (that Piece) Crowned() Piece {
	that.Rank = King
	return that
}
