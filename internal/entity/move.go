package entity

import "fmt"

// Position addresses a square by row and column, both in [0, BoardSize).
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (that Position) InBounds() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// IsDark reports whether the square is playable.
func (that Position) IsDark() bool {
	return (that.Row+that.Col)%2 == 1
}

func (that Position) String() string {
	return fmt.Sprintf("(%d,%d)", that.Row, that.Col)
}

// Move relocates one piece diagonally by one step, or by two when it jumps.
type Move struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

func (that Move) RowDelta() int {
	return that.End.Row - that.Start.Row
}

func (that Move) ColDelta() int {
	return that.End.Col - that.Start.Col
}

// IsJump reports whether the move spans two rows and so captures the piece it passes over.
func (that Move) IsJump() bool {
	return abs(that.RowDelta()) == 2
}

// Midpoint is the square a jump passes over.
func (that Move) Midpoint() Position {
	return Position{
		Row: (that.Start.Row + that.End.Row) / 2,
		Col: (that.Start.Col + that.End.Col) / 2,
	}
}

func (that Move) String() string {
	return that.Start.String() + "->" + that.End.String()
}

// Turn is everything one side committed with a single submit.
type Turn struct {
	Color Color  `json:"color"`
	Moves []Move `json:"moves"`
}

func (that Turn) Clone() Turn {
	moves := make([]Move, len(that.Moves))
	copy(moves, that.Moves)

	return Turn{Color: that.Color, Moves: moves}
}

func CloneTurns(turns []Turn) []Turn {
	cloned := make([]Turn, len(turns))
	for i, turn := range turns {
		cloned[i] = turn.Clone()
	}
	return cloned
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
