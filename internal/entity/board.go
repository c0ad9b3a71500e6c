package entity

import (
	"encoding/json"
	"iter"
)

const (
	BoardSize = 8

	// startingRows is how many rows each side fills at the start.
	startingRows = 3
)

// Space is one square of the board and the piece on it, if any.
type Space struct {
	position Position
	piece    Piece
}

func (that Space) Position() Position {
	return that.position
}

// Piece returns the occupant, or false when the square is empty.
func (that Space) Piece() (Piece, bool) {
	return that.piece, that.piece.Color != NoColor
}

func (that Space) IsEmpty() bool {
	return that.piece.Color == NoColor
}

func (that Space) IsDark() bool {
	return that.position.IsDark()
}

// Row is a fixed run of BoardSize spaces. Its index never changes after construction.
type Row struct {
	index  int
	spaces [BoardSize]Space
}

func (that Row) Index() int {
	return that.index
}

func (that Row) Len() int {
	return len(that.spaces)
}

func (that Row) Space(col int) Space {
	return that.spaces[col]
}

// Spaces yields the row's spaces from column 0 up. The sequence can be ranged over repeatedly.
func (that Row) Spaces() iter.Seq[Space] {
	return func(yield func(Space) bool) {
		for _, space := range that.spaces {
			if !yield(space) {
				return
			}
		}
	}
}

// Board is the 8x8 grid. It is a plain value: assigning a Board copies every square.
type Board struct {
	rows [BoardSize]Row
}

// NewBoard returns an empty board.
func NewBoard() Board {
	var board Board
	for r := range board.rows {
		board.rows[r].index = r
		for c := range board.rows[r].spaces {
			board.rows[r].spaces[c].position = Position{Row: r, Col: c}
		}
	}
	return board
}

// NewStartingBoard places twelve men per side on the dark squares: red on the first three rows, white on the last three.
func NewStartingBoard() Board {
	board := NewBoard()
	for r := 0; r < BoardSize; r++ {
		var color Color
		switch {
		case r < startingRows:
			color = Red
		case r >= BoardSize-startingRows:
			color = White
		default:
			continue
		}

		for c := 0; c < BoardSize; c++ {
			pos := Position{Row: r, Col: c}
			if pos.IsDark() {
				board.Place(pos, NewMan(color))
			}
		}
	}
	return board
}

// Space returns the square at pos, or false when pos is off the board.
func (that Board) Space(pos Position) (Space, bool) {
	if !pos.InBounds() {
		return Space{}, false
	}
	return that.rows[pos.Row].spaces[pos.Col], true
}

// PieceAt returns the occupant of pos, or false when it is empty or off the board.
func (that Board) PieceAt(pos Position) (Piece, bool) {
	space, ok := that.Space(pos)
	if !ok {
		return Piece{}, false
	}
	return space.Piece()
}

// Place puts piece on pos, replacing any occupant. Off-board positions are ignored.
func (that *Board) Place(pos Position, piece Piece) {
	if !pos.InBounds() {
		return
	}
	that.rows[pos.Row].spaces[pos.Col].piece = piece
}

// Remove empties pos and returns what was there.
func (that *Board) Remove(pos Position) (Piece, bool) {
	piece, ok := that.PieceAt(pos)
	if ok {
		that.rows[pos.Row].spaces[pos.Col].piece = Piece{}
	}
	return piece, ok
}

func (that Board) Row(index int) Row {
	return that.rows[index]
}

// Rows yields the rows from index 0 up.
func (that Board) Rows() iter.Seq[Row] {
	rows := that.rows
	return func(yield func(Row) bool) {
		for _, row := range rows {
			if !yield(row) {
				return
			}
		}
	}
}

// Count returns how many pieces of color are on the board.
func (that Board) Count(color Color) int {
	count := 0
	for _, row := range that.rows {
		for _, space := range row.spaces {
			if space.piece.Color == color && color != NoColor {
				count++
			}
		}
	}
	return count
}

// MarshalJSON encodes the board as rows of squares, null for empty ones.
func (that Board) MarshalJSON() ([]byte, error) {
	grid := make([][]*Piece, BoardSize)
	for r, row := range that.rows {
		grid[r] = make([]*Piece, BoardSize)
		for c, space := range row.spaces {
			if piece, ok := space.Piece(); ok {
				grid[r][c] = &piece
			}
		}
	}
	return json.Marshal(grid)
}
