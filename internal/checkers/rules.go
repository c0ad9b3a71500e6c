package checkers

import (
	"fmt"

	"github.com/rocketscienceinc/checkers-backend/internal/apperror"
	"github.com/rocketscienceinc/checkers-backend/internal/entity"
)

var (
	ErrOutOfBounds         = fmt.Errorf("%w: position is off the board", apperror.ErrIllegalMove)
	ErrLightSquare         = fmt.Errorf("%w: position is not a dark square", apperror.ErrIllegalMove)
	ErrNoPiece             = fmt.Errorf("%w: no piece on the start square", apperror.ErrIllegalMove)
	ErrWrongColor          = fmt.Errorf("%w: piece does not belong to the active color", apperror.ErrIllegalMove)
	ErrDestinationOccupied = fmt.Errorf("%w: destination is occupied", apperror.ErrIllegalMove)
	ErrNotDiagonal         = fmt.Errorf("%w: move must be one or two diagonal steps", apperror.ErrIllegalMove)
	ErrBackwardMove        = fmt.Errorf("%w: men can only step forward", apperror.ErrIllegalMove)
	ErrNothingToCapture    = fmt.Errorf("%w: jump must pass over an opposing piece", apperror.ErrIllegalMove)
)

// Rules holds the optional rule switches.
type Rules struct {
	// ForceCapture makes jumps mandatory: no simple move while a jump exists, and a jump sequence runs until it cannot continue.
	ForceCapture bool
}

func DefaultRules() Rules {
	return Rules{ForceCapture: true}
}

// Step is the undo record for one applied move.
type Step struct {
	Move     entity.Move
	Piece    entity.Piece // the piece as it stood before the move
	Captured entity.Piece // zero when the move was not a jump
	Promoted bool
}

// Validate checks a single move against the board for the active color. It never mutates the board.
func Validate(board entity.Board, active entity.Color, move entity.Move) error {
	if !move.Start.InBounds() || !move.End.InBounds() {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, move)
	}

	if !move.Start.IsDark() || !move.End.IsDark() {
		return fmt.Errorf("%w: %s", ErrLightSquare, move)
	}

	piece, ok := board.PieceAt(move.Start)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPiece, move.Start)
	}

	if piece.Color != active {
		return ErrWrongColor
	}

	if _, occupied := board.PieceAt(move.End); occupied {
		return fmt.Errorf("%w: %s", ErrDestinationOccupied, move.End)
	}

	rows, cols := move.RowDelta(), move.ColDelta()
	if abs(rows) != abs(cols) || (abs(rows) != 1 && abs(rows) != 2) {
		return fmt.Errorf("%w: %s", ErrNotDiagonal, move)
	}

	if !move.IsJump() {
		if !piece.IsKing() && rows != piece.Color.Forward() {
			return ErrBackwardMove
		}
		return nil
	}

	captured, ok := board.PieceAt(move.Midpoint())
	if !ok || captured.Color != active.Opponent() {
		return fmt.Errorf("%w: %s", ErrNothingToCapture, move.Midpoint())
	}

	return nil
}

// Apply performs a move that already passed Validate and returns what Undo needs to reverse it.
func Apply(board *entity.Board, move entity.Move) Step {
	piece, _ := board.Remove(move.Start)
	step := Step{Move: move, Piece: piece}

	if move.IsJump() {
		step.Captured, _ = board.Remove(move.Midpoint())
	}

	landed := piece
	if !piece.IsKing() && move.End.Row == piece.Color.KingRow() {
		landed = piece.Crowned()
		step.Promoted = true
	}

	board.Place(move.End, landed)

	return step
}

// Undo reverses a Step produced by Apply on the same board.
func Undo(board *entity.Board, step Step) {
	board.Remove(step.Move.End)
	board.Place(step.Move.Start, step.Piece)

	if step.Move.IsJump() {
		board.Place(step.Move.Midpoint(), step.Captured)
	}
}

// JumpsFrom lists the legal jumps for the piece standing on pos.
func JumpsFrom(board entity.Board, pos entity.Position) []entity.Move {
	piece, ok := board.PieceAt(pos)
	if !ok {
		return nil
	}

	var jumps []entity.Move
	for _, dir := range diagonals {
		move := entity.Move{Start: pos, End: entity.Position{Row: pos.Row + 2*dir.Row, Col: pos.Col + 2*dir.Col}}
		if Validate(board, piece.Color, move) == nil {
			jumps = append(jumps, move)
		}
	}
	return jumps
}

// StepsFrom lists the legal simple moves for the piece standing on pos.
func StepsFrom(board entity.Board, pos entity.Position) []entity.Move {
	piece, ok := board.PieceAt(pos)
	if !ok {
		return nil
	}

	var steps []entity.Move
	for _, dir := range diagonals {
		move := entity.Move{Start: pos, End: entity.Position{Row: pos.Row + dir.Row, Col: pos.Col + dir.Col}}
		if Validate(board, piece.Color, move) == nil {
			steps = append(steps, move)
		}
	}
	return steps
}

// HasJump reports whether any piece of color can capture.
func HasJump(board entity.Board, color entity.Color) bool {
	for _, pos := range piecesOf(board, color) {
		if len(JumpsFrom(board, pos)) > 0 {
			return true
		}
	}
	return false
}

// LegalMoves lists every move color may start a turn with. Under ForceCapture only jumps are listed when any exist.
func LegalMoves(board entity.Board, color entity.Color, rules Rules) []entity.Move {
	var jumps, steps []entity.Move
	for _, pos := range piecesOf(board, color) {
		jumps = append(jumps, JumpsFrom(board, pos)...)
		steps = append(steps, StepsFrom(board, pos)...)
	}

	if rules.ForceCapture && len(jumps) > 0 {
		return jumps
	}
	return append(jumps, steps...)
}

func HasLegalMove(board entity.Board, color entity.Color) bool {
	for _, pos := range piecesOf(board, color) {
		if len(JumpsFrom(board, pos)) > 0 || len(StepsFrom(board, pos)) > 0 {
			return true
		}
	}
	return false
}

var diagonals = [4]entity.Position{
	{Row: 1, Col: -1},
	{Row: 1, Col: 1},
	{Row: -1, Col: -1},
	{Row: -1, Col: 1},
}

func piecesOf(board entity.Board, color entity.Color) []entity.Position {
	var positions []entity.Position
	for row := range board.Rows() {
		for space := range row.Spaces() {
			if piece, ok := space.Piece(); ok && piece.Color == color {
				positions = append(positions, space.Position())
			}
		}
	}
	return positions
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
