package checkers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/checkers-backend/internal/apperror"
	"github.com/rocketscienceinc/checkers-backend/internal/entity"
)

func pos(row, col int) entity.Position {
	return entity.Position{Row: row, Col: col}
}

func move(fromRow, fromCol, toRow, toCol int) entity.Move {
	return entity.Move{Start: pos(fromRow, fromCol), End: pos(toRow, toCol)}
}

func TestValidate(t *testing.T) {
	t.Run("Accepts a forward step for a red man", func(t *testing.T) {
		// Given: a starting board
		board := entity.NewStartingBoard()

		// When: red steps from (2,1) to (3,2)
		err := Validate(board, entity.Red, move(2, 1, 3, 2))

		// Then: the move is legal
		require.NoError(t, err)
	})

	t.Run("Rejects moving the opponent's piece", func(t *testing.T) {
		// Given: a starting board
		board := entity.NewStartingBoard()

		// When: red tries to move a white man
		err := Validate(board, entity.Red, move(5, 0, 4, 1))

		// Then: ErrWrongColor is returned and it is an illegal move
		require.ErrorIs(t, err, ErrWrongColor)
		assert.ErrorIs(t, err, apperror.ErrIllegalMove)
	})

	cases := []struct {
		name  string
		setup func(board *entity.Board)
		move  entity.Move
		err   error
	}{
		{
			name: "off the board",
			move: move(7, 6, 8, 7),
			err:  ErrOutOfBounds,
		},
		{
			name:  "light square",
			setup: func(board *entity.Board) { board.Place(pos(3, 2), entity.NewMan(entity.Red)) },
			move:  move(3, 2, 4, 2),
			err:   ErrLightSquare,
		},
		{
			name: "empty start",
			move: move(3, 2, 4, 3),
			err:  ErrNoPiece,
		},
		{
			name: "occupied destination",
			setup: func(board *entity.Board) {
				board.Place(pos(3, 2), entity.NewMan(entity.Red))
				board.Place(pos(4, 3), entity.NewMan(entity.White))
			},
			move: move(3, 2, 4, 3),
			err:  ErrDestinationOccupied,
		},
		{
			name:  "three squares away",
			setup: func(board *entity.Board) { board.Place(pos(1, 0), entity.NewMan(entity.Red)) },
			move:  move(1, 0, 4, 3),
			err:   ErrNotDiagonal,
		},
		{
			name:  "man steps backward",
			setup: func(board *entity.Board) { board.Place(pos(3, 2), entity.NewMan(entity.Red)) },
			move:  move(3, 2, 2, 1),
			err:   ErrBackwardMove,
		},
		{
			name: "jump over own piece",
			setup: func(board *entity.Board) {
				board.Place(pos(2, 1), entity.NewMan(entity.Red))
				board.Place(pos(3, 2), entity.NewMan(entity.Red))
			},
			move: move(2, 1, 4, 3),
			err:  ErrNothingToCapture,
		},
		{
			name:  "jump over nothing",
			setup: func(board *entity.Board) { board.Place(pos(2, 1), entity.NewMan(entity.Red)) },
			move:  move(2, 1, 4, 3),
			err:   ErrNothingToCapture,
		},
	}

	for _, tc := range cases {
		t.Run("Rejects "+tc.name, func(t *testing.T) {
			// Given: a board prepared for the case
			board := entity.NewBoard()
			if tc.setup != nil {
				tc.setup(&board)
			}
			before := board

			// When: the move is validated for red
			err := Validate(board, entity.Red, tc.move)

			// Then: the expected sentinel is returned and the board is untouched
			require.ErrorIs(t, err, tc.err)
			assert.ErrorIs(t, err, apperror.ErrIllegalMove)
			assert.Equal(t, before, board)
		})
	}

	t.Run("Men may jump backward", func(t *testing.T) {
		// Given: a red man with a white man behind it
		board := entity.NewBoard()
		board.Place(pos(4, 3), entity.NewMan(entity.Red))
		board.Place(pos(3, 2), entity.NewMan(entity.White))

		// When: red jumps backward over it
		err := Validate(board, entity.Red, move(4, 3, 2, 1))

		// Then: the jump is legal
		require.NoError(t, err)
	})

	t.Run("Kings step in both directions", func(t *testing.T) {
		// Given: a white king in the middle of the board
		board := entity.NewBoard()
		board.Place(pos(3, 2), entity.NewKing(entity.White))

		// Then: it can step toward either edge
		require.NoError(t, Validate(board, entity.White, move(3, 2, 4, 3)))
		require.NoError(t, Validate(board, entity.White, move(3, 2, 2, 1)))
	})
}

func TestApplyAndUndo(t *testing.T) {
	t.Run("Jump removes the captured piece and undo restores it", func(t *testing.T) {
		// Given: red at (2,1) facing white at (3,2)
		board := entity.NewBoard()
		board.Place(pos(2, 1), entity.NewMan(entity.Red))
		board.Place(pos(3, 2), entity.NewMan(entity.White))
		before := board

		jump := move(2, 1, 4, 3)
		require.NoError(t, Validate(board, entity.Red, jump))

		// When: the jump is applied
		step := Apply(&board, jump)

		// Then: the white piece is gone and red stands on (4,3)
		_, whiteLeft := board.PieceAt(pos(3, 2))
		assert.False(t, whiteLeft)

		landed, ok := board.PieceAt(pos(4, 3))
		require.True(t, ok)
		assert.Equal(t, entity.NewMan(entity.Red), landed)
		assert.Equal(t, entity.NewMan(entity.White), step.Captured)

		// When: the step is undone
		Undo(&board, step)

		// Then: the board is exactly as before
		assert.Equal(t, before, board)
	})

	t.Run("Reaching the far row crowns and undo reverts the crown", func(t *testing.T) {
		// Given: a red man one step from the far row
		board := entity.NewBoard()
		board.Place(pos(6, 1), entity.NewMan(entity.Red))
		before := board

		// When: it steps onto row 7
		step := Apply(&board, move(6, 1, 7, 2))

		// Then: it is crowned
		assert.True(t, step.Promoted)
		crowned, ok := board.PieceAt(pos(7, 2))
		require.True(t, ok)
		assert.True(t, crowned.IsKing())

		// When: the step is undone
		Undo(&board, step)

		// Then: a man stands on the start square again
		assert.Equal(t, before, board)
	})

	t.Run("A king reaching the far row is not promoted again", func(t *testing.T) {
		// Given: a white king next to row 0
		board := entity.NewBoard()
		board.Place(pos(1, 2), entity.NewKing(entity.White))

		// When: it steps onto row 0
		step := Apply(&board, move(1, 2, 0, 1))

		// Then: no promotion is recorded
		assert.False(t, step.Promoted)
	})
}

func TestJumpsFrom(t *testing.T) {
	// Given: a red man with white pieces on both forward diagonals, one of them blocked
	board := entity.NewBoard()
	board.Place(pos(2, 3), entity.NewMan(entity.Red))
	board.Place(pos(3, 2), entity.NewMan(entity.White))
	board.Place(pos(3, 4), entity.NewMan(entity.White))
	board.Place(pos(4, 5), entity.NewMan(entity.White))

	// When: listing jumps
	jumps := JumpsFrom(board, pos(2, 3))

	// Then: only the open jump is listed
	assert.Equal(t, []entity.Move{move(2, 3, 4, 1)}, jumps)
}

func TestLegalMoves(t *testing.T) {
	t.Run("Opening position has seven moves per side", func(t *testing.T) {
		board := entity.NewStartingBoard()

		assert.Len(t, LegalMoves(board, entity.Red, DefaultRules()), 7)
		assert.Len(t, LegalMoves(board, entity.White, DefaultRules()), 7)
	})

	t.Run("Forced capture lists only jumps", func(t *testing.T) {
		// Given: red can either jump or step
		board := entity.NewBoard()
		board.Place(pos(2, 1), entity.NewMan(entity.Red))
		board.Place(pos(3, 2), entity.NewMan(entity.White))

		// When: listing moves with and without forced capture
		forced := LegalMoves(board, entity.Red, Rules{ForceCapture: true})
		free := LegalMoves(board, entity.Red, Rules{ForceCapture: false})

		// Then: forced capture keeps only the jump
		assert.Equal(t, []entity.Move{move(2, 1, 4, 3)}, forced)
		assert.Len(t, free, 2)
		assert.True(t, HasJump(board, entity.Red))
	})

	t.Run("Blocked side has no legal move", func(t *testing.T) {
		// Given: a red man pinned in the corner
		board := entity.NewBoard()
		board.Place(pos(0, 7), entity.NewMan(entity.Red))
		board.Place(pos(1, 6), entity.NewMan(entity.White))
		board.Place(pos(2, 5), entity.NewMan(entity.White))

		// Then: red cannot move
		assert.False(t, HasLegalMove(board, entity.Red))
		assert.True(t, HasLegalMove(board, entity.White))
	})
}
