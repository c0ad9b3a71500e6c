package game

import "github.com/rocketscienceinc/checkers-backend/internal/entity"

// ViewSpace is one rendered square.
type ViewSpace struct {
	Position entity.Position `json:"position"`
	Dark     bool            `json:"dark"`
	Piece    *entity.Piece   `json:"piece,omitempty"`
}

type ViewRow struct {
	Index  int         `json:"index"`
	Spaces []ViewSpace `json:"spaces"`
}

// BoardView lays a board out top to bottom as seen by one side, with that side's home rows at the bottom.
type BoardView struct {
	Orientation entity.Color `json:"orientation"`
	Rows        []ViewRow    `json:"rows"`
}

// NewBoardView renders the board for orientation. Red sees the board rotated half a turn, so row 0 ends up last.
func NewBoardView(board entity.Board, orientation entity.Color) BoardView {
	if orientation != entity.White {
		orientation = entity.Red
	}

	view := BoardView{Orientation: orientation, Rows: make([]ViewRow, 0, entity.BoardSize)}
	for i := 0; i < entity.BoardSize; i++ {
		r := i
		if orientation == entity.Red {
			r = entity.BoardSize - 1 - i
		}

		row := board.Row(r)
		viewRow := ViewRow{Index: row.Index(), Spaces: make([]ViewSpace, 0, row.Len())}
		for j := 0; j < row.Len(); j++ {
			c := j
			if orientation == entity.Red {
				c = row.Len() - 1 - j
			}

			space := row.Space(c)
			viewSpace := ViewSpace{Position: space.Position(), Dark: space.IsDark()}
			if piece, ok := space.Piece(); ok {
				viewSpace.Piece = &piece
			}
			viewRow.Spaces = append(viewRow.Spaces, viewSpace)
		}
		view.Rows = append(view.Rows, viewRow)
	}

	return view
}

// ViewFor renders the live board for viewer. Participants see their own side at the bottom; spectators get red's view.
func (that *Game) ViewFor(viewerID string) BoardView {
	orientation, ok := that.ColorOf(viewerID)
	if !ok {
		orientation = entity.Red
	}
	return NewBoardView(that.Board(), orientation)
}
