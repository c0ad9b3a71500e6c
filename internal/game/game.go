package game

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/checkers-backend/internal/apperror"
	"github.com/rocketscienceinc/checkers-backend/internal/checkers"
	"github.com/rocketscienceinc/checkers-backend/internal/entity"
)

// State is the turn phase of a game.
type State int

const (
	// AwaitingMove means the pending buffer is empty.
	AwaitingMove State = iota
	// MovePending means the active player has staged moves that are not yet submitted.
	MovePending
)

func (that State) String() string {
	if that == MovePending {
		return "MOVE_PENDING"
	}
	return "AWAITING_MOVE"
}

var (
	ErrNotAParticipant = fmt.Errorf("%w: player is not in this game", apperror.ErrInvalidTurnState)
	ErrNoPendingMoves  = fmt.Errorf("%w: no pending moves", apperror.ErrInvalidTurnState)
	ErrJumpAvailable   = fmt.Errorf("%w: the jumping piece must keep jumping", apperror.ErrInvalidTurnState)

	ErrCaptureRequired = fmt.Errorf("%w: a jump is available and must be taken", apperror.ErrIllegalMove)
	ErrTurnComplete    = fmt.Errorf("%w: no further moves are allowed this turn", apperror.ErrIllegalMove)
	ErrMustContinue    = fmt.Errorf("%w: only the jumping piece may continue with another jump", apperror.ErrIllegalMove)
)

// Game is the state machine for one match. Every method is safe for concurrent use.
type Game struct {
	mu sync.RWMutex

	id    entity.GameID
	red   entity.Player
	white entity.Player
	rules checkers.Rules

	board   entity.Board
	active  entity.Color
	pending []checkers.Step
	turns   []entity.Turn
}

// New returns a game on the starting board with red to move.
func New(id entity.GameID, red, white entity.Player, rules checkers.Rules) *Game {
	return &Game{
		id:     id,
		red:    red,
		white:  white,
		rules:  rules,
		board:  entity.NewStartingBoard(),
		active: entity.Red,
	}
}

func (that *Game) ID() entity.GameID {
	return that.id
}

func (that *Game) RedPlayer() entity.Player {
	return that.red
}

func (that *Game) WhitePlayer() entity.Player {
	return that.white
}

func (that *Game) Rules() checkers.Rules {
	return that.rules
}

// MakeMove stages a move for the active player. On any error the board and the pending buffer are left unchanged.
func (that *Game) MakeMove(playerID string, move entity.Move) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmActive(playerID); err != nil {
		return err
	}

	if err := that.confirmComposition(move); err != nil {
		return err
	}

	if err := checkers.Validate(that.board, that.active, move); err != nil {
		return fmt.Errorf("invalid move %s: %w", move, err)
	}

	if that.rules.ForceCapture && len(that.pending) == 0 && !move.IsJump() && checkers.HasJump(that.board, that.active) {
		return ErrCaptureRequired
	}

	that.pending = append(that.pending, checkers.Apply(&that.board, move))

	return nil
}

// SubmitTurn commits the pending buffer as one turn and hands the move to the opponent.
func (that *Game) SubmitTurn(playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmActive(playerID); err != nil {
		return err
	}

	if len(that.pending) == 0 {
		return ErrNoPendingMoves
	}

	if that.rules.ForceCapture {
		last := that.pending[len(that.pending)-1]
		if last.Move.IsJump() && !last.Promoted && len(checkers.JumpsFrom(that.board, last.Move.End)) > 0 {
			return ErrJumpAvailable
		}
	}

	turn := entity.Turn{Color: that.active, Moves: make([]entity.Move, len(that.pending))}
	for i, step := range that.pending {
		turn.Moves[i] = step.Move
	}

	that.turns = append(that.turns, turn)
	that.pending = nil
	that.active = that.active.Opponent()

	return nil
}

// Backup undoes the most recent pending move, including its capture and promotion.
func (that *Game) Backup(playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.confirmActive(playerID); err != nil {
		return err
	}

	if len(that.pending) == 0 {
		return ErrNoPendingMoves
	}

	last := len(that.pending) - 1
	checkers.Undo(&that.board, that.pending[last])
	that.pending = that.pending[:last]

	return nil
}

// IsInGame reports whether the player is red or white here.
func (that *Game) IsInGame(playerID string) bool {
	return that.red.Is(playerID) || that.white.Is(playerID)
}

// ColorOf returns the color the player plays, or false for an outsider.
func (that *Game) ColorOf(playerID string) (entity.Color, bool) {
	switch {
	case that.red.Is(playerID):
		return entity.Red, true
	case that.white.Is(playerID):
		return entity.White, true
	default:
		return entity.NoColor, false
	}
}

func (that *Game) ActiveColor() entity.Color {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.active
}

// ActivePlayer returns whoever holds the move right now.
func (that *Game) ActivePlayer() entity.Player {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.playerOf(that.active)
}

// Board returns a copy of the live board, pending moves included.
func (that *Game) Board() entity.Board {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.board
}

func (that *Game) State() State {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.state()
}

func (that *Game) PendingMoves() []entity.Move {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.pendingMoves()
}

// Turns returns a copy of the committed history.
func (that *Game) Turns() []entity.Turn {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return entity.CloneTurns(that.turns)
}

// Result reports whether the game is over and who won. A game is over when, between turns,
// the side to move has no pieces or no legal move.
func (that *Game) Result() (entity.Color, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.result()
}

// Snapshot is a consistent read of a game at one instant.
type Snapshot struct {
	ID          entity.GameID
	Red         entity.Player
	White       entity.Player
	ActiveColor entity.Color
	State       State
	Board       entity.Board
	Pending     []entity.Move
	Turns       []entity.Turn
	Winner      entity.Color
	Over        bool
}

func (that *Game) Snapshot() Snapshot {
	that.mu.RLock()
	defer that.mu.RUnlock()

	winner, over := that.result()

	return Snapshot{
		ID:          that.id,
		Red:         that.red,
		White:       that.white,
		ActiveColor: that.active,
		State:       that.state(),
		Board:       that.board,
		Pending:     that.pendingMoves(),
		Turns:       entity.CloneTurns(that.turns),
		Winner:      winner,
		Over:        over,
	}
}

// PlayerOf returns the player on the given side of the snapshot.
func (that Snapshot) PlayerOf(color entity.Color) entity.Player {
	if color == entity.White {
		return that.White
	}
	return that.Red
}

func (that *Game) confirmActive(playerID string) error {
	if !that.IsInGame(playerID) {
		return ErrNotAParticipant
	}

	if !that.playerOf(that.active).Is(playerID) {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// confirmComposition enforces how moves combine within one turn.
func (that *Game) confirmComposition(move entity.Move) error {
	if len(that.pending) == 0 {
		return nil
	}

	last := that.pending[len(that.pending)-1]
	if !last.Move.IsJump() || last.Promoted {
		return ErrTurnComplete
	}

	if !move.IsJump() || move.Start != last.Move.End {
		return ErrMustContinue
	}

	return nil
}

func (that *Game) playerOf(color entity.Color) entity.Player {
	if color == entity.White {
		return that.white
	}
	return that.red
}

func (that *Game) state() State {
	if len(that.pending) > 0 {
		return MovePending
	}
	return AwaitingMove
}

func (that *Game) pendingMoves() []entity.Move {
	moves := make([]entity.Move, len(that.pending))
	for i, step := range that.pending {
		moves[i] = step.Move
	}
	return moves
}

func (that *Game) result() (entity.Color, bool) {
	if len(that.pending) > 0 {
		return entity.NoColor, false
	}

	if that.board.Count(that.active) == 0 || !checkers.HasLegalMove(that.board, that.active) {
		return that.active.Opponent(), true
	}

	return entity.NoColor, false
}
