package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrIllegalMove       = errors.New("illegal move")
	ErrInvalidTurnState  = errors.New("invalid turn state")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrInvalidPlayer     = errors.New("invalid player")

	ErrNotYourTurn = fmt.Errorf("%w: it's not your turn", ErrInvalidTurnState)
)
