package apperror

import "errors"

var (
	ErrInvalidPosition  = errors.New("position is out of the board")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrGameAlreadyOver  = errors.New("round is already over")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionIDMissing = errors.New("session id is empty")
)
