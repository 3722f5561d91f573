package apperror

import "errors"

var (
	ErrMissingEntry         = errors.New("state key is missing from the q-table")
	ErrInvalidMove          = errors.New("invalid move")
	ErrPersistence          = errors.New("q-table persistence failure")
	ErrRepeatedInvalidInput = errors.New("repeated invalid input")
	ErrUnassignedMark       = errors.New("participant has no mark assigned")
	ErrGameFinished         = errors.New("game is already finished")
	ErrNoAvailableMoves     = errors.New("no available moves")
)
