package tictactoe

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-learner/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-learner/internal/entity"
)

var (
	ErrCellOccupied = fmt.Errorf("%w: cell is already occupied", apperror.ErrInvalidMove)
	ErrInvalidCell  = fmt.Errorf("%w: invalid cell index", apperror.ErrInvalidMove)
	ErrMoveApplied  = errors.New("a move was already applied this ply")
)

// Board is a rotating triple buffer of states. Next starts each ply equal to
// Current and receives exactly one mark.
type Board struct {
	Previous entity.State
	Current  entity.State
	Next     entity.State
}

func NewBoard() *Board {
	state := entity.NewState()

	return &Board{
		Previous: state,
		Current:  state,
		Next:     state,
	}
}

// MakeTurn records mark at move in Next.
func MakeTurn(board *Board, mark entity.Mark, move entity.Move) error {
	if mark != entity.Cross && mark != entity.Nought {
		return fmt.Errorf("invalid turn: %w", apperror.ErrUnassignedMark)
	}

	if board.Current.Outcome(mark.Other()) != entity.InPlay {
		return apperror.ErrGameFinished
	}

	if err := validateMove(board, move); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	board.Next[move.Row][move.Col] = mark

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(board *Board, move entity.Move) error {
	if !move.InRange() {
		return fmt.Errorf("%w: %s", ErrInvalidCell, move)
	}

	if board.Current.At(move) != entity.Empty {
		return fmt.Errorf("%w: %s", ErrCellOccupied, move)
	}

	if board.Next != board.Current {
		return ErrMoveApplied
	}

	return nil
}

// Outcome evaluates Next for the mark that just moved.
func (that *Board) Outcome(mover entity.Mark) entity.Outcome {
	return that.Next.Outcome(mover)
}

// Rotate ends a ply: Previous takes Current and Current takes a copy of Next.
func (that *Board) Rotate() {
	that.Previous = that.Current
	that.Current = that.Next
}

// Pending returns the cells in which Next differs from Current.
func (that *Board) Pending() []entity.Move {
	var diff []entity.Move
	for row := range that.Current {
		for col := range that.Current[row] {
			if that.Current[row][col] != that.Next[row][col] {
				diff = append(diff, entity.Move{Row: row, Col: col})
			}
		}
	}

	return diff
}
